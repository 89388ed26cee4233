package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/esm-dev/pkg-exports/resolver"
)

const parseHelpMessage = `Parse a module specifier into name, version and subpath

Usage: pkg-exports parse <specifier> [options]

Examples:
  pkg-exports parse react@18/jsx-runtime
  pkg-exports parse @vue/core@3.4.0/dist/index.js

Options:
  --json       Print the result as JSON
  --help, -h   Show help message
`

// Parse parses the module specifier
func Parse() {
	asJSON := flag.Bool("json", false, "print the result as JSON")
	args, help := parseCommandFlags()
	if help || len(args) == 0 {
		fmt.Print(parseHelpMessage)
		return
	}
	if err := parse(os.Stdout, args[0], *asJSON); err != nil {
		exitWithError(err)
	}
}

func parse(w io.Writer, specifier string, asJSON bool) error {
	id := resolver.ParseModuleId(specifier)
	if id.Name == "" {
		return errors.New("invalid module specifier: " + specifier)
	}
	if asJSON {
		return printJSON(w, id)
	}
	printFields(w,
		[2]string{"name", id.Name},
		[2]string{"version", id.Version},
		[2]string{"path", id.Path},
	)
	return nil
}

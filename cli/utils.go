package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/ije/gox/term"
)

// parseCommandFlags parses the flags of the sub-command, flags may come after the arguments.
func parseCommandFlags() (args []string, help bool) {
	return parseFlags(flag.CommandLine, os.Args[2:])
}

func parseFlags(fs *flag.FlagSet, arguments []string) (args []string, help bool) {
	rest := make([]string, 0, len(arguments))
	for _, arg := range arguments {
		if arg == "-h" || arg == "--help" {
			help = true
		} else {
			rest = append(rest, arg)
		}
	}
	for {
		fs.Parse(rest)
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		args = append(args, rest[0])
		rest = rest[1:]
	}
	return
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	a := strings.Split(s, ",")
	list := make([]string, 0, len(a))
	for _, v := range a {
		if v = strings.TrimSpace(v); v != "" {
			list = append(list, v)
		}
	}
	return list
}

// printFields prints the label/value pairs in aligned columns.
func printFields(w io.Writer, fields ...[2]string) {
	width := 0
	for _, f := range fields {
		if len(f[0]) > width {
			width = len(f[0])
		}
	}
	for _, f := range fields {
		value := f[1]
		if value == "" {
			value = term.Dim("-")
		}
		fmt.Fprintf(w, "%s%s  %s\n", term.Dim(f[0]), strings.Repeat(" ", width-len(f[0])), value)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, term.Red("[error]"), err.Error())
	os.Exit(1)
}

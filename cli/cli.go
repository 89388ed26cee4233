package cli

import (
	"fmt"
	"os"

	"github.com/esm-dev/pkg-exports/server"
)

const helpMessage = "\033[30mpkg-exports - Resolve package.json \"exports\" and \"imports\".\033[0m" + `

Usage: pkg-exports [command] [options]

Commands:
  parse <specifier>       Parse a module specifier into name, version and subpath
  resolve <specifier>     Resolve a module specifier against the package exports
  imports <#path>         Resolve a "#" path against the package imports
  ls [package]            List the exports of a package
  serve                   Serve the resolution API over HTTP

Options:
  --version, -v           Show the version
  --help, -h              Display this help message
`

// Run runs the command line interface.
func Run() {
	if len(os.Args) < 2 {
		fmt.Print(helpMessage)
		return
	}
	switch command := os.Args[1]; command {
	case "parse":
		Parse()
	case "resolve":
		Resolve()
	case "imports":
		Imports()
	case "ls":
		List()
	case "serve":
		Serve()
	case "version":
		fmt.Println("pkg-exports " + server.VERSION)
	default:
		for _, arg := range os.Args[1:] {
			if arg == "--version" {
				fmt.Println("pkg-exports " + server.VERSION)
				return
			}
			if arg == "-v" {
				fmt.Println(server.VERSION)
				return
			}
		}
		fmt.Print(helpMessage)
	}
}

package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/esm-dev/pkg-exports/internal/config"
	"github.com/esm-dev/pkg-exports/server"
	"github.com/ije/gox/term"
)

const serveHelpMessage = `Serve the resolution API over HTTP

Usage: pkg-exports serve [options]

Options:
  --config     The config file, default is "config.json" if it exists
  --port       Port to serve on, overrides the config
  --help, -h   Show help message
`

// Serve serves the resolution API.
func Serve() {
	configFile := flag.String("config", "config.json", "the config file path")
	port := flag.Int("port", 0, "port to serve on")
	_, help := parseCommandFlags()
	if help {
		fmt.Print(serveHelpMessage)
		return
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		os.Stderr.WriteString(term.Red(err.Error()) + "\n")
		os.Exit(1)
	}
	if *port > 0 && *port < 65536 {
		cfg.Port = uint16(*port)
	}
	fmt.Printf("%s Listening on %s\n", term.Green("✓"), term.Cyan(fmt.Sprintf("http://localhost:%d", cfg.Port)))
	server.Serve(cfg)
}

// loadConfig loads the config file, or the default config if the file does not exist.
func loadConfig(filename string) (*config.Config, error) {
	fi, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return config.Default(), nil
		}
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("stat %s: not a file", filename)
	}
	return config.Load(filename)
}

package main

import (
	"github.com/esm-dev/pkg-exports/cli"
)

func main() {
	cli.Run()
}

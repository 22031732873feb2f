// Package main provides the pickaname command-line tool.
package main

import (
	"os"

	"github.com/neteinstein/pickaname/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

// Package main is the entry point for the xctor CLI.
package main

import (
	"fmt"
	"os"

	"github.com/go-mizu/xctor/cmd/xctor/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

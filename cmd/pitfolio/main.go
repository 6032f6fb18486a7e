package main

import (
	"os"

	"github.com/jwlim/pitfolio/cmd/pitfolio/commands"
)

// main is the entry point for the pitfolio CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

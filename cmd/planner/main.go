package main

import (
	"os"

	"github.com/openfactory/planning/pkg/interfaces/cli/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

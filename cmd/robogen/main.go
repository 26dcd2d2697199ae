package main

import (
	"fmt"
	"os"

	"robogen/cmd/robogen/commands"
	"robogen/cmd/robogen/internal/clierr"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(clierr.ExitCodeOf(err))
	}
}

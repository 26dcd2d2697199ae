// Package commands contains the Cobra subcommands for the robogen CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd constructs the robogen root command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("ROBOGEN_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "robogen",
		Short:         "robogen - Robot Framework test generation for service-console",
		Long:          "robogen scans a service-console source tree, extracts its operations, and generates Robot Framework test suites for each one.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().String("config", "", "path to robogen.yaml (default: ./robogen.yaml if present)")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of robogen",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "robogen version %s\n", version)
		},
	})

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newDiffCmd())

	return cmd
}

package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"robogen/cmd/robogen/internal/clierr"
	"robogen/internal/agent"
	"robogen/internal/report"
)

func newDiffCmd() *cobra.Command {
	var (
		repo   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare the current source tree against the last generation snapshot",
		Long: "diff re-scans the source tree and reports which operations were added,\n" +
			"modified, or removed since the snapshot written by the last generate run.\n" +
			"It never regenerates anything.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			repo = firstNonEmpty(repo, cfg.Repo)
			output = firstNonEmpty(output, cfg.Output, "generated_tests")
			if repo == "" {
				return clierr.New(2, "--repo is required (flag or robogen.yaml)")
			}

			rep := report.NewConsole(cmd.OutOrStdout())
			log := buildLogger(cmd)
			defer func() { _ = log.Sync() }()

			repoDir, _, err := resolveRepoDir(cmd.Context(), repo, rep)
			if err != nil {
				return err
			}

			store := agent.NewSnapshotStore(filepath.Join(output, ".robogen"))
			previous, err := store.Read()
			if err != nil {
				return clierr.Wrap(1, "reading snapshot", err)
			}
			if previous == nil {
				rep.Emit(report.Event{Kind: report.Warning, Message: "no snapshot found; run generate first"})
			}

			a := agent.New(agent.Options{RepoDir: repoDir, Reporter: rep, Logger: log})
			changes, err := a.ScanForChanges(previous)
			if err != nil {
				return clierr.Wrap(1, "scan failed", err)
			}
			if changes.Empty() {
				rep.Emit(report.Event{Kind: report.Success, Message: "no changes since last snapshot"})
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "added: %d, modified: %d, removed: %d\n",
				len(changes.Added), len(changes.Modified), len(changes.Removed))
			fmt.Fprintf(out, "operations to regenerate: %v\n", changes.Regenerate())
			return nil
		},
	}

	cmd.Flags().StringVarP(&repo, "repo", "r", "", "local path or git URL of the service-console source tree")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory holding the snapshot (default: generated_tests)")

	return cmd
}

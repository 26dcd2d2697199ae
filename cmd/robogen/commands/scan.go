package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"robogen/cmd/robogen/internal/clierr"
	"robogen/internal/agent"
	"robogen/internal/report"
)

func newScanCmd() *cobra.Command {
	var repo string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Extract the operation model from the source tree and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			repo = firstNonEmpty(repo, cfg.Repo)
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

			a := agent.New(agent.Options{RepoDir: repoDir, Reporter: rep, Logger: log})
			ops, err := a.Scan()
			if err != nil {
				return clierr.Wrap(1, "scan failed", err)
			}
			if len(ops) == 0 {
				rep.Emit(report.Event{Kind: report.Warning, Message: "no operations found in " + repoDir})
				return nil
			}

			fmt.Fprint(cmd.OutOrStdout(), agent.Summary(ops))
			return nil
		},
	}

	cmd.Flags().StringVarP(&repo, "repo", "r", "", "local path or git URL of the service-console source tree")

	return cmd
}

package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"robogen/cmd/robogen/internal/clierr"
	"robogen/internal/agent"
	"robogen/internal/gitrepo"
	"robogen/internal/report"
	"robogen/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var (
		repo        string
		output      string
		apiKey      string
		baseURL     string
		modelID     string
		template    bool
		pollSeconds float64
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Generate suites, then watch the source tree and regenerate on change",
		Long: "watch runs a full generation pass, then keeps the suites current: a local\n" +
			"tree is watched through filesystem events, a git URL is polled for new commits.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			repo = firstNonEmpty(repo, cfg.Repo)
			output = firstNonEmpty(output, cfg.Output, "generated_tests")
			modelID = firstNonEmpty(modelID, cfg.Model)
			baseURL = firstNonEmpty(baseURL, cfg.BaseURL)
			template = template || cfg.Template
			pollSeconds = resolvePollSeconds(pollSeconds, cfg.PollSeconds)
			if repo == "" {
				return clierr.New(2, "--repo is required (flag or robogen.yaml)")
			}

			rep := report.NewConsole(cmd.OutOrStdout())
			log := buildLogger(cmd)
			defer func() { _ = log.Sync() }()

			remote := gitrepo.IsGitURL(repo)
			repoDir, _, err := resolveRepoDir(cmd.Context(), repo, rep)
			if err != nil {
				return err
			}

			a := agent.New(agent.Options{
				RepoDir:   repoDir,
				OutputDir: output,
				Generator: pickGenerator(apiKey, baseURL, modelID, template, rep),
				Reporter:  rep,
				Logger:    log,
			})
			store := agent.NewSnapshotStore(filepath.Join(output, ".robogen"))

			// Initial full pass so the watcher starts from a fresh baseline.
			if _, err := a.Run(cmd.Context()); err != nil {
				return clierr.Wrap(1, "initial generation failed", err)
			}
			if err := store.Write(a.Snapshot()); err != nil {
				return clierr.Wrap(1, "saving snapshot", err)
			}

			w := watch.New(a, store, rep, log)
			if remote {
				err = w.Remote(cmd.Context(), repo, repoDir, pollSeconds)
			} else {
				err = w.Local(cmd.Context(), repoDir)
			}
			if err != nil {
				return clierr.Wrap(1, "watch failed", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&repo, "repo", "r", "", "local path or git URL of the service-console source tree")
	cmd.Flags().StringVarP(&output, "output", "o", "", "directory to write generated suites to (default: generated_tests)")
	cmd.Flags().StringVarP(&apiKey, "api-key", "k", "", "API key for the LLM endpoint (default: $OPENAI_API_KEY)")
	cmd.Flags().StringVarP(&baseURL, "base-url", "u", "", "OpenAI-compatible endpoint base URL (default: $OPENAI_BASE_URL)")
	cmd.Flags().StringVarP(&modelID, "model", "m", "", "LLM model identifier")
	cmd.Flags().BoolVar(&template, "template", false, "use the deterministic template generator, no LLM calls")
	cmd.Flags().Float64Var(&pollSeconds, "poll-seconds", 0, "remote polling interval in seconds (default: 60)")

	return cmd
}

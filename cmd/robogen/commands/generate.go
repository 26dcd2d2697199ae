package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"robogen/cmd/robogen/internal/clierr"
	"robogen/internal/agent"
	"robogen/internal/report"
)

func newGenerateCmd() *cobra.Command {
	var (
		repo     string
		output   string
		apiKey   string
		baseURL  string
		modelID  string
		template bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Scan the source tree and generate Robot Framework suites for every operation",
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

			a := agent.New(agent.Options{
				RepoDir:   repoDir,
				OutputDir: output,
				Generator: pickGenerator(apiKey, baseURL, modelID, template, rep),
				Reporter:  rep,
				Logger:    log,
			})
			generated, err := a.Run(cmd.Context())
			if err != nil {
				return clierr.Wrap(1, "generation failed", err)
			}
			if len(generated) == 0 {
				return clierr.New(1, "no operations found in "+repoDir)
			}

			store := agent.NewSnapshotStore(filepath.Join(output, ".robogen"))
			if err := store.Write(a.Snapshot()); err != nil {
				return clierr.Wrap(1, "saving snapshot", err)
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

	return cmd
}

package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"robogen/cmd/robogen/internal/clierr"
	"robogen/internal/agent"
	"robogen/internal/config"
	"robogen/internal/gitrepo"
	"robogen/internal/llmgen"
	"robogen/internal/report"
	"robogen/internal/synth"
	"robogen/internal/watch"
)

// loadConfig reads the config file named by --config, or the conventional
// robogen.yaml when unset. A missing conventional file is fine.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	explicit := path != ""
	if !explicit {
		path = config.DefaultFileName
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, clierr.Wrap(2, "loading config", err)
	}
	if explicit {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return nil, clierr.Newf(2, "config file not found: %s", path)
		}
	}
	return cfg, nil
}

// buildLogger returns a development logger under --verbose and a silent one
// otherwise; operator-facing progress goes through the reporter either way.
func buildLogger(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// resolveRepoDir turns the --repo value into a local directory, cloning or
// updating a cached copy when it is a git URL.
func resolveRepoDir(ctx context.Context, repo string, rep report.Reporter) (string, bool, error) {
	if gitrepo.IsGitURL(repo) {
		rep.Emit(report.Event{Kind: report.Info, Message: "fetching " + repo})
		local, err := gitrepo.CloneOrUpdate(ctx, repo, gitrepo.DefaultCacheRoot())
		if err != nil {
			return "", false, clierr.Wrap(1, "fetching repository", err)
		}
		return local, true, nil
	}
	info, err := os.Stat(repo)
	if err != nil || !info.IsDir() {
		return "", false, clierr.Newf(2, "--repo must be a local directory or git URL, got: %s", repo)
	}
	return repo, false, nil
}

// pickGenerator selects the LLM strategy when credentials are available and
// the deterministic synthesizer otherwise. The synthesizer always remains
// the per-operation fallback inside the agent.
func pickGenerator(apiKey, baseURL, modelName string, templateOnly bool, rep report.Reporter) agent.Generator {
	if templateOnly {
		return synth.Synthesizer{}
	}
	if apiKey == "" && os.Getenv("OPENAI_API_KEY") == "" && baseURL == "" && os.Getenv("OPENAI_BASE_URL") == "" {
		rep.Emit(report.Event{Kind: report.Warning, Message: "no API key or base URL configured, using template-based generator"})
		return synth.Synthesizer{}
	}
	return llmgen.New(llmgen.Options{APIKey: apiKey, BaseURL: baseURL, Model: modelName})
}

// resolvePollSeconds applies the flag > config > default precedence for the
// remote polling interval.
func resolvePollSeconds(flagValue, fileValue float64) float64 {
	if flagValue > 0 {
		return flagValue
	}
	if fileValue > 0 {
		return fileValue
	}
	return watch.DefaultPollSeconds
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Package agent orchestrates the scan -> generate -> resources pipeline and
// the incremental regeneration path used by watch mode. Failures local to one
// operation degrade to the deterministic synthesizer; partial-success batches
// are the expected steady state.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"robogen/internal/diffset"
	"robogen/internal/extract"
	"robogen/internal/model"
	"robogen/internal/report"
	"robogen/internal/synth"
)

// Options configures an Agent. Generator, Reporter, and Logger are optional:
// the deterministic synthesizer, a silent reporter, and a nop logger are the
// defaults.
type Options struct {
	RepoDir   string
	OutputDir string
	Generator Generator
	Reporter  report.Reporter
	Logger    *zap.Logger
}

// Agent ties the extraction engine to a generation strategy.
type Agent struct {
	engine   *extract.Engine
	output   string
	gen      Generator
	fallback synth.Synthesizer
	rep      report.Reporter
	log      *zap.Logger

	ops map[string]*model.OperationModel
}

// Metadata describes one generation run, written next to the suites.
type Metadata struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	RepoPath    string    `json:"repo_path"`
	Generator   string    `json:"generator"`
	Operations  []string  `json:"operations"`
	TestFiles   []string  `json:"test_files"`
}

// New creates an agent for the given source tree and output directory.
func New(opts Options) *Agent {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	var rep report.Reporter = report.Nop{}
	if opts.Reporter != nil {
		rep = opts.Reporter
	}
	var gen Generator = synth.Synthesizer{}
	if opts.Generator != nil {
		gen = opts.Generator
	}
	return &Agent{
		engine: extract.New(opts.RepoDir, log),
		output: opts.OutputDir,
		gen:    gen,
		rep:    rep,
		log:    log,
	}
}

// Operations returns the models from the most recent scan.
func (a *Agent) Operations() map[string]*model.OperationModel { return a.ops }

// Scan runs the extraction engine and retains the result. An empty mapping
// is not an error; downstream callers decide how to surface it.
func (a *Agent) Scan() (map[string]*model.OperationModel, error) {
	a.rep.Emit(report.Event{Kind: report.Info, Message: "scanning " + a.engine.Root()})
	ops, err := a.engine.Scan()
	if err != nil {
		return nil, err
	}
	a.ops = ops
	a.rep.Emit(report.Event{
		Kind:    report.Info,
		Message: fmt.Sprintf("found %d operation(s)", len(ops)),
	})
	return ops, nil
}

// Run executes the full pipeline: scan, generate every operation, write the
// shared resources and metadata. It returns the names that produced a suite.
func (a *Agent) Run(ctx context.Context) ([]string, error) {
	if _, err := a.Scan(); err != nil {
		return nil, err
	}
	if len(a.ops) == 0 {
		a.rep.Emit(report.Event{Kind: report.Warning, Message: "no operations found; nothing to generate"})
		return nil, nil
	}

	generated, err := a.GenerateFor(ctx, a.opNames())
	if err != nil {
		return nil, err
	}
	if err := a.writeSharedResources(); err != nil {
		return nil, err
	}

	a.rep.Emit(report.Event{
		Kind:    report.Success,
		Message: fmt.Sprintf("generated %d test suite(s) in %s", len(generated), a.output),
	})
	return generated, nil
}

// GenerateFor synthesizes and writes suites for the named operations only.
// Unknown names are skipped. A generator failure for one operation falls
// back to the deterministic synthesizer for that operation alone.
func (a *Agent) GenerateFor(ctx context.Context, names []string) ([]string, error) {
	if err := os.MkdirAll(a.output, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	var generated []string
	for _, name := range names {
		op, ok := a.ops[name]
		if !ok {
			continue
		}
		a.rep.Emit(report.Event{Kind: report.Progress, Message: "generating tests for " + name})

		content, err := a.gen.Generate(ctx, op)
		if err != nil {
			a.rep.Emit(report.Event{
				Kind:    report.Warning,
				Message: fmt.Sprintf("%s generation failed for %s, using template fallback: %v", a.gen.Name(), name, err),
			})
			a.log.Warn("generator failed, falling back",
				zap.String("operation", name), zap.Error(err))
			content, _ = a.fallback.Generate(ctx, op)
		}

		path := filepath.Join(a.output, suiteFileName(name))
		if err := atomicWrite(path, []byte(content)); err != nil {
			return generated, fmt.Errorf("writing suite for %s: %w", name, err)
		}
		a.rep.Emit(report.Event{
			Kind:    report.Success,
			Message: fmt.Sprintf("%s (%d bytes)", suiteFileName(name), len(content)),
		})
		generated = append(generated, name)
	}
	return generated, nil
}

// ScanForChanges re-scans the tree and diffs it against a previous snapshot
// of source texts. The fresh scan replaces the retained one.
func (a *Agent) ScanForChanges(previous map[string]string) (diffset.Changes, error) {
	ops, err := a.engine.Scan()
	if err != nil {
		return diffset.Changes{}, err
	}
	a.ops = ops

	changes := diffset.Diff(previous, ops)
	for _, name := range changes.Added {
		a.rep.Emit(report.Event{Kind: report.Change, Message: "new operation: " + name})
	}
	for _, name := range changes.Modified {
		a.rep.Emit(report.Event{Kind: report.Change, Message: "modified operation: " + name})
	}
	for _, name := range changes.Removed {
		a.rep.Emit(report.Event{Kind: report.Change, Message: "removed operation: " + name})
	}
	return changes, nil
}

// Snapshot projects the retained scan to the source-text mapping consumed by
// ScanForChanges on a later pass.
func (a *Agent) Snapshot() map[string]string {
	return diffset.Sources(a.ops)
}

func (a *Agent) writeSharedResources() error {
	names := a.opNames()

	if err := atomicWrite(filepath.Join(a.output, "common.resource"),
		[]byte(synth.BuildCommonResource(names))); err != nil {
		return fmt.Errorf("writing common.resource: %w", err)
	}
	a.rep.Emit(report.Event{Kind: report.Success, Message: "common.resource"})

	if err := atomicWrite(filepath.Join(a.output, "__init__.robot"),
		[]byte(synth.BuildSuiteInit(names))); err != nil {
		return fmt.Errorf("writing __init__.robot: %w", err)
	}
	a.rep.Emit(report.Event{Kind: report.Success, Message: "__init__.robot"})

	files := make([]string, len(names))
	for i, name := range names {
		files[i] = suiteFileName(name)
	}
	meta := Metadata{
		RunID:       ulid.Make().String(),
		GeneratedAt: time.Now().UTC(),
		RepoPath:    a.engine.Root(),
		Generator:   a.gen.Name(),
		Operations:  names,
		TestFiles:   files,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := atomicWrite(filepath.Join(a.output, "scan_metadata.json"), append(data, '\n')); err != nil {
		return fmt.Errorf("writing scan_metadata.json: %w", err)
	}
	a.rep.Emit(report.Event{Kind: report.Success, Message: "scan_metadata.json"})
	return nil
}

// opNames returns the scanned operation names, sorted for determinism.
func (a *Agent) opNames() []string {
	names := make([]string, 0, len(a.ops))
	for name := range a.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func suiteFileName(opName string) string {
	return "test_" + strings.ToLower(opName) + ".robot"
}

// atomicWrite writes content via a temp file and rename so readers never
// observe a partially written suite.
func atomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".robogen-tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

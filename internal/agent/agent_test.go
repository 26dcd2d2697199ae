package agent

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robogen/internal/model"
	"robogen/internal/report"
)

const testCLI = `"""Service console entry point."""
import click

AVAILABLE_OPERATIONS = {
    "deploy": {
        "description": "Deploy the service",
        "script": "scripts/deploy.py",
        "args": ["--target"],
    },
    "status": {
        "description": "Show status",
        "script": "scripts/status.py",
        "args": [],
    },
}

@click.command()
@click.option("--target", help="Target environment")
def run(operation, target):
    pass
`

const testScript = `"""Deploys."""
import sys

def main(target):
    sys.exit(1)
`

func fixtureRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	console := filepath.Join(dir, "service_console")
	require.NoError(t, os.MkdirAll(filepath.Join(console, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(console, "cli.py"), []byte(testCLI), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(console, "scripts", "deploy.py"), []byte(testScript), 0o644))
	return dir
}

// failingGenerator always errors, exercising the per-operation fallback.
type failingGenerator struct{}

func (failingGenerator) Name() string { return "llm" }

func (failingGenerator) Generate(context.Context, *model.OperationModel) (string, error) {
	return "", errors.New("endpoint unreachable")
}

func TestRunWritesSuitesAndResources(t *testing.T) {
	repo := fixtureRepo(t)
	out := t.TempDir()
	rec := &report.Recorder{}

	a := New(Options{RepoDir: repo, OutputDir: out, Reporter: rec})
	generated, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"deploy", "status"}, generated)

	for _, name := range []string{
		"test_deploy.robot", "test_status.robot",
		"common.resource", "__init__.robot", "scan_metadata.json",
	} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}

	data, err := os.ReadFile(filepath.Join(out, "scan_metadata.json"))
	require.NoError(t, err)
	var meta Metadata
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.NotEmpty(t, meta.RunID)
	assert.Equal(t, "template", meta.Generator)
	assert.Equal(t, []string{"deploy", "status"}, meta.Operations)
	assert.Equal(t, []string{"test_deploy.robot", "test_status.robot"}, meta.TestFiles)
	assert.False(t, meta.GeneratedAt.IsZero())
}

func TestRunEmptyTreeIsNotAnError(t *testing.T) {
	repo := t.TempDir()
	out := t.TempDir()
	rec := &report.Recorder{}

	a := New(Options{RepoDir: repo, OutputDir: out, Reporter: rec})
	generated, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, generated)

	var sawWarning bool
	for _, ev := range rec.Events() {
		if ev.Kind == report.Warning {
			sawWarning = true
		}
	}
	assert.True(t, sawWarning, "empty scan should be surfaced as a warning")
}

func TestGeneratorFailureFallsBackPerOperation(t *testing.T) {
	repo := fixtureRepo(t)
	out := t.TempDir()
	rec := &report.Recorder{}

	a := New(Options{RepoDir: repo, OutputDir: out, Generator: failingGenerator{}, Reporter: rec})
	generated, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, generated, 2)

	// The fallback still produced real suites.
	data, err := os.ReadFile(filepath.Join(out, "test_deploy.robot"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "deploy Smoke Test")

	var fallbacks int
	for _, ev := range rec.Events() {
		if ev.Kind == report.Warning {
			fallbacks++
		}
	}
	assert.Equal(t, 2, fallbacks)
}

func TestScanForChangesAndSnapshot(t *testing.T) {
	repo := fixtureRepo(t)
	a := New(Options{RepoDir: repo, OutputDir: t.TempDir()})

	_, err := a.Scan()
	require.NoError(t, err)
	baseline := a.Snapshot()
	require.Len(t, baseline, 2)

	// Unchanged tree: empty delta.
	changes, err := a.ScanForChanges(baseline)
	require.NoError(t, err)
	assert.True(t, changes.Empty())

	// Touch the deploy script and re-diff.
	script := filepath.Join(repo, "service_console", "scripts", "deploy.py")
	require.NoError(t, os.WriteFile(script, []byte(testScript+"\n# changed\n"), 0o644))

	changes, err = a.ScanForChanges(baseline)
	require.NoError(t, err)
	assert.Equal(t, []string{"deploy"}, changes.Modified)
	assert.Empty(t, changes.Added)
	assert.Empty(t, changes.Removed)
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	store := NewSnapshotStore(filepath.Join(t.TempDir(), ".robogen"))

	// Missing snapshot reads as clean state.
	got, err := store.Read()
	require.NoError(t, err)
	assert.Nil(t, got)

	want := map[string]string{"deploy": "source text", "status": ""}
	require.NoError(t, store.Write(want))

	got, err = store.Read()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.Reset())
	got, err = store.Read()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSummary(t *testing.T) {
	repo := fixtureRepo(t)
	a := New(Options{RepoDir: repo})
	ops, err := a.Scan()
	require.NoError(t, err)

	s := Summary(ops)
	assert.Contains(t, s, "Service Console Scan Summary")
	assert.Contains(t, s, "Operation: deploy")
	assert.Contains(t, s, "Args: target (required)")
	assert.Contains(t, s, "Operation: status")

	assert.Equal(t, "No operations found.", Summary(nil))
}

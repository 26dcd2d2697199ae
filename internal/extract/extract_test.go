package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robogen/internal/model"
)

const fixtureCLI = `"""Service console entry point."""
import click

AVAILABLE_OPERATIONS = {
    "deploy": {
        "description": "Deploy the service to an environment",
        "script": "scripts/deploy.py",
        "args": ["--target", "--version"],
    },
    "status": {
        "description": "Show service status",
        "script": "scripts/status.py",
        "args": [],
    },
}

@click.command()
@click.option("--target", "-t", help="Deployment target environment")
@click.option("--version", type=click.INT, default=1, help="Release version")
@click.option("--force", is_flag=True, help="Skip confirmation")
def run(operation, target, version, force):
    """Run a registered operation."""
    pass
`

const fixtureDeployScript = `"""Deploys the service."""
import os
import sys

API_KEY = os.environ.get("DEPLOY_API_KEY")

def main(target, version):
    """Entry point."""
    region = os.environ.get("DEPLOY_REGION")
    if not target:
        print("Error: target is required", file=sys.stderr)
        sys.exit(1)
    return 0

def rollback(target):
    return 1
`

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestScanExtractsOperations(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"service_console/cli.py":            fixtureCLI,
		"service_console/scripts/deploy.py": fixtureDeployScript,
	})

	ops, err := New(dir, nil).Scan()
	require.NoError(t, err)
	require.Len(t, ops, 2)

	deploy := ops["deploy"]
	require.NotNil(t, deploy)
	assert.Equal(t, "Deploy the service to an environment", deploy.Description)
	assert.Equal(t, "scripts/deploy.py", deploy.ScriptPath)

	require.Len(t, deploy.Arguments, 2)
	target := deploy.Arguments[0]
	assert.Equal(t, "target", target.Name)
	assert.True(t, target.Required)
	assert.Equal(t, model.TypeString, target.Type)
	assert.Equal(t, "Deployment target environment", target.Description)

	version := deploy.Arguments[1]
	assert.Equal(t, "version", version.Name)
	assert.True(t, version.Required, "registry stays authoritative for required-ness")
	assert.Equal(t, model.TypeInteger, version.Type)
	assert.Equal(t, "1", version.Default)

	status := ops["status"]
	require.NotNil(t, status)
	assert.Empty(t, status.Arguments)
}

func TestScanScriptEnrichment(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"service_console/cli.py":            fixtureCLI,
		"service_console/scripts/deploy.py": fixtureDeployScript,
	})

	ops, err := New(dir, nil).Scan()
	require.NoError(t, err)
	deploy := ops["deploy"]
	require.NotNil(t, deploy)

	assert.Equal(t, fixtureDeployScript, deploy.SourceText)
	assert.Equal(t, []string{"DEPLOY_API_KEY", "DEPLOY_REGION"}, deploy.EnvVars)

	require.Len(t, deploy.InnerFunctions, 2)
	assert.Equal(t, "main", deploy.InnerFunctions[0].Name)
	assert.Equal(t, "Entry point.", deploy.InnerFunctions[0].Docstring)
	assert.Equal(t, []string{"target", "version"}, deploy.InnerFunctions[0].Params)

	wantSignals := []model.ErrorSignal{
		{Kind: SignalErrorPrint, Count: 1},
		{Kind: SignalExitCode, Count: 1},
		{Kind: SignalStderrOutput, Count: 1},
		{Kind: SignalFailureReturn, Count: 1},
	}
	assert.Equal(t, wantSignals, deploy.ErrorSignals)

	// Missing script is non-fatal; the model just stays unenriched.
	status := ops["status"]
	require.NotNil(t, status)
	assert.Empty(t, status.SourceText)
	assert.Empty(t, status.EnvVars)
}

func TestScanEntryCandidates(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"console dir", "service_console/cli.py"},
		{"repo root", "cli.py"},
		{"src layout", "src/cli.py"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeTree(t, dir, map[string]string{tt.path: fixtureCLI})

			ops, err := New(dir, nil).Scan()
			require.NoError(t, err)
			assert.Len(t, ops, 2)
		})
	}
}

func TestScanFallbackWalkReanchors(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"backend/tooling/service_console/cli.py":            fixtureCLI,
		"backend/tooling/service_console/scripts/deploy.py": fixtureDeployScript,
	})

	e := New(dir, nil)
	ops, err := e.Scan()
	require.NoError(t, err)
	require.Len(t, ops, 2)

	// Root re-anchors to the console dir's parent so script paths resolve.
	assert.Equal(t, filepath.Join(dir, "backend", "tooling"), e.Root())
	assert.Equal(t, fixtureDeployScript, ops["deploy"].SourceText)
}

func TestScanMissingEntryPoint(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"README.md": "nothing here"})

	ops, err := New(dir, nil).Scan()
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestScanEntrySyntaxErrorIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"service_console/cli.py": `AVAILABLE_OPERATIONS = {"deploy": `,
	})

	_, err := New(dir, nil).Scan()
	assert.Error(t, err)
}

func TestScanNonLiteralRegistry(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"service_console/cli.py": `AVAILABLE_OPERATIONS = load_operations()`,
	})

	ops, err := New(dir, nil).Scan()
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestScanScriptParseFailureDegrades(t *testing.T) {
	dir := t.TempDir()
	broken := "import sys\nX = \"unterminated\nstatus = \"error\"\nsys.exit(2)\n"
	writeTree(t, dir, map[string]string{
		"service_console/cli.py":            `AVAILABLE_OPERATIONS = {"deploy": {"script": "scripts/deploy.py", "args": []}}`,
		"service_console/scripts/deploy.py": broken,
	})

	ops, err := New(dir, nil).Scan()
	require.NoError(t, err)
	deploy := ops["deploy"]
	require.NotNil(t, deploy)

	// Textual scans still ran; structural fields were skipped.
	assert.Equal(t, broken, deploy.SourceText)
	assert.NotEmpty(t, deploy.ErrorSignals)
	assert.Empty(t, deploy.InnerFunctions)
}

func TestNormalizeArgName(t *testing.T) {
	tests := []struct {
		flag string
		want string
	}{
		{"--target", "target"},
		{"--dry-run", "dry_run"},
		{"-v", "v"},
		{"no_prefix", "no_prefix"},
		{"--multi-part-name", "multi_part_name"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeArgName(tt.flag), tt.flag)
	}
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"INT", model.TypeInteger},
		{"integer", model.TypeInteger},
		{"STRING", model.TypeString},
		{"str", model.TypeString},
		{"text", model.TypeString},
		{"Path", model.TypePath},
		{"FILE", model.TypePath},
		{"BOOL", model.TypeFlag},
		{"Choice", "choice"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeType(tt.raw), tt.raw)
	}
}

func TestMergeDiscardsUnmatchedOptions(t *testing.T) {
	ops := map[string]*model.OperationModel{
		"deploy": {
			Name: "deploy",
			Arguments: []model.OperationArgument{
				{Name: "target", Required: true, Type: model.TypeString},
			},
		},
	}
	mergeOptions(ops, []model.OperationArgument{
		{Name: "target", Type: model.TypePath, Description: "where to deploy"},
		{Name: "unrelated", Type: model.TypeFlag},
	})

	require.Len(t, ops["deploy"].Arguments, 1)
	arg := ops["deploy"].Arguments[0]
	assert.Equal(t, model.TypePath, arg.Type)
	assert.Equal(t, "where to deploy", arg.Description)
	assert.True(t, arg.Required)
}

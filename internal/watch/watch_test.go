package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robogen/internal/agent"
	"robogen/internal/report"
)

func TestMatchesSource(t *testing.T) {
	root := filepath.FromSlash("/repo")
	tests := []struct {
		path string
		want bool
	}{
		{"/repo/cli.py", true},
		{"/repo/service_console/cli.py", true},
		{"/repo/service_console/scripts/deploy.py", true},
		{"/repo/README.md", false},
		{"/repo/scripts/run.sh", false},
		{"/repo/deep/nested/tree/op.py", true},
	}
	for _, tt := range tests {
		got := matchesSource(root, filepath.FromSlash(tt.path))
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestProcessSettledWaitsForDebounceWindow(t *testing.T) {
	w := New(nil, nil, nil, nil)

	// A fresh event keeps the batch pending.
	w.pending["cli.py"] = time.Now()
	assert.False(t, w.settled(time.Now()))

	// Once every event is older than the window, the batch is ready.
	w.pending["cli.py"] = time.Now().Add(-debounceWindow - time.Second)
	assert.True(t, w.settled(time.Now()))

	// One late event holds back the whole batch.
	w.pending["other.py"] = time.Now()
	assert.False(t, w.settled(time.Now()))
}

func TestProcessSettledRegeneratesChangedOperations(t *testing.T) {
	repo := t.TempDir()
	console := filepath.Join(repo, "service_console")
	require.NoError(t, os.MkdirAll(filepath.Join(console, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(console, "cli.py"), []byte(`
AVAILABLE_OPERATIONS = {
    "deploy": {"description": "Deploy", "script": "scripts/deploy.py", "args": ["--target"]},
}
`), 0o644))
	script := filepath.Join(console, "scripts", "deploy.py")
	require.NoError(t, os.WriteFile(script, []byte("def main(target):\n    pass\n"), 0o644))

	out := t.TempDir()
	rec := &report.Recorder{}
	a := agent.New(agent.Options{RepoDir: repo, OutputDir: out, Reporter: rec})
	store := agent.NewSnapshotStore(filepath.Join(out, ".robogen"))

	_, err := a.Scan()
	require.NoError(t, err)
	require.NoError(t, store.Write(a.Snapshot()))

	w := New(a, store, rec, nil)

	// A settled batch over an unchanged tree regenerates nothing.
	w.pending["cli.py"] = time.Now().Add(-debounceWindow - time.Second)
	w.processSettled(context.Background())
	assert.Empty(t, w.pending)
	_, err = os.Stat(filepath.Join(out, "test_deploy.robot"))
	assert.True(t, os.IsNotExist(err))

	// Touch the script, settle again: the suite is written and the snapshot
	// now carries the new source text.
	changed := "def main(target):\n    pass\n# changed\n"
	require.NoError(t, os.WriteFile(script, []byte(changed), 0o644))
	w.pending[script] = time.Now().Add(-debounceWindow - time.Second)
	w.processSettled(context.Background())

	data, err := os.ReadFile(filepath.Join(out, "test_deploy.robot"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "deploy Smoke Test")

	snapshot, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, changed, snapshot["deploy"])

	var updated bool
	for _, ev := range rec.Events() {
		if ev.Kind == report.Success && ev.Message == "tests updated" {
			updated = true
		}
	}
	assert.True(t, updated)
}

func TestNewDefaults(t *testing.T) {
	w := New(nil, nil, nil, nil)
	require.NotNil(t, w.rep)
	require.NotNil(t, w.log)
	require.NotNil(t, w.pending)
}

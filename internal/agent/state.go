package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotStore persists the last scan's source texts under the state
// directory so change detection survives process restarts.
type SnapshotStore struct {
	baseDir string
}

// NewSnapshotStore creates a store at the given base directory
// (e.g. .robogen).
func NewSnapshotStore(baseDir string) *SnapshotStore {
	return &SnapshotStore{baseDir: baseDir}
}

func (s *SnapshotStore) path() string {
	return filepath.Join(s.baseDir, "snapshot.json")
}

type snapshotFile struct {
	Operations map[string]string `json:"operations"`
}

// Read loads the previous snapshot. A missing file is clean state, not an
// error, and returns nil.
func (s *SnapshotStore) Read() (map[string]string, error) {
	f, err := os.Open(s.path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	var snap snapshotFile
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap.Operations, nil
}

// Write saves the snapshot, replacing any previous one.
func (s *SnapshotStore) Write(sources map[string]string) (err error) {
	path := s.path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshotFile{Operations: sources})
}

// Reset clears the state directory.
func (s *SnapshotStore) Reset() error {
	return os.RemoveAll(s.baseDir)
}

// Package watch drives incremental regeneration: it observes a local source
// tree through fsnotify or a remote one through revision polling, and on
// every settled change runs scan -> diff -> regenerate-changed-subset.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"robogen/internal/agent"
	"robogen/internal/gitrepo"
	"robogen/internal/report"
)

// SourcePattern selects the files whose changes can alter the operation
// model; everything else is ignored.
const SourcePattern = "**/*.py"

const (
	debounceWindow = 2 * time.Second
	tickInterval   = 500 * time.Millisecond
	minPollSeconds = 1.0

	// DefaultPollSeconds is the remote polling interval used when neither
	// the flag nor the config file sets one.
	DefaultPollSeconds = 60.0
)

// Watcher re-runs the agent's incremental path whenever the source changes.
type Watcher struct {
	agent *agent.Agent
	store *agent.SnapshotStore
	rep   report.Reporter
	log   *zap.Logger

	pending map[string]time.Time
}

// New creates a watcher around an agent that has already completed an
// initial run. The snapshot store carries change state across restarts.
func New(a *agent.Agent, store *agent.SnapshotStore, rep report.Reporter, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	if rep == nil {
		rep = report.Nop{}
	}
	return &Watcher{
		agent:   a,
		store:   store,
		rep:     rep,
		log:     log,
		pending: map[string]time.Time{},
	}
}

// Local watches dir with fsnotify until ctx is cancelled. New directories
// are added to the watch as they appear.
func (w *Watcher) Local(ctx context.Context, dir string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fsw.Close() }()

	if err := addRecursive(fsw, dir); err != nil {
		return err
	}
	w.rep.Emit(report.Event{Kind: report.Info, Message: "watching for changes in " + dir})

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, dir, ev)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-ticker.C:
			w.processSettled(ctx)
		}
	}
}

// Remote polls the remote HEAD every pollSeconds, pulls on change, and runs
// the same regeneration path against the local clone.
func (w *Watcher) Remote(ctx context.Context, repoURL, localDir string, pollSeconds float64) error {
	if pollSeconds < minPollSeconds {
		pollSeconds = minPollSeconds
	}
	interval := time.Duration(pollSeconds * float64(time.Second))

	lastSHA, err := gitrepo.RemoteHeadSHA(ctx, repoURL)
	if err != nil {
		w.log.Warn("unable to read remote HEAD", zap.Error(err))
	}
	w.rep.Emit(report.Event{Kind: report.Info, Message: "polling remote repo " + repoURL})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		sha, err := gitrepo.RemoteHeadSHA(ctx, repoURL)
		if err != nil {
			w.log.Warn("unable to read remote HEAD", zap.Error(err))
			continue
		}
		if sha == "" || sha == lastSHA {
			continue
		}

		w.rep.Emit(report.Event{Kind: report.Change, Message: "new commit detected: " + sha})
		if err := gitrepo.Pull(ctx, localDir); err != nil {
			w.log.Warn("pull failed", zap.Error(err))
			lastSHA = sha
			continue
		}
		w.regenerateChanged(ctx)
		lastSHA = sha
	}
}

// handleEvent records relevant file events for debounced processing.
func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, root string, ev fsnotify.Event) {
	// Newly created directories join the watch.
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			_ = addRecursive(fsw, ev.Name)
			return
		}
	}
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if !matchesSource(root, ev.Name) {
		return
	}
	w.log.Debug("change detected", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
	w.pending[ev.Name] = time.Now()
}

// processSettled runs regeneration once events have quieted down past the
// debounce window.
func (w *Watcher) processSettled(ctx context.Context) {
	if !w.settled(time.Now()) {
		return
	}
	w.pending = map[string]time.Time{}
	w.regenerateChanged(ctx)
}

// settled reports whether there is a pending batch whose newest event is
// older than the debounce window.
func (w *Watcher) settled(now time.Time) bool {
	if len(w.pending) == 0 {
		return false
	}
	for _, t := range w.pending {
		if now.Sub(t) < debounceWindow {
			return false
		}
	}
	return true
}

func (w *Watcher) regenerateChanged(ctx context.Context) {
	previous, err := w.store.Read()
	if err != nil {
		w.log.Warn("snapshot unreadable, forcing full regeneration", zap.Error(err))
		previous = nil
	}

	changes, err := w.agent.ScanForChanges(previous)
	if err != nil {
		w.rep.Emit(report.Event{Kind: report.Failure, Message: "scan failed: " + err.Error()})
		return
	}

	names := changes.Regenerate()
	if len(names) == 0 {
		w.rep.Emit(report.Event{Kind: report.Progress, Message: "no operation changes detected"})
	} else {
		if _, err := w.agent.GenerateFor(ctx, names); err != nil {
			w.rep.Emit(report.Event{Kind: report.Failure, Message: "regeneration failed: " + err.Error()})
			return
		}
		w.rep.Emit(report.Event{Kind: report.Success, Message: "tests updated"})
	}

	if err := w.store.Write(w.agent.Snapshot()); err != nil {
		w.log.Warn("snapshot write failed", zap.Error(err))
	}
}

// matchesSource reports whether path (relative to root) matches the source
// pattern.
func matchesSource(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	ok, err := doublestar.Match(SourcePattern, filepath.ToSlash(rel))
	return err == nil && ok
}

// addRecursive registers dir and every subdirectory with the watcher.
func addRecursive(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); name == ".git" || name == "node_modules" || name == "__pycache__" {
			return fs.SkipDir
		}
		return fsw.Add(path)
	})
}

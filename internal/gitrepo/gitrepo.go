// Package gitrepo maintains local clones of remote source trees and exposes
// the remote-revision probe used by watch mode's polling path. Everything
// goes through the git binary.
package gitrepo

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

var gitURLPattern = regexp.MustCompile(`^(https?://|git@|ssh://|git://)`)

// IsGitURL reports whether value looks like a remote git location rather
// than a local path.
func IsGitURL(value string) bool {
	return gitURLPattern.MatchString(strings.TrimSpace(value))
}

// CacheDirFor returns the stable per-URL clone directory under cacheRoot.
func CacheDirFor(cacheRoot, repoURL string) string {
	sum := sha1.Sum([]byte(strings.TrimSpace(repoURL)))
	return filepath.Join(cacheRoot, "repo_"+hex.EncodeToString(sum[:])[:12])
}

// DefaultCacheRoot returns the conventional cache location under the user's
// home directory.
func DefaultCacheRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "robogen-cache")
	}
	return filepath.Join(home, ".cache", "robogen")
}

// CloneOrUpdate ensures a local clone exists for repoURL and returns its
// path. An existing clone is re-pointed at the URL and fetched.
func CloneOrUpdate(ctx context.Context, repoURL, cacheRoot string) (string, error) {
	if !IsGitURL(repoURL) {
		return "", fmt.Errorf("expected a git repo URL, got: %s", repoURL)
	}
	if err := os.MkdirAll(cacheRoot, 0o755); err != nil {
		return "", err
	}
	repoDir := CacheDirFor(cacheRoot, repoURL)

	if _, err := os.Stat(filepath.Join(repoDir, ".git")); err != nil {
		if _, err := os.Stat(repoDir); err == nil {
			return "", fmt.Errorf("cache path exists but is not a git repository: %s (remove it manually)", repoDir)
		}
		if _, err := runGit(ctx, "", "clone", "--depth", "1", repoURL, repoDir); err != nil {
			return "", err
		}
		return repoDir, nil
	}

	// Best effort: the remote may already point at the URL.
	_, _ = runGit(ctx, repoDir, "remote", "set-url", "origin", repoURL)
	if _, err := runGit(ctx, repoDir, "fetch", "--prune", "origin"); err != nil {
		return "", err
	}
	return repoDir, nil
}

// RemoteHeadSHA returns the SHA of the remote HEAD without touching the
// local clone.
func RemoteHeadSHA(ctx context.Context, repoURL string) (string, error) {
	out, err := runGit(ctx, "", "ls-remote", repoURL, "HEAD")
	if err != nil {
		return "", err
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], nil
}

// Pull fast-forwards the local clone.
func Pull(ctx context.Context, repoDir string) error {
	_, err := runGit(ctx, repoDir, "pull", "--ff-only")
	return err
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", args[0], msg)
	}
	return strings.TrimSpace(string(out)), nil
}

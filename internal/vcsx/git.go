// Package vcsx is the version-control helper: a thin wrapper that shells
// out to the real git binary via os/exec + CombinedOutput. The engine
// needs byte-identical behavior to whatever git the workspace actually has
// installed — hooks, configured identity, commit signing — so no go-git
// library is introduced here.
package vcsx

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrDirty describes a working tree with uncommitted changes. No Repo
// method in this package returns it.
var ErrDirty = errors.New("working tree has uncommitted changes")

// Repo is a VCS helper bound to a single workspace directory.
type Repo struct {
	Dir string
}

// Open returns a Repo rooted at dir. It does not verify dir is a git
// repository; call Init first for a fresh workspace.
func Open(dir string) *Repo { return &Repo{Dir: dir} }

// Init runs `git init` if dir is not already a repository. Idempotent.
func (r *Repo) Init(ctx context.Context) error {
	if _, err := r.run(ctx, "rev-parse", "--git-dir"); err == nil {
		return nil
	}
	if _, err := r.run(ctx, "init"); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	return nil
}

// HeadHash returns the current HEAD commit hash, or "" in a repository with
// no commits yet.
func (r *Repo) HeadHash(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		if strings.Contains(out, "unknown revision") || strings.Contains(out, "ambiguous argument") {
			return "", nil
		}
		return "", fmt.Errorf("git rev-parse HEAD: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// HasUncommittedChanges reports whether the working tree has any changes
// (staged, unstaged, or untracked) relative to HEAD.
func (r *Repo) HasUncommittedChanges(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}

// DirtyFiles returns the list of paths reported dirty by `git status
// --porcelain`.
func (r *Repo) DirtyFiles(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("git status: %w", err)
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) < 4 {
			continue
		}
		files = append(files, strings.TrimSpace(line[3:]))
	}
	return files, nil
}

// CommitAll stages every change and commits with message. If there is
// nothing to commit, it is a no-op that returns nil.
func (r *Repo) CommitAll(ctx context.Context, message string) error {
	dirty, err := r.HasUncommittedChanges(ctx)
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}
	if _, err := r.run(ctx, "add", "-A"); err != nil {
		return fmt.Errorf("git add: %w", err)
	}
	if _, err := r.run(ctx, "commit", "-m", message); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}
	return nil
}

// CommitFile stages and commits exactly one path, so a snapshot commit (the
// task-list file alone) never sweeps up unrelated worker changes.
func (r *Repo) CommitFile(ctx context.Context, relPath, message string) error {
	if _, err := r.run(ctx, "add", "--", relPath); err != nil {
		return fmt.Errorf("git add %s: %w", relPath, err)
	}
	if _, err := r.run(ctx, "diff", "--cached", "--quiet"); err == nil {
		return nil // nothing staged for this path
	}
	if _, err := r.run(ctx, "commit", "-m", message, "--", relPath); err != nil {
		return fmt.Errorf("git commit %s: %w", relPath, err)
	}
	return nil
}

// Restore hard-resets the working tree to hash. Used to undo a partially
// applied task or Orchestrator edit.
func (r *Repo) Restore(ctx context.Context, hash string) error {
	if hash == "" {
		return nil
	}
	if _, err := r.run(ctx, "reset", "--hard", hash); err != nil {
		return fmt.Errorf("git reset --hard %s: %w", hash, err)
	}
	return nil
}

// RecentLog returns the last n commit subjects, newest first, for display
// in the `status` subcommand.
func (r *Repo) RecentLog(ctx context.Context, n int) ([]string, error) {
	out, err := r.run(ctx, "log", fmt.Sprintf("-%d", n), "--pretty=format:%h %s")
	if err != nil {
		if strings.Contains(out, "does not have any commits") {
			return nil, nil
		}
		return nil, fmt.Errorf("git log: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// EnsureIgnored appends path to .gitignore if not already present.
func (r *Repo) EnsureIgnored(path string) error {
	return ensureLineInFile(r.Dir+"/.gitignore", path)
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

package gitclean

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/execx"
)

// gitEnv disables overcommit hooks on every checkout and push.
const gitEnv = "OVERCOMMIT_DISABLE=1"

type repo struct {
	git    *execx.Git
	remote string
	dryRun bool
}

func newRepo(r execx.Runner, dir, remote string, dryRun bool) *repo {
	return &repo{git: execx.NewGit(r, dir, gitEnv), remote: remote, dryRun: dryRun}
}

func (r *repo) currentBranch(ctx context.Context) string {
	if b, err := r.git.Run(ctx, "branch", "--show-current"); err == nil && b != "" {
		return b
	}
	if b, err := r.git.Run(ctx, "symbolic-ref", "--short", "-q", "HEAD"); err == nil {
		return b
	}
	return ""
}

// defaultBranch tries the remote HEAD, then init.defaultBranch, then main if
// it exists locally, else master.
func (r *repo) defaultBranch(ctx context.Context) string {
	prefix := "refs/remotes/" + r.remote + "/"
	if ref, err := r.git.Run(ctx, "symbolic-ref", prefix+"HEAD"); err == nil && ref != "" {
		return strings.TrimPrefix(ref, prefix)
	}
	if b, err := r.git.Run(ctx, "config", "--get", "init.defaultBranch"); err == nil && b != "" {
		return b
	}
	if out, _ := r.git.Run(ctx, "branch", "--list", "main", "master"); strings.Contains(out, "main") {
		return "main"
	}
	return "master"
}

func (r *repo) remoteExists(ctx context.Context, name string) bool {
	return r.git.OK(ctx, "remote", "get-url", name)
}

func (r *repo) dirty(ctx context.Context) bool {
	return !r.git.OK(ctx, "diff", "--quiet", "HEAD")
}

func (r *repo) stash(ctx context.Context, msg string) error {
	console.Warn("Found a dirty working tree, stashing")
	_, err := r.git.Run(ctx, "stash", "push", "-m", msg)
	return err
}

func (r *repo) popStash(ctx context.Context) {
	console.Info("Restoring working tree from stash")
	if _, err := r.git.Run(ctx, "stash", "pop"); err != nil {
		console.Error("Failed to restore stash. You may need to run 'git stash pop' manually.", err)
	}
}

func (r *repo) checkout(ctx context.Context, branch string) error {
	if r.dryRun {
		console.Info("Would checkout %s", branch)
		return nil
	}
	console.Info("Checking out %s", branch)
	if _, err := r.git.Run(ctx, "checkout", branch); err != nil {
		return fmt.Errorf("checkout %s: %w", branch, err)
	}
	return nil
}

func (r *repo) fetch(ctx context.Context, remote string, args ...string) error {
	if r.dryRun {
		console.Info("Would fetch from %s", remote)
		return nil
	}
	console.Info("Fetching from %s", remote)
	if _, err := r.git.Run(ctx, append([]string{"fetch", remote}, args...)...); err != nil {
		return fmt.Errorf("fetch from %s: %w", remote, err)
	}
	return nil
}

func (r *repo) prune(ctx context.Context, remote string) {
	if r.dryRun {
		console.Println("Would prune stale references from: %s", console.Yellow(remote))
		return
	}
	console.Info("Pruning stale references from %s", remote)
	if _, err := r.git.Run(ctx, "remote", "prune", remote); err != nil {
		console.Warn("Failed to prune %s: %v", remote, err)
	}
}

func (r *repo) mergedBranches(ctx context.Context, main string) ([]string, error) {
	lines, err := r.git.Lines(ctx, "branch", "--merged", main, "--format=%(refname:short)")
	if err != nil {
		return nil, fmt.Errorf("list merged branches: %w", err)
	}
	return slices.DeleteFunc(lines, func(b string) bool { return b == main }), nil
}

// goneBranches lists local branches whose upstream was deleted, which is
// what a squash merge leaves behind.
func (r *repo) goneBranches(ctx context.Context) ([]string, error) {
	lines, err := r.git.Lines(ctx, "for-each-ref", "--format=%(refname:short) %(upstream:track)", "refs/heads/")
	if err != nil {
		return nil, fmt.Errorf("list gone branches: %w", err)
	}
	var gone []string
	for _, l := range lines {
		if strings.Contains(l, "[gone]") {
			gone = append(gone, strings.Fields(l)[0])
		}
	}
	return gone, nil
}

func (r *repo) localBranches(ctx context.Context) []string {
	lines, _ := r.git.Lines(ctx, "for-each-ref", "--format=%(refname:short)", "refs/heads/")
	return lines
}

func (r *repo) sha(ctx context.Context, ref string) string {
	s, _ := r.git.Run(ctx, "rev-parse", ref)
	return s
}

func (r *repo) remoteSHA(ctx context.Context, branch string) string {
	s, err := r.git.Run(ctx, "rev-parse", r.remote+"/"+branch)
	if err != nil {
		return ""
	}
	return s
}

func (r *repo) deleteLocal(ctx context.Context, branch string, force bool) bool {
	suffix := ""
	if force {
		suffix = " (force)"
	}
	if r.dryRun {
		console.Println("Would delete local branch: %s%s", console.Yellow(branch), suffix)
		return true
	}
	flag := "-d"
	if force {
		flag = "-D"
	}
	console.Info("Deleting local branch: %s%s", branch, suffix)
	if _, err := r.git.Run(ctx, "branch", flag, branch); err != nil {
		console.Error("Failed to delete local branch "+branch, err)
		return false
	}
	return true
}

func (r *repo) deleteRemote(ctx context.Context, branch string) {
	full := r.remote + "/" + branch
	if r.dryRun {
		console.Println("Would delete remote branch: %s", console.Yellow(full))
		return
	}
	console.Info("Deleting remote branch: %s", full)
	if _, err := r.git.Run(ctx, "push", r.remote, "--delete", branch); err != nil {
		console.Error("Failed to delete remote branch "+full, err)
	}
}

// deleteBranches removes each branch locally and, when allowed, the remote
// copy if it exists and points at the same commit.
func (r *repo) deleteBranches(ctx context.Context, branches []Branch, deleteRemote bool, force func(Branch) bool) {
	for _, b := range branches {
		if !r.deleteLocal(ctx, b.Name, force(b)) {
			console.Warn("Skipping remote deletion for %s", b.Name)
			continue
		}
		if !deleteRemote || !b.HasRemote() {
			continue
		}
		if !b.InSync() {
			console.Warn("Not deleting remote branch %s/%s - out of sync with local", r.remote, b.Name)
			continue
		}
		r.deleteRemote(ctx, b.Name)
	}
}

package gitclean

import (
	"context"
	"fmt"
	"time"

	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/domain"
	"github.com/workstation-tools/internal/execx"
	"github.com/workstation-tools/internal/prompt"
)

type Service interface {
	Cleanup(ctx context.Context, opts CleanupOptions) error
	Prune(ctx context.Context, opts PruneOptions) error
}

type ServiceDeps struct {
	Runner   execx.Runner
	Prompter *prompt.Prompter
	Dir      string // repository; empty means the working directory
	Now      func() time.Time
}

type service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &service{deps: deps}
}

// session is the state shared by both flows: the detected main branch, the
// branch to return to and whether a stash must be popped.
type session struct {
	repo    *repo
	main    string
	current string
	stashed bool
}

func (s *service) begin(ctx context.Context, o Options, stashMsg string) (*session, error) {
	if o.DryRun {
		console.Warn("DRY RUN MODE - No changes will be made")
	}
	r := newRepo(s.deps.Runner, s.deps.Dir, o.Remote, o.DryRun)

	main := o.MainBranch
	if main == "" {
		main = r.defaultBranch(ctx)
	}
	console.Debug("Using main branch: %s", main)

	if !r.remoteExists(ctx, o.Remote) {
		return nil, fmt.Errorf("remote '%s' does not exist: %w", o.Remote, domain.ErrPrecondition)
	}

	sess := &session{repo: r, main: main, current: r.currentBranch(ctx)}
	console.Debug("Current branch: %s", sess.current)

	if !o.DryRun && r.dirty(ctx) {
		if err := r.stash(ctx, stashMsg); err != nil {
			return nil, fmt.Errorf("failed to stash changes: %w", err)
		}
		sess.stashed = true
	}
	return sess, nil
}

func (sess *session) end(ctx context.Context) {
	if sess.stashed {
		sess.repo.popStash(ctx)
	}
}

func (s *service) confirm(o Options, question string) (bool, error) {
	if o.Force || o.DryRun {
		return true, nil
	}
	ok, err := s.deps.Prompter.Confirm(question)
	if err != nil {
		return false, err
	}
	if !ok {
		console.Info("Cancelled by user")
	}
	return ok, nil
}

// Cleanup deletes branches merged into main and, optionally, branches whose
// upstream is gone.
func (s *service) Cleanup(ctx context.Context, opts CleanupOptions) error {
	sess, err := s.begin(ctx, opts.Options, "git-cleanup auto-stash")
	if err != nil {
		return err
	}
	defer sess.end(ctx)
	r := sess.repo

	if sess.current != sess.main {
		if err := r.checkout(ctx, sess.main); err != nil {
			return err
		}
	}
	if err := r.fetch(ctx, opts.Remote); err != nil {
		return err
	}

	merged, err := r.mergedBranches(ctx, sess.main)
	if err != nil {
		console.Error("Failed to get merged branches", err)
	}
	var gone []string
	if opts.IncludeGone {
		if gone, err = r.goneBranches(ctx); err != nil {
			console.Error("Failed to get gone branches", err)
		}
	}

	branches := s.candidates(ctx, r, merged, gone)
	if len(branches) == 0 {
		console.Success("No branches to clean up")
	} else {
		console.Info("Found %d branch(es) to clean up (%d merged, %d gone)", len(branches), len(merged), len(gone))
		console.Println("\nBranches to delete:")
		for _, b := range branches {
			console.Println("  %s - %s", console.Cyan(b.Name), describe(b))
		}
		console.Println("")

		ok, err := s.confirm(opts.Options, fmt.Sprintf("Delete %d branch(es)?", len(branches)))
		if err != nil || !ok {
			return err
		}
		r.deleteBranches(ctx, branches, !opts.NoDeleteRemote, func(b Branch) bool { return b.Gone })
		if !opts.DryRun {
			console.Success("Cleaned up %d branch(es)", len(branches))
		}
	}

	console.Println("")
	r.prune(ctx, opts.Remote)
	if r.remoteExists(ctx, "team") {
		r.prune(ctx, "team")
		if !opts.DryRun {
			if err := r.fetch(ctx, "team"); err != nil {
				console.Warn("%v", err)
			}
		}
	}

	if sess.current != "" && sess.current != sess.main {
		if err := r.checkout(ctx, sess.current); err != nil {
			console.Warn("Failed to return to %s", sess.current)
		}
	}
	return nil
}

// candidates merges both lists, merged first, without duplicates.
func (s *service) candidates(ctx context.Context, r *repo, merged, gone []string) []Branch {
	idx := map[string]int{}
	var out []Branch
	add := func(name string, isGone bool) {
		if i, ok := idx[name]; ok {
			out[i].Gone = out[i].Gone || isGone
			return
		}
		idx[name] = len(out)
		out = append(out, Branch{Name: name, Merged: !isGone, Gone: isGone})
	}
	for _, b := range merged {
		add(b, false)
	}
	for _, b := range gone {
		add(b, true)
	}
	for i := range out {
		out[i].LocalSHA = r.sha(ctx, out[i].Name)
		out[i].RemoteSHA = r.remoteSHA(ctx, out[i].Name)
	}
	return out
}

func describe(b Branch) string {
	var reasons []string
	if b.Merged {
		reasons = append(reasons, console.Green("merged"))
	}
	if b.Gone {
		reasons = append(reasons, console.Yellow("gone"))
	}
	status := joinNonEmpty(", ", reasons...)
	switch {
	case b.InSync():
		return joinNonEmpty(" - ", status, console.Green("in sync"))
	case b.HasRemote():
		return joinNonEmpty(" - ", status, console.Yellow("out of sync"))
	}
	return status
}

func joinNonEmpty(sep string, parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}

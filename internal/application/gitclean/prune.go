package gitclean

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/workstation-tools/internal/console"
)

const messageWidth = 40

// Prune force-deletes local branches whose last commit is at least
// opts.Days old.
func (s *service) Prune(ctx context.Context, opts PruneOptions) error {
	sess, err := s.begin(ctx, opts.Options, "git-prune-old auto-stash")
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
	if err := r.fetch(ctx, opts.Remote, "--prune"); err != nil {
		return err
	}

	old := s.oldBranches(ctx, r, opts.Days, sess.main, sess.current)
	if len(old) == 0 {
		console.Success("No branches older than %d days", opts.Days)
		return nil
	}
	console.Info("Found %d branch(es) older than %d days", len(old), opts.Days)

	// The starting branch holds the stashed changes.
	if sess.stashed {
		before := len(old)
		old = slices.DeleteFunc(old, func(b Branch) bool { return b.Name == sess.current })
		if len(old) != before {
			console.Warn("Excluding starting branch '%s' from deletion (working tree was stashed)", sess.current)
		}
		if len(old) == 0 {
			console.Success("No branches to delete after applying filters")
			return nil
		}
	}

	console.Println("\nBranches to delete:\n")
	console.Println("%s", FormatTable(old))
	console.Println("%s = in sync with remote, %s = out of sync, %s = no remote branch\n",
		console.Green("✓"), console.Yellow("⚠"), console.Muted("○"))

	question := fmt.Sprintf("Delete %d local branch(es)?", len(old))
	if !opts.NoDeleteRemote {
		question = fmt.Sprintf("Delete %d branch(es) locally and remotely?", len(old))
	}
	ok, err := s.confirm(opts.Options, question)
	if err != nil || !ok {
		return err
	}

	r.deleteBranches(ctx, old, !opts.NoDeleteRemote, func(Branch) bool { return true })
	if !opts.DryRun {
		console.Success("Cleaned up %d branch(es)", len(old))
	}

	if sess.current != "" && sess.current != sess.main {
		if !slices.Contains(r.localBranches(ctx), sess.current) {
			console.Warn("Original branch %s was deleted, staying on %s", sess.current, sess.main)
		} else if err := r.checkout(ctx, sess.current); err != nil {
			console.Warn("Failed to return to %s", sess.current)
		}
	}
	return nil
}

// oldBranches returns branches other than main and current whose last commit
// is at least days old, oldest first.
func (s *service) oldBranches(ctx context.Context, r *repo, days int, main, current string) []Branch {
	now := s.deps.Now()
	var old []Branch
	for _, name := range r.localBranches(ctx) {
		if name == main || name == current {
			console.Debug("Skipping %s (protected)", name)
			continue
		}
		out, err := r.git.Run(ctx, "log", "-1", "--format=%H%n%at%n%s%n%an", name)
		if err != nil {
			continue
		}
		b, ok := parseLastCommit(name, out, now)
		if !ok {
			console.Debug("Could not get info for %s", name)
			continue
		}
		if b.DaysOld >= days {
			b.RemoteSHA = r.remoteSHA(ctx, name)
			old = append(old, b)
		}
	}
	sort.SliceStable(old, func(i, j int) bool { return old[i].DaysOld > old[j].DaysOld })
	return old
}

// FormatTable renders branches as aligned columns with a trailing sync mark.
func FormatTable(branches []Branch) string {
	nameW, authorW := 15, 12
	for _, b := range branches {
		nameW = max(nameW, len(b.Name))
		authorW = max(authorW, len(b.Author))
	}

	var sb strings.Builder
	header := fmt.Sprintf("%-*s  %5s  %-19s  %-*s  %s", nameW, "Branch", "Days", "Last Commit", authorW, "Author", "Message")
	sb.WriteString(console.Muted(header) + "\n")
	sb.WriteString(console.Muted(strings.Repeat("-", nameW+authorW+80)) + "\n")
	for _, b := range branches {
		fmt.Fprintf(&sb, "%s  %s  %-19s  %-*s  %s %s\n",
			console.Cyan(fmt.Sprintf("%-*s", nameW, b.Name)),
			console.Yellow(fmt.Sprintf("%5d", b.DaysOld)),
			b.LastCommit.Format("2006-01-02 15:04"),
			authorW, Truncate(b.Author, authorW),
			Truncate(b.Message, messageWidth),
			b.SyncMark())
	}
	return strings.TrimRight(sb.String(), "\n")
}

package prs

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/domain"
	"github.com/workstation-tools/internal/execx"
	"github.com/workstation-tools/internal/prompt"
)

const batchSize = 100

type Options struct {
	Repo       string
	CloseReady bool
	OlderThan  int
	Author     string
	Base       string
	Label      string
	Message    string
	DryRun     bool
	Yes        bool
	Limit      int
}

type Service interface {
	Run(ctx context.Context, opts Options) error
	List(ctx context.Context, opts Options) ([]PR, error)
}

type ServiceDeps struct {
	Runner   execx.Runner
	Prompter *prompt.Prompter
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

func (s *service) gh(ctx context.Context, args ...string) (execx.Result, error) {
	console.Debug("Running: gh %s", strings.Join(args, " "))
	return s.deps.Runner.Run(ctx, execx.Cmd{Name: "gh", Args: args})
}

// List pages through open PRs, newest first, using the oldest createdAt
// seen so far as the cursor.
func (s *service) List(ctx context.Context, opts Options) ([]PR, error) {
	var (
		all  []PR
		seen = map[int]bool{}
	)
	for len(all) < opts.Limit {
		n := min(batchSize, opts.Limit-len(all))
		args := []string{"pr", "list"}
		if opts.Repo != "" {
			args = append(args, "--repo", opts.Repo)
		}
		args = append(args, "--state", "open", "--json", listFields, "--limit", strconv.Itoa(n))
		if opts.Base != "" {
			args = append(args, "--base", opts.Base)
		}
		if opts.Author != "" {
			args = append(args, "--author", opts.Author)
		}
		if opts.Label != "" {
			args = append(args, "--label", opts.Label)
		}
		if len(all) > 0 {
			oldest := all[len(all)-1].CreatedAt.UTC().Format(time.RFC3339)
			args = append(args, "--search", "created:<"+oldest)
		}

		res, err := s.gh(ctx, args...)
		if err != nil {
			return all, fmt.Errorf("list PRs: %w", err)
		}
		batch, err := parseList(res.Stdout)
		if err != nil {
			return all, err
		}
		added := 0
		for _, pr := range batch {
			if !seen[pr.Number] {
				seen[pr.Number] = true
				all = append(all, pr)
				added++
			}
		}
		console.Debug("Fetched %d PRs (total: %d)", len(batch), len(all))
		if len(batch) < n || added == 0 {
			break
		}
	}
	return all, nil
}

// Filter keeps drafts (or every PR with CloseReady) at least OlderThan days old.
func Filter(list []PR, opts Options, now time.Time) []PR {
	var out []PR
	for _, pr := range list {
		if !opts.CloseReady && !pr.IsDraft {
			console.Debug("Skipping PR #%d: not a draft", pr.Number)
			continue
		}
		if days := DaysOld(pr.CreatedAt, now); days < opts.OlderThan {
			console.Debug("Skipping PR #%d: only %d days old (need %d)", pr.Number, days, opts.OlderThan)
			continue
		}
		out = append(out, pr)
	}
	return out
}

func (s *service) currentRepo(ctx context.Context) (string, error) {
	res, err := s.gh(ctx, "repo", "view", "--json", "nameWithOwner", "-q", ".nameWithOwner")
	if err != nil || res.Stdout == "" {
		return "", fmt.Errorf("could not determine repository, use --repo to specify: %w", domain.ErrPrecondition)
	}
	return res.Stdout, nil
}

func (s *service) Run(ctx context.Context, opts Options) error {
	repo := opts.Repo
	if repo == "" {
		r, err := s.currentRepo(ctx)
		if err != nil {
			return err
		}
		repo = r
	}
	if opts.DryRun {
		console.Warn("DRY RUN MODE - No PRs will be closed")
	}
	printFilters(repo, opts)

	console.Info("Fetching open PRs...")
	all, err := s.List(ctx, opts)
	if err != nil {
		console.Error("Failed to list PRs", err)
	}
	now := s.deps.Now()
	toClose := Filter(all, opts, now)
	if len(toClose) == 0 {
		console.Success("No PRs match the criteria. Nothing to do.")
		return nil
	}

	console.Println("\n%s\n", console.Bold(fmt.Sprintf("Found %d PR(s) to close:", len(toClose))))
	console.Println("%s", FormatTable(toClose, now))

	if !opts.Yes && !opts.DryRun {
		ok, err := s.deps.Prompter.Confirm(fmt.Sprintf("Close %d PR(s)?", len(toClose)))
		if err != nil {
			return err
		}
		if !ok {
			console.Info("Cancelled by user")
			return nil
		}
	}

	console.Println("")
	if opts.DryRun {
		console.Info("Would close the following PRs:")
	} else {
		console.Info("Closing PRs...")
	}

	closed, failed := 0, 0
	for i, pr := range toClose {
		if s.closePR(ctx, pr, opts, i+1, len(toClose)) {
			closed++
		} else {
			failed++
		}
	}

	console.Println("")
	if opts.DryRun {
		console.Success("Would have closed %d PR(s)", closed)
		return nil
	}
	if closed > 0 {
		console.Success("Closed %d PR(s)", closed)
	}
	if failed > 0 {
		return fmt.Errorf("failed to close %d PR(s)", failed)
	}
	return nil
}

func (s *service) closePR(ctx context.Context, pr PR, opts Options, i, total int) bool {
	progress := console.Muted(fmt.Sprintf("[%d/%d]", i, total))
	if opts.DryRun {
		console.Println("%s %s PR #%d: %s", progress, console.Muted("Would close"), pr.Number, Truncate(pr.Title, 50))
		return true
	}

	args := []string{"pr", "close", strconv.Itoa(pr.Number)}
	if opts.Repo != "" {
		args = append(args, "--repo", opts.Repo)
	}
	if opts.Message != "" {
		args = append(args, "--comment", opts.Message)
	}
	res, err := s.gh(ctx, args...)
	if err != nil {
		console.Println("%s %s Failed to close PR #%d: %v", progress, console.Red("✗"), pr.Number, err)
		return false
	}
	// gh reports on stderr
	out := res.Stdout
	if out == "" {
		out = res.Stderr
	}
	if out == "" {
		out = fmt.Sprintf("Closed PR #%d", pr.Number)
	}
	console.Println("%s %s", progress, out)
	return true
}

func printFilters(repo string, opts Options) {
	console.Println("\n%s", console.Bold("Repository: "+console.Cyan(repo)))
	status := "draft only"
	if opts.CloseReady {
		status = "all (including ready)"
	}
	lines := []string{
		"Filters:",
		"  • Status: " + status,
		fmt.Sprintf("  • Age: older than %d days", opts.OlderThan),
	}
	if opts.Author != "" {
		lines = append(lines, "  • Author: "+opts.Author)
	}
	if opts.Base != "" {
		lines = append(lines, "  • Base branch: "+opts.Base)
	}
	if opts.Label != "" {
		lines = append(lines, "  • Label: "+opts.Label)
	}
	for _, l := range lines {
		console.Println("%s", console.Muted(l))
	}
}

// FormatTable renders the PR list with number, author, age, status and title.
func FormatTable(list []PR, now time.Time) string {
	numW, authorW := 2, 6
	for _, pr := range list {
		numW = max(numW, len(strconv.Itoa(pr.Number)))
		authorW = max(authorW, len(pr.Author))
	}
	authorW = min(authorW, 15)

	var sb strings.Builder
	header := fmt.Sprintf("%*s  %-*s  %-12s  %-8s  %s", numW+1, "#", authorW, "Author", "Age", "Status", "Title")
	sb.WriteString(console.Muted(header) + "\n")
	sb.WriteString(console.Muted(strings.Repeat("-", len(header)+20)) + "\n")
	for _, pr := range list {
		status := console.Green(fmt.Sprintf("%-8s", "ready"))
		if pr.IsDraft {
			status = console.Muted(fmt.Sprintf("%-8s", "draft"))
		}
		fmt.Fprintf(&sb, "%s  %s  %-12s  %s  %s\n",
			console.Cyan(fmt.Sprintf("%*s", numW+1, "#"+strconv.Itoa(pr.Number))),
			console.Yellow(fmt.Sprintf("%-*s", authorW, Truncate(pr.Author, authorW))),
			FormatAge(pr.CreatedAt, now),
			status,
			Truncate(pr.Title, 50))
	}
	return strings.TrimRight(sb.String(), "\n")
}

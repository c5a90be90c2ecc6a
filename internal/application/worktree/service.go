package worktree

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/workstation-tools/internal/application/ic"
	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/domain"
	"github.com/workstation-tools/internal/execx"
)

// CDMarker prefixes the line the shell wrapper turns into a cd.
const CDMarker = "__WT_CD__"

const fetchRefspec = "+refs/heads/*:refs/remotes/origin/*"

const previewScript = `wt_path=$(echo {} | awk '{print $NF}')
echo "Path: $wt_path"
echo ""
cd "$wt_path" && git log --color --pretty=format:'%C(red)%h%Creset %C(magenta)%ar%Creset %C(yellow)%an%Creset %Cgreen%s%Creset' -10`

type Service interface {
	Clone(ctx context.Context, input string) (string, error)
	CreateBranch(ctx context.Context, branch, base string) (string, error)
	List(ctx context.Context) ([]Worktree, error)
	Remove(ctx context.Context, target string, force bool) error
	Pick(ctx context.Context) (string, error)
}

type ServiceDeps struct {
	Runner   execx.Runner
	Home     string
	Getwd    func() (string, error)
	LookPath func(string) bool
}

type service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) Service {
	if deps.Getwd == nil {
		deps.Getwd = os.Getwd
	}
	if deps.LookPath == nil {
		deps.LookPath = execx.LookPath
	}
	return &service{deps: deps}
}

func (s *service) git(dir string) *execx.Git { return execx.NewGit(s.deps.Runner, dir) }

// Clone creates <repos>/<repo>/bare plus a master (or main) worktree next to it.
func (s *service) Clone(ctx context.Context, input string) (string, error) {
	info, ok := ic.ParseGitHubInput(input)
	if !ok {
		return "", fmt.Errorf("invalid repository %q: %w", input, domain.ErrBadRequest)
	}
	reposDir := ic.ReposDir(s.deps.Home)
	repoDir := filepath.Join(reposDir, info.Repo)
	if exists(repoDir) {
		alt := filepath.Join(reposDir, info.Repo+"-wt")
		console.Info("Directory %s already exists, using %s instead", repoDir, alt)
		repoDir = alt
	}
	bareDir := filepath.Join(repoDir, "bare")
	masterDir := filepath.Join(repoDir, "master")

	if err := os.MkdirAll(repoDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", repoDir, err)
	}

	console.Info("Cloning %s as bare repository to %s...", info.SSHURL(), bareDir)
	if _, err := s.deps.Runner.Run(ctx, execx.Cmd{
		Name:        "git",
		Args:        []string{"clone", "--bare", info.SSHURL(), bareDir},
		Interactive: true,
	}); err != nil {
		return "", fmt.Errorf("failed to clone repository: %w", err)
	}

	g := s.git(bareDir)
	if _, err := g.Run(ctx, "config", "remote.origin.fetch", fetchRefspec); err != nil {
		return "", fmt.Errorf("configure fetch refspec: %w", err)
	}
	if _, err := g.Run(ctx, "fetch", "origin"); err != nil {
		console.Warn("Failed to fetch from origin: %v", err)
	}

	console.Info("Creating master worktree at %s...", masterDir)
	if !g.OK(ctx, "worktree", "add", "../master", "master") && !g.OK(ctx, "worktree", "add", "../master", "main") {
		return "", errors.New("failed to create master worktree")
	}
	console.Success("Created worktree structure")
	console.Println("  Bare repo: %s", bareDir)
	console.Println("  Master worktree: %s", masterDir)
	return masterDir, nil
}

// CreateBranch adds a worktree for branch, creating the branch from base
// (default: the current branch) when it does not exist yet.
func (s *service) CreateBranch(ctx context.Context, branch, base string) (string, error) {
	if branch == "" {
		return "", fmt.Errorf("branch name is required: %w", domain.ErrBadRequest)
	}
	cwd, err := s.deps.Getwd()
	if err != nil {
		return "", err
	}
	g := s.git(cwd)

	parent, err := s.worktreeParent(ctx, g, cwd)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(parent, branch)
	if exists(dir) {
		console.Info("Worktree '%s' already exists, switching to it...", branch)
		return dir, nil
	}

	if base == "" {
		base, _ = g.Run(ctx, "branch", "--show-current")
		console.Info("Using current branch '%s' as base", base)
	}

	if ref, _ := g.Run(ctx, "config", "--get", "remote.origin.fetch"); ref != fetchRefspec {
		_, _ = g.Run(ctx, "config", "remote.origin.fetch", fetchRefspec)
	}
	console.Info("Fetching from origin...")
	if _, err := g.Run(ctx, "fetch", "origin"); err != nil {
		console.Warn("Failed to fetch from origin, continuing anyway")
	}

	args := []string{"worktree", "add", dir, branch}
	if g.OK(ctx, "rev-parse", "--verify", "--quiet", branch) {
		console.Info("Branch '%s' already exists, checking it out in a new worktree...", branch)
	} else {
		console.Info("Creating new branch '%s' from '%s'...", branch, base)
		args = []string{"worktree", "add", "-b", branch, dir}
		if base != "" {
			args = append(args, base)
		}
	}
	if _, err := g.Run(ctx, args...); err != nil {
		return "", fmt.Errorf("add worktree: %w", err)
	}
	console.Success("Created worktree at %s", dir)
	return dir, nil
}

// worktreeParent is the directory holding sibling worktrees: the parent of a
// "bare" common dir, otherwise the parent of the repo toplevel.
func (s *service) worktreeParent(ctx context.Context, g *execx.Git, cwd string) (string, error) {
	common, err := g.Run(ctx, "rev-parse", "--git-common-dir")
	if err != nil || common == "" {
		return "", fmt.Errorf("not in a git repository: %w", domain.ErrPrecondition)
	}
	if !filepath.IsAbs(common) {
		common = filepath.Join(cwd, common)
	}
	common = filepath.Clean(common)
	if filepath.Base(common) == "bare" {
		return filepath.Dir(common), nil
	}
	top, err := g.Run(ctx, "rev-parse", "--show-toplevel")
	if err != nil || top == "" {
		return "", fmt.Errorf("not in a git repository: %w", domain.ErrPrecondition)
	}
	return filepath.Dir(top), nil
}

func (s *service) List(ctx context.Context) ([]Worktree, error) {
	cwd, err := s.deps.Getwd()
	if err != nil {
		return nil, err
	}
	out, err := s.git(cwd).Run(ctx, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("not in a git repository: %w", domain.ErrPrecondition)
	}
	return ParseList(out), nil
}

// Remove deletes a worktree given its path or branch name.
func (s *service) Remove(ctx context.Context, target string, force bool) error {
	list, err := s.List(ctx)
	if err != nil {
		return err
	}
	wt, ok := find(list, target)
	if !ok {
		return fmt.Errorf("no worktree matches %q: %w", target, domain.ErrNotFound)
	}
	if wt.Bare {
		return fmt.Errorf("refusing to remove the bare repository: %w", domain.ErrPrecondition)
	}

	cwd, _ := s.deps.Getwd()
	if cur, err := s.git(cwd).Run(ctx, "rev-parse", "--show-toplevel"); err == nil && samePath(cur, wt.Path) {
		return fmt.Errorf("cannot remove the current worktree, cd elsewhere first: %w", domain.ErrPrecondition)
	}

	g := s.git(wt.Path)
	if !force {
		if !g.OK(ctx, "diff-index", "--quiet", "HEAD", "--") {
			status, _ := g.Run(ctx, "status", "--short")
			console.Println("Uncommitted changes:\n%s", status)
			return fmt.Errorf("worktree has uncommitted changes (use --force to override): %w", domain.ErrPrecondition)
		}
		if untracked, _ := g.Run(ctx, "ls-files", "--others", "--exclude-standard"); untracked != "" {
			console.Println("Untracked files:\n%s", untracked)
			return fmt.Errorf("worktree has untracked files (use --force to override): %w", domain.ErrPrecondition)
		}
	}

	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, wt.Path)
	if _, err := s.git(cwd).Run(ctx, args...); err != nil {
		return fmt.Errorf("remove worktree: %w", err)
	}
	console.Success("Removed worktree %s", wt.Path)
	return nil
}

// Pick lets the user choose a worktree with fzf. An empty path means the
// selection was cancelled.
func (s *service) Pick(ctx context.Context) (string, error) {
	if !s.deps.LookPath("fzf") {
		return "", fmt.Errorf("fzf is not installed: %w", domain.ErrPrecondition)
	}
	list, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	input := FormatForPicker(list)
	console.Debug("worktrees:\n%s", input)

	res, err := s.deps.Runner.Run(ctx, execx.Cmd{
		Name:  "fzf",
		Args:  []string{"--header=Select worktree to switch to", "--preview=" + previewScript},
		Stdin: strings.NewReader(input),
	})
	if err != nil {
		var exitErr *execx.ExitError
		if errors.As(err, &exitErr) && (exitErr.Code == 1 || exitErr.Code == 130) {
			return "", nil
		}
		return "", fmt.Errorf("run fzf: %w", err)
	}
	return PathFromSelection(res.Stdout), nil
}

func find(list []Worktree, target string) (Worktree, bool) {
	abs := target
	if a, err := filepath.Abs(target); err == nil {
		abs = a
	}
	for _, w := range list {
		if samePath(w.Path, abs) || w.Path == target {
			return w, true
		}
	}
	for _, w := range list {
		if !w.Bare && (w.Branch == target || filepath.Base(w.Path) == target) {
			return w, true
		}
	}
	return Worktree{}, false
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return !errors.Is(err, os.ErrNotExist)
}

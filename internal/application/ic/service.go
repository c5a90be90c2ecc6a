package ic

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/domain"
	"github.com/workstation-tools/internal/execx"
	"github.com/workstation-tools/internal/prompt"
	"github.com/workstation-tools/internal/shellint"
)

// AttachOptions controls Attach.
type AttachOptions struct {
	Force bool // detach other clients
	CWD   bool // use the working directory instead of the git toplevel
}

type Service interface {
	Clone(ctx context.Context, input string) (string, error)
	Attach(ctx context.Context, opts AttachOptions) error
	Workspace(path string) string
	Hooks(repoKey, dir string) []string
}

// ServiceDeps holds what the ic service needs from its environment.
type ServiceDeps struct {
	Runner   execx.Runner
	Shell    *shellint.Writer
	Prompter *prompt.Prompter
	Home     string
	Getenv   func(string) string
	Getwd    func() (string, error)
}

type service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) Service {
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}
	if deps.Getwd == nil {
		deps.Getwd = os.Getwd
	}
	return &service{deps: deps}
}

func (s *service) reposDir() string { return ReposDir(s.deps.Home) }

func (s *service) config() *Config { return LoadConfig(ConfigPath(s.deps.Home)) }

func (s *service) Workspace(path string) string {
	return DetectWorkspace(path, s.reposDir())
}

func (s *service) Hooks(repoKey, dir string) []string {
	cfg := s.config()
	return ResolveSetupHooks(cfg, repoKey, DetectRepoFiles(dir, cfg))
}

// Clone clones input into the repos dir, runs setup hooks and cds into it.
// It returns the clone directory.
func (s *service) Clone(ctx context.Context, input string) (string, error) {
	info, ok := ParseGitHubInput(input)
	if !ok {
		return "", fmt.Errorf("invalid repository %q, expected user/repo, repo or a GitHub URL: %w", input, domain.ErrBadRequest)
	}

	reposDir := s.reposDir()
	repoDir := filepath.Join(reposDir, info.Repo)
	if exists(repoDir) {
		console.Info("Directory %s already exists", repoDir)
		suffix, err := s.deps.Prompter.Ask(fmt.Sprintf("Enter a suffix for the directory name (will be %s-<suffix>)", info.Repo), "")
		if err != nil {
			return "", err
		}
		repoDir = filepath.Join(reposDir, info.Repo+"-"+suffix)
		if exists(repoDir) {
			return "", fmt.Errorf("directory %s already exists, aborting: %w", repoDir, domain.ErrConflict)
		}
	}

	if err := os.MkdirAll(repoDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", repoDir, err)
	}

	console.Info("Cloning %s to %s...", info.SSHURL(), repoDir)
	if _, err := s.deps.Runner.Run(ctx, execx.Cmd{
		Name:        "git",
		Args:        []string{"clone", info.SSHURL(), repoDir},
		Interactive: true,
	}); err != nil {
		return "", fmt.Errorf("failed to clone repository: %w", err)
	}
	console.Success("Successfully cloned to %s", repoDir)

	s.runHooks(ctx, info.Key(), repoDir)

	if err := s.deps.Shell.CD(repoDir); err != nil {
		return "", err
	}
	return repoDir, nil
}

// runHooks runs each setup command in dir; failures are reported and skipped.
func (s *service) runHooks(ctx context.Context, repoKey, dir string) {
	hooks := s.Hooks(repoKey, dir)
	if len(hooks) == 0 {
		return
	}
	console.Info("Running setup hooks for %s...", repoKey)
	for _, command := range hooks {
		console.Info("Running: %s", command)
		if _, err := s.deps.Runner.Run(ctx, execx.Cmd{
			Name:        "sh",
			Args:        []string{"-c", command},
			Dir:         dir,
			Interactive: true,
		}); err != nil {
			console.Error("Failed to run: "+command, err)
			continue
		}
		console.Success("Completed: %s", command)
	}
	console.Success("Setup hooks completed")
}

// Attach opens (or creates) the nested tmux session for the current repo.
func (s *service) Attach(ctx context.Context, opts AttachOptions) error {
	if s.deps.Getenv("TMUX") == "" {
		return fmt.Errorf("not in a tmux session: %w", domain.ErrPrecondition)
	}

	if info, err := execx.Output(ctx, s.deps.Runner, "tmux", "display-message", "-p", "#{session_name}|#{pane_title}|#{window_name}"); err == nil {
		if nested, window := isNested(info); nested {
			return fmt.Errorf("already in a nested tmux session (window: '%s'), detach first: %w", window, domain.ErrPrecondition)
		}
	}

	root, err := s.attachRoot(ctx, opts.CWD)
	if err != nil {
		return err
	}
	name := filepath.Base(root)
	session := SessionName(name)

	if execx.Succeeds(ctx, s.deps.Runner, "tmux", "has-session", "-t", session) {
		clients, _ := execx.Output(ctx, s.deps.Runner, "tmux", "list-clients", "-t", session)
		if strings.TrimSpace(clients) != "" {
			if !opts.Force {
				return fmt.Errorf("session '%s' is already attached, use --force to detach other clients: %w", session, domain.ErrConflict)
			}
			console.Info("Session '%s' is attached, detaching other clients...", session)
			_, _ = s.deps.Runner.Run(ctx, execx.Cmd{Name: "tmux", Args: []string{"detach-client", "-s", session, "-a"}})
		}
		console.Info("Attaching to existing session '%s'...", session)
		return s.deps.Shell.Script(AttachScript(name, session))
	}

	console.Info("Creating new session '%s'...", session)
	return s.deps.Shell.Script(CreateScript(name, session, root))
}

func (s *service) attachRoot(ctx context.Context, useCWD bool) (string, error) {
	if useCWD {
		return s.deps.Getwd()
	}
	root, err := execx.Output(ctx, s.deps.Runner, "git", "rev-parse", "--show-toplevel")
	if err != nil || root == "" {
		return "", fmt.Errorf("not in a git repository: %w", domain.ErrPrecondition)
	}
	reposDir := s.reposDir()
	if _, ok := relUnder(reposDir, root); !ok {
		return "", fmt.Errorf("must be in a repo under %s: %w", reposDir, domain.ErrPrecondition)
	}
	return root, nil
}

// isNested inspects "session|pane_title|window_name" for the markers the
// nested tmux config sets.
func isNested(info string) (bool, string) {
	parts := strings.SplitN(info, "|", 3)
	if len(parts) != 3 {
		return false, ""
	}
	pane, window := parts[1], parts[2]
	nested := strings.HasPrefix(window, "nt:") || strings.HasPrefix(window, "ic:") ||
		strings.HasPrefix(pane, "nt:") || strings.HasPrefix(pane, "ic:") ||
		strings.Contains(pane, "Nested TM")
	return nested, window
}

// SessionName uses an underscore since tmux rewrites colons in session names.
func SessionName(dirName string) string { return "ic_" + dirName }

func titleLine(name string) string {
	return fmt.Sprintf(`  printf '\033kic: %s\033\\'`, name)
}

// AttachScript attaches to an existing session from inside the outer tmux.
func AttachScript(name, session string) string {
	return strings.Join([]string{
		"(",
		titleLine(name),
		`  local TMUX=""`,
		fmt.Sprintf(`  tmux attach-session -t "%s"`, session),
		")",
	}, "\n")
}

// CreateScript builds a three-window session rooted at root and attaches to it.
func CreateScript(name, session, root string) string {
	return strings.Join([]string{
		"(",
		titleLine(name),
		`  local TMUX=""`,
		fmt.Sprintf(`  tmux new-session -d -s "%s" -c "%s"`, session, root),
		fmt.Sprintf(`  tmux new-window -t "%s:1" -c "%s"`, session, root),
		fmt.Sprintf(`  tmux new-window -t "%s:2" -c "%s"`, session, root),
		fmt.Sprintf(`  tmux select-window -t "%s:0"`, session),
		fmt.Sprintf(`  tmux attach-session -t "%s"`, session),
		")",
	}, "\n")
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return !errors.Is(err, os.ErrNotExist)
}

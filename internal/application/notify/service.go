package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/workstation-tools/internal/execx"
	"github.com/workstation-tools/internal/infrastructure/sns"
)

// Request is one hook invocation.
type Request struct {
	Input Input
	Args  []string // positional args left after the payload was taken
	Codex bool
	PPID  int
	Cwd   string // process working directory, used when the payload has none
}

// Outcome describes what Handle decided.
type Outcome struct {
	Type    string
	Session string
	Message string
	Sound   string
	Args    []string
	// Skipped is non-empty when no notification was sent.
	Skipped string
}

type Service interface {
	Handle(ctx context.Context, req Request) (Outcome, error)
}

// ServiceDeps wires the notifier to the filesystem and external tools.
// Summarizer and Publisher may be nil.
type ServiceDeps struct {
	Runner      execx.Runner
	States      *StateStore
	Cache       SummaryCache
	Summarizer  Summarizer
	Publisher   sns.Publisher
	Log         *FileLog
	Getenv      func(string) string
	Home        string
	ProjectsDir string // ~/.claude/projects
	CacheDir    string // ~/.config/claude-notify
}

type service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) Service {
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}
	if deps.Publisher == nil {
		deps.Publisher = sns.Nop{}
	}
	if deps.Log == nil {
		deps.Log = &FileLog{}
	}
	return &service{deps: deps}
}

func (s *service) Handle(ctx context.Context, req Request) (Outcome, error) {
	in := req.Input
	if in == nil {
		in = Input{}
	}
	out := Outcome{
		Type:    NotificationType(in, req.Args),
		Session: SessionID(in, s.deps.Getenv, req.PPID),
	}
	transcript := in.TranscriptPath()
	cwd := in.Cwd(req.Cwd)
	s.deps.Log.Printf("Hook fired: type=%s session=%s codex=%t", out.Type, out.Session, req.Codex)

	if n := s.deps.States.Cleanup(StateMaxAge); n > 0 {
		slog.Debug("removed stale notification state", "count", n)
	}
	prev, hasPrev := s.deps.States.Load(out.Session)

	if SuppressIdle(prev, hasPrev, out.Type) {
		out.Skipped = "idle prompt after stop"
		return out, s.saveState(out)
	}
	if WindowActive(ctx, s.deps.Runner, s.deps.Getenv) {
		out.Skipped = "tmux window active"
		return out, s.saveState(out)
	}

	summary := s.summary(ctx, out.Session, transcript, cwd, req.Codex)
	inline := InlineMessage(in)
	if inline == "" && transcript != "" && out.Session != "default" {
		inline = LastUserMessage(transcript)
	}
	project := ProjectName(cwd)

	out.Message, out.Sound = BuildMessage(MessageInput{
		Type:      out.Type,
		Codex:     req.Codex,
		Inline:    inline,
		Summary:   summary,
		Project:   project,
		CodexType: in.String("type"),
	})

	var icon Icon
	if req.Codex {
		icon = CodexIcon(s.deps.Home, s.deps.CacheDir)
	}
	group := transcript
	if group == "" && out.Session != "default" {
		group = out.Session
	}
	out.Args = NotifierArgs(out.Message, out.Sound, req.Codex, icon, group)

	s.deps.Log.Printf("Notification type: %s", out.Type)
	s.deps.Log.Printf("Project context: %s", orNone(project))
	s.deps.Log.Printf("Session summary: %s", orNone(summary))
	s.deps.Log.Printf("Final message: %s", out.Message)
	s.deps.Log.Printf("Args: %s", strings.Join(out.Args, " "))

	if _, err := s.deps.Runner.Run(ctx, execx.Cmd{Name: "terminal-notifier", Args: out.Args}); err != nil {
		s.deps.Log.Printf("Result: Error - %v", err)
		slog.Warn("terminal-notifier failed", "err", err)
	} else {
		s.deps.Log.Printf("Result: Success")
	}
	if err := s.deps.Publisher.Publish(ctx, Origin(req.Codex)+" "+out.Type, out.Message); err != nil {
		slog.Warn("could not publish notification", "err", err)
	}

	return out, s.saveState(out)
}

func (s *service) saveState(out Outcome) error {
	if err := s.deps.States.Save(out.Session, out.Type); err != nil {
		return fmt.Errorf("save notification state: %w", err)
	}
	return nil
}

// summary finds a short title for the session: the transcript's own summary,
// the cache, or a generated one from the first user message.
func (s *service) summary(ctx context.Context, session, transcript, cwd string, codex bool) string {
	if transcript == "" {
		if codex {
			return ""
		}
		if cached := s.deps.Cache.Get(session); cached != "" {
			return cached
		}
		transcript = FindSessionFile(s.deps.ProjectsDir, session, cwd)
		if transcript == "" {
			return ""
		}
	}

	if sum := TranscriptSummary(transcript); sum != "" {
		return sum
	}
	if cached := s.deps.Cache.Get(session); cached != "" {
		return cached
	}
	if s.deps.Summarizer == nil {
		return ""
	}
	first := CleanMessage(FirstUserMessage(transcript))
	if first == "" {
		return ""
	}
	sum, err := s.deps.Summarizer.Summarize(ctx, first)
	if err != nil || sum == "" {
		slog.Debug("summary generation failed", "err", err)
		return ""
	}
	if err := s.deps.Cache.Put(session, sum); err != nil {
		slog.Warn("could not cache summary", "err", err)
	}
	return sum
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// FileLog appends timestamped lines to Path. An empty Path discards them.
type FileLog struct {
	Path string
	Now  func() time.Time
}

func (l *FileLog) Printf(format string, args ...any) {
	if l == nil || l.Path == "" {
		return
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "[%s] %s\n", now().UTC().Format(time.RFC3339), fmt.Sprintf(format, args...))
}

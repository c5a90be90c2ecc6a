package notify

import (
	"context"
	"path"
	"regexp"
	"strings"

	"github.com/workstation-tools/internal/execx"
)

var outerWindowRe = regexp.MustCompile(`(?m)^OUTER_TMUX_WINDOW=(.+)$`)

// WindowActive reports whether the pane that fired the hook is the one on
// screen. Inside the nested server the outer window has to match as well.
func WindowActive(ctx context.Context, r execx.Runner, getenv func(string) string) bool {
	tmux := getenv("TMUX")
	if tmux == "" {
		return false
	}
	active, err := execx.Output(ctx, r, "tmux", "display-message", "-p", "#{window_active}")
	if err != nil || strings.TrimSpace(active) != "1" {
		return false
	}
	if socketName(tmux) != "nested" {
		return true
	}

	outer := outerWindow(ctx, r, getenv)
	if outer == "" {
		return false
	}
	current, err := execx.Output(ctx, r, "tmux", "-L", "default", "display-message", "-p", "#W")
	if err != nil {
		return false
	}
	return strings.TrimSpace(current) == outer
}

// socketName extracts "nested" from "/tmp/tmux-502/nested,12345,0".
func socketName(tmux string) string {
	sock, _, _ := strings.Cut(tmux, ",")
	return path.Base(sock)
}

func outerWindow(ctx context.Context, r execx.Runner, getenv func(string) string) string {
	if w := getenv("OUTER_TMUX_WINDOW"); w != "" {
		return w
	}
	out, err := execx.Output(ctx, r, "tmux", "show-environment", "-g", "OUTER_TMUX_WINDOW")
	if err != nil {
		return ""
	}
	if m := outerWindowRe.FindStringSubmatch(out); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

package healthcheck

import (
	"fmt"
	"io"

	"github.com/workstation-tools/internal/console"
)

func icon(s Status) string {
	switch s {
	case Pass:
		return console.Green("✓")
	case Warn:
		return console.Yellow("⚠")
	case Fail:
		return console.Red("✗")
	}
	return console.Cyan("ℹ")
}

func colorDetail(s Status, d string) string {
	if s == Fail {
		return console.Red(d)
	}
	return console.Yellow(d)
}

const keyChain = `
  C-M-S-Arrow delivery path:
    Ghostty  →  sends \x1b[1;8{A,B,C,D}  (xterm modifier 8 = Ctrl+Alt+Shift)
       ↓
    Outer tmux  →  should NOT have C-M-S binding  →  passes key to pane
       ↓
    Nested tmux  →  has C-M-S-Arrow binding  →  runs tmux-swap-or-move-window

  C-M-Arrow delivery path:
    Ghostty  →  sends standard Ctrl+Alt+Arrow
       ↓
    Outer tmux  →  has C-M-Arrow binding  →  runs tmux-swap-or-move-window
       ↓
    (never reaches nested tmux)

  Prefix delivery path:
    C-x      →  outer tmux captures (prefix)
    C-o      →  outer tmux sends C-x to pane (via send-prefix)
    C-x C-o  →  sends literal C-o to terminal app
`

// Write prints the report grouped by section, followed by the key delivery
// summary and the totals.
func Write(w io.Writer, r *Report) {
	fmt.Fprintln(w, console.Bold("tmux Health Check"))
	fmt.Fprintln(w, "Verifying nested tmux keybinding chain...")

	section := ""
	for _, res := range r.Results {
		if res.Section != section {
			section = res.Section
			fmt.Fprintf(w, "\n%s\n", console.Bold(section))
		}
		fmt.Fprintf(w, "  %s %s\n", icon(res.Status), res.Msg)
		if res.Detail != "" {
			fmt.Fprintf(w, "      %s\n", colorDetail(res.Status, res.Detail))
		}
	}

	fmt.Fprintf(w, "\n%s\n%s", console.Bold("Key Delivery Chain Summary"), keyChain)

	fmt.Fprintf(w, "\n%s\n", console.Bold("Results"))
	fmt.Fprintf(w, "  %s\n", console.Green(fmt.Sprintf("%d passed", r.Count(Pass))))
	if n := r.Count(Warn); n > 0 {
		fmt.Fprintf(w, "  %s\n", console.Yellow(fmt.Sprintf("%d warnings", n)))
	}
	if n := r.Count(Fail); n > 0 {
		fmt.Fprintf(w, "  %s\n", console.Red(fmt.Sprintf("%d failures", n)))
		fmt.Fprintf(w, "\n%s Run 'tmux source-file ~/.tmux.conf' to reload outer config.\n", console.Red("Some checks failed."))
		fmt.Fprintln(w, "If issues persist, kill both servers: 'tmux kill-server && tmux -L nested kill-server'")
		return
	}
	if r.Count(Warn) > 0 {
		fmt.Fprintf(w, "\n%s\n", console.Yellow("All critical checks passed, but some warnings."))
		return
	}
	fmt.Fprintf(w, "\n%s\n", console.Green("All checks passed."))
}

// Package healthcheck verifies the nested tmux keybinding chain: config
// files, both tmux servers, helper tools and the terminal's key sequences.
package healthcheck

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/workstation-tools/internal/execx"
)

type Status int

const (
	Pass Status = iota
	Warn
	Fail
	Info
)

// Result is one line of the report.
type Result struct {
	Section string
	Status  Status
	Msg     string
	Detail  string
}

// Report collects results in check order.
type Report struct {
	Results []Result
	section string
}

func (r *Report) add(s Status, msg, detail string) {
	r.Results = append(r.Results, Result{Section: r.section, Status: s, Msg: msg, Detail: detail})
}

func (r *Report) pass(msg string)              { r.add(Pass, msg, "") }
func (r *Report) fail(msg string, d ...string) { r.add(Fail, msg, strings.Join(d, " ")) }
func (r *Report) warn(msg string, d ...string) { r.add(Warn, msg, strings.Join(d, " ")) }
func (r *Report) info(msg string)              { r.add(Info, msg, "") }

// Count returns how many results have status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Sockets are always explicit: a bare tmux inherits $TMUX, which points at
// the nested server when run from a nested pane.
const (
	OuterSocket  = "default"
	NestedSocket = "nested"
)

// Checker runs every check. LookPath defaults to exec.LookPath.
type Checker struct {
	Runner   execx.Runner
	Home     string
	LookPath func(string) (string, error)
}

// Run executes all checks in order.
func (c *Checker) Run(ctx context.Context) *Report {
	if c.LookPath == nil {
		c.LookPath = exec.LookPath
	}
	r := &Report{}
	c.configFiles(r)
	c.outer(ctx, r)
	c.nested(ctx, r)
	c.tools(r)
	c.ghostty(r)
	return r
}

func (c *Checker) path(name string) string { return filepath.Join(c.Home, name) }

// fileMatches reports whether any line of path matches pattern.
func fileMatches(path, pattern string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return regexp.MustCompile("(?m)" + pattern).Match(data)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (c *Checker) configFiles(r *Report) {
	r.section = "Config Files"
	for _, f := range []string{".tmux.shared.conf", ".tmux.conf", ".tmux.nested.conf"} {
		if fileExists(c.path(f)) {
			r.pass(f + " exists")
		} else {
			r.fail(f + " missing")
		}
	}

	outer, nested := c.path(".tmux.conf"), c.path(".tmux.nested.conf")
	if fileMatches(outer, `source-file.*tmux\.shared`) {
		r.pass(".tmux.conf sources .tmux.shared.conf")
	} else {
		r.fail(".tmux.conf does not source .tmux.shared.conf")
	}
	if fileMatches(nested, `source-file.*tmux\.shared`) {
		r.pass(".tmux.nested.conf sources .tmux.shared.conf")
	} else {
		r.fail(".tmux.nested.conf does not source .tmux.shared.conf")
	}
	if fileMatches(nested, `source-file.*\.tmux\.conf$`) {
		r.fail(".tmux.nested.conf sources .tmux.conf (should only source .tmux.shared.conf)")
	} else {
		r.pass(".tmux.nested.conf does NOT source .tmux.conf")
	}
	if fileMatches(outer, `unbind.*C-M-S`) {
		r.pass(".tmux.conf has explicit unbinds for C-M-S-Arrow")
	} else {
		r.fail(".tmux.conf missing unbinds for C-M-S-Arrow", "Stale bindings will persist across reloads")
	}
}

func (c *Checker) tmux(ctx context.Context, socket string, args ...string) (string, error) {
	return execx.Output(ctx, c.Runner, "tmux", append([]string{"-L", socket}, args...)...)
}

func (c *Checker) bindings(ctx context.Context, socket string) []string {
	out, err := c.tmux(ctx, socket, "list-keys", "-T", "root")
	if err != nil {
		return nil
	}
	return execx.SplitLines(out)
}

func (c *Checker) option(ctx context.Context, socket, name string, server bool) string {
	flag := "-g"
	if server {
		flag = "-s"
	}
	out, _ := c.tmux(ctx, socket, "show-option", flag, name)
	return strings.TrimSpace(out)
}

func anyBinding(bindings []string, match func(string) bool) bool {
	for _, b := range bindings {
		if match(b) {
			return true
		}
	}
	return false
}

func outerMove(b string) bool  { return strings.Contains(b, "C-M-Left") && !strings.Contains(b, "C-M-S") }
func nestedMove(b string) bool { return strings.Contains(b, "C-M-S-Left") }
func sendPrefix(b string) bool { return strings.Contains(b, "C-o") && strings.Contains(b, "send-prefix") }

// serverCommon checks what both servers must agree on.
func (c *Checker) serverCommon(ctx context.Context, r *Report, socket string) {
	if ext := c.option(ctx, socket, "extended-keys", true); strings.Contains(ext, "always") {
		r.pass("extended-keys = always")
	} else {
		if ext == "" {
			ext = "(not set)"
		}
		r.fail("extended-keys = "+ext, "Should be 'always'")
	}
}

func (c *Checker) prefix(ctx context.Context, r *Report, socket string) {
	if p := c.option(ctx, socket, "prefix", false); strings.Contains(p, "C-x") {
		r.pass("Prefix is C-x")
	} else {
		r.warn("Prefix is "+p, "Expected C-x")
	}
}

func (c *Checker) running(ctx context.Context, socket string) bool {
	_, err := c.tmux(ctx, socket, "list-sessions")
	return err == nil
}

func (c *Checker) outer(ctx context.Context, r *Report) {
	r.section = "Outer tmux Server"
	if !c.running(ctx, OuterSocket) {
		r.info("Outer tmux server not running, skipping server checks")
		return
	}
	r.pass("Outer tmux server is running")
	c.serverCommon(ctx, r, OuterSocket)

	root := c.bindings(ctx, OuterSocket)
	if anyBinding(root, outerMove) {
		r.pass("C-M-Arrow bindings present (outer window movement)")
	} else {
		r.fail("C-M-Arrow bindings missing, outer window movement won't work")
	}
	if anyBinding(root, func(b string) bool { return strings.Contains(b, "C-M-S-") }) {
		r.fail("C-M-S-Arrow bindings found in OUTER tmux",
			"These intercept keys meant for nested tmux. Reload config or restart outer server.")
	} else {
		r.pass("No C-M-S-Arrow bindings in outer (those belong to nested)")
	}
	if anyBinding(root, sendPrefix) {
		r.pass("C-o send-prefix binding present (prefix forwarding to nested)")
	} else {
		r.fail("C-o send-prefix missing, can't send prefix to nested tmux")
	}
	c.prefix(ctx, r, OuterSocket)
}

const reloadNested = "Reload nested config: tmux -L nested source-file ~/.tmux.nested.conf"

func (c *Checker) nested(ctx context.Context, r *Report) {
	r.section = "Nested tmux Server"
	if !c.running(ctx, NestedSocket) {
		r.info("Nested tmux server not running, skipping server checks")
		return
	}
	r.pass("Nested tmux server is running")
	c.serverCommon(ctx, r, NestedSocket)

	root := c.bindings(ctx, NestedSocket)
	if anyBinding(root, nestedMove) {
		r.pass("C-M-S-Arrow bindings present (nested window movement)")
	} else {
		r.fail("C-M-S-Arrow bindings missing in nested tmux", "Window movement in nested tmux won't work")
	}
	if anyBinding(root, outerMove) {
		r.fail("C-M-Arrow bindings found in nested tmux (stale from old config)", reloadNested)
	} else {
		r.pass("No C-M-Arrow bindings in nested (those belong to outer)")
	}
	if anyBinding(root, sendPrefix) {
		r.fail("C-o send-prefix found in nested tmux (stale from old config)", reloadNested)
	} else {
		r.pass("No C-o send-prefix in nested (only outer needs this)")
	}
	c.prefix(ctx, r, NestedSocket)
}

// requiredTools fail the check when missing; the rest only warn.
var (
	requiredTools = []string{"tmux", "tmux-swap-or-move-window"}
	optionalTools = []string{"tmux-fzf-picker", "ic", "fzf", "fd", "bat", "git", "gh"}
)

func (c *Checker) tools(r *Report) {
	r.section = "Tools on PATH"
	for _, t := range requiredTools {
		if p, err := c.LookPath(t); err == nil {
			r.pass(fmt.Sprintf("%s found at %s", t, p))
		} else {
			r.fail(t + " not on PATH")
		}
	}
	for _, t := range optionalTools {
		if p, err := c.LookPath(t); err == nil {
			r.pass(fmt.Sprintf("%s found at %s", t, p))
		} else {
			r.warn(t + " not on PATH")
		}
	}
}

// GhosttyKeys maps each required keybind to the escape sequence it must send.
var GhosttyKeys = []struct{ Key, Seq string }{
	{"ctrl+alt+shift+arrow_left", `\x1b[1;8D`},
	{"ctrl+alt+shift+arrow_right", `\x1b[1;8C`},
	{"ctrl+alt+shift+arrow_up", `\x1b[1;8A`},
	{"ctrl+alt+shift+arrow_down", `\x1b[1;8B`},
}

func (c *Checker) ghostty(r *Report) {
	r.section = "Ghostty Terminal Config"
	cfg := c.path(filepath.Join(".config", "ghostty", "config"))
	if !fileExists(cfg) {
		r.info("Ghostty config not found, skipping")
		return
	}
	data, _ := os.ReadFile(cfg)
	for _, k := range GhosttyKeys {
		if strings.Contains(string(data), k.Key) {
			r.pass("Ghostty keybind: " + k.Key)
		} else {
			r.fail("Ghostty missing keybind: "+k.Key, "Should send "+k.Seq)
		}
	}
	if strings.Contains(string(data), "super+c") {
		r.pass("Ghostty keybind: super+c (Cmd+C for copy)")
	} else {
		r.warn("Ghostty missing super+c keybind")
	}
}

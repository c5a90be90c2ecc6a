// Package picker generates the shell scripts behind the tmux fzf popup.
//
// The tmux binding runs `tmux-fzf-picker pick ...`, which writes three files
// keyed by pane id and prints the runner path for tmux to exec:
//
//	.state  sourceable key=value toggles
//	.sh     helper that flips a toggle and re-runs fd
//	.run    fzf invocation that types the selection into the pane
package picker

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/workstation-tools/internal/pkg/validate"
)

// DefaultExcludes is used when no --exclude is given.
var DefaultExcludes = []string{".git", "node_modules"}

// Options mirrors the pick flags.
type Options struct {
	Type        string `validate:"required,oneof=f d"`
	Dir         string `validate:"required"`
	PaneID      string `validate:"required"`
	ShowIgnored bool
	Exclude     []string
	Toggles     bool
	Prefix      string
}

// Paths are the generated files for one pane.
type Paths struct {
	State  string
	Helper string
	Runner string
}

// PathsFor returns the temp file names for pane.
func PathsFor(tmpDir, pane string) Paths {
	safe := unsafePane.ReplaceAllString(pane, "_")
	base := filepath.Join(tmpDir, "fzf-picker-"+safe)
	return Paths{State: base + ".state", Helper: base + ".sh", Runner: base + ".run"}
}

var unsafePane = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// ShellQuote wraps s in single quotes for /bin/sh.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

var homePrefix = regexp.MustCompile(`^(\$HOME\b|\$\{HOME\})`)

// ExpandHome expands a leading ~, ~/, $HOME or ${HOME}.
func ExpandHome(p, home string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		return home + p[1:]
	}
	return homePrefix.ReplaceAllLiteralString(p, home)
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// StateFile renders the initial toggle state. Dotfiles start visible.
func StateFile(opts Options) string {
	return fmt.Sprintf("type=%s\nhidden=%d\nignore=%d\nexclude=\"%s\"\n",
		opts.Type, bit(true), bit(opts.ShowIgnored), strings.Join(excludes(opts), " "))
}

func excludes(opts Options) []string {
	if len(opts.Exclude) > 0 {
		return opts.Exclude
	}
	return DefaultExcludes
}

// HelperScript renders the script fzf calls on start and on each toggle.
// "$1" names the toggle to flip (or "none"); "$2" = header prints the header instead of listing.
func HelperScript(p Paths) string {
	return strings.Join([]string{
		"#!/bin/sh",
		"SF=" + ShellQuote(p.State),
		`. "$SF"`,
		`case "$1" in`,
		`  hidden) if [ "$hidden" = 1 ]; then hidden=0; else hidden=1; fi ;;`,
		`  ignore) if [ "$ignore" = 1 ]; then ignore=0; else ignore=1; fi ;;`,
		"esac",
		`printf 'type=%s\nhidden=%s\nignore=%s\nexclude="%s"\n' "$type" "$hidden" "$ignore" "$exclude" > "$SF"`,
		`if [ "$2" = "header" ]; then`,
		`  h=$([ "$hidden" = 1 ] && echo ON || echo OFF)`,
		`  i=$([ "$ignore" = 1 ] && echo ON || echo OFF)`,
		`  printf 'ctrl-g: toggle gitignored | ctrl-h: toggle dotfiles | hidden:%s | gitignored:%s' "$h" "$i"`,
		"  exit 0",
		"fi",
		`set -- --type "$type"`,
		`[ "$hidden" = 1 ] && set -- "$@" --hidden`,
		`[ "$ignore" = 1 ] && set -- "$@" --no-ignore`,
		`for e in $exclude; do set -- "$@" --exclude "$e"; done`,
		`exec fd "$@"`,
		"",
	}, "\n")
}

// FzfCommand renders the fzf command line used by the runner.
func FzfCommand(opts Options, p Paths) string {
	parts := []string{"fzf", "--height", "100%", "--prompt", ShellQuote("> ")}
	if opts.Type == "f" {
		parts = append(parts, "--preview", ShellQuote("bat --color=always --style=numbers --line-range=:500 {}"))
	} else {
		parts = append(parts, "--preview", ShellQuote("ls -la {}"))
	}
	parts = append(parts,
		"--preview-window", ShellQuote("right:60%:wrap"),
		"--bind", ShellQuote(fmt.Sprintf("start:reload(%s none)", p.Helper)),
	)
	if opts.Toggles {
		header := fmt.Sprintf("ctrl-g: toggle gitignored | ctrl-h: toggle dotfiles | hidden:%s | gitignored:%s",
			onOff(true), onOff(opts.ShowIgnored))
		parts = append(parts,
			"--header", ShellQuote(header),
			"--bind", ShellQuote(fmt.Sprintf("ctrl-g:reload(%[1]s ignore)+transform-header(%[1]s ignore header)", p.Helper)),
			"--bind", ShellQuote(fmt.Sprintf("ctrl-h:reload(%[1]s hidden)+transform-header(%[1]s hidden header)", p.Helper)),
		)
	}
	return strings.Join(parts, " ")
}

// RunnerScript renders the script tmux runs in the popup. It removes all
// three files on exit.
func RunnerScript(opts Options, p Paths, dir string) string {
	lines := []string{
		"#!/bin/sh",
		"cd " + ShellQuote(dir),
		"cleanup() {",
		fmt.Sprintf("  rm -f %s %s %s", ShellQuote(p.State), ShellQuote(p.Helper), ShellQuote(p.Runner)),
		"}",
		"trap cleanup EXIT INT TERM",
		fmt.Sprintf("selected=$(%s)", FzfCommand(opts, p)),
		"ec=$?",
		`if [ $ec -eq 0 ] && [ -n "$selected" ]; then`,
	}
	if opts.Prefix != "" {
		lines = append(lines, fmt.Sprintf(`  result=$(echo "$selected" | while IFS= read -r line; do printf '%%s ' %s"$line"; done)`, ShellQuote(opts.Prefix)))
	} else {
		lines = append(lines, `  result=$(echo "$selected" | tr '\n' ' ')`)
	}
	lines = append(lines,
		fmt.Sprintf(`  tmux send-keys -t %s -l "$result"`, ShellQuote(opts.PaneID)),
		"fi",
		"exit $ec",
		"",
	)
	return strings.Join(lines, "\n")
}

// Write generates the three files under tmpDir and returns their paths.
func Write(opts Options, tmpDir, home string) (Paths, error) {
	if err := validate.Struct(opts); err != nil {
		return Paths{}, err
	}
	p := PathsFor(tmpDir, opts.PaneID)
	dir := ExpandHome(opts.Dir, home)

	files := []struct {
		path, body string
		mode       os.FileMode
	}{
		{p.State, StateFile(opts), 0o644},
		{p.Helper, HelperScript(p), 0o755},
		{p.Runner, RunnerScript(opts, p, dir), 0o755},
	}
	for _, f := range files {
		if err := os.WriteFile(f.path, []byte(f.body), f.mode); err != nil {
			return Paths{}, fmt.Errorf("write %s: %w", f.path, err)
		}
		if err := os.Chmod(f.path, f.mode); err != nil {
			return Paths{}, fmt.Errorf("chmod %s: %w", f.path, err)
		}
	}
	return p, nil
}

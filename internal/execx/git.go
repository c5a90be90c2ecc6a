package execx

import (
	"context"
	"strings"
)

// Git runs git subcommands through a Runner with a fixed working dir and
// extra environment.
type Git struct {
	Runner Runner
	Dir    string
	Env    []string
}

func NewGit(r Runner, dir string, env ...string) *Git {
	return &Git{Runner: r, Dir: dir, Env: env}
}

// Run returns trimmed stdout.
func (g *Git) Run(ctx context.Context, args ...string) (string, error) {
	res, err := g.Runner.Run(ctx, Cmd{Name: "git", Args: args, Dir: g.Dir, Env: g.Env})
	return res.Stdout, err
}

// OK reports whether the git command exits zero.
func (g *Git) OK(ctx context.Context, args ...string) bool {
	_, err := g.Run(ctx, args...)
	return err == nil
}

// Lines splits stdout into non-empty trimmed lines.
func (g *Git) Lines(ctx context.Context, args ...string) ([]string, error) {
	out, err := g.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return SplitLines(out), nil
}

// SplitLines splits s on newlines, dropping blank lines.
func SplitLines(s string) []string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

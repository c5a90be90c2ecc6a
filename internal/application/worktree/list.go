package worktree

import (
	"fmt"
	"strings"
)

// Worktree is one entry of `git worktree list --porcelain`.
type Worktree struct {
	Path     string
	Head     string
	Branch   string
	Bare     bool
	Detached bool
}

// Name is the label shown to the user: the branch, or the short head when detached.
func (w Worktree) Name() string {
	switch {
	case w.Bare:
		return "(bare)"
	case w.Branch != "":
		return w.Branch
	case len(w.Head) >= 7:
		return w.Head[:7]
	}
	return w.Head
}

// ParseList parses porcelain output. Records are separated by blank lines;
// a missing trailing blank line is tolerated.
func ParseList(out string) []Worktree {
	var (
		list []Worktree
		cur  *Worktree
	)
	flush := func() {
		if cur != nil && cur.Path != "" {
			list = append(list, *cur)
		}
		cur = nil
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			flush()
			continue
		}
		if cur == nil {
			cur = &Worktree{}
		}
		key, val, _ := strings.Cut(line, " ")
		switch key {
		case "worktree":
			cur.Path = val
		case "HEAD":
			cur.Head = val
		case "branch":
			cur.Branch = strings.TrimPrefix(val, "refs/heads/")
		case "bare":
			cur.Bare = true
		case "detached":
			cur.Detached = true
		}
	}
	flush()
	return list
}

// FormatForPicker renders non-bare worktrees as "branch path" lines for fzf.
func FormatForPicker(list []Worktree) string {
	var b strings.Builder
	for _, w := range list {
		if w.Bare {
			continue
		}
		fmt.Fprintf(&b, "%-20s %s\n", w.Name(), w.Path)
	}
	return strings.TrimRight(b.String(), "\n")
}

// PathFromSelection returns the last whitespace-separated field of an fzf selection.
func PathFromSelection(sel string) string {
	fields := strings.Fields(sel)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

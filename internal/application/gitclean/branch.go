package gitclean

import (
	"strconv"
	"strings"
	"time"
)

// Branch is a deletion candidate.
type Branch struct {
	Name      string
	LocalSHA  string
	RemoteSHA string // empty when the remote branch does not exist
	Merged    bool
	Gone      bool

	LastCommit time.Time
	Message    string
	Author     string
	DaysOld    int
}

func (b Branch) HasRemote() bool { return b.RemoteSHA != "" }

func (b Branch) InSync() bool { return b.HasRemote() && b.RemoteSHA == b.LocalSHA }

// SyncMark is ✓ in sync, ⚠ out of sync, ○ no remote branch.
func (b Branch) SyncMark() string {
	switch {
	case !b.HasRemote():
		return "○"
	case b.InSync():
		return "✓"
	}
	return "⚠"
}

// parseLastCommit parses `git log -1 --format=%H%n%at%n%s%n%an`.
func parseLastCommit(name, out string, now time.Time) (Branch, bool) {
	lines := strings.Split(out, "\n")
	if len(lines) < 4 {
		return Branch{}, false
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(lines[1]), 10, 64)
	if err != nil {
		return Branch{}, false
	}
	at := time.Unix(ts, 0)
	return Branch{
		Name:       name,
		LocalSHA:   strings.TrimSpace(lines[0]),
		LastCommit: at,
		Message:    lines[2],
		Author:     lines[3],
		DaysOld:    DaysOld(at, now),
	}, true
}

// DaysOld is the number of whole days between t and now.
func DaysOld(t, now time.Time) int {
	return int(now.Sub(t) / (24 * time.Hour))
}

// Truncate shortens s to n characters, ending in "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n < 3 {
		return "..."
	}
	return string(r[:n-3]) + "..."
}

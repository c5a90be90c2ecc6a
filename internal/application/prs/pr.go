// Package prs closes stale pull requests through the gh CLI.
package prs

import (
	"encoding/json"
	"fmt"
	"time"
)

// PR is the subset of `gh pr list --json` the tool reads.
type PR struct {
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	Author      string    `json:"-"`
	IsDraft     bool      `json:"isDraft"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	HeadRefName string    `json:"headRefName"`
	BaseRefName string    `json:"baseRefName"`
	URL         string    `json:"url"`
}

const listFields = "number,title,author,isDraft,createdAt,updatedAt,headRefName,baseRefName,url"

// UnmarshalJSON flattens gh's {"author": {"login": ...}}.
func (p *PR) UnmarshalJSON(b []byte) error {
	type alias PR
	var raw struct {
		alias
		Author struct {
			Login string `json:"login"`
		} `json:"author"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = PR(raw.alias)
	p.Author = raw.Author.Login
	return nil
}

func parseList(out string) ([]PR, error) {
	if out == "" {
		return nil, nil
	}
	var list []PR
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		return nil, fmt.Errorf("decode gh pr list output: %w", err)
	}
	return list, nil
}

// DaysOld is whole days since created.
func DaysOld(created, now time.Time) int {
	return int(now.Sub(created) / (24 * time.Hour))
}

// FormatAge renders a coarse relative age such as "3 weeks ago".
func FormatAge(created, now time.Time) string {
	d := now.Sub(created)
	days := int(d / (24 * time.Hour))
	switch {
	case days == 0 && d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case days == 0:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case days == 1:
		return "1 day ago"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return plural(days/7, "week")
	case days < 365:
		return plural(days/30, "month")
	}
	return plural(days/365, "year")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// Truncate shortens s to n runes, ending in "...".
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

// Package zshprof analyzes zsh xtrace startup logs (PS4='+%D{%s.%6.}
// %N:%i> ').
package zshprof

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var traceLine = regexp.MustCompile(`^\+(\d+\.\d+)\s+(.+?)>(?:\s+(.+))?$`)

// Entry is one traced command.
type Entry struct {
	Timestamp float64 // seconds
	Location  string  // file:line
	Command   string
}

// File is the part of Location before the first colon.
func (e Entry) File() string {
	f, _, _ := strings.Cut(e.Location, ":")
	return f
}

// Parse reads trace lines. With requireCommand, lines whose prompt is not
// followed by a command are skipped.
func Parse(r io.Reader, requireCommand bool) ([]Entry, error) {
	var out []Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		m := traceLine.FindStringSubmatch(strings.TrimSuffix(sc.Text(), "\r"))
		if m == nil || (requireCommand && m[3] == "") {
			continue
		}
		ts, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		out = append(out, Entry{Timestamp: ts, Location: m[2], Command: m[3]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return out, nil
}

// Timed is an entry with the time until the next entry started.
type Timed struct {
	Entry
	DurationMS float64
}

// Durations pairs each entry with the gap to its successor. The last entry
// gets 0.
func Durations(entries []Entry) []Timed {
	out := make([]Timed, len(entries))
	for i, e := range entries {
		out[i].Entry = e
		if i+1 < len(entries) {
			out[i].DurationMS = (entries[i+1].Timestamp - e.Timestamp) * 1000
		}
	}
	return out
}

// Slowest returns entries at or above thresholdMS, slowest first, at most top.
func Slowest(timed []Timed, thresholdMS float64, top int) []Timed {
	var out []Timed
	for _, t := range timed {
		if t.DurationMS >= thresholdMS {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DurationMS > out[j].DurationMS })
	if top >= 0 && len(out) > top {
		out = out[:top]
	}
	return out
}

// FileTime is the cumulative time attributed to one file.
type FileTime struct {
	File   string
	TimeMS float64
}

// ByFile sums durations per file, largest first.
func ByFile(timed []Timed) []FileTime {
	sums := map[string]float64{}
	var order []string
	for _, t := range timed {
		f := t.File()
		if _, ok := sums[f]; !ok {
			order = append(order, f)
		}
		sums[f] += t.DurationMS
	}
	out := make([]FileTime, 0, len(order))
	for _, f := range order {
		out = append(out, FileTime{File: f, TimeMS: sums[f]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TimeMS > out[j].TimeMS })
	return out
}

// TotalMS is the span from the first to the last entry.
func TotalMS(entries []Entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	return (entries[len(entries)-1].Timestamp - entries[0].Timestamp) * 1000
}

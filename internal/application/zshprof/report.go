package zshprof

import (
	"fmt"
	"io"
	"strings"
)

var rule = strings.Repeat("-", 80)

// WriteStartupReport prints the slowest entries, the ten most expensive
// files among them, and the total startup time.
func WriteStartupReport(w io.Writer, entries []Entry, thresholdMS float64, top int) {
	slow := Slowest(Durations(entries), thresholdMS, -1)
	shown := slow
	if len(shown) > top {
		shown = shown[:top]
	}

	fmt.Fprintf(w, "\nTop %d slowest operations (threshold: %gms):\n\n", len(shown), thresholdMS)
	fmt.Fprintln(w, "Duration (ms) | Location | Command")
	fmt.Fprintln(w, rule)
	for _, t := range shown {
		fmt.Fprintf(w, "%12.2f | %-30s | %s\n", t.DurationMS, t.Location, truncate(t.Command, 60))
	}

	files := ByFile(slow)
	if len(files) > 10 {
		files = files[:10]
	}
	fmt.Fprint(w, "\n\nTop 10 files by total time:\n\n")
	fmt.Fprintln(w, "Total Time (ms) | File")
	fmt.Fprintln(w, rule)
	for _, f := range files {
		fmt.Fprintf(w, "%15.2f | %s\n", f.TimeMS, f.File)
	}

	fmt.Fprintf(w, "\n\nTotal startup time: %.2fms\n", TotalMS(entries))
}

// WriteFileReport prints cumulative time per file (top 40) and the total.
func WriteFileReport(w io.Writer, entries []Entry) {
	files := ByFile(Durations(entries))
	if len(files) > 40 {
		files = files[:40]
	}
	fmt.Fprint(w, "\nCumulative time per file:\n\n")
	fmt.Fprintln(w, "Time (ms) | File")
	fmt.Fprintln(w, rule)
	for _, f := range files {
		fmt.Fprintf(w, "%9.2f | %s\n", f.TimeMS, f.File)
	}
	fmt.Fprintf(w, "\nTotal startup time: %.2fms\n", TotalMS(entries))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package readtree

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

const (
	clearLine  = "\x1b[2K"
	hideCursor = "\x1b[?25l"
	showCursor = "\x1b[?25h"
)

// Progress renders the two-line live status to Out.
type Progress struct {
	Out       io.Writer
	PathWidth int
}

func (p *Progress) Begin() { fmt.Fprint(p.Out, hideCursor) }

func (p *Progress) Render(s Stats) {
	fmt.Fprintf(p.Out, "%s\rFiles: %s | Dirs: %s | Size: %s | Speed: %s/s | Errors: %d | Time: %s\n%s\rCurrent: %s\r\x1b[1A",
		clearLine,
		humanize.Comma(s.Files), humanize.Comma(s.Dirs),
		FormatBytes(float64(s.Bytes)), FormatBytes(s.BytesPerSecond()),
		s.Errors, FormatDuration(s.Elapsed),
		clearLine, TruncatePath(s.Current, p.PathWidth))
}

// Finish draws the last status and the final statistics block.
func (p *Progress) Finish(s Stats) {
	p.Render(s)
	fmt.Fprint(p.Out, "\n\n\n", showCursor)
	WriteSummary(p.Out, s)
}

// WriteSummary prints the final statistics block.
func WriteSummary(w io.Writer, s Stats) {
	fmt.Fprintln(w, "=== Final Statistics ===")
	fmt.Fprintf(w, "Total Files:       %s\n", humanize.Comma(s.Files))
	fmt.Fprintf(w, "Total Directories: %s\n", humanize.Comma(s.Dirs))
	fmt.Fprintf(w, "Total Size:        %s\n", FormatBytes(float64(s.Bytes)))
	fmt.Fprintf(w, "Errors:            %d\n", s.Errors)
	fmt.Fprintf(w, "Duration:          %s\n", FormatDuration(s.Elapsed))
	fmt.Fprintf(w, "Files/s:           %.1f\n", s.FilesPerSecond())
	fmt.Fprintf(w, "Average Speed:     %.2f MB/s\n", s.BytesPerSecond()/(1024*1024))
}

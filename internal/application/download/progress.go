package download

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

type Status string

const (
	StatusDownloading Status = "downloading"
	StatusComplete    Status = "complete"
	StatusFailed      Status = "error"
)

// Progress is reported while an item downloads and once when it ends.
type Progress struct {
	ID           string
	Filename     string
	URL          string
	Bytes        int64
	Total        int64 // -1 when the server sent no length
	RecentSpeed  float64
	AverageSpeed float64
	Start        time.Time
	Status       Status
	Err          error
}

// String renders a one-line status such as
// "movie.zip  12 MB / 40 MB  1.2 MB/s (avg 900 kB/s)".
func (p Progress) String() string {
	size := humanize.Bytes(uint64(p.Bytes))
	if p.Total > 0 {
		size = fmt.Sprintf("%s / %s (%.0f%%)", size, humanize.Bytes(uint64(p.Total)), 100*float64(p.Bytes)/float64(p.Total))
	}
	switch p.Status {
	case StatusComplete:
		return fmt.Sprintf("%s  %s  done, avg %s/s", p.Filename, size, humanize.Bytes(uint64(p.AverageSpeed)))
	case StatusFailed:
		return fmt.Sprintf("%s  failed: %v", p.Filename, p.Err)
	}
	return fmt.Sprintf("%s  %s  %s/s (avg %s/s)", p.Filename, size,
		humanize.Bytes(uint64(p.RecentSpeed)), humanize.Bytes(uint64(p.AverageSpeed)))
}

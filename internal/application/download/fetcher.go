package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sony/gobreaker"
	"github.com/workstation-tools/internal/domain"
	"golang.org/x/time/rate"
)

const (
	progressInterval = 100 * time.Millisecond
	recentWindow     = 10 * time.Second
	sampleRetention  = 15 * time.Second
)

// StatusError is a non-2xx response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string { return "HTTP error! status: " + e.Status }

// Fetcher streams items into Dir.
type Fetcher struct {
	Client  *http.Client
	Dir     string
	Now     func() time.Time
	breaker *gobreaker.CircuitBreaker
}

func NewFetcher(client *http.Client, dir string) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{Client: client, Dir: dir, Now: time.Now}
}

// WithBreaker trips after consecutive transport or server failures so a
// dead network does not mark every queued item as failed. Client errors
// (4xx) belong to the item and do not count.
func (f *Fetcher) WithBreaker(failures uint32, cooldown time.Duration) *Fetcher {
	f.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "downloader",
		Timeout: cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			var se *StatusError
			return err == nil || errors.Is(err, context.Canceled) || (errors.As(err, &se) && se.Code < 500)
		},
	})
	return f
}

// ErrBreakerOpen is returned while the breaker rejects requests.
var ErrBreakerOpen = gobreaker.ErrOpenState

// Fetch downloads item to Dir/<filename> and returns the final path.
func (f *Fetcher) Fetch(ctx context.Context, item *domain.DownloadItem, onProgress func(Progress)) (string, error) {
	if f.breaker == nil {
		return f.fetch(ctx, item, onProgress)
	}
	out, err := f.breaker.Execute(func() (interface{}, error) {
		return f.fetch(ctx, item, onProgress)
	})
	if errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = ErrBreakerOpen
	}
	path, _ := out.(string)
	return path, err
}

func (f *Fetcher) fetch(ctx context.Context, item *domain.DownloadItem, onProgress func(Progress)) (string, error) {
	if onProgress == nil {
		onProgress = func(Progress) {}
	}
	target := filepath.Join(f.Dir, item.Filename)
	p := Progress{ID: item.ID, Filename: item.Filename, URL: item.URL, Start: f.Now(), Status: StatusDownloading, Total: -1}

	fail := func(err error) (string, error) {
		p.Status, p.Err = StatusFailed, err
		onProgress(p)
		return "", err
	}

	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fail(fmt.Errorf("create %s: %w", f.Dir, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL, nil)
	if err != nil {
		return fail(err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(&StatusError{Code: resp.StatusCode, Status: resp.Status})
	}
	p.Total = resp.ContentLength

	part := target + ".part"
	file, err := os.Create(part)
	if err != nil {
		return fail(err)
	}

	samples := sampler{retention: sampleRetention}
	every := rate.Sometimes{Interval: progressInterval}
	w := &countingWriter{w: file, onWrite: func(n int64) {
		now := f.Now()
		p.Bytes = n
		samples.add(now, n)
		every.Do(func() {
			p.RecentSpeed = CalculateSpeed(samples.samples, now, recentWindow)
			p.AverageSpeed = averageSpeed(p.Start, now, n)
			onProgress(p)
		})
	}}

	_, copyErr := io.Copy(w, resp.Body)
	closeErr := file.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(part)
		return fail(err)
	}
	if err := os.Rename(part, target); err != nil {
		return fail(err)
	}

	end := f.Now()
	p.Status = StatusComplete
	p.AverageSpeed = averageSpeed(p.Start, end, p.Bytes)
	p.RecentSpeed = p.AverageSpeed
	onProgress(p)
	return target, nil
}

func averageSpeed(start, now time.Time, bytes int64) float64 {
	return CalculateSpeed([]Sample{{At: start}, {At: now, Bytes: bytes}}, now, 0)
}

type countingWriter struct {
	w       io.Writer
	n       int64
	onWrite func(total int64)
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	c.onWrite(c.n)
	return n, err
}

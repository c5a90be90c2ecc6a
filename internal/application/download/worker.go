package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/workstation-tools/internal/application/queue"
	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/domain"
	"golang.org/x/sync/errgroup"
)

// DefaultPollInterval is how long the loop waits when the queue is empty.
const DefaultPollInterval = 5 * time.Second

// Worker moves items from the queue to disk.
type Worker struct {
	Queue        queue.Service
	Fetcher      *Fetcher
	Parallel     int
	PollInterval time.Duration
	// Progress receives updates; nil prints them through console.
	Progress func(Progress)

	mu       sync.Mutex
	known    map[string]bool
	started  int
	failures int
}

func NewWorker(q queue.Service, f *Fetcher, parallel int) *Worker {
	if parallel < 1 {
		parallel = 1
	}
	return &Worker{Queue: q, Fetcher: f, Parallel: parallel, PollInterval: DefaultPollInterval, known: map[string]bool{}}
}

// DownloadOne fetches a single item by id. Items that already failed are
// refused; remove and re-add them to retry.
func (w *Worker) DownloadOne(ctx context.Context, id string) (string, error) {
	item, err := w.Queue.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if item.Failed() {
		return "", fmt.Errorf("this item previously failed with error: %s, use remove and add again to retry: %w", *item.Error, domain.ErrPrecondition)
	}
	console.Info("Downloading %s from %s", item.Filename, item.URL)
	return w.process(ctx, item)
}

// Loop processes the queue until ctx is cancelled.
func (w *Worker) Loop(ctx context.Context) error {
	console.Info("Starting continuous download processing. Press Ctrl+C to stop.")
	for {
		n, err := w.RunOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			slog.Warn("download pass failed", "err", err)
		}
		if n == 0 || err != nil {
			console.Debug("No items available to download. Waiting...")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.PollInterval):
			}
		}
	}
}

// RunOnce downloads every pending item with at most Parallel in flight and
// returns how many were attempted.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	items, err := w.Queue.List(ctx, false)
	if err != nil {
		return 0, err
	}

	var pending []domain.DownloadItem
	failed := 0
	for _, it := range items {
		if it.Failed() {
			failed++
			continue
		}
		pending = append(pending, it)
	}
	w.reportFailures(items, failed)
	if len(pending) == 0 {
		return 0, nil
	}

	w.mu.Lock()
	for _, it := range pending {
		w.known[it.ID] = true
	}
	w.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.Parallel)
	attempted := 0
	for i := range pending {
		item := &pending[i]
		if gctx.Err() != nil {
			break
		}
		attempted++
		g.Go(func() error {
			w.mu.Lock()
			w.started++
			k, total := w.started, len(w.known)
			w.mu.Unlock()
			console.Info("Downloading %d/%d: %s from %s", k, total, item.Filename, item.URL)

			_, err := w.process(gctx, item)
			if errors.Is(err, ErrBreakerOpen) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return attempted, err
	}
	return attempted, nil
}

// process fetches item, then removes it on success or records the error.
// Context cancellation and an open breaker leave the item untouched.
func (w *Worker) process(ctx context.Context, item *domain.DownloadItem) (string, error) {
	path, err := w.Fetcher.Fetch(ctx, item, w.progress())
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, ErrBreakerOpen) {
			return "", err
		}
		console.Error(err.Error())
		if mErr := w.Queue.MarkError(context.WithoutCancel(ctx), item, err.Error()); mErr != nil {
			slog.Warn("could not record download error", "id", item.ID, "err", mErr)
		}
		return "", err
	}
	console.Success("Download complete: %s", path)
	if err := w.Queue.Complete(ctx, item, path); err != nil {
		return path, err
	}
	console.Info("Item removed from queue")
	return path, nil
}

func (w *Worker) progress() func(Progress) {
	if w.Progress != nil {
		return w.Progress
	}
	if w.Parallel > 1 {
		return func(p Progress) {
			if p.Status != StatusDownloading {
				console.Debug("%s", p)
			}
		}
	}
	return func(p Progress) {
		if p.Status == StatusDownloading {
			fmt.Fprintf(console.Out(), "\r\033[K%s", p)
			return
		}
		fmt.Fprintln(console.Out(), "\r\033[K"+p.String())
	}
}

func (w *Worker) reportFailures(items []domain.DownloadItem, failed int) {
	w.mu.Lock()
	changed := failed != w.failures
	w.failures = failed
	w.mu.Unlock()
	if !changed || failed == 0 {
		return
	}
	console.Warn("Items with errors:")
	for _, it := range items {
		if it.Failed() {
			console.Println("  %s: %s", it.Filename, *it.Error)
		}
	}
}

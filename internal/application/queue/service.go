// Package queue manages the DynamoDB-backed download queue.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/workstation-tools/internal/domain"
	"github.com/workstation-tools/internal/pkg/id"
)

// Store is the persistence the queue needs; *dynamo.QueueRepo implements it.
type Store interface {
	Migrate(ctx context.Context) (bool, error)
	Put(ctx context.Context, item *domain.DownloadItem) error
	Scan(ctx context.Context) ([]domain.DownloadItem, error)
	ScanByURL(ctx context.Context, u string) ([]domain.DownloadItem, error)
	GetByID(ctx context.Context, id string) (*domain.DownloadItem, error)
	Delete(ctx context.Context, id, creationTime string) error
	SetError(ctx context.Context, id, creationTime, msg, attemptedAt string) error
}

// Notifier receives queue events; *sns.publisher implements it.
type Notifier interface {
	Publish(ctx context.Context, subject, message string) error
}

type Service interface {
	Migrate(ctx context.Context) (bool, error)
	Add(ctx context.Context, rawURL, name string) (*domain.DownloadItem, error)
	List(ctx context.Context, errorsOnly bool) ([]domain.DownloadItem, error)
	Get(ctx context.Context, id string) (*domain.DownloadItem, error)
	RemoveByID(ctx context.Context, id string) error
	RemoveByURL(ctx context.Context, rawURL string) (int, error)
	MarkError(ctx context.Context, item *domain.DownloadItem, msg string) error
	Complete(ctx context.Context, item *domain.DownloadItem, path string) error
}

type service struct {
	store    Store
	notifier Notifier
	now      func() time.Time
}

func NewService(store Store, notifier Notifier) Service {
	return &service{store: store, notifier: notifier, now: time.Now}
}

func (s *service) timestamp() string {
	return s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func (s *service) Migrate(ctx context.Context) (bool, error) {
	return s.store.Migrate(ctx)
}

// Add enqueues rawURL. The filename comes from name, or from the URL when
// name is empty.
func (s *service) Add(ctx context.Context, rawURL, name string) (*domain.DownloadItem, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("url is required: %w", domain.ErrBadRequest)
	}
	item := &domain.DownloadItem{
		ID:           id.At(s.now()),
		CreationTime: s.timestamp(),
		URL:          rawURL,
		Filename:     FilenameFor(rawURL, name),
	}
	if err := s.store.Put(ctx, item); err != nil {
		return nil, fmt.Errorf("add download item: %w", err)
	}
	return item, nil
}

// List returns every item ordered by creation time, optionally only failed ones.
func (s *service) List(ctx context.Context, errorsOnly bool) ([]domain.DownloadItem, error) {
	items, err := s.store.Scan(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreationTime < items[j].CreationTime })
	if !errorsOnly {
		return items, nil
	}
	failed := items[:0]
	for _, it := range items {
		if it.Failed() {
			failed = append(failed, it)
		}
	}
	return failed, nil
}

func (s *service) Get(ctx context.Context, id string) (*domain.DownloadItem, error) {
	return s.store.GetByID(ctx, id)
}

func (s *service) RemoveByID(ctx context.Context, id string) error {
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, item.ID, item.CreationTime)
}

// RemoveByURL deletes every item queued for rawURL and returns how many.
func (s *service) RemoveByURL(ctx context.Context, rawURL string) (int, error) {
	items, err := s.store.ScanByURL(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, fmt.Errorf("no item found with url %s: %w", rawURL, domain.ErrNotFound)
	}
	for _, it := range items {
		if err := s.store.Delete(ctx, it.ID, it.CreationTime); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}

// MarkError records msg on the item and publishes a failure event.
func (s *service) MarkError(ctx context.Context, item *domain.DownloadItem, msg string) error {
	at := s.timestamp()
	if err := s.store.SetError(ctx, item.ID, item.CreationTime, msg, at); err != nil {
		return fmt.Errorf("mark %s failed: %w", item.ID, err)
	}
	item.Error, item.LastAttempt = &msg, &at
	s.notify(ctx, "Download failed", fmt.Sprintf("%s (%s): %s", item.Filename, item.URL, msg))
	return nil
}

// Complete removes a downloaded item and publishes a completion event.
func (s *service) Complete(ctx context.Context, item *domain.DownloadItem, path string) error {
	if err := s.store.Delete(ctx, item.ID, item.CreationTime); err != nil {
		return fmt.Errorf("remove %s: %w", item.ID, err)
	}
	s.notify(ctx, "Download finished", fmt.Sprintf("%s saved to %s", item.Filename, path))
	return nil
}

func (s *service) notify(ctx context.Context, subject, msg string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, subject, msg); err != nil {
		slog.Warn("could not publish queue event", "subject", subject, "err", err)
	}
}

// Entry is one URL to enqueue and the name its filename comes from.
type Entry struct {
	URL  string
	Name string
}

// AddAll enqueues every entry. An entry that fails is reported to skipped
// and the rest are still added.
func AddAll(ctx context.Context, svc Service, entries []Entry, skipped func(Entry, error)) []*domain.DownloadItem {
	var added []*domain.DownloadItem
	for _, e := range entries {
		item, err := svc.Add(ctx, e.URL, e.Name)
		if err != nil {
			if skipped != nil {
				skipped(e, err)
			}
			continue
		}
		added = append(added, item)
	}
	return added
}

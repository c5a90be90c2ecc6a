package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	statePrefix = "notification-state-"
	// StateMaxAge is how long per-session state files are kept.
	StateMaxAge = 7 * 24 * time.Hour
)

// State is the last notification sent for one session.
type State struct {
	LastType  string `json:"last_type"`
	Timestamp int64  `json:"timestamp"` // unix seconds
}

// StateStore keeps one state file per session in Dir.
type StateStore struct {
	Dir string
	Now func() time.Time
}

func NewStateStore(dir string) *StateStore {
	return &StateStore{Dir: dir, Now: time.Now}
}

func (s *StateStore) path(sessionID string) string {
	return filepath.Join(s.Dir, statePrefix+sessionID)
}

// Load returns the saved state, or false when there is none or it is unreadable.
func (s *StateStore) Load(sessionID string) (State, bool) {
	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		return State{}, false
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, false
	}
	return st, true
}

// Save records notificationType as the session's latest.
func (s *StateStore) Save(sessionID, notificationType string) error {
	st := State{LastType: notificationType, Timestamp: s.Now().Unix()}
	return writeJSONAtomic(s.path(sessionID), st)
}

// Cleanup removes state files not touched within maxAge and returns how many it removed.
func (s *StateStore) Cleanup(maxAge time.Duration) int {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return 0
	}
	cutoff := s.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), statePrefix) || strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if os.Remove(filepath.Join(s.Dir, e.Name())) == nil {
			removed++
		}
	}
	return removed
}

// SuppressIdle reports whether an idle prompt right after a stop would be a
// duplicate of the stop notification.
func SuppressIdle(prev State, hasPrev bool, current string) bool {
	return hasPrev && current == "idle_prompt" && prev.LastType == "stop"
}

// SummaryCache maps session ids to generated summaries in one JSON file.
type SummaryCache struct {
	Path string
}

func (c SummaryCache) load() map[string]string {
	m := map[string]string{}
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return m
	}
	_ = json.Unmarshal(data, &m)
	return m
}

// Get returns the cached summary for sessionID.
func (c SummaryCache) Get(sessionID string) string {
	return c.load()[sessionID]
}

// Put stores summary for sessionID.
func (c SummaryCache) Put(sessionID, summary string) error {
	m := c.load()
	m[sessionID] = summary
	return writeJSONAtomic(c.Path, m)
}

// writeJSONAtomic writes v next to path and renames it into place.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

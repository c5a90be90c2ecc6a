// Package notify turns Claude Code and Codex hook payloads into desktop
// notifications.
package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/workstation-tools/internal/domain"
)

// Input is a decoded hook payload. Claude Code and Codex send different
// shapes, so fields are read through fallback chains instead of a struct.
type Input map[string]any

// ParseInput decodes a JSON object. Blank input yields an empty Input.
func ParseInput(data []byte) (Input, error) {
	if strings.TrimSpace(string(data)) == "" {
		return Input{}, nil
	}
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parse hook input: %v: %w", err, domain.ErrBadRequest)
	}
	if in == nil {
		in = Input{}
	}
	return in, nil
}

// LooksLikeJSON reports whether a positional argument should be parsed as a payload.
func LooksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

var errReadTimeout = errors.New("stdin read timed out")

// ReadWithTimeout reads r to EOF, giving up after timeout. Whatever was not
// read by then is discarded.
func ReadWithTimeout(r io.Reader, timeout time.Duration) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(r)
		ch <- result{data, err}
	}()
	select {
	case res := <-ch:
		return res.data, res.err
	case <-time.After(timeout):
		return nil, errReadTimeout
	}
}

// IsTimeout reports whether err came from ReadWithTimeout giving up.
func IsTimeout(err error) bool { return errors.Is(err, errReadTimeout) }

// String returns the string at path, or "" when any step is missing or not a string.
func (in Input) String(path ...string) string {
	var cur any = map[string]any(in)
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[key]
	}
	s, _ := cur.(string)
	return s
}

func (in Input) first(paths ...[]string) string {
	for _, p := range paths {
		if s := in.String(p...); s != "" {
			return s
		}
	}
	return ""
}

// NotificationType picks the event name from the payload, then the first
// argument, lowercased.
func NotificationType(in Input, args []string) string {
	t := in.first([]string{"notification_type"}, []string{"hook_event_name"}, []string{"event"}, []string{"type"})
	if t == "" && len(args) > 0 {
		t = args[0]
	}
	if t == "" {
		t = "unknown"
	}
	return strings.ToLower(t)
}

// SessionID resolves the session identifier used for state file names.
func SessionID(in Input, getenv func(string) string, ppid int) string {
	id := in.first([]string{"session_id"}, []string{"sessionId"}, []string{"session", "id"})
	if id == "" {
		id = getenv("CLAUDE_SESSION_ID")
	}
	if id == "" && ppid > 0 {
		id = strconv.Itoa(ppid)
	}
	if id == "" {
		return "default"
	}
	return SanitizeSessionID(id)
}

var unsafeID = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// SanitizeSessionID keeps UUIDs as-is and strips anything else down to
// characters that are safe in a file name.
func SanitizeSessionID(id string) string {
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	if clean := unsafeID.ReplaceAllString(id, ""); clean != "" {
		return clean
	}
	return "default"
}

// TranscriptPath returns the transcript JSONL path if the hook provided one.
func (in Input) TranscriptPath() string {
	return in.first([]string{"transcript_path"}, []string{"transcript", "path"}, []string{"session", "transcript_path"})
}

// Cwd returns the hook's working directory, or fallback.
func (in Input) Cwd(fallback string) string {
	if dir := in.first([]string{"cwd"}, []string{"workspace", "current_dir"}); dir != "" {
		return dir
	}
	return fallback
}

// InlineMessage returns the most specific text the payload carries, with
// whitespace collapsed. Codex sends the conversation as "input-messages".
func InlineMessage(in Input) string {
	msg := in.first(
		[]string{"message"}, []string{"prompt"}, []string{"body"}, []string{"title"},
		[]string{"notification", "message"}, []string{"notification", "body"},
		[]string{"reason"},
	)
	if msg == "" {
		msg = lastInputMessage(in)
	}
	return collapse(msg)
}

func lastInputMessage(in Input) string {
	list, ok := in["input-messages"].([]any)
	if !ok || len(list) == 0 {
		return ""
	}
	switch last := list[len(list)-1].(type) {
	case string:
		return last
	case map[string]any:
		m := Input(last)
		return m.first([]string{"content"}, []string{"text"})
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

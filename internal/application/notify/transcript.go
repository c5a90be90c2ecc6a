package notify

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

type transcriptEntry struct {
	Type        string `json:"type"`
	Summary     string `json:"summary"`
	IsSidechain bool   `json:"isSidechain"`
	IsMeta      bool   `json:"isMeta"`
	Message     struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

// readTranscript returns every decodable line of a JSONL transcript.
// Unreadable files yield nil.
func readTranscript(path string) []transcriptEntry {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var entries []transcriptEntry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e transcriptEntry
		if json.Unmarshal([]byte(line), &e) == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

// userText returns the text of a real user turn: not a sidechain, not meta,
// not a slash command echo.
func userText(e transcriptEntry) (string, bool) {
	if e.Type != "user" || e.IsSidechain || e.IsMeta || e.Message.Role != "user" {
		return "", false
	}
	var text string
	var s string
	if json.Unmarshal(e.Message.Content, &s) == nil {
		text = s
	} else {
		var parts []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}
		if json.Unmarshal(e.Message.Content, &parts) != nil {
			return "", false
		}
		var texts []string
		for _, p := range parts {
			if p.Type == "text" && p.Text != "" {
				texts = append(texts, p.Text)
			}
		}
		text = strings.Join(texts, " ")
	}
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "<command-name>") || strings.HasPrefix(text, "<local-command-") {
		return "", false
	}
	return text, true
}

// TranscriptSummary returns the first summary entry's text.
func TranscriptSummary(path string) string {
	for _, e := range readTranscript(path) {
		if e.Type == "summary" && e.Summary != "" {
			return e.Summary
		}
	}
	return ""
}

// FirstUserMessage returns the first real user turn in the transcript.
func FirstUserMessage(path string) string {
	for _, e := range readTranscript(path) {
		if text, ok := userText(e); ok {
			return text
		}
	}
	return ""
}

// LastUserMessage returns the latest real user turn, whitespace collapsed.
func LastUserMessage(path string) string {
	entries := readTranscript(path)
	for i := len(entries) - 1; i >= 0; i-- {
		if text, ok := userText(entries[i]); ok {
			return collapse(text)
		}
	}
	return ""
}

var (
	tagRe    = regexp.MustCompile(`<[^>]*>`)
	caveatRe = regexp.MustCompile(`Caveat:.*`)
)

// CleanMessage strips markup and the CLI's caveat boilerplate before summarizing.
func CleanMessage(s string) string {
	s = tagRe.ReplaceAllString(s, "")
	s = caveatRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// FindGitRoot walks up from dir looking for a .git entry.
func FindGitRoot(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ProjectName is the basename of the git root containing cwd.
func ProjectName(cwd string) string {
	if root := FindGitRoot(cwd); root != "" {
		return filepath.Base(root)
	}
	return ""
}

// EncodeProjectPath mirrors how Claude Code names its per-project transcript dirs.
func EncodeProjectPath(p string) string {
	return strings.ReplaceAll(p, "/", "-")
}

// FindSessionFile locates the transcript for sessionID under projectsDir,
// falling back to the most recently modified transcript of the project.
func FindSessionFile(projectsDir, sessionID, cwd string) string {
	root := FindGitRoot(cwd)
	if root == "" {
		root = cwd
	}
	dir := filepath.Join(projectsDir, EncodeProjectPath(root))

	if sessionID != "" && sessionID != "default" && strings.Contains(sessionID, "-") {
		p := filepath.Join(dir, sessionID+".jsonl")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var newest string
	var newestMod int64
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest, newestMod = filepath.Join(dir, e.Name()), mod
		}
	}
	return newest
}

package mbox

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// Converter writes maildirs out as mbox files. Progress goes to Progress.
type Converter struct {
	Progress io.Writer
}

func NewConverter(progress io.Writer) *Converter {
	if progress == nil {
		progress = io.Discard
	}
	return &Converter{Progress: progress}
}

// Convert writes every message in maildir's cur/ and new/ to outFile and
// returns how many were written.
func (c *Converter) Convert(maildir, outFile string) (int, error) {
	curDir, newDir := filepath.Join(maildir, "cur"), filepath.Join(maildir, "new")
	if !isDir(curDir) || !isDir(newDir) {
		return 0, fmt.Errorf("invalid maildir: %s - must contain both 'cur' and 'new' directories", maildir)
	}
	cur, err := listFiles(curDir)
	if err != nil {
		return 0, err
	}
	fresh, err := listFiles(newDir)
	if err != nil {
		return 0, err
	}
	files := append(cur, fresh...)
	fmt.Fprintf(c.Progress, "Starting up, found %d emails (%d in cur, %d in new)\n", len(files), len(cur), len(fresh))

	out, err := os.Create(outFile)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", outFile, err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	written, lastPercent := 0, 0
	for i, path := range files {
		if percent := (i + 1) * 100 / len(files); percent > lastPercent {
			lastPercent = percent
			fmt.Fprintf(c.Progress, "\rConverting: %d%% done", percent)
		}
		if err := writeMessage(w, path); err != nil {
			return written, err
		}
		written++
	}
	if err := w.Flush(); err != nil {
		return written, fmt.Errorf("write %s: %w", outFile, err)
	}
	fmt.Fprintln(c.Progress, "\nFinished.")
	return written, out.Close()
}

func writeMessage(w io.Writer, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if _, err := io.WriteString(w, Separator(ParseHeader(string(content)), info.ModTime())); err != nil {
		return err
	}
	if _, err := w.Write(content); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n\n")
	return err
}

// UserResult is the outcome for one user directory.
type UserResult struct {
	User     string
	Messages int
	Err      error
}

// ConvertUserDir converts each subdirectory of userDir to <outDir>/<name>.mbox.
// A failing user is logged and skipped.
func (c *Converter) ConvertUserDir(userDir, outDir string) ([]UserResult, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", outDir, err)
	}
	entries, err := os.ReadDir(userDir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", userDir, err)
	}
	var users []string
	for _, e := range entries {
		if e.IsDir() {
			users = append(users, e.Name())
		}
	}
	fmt.Fprintf(c.Progress, "Found %d user directories to process\n", len(users))

	results := make([]UserResult, 0, len(users))
	for _, user := range users {
		fmt.Fprintf(c.Progress, "\nProcessing user: %s\n", user)
		n, err := c.Convert(filepath.Join(userDir, user), filepath.Join(outDir, user+".mbox"))
		if err != nil {
			slog.Error("could not convert maildir", "user", user, "err", err)
		}
		results = append(results, UserResult{User: user, Messages: n, Err: err})
	}
	fmt.Fprintln(c.Progress, "\nAll user directories processed.")
	return results, nil
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// listFiles returns the regular files in dir, sorted by name.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

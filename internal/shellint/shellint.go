// Package shellint hands commands back to the invoking shell function,
// which sources the integration file after the binary exits.
package shellint

import (
	"fmt"
	"io"
	"os"
)

// Writer emits commands either to an integration file or, when no file was
// given, to out as a dry-run preview.
type Writer struct {
	Path string
	out  io.Writer
}

func New(path string, out io.Writer) *Writer {
	return &Writer{Path: path, out: out}
}

// Enabled reports whether an integration file was provided.
func (w *Writer) Enabled() bool { return w.Path != "" }

// Command appends one command line.
func (w *Writer) Command(cmd string) error {
	if !w.Enabled() {
		_, err := fmt.Fprintf(w.out, "Would run: %s\n", cmd)
		return err
	}
	f, err := os.OpenFile(w.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open shell integration script: %w", err)
	}
	defer f.Close()
	_, err = fmt.Fprintln(f, cmd)
	return err
}

// Script replaces the file with a whole script.
func (w *Writer) Script(content string) error {
	if !w.Enabled() {
		_, err := fmt.Fprintf(w.out, "Would run script:\n%s\n", content)
		return err
	}
	if err := os.WriteFile(w.Path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write shell integration script: %w", err)
	}
	return nil
}

// CD emits a quoted cd command.
func (w *Writer) CD(dir string) error {
	return w.Command(fmt.Sprintf("cd %q", dir))
}

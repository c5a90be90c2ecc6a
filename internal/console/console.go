// Package console prints the human-facing status lines shared by every tool.
package console

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)

var (
	mu      sync.Mutex
	out     io.Writer = os.Stdout
	errOut  io.Writer = os.Stderr
	verbose bool
)

// Setup installs the slog default handler and the verbosity used by Debug.
func Setup(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
	level := slog.LevelWarn
	if v {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// SetOutput redirects stdout/stderr output. Nil restores the process streams.
func SetOutput(stdout, stderr io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	out, errOut = stdout, stderr
}

func Verbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

func Out() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}

func writef(toStderr bool, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	w := out
	if toStderr {
		w = errOut
	}
	fmt.Fprintf(w, format, args...)
}

func Error(msg string, details ...any) {
	writef(true, "%s %s\n", errorStyle.Render("Error:"), msg)
	for _, d := range details {
		if d != nil {
			writef(true, "%s\n", mutedStyle.Render(fmt.Sprint(d)))
		}
	}
}

func Info(format string, args ...any) {
	writef(false, "%s %s\n", infoStyle.Render("→"), fmt.Sprintf(format, args...))
}

func Success(format string, args ...any) {
	writef(false, "%s %s\n", successStyle.Render("✓"), fmt.Sprintf(format, args...))
}

func Warn(format string, args ...any) {
	writef(false, "%s %s\n", warnStyle.Render("!"), fmt.Sprintf(format, args...))
}

func Debug(format string, args ...any) {
	if !Verbose() {
		return
	}
	writef(false, "%s %s\n", mutedStyle.Render("DEBUG:"), fmt.Sprintf(format, args...))
}

// Header prints a blank line followed by a bold section title.
func Header(title string) {
	writef(false, "\n%s\n", headerStyle.Render(title))
}

func Println(format string, args ...any) {
	writef(false, format+"\n", args...)
}

func Bold(s string) string  { return boldStyle.Render(s) }
func Muted(s string) string { return mutedStyle.Render(s) }
func Cyan(s string) string  { return cyanStyle.Render(s) }
func Green(s string) string { return successStyle.Render(s) }
func Yellow(s string) string {
	return warnStyle.Render(s)
}
func Red(s string) string { return errorStyle.Render(s) }

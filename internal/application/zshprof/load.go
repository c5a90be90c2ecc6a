package zshprof

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNoEntries means the input held no trace lines.
var ErrNoEntries = errors.New("no log entries found, make sure the file is a zsh xtrace log")

// Load parses path, or stdin when path is "" or "-".
func Load(path string, stdin io.Reader, requireCommand bool) ([]Entry, error) {
	r := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("error reading log file: %w", err)
		}
		defer f.Close()
		r = f
	}
	entries, err := Parse(r, requireCommand)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	return entries, nil
}

// Package manifest lists the workstation commands and finds executables
// installed next to them that nobody registered.
package manifest

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/workstation-tools/internal/console"
)

//go:embed manifest.toml
var embedded string

// Entry describes one command.
type Entry struct {
	Name        string `toml:"-" json:"name"`
	File        string `toml:"file" json:"file"`
	Description string `toml:"description" json:"description"`
}

// Manifest is the decoded manifest file.
type Manifest struct {
	Scripts  map[string]Entry `toml:"scripts"`
	Excluded []string         `toml:"excluded"`
}

// Default decodes the embedded manifest.
func Default() (*Manifest, error) {
	return Parse(embedded)
}

// Parse decodes a manifest from TOML text.
func Parse(data string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.Decode(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// Entries returns every script sorted by name.
func (m *Manifest) Entries() []Entry {
	out := make([]Entry, 0, len(m.Scripts))
	for name, e := range m.Scripts {
		e.Name = name
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Unlisted returns executables in dir that are neither a manifest entry nor excluded.
func (m *Manifest) Unlisted(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	known := map[string]bool{}
	for _, e := range m.Scripts {
		known[e.File] = true
	}
	for _, f := range m.Excluded {
		known[f] = true
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || known[e.Name()] || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil || info.Mode().Perm()&0o111 == 0 {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// WriteJSON prints the sorted entries as an indented JSON array.
func WriteJSON(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// WriteTable prints the entries as an aligned name/description list.
func WriteTable(w io.Writer, entries []Entry) {
	width := 0
	for _, e := range entries {
		width = max(width, len(e.Name))
	}
	fmt.Fprintf(w, "\n%s\n\n", console.Bold("Available scripts:"))
	for _, e := range entries {
		fmt.Fprintf(w, "  %s  %s\n", console.Cyan(fmt.Sprintf("%-*s", width, e.Name)), e.Description)
	}
	fmt.Fprintln(w)
}

// WriteUnlisted warns about executables missing from the manifest.
func WriteUnlisted(w io.Writer, files []string) {
	if len(files) == 0 {
		return
	}
	fmt.Fprintln(w, console.Yellow("Warning: The following executables are not in the manifest:"))
	for _, f := range files {
		fmt.Fprintln(w, console.Yellow("  - "+f))
	}
	fmt.Fprintf(w, "\n%s\n\n", console.Muted("Add them to manifest.toml or its excluded list if they should not be listed."))
}

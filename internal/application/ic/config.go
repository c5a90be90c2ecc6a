package ic

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
)

// Config is the ~/.icrc.json file: per-repo setup hooks plus commands to
// run when a marker file is detected in a fresh clone.
type Config struct {
	Hooks      map[string][]string `json:"hooks,omitempty"`
	AutoDetect map[string][]string `json:"autoDetect,omitempty"`
}

// detectOrder is the order marker files are checked in.
var detectOrder = []string{"package.json", "Gemfile", "requirements.txt", "go.mod"}

func DefaultAutoDetect() map[string][]string {
	return map[string][]string{
		"package.json":     {"npm install"},
		"Gemfile":          {"bundle install"},
		"requirements.txt": {"pip install -r requirements.txt"},
		"go.mod":           {"go mod download"},
	}
}

// ConfigPath is ~/.icrc.json.
func ConfigPath(home string) string {
	return filepath.Join(home, ".icrc.json")
}

// LoadConfig reads path. A missing or unparsable file yields the defaults;
// a file without autoDetect keeps its hooks and gets the default autoDetect.
func LoadConfig(path string) *Config {
	b, err := os.ReadFile(path)
	if err != nil {
		return &Config{AutoDetect: DefaultAutoDetect()}
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		slog.Warn("could not parse ic config", "path", path, "err", err)
		return &Config{AutoDetect: DefaultAutoDetect()}
	}
	if cfg.AutoDetect == nil {
		cfg.AutoDetect = DefaultAutoDetect()
	}
	return &cfg
}

// DetectRepoFiles lists the marker files present in dir: the well-known
// ones first in fixed order, then any other configured names sorted.
func DetectRepoFiles(dir string, cfg *Config) []string {
	candidates := append([]string{}, detectOrder...)
	if cfg != nil {
		var extra []string
		for name := range cfg.AutoDetect {
			if !slices.Contains(detectOrder, name) {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		candidates = append(candidates, extra...)
	}

	found := []string{}
	for _, name := range candidates {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			found = append(found, name)
		}
	}
	return found
}

// ResolveSetupHooks returns the hooks for repoKey if configured exactly,
// otherwise the autoDetect commands of every detected file in order.
func ResolveSetupHooks(cfg *Config, repoKey string, detected []string) []string {
	if cmds, ok := cfg.Hooks[repoKey]; ok {
		return cmds
	}
	cmds := []string{}
	for _, f := range detected {
		cmds = append(cmds, cfg.AutoDetect[f]...)
	}
	return cmds
}

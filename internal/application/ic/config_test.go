package ic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), ".icrc.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Equal(t, DefaultAutoDetect(), cfg.AutoDetect)
	assert.Empty(t, cfg.Hooks)
}

func TestLoadConfig_ParsesFile(t *testing.T) {
	cfg := LoadConfig(writeConfig(t, `{"hooks":{"user/repo":["custom command"]},"autoDetect":{"package.json":["yarn install"]}}`))
	assert.Equal(t, map[string][]string{"user/repo": {"custom command"}}, cfg.Hooks)
	assert.Equal(t, map[string][]string{"package.json": {"yarn install"}}, cfg.AutoDetect)
}

func TestLoadConfig_MissingAutoDetectMergesDefaults(t *testing.T) {
	cfg := LoadConfig(writeConfig(t, `{"hooks":{"user/repo":["custom command"]}}`))
	assert.Equal(t, map[string][]string{"user/repo": {"custom command"}}, cfg.Hooks)
	assert.Equal(t, DefaultAutoDetect(), cfg.AutoDetect)
}

func TestLoadConfig_InvalidJSONReturnsDefaults(t *testing.T) {
	cfg := LoadConfig(writeConfig(t, "invalid json{"))
	assert.Equal(t, DefaultAutoDetect(), cfg.AutoDetect)
}

func TestResolveSetupHooks(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *Config
		key      string
		detected []string
		want     []string
	}{
		{
			name:     "exact match wins",
			cfg:      &Config{Hooks: map[string][]string{"user/repo": {"npm install", "npm run build"}}, AutoDetect: map[string][]string{"package.json": {"npm install"}}},
			key:      "user/repo",
			detected: []string{"package.json"},
			want:     []string{"npm install", "npm run build"},
		},
		{
			name:     "autoDetect when no exact match",
			cfg:      &Config{Hooks: map[string][]string{"different/repo": {"something"}}, AutoDetect: map[string][]string{"package.json": {"npm install"}, "Gemfile": {"bundle install"}}},
			key:      "user/repo",
			detected: []string{"package.json"},
			want:     []string{"npm install"},
		},
		{
			name:     "combines multiple detected files",
			cfg:      &Config{AutoDetect: DefaultAutoDetect()},
			key:      "user/repo",
			detected: []string{"package.json", "Gemfile"},
			want:     []string{"npm install", "bundle install"},
		},
		{
			name:     "no match",
			cfg:      &Config{AutoDetect: map[string][]string{"package.json": {"npm install"}}},
			key:      "user/repo",
			detected: []string{"unknown.file"},
			want:     []string{},
		},
		{
			name:     "missing autoDetect",
			cfg:      &Config{Hooks: map[string][]string{"user/repo": {"npm install"}}},
			key:      "other/repo",
			detected: []string{"package.json"},
			want:     []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveSetupHooks(tt.cfg, tt.key, tt.detected))
		})
	}
}

func TestDetectRepoFiles(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, []string{}, DetectRepoFiles(dir, nil))

	for _, f := range []string{"go.mod", "Gemfile", "package.json", "Makefile"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0o644))
	}
	assert.Equal(t, []string{"package.json", "Gemfile", "go.mod"}, DetectRepoFiles(dir, &Config{AutoDetect: DefaultAutoDetect()}))

	cfg := &Config{AutoDetect: map[string][]string{"Makefile": {"make setup"}}}
	assert.Equal(t, []string{"package.json", "Gemfile", "go.mod", "Makefile"}, DetectRepoFiles(dir, cfg))
}

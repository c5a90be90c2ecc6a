package ic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReposDir_Default(t *testing.T) {
	home := t.TempDir()
	assert.Equal(t, filepath.Join(home, "repos"), ReposDir(home))
}

func TestReposDir_CdrpOverride(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".config", "cdrp_dir"), []byte("~/src\n"), 0o644))
	assert.Equal(t, filepath.Join(home, "src"), ReposDir(home))
}

func TestDetectWorkspace(t *testing.T) {
	repos := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(repos, "myFeature", "ava", "src", "components"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(repos, "standalone-repo", ".git"), 0o755))

	tests := []struct {
		name string
		path string
		want string
	}{
		{"nested path", filepath.Join(repos, "myFeature", "ava"), "myFeature"},
		{"deeply nested", filepath.Join(repos, "myFeature", "ava", "src", "components"), "myFeature"},
		{"workspace root without .git", filepath.Join(repos, "myFeature"), "myFeature"},
		{"standalone repo", filepath.Join(repos, "standalone-repo"), ""},
		{"outside repos dir", "/Users/test/other/path", ""},
		{"repos dir itself", repos, ""},
		{"sibling with shared prefix", repos + "-other/x/y", ""},
		{"missing root", filepath.Join(repos, "ghost"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectWorkspace(tt.path, repos))
		})
	}
}

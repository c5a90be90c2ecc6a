package ic

import (
	"os"
	"path/filepath"
	"strings"
)

// ReposDir is ~/repos unless ~/.config/cdrp_dir names another directory.
func ReposDir(home string) string {
	if b, err := os.ReadFile(filepath.Join(home, ".config", "cdrp_dir")); err == nil {
		if dir := strings.TrimSpace(string(b)); dir != "" {
			return expandTilde(dir, home)
		}
	}
	return filepath.Join(home, "repos")
}

func expandTilde(p, home string) string {
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}

// relUnder returns the path of p relative to base, or false if p is not
// strictly inside base.
func relUnder(base, p string) (string, bool) {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(p))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// DetectWorkspace returns the workspace name for path: the first directory
// under reposDir, when path is nested inside it, or when path is that
// directory itself and it is not a git checkout. Standalone repos, paths
// outside reposDir and reposDir itself yield "".
func DetectWorkspace(path, reposDir string) string {
	rel, ok := relUnder(reposDir, path)
	if !ok {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) >= 2 {
		return parts[0]
	}
	root := filepath.Join(reposDir, parts[0])
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		return ""
	}
	if _, err := os.Stat(filepath.Join(root, ".git")); err == nil {
		return ""
	}
	return parts[0]
}

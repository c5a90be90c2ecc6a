package ic

import (
	"regexp"
	"strings"
)

// DefaultUser owns repos given without a user.
const DefaultUser = "instacart"

// RepoInfo identifies a GitHub repository.
type RepoInfo struct {
	User string
	Repo string
}

// Key is the "user/repo" identifier used for hook lookup.
func (r RepoInfo) Key() string { return r.User + "/" + r.Repo }

// SSHURL is the clone URL.
func (r RepoInfo) SSHURL() string { return "git@github.com:" + r.User + "/" + r.Repo + ".git" }

const namePart = `[A-Za-z0-9_.-]+`

var (
	httpsRe    = regexp.MustCompile(`^https?://github\.com/(` + namePart + `)/(` + namePart + `?)(?:\.git)?/?$`)
	sshRe      = regexp.MustCompile(`^git@github\.com:(` + namePart + `)/(` + namePart + `?)(?:\.git)?$`)
	userRepoRe = regexp.MustCompile(`^(` + namePart + `)/(` + namePart + `)$`)
	repoOnlyRe = regexp.MustCompile(`^` + namePart + `$`)
)

// ParseGitHubInput accepts https/http GitHub URLs, git@github.com SSH URLs,
// "user/repo", or a bare "repo" (owned by DefaultUser).
func ParseGitHubInput(input string) (RepoInfo, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return RepoInfo{}, false
	}
	for _, re := range []*regexp.Regexp{httpsRe, sshRe} {
		if m := re.FindStringSubmatch(s); m != nil {
			return repoInfo(m[1], m[2])
		}
	}
	if strings.Contains(s, "://") || strings.Contains(s, ":") {
		return RepoInfo{}, false
	}
	if m := userRepoRe.FindStringSubmatch(s); m != nil {
		return repoInfo(m[1], m[2])
	}
	if repoOnlyRe.MatchString(s) {
		return repoInfo(DefaultUser, s)
	}
	return RepoInfo{}, false
}

// repoInfo trims ".git" from repo. Names that are empty, "." or ".." would
// resolve outside the repos dir and are rejected.
func repoInfo(user, repo string) (RepoInfo, bool) {
	repo = strings.TrimSuffix(repo, ".git")
	for _, n := range []string{user, repo} {
		if n == "" || n == "." || n == ".." {
			return RepoInfo{}, false
		}
	}
	return RepoInfo{User: user, Repo: repo}, true
}

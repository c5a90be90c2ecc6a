package gitclean

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/domain"
	"github.com/workstation-tools/internal/execx"
	"github.com/workstation-tools/internal/prompt"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, runner *execx.Fake, stdin string) Service {
	t.Helper()
	console.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})
	t.Cleanup(func() { console.SetOutput(nil, nil) })
	return NewService(ServiceDeps{
		Runner:   runner,
		Prompter: prompt.New(strings.NewReader(stdin), &bytes.Buffer{}),
		Now:      func() time.Time { return testNow },
	})
}

func cleanupRunner() *execx.Fake {
	return execx.NewFake().
		On("git symbolic-ref refs/remotes/origin/HEAD", "refs/remotes/origin/main").
		Fail("git remote get-url team").
		On("git branch --show-current", "feature-x").
		On("git branch --merged main --format=%(refname:short)", "main\nold-merged\nboth").
		On("git for-each-ref --format=%(refname:short) %(upstream:track) refs/heads/",
			"old-merged \nboth [gone]\nsquashed [gone]\nactive [ahead 1]").
		On("git rev-parse old-merged", "aaa").
		On("git rev-parse origin/old-merged", "aaa").
		On("git rev-parse both", "bbb").
		Fail("git rev-parse origin/both").
		On("git rev-parse squashed", "ccc").
		On("git rev-parse origin/squashed", "ddd")
}

func cleanupOpts() CleanupOptions {
	return CleanupOptions{Options: Options{Remote: "origin", Force: true}, IncludeGone: true}
}

func TestCleanup_DeletesMergedAndGone(t *testing.T) {
	runner := cleanupRunner()
	svc := newTestService(t, runner, "")

	require.NoError(t, svc.Cleanup(context.Background(), cleanupOpts()))

	assert.True(t, runner.Ran("git checkout main"))
	assert.True(t, runner.Ran("git fetch origin"))
	assert.True(t, runner.Ran("git branch -d old-merged"))
	assert.True(t, runner.Ran("git push origin --delete old-merged"))
	assert.True(t, runner.Ran("git branch -D both"))
	assert.True(t, runner.Ran("git branch -D squashed"))
	assert.False(t, runner.Ran("git push origin --delete squashed"), "out of sync remote is kept")
	assert.False(t, runner.Ran("git push origin --delete both"), "missing remote is not pushed")
	assert.False(t, runner.RanPrefix("git branch -d active"))
	assert.True(t, runner.Ran("git remote prune origin"))
	assert.False(t, runner.Ran("git remote prune team"))

	lines := runner.CallLines()
	assert.Equal(t, "git checkout feature-x", lines[len(lines)-1])
}

func TestCleanup_DisablesOvercommit(t *testing.T) {
	runner := cleanupRunner()
	svc := newTestService(t, runner, "")
	require.NoError(t, svc.Cleanup(context.Background(), cleanupOpts()))

	for _, c := range runner.Calls {
		assert.Contains(t, c.Env, "OVERCOMMIT_DISABLE=1", c.String())
	}
}

func TestCleanup_NoDeleteRemote(t *testing.T) {
	runner := cleanupRunner()
	svc := newTestService(t, runner, "")
	opts := cleanupOpts()
	opts.NoDeleteRemote = true

	require.NoError(t, svc.Cleanup(context.Background(), opts))
	assert.False(t, runner.RanPrefix("git push"))
}

func TestCleanup_ExcludeGone(t *testing.T) {
	runner := cleanupRunner()
	svc := newTestService(t, runner, "")
	opts := cleanupOpts()
	opts.IncludeGone = false

	require.NoError(t, svc.Cleanup(context.Background(), opts))
	assert.True(t, runner.Ran("git branch -d both"))
	assert.False(t, runner.Ran("git branch -D squashed"))
}

func TestCleanup_DryRunChangesNothing(t *testing.T) {
	runner := cleanupRunner().Fail("git diff --quiet HEAD")
	svc := newTestService(t, runner, "")
	opts := cleanupOpts()
	opts.DryRun = true
	opts.Force = false

	require.NoError(t, svc.Cleanup(context.Background(), opts))
	for _, prefix := range []string{"git checkout", "git fetch", "git branch -d", "git branch -D", "git push", "git remote prune", "git stash"} {
		assert.False(t, runner.RanPrefix(prefix), prefix)
	}
}

func TestCleanup_DeclinedConfirmation(t *testing.T) {
	runner := cleanupRunner()
	svc := newTestService(t, runner, "n\n")
	opts := cleanupOpts()
	opts.Force = false

	require.NoError(t, svc.Cleanup(context.Background(), opts))
	assert.False(t, runner.RanPrefix("git branch -d"))
	assert.False(t, runner.RanPrefix("git branch -D"))
}

func TestCleanup_StashesDirtyTree(t *testing.T) {
	runner := cleanupRunner().Fail("git diff --quiet HEAD")
	svc := newTestService(t, runner, "")

	require.NoError(t, svc.Cleanup(context.Background(), cleanupOpts()))
	assert.True(t, runner.Ran("git stash push -m git-cleanup auto-stash"))
	lines := runner.CallLines()
	assert.Equal(t, "git stash pop", lines[len(lines)-1])
}

func TestCleanup_MissingRemote(t *testing.T) {
	runner := cleanupRunner().Fail("git remote get-url origin")
	svc := newTestService(t, runner, "")

	err := svc.Cleanup(context.Background(), cleanupOpts())
	assert.ErrorIs(t, err, domain.ErrPrecondition)
}

func TestCleanup_TeamRemote(t *testing.T) {
	runner := cleanupRunner()
	delete(runner.Errors, "git remote get-url team")
	svc := newTestService(t, runner, "")

	require.NoError(t, svc.Cleanup(context.Background(), cleanupOpts()))
	assert.True(t, runner.Ran("git remote prune team"))
	assert.True(t, runner.Ran("git fetch team"))
}

func TestDefaultBranch_Fallbacks(t *testing.T) {
	t.Run("init.defaultBranch", func(t *testing.T) {
		runner := execx.NewFake().
			Fail("git symbolic-ref refs/remotes/origin/HEAD").
			On("git config --get init.defaultBranch", "trunk")
		assert.Equal(t, "trunk", newRepo(runner, "", "origin", false).defaultBranch(context.Background()))
	})
	t.Run("main exists", func(t *testing.T) {
		runner := execx.NewFake().
			Fail("git symbolic-ref refs/remotes/origin/HEAD").
			On("git branch --list main master", "  main")
		assert.Equal(t, "main", newRepo(runner, "", "origin", false).defaultBranch(context.Background()))
	})
	t.Run("master", func(t *testing.T) {
		runner := execx.NewFake().Fail("git symbolic-ref refs/remotes/origin/HEAD")
		assert.Equal(t, "master", newRepo(runner, "", "origin", false).defaultBranch(context.Background()))
	})
}

func logLine(daysAgo int, msg string) string {
	ts := testNow.AddDate(0, 0, -daysAgo).Unix()
	return "sha-" + msg + "\n" + strconv.FormatInt(ts, 10) + "\n" + msg + "\nAnn"
}

func pruneRunner() *execx.Fake {
	return execx.NewFake().
		On("git symbolic-ref refs/remotes/origin/HEAD", "refs/remotes/origin/main").
		On("git branch --show-current", "feature-x").
		On("git for-each-ref --format=%(refname:short) refs/heads/", "main\nfeature-x\nstale\nancient\nfresh").
		On("git log -1 --format=%H%n%at%n%s%n%an stale", logLine(45, "stale")).
		On("git log -1 --format=%H%n%at%n%s%n%an ancient", logLine(400, "ancient")).
		On("git log -1 --format=%H%n%at%n%s%n%an fresh", logLine(2, "fresh")).
		On("git rev-parse origin/stale", "sha-stale").
		Fail("git rev-parse origin/ancient")
}

func TestPrune_DeletesOldBranchesOldestFirst(t *testing.T) {
	runner := pruneRunner()
	svc := newTestService(t, runner, "")

	err := svc.Prune(context.Background(), PruneOptions{Options: Options{Remote: "origin", Force: true}, Days: 30})
	require.NoError(t, err)

	assert.True(t, runner.Ran("git fetch origin --prune"))
	var deletes []string
	for _, l := range runner.CallLines() {
		if strings.HasPrefix(l, "git branch -D") || strings.HasPrefix(l, "git push") {
			deletes = append(deletes, l)
		}
	}
	assert.Equal(t, []string{
		"git branch -D ancient",
		"git branch -D stale",
		"git push origin --delete stale",
	}, deletes)
	assert.False(t, runner.RanPrefix("git log -1 --format=%H%n%at%n%s%n%an feature-x"))

	lines := runner.CallLines()
	assert.Equal(t, "git checkout feature-x", lines[len(lines)-1])
}

func TestPrune_NothingOldEnough(t *testing.T) {
	runner := pruneRunner()
	svc := newTestService(t, runner, "")

	err := svc.Prune(context.Background(), PruneOptions{Options: Options{Remote: "origin", Force: true}, Days: 1000})
	require.NoError(t, err)
	assert.False(t, runner.RanPrefix("git branch -D"))
}

func TestPrune_DetachedHeadOnlyChecksOutMain(t *testing.T) {
	runner := pruneRunner().On("git branch --show-current", "")
	runner.On("git symbolic-ref --short -q HEAD", "")
	svc := newTestService(t, runner, "y\n")

	err := svc.Prune(context.Background(), PruneOptions{Options: Options{Remote: "origin"}, Days: 30})
	require.NoError(t, err)
	assert.True(t, runner.Ran("git branch -D ancient"))
	assert.Equal(t, 1, strings.Count(strings.Join(runner.CallLines(), "\n"), "git checkout"))
}

package worktree

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/domain"
	"github.com/workstation-tools/internal/execx"
)

func newTestService(t *testing.T, runner *execx.Fake, cwd string, fzf bool) (Service, string) {
	t.Helper()
	console.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})
	t.Cleanup(func() { console.SetOutput(nil, nil) })
	home := t.TempDir()
	return NewService(ServiceDeps{
		Runner:   runner,
		Home:     home,
		Getwd:    func() (string, error) { return cwd, nil },
		LookPath: func(string) bool { return fzf },
	}), home
}

func TestClone_BareLayout(t *testing.T) {
	runner := execx.NewFake()
	svc, home := newTestService(t, runner, "/", false)

	dir, err := svc.Clone(context.Background(), "user/app")
	require.NoError(t, err)

	repo := filepath.Join(home, "repos", "app")
	assert.Equal(t, filepath.Join(repo, "master"), dir)
	assert.Equal(t, []string{
		"git clone --bare git@github.com:user/app.git " + filepath.Join(repo, "bare"),
		"git config remote.origin.fetch " + fetchRefspec,
		"git fetch origin",
		"git worktree add ../master master",
	}, runner.CallLines())
}

func TestClone_FallsBackToMainAndSuffix(t *testing.T) {
	runner := execx.NewFake().Fail("git worktree add ../master master")
	svc, home := newTestService(t, runner, "/", false)
	require.NoError(t, os.MkdirAll(filepath.Join(home, "repos", "app"), 0o755))

	dir, err := svc.Clone(context.Background(), "app")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "repos", "app-wt", "master"), dir)
	assert.True(t, runner.Ran("git worktree add ../master main"))
}

func TestClone_NoDefaultBranch(t *testing.T) {
	runner := execx.NewFake().
		Fail("git worktree add ../master master").
		Fail("git worktree add ../master main")
	svc, _ := newTestService(t, runner, "/", false)

	_, err := svc.Clone(context.Background(), "user/app")
	assert.Error(t, err)
}

func TestCreateBranch_NewBranchUnderBareParent(t *testing.T) {
	root := t.TempDir()
	runner := execx.NewFake().
		On("git rev-parse --git-common-dir", filepath.Join(root, "bare")).
		On("git branch --show-current", "master").
		Fail("git rev-parse --verify --quiet feature")
	svc, _ := newTestService(t, runner, filepath.Join(root, "master"), false)

	dir, err := svc.CreateBranch(context.Background(), "feature", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "feature"), dir)
	assert.True(t, runner.Ran("git worktree add -b feature "+dir+" master"))
}

func TestCreateBranch_ExistingBranch(t *testing.T) {
	root := t.TempDir()
	runner := execx.NewFake().
		On("git rev-parse --git-common-dir", ".git").
		On("git rev-parse --show-toplevel", filepath.Join(root, "app"))
	svc, _ := newTestService(t, runner, filepath.Join(root, "app"), false)

	dir, err := svc.CreateBranch(context.Background(), "feature", "main")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "feature"), dir)
	assert.True(t, runner.Ran("git worktree add "+dir+" feature"))
}

func TestCreateBranch_ExistingDirSwitches(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "feature"), 0o755))
	runner := execx.NewFake().On("git rev-parse --git-common-dir", filepath.Join(root, "bare"))
	svc, _ := newTestService(t, runner, root, false)

	dir, err := svc.CreateBranch(context.Background(), "feature", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "feature"), dir)
	assert.False(t, runner.RanPrefix("git worktree add"))
}

func TestCreateBranch_NotARepo(t *testing.T) {
	runner := execx.NewFake().Fail("git rev-parse --git-common-dir")
	svc, _ := newTestService(t, runner, "/", false)

	_, err := svc.CreateBranch(context.Background(), "feature", "")
	assert.ErrorIs(t, err, domain.ErrPrecondition)
}

func TestRemove(t *testing.T) {
	list := "worktree /r/bare\nbare\n\nworktree /r/master\nbranch refs/heads/master\n\nworktree /r/feature\nbranch refs/heads/feature\n"

	t.Run("by branch name", func(t *testing.T) {
		runner := execx.NewFake().
			On("git worktree list --porcelain", list).
			On("git rev-parse --show-toplevel", "/r/master")
		svc, _ := newTestService(t, runner, "/r/master", false)

		require.NoError(t, svc.Remove(context.Background(), "feature", false))
		assert.True(t, runner.Ran("git worktree remove /r/feature"))
	})

	t.Run("refuses current", func(t *testing.T) {
		runner := execx.NewFake().
			On("git worktree list --porcelain", list).
			On("git rev-parse --show-toplevel", "/r/feature")
		svc, _ := newTestService(t, runner, "/r/feature", false)

		err := svc.Remove(context.Background(), "feature", true)
		assert.ErrorIs(t, err, domain.ErrPrecondition)
		assert.False(t, runner.RanPrefix("git worktree remove"))
	})

	t.Run("uncommitted changes", func(t *testing.T) {
		runner := execx.NewFake().
			On("git worktree list --porcelain", list).
			On("git rev-parse --show-toplevel", "/r/master").
			Fail("git diff-index --quiet HEAD --")
		svc, _ := newTestService(t, runner, "/r/master", false)

		err := svc.Remove(context.Background(), "/r/feature", false)
		assert.ErrorIs(t, err, domain.ErrPrecondition)
	})

	t.Run("untracked files", func(t *testing.T) {
		runner := execx.NewFake().
			On("git worktree list --porcelain", list).
			On("git rev-parse --show-toplevel", "/r/master").
			On("git ls-files --others --exclude-standard", "scratch.txt")
		svc, _ := newTestService(t, runner, "/r/master", false)

		err := svc.Remove(context.Background(), "feature", false)
		assert.ErrorIs(t, err, domain.ErrPrecondition)
	})

	t.Run("force skips checks", func(t *testing.T) {
		runner := execx.NewFake().
			On("git worktree list --porcelain", list).
			On("git rev-parse --show-toplevel", "/r/master").
			Fail("git diff-index --quiet HEAD --")
		svc, _ := newTestService(t, runner, "/r/master", false)

		require.NoError(t, svc.Remove(context.Background(), "feature", true))
		assert.True(t, runner.Ran("git worktree remove --force /r/feature"))
	})

	t.Run("unknown", func(t *testing.T) {
		runner := execx.NewFake().On("git worktree list --porcelain", list)
		svc, _ := newTestService(t, runner, "/r/master", false)

		assert.ErrorIs(t, svc.Remove(context.Background(), "nope", false), domain.ErrNotFound)
	})
}

func TestPick(t *testing.T) {
	t.Run("requires fzf", func(t *testing.T) {
		svc, _ := newTestService(t, execx.NewFake(), "/", false)
		_, err := svc.Pick(context.Background())
		assert.ErrorIs(t, err, domain.ErrPrecondition)
	})

	t.Run("returns selected path", func(t *testing.T) {
		runner := execx.NewFake().On("git worktree list --porcelain", "worktree /r/master\nbranch refs/heads/master\n")
		runner.Responses["fzf --header=Select worktree to switch to --preview="+previewScript] = execx.Result{Stdout: "master  /r/master"}
		svc, _ := newTestService(t, runner, "/r/master", true)

		path, err := svc.Pick(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "/r/master", path)
	})

	t.Run("cancelled", func(t *testing.T) {
		runner := execx.NewFake().
			On("git worktree list --porcelain", "worktree /r/master\nbranch refs/heads/master\n").
			Fail("fzf --header=Select worktree to switch to --preview=" + previewScript)
		svc, _ := newTestService(t, runner, "/r/master", true)

		path, err := svc.Pick(context.Background())
		require.NoError(t, err)
		assert.Empty(t, path)
	})
}

package ic

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workstation-tools/internal/domain"
	"github.com/workstation-tools/internal/execx"
	"github.com/workstation-tools/internal/prompt"
	"github.com/workstation-tools/internal/shellint"
)

type fixture struct {
	home   string
	script string
	runner *execx.Fake
	svc    Service
}

func newFixture(t *testing.T, stdin string, env map[string]string) *fixture {
	t.Helper()
	home := t.TempDir()
	f := &fixture{
		home:   home,
		script: filepath.Join(t.TempDir(), "integration.sh"),
		runner: execx.NewFake(),
	}
	f.svc = NewService(ServiceDeps{
		Runner:   f.runner,
		Shell:    shellint.New(f.script, &bytes.Buffer{}),
		Prompter: prompt.New(strings.NewReader(stdin), &bytes.Buffer{}),
		Home:     home,
		Getenv:   func(k string) string { return env[k] },
		Getwd:    func() (string, error) { return "/tmp/scratch", nil },
	})
	return f
}

func (f *fixture) scriptBody(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile(f.script)
	require.NoError(t, err)
	return string(b)
}

func TestClone_RunsGitAndEmitsCD(t *testing.T) {
	f := newFixture(t, "", nil)
	dir, err := f.svc.Clone(context.Background(), "user/repo")
	require.NoError(t, err)

	want := filepath.Join(f.home, "repos", "repo")
	assert.Equal(t, want, dir)
	assert.True(t, f.runner.Ran("git clone git@github.com:user/repo.git "+want))
	assert.Equal(t, "cd \""+want+"\"\n", f.scriptBody(t))
}

func TestClone_CollisionUsesSuffix(t *testing.T) {
	f := newFixture(t, "v2\n", nil)
	require.NoError(t, os.MkdirAll(filepath.Join(f.home, "repos", "repo"), 0o755))

	dir, err := f.svc.Clone(context.Background(), "repo")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.home, "repos", "repo-v2"), dir)
	assert.True(t, f.runner.RanPrefix("git clone git@github.com:instacart/repo.git"))
}

func TestClone_SecondCollisionAborts(t *testing.T) {
	f := newFixture(t, "v2\n", nil)
	require.NoError(t, os.MkdirAll(filepath.Join(f.home, "repos", "repo"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(f.home, "repos", "repo-v2"), 0o755))

	_, err := f.svc.Clone(context.Background(), "repo")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.False(t, f.runner.RanPrefix("git clone"))
}

func TestClone_InvalidInput(t *testing.T) {
	f := newFixture(t, "", nil)
	_, err := f.svc.Clone(context.Background(), "foo:bar")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestClone_HookFailureContinues(t *testing.T) {
	f := newFixture(t, "", nil)
	require.NoError(t, os.WriteFile(ConfigPath(f.home), []byte(`{"hooks":{"user/repo":["false","echo ok"]}}`), 0o644))
	f.runner.Fail("sh -c false")

	_, err := f.svc.Clone(context.Background(), "user/repo")
	require.NoError(t, err)
	assert.True(t, f.runner.Ran("sh -c false"))
	assert.True(t, f.runner.Ran("sh -c echo ok"))
}

func TestAttach_RequiresTmux(t *testing.T) {
	f := newFixture(t, "", nil)
	err := f.svc.Attach(context.Background(), AttachOptions{})
	assert.ErrorIs(t, err, domain.ErrPrecondition)
}

func TestAttach_RefusesWhenNested(t *testing.T) {
	f := newFixture(t, "", map[string]string{"TMUX": "/tmp/tmux-1/default,1,0"})
	f.runner.On("tmux display-message -p #{session_name}|#{pane_title}|#{window_name}", "main|host|ic: app")

	err := f.svc.Attach(context.Background(), AttachOptions{})
	assert.ErrorIs(t, err, domain.ErrPrecondition)
	assert.ErrorContains(t, err, "nested")
}

func TestAttach_CreatesSession(t *testing.T) {
	f := newFixture(t, "", map[string]string{"TMUX": "x"})
	root := filepath.Join(f.home, "repos", "app")
	f.runner.On("tmux display-message -p #{session_name}|#{pane_title}|#{window_name}", "main|host|zsh")
	f.runner.On("git rev-parse --show-toplevel", root)
	f.runner.Fail("tmux has-session -t ic_app")

	require.NoError(t, f.svc.Attach(context.Background(), AttachOptions{}))
	assert.Equal(t, CreateScript("app", "ic_app", root), f.scriptBody(t))
	assert.Contains(t, f.scriptBody(t), `tmux new-session -d -s "ic_app" -c "`+root+`"`)
	assert.Contains(t, f.scriptBody(t), `printf '\033kic: app\033\\'`)
}

func TestAttach_AttachedSessionNeedsForce(t *testing.T) {
	f := newFixture(t, "", map[string]string{"TMUX": "x"})
	f.runner.On("git rev-parse --show-toplevel", filepath.Join(f.home, "repos", "app"))
	f.runner.On("tmux list-clients -t ic_app", "/dev/ttys001: ic_app")

	err := f.svc.Attach(context.Background(), AttachOptions{})
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, f.svc.Attach(context.Background(), AttachOptions{Force: true}))
	assert.True(t, f.runner.Ran("tmux detach-client -s ic_app -a"))
	assert.Equal(t, AttachScript("app", "ic_app"), f.scriptBody(t))
}

func TestAttach_OutsideReposDir(t *testing.T) {
	f := newFixture(t, "", map[string]string{"TMUX": "x"})
	f.runner.On("git rev-parse --show-toplevel", "/opt/elsewhere")
	err := f.svc.Attach(context.Background(), AttachOptions{})
	assert.ErrorIs(t, err, domain.ErrPrecondition)
}

func TestAttach_CWDSkipsReposCheck(t *testing.T) {
	f := newFixture(t, "", map[string]string{"TMUX": "x"})
	f.runner.Fail("tmux has-session -t ic_scratch")
	require.NoError(t, f.svc.Attach(context.Background(), AttachOptions{CWD: true}))
	assert.Contains(t, f.scriptBody(t), `-c "/tmp/scratch"`)
}

func TestIsNested(t *testing.T) {
	tests := []struct {
		info string
		want bool
	}{
		{"s|host|zsh", false},
		{"s|host|nt: api", true},
		{"s|ic: api|zsh", true},
		{"s|Nested TMUX|zsh", true},
		{"garbage", false},
	}
	for _, tt := range tests {
		got, _ := isNested(tt.info)
		assert.Equal(t, tt.want, got, tt.info)
	}
}

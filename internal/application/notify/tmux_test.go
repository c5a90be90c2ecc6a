package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/workstation-tools/internal/execx"
)

const (
	activeCmd = "tmux display-message -p #{window_active}"
	outerCmd  = "tmux -L default display-message -p #W"
	showEnv   = "tmux show-environment -g OUTER_TMUX_WINDOW"
)

func TestWindowActive_NotInTmux(t *testing.T) {
	f := execx.NewFake()
	assert.False(t, WindowActive(context.Background(), f, env(nil)))
	assert.Empty(t, f.Calls)
}

func TestWindowActive_Plain(t *testing.T) {
	e := env(map[string]string{"TMUX": "/tmp/tmux-502/default,1,0"})
	assert.True(t, WindowActive(context.Background(), execx.NewFake().On(activeCmd, "1"), e))
	assert.False(t, WindowActive(context.Background(), execx.NewFake().On(activeCmd, "0"), e))
	assert.False(t, WindowActive(context.Background(), execx.NewFake().Fail(activeCmd), e))
}

func TestWindowActive_NestedUsesEnvWindow(t *testing.T) {
	e := env(map[string]string{"TMUX": "/tmp/tmux-502/nested,1,0", "OUTER_TMUX_WINDOW": "ic: tools"})

	f := execx.NewFake().On(activeCmd, "1").On(outerCmd, "ic: tools")
	assert.True(t, WindowActive(context.Background(), f, e))
	assert.False(t, f.Ran(showEnv))

	f = execx.NewFake().On(activeCmd, "1").On(outerCmd, "ic: other")
	assert.False(t, WindowActive(context.Background(), f, e))
}

func TestWindowActive_NestedReadsGlobalEnv(t *testing.T) {
	e := env(map[string]string{"TMUX": "/tmp/tmux-502/nested,1,0"})

	f := execx.NewFake().On(activeCmd, "1").On(showEnv, "OUTER_TMUX_WINDOW=ic: tools").On(outerCmd, "ic: tools")
	assert.True(t, WindowActive(context.Background(), f, e))

	f = execx.NewFake().On(activeCmd, "1").On(showEnv, "-OUTER_TMUX_WINDOW")
	assert.False(t, WindowActive(context.Background(), f, e))
	assert.False(t, f.Ran(outerCmd))
}

func TestWindowActive_NestedInactive(t *testing.T) {
	e := env(map[string]string{"TMUX": "/tmp/tmux-502/nested,1,0", "OUTER_TMUX_WINDOW": "w"})
	f := execx.NewFake().On(activeCmd, "0")
	assert.False(t, WindowActive(context.Background(), f, e))
	assert.False(t, f.Ran(outerCmd))
}

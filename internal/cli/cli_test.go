package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/workstation-tools/internal/console"
)

func TestReportError_PlainError(t *testing.T) {
	var e bytes.Buffer
	console.SetOutput(nil, &e)
	t.Cleanup(func() { console.SetOutput(nil, nil) })

	assert.Equal(t, 1, ReportError(errors.New("nope")))
	assert.Contains(t, e.String(), "nope")
}

func TestReportError_ExitErrorSilent(t *testing.T) {
	var e bytes.Buffer
	console.SetOutput(nil, &e)
	t.Cleanup(func() { console.SetOutput(nil, nil) })

	assert.Equal(t, 2, ReportError(&ExitError{Code: 2}))
	assert.Empty(t, e.String())
}

func TestInitConfig_EnvPrefix(t *testing.T) {
	t.Setenv("CLAUDE_NOTIFY_OPENAI_MODEL", "gpt-x")
	v := viper.New()
	InitConfig(v, "claude-notify")
	assert.Equal(t, "gpt-x", v.GetString("openai-model"))
}

func TestBindFlags_FlagOverridesEnv(t *testing.T) {
	t.Setenv("DOWNLOADER_DIR", "/from/env")
	v := viper.New()
	InitConfig(v, "downloader")

	fs := pflag.NewFlagSet("t", pflag.ContinueOnError)
	fs.String("dir", "/default", "")
	BindFlags(v, fs)
	assert.Equal(t, "/from/env", v.GetString("dir"))

	assert.NoError(t, fs.Parse([]string{"--dir", "/from/flag"}))
	assert.Equal(t, "/from/flag", v.GetString("dir"))
}

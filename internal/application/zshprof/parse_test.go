package zshprof

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `+1700000000.000000 /home/u/.zshrc:1> source ~/.zsh/plugins.zsh
+1700000000.005000 /home/u/.zsh/plugins.zsh:3> compinit
+1700000000.155000 /home/u/.zsh/plugins.zsh:9> autoload -U colors
not a trace line
+1700000000.160000 /home/u/.zshrc:2>
+1700000000.200000 /home/u/.zshrc:3> eval "$(starship init zsh)"
+1700000000.250000 /home/u/.zshrc:4> true
`

func TestParse(t *testing.T) {
	entries, err := Parse(strings.NewReader(sample), true)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, Entry{Timestamp: 1700000000.005, Location: "/home/u/.zsh/plugins.zsh:3", Command: "compinit"}, entries[1])
	assert.Equal(t, "/home/u/.zsh/plugins.zsh", entries[1].File())

	loose, err := Parse(strings.NewReader(sample), false)
	require.NoError(t, err)
	assert.Len(t, loose, 6)
	assert.Equal(t, "", loose[3].Command)
}

func TestDurations_LastIsZero(t *testing.T) {
	timed := Durations([]Entry{{Timestamp: 1.0}, {Timestamp: 1.25}, {Timestamp: 1.3}})
	assert.InDelta(t, 250, timed[0].DurationMS, 1e-6)
	assert.InDelta(t, 50, timed[1].DurationMS, 1e-6)
	assert.Zero(t, timed[2].DurationMS)
}

func TestSlowest(t *testing.T) {
	entries, err := Parse(strings.NewReader(sample), true)
	require.NoError(t, err)

	got := Slowest(Durations(entries), 10, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "compinit", got[0].Command)
	assert.InDelta(t, 150, got[0].DurationMS, 1e-3)
	assert.Equal(t, `eval "$(starship init zsh)"`, got[1].Command)
}

func TestByFile(t *testing.T) {
	timed := []Timed{
		{Entry: Entry{Location: "a.zsh:1"}, DurationMS: 5},
		{Entry: Entry{Location: "b.zsh:1"}, DurationMS: 20},
		{Entry: Entry{Location: "a.zsh:7"}, DurationMS: 30},
	}
	want := []FileTime{{File: "a.zsh", TimeMS: 35}, {File: "b.zsh", TimeMS: 20}}
	if diff := cmp.Diff(want, ByFile(timed)); diff != "" {
		t.Errorf("ByFile mismatch (-want +got):\n%s", diff)
	}
}

func TestTotalMS(t *testing.T) {
	assert.Zero(t, TotalMS(nil))
	assert.InDelta(t, 250, TotalMS([]Entry{{Timestamp: 10}, {Timestamp: 10.25}}), 1e-6)
}

func TestWriteStartupReport(t *testing.T) {
	entries, err := Parse(strings.NewReader(sample), true)
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteStartupReport(&buf, entries, 10, 20)
	out := buf.String()
	assert.Contains(t, out, "Top 3 slowest operations (threshold: 10ms)")
	assert.Contains(t, out, "      150.00 | /home/u/.zsh/plugins.zsh:3")
	assert.Contains(t, out, "/home/u/.zsh/plugins.zsh")
	assert.Contains(t, out, "Total startup time: 250.00ms")
}

func TestWriteFileReport(t *testing.T) {
	entries, err := Parse(strings.NewReader(sample), false)
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteFileReport(&buf, entries)
	out := buf.String()
	assert.Contains(t, out, "Cumulative time per file:")
	assert.Contains(t, out, "   155.00 | /home/u/.zsh/plugins.zsh")
	assert.Contains(t, out, "    95.00 | /home/u/.zshrc")
	assert.Contains(t, out, "Total startup time: 250.00ms")
}

func TestLoad(t *testing.T) {
	_, err := Load("", strings.NewReader("nothing here\n"), true)
	assert.ErrorIs(t, err, ErrNoEntries)

	entries, err := Load("-", strings.NewReader(sample), true)
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	_, err = Load("/nonexistent/trace.log", nil, true)
	assert.ErrorContains(t, err, "error reading log file")
}

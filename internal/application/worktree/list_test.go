package worktree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

const porcelain = `worktree /home/u/repos/app/bare
bare

worktree /home/u/repos/app/master
HEAD 1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b
branch refs/heads/master

worktree /home/u/repos/app/fix
HEAD 9f8e7d6c5b4a39281706f5e4d3c2b1a098765432
detached`

func TestParseList(t *testing.T) {
	want := []Worktree{
		{Path: "/home/u/repos/app/bare", Bare: true},
		{Path: "/home/u/repos/app/master", Head: "1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b", Branch: "master"},
		{Path: "/home/u/repos/app/fix", Head: "9f8e7d6c5b4a39281706f5e4d3c2b1a098765432", Detached: true},
	}
	if diff := cmp.Diff(want, ParseList(porcelain)); diff != "" {
		t.Errorf("ParseList mismatch (-want +got):\n%s", diff)
	}
}

func TestParseList_TrailingBlankLine(t *testing.T) {
	got := ParseList("worktree /a\nbranch refs/heads/x\n\n")
	assert.Equal(t, []Worktree{{Path: "/a", Branch: "x"}}, got)
}

func TestParseList_Empty(t *testing.T) {
	assert.Empty(t, ParseList(""))
}

func TestFormatForPicker_SkipsBare(t *testing.T) {
	out := FormatForPicker(ParseList(porcelain))
	assert.Equal(t,
		"master               /home/u/repos/app/master\n"+
			"9f8e7d6              /home/u/repos/app/fix", out)
}

func TestPathFromSelection(t *testing.T) {
	assert.Equal(t, "/x/y", PathFromSelection("feature     /x/y\n"))
	assert.Equal(t, "", PathFromSelection("   "))
}

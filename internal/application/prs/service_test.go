package prs

import (
	"bytes"
	"context"
	"fmt"
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

func prJSON(n int, draft bool, daysAgo int) string {
	created := testNow.AddDate(0, 0, -daysAgo).Format(time.RFC3339)
	return fmt.Sprintf(`{"number":%d,"title":"PR %d","author":{"login":"dev"},"isDraft":%t,"createdAt":%q}`, n, n, draft, created)
}

func listCmd(limit int, extra ...string) string {
	parts := append([]string{"gh pr list --repo o/r --state open --json", listFields, "--limit", fmt.Sprint(limit)}, extra...)
	return strings.Join(parts, " ")
}

func TestFilter(t *testing.T) {
	list := []PR{
		{Number: 1, IsDraft: true, CreatedAt: testNow.AddDate(0, 0, -40)},
		{Number: 2, IsDraft: false, CreatedAt: testNow.AddDate(0, 0, -40)},
		{Number: 3, IsDraft: true, CreatedAt: testNow.AddDate(0, 0, -5)},
	}

	got := Filter(list, Options{OlderThan: 30}, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Number)

	got = Filter(list, Options{OlderThan: 30, CloseReady: true}, testNow)
	assert.Len(t, got, 2)
}

func TestList_PagesWithCreatedCursor(t *testing.T) {
	var first []string
	for i := 0; i < 100; i++ {
		first = append(first, prJSON(1000-i, true, 40+i))
	}
	oldest := testNow.AddDate(0, 0, -139).UTC().Format(time.RFC3339)
	runner := execx.NewFake().
		On(listCmd(100), "["+strings.Join(first, ",")+"]").
		On(listCmd(50, "--search", "created:<"+oldest), "["+prJSON(7, true, 200)+"]")
	svc := newTestService(t, runner, "")

	list, err := svc.List(context.Background(), Options{Repo: "o/r", Limit: 150})
	require.NoError(t, err)
	assert.Len(t, list, 101)
	assert.Equal(t, 7, list[100].Number)
}

func TestList_StopsOnShortBatch(t *testing.T) {
	runner := execx.NewFake().On(listCmd(100, "--author", "dev"), "["+prJSON(1, true, 40)+"]")
	svc := newTestService(t, runner, "")

	list, err := svc.List(context.Background(), Options{Repo: "o/r", Limit: 1000, Author: "dev"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Len(t, runner.Calls, 1)
}

func TestRun_ClosesMatchingDrafts(t *testing.T) {
	runner := execx.NewFake().
		On(listCmd(100), "["+prJSON(1, true, 40)+","+prJSON(2, false, 40)+","+prJSON(3, true, 2)+"]")
	svc := newTestService(t, runner, "")

	err := svc.Run(context.Background(), Options{Repo: "o/r", OlderThan: 30, Limit: 1000, Yes: true, Message: "stale"})
	require.NoError(t, err)
	assert.True(t, runner.Ran("gh pr close 1 --repo o/r --comment stale"))
	assert.False(t, runner.RanPrefix("gh pr close 2"))
	assert.False(t, runner.RanPrefix("gh pr close 3"))
}

func TestRun_FailureReturnsError(t *testing.T) {
	runner := execx.NewFake().
		On(listCmd(100), "["+prJSON(1, true, 40)+","+prJSON(2, true, 50)+"]").
		Fail("gh pr close 2 --repo o/r")
	svc := newTestService(t, runner, "")

	err := svc.Run(context.Background(), Options{Repo: "o/r", OlderThan: 30, Limit: 1000, Yes: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to close 1 PR(s)")
	assert.True(t, runner.Ran("gh pr close 1 --repo o/r"))
}

func TestRun_DryRunAndCancel(t *testing.T) {
	list := "[" + prJSON(1, true, 40) + "]"

	runner := execx.NewFake().On(listCmd(100), list)
	svc := newTestService(t, runner, "")
	require.NoError(t, svc.Run(context.Background(), Options{Repo: "o/r", OlderThan: 30, Limit: 1000, DryRun: true}))
	assert.False(t, runner.RanPrefix("gh pr close"))

	runner = execx.NewFake().On(listCmd(100), list)
	svc = newTestService(t, runner, "n\n")
	require.NoError(t, svc.Run(context.Background(), Options{Repo: "o/r", OlderThan: 30, Limit: 1000}))
	assert.False(t, runner.RanPrefix("gh pr close"))
}

func TestRun_ResolvesCurrentRepo(t *testing.T) {
	runner := execx.NewFake().Fail("gh repo view --json nameWithOwner -q .nameWithOwner")
	svc := newTestService(t, runner, "")

	err := svc.Run(context.Background(), Options{OlderThan: 30, Limit: 1000})
	assert.ErrorIs(t, err, domain.ErrPrecondition)
}

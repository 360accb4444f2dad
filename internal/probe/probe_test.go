package probe

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"histedit.dev/histedit/internal/git"
)

// fakeStashRunner satisfies git.Runner for the stash and trial-apply methods
type fakeStashRunner struct {
	git.Runner

	mu        sync.Mutex
	stashes   []git.StashEntry
	conflicts map[string][]string
	errs      map[string]error
	calls     int
}

func (f *fakeStashRunner) ListStashes(context.Context) ([]git.StashEntry, error) {
	return f.stashes, nil
}

func (f *fakeStashRunner) TryApply(_ context.Context, ref string) ([]string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err := f.errs[ref]; err != nil {
		return nil, err
	}
	return f.conflicts[ref], nil
}

func TestCheck(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	runner := &fakeStashRunner{
		conflicts: map[string][]string{"stash@{0}": {"main.go"}},
	}

	result := Check(ctx, runner, "stash@{0}")
	require.False(t, result.Clean())
	require.Equal(t, []string{"main.go"}, result.Files)

	result = Check(ctx, runner, "stash@{1}")
	require.True(t, result.Clean())
}

func TestCheckAllProbesEveryRef(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	runner := &fakeStashRunner{
		conflicts: map[string][]string{
			"stash@{1}": {"a.go", "b.go"},
		},
		errs: map[string]error{
			"stash@{2}": fmt.Errorf("stash show failed"),
		},
	}

	results := CheckAll(ctx, runner, []string{"stash@{0}", "stash@{1}", "stash@{2}"})
	require.Len(t, results, 3)
	require.Equal(t, 3, runner.calls)

	require.True(t, results["stash@{0}"].Clean())
	require.Equal(t, []string{"a.go", "b.go"}, results["stash@{1}"].Files)
	require.Error(t, results["stash@{2}"].Err)
	require.False(t, results["stash@{2}"].Clean())
}

func TestCheckStashes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	runner := &fakeStashRunner{
		stashes: []git.StashEntry{
			{Ref: "stash@{0}", Message: "WIP on feature"},
			{Ref: "stash@{1}", Message: "old experiment"},
		},
		conflicts: map[string][]string{"stash@{1}": {"util.go"}},
	}

	stashes, results, err := CheckStashes(ctx, runner)
	require.NoError(t, err)
	require.Len(t, stashes, 2)
	require.True(t, results["stash@{0}"].Clean())
	require.Equal(t, []string{"util.go"}, results["stash@{1}"].Files)
}

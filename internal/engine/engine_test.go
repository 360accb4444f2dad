package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	histediterrors "histedit.dev/histedit/internal/errors"
	"histedit.dev/histedit/internal/git"
)

func fakeCommits(n int) []git.Commit {
	commits := make([]git.Commit, n)
	for i := range commits {
		hash := strings.Repeat(fmt.Sprintf("%x", i+1), 40)[:40]
		commits[i] = git.Commit{
			Hash:      hash,
			ShortHash: hash[:7],
			Message:   fmt.Sprintf("commit %d", i+1),
		}
	}
	return commits
}

func TestStartPlanning(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("builds a plan for the current branch", func(t *testing.T) {
		t.Parallel()
		f := newFakeRunner(fakeCommits(3))
		m := newFakeManager(f)

		state, err := m.StartPlanning(ctx, "/repo", "")
		require.NoError(t, err)
		require.Equal(t, StatusPlanning, state.Status)
		require.NotNil(t, state.Plan)
		require.Equal(t, "main", state.Plan.BaseBranch)
		require.Equal(t, "feature", state.Plan.TargetBranch)
		require.Equal(t, 3, state.Plan.Len())
	})

	t.Run("rejects planning onto the current branch itself", func(t *testing.T) {
		t.Parallel()
		f := newFakeRunner(fakeCommits(1))
		m := newFakeManager(f)

		_, err := m.StartPlanning(ctx, "/repo", "feature")
		require.Error(t, err)
		require.Contains(t, err.Error(), "itself")
	})

	t.Run("refuses to plan over an in-progress rebase", func(t *testing.T) {
		t.Parallel()
		f := newFakeRunner(fakeCommits(2))
		f.rebaseInProgress = true
		m := newFakeManager(f)

		state, err := m.StartPlanning(ctx, "/repo", "")
		require.Error(t, err)
		require.Equal(t, StatusPausedEdit, state.Status)
	})
}

func TestExecute(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("completes on a clean run and clears the plan", func(t *testing.T) {
		t.Parallel()
		f := newFakeRunner(fakeCommits(3))
		m := newFakeManager(f)

		_, err := m.StartPlanning(ctx, "/repo", "")
		require.NoError(t, err)

		state, err := m.Execute(ctx, "/repo")
		require.NoError(t, err)
		require.Equal(t, StatusCompleted, state.Status)
		require.Nil(t, state.Plan)
		require.Equal(t, 1, f.startCalls)
	})

	t.Run("sends instructions in execution order", func(t *testing.T) {
		t.Parallel()
		commits := fakeCommits(3)
		f := newFakeRunner(commits)
		m := newFakeManager(f)

		_, err := m.StartPlanning(ctx, "/repo", "")
		require.NoError(t, err)
		_, err = m.Execute(ctx, "/repo")
		require.NoError(t, err)

		// Display order is newest-first; the backend must receive the exact
		// reverse, oldest first
		require.Len(t, f.lastStart, 3)
		require.Equal(t, commits[0].Hash, f.lastStart[0].CommitHash)
		require.Equal(t, commits[1].Hash, f.lastStart[1].CommitHash)
		require.Equal(t, commits[2].Hash, f.lastStart[2].CommitHash)
	})

	t.Run("rejects a messageless reword before any backend call", func(t *testing.T) {
		t.Parallel()
		commits := fakeCommits(2)
		f := newFakeRunner(commits)
		m := newFakeManager(f)

		_, err := m.StartPlanning(ctx, "/repo", "")
		require.NoError(t, err)
		_, err = m.ChangeDisposition(ctx, "/repo", commits[1].Hash, git.DispositionReword, "")
		require.NoError(t, err)

		_, err = m.Execute(ctx, "/repo")
		require.ErrorIs(t, err, histediterrors.ErrIncompletePlan)
		require.Zero(t, f.startCalls)
	})

	t.Run("rejects a dirty working tree before any backend call", func(t *testing.T) {
		t.Parallel()
		f := newFakeRunner(fakeCommits(2))
		f.dirty = true
		m := newFakeManager(f)

		_, err := m.StartPlanning(ctx, "/repo", "")
		require.NoError(t, err)

		_, err = m.Execute(ctx, "/repo")
		require.ErrorIs(t, err, histediterrors.ErrDirtyWorkingTree)
		require.Zero(t, f.startCalls)
	})

	t.Run("pauses on conflicts with a message reflecting the count", func(t *testing.T) {
		t.Parallel()
		f := newFakeRunner(fakeCommits(2))
		f.unmergedFiles = []string{"a.ts", "b.ts"}
		m := newFakeManager(f)

		_, err := m.StartPlanning(ctx, "/repo", "")
		require.NoError(t, err)

		state, err := m.Execute(ctx, "/repo")
		require.NoError(t, err)
		require.Equal(t, StatusPausedConflict, state.Status)
		require.Equal(t, []string{"a.ts", "b.ts"}, state.ConflictingFiles)
		require.Contains(t, state.ConflictMessage, "2 files")

		queried, err := m.RebaseState(ctx, "/repo")
		require.NoError(t, err)
		require.Contains(t, queried.ConflictMessage, "2 files")
	})

	t.Run("requires a plan", func(t *testing.T) {
		t.Parallel()
		f := newFakeRunner(fakeCommits(2))
		m := newFakeManager(f)

		_, err := m.Execute(ctx, "/repo")
		require.ErrorIs(t, err, histediterrors.ErrNoSession)
	})

	t.Run("keeps the plan when the backend fails without starting", func(t *testing.T) {
		t.Parallel()
		f := newFakeRunner(fakeCommits(2))
		f.startErr = fmt.Errorf("fatal: invalid upstream")
		m := newFakeManager(f)

		_, err := m.StartPlanning(ctx, "/repo", "")
		require.NoError(t, err)

		state, err := m.Execute(ctx, "/repo")
		require.Error(t, err)
		require.Equal(t, StatusPlanning, state.Status)
		require.NotNil(t, state.Plan)
	})
}

func TestConcurrentExecuteIsRejectedBusy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFakeRunner(fakeCommits(2))
	f.startGate = make(chan struct{})
	m := newFakeManager(f)

	_, err := m.StartPlanning(ctx, "/repo", "")
	require.NoError(t, err)

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := m.Execute(ctx, "/repo")
		done <- err
	}()

	<-started
	// Wait until the first execute is inside the backend call
	<-f.startEntered

	_, err = m.Execute(ctx, "/repo")
	require.ErrorIs(t, err, histediterrors.ErrBusy)

	var busy *histediterrors.BusyError
	require.ErrorAs(t, err, &busy)
	require.Equal(t, "execute", busy.Operation)

	close(f.startGate)
	require.NoError(t, <-done)

	// The instruction list was sent exactly once
	require.Equal(t, 1, f.startCalls)
}

func TestContinue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// pauseOnConflict drives a manager into Paused-Conflict
	pauseOnConflict := func(t *testing.T, f *fakeRunner, m *Manager) {
		t.Helper()
		f.unmergedFiles = []string{"a.ts"}
		_, err := m.StartPlanning(ctx, "/repo", "")
		require.NoError(t, err)
		state, err := m.Execute(ctx, "/repo")
		require.NoError(t, err)
		require.Equal(t, StatusPausedConflict, state.Status)
	}

	t.Run("completes when the backend finishes", func(t *testing.T) {
		t.Parallel()
		f := newFakeRunner(fakeCommits(2))
		m := newFakeManager(f)
		pauseOnConflict(t, f, m)

		f.continueCompletes = true
		state, err := m.Continue(ctx, "/repo")
		require.NoError(t, err)
		require.Equal(t, StatusCompleted, state.Status)
		require.Nil(t, state.Plan)
		require.Equal(t, 1, f.continueCalls)

		// A fresh plan is required before executing again
		_, err = m.Execute(ctx, "/repo")
		require.ErrorIs(t, err, histediterrors.ErrNoSession)
	})

	t.Run("pauses again when the next step conflicts", func(t *testing.T) {
		t.Parallel()
		f := newFakeRunner(fakeCommits(3))
		m := newFakeManager(f)
		pauseOnConflict(t, f, m)

		// Continue fails and the rebase stays in progress: the next step hit
		// its own conflict, which is a pause, not an error
		f.continueErr = fmt.Errorf("could not apply next commit")
		f.unmergedFiles = []string{"c.ts", "d.ts"}

		state, err := m.Continue(ctx, "/repo")
		require.NoError(t, err)
		require.Equal(t, StatusPausedConflict, state.Status)
		require.Equal(t, []string{"c.ts", "d.ts"}, state.ConflictingFiles)
	})

	t.Run("transitions straight to completed when the rebase already finished", func(t *testing.T) {
		t.Parallel()
		f := newFakeRunner(fakeCommits(2))
		m := newFakeManager(f)
		pauseOnConflict(t, f, m)

		// Resolved and continued outside the tool
		f.mu.Lock()
		f.rebaseInProgress = false
		f.unmergedFiles = nil
		f.mu.Unlock()

		state, err := m.Continue(ctx, "/repo")
		require.NoError(t, err)
		require.Equal(t, StatusCompleted, state.Status)
		require.Zero(t, f.continueCalls)
	})

	t.Run("errors when nothing is in progress", func(t *testing.T) {
		t.Parallel()
		f := newFakeRunner(fakeCommits(2))
		m := newFakeManager(f)

		_, err := m.Continue(ctx, "/repo")
		require.ErrorIs(t, err, histediterrors.ErrNoRebaseInProgress)
	})
}

func TestAbort(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("marks the session aborted and clears everything", func(t *testing.T) {
		t.Parallel()
		f := newFakeRunner(fakeCommits(2))
		f.unmergedFiles = []string{"a.ts"}
		m := newFakeManager(f)

		_, err := m.StartPlanning(ctx, "/repo", "")
		require.NoError(t, err)
		_, err = m.Execute(ctx, "/repo")
		require.NoError(t, err)

		state, err := m.Abort(ctx, "/repo")
		require.NoError(t, err)
		require.Equal(t, StatusAborted, state.Status)
		require.Nil(t, state.Plan)
		require.Empty(t, state.ConflictingFiles)
		require.Equal(t, 1, f.abortCalls)

		// A new plan starts cleanly from the aborted session
		f.unmergedFiles = nil
		state, err = m.StartPlanning(ctx, "/repo", "")
		require.NoError(t, err)
		require.Equal(t, StatusPlanning, state.Status)
	})

	t.Run("settles as aborted even when the abort call errors but the repo is clean", func(t *testing.T) {
		t.Parallel()
		f := newFakeRunner(fakeCommits(2))
		f.unmergedFiles = []string{"a.ts"}
		m := newFakeManager(f)

		_, err := m.StartPlanning(ctx, "/repo", "")
		require.NoError(t, err)
		_, err = m.Execute(ctx, "/repo")
		require.NoError(t, err)

		// The abort command reports a failure, but a re-check shows no
		// rebase on disk; the session must still settle as aborted
		f.abortErr = fmt.Errorf("warning: could not remove stale ref")
		state, err := m.Abort(ctx, "/repo")
		require.NoError(t, err)
		require.Equal(t, StatusAborted, state.Status)
		require.Nil(t, state.Plan)
	})

	t.Run("surfaces the error when the rebase refuses to die", func(t *testing.T) {
		t.Parallel()
		f := newFakeRunner(fakeCommits(2))
		f.unmergedFiles = []string{"a.ts"}
		m := newFakeManager(f)

		_, err := m.StartPlanning(ctx, "/repo", "")
		require.NoError(t, err)
		_, err = m.Execute(ctx, "/repo")
		require.NoError(t, err)

		f.abortErr = fmt.Errorf("cannot abort")
		f.abortSticks = true
		_, err = m.Abort(ctx, "/repo")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to abort")
	})

	t.Run("is idempotent on an idle session", func(t *testing.T) {
		t.Parallel()
		f := newFakeRunner(fakeCommits(2))
		m := newFakeManager(f)

		state, err := m.Abort(ctx, "/repo")
		require.NoError(t, err)
		require.Equal(t, StatusIdle, state.Status)
		require.Zero(t, f.abortCalls)
	})
}

func TestReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rebuilds a fresh plan on the same base", func(t *testing.T) {
		t.Parallel()
		commits := fakeCommits(3)
		f := newFakeRunner(commits)
		m := newFakeManager(f)

		_, err := m.StartPlanning(ctx, "/repo", "")
		require.NoError(t, err)
		_, err = m.ChangeDisposition(ctx, "/repo", commits[2].Hash, git.DispositionDrop, "")
		require.NoError(t, err)

		state, err := m.Reset(ctx, "/repo")
		require.NoError(t, err)
		require.Equal(t, StatusPlanning, state.Status)
		require.Equal(t, "main", state.Plan.BaseBranch)
		for _, e := range state.Plan.Entries() {
			require.Equal(t, git.DispositionPick, e.Disposition)
		}
	})

	t.Run("aborts an in-progress rebase first", func(t *testing.T) {
		t.Parallel()
		f := newFakeRunner(fakeCommits(2))
		f.unmergedFiles = []string{"a.ts"}
		m := newFakeManager(f)

		_, err := m.StartPlanning(ctx, "/repo", "")
		require.NoError(t, err)
		_, err = m.Execute(ctx, "/repo")
		require.NoError(t, err)

		f.unmergedFiles = nil
		state, err := m.Reset(ctx, "/repo")
		require.NoError(t, err)
		require.Equal(t, StatusPlanning, state.Status)
		require.Equal(t, 1, f.abortCalls)
	})
}

func TestChangeBase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	commits := fakeCommits(3)
	f := newFakeRunner(commits)
	m := newFakeManager(f)

	_, err := m.StartPlanning(ctx, "/repo", "")
	require.NoError(t, err)
	_, err = m.ChangeDisposition(ctx, "/repo", commits[2].Hash, git.DispositionReword, "kept across rebase")
	require.NoError(t, err)

	state, err := m.ChangeBase(ctx, "/repo", "develop")
	require.NoError(t, err)
	require.Equal(t, "develop", state.Plan.BaseBranch)

	entries := state.Plan.Entries()
	require.Equal(t, git.DispositionReword, entries[0].Disposition)
	require.Equal(t, "kept across rebase", entries[0].RewordMessage())
}

func TestRebaseStateRecoversExternalRebase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// A rebase left behind by a previous process is picked up on first query
	f := newFakeRunner(fakeCommits(2))
	f.rebaseInProgress = true
	f.unmergedFiles = []string{"x.ts"}
	m := newFakeManager(f)

	state, err := m.RebaseState(ctx, "/repo")
	require.NoError(t, err)
	require.Equal(t, StatusPausedConflict, state.Status)
	require.Equal(t, []string{"x.ts"}, state.ConflictingFiles)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.RebaseState(ctx, "/repo")
		}()
	}
	wg.Wait()
}

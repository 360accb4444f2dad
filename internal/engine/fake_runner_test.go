package engine

import (
	"context"
	"fmt"
	"sync"

	"histedit.dev/histedit/internal/git"
)

// fakeRunner is an in-memory git.Runner that scripts rebase outcomes and
// counts every mutating backend call.
type fakeRunner struct {
	mu sync.Mutex

	repoRoot      string
	currentBranch string
	defaultBranch string
	commits       []git.Commit
	dirty         bool

	// scripted rebase behavior
	rebaseInProgress bool
	unmergedFiles    []string
	startErr         error
	continueErr      error
	abortErr         error
	// continueCompletes clears the in-progress flag when ContinueRebase runs
	continueCompletes bool
	// abortSticks keeps the rebase in progress even after AbortRebase
	abortSticks bool

	// startGate, when set, blocks StartRebase until the channel closes;
	// startEntered signals that the backend call is in flight
	startGate    chan struct{}
	startEntered chan struct{}

	startCalls    int
	continueCalls int
	abortCalls    int
	lastStart     []git.RebaseInstruction
}

func newFakeRunner(commits []git.Commit) *fakeRunner {
	return &fakeRunner{
		repoRoot:      "/repo",
		currentBranch: "feature",
		defaultBranch: "main",
		commits:       commits,
		startEntered:  make(chan struct{}, 1),
	}
}

func (f *fakeRunner) RepoRoot() string { return f.repoRoot }

func (f *fakeRunner) GetCurrentBranch(context.Context) (string, error) {
	return f.currentBranch, nil
}

func (f *fakeRunner) GetDefaultBranch(context.Context) (string, error) {
	return f.defaultBranch, nil
}

func (f *fakeRunner) ListBranches(context.Context) ([]git.BranchInfo, error) {
	return []git.BranchInfo{
		{Name: f.defaultBranch},
		{Name: f.currentBranch, IsCurrent: true},
	}, nil
}

func (f *fakeRunner) BranchExists(context.Context, string) bool { return true }

func (f *fakeRunner) CheckoutBranch(context.Context, string) error { return nil }

func (f *fakeRunner) CommitsAheadOfBase(_ context.Context, base, target string) ([]git.Commit, error) {
	return f.commits, nil
}

func (f *fakeRunner) HasUncommittedChanges(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty, nil
}

func (f *fakeRunner) StageAll(context.Context) error { return nil }

func (f *fakeRunner) StartRebase(_ context.Context, base string, instructions []git.RebaseInstruction) error {
	if f.startGate != nil {
		select {
		case f.startEntered <- struct{}{}:
		default:
		}
		<-f.startGate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	f.lastStart = append([]git.RebaseInstruction(nil), instructions...)
	if f.startErr != nil {
		return f.startErr
	}
	if len(f.unmergedFiles) > 0 {
		f.rebaseInProgress = true
		return fmt.Errorf("could not apply %s", instructions[0].CommitHash)
	}
	return nil
}

func (f *fakeRunner) ContinueRebase(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.continueCalls++
	if f.continueErr != nil {
		return f.continueErr
	}
	if f.continueCompletes {
		f.rebaseInProgress = false
		f.unmergedFiles = nil
	}
	return nil
}

func (f *fakeRunner) AbortRebase(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abortCalls++
	if !f.abortSticks {
		f.rebaseInProgress = false
		f.unmergedFiles = nil
	}
	return f.abortErr
}

func (f *fakeRunner) IsRebaseInProgress(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rebaseInProgress
}

func (f *fakeRunner) GetUnmergedFiles(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.unmergedFiles...), nil
}

func (f *fakeRunner) GetRebaseHead(context.Context) (string, error) {
	return "", fmt.Errorf("rebase head not found")
}

func (f *fakeRunner) ListStashes(context.Context) ([]git.StashEntry, error) {
	return nil, nil
}

func (f *fakeRunner) TryApply(context.Context, string) ([]string, error) {
	return nil, nil
}

var _ git.Runner = (*fakeRunner)(nil)

// newFakeManager wires a Manager whose sessions all share the given fake
func newFakeManager(f *fakeRunner) *Manager {
	return NewManagerWithFactory(func(ctx context.Context, repoRoot string) (git.Runner, error) {
		return f, nil
	})
}

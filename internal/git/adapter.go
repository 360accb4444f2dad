package git

import (
	"context"
)

// Runner defines the backend operations the rebase engine depends on.
// This allows the engine to be used with both real git and mock
// implementations.
type Runner interface {
	// Repository
	RepoRoot() string

	// Branch information
	GetCurrentBranch(ctx context.Context) (string, error)
	GetDefaultBranch(ctx context.Context) (string, error)
	ListBranches(ctx context.Context) ([]BranchInfo, error)
	BranchExists(ctx context.Context, branchName string) bool
	CheckoutBranch(ctx context.Context, branchName string) error

	// Commit information
	CommitsAheadOfBase(ctx context.Context, base, target string) ([]Commit, error)

	// Working tree
	HasUncommittedChanges(ctx context.Context) (bool, error)
	StageAll(ctx context.Context) error

	// Rebase
	StartRebase(ctx context.Context, base string, instructions []RebaseInstruction) error
	ContinueRebase(ctx context.Context) error
	AbortRebase(ctx context.Context) error
	IsRebaseInProgress(ctx context.Context) bool
	GetUnmergedFiles(ctx context.Context) ([]string, error)
	GetRebaseHead(ctx context.Context) (string, error)

	// Stash
	ListStashes(ctx context.Context) ([]StashEntry, error)
	TryApply(ctx context.Context, candidateRef string) ([]string, error)
}

// adapter implements Runner against a real repository, using go-git for
// object reads and the git binary for everything that mutates state.
type adapter struct {
	repoRoot string
	runner   *CommandRunner
	repo     *Repository
	forge    ForgeClient
}

// NewRunner creates a Runner bound to the repository at repoRoot.
// The forge client is optional; it is only attached when a token is
// configured and origin points at a known forge.
func NewRunner(ctx context.Context, repoRoot string) (Runner, error) {
	repo, err := OpenRepository(repoRoot)
	if err != nil {
		return nil, err
	}

	a := &adapter{
		repoRoot: repoRoot,
		runner:   NewCommandRunner(repoRoot),
		repo:     repo,
	}

	if remoteURL, err := a.runner.Run(ctx, "remote", "get-url", "origin"); err == nil {
		if forge, err := NewGitHubForge(ctx, remoteURL); err == nil {
			a.forge = forge
		}
	}

	return a, nil
}

// RepoRoot returns the repository root the adapter is bound to
func (a *adapter) RepoRoot() string {
	return a.repoRoot
}

// Compile-time check that adapter implements Runner.
var _ Runner = (*adapter)(nil)

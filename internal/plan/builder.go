package plan

import (
	"context"
	"fmt"

	histediterrors "histedit.dev/histedit/internal/errors"
	"histedit.dev/histedit/internal/git"
)

// Build queries the backend for the commits on target that are not on base
// and returns a fresh plan with every entry set to pick. Pure query: no
// repository state is touched. Returns ErrNoCommitsToPlan when target is
// already up to date with base.
func Build(ctx context.Context, runner git.Runner, baseBranch, targetBranch string) (*Plan, error) {
	commits, err := runner.CommitsAheadOfBase(ctx, baseBranch, targetBranch)
	if err != nil {
		return nil, fmt.Errorf("failed to build plan for %s onto %s: %w", targetBranch, baseBranch, err)
	}

	if len(commits) == 0 {
		return nil, fmt.Errorf("%w: %s is up to date with %s",
			histediterrors.ErrNoCommitsToPlan, targetBranch, baseBranch)
	}

	return New(runner.RepoRoot(), baseBranch, targetBranch, commits), nil
}

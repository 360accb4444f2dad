package git

import (
	"context"
	"fmt"
	"strings"
)

// BranchInfo describes a branch for listing purposes
type BranchInfo struct {
	Name              string
	IsCurrent         bool
	IsRemote          bool
	LastCommitMessage string
}

// GetCurrentBranch returns the name of the checked-out branch
func (a *adapter) GetCurrentBranch(ctx context.Context) (string, error) {
	goGitMu.Lock()
	head, err := a.repo.Head()
	goGitMu.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is not on a branch")
	}

	return head.Name().Short(), nil
}

// GetDefaultBranch resolves the repository's default branch.
// Resolution order: origin/HEAD symref, the forge API (when a token and an
// origin remote are available), then a local main/master probe.
func (a *adapter) GetDefaultBranch(ctx context.Context) (string, error) {
	if ref, err := a.runner.Run(ctx, "symbolic-ref", "refs/remotes/origin/HEAD"); err == nil {
		return strings.TrimPrefix(ref, "refs/remotes/origin/"), nil
	}

	if a.forge != nil {
		if name, err := a.forge.DefaultBranch(ctx); err == nil && name != "" {
			return name, nil
		}
	}

	for _, candidate := range []string{"main", "master"} {
		if _, err := a.runner.Run(ctx, "rev-parse", "--verify", "refs/heads/"+candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("failed to determine default branch")
}

// ListBranches lists local and remote-tracking branches with their last
// commit subject
func (a *adapter) ListBranches(ctx context.Context) ([]BranchInfo, error) {
	lines, err := a.runner.RunLines(ctx,
		"for-each-ref",
		"--format=%(HEAD)%00%(refname:short)%00%(contents:subject)",
		"refs/heads", "refs/remotes",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	branches := make([]BranchInfo, 0, len(lines))
	for _, line := range lines {
		parts := strings.SplitN(line, "\x00", 3)
		if len(parts) != 3 {
			continue
		}

		name := parts[1]
		// Skip the origin/HEAD symref itself
		if strings.HasSuffix(name, "/HEAD") {
			continue
		}

		branches = append(branches, BranchInfo{
			Name:              name,
			IsCurrent:         parts[0] == "*",
			IsRemote:          strings.Contains(name, "/"),
			LastCommitMessage: parts[2],
		})
	}

	return branches, nil
}

// CheckoutBranch checks out an existing branch
func (a *adapter) CheckoutBranch(ctx context.Context, branchName string) error {
	_, err := a.runner.Run(ctx, "checkout", branchName)
	if err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", branchName, err)
	}
	return nil
}

// BranchExists reports whether a local or remote-tracking branch with the
// given name exists
func (a *adapter) BranchExists(ctx context.Context, branchName string) bool {
	for _, prefix := range []string{"refs/heads/", "refs/remotes/"} {
		if _, err := a.runner.Run(ctx, "rev-parse", "--verify", prefix+branchName); err == nil {
			return true
		}
	}
	return false
}

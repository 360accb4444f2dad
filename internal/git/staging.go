package git

import (
	"context"
	"fmt"
	"strings"
)

// HasUncommittedChanges checks if the working tree has staged or unstaged
// changes to tracked files. Untracked files do not count; they cannot be
// clobbered by a rebase.
func (a *adapter) HasUncommittedChanges(ctx context.Context) (bool, error) {
	staged, err := a.runner.Run(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return false, fmt.Errorf("failed to check staged changes: %w", err)
	}
	if strings.TrimSpace(staged) != "" {
		return true, nil
	}

	unstaged, err := a.runner.Run(ctx, "diff", "--name-only")
	if err != nil {
		return false, fmt.Errorf("failed to check unstaged changes: %w", err)
	}
	return strings.TrimSpace(unstaged) != "", nil
}

// StageAll stages all changes including untracked files
func (a *adapter) StageAll(ctx context.Context) error {
	_, err := a.runner.Run(ctx, "add", "-A")
	if err != nil {
		return fmt.Errorf("failed to stage all changes: %w", err)
	}
	return nil
}

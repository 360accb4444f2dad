package git

import (
	"fmt"
	"path/filepath"
	"sync"

	gogit "github.com/go-git/go-git/v5"

	histediterrors "histedit.dev/histedit/internal/errors"
)

// goGitMu synchronizes go-git operations to prevent concurrent packfile access
var goGitMu sync.Mutex

// Repository wraps a go-git repository
type Repository struct {
	*gogit.Repository
	path string
}

// OpenRepository opens a git repository at the given path
func OpenRepository(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", histediterrors.ErrNoRepository, absPath)
	}

	return &Repository{
		Repository: repo,
		path:       absPath,
	}, nil
}

// ResolveRepoRoot resolves the root directory of the git repository containing path
func ResolveRepoRoot(path string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s", histediterrors.ErrNoRepository, path)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	return worktree.Filesystem.Root(), nil
}

package git

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
)

// shortHashLen is the display alias length for commit hashes
const shortHashLen = 7

// Commit describes a single commit between the base and the branch tip
type Commit struct {
	// Hash is the full commit hash
	Hash string
	// ShortHash is the display alias. Not guaranteed unique repository-wide,
	// but treated as unique within a planning session.
	ShortHash string
	Author    string
	Date      time.Time
	// Message is the full commit message
	Message      string
	ParentHashes []string
}

// Subject returns the first line of the commit message
func (c Commit) Subject() string {
	lines := strings.SplitN(strings.TrimSpace(c.Message), "\n", 2)
	return strings.TrimSpace(lines[0])
}

// CommitsAheadOfBase returns the commits reachable from target but not from base,
// oldest first. The ordering comes from git's own rev-list traversal so merge
// topologies match what the rebase backend will replay.
func (a *adapter) CommitsAheadOfBase(ctx context.Context, base, target string) ([]Commit, error) {
	shas, err := a.runner.RunLines(ctx, "rev-list", "--reverse", base+".."+target)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits ahead of %s: %w", base, err)
	}

	commits := make([]Commit, 0, len(shas))
	for _, sha := range shas {
		commit, err := a.commitByHash(sha)
		if err != nil {
			return nil, err
		}
		commits = append(commits, commit)
	}

	return commits, nil
}

// commitByHash loads a commit descriptor through go-git
func (a *adapter) commitByHash(sha string) (Commit, error) {
	goGitMu.Lock()
	defer goGitMu.Unlock()

	obj, err := a.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return Commit{}, fmt.Errorf("failed to get commit %s: %w", sha, err)
	}

	parents := make([]string, 0, len(obj.ParentHashes))
	for _, p := range obj.ParentHashes {
		parents = append(parents, p.String())
	}

	short := sha
	if len(short) > shortHashLen {
		short = short[:shortHashLen]
	}

	return Commit{
		Hash:         sha,
		ShortHash:    short,
		Author:       obj.Author.Name,
		Date:         obj.Author.When,
		Message:      obj.Message,
		ParentHashes: parents,
	}, nil
}

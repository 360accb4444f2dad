package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	histediterrors "histedit.dev/histedit/internal/errors"
)

// StashEntry describes a single stash entry
type StashEntry struct {
	// Ref is the reflog selector, e.g. "stash@{0}"
	Ref     string
	Hash    string
	Message string
}

// ListStashes lists the repository's stash entries, newest first
func (a *adapter) ListStashes(ctx context.Context) ([]StashEntry, error) {
	lines, err := a.runner.RunLines(ctx, "stash", "list", "--format=%gd%x00%H%x00%gs")
	if err != nil {
		return nil, fmt.Errorf("failed to list stashes: %w", err)
	}

	entries := make([]StashEntry, 0, len(lines))
	for _, line := range lines {
		parts := strings.SplitN(line, "\x00", 3)
		if len(parts) != 3 {
			continue
		}
		entries = append(entries, StashEntry{
			Ref:     parts[0],
			Hash:    parts[1],
			Message: parts[2],
		})
	}

	return entries, nil
}

// TryApply performs a non-destructive trial application of a candidate change
// against HEAD and returns the relative paths that would conflict. The trial
// runs entirely inside a throwaway index file; the working tree and the real
// index are never written, and the throwaway index is removed on every exit
// path.
func (a *adapter) TryApply(ctx context.Context, candidateRef string) ([]string, error) {
	patch, err := a.runner.runInternal(ctx, nil, "", false, "stash", "show", "-p", candidateRef)
	if err != nil {
		return nil, fmt.Errorf("failed to read patch for %s: %w", candidateRef, err)
	}
	if strings.TrimSpace(patch) == "" {
		return nil, nil
	}

	candidates, err := patchFiles(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to parse patch for %s: %w", candidateRef, err)
	}

	tmpIndex, err := os.CreateTemp("", "histedit-probe-index-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create trial index: %w", err)
	}
	tmpIndex.Close()
	defer os.Remove(tmpIndex.Name())

	env := []string{"GIT_INDEX_FILE=" + tmpIndex.Name()}

	if _, err := a.runner.RunWithEnv(ctx, env, "read-tree", "HEAD"); err != nil {
		return nil, fmt.Errorf("failed to populate trial index: %w", err)
	}

	_, applyErr := a.runner.runInternal(ctx, env, patch, true, "apply", "--cached", "--3way", "-")
	if applyErr == nil {
		return nil, nil
	}

	// The three-way apply records conflicts as unmerged entries in the trial
	// index. Restrict to paths the patch actually touches in case HEAD itself
	// carries unmerged entries.
	unmerged, err := a.unmergedInIndex(ctx, env)
	if err != nil {
		return nil, err
	}

	conflicts := intersect(unmerged, candidates)
	if len(conflicts) == 0 {
		// The apply failed without recording unmerged entries, e.g. an
		// add/add clash where the patch creates a file HEAD already tracks.
		// Fall back to the failure report on stderr.
		conflicts = intersect(parseApplyFailures(applyErr), candidates)
	}
	if len(conflicts) == 0 {
		return nil, fmt.Errorf("trial apply of %s failed: %w", candidateRef, applyErr)
	}

	sort.Strings(conflicts)
	return conflicts, nil
}

// unmergedInIndex lists paths with unmerged entries in the index selected by env
func (a *adapter) unmergedInIndex(ctx context.Context, env []string) ([]string, error) {
	out, err := a.runner.RunWithEnv(ctx, env, "ls-files", "--unmerged")
	if err != nil {
		return nil, fmt.Errorf("failed to list unmerged trial entries: %w", err)
	}

	seen := make(map[string]bool)
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		// Format: <mode> <sha> <stage>\t<path>
		_, path, ok := strings.Cut(line, "\t")
		if !ok || seen[path] {
			continue
		}
		seen[path] = true
		paths = append(paths, path)
	}
	return paths, nil
}

// patchFiles returns the set of paths a unified diff touches
func patchFiles(patch string) (map[string]bool, error) {
	fileDiffs, err := diff.ParseMultiFileDiff([]byte(patch))
	if err != nil {
		return nil, err
	}

	files := make(map[string]bool, len(fileDiffs))
	for _, fd := range fileDiffs {
		for _, name := range []string{fd.NewName, fd.OrigName} {
			name = strings.TrimPrefix(name, "a/")
			name = strings.TrimPrefix(name, "b/")
			if name != "" && name != "/dev/null" {
				files[name] = true
			}
		}
	}
	return files, nil
}

// perFileApplyErrors are the "error: <path>: <reason>" reasons git apply
// emits when a file cannot even reach the blob merge, e.g. an add/add clash
// where the patch creates a file HEAD already tracks
var perFileApplyErrors = []string{
	": patch does not apply",
	": does not match index",
	": already exists in index",
	": already exists in working directory",
}

// parseApplyFailures extracts paths from git apply's stderr failure report
func parseApplyFailures(applyErr error) []string {
	var cmdErr *histediterrors.GitCommandError
	if !errors.As(applyErr, &cmdErr) {
		return nil
	}

	seen := make(map[string]bool)
	var paths []string
	for _, line := range strings.Split(cmdErr.Stderr, "\n") {
		line = strings.TrimSpace(line)
		path := ""
		switch {
		case strings.HasPrefix(line, "error: patch failed: "):
			// error: patch failed: path/to/file:12
			path = strings.TrimPrefix(line, "error: patch failed: ")
			if idx := strings.LastIndex(path, ":"); idx > 0 {
				path = path[:idx]
			}
		case strings.HasPrefix(line, "error: cannot read the current contents of "):
			// error: cannot read the current contents of 'path/to/file'
			path = strings.TrimPrefix(line, "error: cannot read the current contents of ")
			path = strings.Trim(path, "'")
		case strings.HasPrefix(line, "error: "):
			rest := strings.TrimPrefix(line, "error: ")
			for _, suffix := range perFileApplyErrors {
				if strings.HasSuffix(rest, suffix) {
					path = strings.TrimSuffix(rest, suffix)
					break
				}
			}
		case strings.HasPrefix(line, "CONFLICT"):
			// CONFLICT (content): Merge conflict in path/to/file
			if _, after, ok := strings.Cut(line, " in "); ok {
				path = after
			}
		}
		if path != "" && !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}
	return paths
}

// intersect returns the members of paths present in set
func intersect(paths []string, set map[string]bool) []string {
	var out []string
	for _, p := range paths {
		if set[p] {
			out = append(out, p)
		}
	}
	return out
}

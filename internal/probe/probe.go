// Package probe answers "would this ref apply cleanly onto HEAD" without
// mutating the repository. It is used for stash conflict badges and for
// pre-flight warnings before a rebase.
package probe

import (
	"context"
	"sync"

	"histedit.dev/histedit/internal/git"
)

// Result describes the outcome of a single trial apply
type Result struct {
	Ref   string
	Files []string
	Err   error
}

// Clean reports whether the trial apply found no conflicts
func (r Result) Clean() bool {
	return r.Err == nil && len(r.Files) == 0
}

// Check runs a trial apply of a single ref against HEAD
func Check(ctx context.Context, runner git.Runner, ref string) Result {
	files, err := runner.TryApply(ctx, ref)
	return Result{Ref: ref, Files: files, Err: err}
}

// CheckAll probes multiple refs in parallel and returns results keyed by ref.
// Each trial uses its own scratch index, so concurrent probes do not
// interfere with each other or with the real index.
func CheckAll(ctx context.Context, runner git.Runner, refs []string) map[string]Result {
	results := make(map[string]Result)
	resultsMu := sync.Mutex{}
	var wg sync.WaitGroup

	for _, ref := range refs {
		wg.Add(1)
		go func(ref string) {
			defer wg.Done()
			result := Check(ctx, runner, ref)
			resultsMu.Lock()
			results[ref] = result
			resultsMu.Unlock()
		}(ref)
	}

	wg.Wait()
	return results
}

// CheckStashes probes every stash entry and returns results in stash order
func CheckStashes(ctx context.Context, runner git.Runner) ([]git.StashEntry, map[string]Result, error) {
	stashes, err := runner.ListStashes(ctx)
	if err != nil {
		return nil, nil, err
	}

	refs := make([]string, 0, len(stashes))
	for _, stash := range stashes {
		refs = append(refs, stash.Ref)
	}

	return stashes, CheckAll(ctx, runner, refs), nil
}

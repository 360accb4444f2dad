package engine

import (
	"context"
	"fmt"

	histediterrors "histedit.dev/histedit/internal/errors"
	"histedit.dev/histedit/internal/git"
	"histedit.dev/histedit/internal/plan"
)

// StartPlanning builds a fresh plan for the current branch onto baseBranch.
// An empty baseBranch resolves to the repository's default branch. Fails when
// the backend is already mid-rebase; that rebase must be continued or aborted
// first.
func (m *Manager) StartPlanning(ctx context.Context, repoRoot, baseBranch string) (State, error) {
	s, err := m.session(ctx, repoRoot)
	if err != nil {
		return State{}, err
	}

	if err := s.lockFor("start-planning"); err != nil {
		return State{}, err
	}
	defer s.mu.Unlock()

	if s.runner.IsRebaseInProgress(ctx) {
		if err := s.reconcileLocked(ctx); err != nil {
			return State{}, err
		}
		return s.stateLocked(), fmt.Errorf(
			"a rebase is already in progress in %s; continue or abort it first", repoRoot,
		)
	}

	target, err := s.runner.GetCurrentBranch(ctx)
	if err != nil {
		return State{}, fmt.Errorf("failed to resolve target branch: %w", err)
	}

	if baseBranch == "" {
		baseBranch, err = s.runner.GetDefaultBranch(ctx)
		if err != nil {
			return State{}, fmt.Errorf("failed to resolve base branch: %w", err)
		}
	}
	if baseBranch == target {
		return State{}, fmt.Errorf("cannot rebase %s onto itself", target)
	}
	if !s.runner.BranchExists(ctx, baseBranch) {
		return State{}, fmt.Errorf("base branch %q does not exist", baseBranch)
	}

	p, err := plan.Build(ctx, s.runner, baseBranch, target)
	if err != nil {
		return State{}, err
	}

	s.plan = p
	s.status = StatusPlanning
	s.conflicts = nil
	s.stoppedOn = ""
	if err := s.persistLocked(); err != nil {
		return s.stateLocked(), err
	}
	return s.stateLocked(), nil
}

// ChangeDisposition assigns a disposition to a plan entry. The optional
// message is only meaningful for reword.
func (m *Manager) ChangeDisposition(
	ctx context.Context, repoRoot, commitHash string, disposition git.Disposition, message string,
) (State, error) {
	return m.editPlan(ctx, repoRoot, "change-disposition", func(p *plan.Plan) error {
		return p.SetDisposition(commitHash, disposition, message)
	})
}

// SetMessage sets the replacement message on a reword entry
func (m *Manager) SetMessage(ctx context.Context, repoRoot, commitHash, message string) (State, error) {
	return m.editPlan(ctx, repoRoot, "set-message", func(p *plan.Plan) error {
		return p.SetMessage(commitHash, message)
	})
}

// editPlan runs an edit against the live plan under the exclusive section
func (m *Manager) editPlan(
	ctx context.Context, repoRoot, operation string, edit func(*plan.Plan) error,
) (State, error) {
	s, err := m.session(ctx, repoRoot)
	if err != nil {
		return State{}, err
	}

	if err := s.lockFor(operation); err != nil {
		return State{}, err
	}
	defer s.mu.Unlock()

	if s.status != StatusPlanning || s.plan == nil {
		return s.stateLocked(), fmt.Errorf("%w for %s", histediterrors.ErrNoSession, repoRoot)
	}

	if err := edit(s.plan); err != nil {
		return s.stateLocked(), err
	}
	if err := s.persistLocked(); err != nil {
		return s.stateLocked(), err
	}
	return s.stateLocked(), nil
}

// ChangeBase rebuilds the plan against a new base branch, preserving
// dispositions for commits whose hashes survive the rebuild
func (m *Manager) ChangeBase(ctx context.Context, repoRoot, newBase string) (State, error) {
	s, err := m.session(ctx, repoRoot)
	if err != nil {
		return State{}, err
	}

	if err := s.lockFor("change-base"); err != nil {
		return State{}, err
	}
	defer s.mu.Unlock()

	if s.status != StatusPlanning || s.plan == nil {
		return s.stateLocked(), fmt.Errorf("%w for %s", histediterrors.ErrNoSession, repoRoot)
	}

	if !s.runner.BranchExists(ctx, newBase) {
		return s.stateLocked(), fmt.Errorf("base branch %q does not exist", newBase)
	}

	rebuilt, err := plan.Build(ctx, s.runner, newBase, s.plan.TargetBranch)
	if err != nil {
		return s.stateLocked(), err
	}

	rebuilt.AdoptDispositions(s.plan)
	s.plan = rebuilt
	if err := s.persistLocked(); err != nil {
		return s.stateLocked(), err
	}
	return s.stateLocked(), nil
}

// Execute converts the plan into execution-order instructions and drives the
// backend through a single multi-step rebase start. Validation failures
// (incomplete plan, dirty tree) happen before any backend call. The outcome
// is always determined by re-querying the backend, not by the call's return
// value, because earlier steps can complete synchronously before a later one
// pauses.
func (m *Manager) Execute(ctx context.Context, repoRoot string) (State, error) {
	s, err := m.session(ctx, repoRoot)
	if err != nil {
		return State{}, err
	}

	if err := s.lockFor("execute"); err != nil {
		return State{}, err
	}
	defer s.mu.Unlock()

	if s.status != StatusPlanning || s.plan == nil {
		return s.stateLocked(), fmt.Errorf("%w for %s", histediterrors.ErrNoSession, repoRoot)
	}

	instructions, err := s.plan.ExecutionInstructions()
	if err != nil {
		return s.stateLocked(), err
	}

	dirty, err := s.runner.HasUncommittedChanges(ctx)
	if err != nil {
		return s.stateLocked(), fmt.Errorf("failed to check working tree in %s: %w", repoRoot, err)
	}
	if dirty {
		return s.stateLocked(), &histediterrors.DirtyWorkingTreeError{
			RepoRoot:  repoRoot,
			Operation: "execute rebase",
		}
	}

	s.status = StatusExecuting
	backendErr := s.runner.StartRebase(ctx, s.plan.BaseBranch, instructions)

	return s.settleLocked(ctx, repoRoot, backendErr)
}

// Continue resumes a paused rebase after the user resolved conflicts or
// finished an edit stop. Handles the backend reporting "already complete"
// (resolved and committed externally) by transitioning straight to completed.
func (m *Manager) Continue(ctx context.Context, repoRoot string) (State, error) {
	s, err := m.session(ctx, repoRoot)
	if err != nil {
		return State{}, err
	}

	if err := s.lockFor("continue"); err != nil {
		return State{}, err
	}
	defer s.mu.Unlock()

	if !s.runner.IsRebaseInProgress(ctx) {
		if s.status.Paused() || s.status == StatusExecuting {
			s.status = StatusCompleted
			s.plan = nil
			s.conflicts = nil
			s.stoppedOn = ""
			if err := s.persistLocked(); err != nil {
				return s.stateLocked(), err
			}
			return s.stateLocked(), nil
		}
		return s.stateLocked(), fmt.Errorf(
			"%w in %s", histediterrors.ErrNoRebaseInProgress, repoRoot,
		)
	}

	s.status = StatusExecuting
	backendErr := s.runner.ContinueRebase(ctx)

	return s.settleLocked(ctx, repoRoot, backendErr)
}

// settleLocked resolves the post-call state shared by Execute and Continue.
// A backend error with the rebase still in progress is a normal pause, not a
// failure; a backend error with no rebase in progress is surfaced to the
// caller. Callers must hold s.mu.
func (s *session) settleLocked(ctx context.Context, repoRoot string, backendErr error) (State, error) {
	if s.runner.IsRebaseInProgress(ctx) {
		if err := s.reconcileLocked(ctx); err != nil {
			return s.stateLocked(), err
		}
		if err := s.persistLocked(); err != nil {
			return s.stateLocked(), err
		}
		return s.stateLocked(), nil
	}

	if backendErr != nil {
		// No rebase on disk means the backend rolled the failure back
		// itself; the plan survives for the user to retry or adjust.
		s.status = StatusPlanning
		if s.plan == nil {
			s.status = StatusIdle
		}
		s.conflicts = nil
		s.stoppedOn = ""
		if err := s.persistLocked(); err != nil {
			return s.stateLocked(), err
		}
		return s.stateLocked(), fmt.Errorf("rebase failed in %s: %w", repoRoot, backendErr)
	}

	s.status = StatusCompleted
	s.plan = nil
	s.conflicts = nil
	s.stoppedOn = ""
	if err := s.persistLocked(); err != nil {
		return s.stateLocked(), err
	}
	return s.stateLocked(), nil
}

// Abort aborts the in-progress rebase, discards the plan, and marks the
// session aborted. The abort call's own error is ignored as long as a
// re-check confirms the repository is no longer mid-rebase. Aborting a
// session that has nothing to tear down leaves it idle.
func (m *Manager) Abort(ctx context.Context, repoRoot string) (State, error) {
	s, err := m.session(ctx, repoRoot)
	if err != nil {
		return State{}, err
	}

	if err := s.lockFor("abort"); err != nil {
		return State{}, err
	}
	defer s.mu.Unlock()

	wasInProgress := s.runner.IsRebaseInProgress(ctx)

	var abortErr error
	if wasInProgress {
		abortErr = s.runner.AbortRebase(ctx)
	}

	if s.runner.IsRebaseInProgress(ctx) {
		if abortErr == nil {
			abortErr = fmt.Errorf("rebase still in progress after abort")
		}
		return s.stateLocked(), fmt.Errorf("failed to abort rebase in %s: %w", repoRoot, abortErr)
	}

	if wasInProgress || s.plan != nil || s.status == StatusAborted {
		s.status = StatusAborted
	} else {
		s.status = StatusIdle
	}
	s.plan = nil
	s.conflicts = nil
	s.stoppedOn = ""
	if err := s.persistLocked(); err != nil {
		return s.stateLocked(), err
	}
	return s.stateLocked(), nil
}

// Reset discards the current plan and rebuilds a fresh one on the same base.
// When the backend is mid-rebase the rebase is aborted first, since a plan
// can only be rebuilt against settled history.
func (m *Manager) Reset(ctx context.Context, repoRoot string) (State, error) {
	s, err := m.session(ctx, repoRoot)
	if err != nil {
		return State{}, err
	}

	if err := s.lockFor("reset"); err != nil {
		return State{}, err
	}
	defer s.mu.Unlock()

	if s.plan == nil {
		return s.stateLocked(), fmt.Errorf("%w for %s", histediterrors.ErrNoSession, repoRoot)
	}

	if s.runner.IsRebaseInProgress(ctx) {
		if err := s.runner.AbortRebase(ctx); err != nil && s.runner.IsRebaseInProgress(ctx) {
			return s.stateLocked(), fmt.Errorf("failed to abort rebase in %s: %w", repoRoot, err)
		}
	}

	p, err := plan.Build(ctx, s.runner, s.plan.BaseBranch, s.plan.TargetBranch)
	if err != nil {
		return s.stateLocked(), err
	}

	s.plan = p
	s.status = StatusPlanning
	s.conflicts = nil
	s.stoppedOn = ""
	if err := s.persistLocked(); err != nil {
		return s.stateLocked(), err
	}
	return s.stateLocked(), nil
}

// Package engine implements the rebase orchestration state machine. It owns
// one plan/status pair per repository root and drives the git backend through
// execute, continue, and abort, reconciling its believed status against the
// backend's on-disk state after every call.
package engine

import (
	"context"
	"fmt"
	"sync"

	histediterrors "histedit.dev/histedit/internal/errors"
	"histedit.dev/histedit/internal/git"
	"histedit.dev/histedit/internal/plan"
)

// State is a snapshot of a session, returned to callers for rendering
type State struct {
	Status           Status
	Plan             *plan.Plan
	ConflictingFiles []string
	ConflictMessage  string

	// StoppedCommit is the commit the backend stopped on while paused,
	// when the backend exposes it
	StoppedCommit string
}

// RunnerFactory creates a backend runner for a repository root
type RunnerFactory func(ctx context.Context, repoRoot string) (git.Runner, error)

// Manager owns the rebase sessions, one per repository root
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*session
	newRunner RunnerFactory
	store     Store
}

// NewManager creates a Manager backed by real git repositories, persisting
// plans under .git so each one-shot CLI invocation picks up where the last
// left off
func NewManager() *Manager {
	return newManager(git.NewRunner, fileStore{})
}

// NewManagerWithFactory creates a Manager with a custom runner factory and
// in-memory persistence. Tests use this to substitute a fake backend.
func NewManagerWithFactory(factory RunnerFactory) *Manager {
	return newManager(factory, newMemoryStore())
}

func newManager(factory RunnerFactory, store Store) *Manager {
	return &Manager{
		sessions:  make(map[string]*session),
		newRunner: factory,
		store:     store,
	}
}

// session holds the single mutable plan/status pair for one repository root.
// All reads and writes happen under mu; mutating operations acquire it with
// TryLock so a second caller is rejected as busy instead of queued.
type session struct {
	mu       sync.Mutex
	repoRoot string
	runner   git.Runner
	store    Store

	plan      *plan.Plan
	status    Status
	conflicts []string
	stoppedOn string
}

// session returns the session for repoRoot, creating it on first use
func (m *Manager) session(ctx context.Context, repoRoot string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[repoRoot]; ok {
		return s, nil
	}

	runner, err := m.newRunner(ctx, repoRoot)
	if err != nil {
		return nil, err
	}

	s := &session{
		repoRoot: repoRoot,
		runner:   runner,
		store:    m.store,
		status:   StatusIdle,
	}

	// Adopt the plan a previous process left behind. A record that cannot
	// be read is discarded rather than bricking every command; the plan is
	// rebuildable.
	if record, err := m.store.Load(repoRoot); err != nil {
		_ = m.store.Clear(repoRoot)
	} else if record != nil && record.Plan != nil {
		s.plan = plan.FromSnapshot(record.Plan)
		s.status = record.Status
	}

	m.sessions[repoRoot] = s
	return s, nil
}

// Close tears down the session for a repository root. The plan is
// disposable; only backend-observable progress is durable, so closing never
// touches the repository.
func (m *Manager) Close(repoRoot string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, repoRoot)
}

// Runner exposes the backend runner for a repository root, creating the
// session if needed. Used by read-only collaborators such as the stash
// browser.
func (m *Manager) Runner(ctx context.Context, repoRoot string) (git.Runner, error) {
	s, err := m.session(ctx, repoRoot)
	if err != nil {
		return nil, err
	}
	return s.runner, nil
}

// lockFor acquires the session's exclusive section for a mutating operation,
// rejecting with a busy error when another operation is in flight
func (s *session) lockFor(operation string) error {
	if !s.mu.TryLock() {
		return histediterrors.NewBusyError(s.repoRoot, operation)
	}
	return nil
}

// reconcileLocked corrects the session's believed status against backend
// reality. Callers must hold s.mu. The backend owns the on-disk rebase
// bookkeeping, so this re-query runs after every mutating backend call, even
// failed ones.
func (s *session) reconcileLocked(ctx context.Context) error {
	if !s.runner.IsRebaseInProgress(ctx) {
		return nil
	}

	files, err := s.runner.GetUnmergedFiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to reconcile rebase state for %s: %w", s.repoRoot, err)
	}

	if len(files) > 0 {
		s.status = StatusPausedConflict
		s.conflicts = files
	} else {
		s.status = StatusPausedEdit
		s.conflicts = nil
	}

	// Best effort; older backends may not expose the stopped commit
	if head, err := s.runner.GetRebaseHead(ctx); err == nil {
		s.stoppedOn = head
	} else {
		s.stoppedOn = ""
	}
	return nil
}

// persistLocked mirrors the session to the store so the next process can
// pick the plan back up; with no plan the record is cleared. Callers must
// hold s.mu.
func (s *session) persistLocked() error {
	if s.plan == nil {
		return s.store.Clear(s.repoRoot)
	}
	return s.store.Save(s.repoRoot, &SessionRecord{
		Status: s.status,
		Plan:   s.plan.Snapshot(),
	})
}

// stateLocked snapshots the session. Callers must hold s.mu.
func (s *session) stateLocked() State {
	st := State{
		Status:        s.status,
		Plan:          s.plan,
		StoppedCommit: s.stoppedOn,
	}
	if len(s.conflicts) > 0 {
		st.ConflictingFiles = append([]string(nil), s.conflicts...)
		noun := "files"
		if len(s.conflicts) == 1 {
			noun = "file"
		}
		st.ConflictMessage = fmt.Sprintf("%d %s with merge conflicts", len(s.conflicts), noun)
	}
	return st
}

// RebaseState returns the current state for a repository root, reconciled
// against the backend. Blocks while a mutating operation is in flight so
// callers never observe a stale status.
func (m *Manager) RebaseState(ctx context.Context, repoRoot string) (State, error) {
	s, err := m.session(ctx, repoRoot)
	if err != nil {
		return State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A paused rebase survives process restarts; pick it up even when this
	// session never executed anything.
	if s.runner.IsRebaseInProgress(ctx) {
		if err := s.reconcileLocked(ctx); err != nil {
			return State{}, err
		}
		if err := s.persistLocked(); err != nil {
			return State{}, err
		}
	} else if s.status.Paused() {
		// Resolved and finished outside this process
		s.status = StatusCompleted
		s.plan = nil
		s.conflicts = nil
		s.stoppedOn = ""
		if err := s.persistLocked(); err != nil {
			return State{}, err
		}
	}

	return s.stateLocked(), nil
}

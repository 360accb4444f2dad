// Package errors provides sentinel errors and custom error types for the histedit application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrNoRepository indicates that a repository root could not be resolved
	ErrNoRepository = errors.New("not a git repository")

	// ErrDirtyWorkingTree indicates that uncommitted changes block the requested operation
	ErrDirtyWorkingTree = errors.New("working tree has uncommitted changes")

	// ErrNoCommitsToPlan indicates that the target branch is already up to date with the base
	ErrNoCommitsToPlan = errors.New("no commits to plan")

	// ErrInvalidTransition indicates that a disposition rule was violated
	ErrInvalidTransition = errors.New("invalid disposition transition")

	// ErrIncompletePlan indicates that the plan is not ready for execution
	ErrIncompletePlan = errors.New("plan is incomplete")

	// ErrBusy indicates that a mutating operation is already in flight for this repository
	ErrBusy = errors.New("operation already in progress")

	// ErrNoRebaseInProgress indicates that no rebase is currently in progress
	ErrNoRebaseInProgress = errors.New("no rebase in progress")

	// ErrNoSession indicates that no planning session exists for the repository
	ErrNoSession = errors.New("no planning session")
)

// InvalidTransitionError represents a rejected disposition edit
type InvalidTransitionError struct {
	CommitHash  string
	Disposition string
	Reason      string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot set %s on commit %s: %s", e.Disposition, e.CommitHash, e.Reason)
}

// Is returns true if the target error is ErrInvalidTransition
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// NewInvalidTransitionError creates a new InvalidTransitionError
func NewInvalidTransitionError(commitHash, disposition, reason string) *InvalidTransitionError {
	return &InvalidTransitionError{
		CommitHash:  commitHash,
		Disposition: disposition,
		Reason:      reason,
	}
}

// IncompletePlanError represents a plan that is not ready for execution
type IncompletePlanError struct {
	// MissingMessages lists commits marked reword without a replacement message
	MissingMessages []string
	Reason          string
}

func (e *IncompletePlanError) Error() string {
	if len(e.MissingMessages) > 0 {
		return fmt.Sprintf(
			"plan is incomplete: reword entries missing messages: %s",
			strings.Join(e.MissingMessages, ", "),
		)
	}
	return fmt.Sprintf("plan is incomplete: %s", e.Reason)
}

// Is returns true if the target error is ErrIncompletePlan
func (e *IncompletePlanError) Is(target error) bool {
	return target == ErrIncompletePlan
}

// BusyError represents a rejected concurrent mutating operation
type BusyError struct {
	RepoRoot  string
	Operation string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("another operation is already in progress for %s (attempted %s)", e.RepoRoot, e.Operation)
}

// Is returns true if the target error is ErrBusy
func (e *BusyError) Is(target error) bool {
	return target == ErrBusy
}

// NewBusyError creates a new BusyError
func NewBusyError(repoRoot, operation string) *BusyError {
	return &BusyError{RepoRoot: repoRoot, Operation: operation}
}

// DirtyWorkingTreeError represents an operation blocked by uncommitted changes
type DirtyWorkingTreeError struct {
	RepoRoot  string
	Operation string
}

func (e *DirtyWorkingTreeError) Error() string {
	return fmt.Sprintf("cannot %s: working tree at %s has uncommitted changes", e.Operation, e.RepoRoot)
}

// Is returns true if the target error is ErrDirtyWorkingTree
func (e *DirtyWorkingTreeError) Is(target error) bool {
	return target == ErrDirtyWorkingTree
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}

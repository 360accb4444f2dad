package engine

// Status is the lifecycle state of a rebase session
type Status int

const (
	// StatusIdle indicates no plan exists
	StatusIdle Status = iota
	// StatusPlanning indicates a plan exists but has not been executed
	StatusPlanning
	// StatusExecuting is the transient state while a backend call is in flight
	StatusExecuting
	// StatusPausedConflict indicates the backend is mid-rebase with unmerged files
	StatusPausedConflict
	// StatusPausedEdit indicates the backend is mid-rebase with a clean tree (an edit stop)
	StatusPausedEdit
	// StatusCompleted indicates the rebase finished; the old plan's hashes are invalid
	StatusCompleted
	// StatusAborted indicates the rebase was aborted and the branch restored
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPlanning:
		return "planning"
	case StatusExecuting:
		return "executing"
	case StatusPausedConflict:
		return "paused on conflict"
	case StatusPausedEdit:
		return "paused for edit"
	case StatusCompleted:
		return "completed"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Paused reports whether the backend is mid-rebase waiting on the user
func (s Status) Paused() bool {
	return s == StatusPausedConflict || s == StatusPausedEdit
}

// Package plan models the editable commit sequence for an interactive rebase.
// A plan holds commits in display order (newest first); execution order is the
// exact reverse, produced only by ExecutionInstructions.
package plan

import (
	"fmt"
	"strings"

	histediterrors "histedit.dev/histedit/internal/errors"
	"histedit.dev/histedit/internal/git"
)

// Entry wraps a commit with its disposition and an optional reword message
type Entry struct {
	Commit      git.Commit
	Disposition git.Disposition

	// rewordMessage replaces the original message when the entry is reworded.
	// The original message on Commit is never mutated.
	rewordMessage string
}

// Message returns the message the commit will carry after execution
func (e *Entry) Message() string {
	if e.Disposition == git.DispositionReword && e.rewordMessage != "" {
		return e.rewordMessage
	}
	return e.Commit.Message
}

// RewordMessage returns the pending replacement message, if any
func (e *Entry) RewordMessage() string {
	return e.rewordMessage
}

// Plan is the ordered, editable set of commits between base and target
type Plan struct {
	RepoRoot     string
	BaseBranch   string
	TargetBranch string

	// entries are in display order: newest first
	entries []Entry
}

// New creates a plan from commits in the backend's native order (oldest
// first). Every entry starts as a pick.
func New(repoRoot, baseBranch, targetBranch string, commits []git.Commit) *Plan {
	entries := make([]Entry, len(commits))
	for i, c := range commits {
		// Reverse into display order
		entries[len(commits)-1-i] = Entry{
			Commit:      c,
			Disposition: git.DispositionPick,
		}
	}

	return &Plan{
		RepoRoot:     repoRoot,
		BaseBranch:   baseBranch,
		TargetBranch: targetBranch,
		entries:      entries,
	}
}

// Len returns the number of entries in the plan
func (p *Plan) Len() int {
	return len(p.entries)
}

// Entries returns the entries in display order (newest first)
func (p *Plan) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// find locates an entry by full hash, short hash, or unique prefix
func (p *Plan) find(commitHash string) (*Entry, error) {
	var match *Entry
	for i := range p.entries {
		e := &p.entries[i]
		if e.Commit.Hash == commitHash || e.Commit.ShortHash == commitHash {
			return e, nil
		}
		if strings.HasPrefix(e.Commit.Hash, commitHash) {
			if match != nil {
				return nil, fmt.Errorf("commit %q is ambiguous in plan", commitHash)
			}
			match = e
		}
	}
	if match == nil {
		return nil, fmt.Errorf("commit %q not found in plan", commitHash)
	}
	return match, nil
}

// isOldest reports whether the entry executes first (last in display order)
func (p *Plan) isOldest(e *Entry) bool {
	return len(p.entries) > 0 && e == &p.entries[len(p.entries)-1]
}

// SetDisposition assigns a disposition to the commit. Squash and fixup are
// rejected on the first entry in execution order since there is no earlier
// commit to combine into; the plan is left unchanged on rejection. A reword
// message may be supplied here or later through SetMessage.
func (p *Plan) SetDisposition(commitHash string, disposition git.Disposition, message string) error {
	if !disposition.Valid() {
		return histediterrors.NewInvalidTransitionError(
			commitHash, string(disposition), "unknown disposition",
		)
	}

	entry, err := p.find(commitHash)
	if err != nil {
		return err
	}

	if disposition == git.DispositionSquash || disposition == git.DispositionFixup {
		if len(p.entries) == 1 {
			return histediterrors.NewInvalidTransitionError(
				entry.Commit.ShortHash, string(disposition),
				"plan has a single commit, nothing to combine into",
			)
		}
		if p.isOldest(entry) {
			return histediterrors.NewInvalidTransitionError(
				entry.Commit.ShortHash, string(disposition),
				"the oldest commit has no predecessor to combine into",
			)
		}
	}

	entry.Disposition = disposition
	if disposition == git.DispositionReword {
		entry.rewordMessage = message
	} else {
		entry.rewordMessage = ""
	}

	return nil
}

// SetMessage sets the replacement message for a reword entry
func (p *Plan) SetMessage(commitHash, message string) error {
	entry, err := p.find(commitHash)
	if err != nil {
		return err
	}

	if entry.Disposition != git.DispositionReword {
		return histediterrors.NewInvalidTransitionError(
			entry.Commit.ShortHash, string(entry.Disposition),
			"messages can only be set on reword entries",
		)
	}
	if strings.TrimSpace(message) == "" {
		return histediterrors.NewInvalidTransitionError(
			entry.Commit.ShortHash, string(entry.Disposition),
			"reword message cannot be empty",
		)
	}

	entry.rewordMessage = message
	return nil
}

// ResetAll restores every entry to a pick with its original message
func (p *Plan) ResetAll() {
	for i := range p.entries {
		p.entries[i].Disposition = git.DispositionPick
		p.entries[i].rewordMessage = ""
	}
}

// AdoptDispositions carries user edits over from a previous plan, matching
// entries by full hash. Used when the base branch changes and the plan is
// rebuilt; edits on commits that fell out of the new range are discarded.
// An adopted squash/fixup that would now land on the oldest entry is coerced
// back to pick so the plan stays valid.
func (p *Plan) AdoptDispositions(old *Plan) {
	if old == nil {
		return
	}

	byHash := make(map[string]Entry, len(old.entries))
	for _, e := range old.entries {
		byHash[e.Commit.Hash] = e
	}

	for i := range p.entries {
		prev, ok := byHash[p.entries[i].Commit.Hash]
		if !ok {
			continue
		}
		p.entries[i].Disposition = prev.Disposition
		p.entries[i].rewordMessage = prev.rewordMessage
	}

	if n := len(p.entries); n > 0 {
		oldest := &p.entries[n-1]
		if oldest.Disposition == git.DispositionSquash || oldest.Disposition == git.DispositionFixup {
			oldest.Disposition = git.DispositionPick
		}
	}
}

// ExecutionInstructions converts the plan into backend instructions in
// execution order: the exact reverse of display order, oldest commit first.
// Fails with an incomplete-plan error, before any backend call can happen,
// when the plan is empty or a reword entry has no message.
func (p *Plan) ExecutionInstructions() ([]git.RebaseInstruction, error) {
	if len(p.entries) == 0 {
		return nil, &histediterrors.IncompletePlanError{Reason: "plan has no commits"}
	}

	var missing []string
	for _, e := range p.entries {
		if e.Disposition == git.DispositionReword && strings.TrimSpace(e.rewordMessage) == "" {
			missing = append(missing, e.Commit.ShortHash)
		}
	}
	if len(missing) > 0 {
		return nil, &histediterrors.IncompletePlanError{MissingMessages: missing}
	}

	instructions := make([]git.RebaseInstruction, 0, len(p.entries))
	for i := len(p.entries) - 1; i >= 0; i-- {
		e := p.entries[i]
		instructions = append(instructions, git.RebaseInstruction{
			CommitHash:  e.Commit.Hash,
			Disposition: e.Disposition,
			Message:     e.rewordMessage,
		})
	}

	return instructions, nil
}

package plan

import "histedit.dev/histedit/internal/git"

// Snapshot is the serializable form of a plan, used to carry a planning
// session across processes. Entries are in display order.
type Snapshot struct {
	RepoRoot     string          `json:"repoRoot"`
	BaseBranch   string          `json:"baseBranch"`
	TargetBranch string          `json:"targetBranch"`
	Entries      []EntrySnapshot `json:"entries"`
}

// EntrySnapshot is the serializable form of a plan entry
type EntrySnapshot struct {
	Commit        git.Commit      `json:"commit"`
	Disposition   git.Disposition `json:"disposition"`
	RewordMessage string          `json:"rewordMessage,omitempty"`
}

// Snapshot captures the plan, including pending reword messages
func (p *Plan) Snapshot() *Snapshot {
	entries := make([]EntrySnapshot, len(p.entries))
	for i, e := range p.entries {
		entries[i] = EntrySnapshot{
			Commit:        e.Commit,
			Disposition:   e.Disposition,
			RewordMessage: e.rewordMessage,
		}
	}

	return &Snapshot{
		RepoRoot:     p.RepoRoot,
		BaseBranch:   p.BaseBranch,
		TargetBranch: p.TargetBranch,
		Entries:      entries,
	}
}

// FromSnapshot reconstructs a plan from a snapshot
func FromSnapshot(s *Snapshot) *Plan {
	entries := make([]Entry, len(s.Entries))
	for i, es := range s.Entries {
		entries[i] = Entry{
			Commit:        es.Commit,
			Disposition:   es.Disposition,
			rewordMessage: es.RewordMessage,
		}
	}

	return &Plan{
		RepoRoot:     s.RepoRoot,
		BaseBranch:   s.BaseBranch,
		TargetBranch: s.TargetBranch,
		entries:      entries,
	}
}

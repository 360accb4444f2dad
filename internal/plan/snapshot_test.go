package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"histedit.dev/histedit/internal/git"
)

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	p := New("/repo", "main", "feature", makeCommits(3))
	entries := p.Entries()
	require.NoError(t, p.SetDisposition(entries[0].Commit.Hash, git.DispositionSquash, ""))
	require.NoError(t, p.SetDisposition(entries[1].Commit.Hash, git.DispositionReword, "new subject"))

	restored := FromSnapshot(p.Snapshot())

	require.Equal(t, p.RepoRoot, restored.RepoRoot)
	require.Equal(t, p.BaseBranch, restored.BaseBranch)
	require.Equal(t, p.TargetBranch, restored.TargetBranch)
	require.Equal(t, p.Entries(), restored.Entries())

	// The pending reword message survives into execution instructions
	want, err := p.ExecutionInstructions()
	require.NoError(t, err)
	got, err := restored.ExecutionInstructions()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

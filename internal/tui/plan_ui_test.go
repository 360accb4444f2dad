package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"histedit.dev/histedit/internal/git"
)

func testRows() []PlanRow {
	return []PlanRow{
		{Hash: "ccc", ShortHash: "ccc", Subject: "third", Disposition: git.DispositionPick},
		{Hash: "bbb", ShortHash: "bbb", Subject: "second", Disposition: git.DispositionPick},
		{Hash: "aaa", ShortHash: "aaa", Subject: "first", Disposition: git.DispositionPick},
	}
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestPlanEditorSetsDispositions(t *testing.T) {
	t.Parallel()

	m := newPlanEditorModel(testRows())

	updated, _ := m.Update(keyPress('s'))
	m = updated.(planEditorModel)
	require.Equal(t, git.DispositionSquash, m.rows[0].Disposition)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(planEditorModel)
	updated, _ = m.Update(keyPress('d'))
	m = updated.(planEditorModel)
	require.Equal(t, git.DispositionDrop, m.rows[1].Disposition)
}

func TestPlanEditorRejectsSquashOnOldestRow(t *testing.T) {
	t.Parallel()

	m := newPlanEditorModel(testRows())
	m.cursor = 2

	updated, _ := m.Update(keyPress('s'))
	m = updated.(planEditorModel)
	require.Equal(t, git.DispositionPick, m.rows[2].Disposition)
	require.NotEmpty(t, m.notice)

	// Single-row plans reject squash too
	single := newPlanEditorModel(testRows()[:1])
	updated, _ = single.Update(keyPress('f'))
	single = updated.(planEditorModel)
	require.Equal(t, git.DispositionPick, single.rows[0].Disposition)
}

func TestPlanEditorRewordCapturesMessage(t *testing.T) {
	t.Parallel()

	m := newPlanEditorModel(testRows())

	updated, _ := m.Update(keyPress('r'))
	m = updated.(planEditorModel)
	require.True(t, m.rewording)

	for _, r := range "better title" {
		updated, _ = m.Update(keyPress(r))
		m = updated.(planEditorModel)
	}
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(planEditorModel)

	require.False(t, m.rewording)
	require.Equal(t, git.DispositionReword, m.rows[0].Disposition)
	require.Equal(t, "better title", m.rows[0].Message)
}

func TestPlanEditorEscBacksOutOfReword(t *testing.T) {
	t.Parallel()

	m := newPlanEditorModel(testRows())

	updated, _ := m.Update(keyPress('r'))
	m = updated.(planEditorModel)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(planEditorModel)

	require.False(t, m.rewording)
	require.Equal(t, git.DispositionPick, m.rows[0].Disposition)
	require.Empty(t, m.rows[0].Message)
}

func TestPlanEditorConfirmBlocksOnMessagelessReword(t *testing.T) {
	t.Parallel()

	m := newPlanEditorModel(testRows())
	m.rows[1].Disposition = git.DispositionReword

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(planEditorModel)
	require.False(t, m.confirmed)
	require.NotEmpty(t, m.notice)
}

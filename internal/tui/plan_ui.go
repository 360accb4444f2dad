package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"histedit.dev/histedit/internal/git"
)

// PlanRow is one editable line of the plan editor, newest-first
type PlanRow struct {
	Hash        string
	ShortHash   string
	Subject     string
	Disposition git.Disposition
	Message     string
}

type planEditorKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Pick    key.Binding
	Reword  key.Binding
	Squash  key.Binding
	Fixup   key.Binding
	Drop    key.Binding
	Edit    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

func (k planEditorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Pick, k.Reword, k.Squash, k.Fixup, k.Drop, k.Edit, k.Confirm, k.Cancel}
}

func (k planEditorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Pick, k.Reword, k.Squash, k.Fixup, k.Drop, k.Edit},
		{k.Confirm, k.Cancel},
	}
}

var defaultPlanEditorKeys = planEditorKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Pick: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pick"),
	),
	Reword: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reword"),
	),
	Squash: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "squash"),
	),
	Fixup: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "fixup"),
	),
	Drop: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "drop"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("ctrl+c", "q", "esc"),
		key.WithHelp("q/esc", "cancel"),
	),
}

type planEditorStyles struct {
	title    lipgloss.Style
	cursor   lipgloss.Style
	selected lipgloss.Style
	dim      lipgloss.Style
	warning  lipgloss.Style
}

func newPlanEditorStyles() planEditorStyles {
	return planEditorStyles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginBottom(1),
		cursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
		selected: lipgloss.NewStyle().Bold(true),
		dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// planEditorModel is the bubbletea model for editing a rebase plan
type planEditorModel struct {
	rows      []PlanRow
	cursor    int
	confirmed bool
	canceled  bool
	rewording bool
	textInput textinput.Model
	notice    string
	styles    planEditorStyles
	keys      planEditorKeyMap
	help      help.Model
}

func newPlanEditorModel(rows []PlanRow) planEditorModel {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Width = 80

	return planEditorModel{
		rows:      rows,
		cursor:    0,
		textInput: ti,
		styles:    newPlanEditorStyles(),
		keys:      defaultPlanEditorKeys,
		help:      help.New(),
	}
}

func (m planEditorModel) Init() tea.Cmd {
	return nil
}

// isOldest reports whether the row at index is the oldest commit. Rows are
// newest-first, so the oldest is the last row.
func (m planEditorModel) isOldest(index int) bool {
	return index == len(m.rows)-1
}

func (m planEditorModel) setDisposition(disposition git.Disposition) (planEditorModel, tea.Cmd) {
	m.notice = ""

	if disposition == git.DispositionSquash || disposition == git.DispositionFixup {
		if len(m.rows) == 1 || m.isOldest(m.cursor) {
			m.notice = fmt.Sprintf("cannot %s: no earlier commit to merge into", disposition)
			return m, nil
		}
	}

	m.rows[m.cursor].Disposition = disposition

	if disposition == git.DispositionReword {
		m.rewording = true
		m.textInput.SetValue(m.rows[m.cursor].Message)
		m.textInput.Focus()
		return m, textinput.Blink
	}

	m.rows[m.cursor].Message = ""
	return m, nil
}

func (m planEditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.rewording {
		switch keyMsg.Type {
		case tea.KeyEnter:
			message := strings.TrimSpace(m.textInput.Value())
			if message == "" {
				m.notice = "reword message cannot be empty"
				return m, nil
			}
			m.rows[m.cursor].Message = message
			m.rewording = false
			m.notice = ""
			return m, nil
		case tea.KeyCtrlC, tea.KeyEsc:
			// Back out of the reword without changing the row
			m.rows[m.cursor].Disposition = git.DispositionPick
			m.rows[m.cursor].Message = ""
			m.rewording = false
			m.notice = ""
			return m, nil
		}

		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		m.canceled = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case key.Matches(keyMsg, m.keys.Pick):
		return m.setDisposition(git.DispositionPick)

	case key.Matches(keyMsg, m.keys.Reword):
		return m.setDisposition(git.DispositionReword)

	case key.Matches(keyMsg, m.keys.Squash):
		return m.setDisposition(git.DispositionSquash)

	case key.Matches(keyMsg, m.keys.Fixup):
		return m.setDisposition(git.DispositionFixup)

	case key.Matches(keyMsg, m.keys.Drop):
		return m.setDisposition(git.DispositionDrop)

	case key.Matches(keyMsg, m.keys.Edit):
		return m.setDisposition(git.DispositionEdit)

	case key.Matches(keyMsg, m.keys.Confirm):
		for _, row := range m.rows {
			if row.Disposition == git.DispositionReword && row.Message == "" {
				m.notice = fmt.Sprintf("reword on %s needs a message before confirming", row.ShortHash)
				return m, nil
			}
		}
		m.confirmed = true
		return m, tea.Quit
	}

	return m, nil
}

func (m planEditorModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("Edit Rebase Plan"))
	b.WriteString("\n")

	for i, row := range m.rows {
		cursor := "  "
		subjectStyle := lipgloss.NewStyle()
		if i == m.cursor {
			cursor = m.styles.cursor.Render("▸ ")
			subjectStyle = m.styles.selected
		}

		line := fmt.Sprintf("%s%-6s %s %s",
			cursor,
			ColorDisposition(row.Disposition),
			m.styles.dim.Render(row.ShortHash),
			subjectStyle.Render(row.Subject),
		)
		b.WriteString(line)

		if row.Disposition == git.DispositionReword && row.Message != "" {
			b.WriteString(m.styles.dim.Render(" → " + row.Message))
		}
		b.WriteString("\n")
	}

	if m.rewording {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("New message for %s:\n%s\n", m.rows[m.cursor].ShortHash, m.textInput.View()))
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.warning.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")

	return b.String()
}

// NewPlanEditorModel creates a tea.Model for a plan editor (used by stories/demo)
func NewPlanEditorModel(rows []PlanRow) tea.Model {
	return newPlanEditorModel(rows)
}

// RunPlanEditor runs the interactive plan editor and returns the edited rows
func RunPlanEditor(rows []PlanRow) ([]PlanRow, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return nil, err
	}

	m := newPlanEditorModel(rows)
	p := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	res := finalModel.(planEditorModel)
	if res.canceled {
		return nil, fmt.Errorf("plan edit canceled")
	}

	return res.rows, nil
}

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"histedit.dev/histedit/internal/git"
)

// dispositionColors maps each disposition to its display color
var dispositionColors = map[git.Disposition]lipgloss.Color{
	git.DispositionPick:   lipgloss.Color("2"), // Green
	git.DispositionReword: lipgloss.Color("3"), // Yellow
	git.DispositionSquash: lipgloss.Color("6"), // Cyan
	git.DispositionFixup:  lipgloss.Color("6"), // Cyan
	git.DispositionDrop:   lipgloss.Color("1"), // Red
	git.DispositionEdit:   lipgloss.Color("5"), // Magenta
}

// ColorDisposition colors a disposition label for plan rendering
func ColorDisposition(disposition git.Disposition) string {
	color, ok := dispositionColors[disposition]
	if !ok {
		return string(disposition)
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Render(string(disposition))
}

// ColorRed colors text red
func ColorRed(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("1")).
		Render(text)
}

// ColorYellow colors text yellow
func ColorYellow(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("3")).
		Render(text)
}

// ColorCyan colors text cyan
func ColorCyan(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("6")).
		Render(text)
}

// ColorDim colors text with the muted gray used for hashes and hints
func ColorDim(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Render(text)
}

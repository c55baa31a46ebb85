package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/menuboard/internal/models"
)

// Terminals have no alpha, so each glass opacity step maps to a solid panel color.
var (
	lightPanels = [len(models.OpacityLevels)]string{"#8c8c8c", "#a6a6a6", "#c2c2c2", "#dedede", "#f5f5f5"}
	darkPanels  = [len(models.OpacityLevels)]string{"#5c5c5c", "#454545", "#2e2e2e", "#1a1a1a", "#0d0d0d"}
)

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	panel   lipgloss.Style
	heading lipgloss.Style
	course  lipgloss.Style
	dish    lipgloss.Style
	large   lipgloss.Style
	footer  lipgloss.Style
	help    lipgloss.Style
}

// NewPalette builds the styles for a theme and opacity level. Out of range levels use the default.
func NewPalette(dark bool, opacity int) *Palette {
	if opacity < 0 || opacity >= len(lightPanels) {
		opacity = models.DefaultOpacityLevel
	}
	fg, muted, bg := "#1c1917", "#57534e", lightPanels[opacity]
	if dark {
		fg, muted, bg = "#fafaf9", "#d6d3d1", darkPanels[opacity]
	}

	return &Palette{
		panel: lipgloss.NewStyle().
			Background(lipgloss.Color(bg)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(muted)).
			Padding(1, 4).
			Align(lipgloss.Center),
		heading: NewBold(fg).MarginBottom(1),
		course:  NewStyle(muted).MarginTop(1),
		dish:    NewStyle(fg),
		large:   NewBold(fg),
		footer:  NewEm(muted).MarginTop(1),
		help:    NewEm("#626262"),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

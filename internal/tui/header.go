package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header renders the title bar with the active query sources.
type Header struct {
	width   int
	sources []string

	titleStyle  lipgloss.Style
	sourceStyle lipgloss.Style
}

// NewHeader creates a new Header.
func NewHeader(sources []string) *Header {
	return &Header{
		width:   80,
		sources: sources,
		titleStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4")).
			Bold(true),
		sourceStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true),
	}
}

// SetWidth sets the header width.
func (h *Header) SetWidth(width int) {
	h.width = width
}

// View renders the header.
func (h *Header) View() string {
	title := h.titleStyle.Render("switchyard search")
	sources := "all enabled query providers"
	if len(h.sources) > 0 {
		sources = strings.Join(h.sources, ", ")
	}
	return lipgloss.NewStyle().Width(h.width).Render(title + "  " + h.sourceStyle.Render(sources))
}

// Height returns the header height in lines.
func (h *Header) Height() int {
	return 1
}

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Footer renders the status line and keyboard hints.
type Footer struct {
	message string
	failed  bool
	busy    bool
	width   int

	// Styles
	successStyle   lipgloss.Style
	errorStyle     lipgloss.Style
	hintStyle      lipgloss.Style
	separatorStyle lipgloss.Style
}

// NewFooter creates a new Footer instance.
func NewFooter() *Footer {
	return &Footer{
		successStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("28")).
			Bold(true),

		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),

		hintStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		separatorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("236")),
	}
}

// SetMessage sets the status message. failed selects the error style.
func (f *Footer) SetMessage(message string, failed bool) {
	f.message = message
	f.failed = failed
}

// SetBusy marks a query as in flight.
func (f *Footer) SetBusy(busy bool) {
	f.busy = busy
}

// Message returns the current status message.
func (f *Footer) Message() string {
	return f.message
}

// SetWidth sets the footer width.
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// View renders the footer.
func (f *Footer) View() string {
	var left string
	switch {
	case f.busy:
		left = f.hintStyle.Render("⏳ " + f.message)
	case f.failed:
		left = f.errorStyle.Render("✗ " + f.message)
	case f.message != "":
		left = f.successStyle.Render(f.message)
	}

	right := f.hintStyle.Render("enter search │ ↑/↓ hits │ pgup/pgdn scroll │ esc quit")
	if left == "" {
		return right
	}
	return left + f.separatorStyle.Render(" │ ") + right
}

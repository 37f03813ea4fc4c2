package tui

import "github.com/charmbracelet/lipgloss/v2"

// Theme centralizes Lip Gloss styles for the task UI.
type Theme struct {
	Header   lipgloss.Style
	Meta     lipgloss.Style
	Selected lipgloss.Style
	Done     lipgloss.Style
	Due      lipgloss.Style
	Overdue  lipgloss.Style
	Tip      lipgloss.Style
	Help     lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Frame    lipgloss.Style
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	return Theme{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Meta:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Due:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Overdue:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Tip:      lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("86")),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("212")).
			Padding(0, 1),
	}
}

package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mosaicfin/reconpilot/internal/model"
)

// Styles holds the lipgloss styles for the dashboard.
type Styles struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Muted       lipgloss.Style
	Selected    lipgloss.Style
	Panel       lipgloss.Style
	PanelTitle  lipgloss.Style
	StatusStyle map[model.Status]lipgloss.Style
	RoleStyle   map[model.Role]lipgloss.Style
	Error       lipgloss.Style
}

// DefaultStyles returns the default dashboard styling.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		StatusStyle: map[model.Status]lipgloss.Style{
			model.StatusCleared:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			model.StatusFailed:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
			model.StatusRectifying: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			model.StatusRectified:  lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		},
		RoleStyle: map[model.Role]lipgloss.Style{
			model.RoleAuditor:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
			model.RoleLiaison:    lipgloss.NewStyle().Foreground(lipgloss.Color("135")),
			model.RoleController: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			model.RoleSystem:     lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		},
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
	}
}

// renderStatus renders a status with its color.
func (s Styles) renderStatus(status model.Status) string {
	if style, ok := s.StatusStyle[status]; ok {
		return style.Render(string(status))
	}
	return string(status)
}

// renderRole renders a role with its color.
func (s Styles) renderRole(role model.Role) string {
	if style, ok := s.RoleStyle[role]; ok {
		return style.Render(string(role))
	}
	return string(role)
}

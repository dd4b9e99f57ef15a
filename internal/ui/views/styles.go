package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the overlay
type Styles struct {
	Title       lipgloss.Style
	Target      lipgloss.Style
	Dim         lipgloss.Style
	Help        lipgloss.Style
	Scroll      lipgloss.Style
	Breadcrumb  lipgloss.Style
	Ancestors   lipgloss.Style
	Match       lipgloss.Style
	Disabled    lipgloss.Style
	Path        lipgloss.Style
	Submenu     lipgloss.Style
	SelectionBg lipgloss.Style
	StatusError lipgloss.Style
	StatusInfo  lipgloss.Style
	StatusLoad  lipgloss.Style
	StatusDone  lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		Target: lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		Dim:    lipgloss.NewStyle().Faint(true),
		Help:   lipgloss.NewStyle().Faint(true),
		Scroll:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Breadcrumb:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Ancestors:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Match:       lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Disabled:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Faint(true),
		Path:        lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		Submenu:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		SelectionBg: lipgloss.NewStyle().Background(lipgloss.Color("238")),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		StatusLoad:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")), // gray
		StatusDone:  lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
	}
}

// Package style provides the brand colors and icons shared by the logger and the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Ember = lipgloss.Color("#E4572E")
	Slate = lipgloss.Color("#667085")
	Green = lipgloss.Color("#22A06B")
	Red   = lipgloss.Color("#D93025")
	Amber = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dot     = "●"
)

// Styles used for the build summary.
var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(Ember)
	Muted    = lipgloss.NewStyle().Foreground(Slate)
	Success  = lipgloss.NewStyle().Foreground(Green)
	Failure  = lipgloss.NewStyle().Foreground(Red)
	FileName = lipgloss.NewStyle().Bold(true)
)

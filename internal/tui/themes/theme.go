package themes

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the dashboard.
type Theme struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Normal      lipgloss.Style
	Positive    lipgloss.Style
	Negative    lipgloss.Style
	StatusError lipgloss.Style
	StatusInfo  lipgloss.Style
	Panel       lipgloss.Style
	ActivePanel lipgloss.Style
	TableHeader lipgloss.Style
	TableCell   lipgloss.Style
	Selected    lipgloss.Style
	Primary     lipgloss.Color
	Muted       lipgloss.Color
	Border      lipgloss.Color
	Error       lipgloss.Color
	Success     lipgloss.Color
}

// TableStyles adapts the theme to a bubbles table.
func (t Theme) TableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = t.TableHeader
	s.Cell = t.TableCell
	s.Selected = t.Selected
	return s
}

func build(primary, secondary, fg, muted, border, success, warning, errColor, selectedFg lipgloss.Color) Theme {
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	return Theme{
		Primary: primary,
		Muted:   muted,
		Border:  border,
		Error:   errColor,
		Success: success,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		Subtitle: lipgloss.NewStyle().
			Foreground(secondary).
			Bold(true),
		Normal: lipgloss.NewStyle().
			Foreground(fg),
		Positive: lipgloss.NewStyle().
			Foreground(success),
		Negative: lipgloss.NewStyle().
			Foreground(errColor),
		StatusError: lipgloss.NewStyle().
			Foreground(errColor).
			Bold(true),
		StatusInfo: lipgloss.NewStyle().
			Foreground(warning).
			Italic(true),

		Panel:       panel,
		ActivePanel: panel.BorderForeground(primary),
		TableHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(secondary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(border).
			Padding(0, 1),
		TableCell: lipgloss.NewStyle().
			Foreground(fg).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Background(primary).
			Foreground(selectedFg).
			Bold(true),
	}
}

// Default is the default theme.
var Default = build(
	lipgloss.Color("#7c3aed"), // primary
	lipgloss.Color("#a78bfa"), // secondary
	lipgloss.Color("#fafafa"), // foreground
	lipgloss.Color("#737373"), // muted
	lipgloss.Color("#404040"), // border
	lipgloss.Color("#10b981"), // success
	lipgloss.Color("#f59e0b"), // warning
	lipgloss.Color("#ef4444"), // error
	lipgloss.Color("#fafafa"),
)

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(
	lipgloss.Color("#cba6f7"),
	lipgloss.Color("#f5c2e7"),
	lipgloss.Color("#cdd6f4"),
	lipgloss.Color("#6c7086"),
	lipgloss.Color("#45475a"),
	lipgloss.Color("#a6e3a1"),
	lipgloss.Color("#f9e2af"),
	lipgloss.Color("#f38ba8"),
	lipgloss.Color("#1e1e2e"),
)

// ByName looks up a theme by its configuration name. Unknown names fall
// back to Default.
func ByName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "catppuccin", "catppuccin-mocha", "mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}

// Package styles holds the terminal palette used by notifyctl.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette and pre-built styles.
type Theme struct {
	Primary lipgloss.Color // Purple - ids, headings

	// Text hierarchy (most to least prominent)
	FgBase   lipgloss.Color
	FgMuted  lipgloss.Color
	FgSubtle lipgloss.Color

	// Urgency colors
	Low      lipgloss.Color
	Normal   lipgloss.Color
	Critical lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color

	styles *Styles
}

// Styles contains pre-built lipgloss styles.
type Styles struct {
	Base    lipgloss.Style
	Muted   lipgloss.Style
	Subtle  lipgloss.Style
	Title   lipgloss.Style
	ID      lipgloss.Style
	Popup   lipgloss.Style // marker for notifications still shown as popups
	Success lipgloss.Style
	Warning lipgloss.Style

	urgency [3]lipgloss.Style
}

var defaultTheme = Theme{
	Primary: lipgloss.Color("#a78bfa"),

	FgBase:   lipgloss.Color("#c0c0c0"),
	FgMuted:  lipgloss.Color("#808080"),
	FgSubtle: lipgloss.Color("#585858"),

	Low:      lipgloss.Color("#808080"),
	Normal:   lipgloss.Color("#42b883"),
	Critical: lipgloss.Color("#ff5555"),

	Success: lipgloss.Color("#42b883"),
	Warning: lipgloss.Color("#f1a208"),
}

// T returns the default theme.
func T() *Theme {
	return &defaultTheme
}

// S returns the pre-built styles for this theme.
func (t *Theme) S() *Styles {
	if t.styles == nil {
		t.styles = t.buildStyles()
	}
	return t.styles
}

// Urgency returns the style for an urgency level. Unknown levels render as normal.
func (s *Styles) Urgency(level byte) lipgloss.Style {
	if int(level) >= len(s.urgency) {
		level = 1
	}
	return s.urgency[level]
}

func (t *Theme) buildStyles() *Styles {
	base := lipgloss.NewStyle().Foreground(t.FgBase)

	return &Styles{
		Base:   base,
		Muted:  lipgloss.NewStyle().Foreground(t.FgMuted),
		Subtle: lipgloss.NewStyle().Foreground(t.FgSubtle),
		Title:  base.Bold(true),
		ID: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),
		Popup:   lipgloss.NewStyle().Foreground(t.Warning),
		Success: lipgloss.NewStyle().Foreground(t.Success),
		Warning: lipgloss.NewStyle().Foreground(t.Warning),
		urgency: [3]lipgloss.Style{
			lipgloss.NewStyle().Foreground(t.Low),
			lipgloss.NewStyle().Foreground(t.Normal),
			lipgloss.NewStyle().Foreground(t.Critical).Bold(true),
		},
	}
}

package tui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Name     string
	Membrane lipgloss.Color
	Header   lipgloss.Color
	Accent   lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Graph    lipgloss.Color
}

var (
	ThemeCytoplasm = Theme{
		Name:     "cytoplasm",
		Membrane: lipgloss.Color("#5fd7af"),
		Header:   lipgloss.Color("86"),
		Accent:   lipgloss.Color("205"),
		Text:     lipgloss.Color("252"),
		Muted:    lipgloss.Color("240"),
		Graph:    lipgloss.Color("49"),
	}

	ThemePhosphor = Theme{
		Name:     "phosphor",
		Membrane: lipgloss.Color("#00ff00"),
		Header:   lipgloss.Color("#88ff88"),
		Accent:   lipgloss.Color("#ffff00"),
		Text:     lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
		Graph:    lipgloss.Color("#00cc00"),
	}

	ThemeMinimal = Theme{
		Name:     "minimal",
		Membrane: lipgloss.Color("#ffffff"),
		Header:   lipgloss.Color("#ffffff"),
		Accent:   lipgloss.Color("#0088ff"),
		Text:     lipgloss.Color("#cccccc"),
		Muted:    lipgloss.Color("#888888"),
		Graph:    lipgloss.Color("#0088ff"),
	}

	Themes = []Theme{ThemeCytoplasm, ThemePhosphor, ThemeMinimal}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

type styles struct {
	canvas, stats, header, label, value, active, graph, help lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Padding(canvasOffsetY, canvasOffsetX).Foreground(t.Membrane),
		stats:  lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Muted).Padding(1, 2).Width(sidebarWidth),
		header: lipgloss.NewStyle().Foreground(t.Header).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Muted).Width(14),
		value:  lipgloss.NewStyle().Foreground(t.Text),
		active: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		graph:  lipgloss.NewStyle().Foreground(t.Graph).Padding(1, 0),
		help:   lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
	}
}

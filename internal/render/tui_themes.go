package render

import (
	"github.com/charmbracelet/lipgloss"
)

// DefaultTUITheme is used when the configured theme is unknown
const DefaultTUITheme = "tokyonight"

// TUITheme is the color palette of the chat TUI
type TUITheme struct {
	Name string

	Border lipgloss.Color
	Title  lipgloss.Color

	// message roles
	User      lipgloss.Color
	Assistant lipgloss.Color
	Pending   lipgloss.Color

	Error   lipgloss.Color
	Text    lipgloss.Color
	TextDim lipgloss.Color
}

var tuiThemes = []TUITheme{
	{
		Name:      "tokyonight",
		Border:    lipgloss.Color("#414868"),
		Title:     lipgloss.Color("#bb9af7"),
		User:      lipgloss.Color("#7aa2f7"),
		Assistant: lipgloss.Color("#9ece6a"),
		Pending:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),
		Text:      lipgloss.Color("#c0caf5"),
		TextDim:   lipgloss.Color("#565f89"),
	},
	{
		Name:      "catppuccin",
		Border:    lipgloss.Color("#45475a"),
		Title:     lipgloss.Color("#cba6f7"),
		User:      lipgloss.Color("#89b4fa"),
		Assistant: lipgloss.Color("#a6e3a1"),
		Pending:   lipgloss.Color("#f9e2af"),
		Error:     lipgloss.Color("#f38ba8"),
		Text:      lipgloss.Color("#cdd6f4"),
		TextDim:   lipgloss.Color("#6c7086"),
	},
	{
		Name:      "nord",
		Border:    lipgloss.Color("#4c566a"),
		Title:     lipgloss.Color("#b48ead"),
		User:      lipgloss.Color("#88c0d0"),
		Assistant: lipgloss.Color("#a3be8c"),
		Pending:   lipgloss.Color("#ebcb8b"),
		Error:     lipgloss.Color("#bf616a"),
		Text:      lipgloss.Color("#eceff4"),
		TextDim:   lipgloss.Color("#7b88a1"),
	},
}

// TUIThemeByName looks up a palette; ok is false for unknown names
func TUIThemeByName(name string) (TUITheme, bool) {
	for _, t := range tuiThemes {
		if t.Name == name {
			return t, true
		}
	}
	return TUITheme{}, false
}

// ResolveTUITheme returns the named palette, falling back to the default
func ResolveTUITheme(name string) TUITheme {
	if t, ok := TUIThemeByName(name); ok {
		return t
	}
	t, _ := TUIThemeByName(DefaultTUITheme)
	return t
}

// TUIThemeNames lists the available palettes
func TUIThemeNames() []string {
	names := make([]string, len(tuiThemes))
	for i, t := range tuiThemes {
		names[i] = t.Name
	}
	return names
}

// Package tui provides the terminal user interface for chatwidget.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatwidget/internal/render"
)

// Palette colors, set by UpdateTheme
var (
	colorBorder    lipgloss.Color
	colorTitle     lipgloss.Color
	colorUser      lipgloss.Color
	colorAssistant lipgloss.Color
	colorPending   lipgloss.Color
	colorError     lipgloss.Color
	colorText      lipgloss.Color
	colorTextDim   lipgloss.Color
)

// Styles, rebuilt when the theme changes
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style

	messagesAreaStyle    lipgloss.Style
	closedPanelStyle     lipgloss.Style
	userLabelStyle       lipgloss.Style
	userBubbleStyle      lipgloss.Style
	assistantLabelStyle  lipgloss.Style
	assistantBubbleStyle lipgloss.Style
	pendingStyle         lipgloss.Style
	failureStyle         lipgloss.Style

	inputPanelStyle  lipgloss.Style
	inputLabelStyle  lipgloss.Style
	fieldErrorStyle  lipgloss.Style
	loadingStyle     lipgloss.Style
	statusBarStyle   lipgloss.Style
	statusKeyStyle   lipgloss.Style
	statusDescStyle  lipgloss.Style
	feedbackStyle    lipgloss.Style
	errorStyle       lipgloss.Style
	errorDetailStyle lipgloss.Style

	// config editor
	configPanelStyle        lipgloss.Style
	configSectionTitleStyle lipgloss.Style
	configCursorStyle       lipgloss.Style
	configMenuItemStyle     lipgloss.Style
	configMenuSelectedStyle lipgloss.Style
	configValueStyle        lipgloss.Style
	configEnabledStyle      lipgloss.Style
	configDisabledStyle     lipgloss.Style
	configPathStyle         lipgloss.Style
	configStatusOkStyle     lipgloss.Style
)

func init() {
	UpdateTheme(render.DefaultTUITheme)
}

// UpdateTheme switches the palette. Unknown names select the default theme.
func UpdateTheme(name string) {
	theme := render.ResolveTUITheme(name)

	colorBorder = theme.Border
	colorTitle = theme.Title
	colorUser = theme.User
	colorAssistant = theme.Assistant
	colorPending = theme.Pending
	colorError = theme.Error
	colorText = theme.Text
	colorTextDim = theme.TextDim

	rebuildStyles()
}

func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorTitle).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	closedPanelStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Italic(true).
		Align(lipgloss.Center)

	userLabelStyle = lipgloss.NewStyle().
		Foreground(colorUser).
		Bold(true).
		MarginLeft(4)

	userBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorUser).
		Padding(0, 1).
		MarginLeft(4)

	assistantLabelStyle = lipgloss.NewStyle().
		Foreground(colorAssistant).
		Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorAssistant).
		Foreground(colorText).
		Padding(0, 1).
		MarginRight(4)

	pendingStyle = lipgloss.NewStyle().
		Foreground(colorPending).
		Italic(true)

	failureStyle = lipgloss.NewStyle().
		Foreground(colorError)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorUser).
		Bold(true)

	fieldErrorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		PaddingLeft(2)

	loadingStyle = lipgloss.NewStyle().
		Foreground(colorPending).
		Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorText).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	feedbackStyle = lipgloss.NewStyle().
		Foreground(colorAssistant).
		Italic(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	errorDetailStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		PaddingLeft(2)

	configPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2)

	configSectionTitleStyle = lipgloss.NewStyle().
		Foreground(colorTitle).
		Bold(true)

	configCursorStyle = lipgloss.NewStyle().
		Foreground(colorUser).
		Bold(true)

	configMenuItemStyle = lipgloss.NewStyle().
		Foreground(colorText)

	configMenuSelectedStyle = lipgloss.NewStyle().
		Foreground(colorUser).
		Bold(true)

	configValueStyle = lipgloss.NewStyle().
		Foreground(colorPending)

	configEnabledStyle = lipgloss.NewStyle().
		Foreground(colorAssistant).
		Bold(true)

	configDisabledStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	configPathStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Italic(true)

	configStatusOkStyle = lipgloss.NewStyle().
		Foreground(colorAssistant)
}

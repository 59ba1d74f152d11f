package tui

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/render"
)

// configView represents the current view in the config menu
type configView int

const (
	viewMain configView = iota
	viewChoice
)

// configItem is one editable setting. Items without choices are on/off.
type configItem struct {
	label   string
	key     string
	choices []string
}

func configItems() []configItem {
	return []configItem{
		{label: "Verbose Logging", key: "verbose"},
		{label: "Copy to Clipboard", key: "copy_to_clipboard"},
		{label: "Markdown Emoji", key: "markdown.emoji"},
		{label: "Stream Mode", key: "stream_mode", choices: []string{config.StreamAppend, config.StreamCumulative}},
		{label: "Markdown Theme", key: "markdown.style", choices: render.MarkdownStyleNames()},
		{label: "TUI Theme", key: "theme", choices: render.TUIThemeNames()},
	}
}

// ConfigModel is the interactive settings editor
type ConfigModel struct {
	config       config.Config
	save         func(config.Config) error
	items        []configItem
	configPath   string
	cookiesPath  string
	cookiesExist bool

	// Navigation
	view         configView
	cursor       int
	choiceCursor int

	feedback string
	failed   bool

	width  int
	height int
	ready  bool
}

// NewConfigModel creates the editor for cfg; every change is written through save
func NewConfigModel(cfg config.Config, save func(config.Config) error) ConfigModel {
	configPath, _ := config.GetConfigPath()
	cookiesPath, _ := config.GetCookiesPath()

	cookiesExist := false
	if _, err := os.Stat(cookiesPath); err == nil {
		cookiesExist = true
	}

	return ConfigModel{
		config:       cfg,
		save:         save,
		items:        configItems(),
		configPath:   configPath,
		cookiesPath:  cookiesPath,
		cookiesExist: cookiesExist,
	}
}

// Init initializes the model
func (m ConfigModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m ConfigModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case feedbackClearMsg:
		m.feedback = ""
		m.failed = false

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.view == viewChoice {
				m.view = viewMain
				return m, nil
			}
			return m, tea.Quit

		case "up", "k":
			m.move(-1)

		case "down", "j":
			m.move(1)

		case "enter", " ":
			return m.handleSelect()
		}
	}

	return m, nil
}

// move steps the active cursor, wrapping at both ends
func (m *ConfigModel) move(delta int) {
	if m.view == viewChoice {
		n := len(m.items[m.cursor].choices)
		m.choiceCursor = (m.choiceCursor + delta + n) % n
		return
	}
	// the extra row is Exit
	n := len(m.items) + 1
	m.cursor = (m.cursor + delta + n) % n
}

// handleSelect handles menu item selection
func (m ConfigModel) handleSelect() (tea.Model, tea.Cmd) {
	if m.view == viewChoice {
		item := m.items[m.cursor]
		value := item.choices[m.choiceCursor]
		m.view = viewMain
		if m.apply(item.key, value) {
			m.feedback = fmt.Sprintf("%s set to %s", item.label, value)
		}
		return m, clearFeedback(feedbackTimeout)
	}

	if m.cursor == len(m.items) {
		return m, tea.Quit
	}

	item := m.items[m.cursor]
	current, _ := m.config.Get(item.key)
	if item.choices != nil {
		m.view = viewChoice
		m.choiceCursor = 0
		for i, c := range item.choices {
			if c == current {
				m.choiceCursor = i
				break
			}
		}
		return m, nil
	}

	on, _ := strconv.ParseBool(current)
	if m.apply(item.key, strconv.FormatBool(!on)) {
		m.feedback = fmt.Sprintf("%s %s", item.label, enabledWord(!on))
	}
	return m, clearFeedback(feedbackTimeout)
}

// apply sets key, saves the result and reports whether both succeeded
func (m *ConfigModel) apply(key, value string) bool {
	next := m.config
	if err := next.Set(key, value); err != nil {
		m.feedback, m.failed = fmt.Sprintf("Error: %v", err), true
		return false
	}
	if err := m.save(next); err != nil {
		m.feedback, m.failed = fmt.Sprintf("Error: %v", err), true
		return false
	}
	m.config = next
	m.failed = false
	if key == "theme" {
		UpdateTheme(next.Theme)
	}
	return true
}

func enabledWord(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

// View renders the TUI
func (m ConfigModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := max(m.width-4, 40)
	var sections []string

	sections = append(sections, headerStyle.Width(contentWidth).Render(titleStyle.Render("✦ Configuration")))

	cookiesStatus := errorStyle.Render("✗ not found")
	if m.cookiesExist {
		cookiesStatus = configStatusOkStyle.Render("✓ exists")
	}
	paths := lipgloss.JoinVertical(lipgloss.Left,
		configSectionTitleStyle.Render("Paths"),
		"   Config:  "+configPathStyle.Render(m.configPath),
		"   Cookies: "+configPathStyle.Render(m.cookiesPath)+"  "+cookiesStatus,
	)
	sections = append(sections, configPanelStyle.Width(contentWidth).Render(paths))

	var settings string
	if m.view == viewChoice {
		settings = m.renderChoices()
	} else {
		settings = m.renderMainMenu()
	}
	sections = append(sections, configPanelStyle.Width(contentWidth).Render(settings))

	switch {
	case m.failed:
		sections = append(sections, errorStyle.Render(m.feedback))
	case m.feedback != "":
		sections = append(sections, feedbackStyle.Render("✓ "+m.feedback))
	}

	sections = append(sections, m.renderStatusBar(contentWidth))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ConfigModel) row(selected bool, text string) string {
	if selected {
		return configCursorStyle.Render("▸ ") + configMenuSelectedStyle.Render(text)
	}
	return "  " + configMenuItemStyle.Render(text)
}

// renderMainMenu renders the main settings menu
func (m ConfigModel) renderMainMenu() string {
	lines := []string{configSectionTitleStyle.Render("Settings"), ""}

	for i, item := range m.items {
		current, _ := m.config.Get(item.key)
		value := configValueStyle.Render(current)
		if item.choices == nil {
			on, _ := strconv.ParseBool(current)
			value = configDisabledStyle.Render("disabled")
			if on {
				value = configEnabledStyle.Render("enabled")
			}
		}
		lines = append(lines, m.row(m.cursor == i, fmt.Sprintf("%-20s", item.label))+value)
	}

	lines = append(lines, "", m.row(m.cursor == len(m.items), "Exit"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderChoices renders the value list of the selected setting
func (m ConfigModel) renderChoices() string {
	item := m.items[m.cursor]
	current, _ := m.config.Get(item.key)

	lines := []string{configSectionTitleStyle.Render("Select " + item.label), ""}
	for i, choice := range item.choices {
		line := m.row(m.choiceCursor == i, choice)
		if choice == current {
			line += configStatusOkStyle.Render(" (current)")
		}
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderStatusBar renders the bottom status bar
func (m ConfigModel) renderStatusBar(width int) string {
	back := "Exit"
	if m.view == viewChoice {
		back = "Back"
	}
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"↑↓", "Navigate"},
		{"Enter", "Select"},
		{"Esc", back},
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// RunConfig starts the settings editor on the saved configuration
func RunConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	UpdateTheme(cfg.Theme)

	p := tea.NewProgram(NewConfigModel(cfg, config.SaveConfig), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

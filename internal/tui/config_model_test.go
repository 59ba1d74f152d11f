package tui

import (
	"errors"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/render"
)

// newTestConfigModel returns a sized editor whose saves are recorded
func newTestConfigModel(t *testing.T) (ConfigModel, *[]config.Config) {
	t.Helper()
	t.Setenv(config.EnvPrefix+"HOME", t.TempDir())

	var saved []config.Config
	m := NewConfigModel(config.DefaultConfig(), func(c config.Config) error {
		saved = append(saved, c)
		return nil
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(ConfigModel), &saved
}

func pressConfig(m ConfigModel, keys ...tea.KeyMsg) ConfigModel {
	for _, k := range keys {
		updated, _ := m.Update(k)
		m = updated.(ConfigModel)
	}
	return m
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

// cursorAt moves the main cursor to the item with key
func cursorAt(t *testing.T, m ConfigModel, key string) ConfigModel {
	t.Helper()
	for i, item := range m.items {
		if item.key == key {
			m.cursor = i
			return m
		}
	}
	t.Fatalf("no menu item for %q", key)
	return m
}

func TestNewConfigModel(t *testing.T) {
	m, _ := newTestConfigModel(t)

	if m.configPath == "" || m.cookiesPath == "" {
		t.Error("paths should be resolved")
	}
	if m.cookiesExist {
		t.Error("a fresh home has no cookies file")
	}
	if m.view != viewMain || m.cursor != 0 {
		t.Errorf("view = %v, cursor = %d", m.view, m.cursor)
	}
	if m.Init() != nil {
		t.Error("Init should return nil command")
	}
}

func TestConfigItems_AreSettable(t *testing.T) {
	keys := config.SettableKeys()
	for _, item := range configItems() {
		if !slices.Contains(keys, item.key) {
			t.Errorf("menu item %q is not a settable key", item.key)
		}
	}
}

func TestConfigModel_Navigation(t *testing.T) {
	m, _ := newTestConfigModel(t)

	m = pressConfig(m, keyUp)
	if m.cursor != len(m.items) {
		t.Errorf("up from the top should wrap to Exit, cursor = %d", m.cursor)
	}
	m = pressConfig(m, keyDown)
	if m.cursor != 0 {
		t.Errorf("down from Exit should wrap to the top, cursor = %d", m.cursor)
	}
	m = pressConfig(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if m.cursor != 1 {
		t.Errorf("j should move down, cursor = %d", m.cursor)
	}
}

func TestConfigModel_ToggleSaves(t *testing.T) {
	m, saved := newTestConfigModel(t)
	m = cursorAt(t, m, "copy_to_clipboard")

	updated, cmd := m.Update(keyEnter)
	m = updated.(ConfigModel)

	if !m.config.CopyToClipboard {
		t.Error("copy_to_clipboard should be enabled")
	}
	if len(*saved) != 1 || !(*saved)[0].CopyToClipboard {
		t.Errorf("saved = %+v", *saved)
	}
	if m.feedback != "Copy to Clipboard enabled" {
		t.Errorf("feedback = %q", m.feedback)
	}
	if cmd == nil {
		t.Error("feedback should be cleared later")
	}

	m = pressConfig(m, keyEnter)
	if m.config.CopyToClipboard || m.feedback != "Copy to Clipboard disabled" {
		t.Errorf("second toggle: value = %v, feedback = %q", m.config.CopyToClipboard, m.feedback)
	}

	updated, _ = m.Update(feedbackClearMsg{})
	if updated.(ConfigModel).feedback != "" {
		t.Error("feedback should clear")
	}
}

func TestConfigModel_ChoiceSelect(t *testing.T) {
	m, saved := newTestConfigModel(t)
	m = cursorAt(t, m, "stream_mode")

	m = pressConfig(m, keyEnter)
	if m.view != viewChoice {
		t.Fatalf("view = %v, want choice list", m.view)
	}
	if m.choiceCursor != 0 {
		t.Errorf("cursor should start on the current value, got %d", m.choiceCursor)
	}

	m = pressConfig(m, keyDown, keyEnter)
	if m.view != viewMain {
		t.Error("selecting returns to the main menu")
	}
	if m.config.StreamMode != config.StreamCumulative {
		t.Errorf("stream mode = %q", m.config.StreamMode)
	}
	if len(*saved) != 1 || (*saved)[0].StreamMode != config.StreamCumulative {
		t.Errorf("saved = %+v", *saved)
	}
	if !strings.Contains(m.feedback, "Stream Mode set to cumulative") {
		t.Errorf("feedback = %q", m.feedback)
	}
}

func TestConfigModel_ThemeAppliesImmediately(t *testing.T) {
	t.Cleanup(func() { UpdateTheme(render.DefaultTUITheme) })
	m, _ := newTestConfigModel(t)
	m = cursorAt(t, m, "theme")

	m = pressConfig(m, keyEnter)
	nord := slices.Index(m.items[m.cursor].choices, "nord")
	if nord < 0 {
		t.Fatal("nord theme missing")
	}
	m.choiceCursor = nord
	m = pressConfig(m, keyEnter)

	if m.config.Theme != "nord" {
		t.Errorf("theme = %q", m.config.Theme)
	}
	if want := render.ResolveTUITheme("nord").Title; colorTitle != want {
		t.Errorf("title color = %v, want %v", colorTitle, want)
	}
}

func TestConfigModel_SaveError(t *testing.T) {
	t.Setenv(config.EnvPrefix+"HOME", t.TempDir())
	m := NewConfigModel(config.DefaultConfig(), func(config.Config) error {
		return errors.New("disk full")
	})
	m = cursorAt(t, m, "verbose")

	m = pressConfig(m, keyEnter)
	if m.config.Verbose {
		t.Error("a failed save must not change the model")
	}
	if !m.failed || !strings.Contains(m.feedback, "disk full") {
		t.Errorf("failed = %v, feedback = %q", m.failed, m.feedback)
	}
}

func TestConfigModel_InvalidConfigRejected(t *testing.T) {
	m, saved := newTestConfigModel(t)
	m.config.BaseURL = "ftp://example.com"
	m = cursorAt(t, m, "verbose")

	m = pressConfig(m, keyEnter)
	if len(*saved) != 0 {
		t.Error("nothing should be saved while the config is invalid")
	}
	if !m.failed {
		t.Error("validation error should be reported")
	}
}

func TestConfigModel_Esc(t *testing.T) {
	m, _ := newTestConfigModel(t)
	m = cursorAt(t, m, "markdown.style")
	m = pressConfig(m, keyEnter)

	updated, cmd := m.Update(keyEsc)
	m = updated.(ConfigModel)
	if m.view != viewMain || cmd != nil {
		t.Errorf("esc in a choice list goes back, view = %v", m.view)
	}

	_, cmd = m.Update(keyEsc)
	if cmd == nil {
		t.Fatal("esc on the main menu should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.Quit")
	}
}

func TestConfigModel_Exit(t *testing.T) {
	m, _ := newTestConfigModel(t)
	m.cursor = len(m.items)

	_, cmd := m.Update(keyEnter)
	if cmd == nil {
		t.Fatal("Exit should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.Quit")
	}
}

func TestConfigModel_View(t *testing.T) {
	notReady := NewConfigModel(config.DefaultConfig(), nil)
	if !strings.Contains(notReady.View(), "Initializing") {
		t.Error("unsized editor should show the loading text")
	}

	m, _ := newTestConfigModel(t)
	view := m.View()
	for _, want := range []string{"Configuration", "config.json", "not found", "Verbose Logging", "disabled", "tokyonight", "append", "Exit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = cursorAt(t, m, "theme")
	m = pressConfig(m, keyEnter)
	view = m.View()
	for _, want := range []string{"Select TUI Theme", "catppuccin", "(current)", "Back"} {
		if !strings.Contains(view, want) {
			t.Errorf("choice view missing %q", want)
		}
	}
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatwidget/internal/config"
	apierrors "github.com/diogo/chatwidget/internal/errors"
	"github.com/diogo/chatwidget/internal/models"
	"github.com/diogo/chatwidget/internal/render"
	"github.com/diogo/chatwidget/internal/widget"
)

const (
	defaultTitle       = "Chat"
	defaultPlaceholder = "Type your message here..."
	feedbackTimeout    = 2 * time.Second
)

// Message types for the TUI
type (
	// changeMsg carries a widget change into the event loop
	changeMsg        widget.Change
	submitDoneMsg    struct{ err error }
	clearDoneMsg     struct{ err error }
	panelDoneMsg     struct{ err error }
	copiedMsg        struct{ err error }
	feedbackClearMsg struct{}
)

// writeClipboard is replaced in tests
var writeClipboard = clipboard.WriteAll

// Model is the chat TUI. It holds a snapshot of the widget and refreshes it
// whenever the widget reports a change; every widget action that may block
// runs in a tea.Cmd.
type Model struct {
	ctx    context.Context
	widget *widget.Widget
	render render.Options

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	title       string
	messages    []models.Message
	fieldErrors []string
	state       widget.State
	open        bool
	// alwaysOpen is set for panels without a toggle control
	alwaysOpen bool
	err        error
	feedback   string
	ready      bool

	width  int
	height int
}

// NewChatModel creates the chat TUI for a loaded widget
func NewChatModel(ctx context.Context, w *widget.Widget, opts render.Options) Model {
	cfg := w.Config()

	ta := textarea.New()
	ta.Placeholder = cfg.String(config.KeyPlaceholder, defaultPlaceholder)
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.SetHeight(1)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	m := Model{
		ctx:      ctx,
		widget:   w,
		render:   opts,
		textarea: ta,
		spinner:  s,
		title:    cfg.String(config.KeyChatTitle, defaultTitle),
	}
	m.refresh()
	return m
}

// Init opens the panel if it starts closed
func (m Model) Init() tea.Cmd {
	if m.open {
		return textarea.Blink
	}
	return tea.Batch(textarea.Blink, m.panelCmd(m.widget.Toggle))
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.open {
				return m, m.panelCmd(m.widget.ClosePanel)
			}
			return m, tea.Quit

		case "ctrl+o":
			return m, m.panelCmd(m.widget.Toggle)

		case "ctrl+l":
			m.err = nil
			return m, m.clearCmd()

		case "ctrl+y":
			return m.copyLastReply()

		case "pgup", "pgdown":
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd

		case "enter":
			return m.submit()
		}

		before := m.textarea.Value()
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		if value := m.textarea.Value(); value != before {
			if err := m.widget.Input(m.ctx, value); err != nil {
				m.err = err
			}
			m.syncInputHeight()
		}
		return m, tea.Batch(cmds...)

	case changeMsg:
		m.refresh()

	case submitDoneMsg:
		m.refresh()
		switch {
		case errors.Is(msg.err, apierrors.ErrSubmissionInFlight):
			m.feedback = "Wait for the current reply"
			cmds = append(cmds, clearFeedback(feedbackTimeout))
		case msg.err != nil:
			m.err = msg.err
		}

	case clearDoneMsg:
		m.refresh()
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.feedback = "Conversation cleared"
			cmds = append(cmds, clearFeedback(feedbackTimeout))
		}

	case panelDoneMsg:
		if errors.Is(msg.err, apierrors.ErrControlNotFound) {
			m.alwaysOpen = true
		} else if msg.err != nil {
			m.err = msg.err
		}
		m.refresh()

	case copiedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("copy to clipboard: %w", msg.err)
		} else {
			m.feedback = "Copied last reply"
			cmds = append(cmds, clearFeedback(feedbackTimeout))
		}

	case feedbackClearMsg:
		m.feedback = ""

	case spinner.TickMsg:
		if m.state.InFlight() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
			m.updateViewport()
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit hands the typed text to the widget and presses Enter in its field
func (m Model) submit() (tea.Model, tea.Cmd) {
	if !m.isOpen() {
		return m, m.panelCmd(m.widget.Toggle)
	}
	switch strings.TrimSpace(m.textarea.Value()) {
	case "/quit", "/exit":
		return m, tea.Quit
	}
	if m.state.InFlight() {
		m.feedback = "Wait for the current reply"
		return m, clearFeedback(feedbackTimeout)
	}

	m.err = nil
	if err := m.widget.Input(m.ctx, m.textarea.Value()); err != nil {
		m.err = err
		return m, nil
	}
	m.textarea.Reset()
	m.syncInputHeight()

	w, ctx := m.widget, m.ctx
	return m, tea.Batch(
		func() tea.Msg { return submitDoneMsg{err: w.KeyDown(ctx, "Enter", false)} },
		m.spinner.Tick,
	)
}

func (m Model) clearCmd() tea.Cmd {
	w, ctx := m.widget, m.ctx
	return func() tea.Msg {
		return clearDoneMsg{err: w.Clear(ctx)}
	}
}

func (m Model) panelCmd(action func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return panelDoneMsg{err: action(ctx)}
	}
}

func (m Model) copyLastReply() (tea.Model, tea.Cmd) {
	text, ok := lastReply(m.messages)
	if !ok {
		m.feedback = "No reply to copy"
		return m, clearFeedback(feedbackTimeout)
	}
	return m, func() tea.Msg {
		return copiedMsg{err: writeClipboard(text)}
	}
}

// lastReply returns the newest finished assistant reply
func lastReply(msgs []models.Message) (string, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		msg := msgs[i]
		if msg.Role != models.RoleAssistant || msg.Busy || msg.Content == models.FailureText {
			continue
		}
		return msg.Content, true
	}
	return "", false
}

func clearFeedback(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return feedbackClearMsg{}
	})
}

// refresh re-reads the widget snapshot
func (m *Model) refresh() {
	m.messages = m.widget.Messages()
	m.fieldErrors = m.widget.FieldErrors()
	m.state = m.widget.State()
	m.open = m.widget.IsOpen()
	m.syncInputHeight()
	if m.ready {
		m.updateViewport()
	}
}

func (m *Model) isOpen() bool {
	return m.open || m.alwaysOpen
}

// syncInputHeight follows the widget's auto-resized field
func (m *Model) syncInputHeight() {
	rows := max(1, m.widget.InputRows())
	if rows != m.textarea.Height() {
		m.textarea.SetHeight(rows)
		m.layout()
	}
}

// layout sizes the viewport around the fixed panels
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	headerHeight := 3
	inputHeight := m.textarea.Height() + 3
	statusHeight := 2
	panelChrome := 2

	vpHeight := max(3, m.height-headerHeight-inputHeight-statusHeight-panelChrome-len(m.fieldErrors))
	contentWidth := m.width - 2
	vpWidth := max(10, contentWidth-4)

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.viewport.KeyMap = viewport.KeyMap{
			PageDown: key.NewBinding(key.WithKeys("pgdown")),
			PageUp:   key.NewBinding(key.WithKeys("pgup")),
		}
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(vpWidth)
	m.widget.Resize(vpHeight, vpWidth)
	m.updateViewport()
}

// updateViewport re-renders the conversation and keeps it pinned to the bottom
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := max(10, m.viewport.Width-6)

	for i, msg := range m.messages {
		if i > 0 {
			content.WriteString("\n")
		}
		if msg.Role == models.RoleUser {
			content.WriteString(userLabelStyle.Render("You") + "\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(render.TrimBlankLines(msg.Content)))
		} else {
			content.WriteString(assistantLabelStyle.Render(m.title) + "\n")
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(m.renderReply(msg, bubbleWidth-4)))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

func (m Model) renderReply(msg models.Message, width int) string {
	switch {
	case msg.Busy:
		return pendingStyle.Render(m.spinner.View() + " " + strings.TrimSpace(msg.Content))
	case msg.Content == models.FailureText:
		return failureStyle.Render(msg.Content)
	}
	out, err := render.Message(msg, m.render.WithWidth(width))
	if err != nil {
		return render.Plain(render.TrimBlankLines(msg.Content), width)
	}
	return strings.TrimRight(out, "\n")
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Loading chat...")
	}

	contentWidth := m.width - 2
	var sections []string

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render(m.title),
		subtitleStyle.Render("  •  "+m.state.String()),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(header))

	var body string
	switch {
	case !m.isOpen():
		body = closedPanelStyle.Width(m.viewport.Width).Render("Chat is closed. Press Ctrl+O to open it.")
	case len(m.messages) == 0:
		body = closedPanelStyle.Width(m.viewport.Width).Render("Start a conversation by typing a message below")
	default:
		body = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.Width(contentWidth).Height(m.viewport.Height).Render(body))

	for _, e := range m.fieldErrors {
		sections = append(sections, fieldErrorStyle.Render("• "+e))
	}

	label := inputLabelStyle.Render("You")
	if m.state.InFlight() {
		label = loadingStyle.Render(m.spinner.View() + " waiting for reply")
	}
	input := lipgloss.JoinVertical(lipgloss.Left, label, m.textarea.View())
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(input))

	sections = append(sections, renderStatusBar(contentWidth))
	switch {
	case m.err != nil:
		sections = append(sections, formatError(m.err))
	case m.feedback != "":
		sections = append(sections, feedbackStyle.Render(m.feedback))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Alt+Enter", "Newline"},
		{"Ctrl+L", "Clear"},
		{"Ctrl+Y", "Copy"},
		{"Ctrl+O", "Toggle"},
		{"Esc", "Close"},
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// formatError renders an error with the details the error types carry
func formatError(err error) string {
	var sb strings.Builder
	sb.WriteString(errorStyle.Render("Error: " + err.Error()))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString("\n" + errorDetailStyle.Render(fmt.Sprintf("HTTP Status: %d", status)))
	}
	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString("\n" + errorDetailStyle.Render("Endpoint: "+endpoint))
	}

	var hint string
	switch {
	case apierrors.IsNetworkError(err):
		hint = "Check that the chat server is reachable"
	case apierrors.IsStreamError(err):
		hint = "The reply was interrupted. Send the message again"
	case apierrors.IsStatus(err, 403):
		hint = "The server rejected the session. Try 'chatwidget import-cookies'"
	}
	if hint != "" {
		sb.WriteString("\n" + errorDetailStyle.Render(hint))
	}
	return sb.String()
}

// RunChat starts the chat TUI against a loaded widget
func RunChat(ctx context.Context, w *widget.Widget, opts render.Options) error {
	p := tea.NewProgram(
		NewChatModel(ctx, w, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	// Send blocks until the event loop receives, and changes can fire from
	// inside Update
	unsubscribe := w.OnChange(func(c widget.Change) {
		go p.Send(changeMsg(c))
	})
	defer unsubscribe()

	_, err := p.Run()
	return err
}

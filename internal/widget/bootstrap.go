package widget

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/dom"
	apierrors "github.com/diogo/chatwidget/internal/errors"
)

// Load fetches the panel markup into the widget's isolation root, parses the
// embedded configuration and wires every controller. On failure nothing is
// wired and the widget stays unloaded.
func (w *Widget) Load(ctx context.Context) error {
	w.mu.Lock()
	if w.state != StateUnloaded {
		w.mu.Unlock()
		return apierrors.ErrAlreadyLoaded
	}
	w.setState(StateLoading)
	w.mu.Unlock()

	root, err := w.mount(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to load chat panel")
		w.mu.Lock()
		w.setState(StateUnloaded)
		w.mu.Unlock()
		return err
	}

	w.mu.Lock()
	w.root = root.node
	w.form = root.form
	w.clearForm = root.clearForm
	w.messages = root.messages
	w.toggle = root.toggle
	w.closer = root.closer
	w.config = root.config
	w.scroll.container = root.messages

	w.bindMessageForm(w.form)
	if w.clearForm != nil {
		w.listeners.Add(w.clearForm.Node, dom.EventSubmit, w.HandleClear)
	}
	if w.toggle != nil {
		w.listeners.Add(w.toggle, dom.EventClick, w.handleToggle)
	}
	if w.closer != nil {
		w.listeners.Add(w.closer, dom.EventClick, w.handleClose)
	}

	w.scroll.toBottom()
	w.setState(StateReady)
	state := w.state
	w.mu.Unlock()

	w.logger.Debug().
		Bool("render_markdown", root.config.RenderMarkdown()).
		Bool("clear_form", root.clearForm != nil).
		Msg("chat panel loaded")
	w.notify(ChangeLoaded, state)
	return nil
}

type mounted struct {
	node      *html.Node
	form      *dom.Form
	clearForm *dom.Form
	messages  *html.Node
	toggle    *html.Node
	closer    *html.Node
	config    config.WidgetConfig
}

// mount builds the isolation root and locates the panel's hooks. It touches
// no widget state.
func (w *Widget) mount(ctx context.Context) (*mounted, error) {
	markup, err := w.client.FetchPanel(ctx)
	if err != nil {
		return nil, apierrors.NewLoadError("fetch panel", err)
	}

	root := dom.NewElement(atom.Div)
	dom.SetAttr(root, "id", w.rootID)
	dom.SetAttr(root, "data-shadow-root", "open")
	if err := dom.SetInnerHTML(root, markup); err != nil {
		return nil, apierrors.NewLoadError("parse panel", err)
	}

	m := &mounted{node: root, config: config.DefaultWidgetConfig()}

	if script := dom.Find(root, dom.ByID(configScriptID)); script != nil {
		cfg, err := config.ParseWidgetConfig(dom.TextContent(script))
		if err != nil {
			w.logger.Warn().Err(err).Msg("ignoring malformed widget configuration")
		} else {
			m.config = cfg
		}
	}

	formNode := dom.Find(root, dom.MustSelect("form#"+messageFormID))
	if formNode == nil {
		return nil, apierrors.NewLoadError("locate message form",
			fmt.Errorf("%w: #%s", apierrors.ErrFormNotFound, messageFormID))
	}
	m.form = dom.NewForm(formNode)

	m.messages = dom.Find(root, dom.ByClass(messagesClass))
	if m.messages == nil {
		return nil, apierrors.NewLoadError("locate message list",
			fmt.Errorf("%w: .%s", apierrors.ErrControlNotFound, messagesClass))
	}

	if clearNode := dom.Find(root, dom.MustSelect("form#"+clearFormID)); clearNode != nil {
		m.clearForm = dom.NewForm(clearNode)
	}
	m.toggle = dom.Find(root, dom.ByClass(toggleClass))
	m.closer = dom.Find(root, dom.ByClass(closeClass))

	return m, nil
}

// bindMessageForm attaches the message form's handler set. The same set is
// attached to a replacement form after a validation failure. w.mu must be held.
func (w *Widget) bindMessageForm(form *dom.Form) {
	w.listeners.Add(form.Node, dom.EventSubmit, w.HandleSubmit)
	if field := form.Field(messageField); field != nil {
		w.listeners.Add(field, dom.EventInput, w.handleInput)
		w.listeners.Add(field, dom.EventKeyDown, w.handleKeyDown)
		autoResize(form)
	}
}

// unbindMessageForm detaches the handler set from a form being replaced.
// w.mu must be held.
func (w *Widget) unbindMessageForm(form *dom.Form) {
	if field := form.Field(messageField); field != nil {
		w.listeners.RemoveAll(field)
	}
	w.listeners.RemoveAll(form.Node)
}

func (w *Widget) handleInput(_ context.Context, ev *dom.Event) error {
	w.mu.Lock()
	if w.form == nil || !dom.Contains(w.form.Node, ev.Target) {
		w.mu.Unlock()
		return nil
	}
	autoResize(w.form)
	state := w.state
	w.mu.Unlock()

	w.notify(ChangeForm, state)
	return nil
}

// handleKeyDown submits the owning form on Enter without Shift
func (w *Widget) handleKeyDown(ctx context.Context, ev *dom.Event) error {
	if ev.Key != "Enter" || ev.Shift {
		return nil
	}
	ev.PreventDefault()

	w.mu.Lock()
	form := dom.Closest(ev.Target, dom.ByTag(atom.Form))
	w.mu.Unlock()
	if form == nil {
		return nil
	}
	return w.dispatch(ctx, &dom.Event{Type: dom.EventSubmit, Target: form})
}

func (w *Widget) handleToggle(_ context.Context, ev *dom.Event) error {
	ev.PreventDefault()
	w.mu.Lock()
	dom.ToggleClass(w.root, openClass)
	state := w.state
	w.mu.Unlock()

	w.notify(ChangeVisibility, state)
	return nil
}

func (w *Widget) handleClose(_ context.Context, ev *dom.Event) error {
	ev.PreventDefault()
	w.mu.Lock()
	dom.RemoveClass(w.root, openClass)
	state := w.state
	w.mu.Unlock()

	w.notify(ChangeVisibility, state)
	return nil
}

// autoResize sizes the message field to its content, within bounds
func autoResize(form *dom.Form) {
	field := form.Field(messageField)
	if field == nil || field.DataAtom != atom.Textarea {
		return
	}
	lines := strings.Count(form.Value(messageField), "\n") + 1
	rows := min(max(lines, minInputRows), maxInputRows)
	dom.SetAttr(field, "rows", strconv.Itoa(rows))
}

func inputRows(field *html.Node) int {
	if field == nil {
		return 0
	}
	rows, err := strconv.Atoi(dom.Attr(field, "rows"))
	if err != nil {
		return minInputRows
	}
	return rows
}

// Submit types text into the message field and submits the message form,
// as a user would. It returns once the submission cycle has finished.
func (w *Widget) Submit(ctx context.Context, text string) error {
	w.mu.Lock()
	if w.form == nil {
		w.mu.Unlock()
		return apierrors.ErrNotLoaded
	}
	if !w.form.SetValue(messageField, text) {
		w.mu.Unlock()
		return fmt.Errorf("%w: field %q", apierrors.ErrControlNotFound, messageField)
	}
	target := w.form.Node
	w.mu.Unlock()

	return w.dispatch(ctx, &dom.Event{Type: dom.EventSubmit, Target: target})
}

// Input types text into the message field, replacing what was there
func (w *Widget) Input(ctx context.Context, text string) error {
	w.mu.Lock()
	if w.form == nil {
		w.mu.Unlock()
		return apierrors.ErrNotLoaded
	}
	if !w.form.SetValue(messageField, text) {
		w.mu.Unlock()
		return fmt.Errorf("%w: field %q", apierrors.ErrControlNotFound, messageField)
	}
	field := w.form.Field(messageField)
	w.mu.Unlock()

	return w.dispatch(ctx, &dom.Event{Type: dom.EventInput, Target: field})
}

// KeyDown delivers a key press to the message field
func (w *Widget) KeyDown(ctx context.Context, key string, shift bool) error {
	w.mu.Lock()
	if w.form == nil {
		w.mu.Unlock()
		return apierrors.ErrNotLoaded
	}
	field := w.form.Field(messageField)
	w.mu.Unlock()
	if field == nil {
		return fmt.Errorf("%w: field %q", apierrors.ErrControlNotFound, messageField)
	}

	return w.dispatch(ctx, &dom.Event{Type: dom.EventKeyDown, Target: field, Key: key, Shift: shift})
}

// Clear submits the clear form
func (w *Widget) Clear(ctx context.Context) error {
	w.mu.Lock()
	if w.root == nil {
		w.mu.Unlock()
		return apierrors.ErrNotLoaded
	}
	if w.clearForm == nil {
		w.mu.Unlock()
		return fmt.Errorf("%w: #%s", apierrors.ErrFormNotFound, clearFormID)
	}
	target := w.clearForm.Node
	w.mu.Unlock()

	return w.dispatch(ctx, &dom.Event{Type: dom.EventSubmit, Target: target})
}

// Toggle clicks the panel's toggle control
func (w *Widget) Toggle(ctx context.Context) error {
	return w.click(ctx, func() *html.Node { return w.toggle }, toggleClass)
}

// ClosePanel clicks the panel's close control
func (w *Widget) ClosePanel(ctx context.Context) error {
	return w.click(ctx, func() *html.Node { return w.closer }, closeClass)
}

func (w *Widget) click(ctx context.Context, control func() *html.Node, class string) error {
	w.mu.Lock()
	if w.root == nil {
		w.mu.Unlock()
		return apierrors.ErrNotLoaded
	}
	target := control()
	w.mu.Unlock()
	if target == nil {
		return fmt.Errorf("%w: .%s", apierrors.ErrControlNotFound, class)
	}

	return w.dispatch(ctx, &dom.Event{Type: dom.EventClick, Target: target})
}

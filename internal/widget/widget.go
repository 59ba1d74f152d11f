// Package widget implements the embeddable chat widget: a headless panel
// that submits messages to a chat server and renders streamed replies.
//
// The widget owns its own HTML tree, rooted at an element carrying the
// widget's root ID. Controllers are bound to nodes of that tree as event
// listeners, the same way the browser widget binds them to DOM events.
package widget

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/diogo/chatwidget/internal/api"
	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/dom"
	"github.com/diogo/chatwidget/internal/models"
)

// Markup hooks the panel is expected to carry
const (
	messageFormID  = "chat-form"
	clearFormID    = "clear-form"
	configScriptID = "chat-config"
	messagesClass  = "chat__messages"
	sendClass      = "chat__send"
	toggleClass    = "chat__toggle"
	closeClass     = "chat__close"
	openClass      = "chat--open"
	messageField   = "message"
)

// Auto-resize bounds for the message field, in rows
const (
	minInputRows = 1
	maxInputRows = 6
)

// Client is the server side the widget talks to. *api.ChatClient implements it.
type Client interface {
	FetchPanel(ctx context.Context) (string, error)
	Submit(ctx context.Context, action string, data url.Values) (*api.Response, error)
	Clear(ctx context.Context, action string, data url.Values) (*api.Response, error)
}

var _ Client = (*api.ChatClient)(nil)

// ChangeKind says what part of the widget changed
type ChangeKind int

const (
	ChangeLoaded ChangeKind = iota
	ChangeMessages
	ChangeForm
	ChangeVisibility
	ChangeState
)

// Change is delivered to OnChange observers after every mutation
type Change struct {
	Kind  ChangeKind
	State State
}

// Widget is one chat widget instance
type Widget struct {
	client     Client
	logger     zerolog.Logger
	rootID     string
	streamMode string
	sanitizer  *bluemonday.Policy

	mu        sync.Mutex
	state     State
	root      *html.Node
	form      *dom.Form
	clearForm *dom.Form
	messages  *html.Node
	toggle    *html.Node
	closer    *html.Node
	config    config.WidgetConfig
	scroll    scroller
	listeners *dom.Listeners

	obsMu     sync.Mutex
	observers map[int]func(Change)
	nextObs   int
}

// Option configures a Widget
type Option func(*Widget)

// WithLogger sets the widget's logger
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Widget) {
		w.logger = logger
	}
}

// WithRootID sets the ID of the widget's isolation root
func WithRootID(id string) Option {
	return func(w *Widget) {
		if id != "" {
			w.rootID = id
		}
	}
}

// WithStreamMode selects how reply chunks combine: config.StreamAppend
// (default) or config.StreamCumulative
func WithStreamMode(mode string) Option {
	return func(w *Widget) {
		if mode != "" {
			w.streamMode = mode
		}
	}
}

// WithViewport sets the visible size of the message list
func WithViewport(rows, width int) Option {
	return func(w *Widget) {
		w.scroll.resize(rows, width)
	}
}

// New creates an unloaded widget. Call Load to fetch and wire the panel.
func New(client Client, opts ...Option) *Widget {
	w := &Widget{
		client:     client,
		logger:     zerolog.Nop(),
		rootID:     models.DefaultRootID,
		streamMode: config.StreamAppend,
		sanitizer:  newSanitizer(),
		config:     config.DefaultWidgetConfig(),
		scroll:     scroller{rows: 20},
		listeners:  dom.NewListeners(),
		observers:  make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With().Str("widget", w.rootID).Logger()
	return w
}

func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[a-zA-Z0-9+-]+$`)).OnElements("code")
	return p
}

// RootID returns the ID of the widget's isolation root
func (w *Widget) RootID() string {
	return w.rootID
}

// State returns the current lifecycle state
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Config returns the configuration embedded in the panel
func (w *Widget) Config() config.WidgetConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.config
}

// IsOpen reports whether the panel is toggled open
func (w *Widget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.root != nil && dom.HasClass(w.root, openClass)
}

// Messages returns a snapshot of the conversation view, oldest first. Content
// is the element's text as rendered, whitespace included.
func (w *Widget) Messages() []models.Message {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.messages == nil {
		return nil
	}
	formatted := w.config.RenderMarkdown()

	var out []models.Message
	for _, n := range dom.Children(w.messages) {
		role, ok := messageRole(n)
		if !ok {
			continue
		}
		msg := models.Message{
			Role:      role,
			Content:   dom.TextContent(n),
			Rendering: models.RenderingPlain,
			Busy:      dom.Attr(n, "aria-busy") == "true",
		}
		if formatted && role == models.RoleAssistant {
			msg.Rendering = models.RenderingFormatted
			msg.HTML = dom.InnerHTML(n)
		}
		out = append(out, msg)
	}
	return out
}

// HTML serialises the widget's tree
func (w *Widget) HTML() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.root == nil {
		return ""
	}
	return dom.OuterHTML(w.root)
}

// ScrollTop returns the message list's scroll offset
func (w *Widget) ScrollTop() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scroll.top
}

// MaxScroll returns the largest valid scroll offset
func (w *Widget) MaxScroll() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scroll.maxScroll()
}

// Resize changes the visible size of the message list
func (w *Widget) Resize(rows, width int) {
	w.mu.Lock()
	w.scroll.resize(rows, width)
	w.mu.Unlock()
}

// SendDisabled reports whether the message form's send control is disabled
func (w *Widget) SendDisabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.form == nil {
		return false
	}
	send := w.form.SubmitControl(sendClass)
	return send != nil && dom.HasAttr(send, "disabled")
}

// InputRows returns the current height of the message field
func (w *Widget) InputRows() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.form == nil {
		return 0
	}
	return inputRows(w.form.Field(messageField))
}

// FieldErrors returns the validation messages shown on the message form
func (w *Widget) FieldErrors() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.form == nil {
		return nil
	}
	var out []string
	for _, n := range dom.FindAll(w.form.Node, errorDecoration) {
		if text := strings.TrimSpace(dom.TextContent(n)); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// OnChange registers fn to run after every mutation. fn runs on the
// goroutine that caused the change and must not block. The returned func
// removes the observer.
func (w *Widget) OnChange(fn func(Change)) func() {
	w.obsMu.Lock()
	defer w.obsMu.Unlock()
	id := w.nextObs
	w.nextObs++
	w.observers[id] = fn
	return func() {
		w.obsMu.Lock()
		defer w.obsMu.Unlock()
		delete(w.observers, id)
	}
}

// notify must be called without w.mu held
func (w *Widget) notify(kind ChangeKind, state State) {
	w.obsMu.Lock()
	fns := make([]func(Change), 0, len(w.observers))
	for _, fn := range w.observers {
		fns = append(fns, fn)
	}
	w.obsMu.Unlock()

	for _, fn := range fns {
		fn(Change{Kind: kind, State: state})
	}
}

// setState moves the state machine; w.mu must be held
func (w *Widget) setState(to State) {
	if !w.state.CanTransition(to) {
		w.logger.Warn().Stringer("from", w.state).Stringer("to", to).Msg("invalid state transition")
		return
	}
	w.logger.Debug().Stringer("from", w.state).Stringer("to", to).Msg("state")
	w.state = to
}

func (w *Widget) dispatch(ctx context.Context, ev *dom.Event) error {
	return w.listeners.Dispatch(ctx, ev)
}

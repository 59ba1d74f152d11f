package dom

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/net/html"
)

// Event types dispatched by the widget.
const (
	EventSubmit  = "submit"
	EventClick   = "click"
	EventInput   = "input"
	EventKeyDown = "keydown"
)

// Event is a DOM-style event targeted at one node. Events do not bubble:
// listeners are bound to the node they care about.
type Event struct {
	Type   string
	Target *html.Node
	Key    string // keydown only
	Shift  bool   // keydown only

	defaultPrevented bool
}

// PreventDefault marks the event's default action as cancelled.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Listener handles an event. The returned error is diagnostic only.
type Listener func(ctx context.Context, ev *Event) error

// Listeners binds listeners to nodes by event type.
type Listeners struct {
	mu    sync.RWMutex
	bound map[*html.Node]map[string][]Listener
}

// NewListeners creates an empty listener table.
func NewListeners() *Listeners {
	return &Listeners{bound: make(map[*html.Node]map[string][]Listener)}
}

// Add binds l to events of type typ on n.
func (l *Listeners) Add(n *html.Node, typ string, fn Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	byType, ok := l.bound[n]
	if !ok {
		byType = make(map[string][]Listener)
		l.bound[n] = byType
	}
	byType[typ] = append(byType[typ], fn)
}

// RemoveAll unbinds every listener on n.
func (l *Listeners) RemoveAll(n *html.Node) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.bound, n)
}

// Count returns how many listeners of type typ are bound to n.
func (l *Listeners) Count(n *html.Node, typ string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.bound[n][typ])
}

// Dispatch runs the listeners bound to ev.Target for ev.Type, in binding
// order. The table lock is not held while listeners run, so a listener may
// rebind handlers on the nodes it swaps in.
func (l *Listeners) Dispatch(ctx context.Context, ev *Event) error {
	l.mu.RLock()
	fns := append([]Listener(nil), l.bound[ev.Target][ev.Type]...)
	l.mu.RUnlock()

	var errs []error
	for _, fn := range fns {
		if err := fn(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package widget

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry tracks the loaded widgets of a process by root ID, so several
// panels can live side by side without sharing nodes or listeners.
type Registry struct {
	mu      sync.RWMutex
	widgets map[string]*Widget
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{widgets: make(map[string]*Widget)}
}

// Mount creates and loads a widget, then registers it under its root ID.
// A widget that fails to load is not registered.
func (r *Registry) Mount(ctx context.Context, client Client, opts ...Option) (*Widget, error) {
	w := New(client, opts...)

	r.mu.Lock()
	if _, exists := r.widgets[w.RootID()]; exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("widget %q is already mounted", w.RootID())
	}
	// reserve the ID while loading
	r.widgets[w.RootID()] = nil
	r.mu.Unlock()

	if err := w.Load(ctx); err != nil {
		r.mu.Lock()
		delete(r.widgets, w.RootID())
		r.mu.Unlock()
		return nil, err
	}

	r.mu.Lock()
	r.widgets[w.RootID()] = w
	r.mu.Unlock()
	return w, nil
}

// Get returns the loaded widget with the given root ID
func (r *Registry) Get(rootID string) (*Widget, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w := r.widgets[rootID]
	return w, w != nil
}

// Unmount forgets a widget. It reports whether one was registered.
func (r *Registry) Unmount(rootID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.widgets[rootID]
	if !ok || w == nil {
		return false
	}
	delete(r.widgets, rootID)
	return true
}

// IDs returns the root IDs of the loaded widgets, sorted
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.widgets))
	for id, w := range r.widgets {
		if w != nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

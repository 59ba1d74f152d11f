package render

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/glamour"
)

// rendererPool keeps one sync.Pool of renderers per option set. A
// glamour.TermRenderer must not render concurrently, so renderers are
// borrowed rather than shared.
type rendererPool struct {
	mu    sync.RWMutex
	pools map[string]*sync.Pool
}

var globalPool = &rendererPool{
	pools: make(map[string]*sync.Pool),
}

func cacheKey(opts Options) string {
	return fmt.Sprintf("%s:%d:%t:%t:%t:%t",
		opts.Style,
		opts.Width,
		opts.EnableEmoji,
		opts.PreserveNewLines,
		opts.TableWrap,
		opts.InlineTableLinks,
	)
}

func (p *rendererPool) getPool(opts Options) *sync.Pool {
	key := cacheKey(opts)

	p.mu.RLock()
	pool, ok := p.pools[key]
	p.mu.RUnlock()
	if ok {
		return pool
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if pool, ok := p.pools[key]; ok {
		return pool
	}
	pool = &sync.Pool{
		New: func() any {
			renderer, err := createRenderer(opts)
			if err != nil {
				return nil
			}
			return renderer
		},
	}
	p.pools[key] = pool
	return pool
}

func (p *rendererPool) get(opts Options) (*glamour.TermRenderer, error) {
	if r, ok := p.getPool(opts).Get().(*glamour.TermRenderer); ok && r != nil {
		return r, nil
	}
	// New failed; surface the construction error
	return createRenderer(opts)
}

func (p *rendererPool) put(opts Options, renderer *glamour.TermRenderer) {
	if renderer == nil {
		return
	}
	p.getPool(opts).Put(renderer)
}

func createRenderer(opts Options) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}
	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(rendererOpts...)
}

// ClearCache drops every pooled renderer
func ClearCache() {
	globalPool.mu.Lock()
	globalPool.pools = make(map[string]*sync.Pool)
	globalPool.mu.Unlock()
}

// CacheSize returns the number of distinct option sets pooled
func CacheSize() int {
	globalPool.mu.RLock()
	defer globalPool.mu.RUnlock()
	return len(globalPool.pools)
}

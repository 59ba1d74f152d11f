package widget

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/chatwidget/internal/dom"
)

func TestBlockHeight(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  int
	}{
		{"empty", "", 10, 1},
		{"single line", "hello", 10, 1},
		{"two lines", "a\nb", 0, 2},
		{"trailing newline", "a\n", 0, 1},
		{"wrapped", strings.Repeat("x", 25), 10, 3},
		{"no wrap width", strings.Repeat("x", 25), 0, 1},
		{"wide runes", "日本語", 4, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, blockHeight(tt.text, tt.width))
		})
	}
}

func TestScroller(t *testing.T) {
	container, err := dom.ParseContainer(`<div class="chat__msg">one</div><div class="chat__msg">two
three</div>
<div class="chat__msg">four</div>`)
	require.NoError(t, err)

	s := scroller{container: container, rows: 2}
	assert.Equal(t, 4, s.scrollHeight())
	assert.Equal(t, 2, s.maxScroll())

	s.toBottom()
	assert.Equal(t, 2, s.top)

	s.resize(10, 0)
	assert.Equal(t, 0, s.top, "offset is clamped when the viewport grows")
	assert.Equal(t, 0, s.maxScroll())

	empty := scroller{rows: 5}
	assert.Equal(t, 0, empty.scrollHeight())
	empty.toBottom()
	assert.Equal(t, 0, empty.top)
}

// Every append, overwrite and clear leaves the list pinned to the bottom.
func TestScrollPinnedAfterEveryMutation(t *testing.T) {
	client := newFakeClient(panelMarkup)
	client.streams("line one\n", "line two\n", "line three\nline four")
	w := loadWidget(t, client, WithViewport(3, 20))
	assert.Equal(t, w.MaxScroll(), w.ScrollTop())

	var mu sync.Mutex
	var violations []string
	checks := 0
	w.OnChange(func(c Change) {
		if c.Kind != ChangeMessages {
			return
		}
		top, maxTop := w.ScrollTop(), w.MaxScroll()
		mu.Lock()
		defer mu.Unlock()
		checks++
		if top != maxTop {
			violations = append(violations, strings.Join(contents(w), " | "))
		}
	})

	require.NoError(t, w.Submit(context.Background(), "Tell me a story"))
	assert.Positive(t, w.ScrollTop())

	require.NoError(t, w.Clear(context.Background()))
	assert.Equal(t, 0, w.ScrollTop())

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, checks, 5)
	assert.Empty(t, violations)
}

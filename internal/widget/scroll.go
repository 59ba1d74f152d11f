package widget

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"

	"github.com/diogo/chatwidget/internal/dom"
)

// scroller models the message container's scroll extent in terminal rows.
// The content height is the wrapped line count of every message.
type scroller struct {
	container *html.Node
	rows      int // visible rows
	width     int // wrap width in cells; 0 disables wrapping
	top       int
}

func (s *scroller) scrollHeight() int {
	if s.container == nil {
		return 0
	}
	height := 0
	for _, c := range dom.Children(s.container) {
		height += blockHeight(dom.TextContent(c), s.width)
	}
	return height
}

func (s *scroller) maxScroll() int {
	return max(0, s.scrollHeight()-s.rows)
}

// toBottom pins the offset to its maximum.
func (s *scroller) toBottom() {
	s.top = s.maxScroll()
}

// resize changes the viewport, keeping the offset in range.
func (s *scroller) resize(rows, width int) {
	s.rows = max(1, rows)
	s.width = max(0, width)
	s.top = min(s.top, s.maxScroll())
}

// blockHeight is the number of rows a message occupies; never less than one.
func blockHeight(text string, width int) int {
	text = strings.TrimRight(text, "\n")
	rows := 0
	for _, line := range strings.Split(text, "\n") {
		w := runewidth.StringWidth(line)
		if width > 0 && w > width {
			rows += (w + width - 1) / width
			continue
		}
		rows++
	}
	return max(1, rows)
}

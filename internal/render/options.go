// Package render turns conversation messages into terminal output.
package render

import (
	"sort"

	"github.com/charmbracelet/glamour/styles"
)

// Options configures the markdown renderer
type Options struct {
	// Width is the wrap width in cells (default: 80)
	Width int

	// Style is a glamour standard style name or a path to a JSON style
	Style string

	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions returns the default configuration
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// WithWidth returns a copy of o wrapping at width
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns a copy of o using style
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

// MarkdownStyleNames lists glamour's built-in styles, sorted
func MarkdownStyleNames() []string {
	names := make([]string, 0, len(styles.DefaultStyles))
	for name := range styles.DefaultStyles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

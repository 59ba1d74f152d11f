package render

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/diogo/chatwidget/internal/models"
)

// Markdown renders markdown for terminal display with a pooled renderer
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// MarkdownWithWidth renders with default options at width
func MarkdownWithWidth(content string, width int) (string, error) {
	return Markdown(content, DefaultOptions().WithWidth(width))
}

// Message renders one conversation message. Formatted replies are styled
// as markdown; everything else is literal text wrapped to opts.Width.
func Message(msg models.Message, opts Options) (string, error) {
	if !msg.IsFormatted() || msg.HTML == "" {
		return Plain(TrimBlankLines(msg.Content), opts.Width), nil
	}
	md, err := HTMLToMarkdown(msg.HTML)
	if err != nil {
		return "", err
	}
	return Markdown(md, opts)
}

// Plain wraps text at width cells, breaking words only when they do not fit
func Plain(text string, width int) string {
	if width <= 0 {
		return text
	}
	return wrap.String(wordwrap.String(text, width), width)
}

// TrimBlankLines drops blank lines and trailing spaces around text while
// keeping the indentation of its first line
func TrimBlankLines(text string) string {
	text = strings.TrimRight(text, " \t\r\n")
	for {
		line, rest, found := strings.Cut(text, "\n")
		if !found || strings.TrimSpace(line) != "" {
			return text
		}
		text = rest
	}
}

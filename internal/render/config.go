package render

import (
	"os"

	"github.com/diogo/chatwidget/internal/config"
)

// OptionsFromConfig builds render options from the user configuration.
// GLAMOUR_STYLE takes precedence over the configured style.
func OptionsFromConfig(cfg config.Config, width int) Options {
	opts := DefaultOptions()
	if width > 0 {
		opts.Width = width
	}

	md := cfg.Markdown
	if md.Style != "" {
		opts.Style = md.Style
	}
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines
	opts.TableWrap = md.TableWrap
	opts.InlineTableLinks = md.InlineTableLinks

	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}
	return opts
}

package render

import (
	"testing"

	"github.com/diogo/chatwidget/internal/config"
)

func TestOptionsFromConfig(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")

	cfg := config.DefaultConfig()
	cfg.Markdown.Style = "light"
	cfg.Markdown.EnableEmoji = false
	cfg.Markdown.InlineTableLinks = true

	opts := OptionsFromConfig(cfg, 120)

	if opts.Width != 120 {
		t.Errorf("Width = %d, want 120", opts.Width)
	}
	if opts.Style != "light" {
		t.Errorf("Style = %s, want light", opts.Style)
	}
	if opts.EnableEmoji {
		t.Error("expected EnableEmoji=false")
	}
	if !opts.InlineTableLinks {
		t.Error("expected InlineTableLinks=true")
	}
}

func TestOptionsFromConfig_Defaults(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")

	cfg := config.DefaultConfig()
	cfg.Markdown.Style = ""

	opts := OptionsFromConfig(cfg, 0)
	if opts.Width != 80 {
		t.Errorf("Width = %d, want default 80", opts.Width)
	}
	if opts.Style != "dark" {
		t.Errorf("Style = %s, want dark", opts.Style)
	}
}

func TestOptionsFromConfig_EnvOverride(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "notty")

	opts := OptionsFromConfig(config.DefaultConfig(), 80)
	if opts.Style != "notty" {
		t.Errorf("Style = %s, want notty from env", opts.Style)
	}

	if _, err := Markdown("# Title", opts); err != nil {
		t.Fatalf("Markdown() with loaded options: %v", err)
	}
}

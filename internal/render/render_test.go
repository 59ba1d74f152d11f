package render

import (
	"strings"
	"testing"

	"github.com/diogo/chatwidget/internal/models"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Width != 80 {
		t.Errorf("expected Width=80, got %d", opts.Width)
	}
	if opts.Style != "dark" {
		t.Errorf("expected Style='dark', got %s", opts.Style)
	}
	if !opts.EnableEmoji || !opts.PreserveNewLines || !opts.TableWrap {
		t.Errorf("unexpected defaults: %+v", opts)
	}
	if opts.InlineTableLinks {
		t.Error("expected InlineTableLinks=false")
	}

	narrow := opts.WithWidth(40).WithStyle("light")
	if narrow.Width != 40 || narrow.Style != "light" {
		t.Errorf("With* = %+v", narrow)
	}
	if opts.Width != 80 {
		t.Error("With* must not modify the receiver")
	}
}

func TestMarkdown(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		width    int
		contains string
	}{
		{"heading", "# Hello World", 80, "Hello"},
		{"bold", "This is **bold** text", 80, "bold"},
		{"code_block", "```go\nfmt.Println(\"hello\")\n```", 80, "Println"},
		{"link", "[Link](https://example.com)", 80, "Link"},
		{"narrow_width", "# Long heading that should wrap", 40, "Long"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			output, err := MarkdownWithWidth(tc.input, tc.width)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(output, tc.contains) {
				t.Errorf("output should contain %q, got: %s", tc.contains, output)
			}
		})
	}
}

func TestMarkdownInvalidStyle(t *testing.T) {
	opts := DefaultOptions().WithStyle("nonexistent_style_path")
	if _, err := Markdown("# Test", opts); err == nil {
		t.Error("expected error for invalid style path")
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name     string
		msg      models.Message
		contains []string
		absent   []string
	}{
		{
			name:     "plain text stays literal",
			msg:      models.Message{Role: models.RoleAssistant, Content: "**not bold** <b>tag</b>", Rendering: models.RenderingPlain},
			contains: []string{"**not bold**", "<b>tag</b>"},
		},
		{
			name: "formatted reply is styled",
			msg: models.Message{
				Role:      models.RoleAssistant,
				Content:   "Hi there",
				HTML:      "<p>Hi <strong>there</strong></p>",
				Rendering: models.RenderingFormatted,
			},
			contains: []string{"Hi", "there"},
			absent:   []string{"<strong>", "<p>"},
		},
		{
			name:     "formatted without markup falls back to content",
			msg:      models.Message{Role: models.RoleAssistant, Content: "Thinking...", Rendering: models.RenderingFormatted},
			contains: []string{"Thinking..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Message(tt.msg, DefaultOptions().WithStyle("notty"))
			if err != nil {
				t.Fatalf("Message() error = %v", err)
			}
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output should contain %q, got: %q", s, out)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q, got: %q", s, out)
				}
			}
		})
	}
}

func TestPlain(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"no width", "one two three", 0, "one two three"},
		{"fits", "one two", 20, "one two"},
		{"word wrap", "one two three", 8, "one two\nthree"},
		{"long word is broken", "abcdefghij", 4, "abcd\nefgh\nij"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Plain(tt.text, tt.width); got != tt.want {
				t.Errorf("Plain() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrimBlankLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "hello", "hello"},
		{"indentation kept", "    indented code\nline two\n\n", "    indented code\nline two"},
		{"markup whitespace", "\n      Earlier answer\n    ", "      Earlier answer"},
		{"blank", " \n\t\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimBlankLines(tt.text); got != tt.want {
				t.Errorf("TrimBlankLines(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestMarkdownStyleNames(t *testing.T) {
	names := MarkdownStyleNames()
	for _, want := range []string{"dark", "light", "notty"} {
		found := false
		for _, n := range names {
			found = found || n == want
		}
		if !found {
			t.Errorf("MarkdownStyleNames() = %v, missing %q", names, want)
		}
	}
	for _, name := range names {
		if _, err := createRenderer(DefaultOptions().WithStyle(name)); err != nil {
			t.Errorf("style %q does not build a renderer: %v", name, err)
		}
	}
}

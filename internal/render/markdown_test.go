package render

import (
	"strings"
	"testing"
)

func TestHTMLToMarkdown(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{"paragraph", "<p>Hello world</p>", []string{"Hello world"}},
		{"inline styles", "<p>Hi <strong>there</strong>, <em>you</em> <del>old</del></p>", []string{"**there**", "*you*", "~old~"}},
		{"paragraphs", "<p>one</p>\n<p>two</p>", []string{"one\n\ntwo"}},
		{"heading", "<h2>Title</h2><p>body</p>", []string{"## Title", "body"}},
		{"inline code", "<p>run <code>go test</code></p>", []string{"run `go test`"}},
		{
			"code block",
			"<pre><code class=\"language-go\">x := 1\ny := 2\n</code></pre>",
			[]string{"```go\nx := 1\ny := 2", "```"},
		},
		{"link", `<p><a href="https://example.com">site</a></p>`, []string{"[site](https://example.com)"}},
		{"image", `<img src="a.png" alt="pic">`, []string{"![pic](a.png)"}},
		{"unordered list", "<ul>\n<li>a</li>\n<li>b</li>\n</ul>", []string{"- a", "- b"}},
		{"ordered list", `<ol><li>c</li><li>d</li></ol>`, []string{"1. c", "2. d"}},
		{"blockquote", "<blockquote><p>quoted</p></blockquote>", []string{"> quoted"}},
		{"rule", "<p>a</p><hr><p>b</p>", []string{"---"}},
		{
			"table",
			"<table><thead><tr><th>A</th><th>B</th></tr></thead><tbody><tr><td>1</td><td>2</td></tr></tbody></table>",
			[]string{"| A", "| 1", "---"},
		},
		{"plain text", "just text", []string{"just text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HTMLToMarkdown(tt.html)
			if err != nil {
				t.Fatalf("HTMLToMarkdown() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("HTMLToMarkdown() = %q, missing %q", got, want)
				}
			}
			if got != strings.TrimSpace(got) {
				t.Errorf("HTMLToMarkdown() = %q, want surrounding space trimmed", got)
			}
		})
	}
}

func TestHTMLToMarkdown_Empty(t *testing.T) {
	got, err := HTMLToMarkdown("")
	if err != nil {
		t.Fatalf("HTMLToMarkdown() error = %v", err)
	}
	if got != "" {
		t.Errorf("HTMLToMarkdown(\"\") = %q, want empty", got)
	}
}

package render

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
)

// HTMLToMarkdown converts reply markup into markdown for the terminal
// renderer. Tables and strikethrough follow GitHub's dialect, and a
// "language-*" class on code carries over to the fence.
func HTMLToMarkdown(markup string) (string, error) {
	converter := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		HorizontalRule:   "---",
		BulletListMarker: "-",
		CodeBlockStyle:   "fenced",
		Fence:            "```",
		EmDelimiter:      "*",
		StrongDelimiter:  "**",
	})
	converter.Use(plugin.GitHubFlavored())

	out, err := converter.ConvertString(markup)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

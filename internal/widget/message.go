package widget

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/diogo/chatwidget/internal/dom"
	"github.com/diogo/chatwidget/internal/models"
)

const (
	messageClass       = "chat__msg"
	messageClassPrefix = messageClass + "--"
)

// newMessageElement builds a detached message unit. text is always literal;
// markup in it is never interpreted.
func newMessageElement(text string, role models.Role) *html.Node {
	n := dom.NewElement(atom.Div, messageClass, messageClassPrefix+string(role))
	dom.SetTextContent(n, text)
	return n
}

// messageRole reads the author role back from a message element's classes.
func messageRole(n *html.Node) (models.Role, bool) {
	for _, class := range dom.Classes(n) {
		if role, ok := strings.CutPrefix(class, messageClassPrefix); ok {
			return models.Role(role), true
		}
	}
	return "", false
}

package widget

import (
	"golang.org/x/net/html"

	"github.com/diogo/chatwidget/internal/dom"
)

var errorDecoration = dom.MustSelect(".errorlist, .chat__error, .invalid-feedback")

// clearErrors strips validation decorations left on form by a previous
// attempt. Calling it on a clean form is a no-op.
func clearErrors(form *html.Node) {
	if form == nil {
		return
	}
	for _, n := range dom.FindAll(form, errorDecoration) {
		dom.Remove(n)
	}
	for _, n := range dom.FindAll(form, dom.ByAttr("aria-invalid")) {
		dom.RemoveAttr(n, "aria-invalid")
	}
}

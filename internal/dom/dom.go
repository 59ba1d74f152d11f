// Package dom provides a small element API over golang.org/x/net/html node
// trees: class lists, attributes, text and markup content, tree surgery and
// fragment parsing. A widget owns one tree and mutates it only through here.
package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NewElement creates a detached element with the given classes.
func NewElement(tag atom.Atom, classes ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: tag,
		Data:     tag.String(),
	}
	if len(classes) > 0 {
		AddClass(n, classes...)
	}
	return n
}

// Attr returns the value of the attribute key, or "" when absent.
func Attr(n *html.Node, key string) string {
	v, _ := LookupAttr(n, key)
	return v
}

// LookupAttr returns the value of the attribute key and whether it is present.
func LookupAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the attribute key is present.
func HasAttr(n *html.Node, key string) bool {
	_, ok := LookupAttr(n, key)
	return ok
}

// SetAttr sets (or replaces) the attribute key.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes the attribute key. Missing attributes are ignored.
func RemoveAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs
}

// ID returns the element's id attribute.
func ID(n *html.Node) string {
	return Attr(n, "id")
}

// Classes returns the element's class list.
func Classes(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

// HasClass reports whether the class list contains class.
func HasClass(n *html.Node, class string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass appends classes that are not yet present.
func AddClass(n *html.Node, classes ...string) {
	list := Classes(n)
	for _, c := range classes {
		if c == "" || HasClass(n, c) {
			continue
		}
		list = append(list, c)
		SetAttr(n, "class", strings.Join(list, " "))
	}
}

// RemoveClass drops class from the class list.
func RemoveClass(n *html.Node, class string) {
	if !HasClass(n, class) {
		return
	}
	var list []string
	for _, c := range Classes(n) {
		if c != class {
			list = append(list, c)
		}
	}
	if len(list) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(list, " "))
}

// ToggleClass flips class and returns whether it is now present.
func ToggleClass(n *html.Node, class string) bool {
	if HasClass(n, class) {
		RemoveClass(n, class)
		return false
	}
	AddClass(n, class)
	return true
}

// TextContent returns the concatenated text of n and all its descendants.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for ; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
				continue
			}
			walk(c.FirstChild)
		}
	}
	walk(n.FirstChild)
	return sb.String()
}

// SetTextContent replaces all children of n with a single literal text node.
func SetTextContent(n *html.Node, text string) {
	RemoveChildren(n)
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// SetInnerHTML parses markup in the context of n and replaces n's children.
func SetInnerHTML(n *html.Node, markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), contextFor(n))
	if err != nil {
		return fmt.Errorf("failed to parse markup: %w", err)
	}
	RemoveChildren(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// InnerHTML serialises the children of n.
func InnerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// OuterHTML serialises n itself.
func OuterHTML(n *html.Node) string {
	var buf bytes.Buffer
	_ = html.Render(&buf, n)
	return buf.String()
}

// ParseContainer parses a markup fragment into a detached <div>, the same
// way a browser would via a scratch element's innerHTML.
func ParseContainer(markup string) (*html.Node, error) {
	div := NewElement(atom.Div)
	if err := SetInnerHTML(div, markup); err != nil {
		return nil, err
	}
	return div, nil
}

// Remove detaches n from its parent. Detached nodes are ignored.
func Remove(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// ReplaceWith puts replacement at old's position and detaches old.
func ReplaceWith(old, replacement *html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	Remove(replacement)
	parent.InsertBefore(replacement, old)
	parent.RemoveChild(old)
}

// Append detaches child from any previous parent and appends it to n.
func Append(n, child *html.Node) {
	Remove(child)
	n.AppendChild(child)
}

// Contains reports whether n is root or one of its descendants.
func Contains(root, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

func contextFor(n *html.Node) *html.Node {
	if n != nil && n.Type == html.ElementNode {
		return &html.Node{Type: html.ElementNode, DataAtom: n.DataAtom, Data: n.Data}
	}
	return &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
}

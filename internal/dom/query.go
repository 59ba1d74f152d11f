package dom

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Matcher selects element nodes.
type Matcher = cascadia.Matcher

// MatcherFunc adapts a predicate to a Matcher.
type MatcherFunc func(*html.Node) bool

// Match reports whether n satisfies f.
func (f MatcherFunc) Match(n *html.Node) bool { return f(n) }

// Select compiles a CSS selector group such as "form#chat-form, .errorlist".
func Select(selector string) (Matcher, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, err
	}
	return sel, nil
}

// MustSelect is Select for selectors fixed at compile time.
func MustSelect(selector string) Matcher {
	return cascadia.MustCompile(selector)
}

// cssString quotes s as a CSS string literal.
func cssString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `, "\r", `\d `, "\f", `\c `)
	return `"` + r.Replace(s) + `"`
}

// attrSelector matches [key op "val"], falling back to test when the value
// cannot be expressed as a selector.
func attrSelector(key, op, val string, test func(*html.Node) bool) Matcher {
	sel, err := cascadia.Parse("[" + key + op + cssString(val) + "]")
	if err != nil {
		return MatcherFunc(test)
	}
	return sel
}

// ByID matches the element with the given id.
func ByID(id string) Matcher {
	return attrSelector("id", "=", id, func(n *html.Node) bool {
		return n.Type == html.ElementNode && ID(n) == id
	})
}

// ByClass matches elements carrying class.
func ByClass(class string) Matcher {
	if class == "" || strings.ContainsAny(class, " \t\n\r\f") {
		// [class~=""] and whitespace never match a single class token
		return MatcherFunc(func(*html.Node) bool { return false })
	}
	return attrSelector("class", "~=", class, func(n *html.Node) bool {
		return HasClass(n, class)
	})
}

// ByTag matches elements of the given tag.
func ByTag(tag atom.Atom) Matcher {
	return cascadia.MustCompile(tag.String())
}

// ByAttr matches elements that carry the attribute key.
func ByAttr(key string) Matcher {
	sel, err := cascadia.Parse("[" + key + "]")
	if err != nil {
		return MatcherFunc(func(n *html.Node) bool {
			return n.Type == html.ElementNode && HasAttr(n, key)
		})
	}
	return sel
}

// ByAttrValue matches elements whose attribute key equals val.
func ByAttrValue(key, val string) Matcher {
	return attrSelector(key, "=", val, func(n *html.Node) bool {
		v, ok := LookupAttr(n, key)
		return n.Type == html.ElementNode && ok && v == val
	})
}

// All matches when every matcher matches.
func All(ms ...Matcher) Matcher {
	return MatcherFunc(func(n *html.Node) bool {
		for _, m := range ms {
			if !m.Match(n) {
				return false
			}
		}
		return true
	})
}

// Any matches when at least one matcher matches.
func Any(ms ...Matcher) Matcher {
	return MatcherFunc(func(n *html.Node) bool {
		for _, m := range ms {
			if m.Match(n) {
				return true
			}
		}
		return false
	})
}

// Find returns the first descendant of root matching m, in document order.
func Find(root *html.Node, m Matcher) *html.Node {
	if root == nil {
		return nil
	}
	return cascadia.Query(root, m)
}

// FindAll returns every descendant of root matching m, in document order.
func FindAll(root *html.Node, m Matcher) []*html.Node {
	if root == nil {
		return nil
	}
	return cascadia.QueryAll(root, m)
}

// Closest returns n or its nearest ancestor matching m.
func Closest(n *html.Node, m Matcher) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && m.Match(n) {
			return n
		}
	}
	return nil
}

// Children returns the element children of n.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

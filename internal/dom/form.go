package dom

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Form wraps a <form> element and the values typed into its fields.
// Markup holds the default values; typed values override them until Reset.
type Form struct {
	Node   *html.Node
	values map[string]string
}

// NewForm wraps n, which should be a <form> element.
func NewForm(n *html.Node) *Form {
	return &Form{Node: n, values: make(map[string]string)}
}

// ID returns the form's id attribute.
func (f *Form) ID() string {
	return ID(f.Node)
}

// Action returns the raw action attribute (may be relative or empty).
func (f *Form) Action() string {
	return Attr(f.Node, "action")
}

// Method returns the upper-cased method, defaulting to POST.
func (f *Form) Method() string {
	m := strings.ToUpper(strings.TrimSpace(Attr(f.Node, "method")))
	if m == "" {
		return "POST"
	}
	return m
}

// Fields returns the named, enabled controls that take part in submission.
func (f *Form) Fields() []*html.Node {
	return FindAll(f.Node, func(n *html.Node) bool {
		if n.Type != html.ElementNode || Attr(n, "name") == "" || HasAttr(n, "disabled") {
			return false
		}
		switch n.DataAtom {
		case atom.Textarea, atom.Select:
			return true
		case atom.Input:
			switch strings.ToLower(Attr(n, "type")) {
			case "submit", "button", "reset", "image", "file":
				return false
			}
			return true
		}
		return false
	})
}

// Field returns the first control named name, or nil.
func (f *Form) Field(name string) *html.Node {
	for _, n := range f.Fields() {
		if Attr(n, "name") == name {
			return n
		}
	}
	return nil
}

// SetValue records a typed value for the named field. It reports false when
// the form has no such field.
func (f *Form) SetValue(name, value string) bool {
	if f.Field(name) == nil {
		return false
	}
	f.values[name] = value
	return true
}

// Value returns the current value of the named field.
func (f *Form) Value(name string) string {
	if v, ok := f.values[name]; ok {
		return v
	}
	if n := f.Field(name); n != nil {
		return defaultValue(n)
	}
	return ""
}

// Data captures the submission payload, like the browser's FormData.
func (f *Form) Data() url.Values {
	data := url.Values{}
	for _, n := range f.Fields() {
		name := Attr(n, "name")
		if n.DataAtom == atom.Input {
			switch strings.ToLower(Attr(n, "type")) {
			case "checkbox", "radio":
				if !HasAttr(n, "checked") {
					continue
				}
			}
		}
		if v, ok := f.values[name]; ok {
			data.Add(name, v)
			continue
		}
		data.Add(name, defaultValue(n))
	}
	return data
}

// Reset drops typed values so every field shows its markup default again.
func (f *Form) Reset() {
	f.values = make(map[string]string)
}

// SubmitControl returns the element carrying class, falling back to the
// first submit button of the form.
func (f *Form) SubmitControl(class string) *html.Node {
	if class != "" {
		if n := Find(f.Node, ByClass(class)); n != nil {
			return n
		}
	}
	return Find(f.Node, MatcherFunc(func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		typ := strings.ToLower(Attr(n, "type"))
		switch n.DataAtom {
		case atom.Button:
			return typ == "" || typ == "submit"
		case atom.Input:
			return typ == "submit"
		}
		return false
	}))
}

func defaultValue(n *html.Node) string {
	switch n.DataAtom {
	case atom.Textarea:
		return TextContent(n)
	case atom.Select:
		options := FindAll(n, ByTag(atom.Option))
		for _, o := range options {
			if HasAttr(o, "selected") {
				return optionValue(o)
			}
		}
		if len(options) > 0 {
			return optionValue(options[0])
		}
		return ""
	}
	if v, ok := LookupAttr(n, "value"); ok {
		return v
	}
	switch strings.ToLower(Attr(n, "type")) {
	case "checkbox", "radio":
		return "on"
	}
	return ""
}

func optionValue(o *html.Node) string {
	if v, ok := LookupAttr(o, "value"); ok {
		return v
	}
	return strings.TrimSpace(TextContent(o))
}

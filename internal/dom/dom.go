// Package dom wraps golang.org/x/net/html with the small query and mutation
// surface the xref processor and the bookmark validator need.
//
// Attribute names are matched case-insensitively. Attribute values are
// returned decoded: the parser resolves character references, so "&amp;"
// in markup reads back as "&".
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// ErrDetached is returned when replacing a node without a parent.
	ErrDetached = errors.New("dom: node has no parent")
)

// Document is a parsed HTML document.
type Document struct {
	root *html.Node
}

// Parse reads a complete HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString parses markup as a complete HTML document.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// Root returns the document node.
func (d *Document) Root() *Node {
	return wrap(d.root)
}

// Body returns the body element, or nil when the document has none.
func (d *Document) Body() *Node {
	var body *Node
	d.Walk(func(n *Node) bool {
		if n.Name() == "body" {
			body = n
			return false
		}
		return true
	})
	return body
}

// Walk visits every element in document order until fn returns false.
func (d *Document) Walk(fn func(*Node) bool) {
	walk(d.root, fn)
}

// Elements returns every element named name, in document order.
func (d *Document) Elements(name string) []*Node {
	name = strings.ToLower(name)
	return d.Filter(func(n *Node) bool { return n.Name() == name })
}

// Filter returns every element for which match returns true. The result is
// a snapshot, so callers may replace the returned nodes while iterating.
func (d *Document) Filter(match func(*Node) bool) []*Node {
	var out []*Node
	d.Walk(func(n *Node) bool {
		if match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Render writes the document back out as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func walk(n *html.Node, fn func(*Node) bool) bool {
	if n.Type == html.ElementNode && !fn(wrap(n)) {
		return false
	}
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		if !walk(child, fn) {
			return false
		}
		child = next
	}
	return true
}

// Node is an element or text node of a Document.
type Node struct {
	n *html.Node
}

func wrap(n *html.Node) *Node {
	if n == nil {
		return nil
	}
	return &Node{n: n}
}

// HTML exposes the underlying parser node.
func (n *Node) HTML() *html.Node { return n.n }

// Name is the lower-cased element name, empty for non-element nodes.
func (n *Node) Name() string {
	if n.n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.n.Data)
}

// Attr returns the decoded value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, attr := range n.n.Attr {
		if attr.Namespace == "" && strings.ToLower(attr.Key) == name {
			return attr.Val, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute or fallback when absent.
func (n *Node) AttrOr(name, fallback string) string {
	if value, ok := n.Attr(name); ok {
		return value
	}
	return fallback
}

// SetAttr sets or replaces an attribute.
func (n *Node) SetAttr(name, value string) {
	name = strings.ToLower(name)
	for i, attr := range n.n.Attr {
		if attr.Namespace == "" && strings.ToLower(attr.Key) == name {
			n.n.Attr[i].Val = value
			return
		}
	}
	n.n.Attr = append(n.n.Attr, html.Attribute{Key: name, Val: value})
}

// InnerText concatenates the decoded text of all descendant text nodes.
func (n *Node) InnerText() string {
	var buf strings.Builder
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.TextNode {
			buf.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(n.n)
	return buf.String()
}

// InnerHTML renders the children of n.
func (n *Node) InnerHTML() string {
	var buf bytes.Buffer
	for child := n.n.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&buf, child); err != nil {
			return ""
		}
	}
	return buf.String()
}

// OuterHTML renders n itself.
func (n *Node) OuterHTML() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n.n); err != nil {
		return ""
	}
	return buf.String()
}

// ReplaceWithHTML parses markup in the context of n's parent and puts the
// resulting nodes where n was.
func (n *Node) ReplaceWithHTML(markup string) error {
	parent := n.n.Parent
	if parent == nil {
		return ErrDetached
	}
	context := parent
	if context.Type != html.ElementNode {
		context = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return fmt.Errorf("dom: parse fragment: %w", err)
	}
	for _, node := range nodes {
		parent.InsertBefore(node, n.n)
	}
	parent.RemoveChild(n.n)
	return nil
}

// Package document models the structured document tree exchanged with the
// rich-text editing surface. The tree mirrors the editor's HTML form: element
// nodes carry a lowercase tag and attributes, text nodes carry text. Custom
// editor nodes (task lists, wiki links) are elements tagged with data-type.
package document

import (
	"sort"
	"strings"
)

// NodeType distinguishes element nodes from text nodes.
type NodeType uint8

const (
	ElementNode NodeType = iota
	TextNode
)

// Custom node data-type values understood by the editor.
const (
	TypeTaskList = "taskList"
	TypeTaskItem = "taskItem"
	TypeWikiLink = "wikiLink"
)

// Node is a single node of the document tree.
type Node struct {
	Type     NodeType
	Tag      string
	Attrs    map[string]string
	Text     string
	Children []*Node
}

// Document is an ordered list of top-level block nodes.
type Document struct {
	Children []*Node
}

// Elem builds an element node.
func Elem(tag string, attrs map[string]string, children ...*Node) *Node {
	return &Node{Type: ElementNode, Tag: tag, Attrs: attrs, Children: children}
}

// Text builds a text node.
func Text(s string) *Node {
	return &Node{Type: TextNode, Text: s}
}

// New builds a document from block nodes.
func New(children ...*Node) *Document {
	return &Document{Children: children}
}

// IsElement reports whether n is an element with the given tag.
func (n *Node) IsElement(tag string) bool {
	return n != nil && n.Type == ElementNode && n.Tag == tag
}

// Attr returns the attribute value and whether it is present.
func (n *Node) Attr(key string) (string, bool) {
	if n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[key]
	return v, ok
}

// SetAttr sets an attribute, allocating the map when needed.
func (n *Node) SetAttr(key, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = value
}

// DelAttr removes an attribute.
func (n *Node) DelAttr(key string) {
	delete(n.Attrs, key)
}

// DataType returns the data-type attribute, or "".
func (n *Node) DataType() string {
	v, _ := n.Attr("data-type")
	return v
}

// AttrKeys returns attribute names in sorted order.
func (n *Node) AttrKeys() []string {
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TextContent concatenates all descendant text.
func (n *Node) TextContent() string {
	if n.Type == TextNode {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// Clone deep-copies the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Type: n.Type, Tag: n.Tag, Text: n.Text}
	if n.Attrs != nil {
		out.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			out.Attrs[k] = v
		}
	}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Clone deep-copies the document.
func (d *Document) Clone() *Document {
	out := &Document{Children: make([]*Node, len(d.Children))}
	for i, c := range d.Children {
		out.Children[i] = c.Clone()
	}
	return out
}

// Walk visits every node depth first. Returning false from fn skips the
// node's children.
func (d *Document) Walk(fn func(n *Node) bool) {
	for _, c := range d.Children {
		walk(c, fn)
	}
}

func walk(n *Node, fn func(n *Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		walk(c, fn)
	}
}

var blockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "blockquote": true, "pre": true, "hr": true,
	"div": true, "table": true, "thead": true, "tbody": true, "tr": true, "th": true, "td": true,
}

// IsBlock reports whether tag is a block-level tag.
func IsBlock(tag string) bool {
	return blockTags[tag]
}

// atoms are leaf nodes that count as content even without text.
func isAtom(n *Node) bool {
	if n.Type != ElementNode {
		return false
	}
	switch n.Tag {
	case "img", "hr":
		return true
	}
	return n.DataType() == TypeWikiLink
}

// IsEmpty reports whether the document has no visible content: no
// non-whitespace text (non-breaking spaces count as whitespace) and no atom
// such as an image, rule or wiki link.
func (d *Document) IsEmpty() bool {
	empty := true
	d.Walk(func(n *Node) bool {
		if !empty {
			return false
		}
		if isAtom(n) {
			empty = false
			return false
		}
		// TrimSpace treats U+00A0 as space.
		if n.Type == TextNode && strings.TrimSpace(n.Text) != "" {
			empty = false
		}
		return true
	})
	return empty
}

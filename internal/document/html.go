package document

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var voidTags = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true,
}

var newlineTags = map[string]bool{
	"pre": true, "listing": true, "textarea": true,
}

// ParseHTML parses the editor's HTML form into a document. Parsing is
// tolerant: malformed markup yields a best-effort tree, never an error.
func ParseHTML(s string) *Document {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		// The tokenizer only fails on reader errors; a strings.Reader has none.
		return &Document{}
	}
	d := &Document{}
	for _, n := range nodes {
		if c := fromHTML(n); c != nil {
			d.Children = append(d.Children, c)
		}
	}
	return d
}

func fromHTML(n *html.Node) *Node {
	switch n.Type {
	case html.TextNode:
		return Text(n.Data)
	case html.ElementNode:
		out := &Node{Type: ElementNode, Tag: strings.ToLower(n.Data)}
		for _, a := range n.Attr {
			if a.Namespace != "" {
				continue
			}
			out.SetAttr(strings.ToLower(a.Key), a.Val)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if cc := fromHTML(c); cc != nil {
				out.Children = append(out.Children, cc)
			}
		}
		return out
	default:
		return nil
	}
}

// HTML renders the document in the editor's serialized form. Attributes are
// written in sorted order so output is deterministic.
func (d *Document) HTML() string {
	var b strings.Builder
	for _, c := range d.Children {
		RenderNode(&b, c)
	}
	return b.String()
}

// RenderNode writes a single node as HTML.
func RenderNode(b *strings.Builder, n *Node) {
	if n.Type == TextNode {
		b.WriteString(html.EscapeString(n.Text))
		return
	}
	b.WriteByte('<')
	b.WriteString(n.Tag)
	for _, k := range n.AttrKeys() {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(n.Attrs[k]))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if voidTags[n.Tag] {
		return
	}
	if newlineTags[n.Tag] && len(n.Children) > 0 {
		// The parser drops one newline right after these start tags.
		if first := n.Children[0]; first.Type == TextNode && strings.HasPrefix(first.Text, "\n") {
			b.WriteByte('\n')
		}
	}
	for _, c := range n.Children {
		RenderNode(b, c)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

// containerTags hold blocks, so whitespace-only text between children is
// incidental.
var containerTags = map[string]bool{
	"ul": true, "ol": true, "li": true, "blockquote": true, "div": true,
	"table": true, "thead": true, "tbody": true, "tr": true,
}

// Canonical returns a copy with incidental whitespace removed: adjacent text
// merged, whitespace runs collapsed outside pre, whitespace-only text
// dropped between blocks and block content trimmed at both ends.
func Canonical(d *Document) *Document {
	return &Document{Children: canonicalChildren(d.Clone().Children, true, false)}
}

func canonicalChildren(nodes []*Node, container, inPre bool) []*Node {
	var merged []*Node
	for _, n := range nodes {
		if n.Type == TextNode && len(merged) > 0 && merged[len(merged)-1].Type == TextNode {
			merged[len(merged)-1].Text += n.Text
			continue
		}
		merged = append(merged, n)
	}

	out := merged[:0]
	for _, n := range merged {
		if n.Type == TextNode {
			if !inPre {
				n.Text = collapseSpace(n.Text)
			}
			if container && strings.TrimSpace(n.Text) == "" {
				continue
			}
			out = append(out, n)
			continue
		}
		pre := inPre || n.Tag == "pre"
		n.Children = canonicalChildren(n.Children, containerTags[n.Tag], pre)
		if IsBlock(n.Tag) && !pre {
			trimEdges(n)
		}
		out = append(out, n)
	}
	return out
}

func trimEdges(n *Node) {
	if len(n.Children) == 0 {
		return
	}
	if first := n.Children[0]; first.Type == TextNode {
		first.Text = strings.TrimLeft(first.Text, " ")
	}
	if last := n.Children[len(n.Children)-1]; last.Type == TextNode {
		last.Text = strings.TrimRight(last.Text, " ")
	}
	kept := n.Children[:0]
	for _, c := range n.Children {
		if c.Type == TextNode && c.Text == "" {
			continue
		}
		kept = append(kept, c)
	}
	n.Children = kept
}

func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// Equal reports whether two documents are structurally equal, ignoring
// incidental whitespace and attribute order.
func Equal(a, b *Document) bool {
	ca, cb := Canonical(a), Canonical(b)
	return nodesEqual(ca.Children, cb.Children)
}

func nodesEqual(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !nodeEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func nodeEqual(a, b *Node) bool {
	if a.Type != b.Type || a.Tag != b.Tag || a.Text != b.Text {
		return false
	}
	if len(a.Attrs) != len(b.Attrs) {
		return false
	}
	for k, v := range a.Attrs {
		if bv, ok := b.Attrs[k]; !ok || bv != v {
			return false
		}
	}
	return nodesEqual(a.Children, b.Children)
}

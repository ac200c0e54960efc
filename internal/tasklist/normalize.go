// Package tasklist reshapes checkable lists into the editor's task list form
// and counts their items.
package tasklist

import (
	"strings"

	"github.com/mauropereiira/Moldavite-sub001/internal/document"
)

// Normalize rewrites d in place. Bullet lists mixing checkable and plain
// items are split into two sibling lists ordered by which kind appears
// first. Checkable lists become taskList/taskItem nodes with the checkbox
// input removed. The inline content of every list item is wrapped in a
// paragraph so tight and loose lists share one shape.
func Normalize(d *document.Document) {
	d.Children = normalizeChildren(d.Children)
}

func normalizeChildren(nodes []*document.Node) []*document.Node {
	var out []*document.Node
	for _, n := range nodes {
		if n.Type != document.ElementNode {
			out = append(out, n)
			continue
		}
		n.Children = normalizeChildren(n.Children)
		if n.Tag == "li" {
			wrapInline(n)
		}
		if n.Tag == "ul" {
			out = append(out, splitList(n)...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// splitList returns one or two lists replacing ul.
func splitList(ul *document.Node) []*document.Node {
	var tasks, plain []*document.Node
	taskFirst := false
	for _, c := range ul.Children {
		if !c.IsElement("li") {
			continue
		}
		if checked, ok := checkState(c); ok {
			if len(tasks) == 0 && len(plain) == 0 {
				taskFirst = true
			}
			tasks = append(tasks, toTaskItem(c, checked))
			continue
		}
		c.DelAttr("data-type")
		c.DelAttr("data-checked")
		plain = append(plain, c)
	}

	var taskList, plainList *document.Node
	if len(tasks) > 0 {
		taskList = document.Elem("ul", map[string]string{"data-type": document.TypeTaskList}, tasks...)
	}
	if len(plain) > 0 {
		attrs := ul.Attrs
		delete(attrs, "data-type")
		plainList = document.Elem("ul", attrs, plain...)
	}

	switch {
	case taskList == nil && plainList == nil:
		ul.DelAttr("data-type")
		ul.Children = nil
		return []*document.Node{ul}
	case taskList == nil:
		return []*document.Node{plainList}
	case plainList == nil:
		return []*document.Node{taskList}
	case taskFirst:
		return []*document.Node{taskList, plainList}
	default:
		return []*document.Node{plainList, taskList}
	}
}

// checkState reports whether li is a checkable item and its checked state.
func checkState(li *document.Node) (checked, ok bool) {
	if li.DataType() == document.TypeTaskItem {
		v, _ := li.Attr("data-checked")
		return v == "true", true
	}
	if in := leadingCheckbox(li); in != nil {
		_, checked := in.Attr("checked")
		return checked, true
	}
	return false, false
}

// leadingCheckbox returns the checkbox input that starts the item's content,
// either directly or inside its first paragraph.
func leadingCheckbox(li *document.Node) *document.Node {
	first := firstContent(li.Children)
	if first != nil && first.IsElement("p") {
		first = firstContent(first.Children)
	}
	if first != nil && first.IsElement("input") {
		if t, _ := first.Attr("type"); t == "checkbox" {
			return first
		}
	}
	return nil
}

func firstContent(nodes []*document.Node) *document.Node {
	for _, n := range nodes {
		if n.Type == document.TextNode && strings.TrimSpace(n.Text) == "" {
			continue
		}
		return n
	}
	return nil
}

func toTaskItem(li *document.Node, checked bool) *document.Node {
	if in := leadingCheckbox(li); in != nil {
		removeNode(li, in)
	}
	li.Attrs = map[string]string{
		"data-type":    document.TypeTaskItem,
		"data-checked": boolString(checked),
	}
	wrapInline(li)
	return li
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// removeNode deletes target from parent or from parent's first paragraph.
func removeNode(parent, target *document.Node) bool {
	for i, c := range parent.Children {
		if c == target {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			return true
		}
		if c.IsElement("p") && removeNode(c, target) {
			return true
		}
	}
	return false
}

// wrapInline groups runs of inline children of li into paragraphs and trims
// whitespace at their edges.
func wrapInline(li *document.Node) {
	var out, run []*document.Node
	flush := func() {
		if p := paragraph(run); p != nil {
			out = append(out, p)
		}
		run = nil
	}
	for _, c := range li.Children {
		if c.Type == document.ElementNode && document.IsBlock(c.Tag) {
			flush()
			if c.IsElement("p") {
				trimText(c)
			}
			out = append(out, c)
			continue
		}
		run = append(run, c)
	}
	flush()
	li.Children = out
}

func paragraph(run []*document.Node) *document.Node {
	if firstContent(run) == nil {
		return nil
	}
	p := document.Elem("p", nil, run...)
	trimText(p)
	return p
}

func trimText(p *document.Node) {
	if len(p.Children) == 0 {
		return
	}
	if first := p.Children[0]; first.Type == document.TextNode {
		first.Text = strings.TrimLeft(first.Text, " \t\n")
	}
	if last := p.Children[len(p.Children)-1]; last.Type == document.TextNode {
		last.Text = strings.TrimRight(last.Text, " \t\n")
	}
	kept := p.Children[:0]
	for _, c := range p.Children {
		if c.Type == document.TextNode && c.Text == "" {
			continue
		}
		kept = append(kept, c)
	}
	p.Children = kept
}

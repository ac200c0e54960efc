package markup

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/mauropereiira/Moldavite-sub001/internal/document"
	"github.com/mauropereiira/Moldavite-sub001/internal/wikilink"
)

// Encoder carries per-call state for rules. Rules call back into it to
// render their children.
type Encoder struct {
	codec *Codec
	// alt flips list markers for a list directly following a sibling list
	// of the same type, so the two do not merge when read back.
	alt bool
	// before and after are the characters around the inline node being
	// rendered; 0 at a block edge.
	before, after rune
}

// emptyParagraph stores a paragraph with no content. A blank Markdown
// paragraph does not exist, so the tag is kept as raw HTML.
const emptyParagraph = "<p></p>"

// Kind returns the rule key of n: the data-type of custom nodes, else the
// tag.
func Kind(n *document.Node) string {
	if dt := n.DataType(); dt != "" {
		return dt
	}
	return n.Tag
}

// Blocks renders sibling blocks separated by blank lines. Runs of inline
// nodes are treated as one paragraph.
func (e *Encoder) Blocks(nodes []*document.Node) string {
	return e.join(groupInline(nodes), false)
}

// join renders blocks. In tight mode (list item bodies) a nested list
// follows the previous block on the next line.
func (e *Encoder) join(nodes []*document.Node, tight bool) string {
	var b strings.Builder
	prevList := ""
	alt := false
	for _, n := range nodes {
		isList := n.IsElement("ul") || n.IsElement("ol")
		if isList && prevList == n.Tag {
			alt = !alt
		} else {
			alt = false
		}
		if isList {
			prevList = n.Tag
		} else {
			prevList = ""
		}

		saved := e.alt
		e.alt = alt
		s := e.Block(n)
		e.alt = saved
		if s == "" && !tight && n.IsElement("p") {
			s = emptyParagraph
		}
		if s == "" {
			continue
		}
		if b.Len() > 0 {
			if tight && isList {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}
		b.WriteString(s)
	}
	return b.String()
}

// groupInline wraps runs of inline nodes in paragraphs.
func groupInline(nodes []*document.Node) []*document.Node {
	var out, run []*document.Node
	flush := func() {
		if len(run) > 0 {
			out = append(out, document.Elem("p", nil, run...))
			run = nil
		}
	}
	for _, n := range nodes {
		if n.Type == document.ElementNode && (document.IsBlock(n.Tag) || n.Tag == "img") {
			flush()
			out = append(out, n)
			continue
		}
		if n.Type == document.TextNode && strings.TrimSpace(n.Text) == "" {
			continue
		}
		run = append(run, n)
	}
	flush()
	return out
}

// Block renders one block node through the rule table.
func (e *Encoder) Block(n *document.Node) string {
	if n.Type == document.TextNode {
		return e.paragraphText([]*document.Node{n})
	}
	if align, ok := n.Attr("data-text-align"); ok && align != "" {
		return e.alignedBlock(n)
	}
	if r, ok := e.codec.blocks[Kind(n)]; ok {
		return r(e, n)
	}
	if r, ok := e.codec.blocks[n.Tag]; ok {
		return r(e, n)
	}
	return e.Blocks(n.Children)
}

// Inline renders inline nodes as Markdown.
func (e *Encoder) Inline(nodes []*document.Node) string {
	var b strings.Builder
	outerBefore, outerAfter := e.before, e.after
	defer func() { e.before, e.after = outerBefore, outerAfter }()
	for i, n := range nodes {
		e.before, e.after = outerBefore, outerAfter
		if b.Len() > 0 {
			e.before, _ = utf8.DecodeLastRuneInString(b.String())
		}
		if i+1 < len(nodes) {
			e.after = e.leadRune(nodes[i+1])
		}
		if n.Type == document.TextNode {
			b.WriteString(escapeText(n.Text))
			continue
		}
		var s string
		if r, ok := e.codec.inlines[Kind(n)]; ok {
			s = r(e, n)
		} else if r, ok := e.codec.inlines[n.Tag]; ok {
			s = r(e, n)
		} else {
			s = e.Inline(n.Children)
		}
		if strings.HasPrefix(s, "[") && endsWithBang(b.String()) {
			// "![" would open an image.
			out := b.String()
			b.Reset()
			b.WriteString(out[:len(out)-1] + `\!`)
		}
		b.WriteString(s)
	}
	return b.String()
}

// leadRune approximates the first character n renders as. Nodes with an
// inline rule open with markup, which counts as punctuation.
func (e *Encoder) leadRune(n *document.Node) rune {
	if n.Type == document.TextNode {
		if n.Text == "" {
			return 0
		}
		r, _ := utf8.DecodeRuneInString(n.Text)
		return r
	}
	if _, ok := e.codec.inlines[Kind(n)]; ok {
		return '<'
	}
	if _, ok := e.codec.inlines[n.Tag]; ok {
		return '<'
	}
	text := n.TextContent()
	if text == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(text)
	return r
}

// endsWithBang reports whether s ends with an unescaped '!'.
func endsWithBang(s string) bool {
	if !strings.HasSuffix(s, "!") {
		return false
	}
	slashes := 0
	for i := len(s) - 2; i >= 0 && s[i] == '\\'; i-- {
		slashes++
	}
	return slashes%2 == 0
}

// InlineHTML renders inline nodes as HTML for blocks that must be stored as
// HTML. Links keep their [[...]] form.
func (e *Encoder) InlineHTML(nodes []*document.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		if n.Type == document.TextNode {
			s := strings.ReplaceAll(n.Text, "\n", " ")
			s = strings.ReplaceAll(html.EscapeString(s), "[", "&#91;")
			b.WriteString(s)
			continue
		}
		if wikilink.IsLink(n) {
			b.WriteString(e.link(n))
			continue
		}
		b.WriteString(openTag(n))
		if n.Tag == "img" || n.Tag == "br" || n.Tag == "hr" {
			continue
		}
		b.WriteString(e.InlineHTML(n.Children))
		b.WriteString("</" + n.Tag + ">")
	}
	return b.String()
}

func (e *Encoder) link(n *document.Node) string {
	if e.codec.linkTargets {
		return wikilink.ToMarkupWithTarget(n)
	}
	return wikilink.ToMarkup(n)
}

func openTag(n *document.Node) string {
	var b strings.Builder
	b.WriteString("<" + n.Tag)
	for _, k := range n.AttrKeys() {
		fmt.Fprintf(&b, ` %s="%s"`, k, html.EscapeString(n.Attrs[k]))
	}
	b.WriteString(">")
	return b.String()
}

func (e *Encoder) alignedBlock(n *document.Node) string {
	if n.IsElement("p") || headingLevel(n) > 0 {
		return openTag(n) + e.InlineHTML(n.Children) + "</" + n.Tag + ">"
	}
	// Containers keep their alignment only on inner text blocks.
	c := n.Clone()
	c.DelAttr("data-text-align")
	return e.Block(c)
}

// paragraphText renders inline content as paragraph text, escaping line
// starts that would otherwise open a block.
func (e *Encoder) paragraphText(nodes []*document.Node) string {
	s := strings.TrimLeft(e.Inline(trimTrailingBreaks(nodes)), " \t")
	s = strings.TrimRight(s, " \t\n")
	return escapeLineStarts(s)
}

func trimTrailingBreaks(nodes []*document.Node) []*document.Node {
	for len(nodes) > 0 {
		last := nodes[len(nodes)-1]
		if last.IsElement("br") || (last.Type == document.TextNode && strings.TrimSpace(last.Text) == "") {
			nodes = nodes[:len(nodes)-1]
			continue
		}
		break
	}
	return nodes
}

func headingLevel(n *document.Node) int {
	if n.Type != document.ElementNode || len(n.Tag) != 2 || n.Tag[0] != 'h' {
		return 0
	}
	l := int(n.Tag[1] - '0')
	if l < 1 || l > 6 {
		return 0
	}
	return l
}

func defaultBlockRules() map[string]Rule {
	r := map[string]Rule{
		"p":                   paragraphRule,
		"blockquote":          blockquoteRule,
		"pre":                 codeBlockRule,
		"hr":                  func(*Encoder, *document.Node) string { return "---" },
		"ul":                  listRule,
		"ol":                  listRule,
		document.TypeTaskList: listRule,
		"img":                 imageRule,
		"table":               tableRule,
		"div":                 func(e *Encoder, n *document.Node) string { return e.Blocks(n.Children) },
	}
	for i := 1; i <= 6; i++ {
		r["h"+strconv.Itoa(i)] = headingRule
	}
	return r
}

func paragraphRule(e *Encoder, n *document.Node) string {
	return e.paragraphText(n.Children)
}

func headingRule(e *Encoder, n *document.Node) string {
	marker := strings.Repeat("#", headingLevel(n))
	text := strings.TrimSpace(strings.ReplaceAll(e.Inline(trimTrailingBreaks(n.Children)), "\\\n", " "))
	if text == "" {
		return marker
	}
	if strings.HasSuffix(text, "#") && !strings.HasSuffix(text, `\#`) {
		// A trailing run of '#' would be read as the closing sequence.
		text = text[:len(text)-1] + `\#`
	}
	return marker + " " + text
}

func blockquoteRule(e *Encoder, n *document.Node) string {
	body := e.Blocks(n.Children)
	if body == "" {
		return ">"
	}
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + l
		}
	}
	return strings.Join(lines, "\n")
}

func codeBlockRule(_ *Encoder, n *document.Node) string {
	lang := ""
	text := n.TextContent()
	if len(n.Children) == 1 && n.Children[0].IsElement("code") {
		if class, ok := n.Children[0].Attr("class"); ok {
			lang = strings.TrimPrefix(class, "language-")
		}
	}
	if lang == "" {
		lang, _ = n.Attr("data-language")
	}
	fence := strings.Repeat("`", max(3, longestRun(text, '`')+1))
	return fence + lang + "\n" + text + "\n" + fence
}

func longestRun(s string, c byte) int {
	best, cur := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			cur++
			best = max(best, cur)
		} else {
			cur = 0
		}
	}
	return best
}

func listRule(e *Encoder, n *document.Node) string {
	ordered := n.Tag == "ol"
	start := 1
	if v, ok := n.Attr("start"); ok {
		if s, err := strconv.Atoi(v); err == nil {
			start = s
		}
	}
	bullet, delim := "-", "."
	if e.alt {
		bullet, delim = "*", ")"
	}

	var items []string
	i := 0
	for _, li := range n.Children {
		if !li.IsElement("li") {
			continue
		}
		marker := bullet + " "
		if ordered {
			marker = strconv.Itoa(start+i) + delim + " "
		}
		i++

		prefix := marker
		if li.DataType() == document.TypeTaskItem {
			if v, _ := li.Attr("data-checked"); v == "true" {
				prefix += "[x] "
			} else {
				prefix += "[ ] "
			}
		}
		saved := e.alt
		e.alt = false
		body := e.join(groupInline(li.Children), true)
		e.alt = saved

		item := strings.TrimRight(prefix+indent(body, len(marker)), " ")
		items = append(items, item)
	}
	return strings.Join(items, "\n")
}

// indent prefixes every line but the first with width spaces. Blank lines
// stay blank.
func indent(s string, width int) string {
	pad := strings.Repeat(" ", width)
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = pad + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

// imageRule stores images as inline tags so width and alignment survive.
func imageRule(_ *Encoder, n *document.Node) string {
	var b strings.Builder
	b.WriteString("<img")
	for _, k := range []string{"src", "alt", "title", "width", "height", "data-alignment"} {
		if v, ok := n.Attr(k); ok {
			fmt.Fprintf(&b, ` %s="%s"`, k, html.EscapeString(v))
		}
	}
	b.WriteString(">")
	return b.String()
}

func tableRule(e *Encoder, n *document.Node) string {
	var rows [][]*document.Node
	var collect func(nodes []*document.Node)
	collect = func(nodes []*document.Node) {
		for _, c := range nodes {
			switch {
			case c.IsElement("tr"):
				var cells []*document.Node
				for _, cell := range c.Children {
					if cell.IsElement("th") || cell.IsElement("td") {
						cells = append(cells, cell)
					}
				}
				rows = append(rows, cells)
			case c.IsElement("thead"), c.IsElement("tbody"):
				collect(c.Children)
			}
		}
	}
	collect(n.Children)
	if len(rows) == 0 {
		return ""
	}

	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	line := func(cells []*document.Node) string {
		parts := make([]string, cols)
		for i := range parts {
			if i < len(cells) {
				parts[i] = e.cell(cells[i])
			}
		}
		return "| " + strings.Join(parts, " | ") + " |"
	}

	lines := []string{line(rows[0])}
	seps := make([]string, cols)
	for i := range seps {
		align := ""
		if i < len(rows[0]) {
			align, _ = rows[0][i].Attr("align")
		}
		switch align {
		case "left":
			seps[i] = ":---"
		case "center":
			seps[i] = ":---:"
		case "right":
			seps[i] = "---:"
		default:
			seps[i] = "---"
		}
	}
	lines = append(lines, "| "+strings.Join(seps, " | ")+" |")
	for _, r := range rows[1:] {
		lines = append(lines, line(r))
	}
	return strings.Join(lines, "\n")
}

func (e *Encoder) cell(c *document.Node) string {
	var parts []string
	for _, b := range groupInline(c.Children) {
		parts = append(parts, e.Inline(b.Children))
	}
	s := strings.Join(parts, "<br>")
	s = strings.ReplaceAll(s, "\\\n", "<br>")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(strings.ReplaceAll(s, "|", `\|`))
}

func defaultInlineRules() map[string]Rule {
	return map[string]Rule{
		"strong":              delimited("**", "strong"),
		"b":                   delimited("**", "strong"),
		"em":                  delimited("*", "em"),
		"i":                   delimited("*", "em"),
		"s":                   delimited("~~", "s"),
		"del":                 delimited("~~", "s"),
		"strike":              delimited("~~", "s"),
		"u":                   rawInline,
		"mark":                rawInline,
		"sub":                 rawInline,
		"sup":                 rawInline,
		"code":                codeSpanRule,
		"a":                   linkRule,
		"img":                 imageRule,
		"br":                  func(*Encoder, *document.Node) string { return "\\\n" },
		"input":               func(*Encoder, *document.Node) string { return "" },
		document.TypeWikiLink: func(e *Encoder, n *document.Node) string { return e.link(n) },
	}
}

// delimited wraps content in a delimiter run, moving edge whitespace outside
// so the delimiters stay flanking. Content that starts or ends with
// punctuation right next to a word character cannot be delimited and is
// stored as the raw tag instead.
func delimited(d, tag string) Rule {
	return func(e *Encoder, n *document.Node) string {
		before, after := e.before, e.after
		inner := e.Inline(n.Children)
		core := strings.TrimSpace(inner)
		if core == "" {
			return inner
		}
		lead := inner[:strings.Index(inner, core)]
		trail := inner[len(lead)+len(core):]
		if lead != "" {
			before, _ = utf8.DecodeLastRuneInString(lead)
		}
		if trail != "" {
			after, _ = utf8.DecodeRuneInString(trail)
		}
		first, _ := utf8.DecodeRuneInString(core)
		last, _ := utf8.DecodeLastRuneInString(core)
		if (isPunct(first) && isWord(before)) || (isPunct(last) && isWord(after)) {
			return "<" + tag + ">" + inner + "</" + tag + ">"
		}
		return lead + d + core + d + trail
	}
}

// isPunct matches the punctuation class Markdown uses for flanking.
func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func isWord(r rune) bool {
	return r != 0 && !unicode.IsSpace(r) && !isPunct(r)
}

func rawInline(e *Encoder, n *document.Node) string {
	return "<" + n.Tag + ">" + e.Inline(n.Children) + "</" + n.Tag + ">"
}

func codeSpanRule(_ *Encoder, n *document.Node) string {
	text := strings.ReplaceAll(n.TextContent(), "\n", " ")
	if text == "" {
		return ""
	}
	fence := strings.Repeat("`", longestRun(text, '`')+1)
	if strings.HasPrefix(text, "`") || strings.HasSuffix(text, "`") ||
		(strings.HasPrefix(text, " ") && strings.HasSuffix(text, " ") && strings.TrimSpace(text) != "") {
		text = " " + text + " "
	}
	return fence + text + fence
}

func linkRule(e *Encoder, n *document.Node) string {
	href, _ := n.Attr("href")
	text := e.Inline(n.Children)
	if href == "" {
		return text
	}
	if strings.ContainsAny(href, " ()<>") {
		href = "<" + strings.NewReplacer("<", "%3C", ">", "%3E").Replace(href) + ">"
	}
	if title, ok := n.Attr("title"); ok && title != "" {
		return "[" + text + "](" + href + ` "` + strings.ReplaceAll(title, `"`, `\"`) + `")`
	}
	return "[" + text + "](" + href + ")"
}

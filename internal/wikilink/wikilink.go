// Package wikilink rewrites bracketed cross-note references between their
// markup form ([[Display]] or [[Display|target]]) and editor link nodes.
package wikilink

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mauropereiira/Moldavite-sub001/internal/document"
	"github.com/mauropereiira/Moldavite-sub001/internal/models"
)

// Pattern matches [[text]] and [[text|target]]. Neither part holds a
// bracket, so "[[[x]]" links x.
var Pattern = regexp.MustCompile(`\[\[([^\[\]|]+)(?:\|([^\[\]]+))?\]\]`)

// contextRadius is the number of bytes of surrounding text kept by Context.
const contextRadius = 50

// Slug turns a note name into a filesystem-safe slug: lowercase, trimmed,
// spaces become hyphens, anything that is not a letter, digit or hyphen is
// dropped.
func Slug(name string) string {
	s := strings.ReplaceAll(strings.TrimSpace(strings.ToLower(name)), " ", "-")
	return strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return -1
	}, s)
}

// Filename returns the slug filename a link to name resolves to.
func Filename(name string) string {
	return Slug(name) + ".md"
}

// Node builds an editor link node. label is the display text, note the raw
// target name as written.
func Node(label, note string) *document.Node {
	return document.Elem("span", map[string]string{
		"data-type":   document.TypeWikiLink,
		"data-label":  label,
		"data-target": Filename(note),
		"data-note":   note,
	})
}

// IsLink reports whether n is an editor link node.
func IsLink(n *document.Node) bool {
	return n.IsElement("span") && n.DataType() == document.TypeWikiLink
}

// Label returns the display text of a link node.
func Label(n *document.Node) string {
	if v, ok := n.Attr("data-label"); ok && v != "" {
		return v
	}
	if v, ok := n.Attr("data-note"); ok && v != "" {
		return v
	}
	return strings.TrimSpace(n.TextContent())
}

// ToMarkup renders a link node in the short form [[Display]].
func ToMarkup(n *document.Node) string {
	return "[[" + Label(n) + "]]"
}

// ToMarkupWithTarget renders [[Display|target]] when the stored target name
// differs from the display text, else the short form.
func ToMarkupWithTarget(n *document.Node) string {
	label := Label(n)
	note, _ := n.Attr("data-note")
	if note == "" || note == label {
		return "[[" + label + "]]"
	}
	return "[[" + label + "|" + note + "]]"
}

// ToPlaceholder rewrites every link in markup into an inline link node so a
// general markdown parser passes it through as raw HTML. Fenced code blocks
// and inline code spans are left untouched.
func ToPlaceholder(markup string) string {
	return eachProse(markup, func(s string) string {
		return Pattern.ReplaceAllStringFunc(s, func(m string) string {
			if strings.ContainsRune(m, '\n') {
				return m
			}
			label, note := split(m)
			if strings.TrimSpace(label) == "" {
				return m
			}
			var b strings.Builder
			document.RenderNode(&b, Node(label, note))
			return b.String()
		})
	})
}

// Extract returns every link found in markup outside code, in order of
// appearance. Links with an empty target are skipped.
func Extract(markup string) []models.WikiLink {
	var out []models.WikiLink
	eachProse(markup, func(s string) string {
		for _, m := range Pattern.FindAllString(s, -1) {
			label, note := split(m)
			if strings.TrimSpace(note) == "" {
				continue
			}
			out = append(out, models.WikiLink{DisplayText: label, Target: Filename(note)})
		}
		return s
	})
	return out
}

func split(m string) (label, note string) {
	sub := Pattern.FindStringSubmatch(m)
	label, note = sub[1], sub[2]
	if note == "" {
		note = label
	}
	return label, note
}

// Context returns the text around the first link to label in content, with
// "..." marking elided text on either side. It returns "" when no link to
// label is present.
func Context(content, label string) string {
	for _, search := range []string{"[[" + label + "]]", "[[" + label + "|"} {
		pos := strings.Index(content, search)
		if pos < 0 {
			continue
		}
		start := max(pos-contextRadius, 0)
		end := min(pos+len(search)+contextRadius, len(content))
		if strings.HasSuffix(search, "|") {
			if p := strings.Index(content[pos:], "]]"); p >= 0 {
				end = min(pos+p+2+contextRadius, len(content))
			}
		}
		for start > 0 && !utf8.RuneStart(content[start]) {
			start--
		}
		for end < len(content) && !utf8.RuneStart(content[end]) {
			end++
		}

		var b strings.Builder
		if start > 0 {
			b.WriteString("...")
		}
		b.WriteString(content[start:end])
		if end < len(content) {
			b.WriteString("...")
		}
		return b.String()
	}
	return ""
}

// eachProse calls fn on every run of markup that is outside fenced code
// blocks and inline code spans and reassembles the result.
func eachProse(markup string, fn func(string) string) string {
	var out, prose strings.Builder
	flush := func() {
		if prose.Len() > 0 {
			out.WriteString(inlineProse(prose.String(), fn))
			prose.Reset()
		}
	}

	var fence string
	for _, line := range strings.SplitAfter(markup, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		if fence != "" {
			out.WriteString(line)
			if closesFence(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if f := openFence(trimmed); f != "" && len(line)-len(trimmed) < 4 {
			flush()
			fence = f
			out.WriteString(line)
			continue
		}
		prose.WriteString(line)
	}
	flush()
	return out.String()
}

func openFence(line string) string {
	for _, c := range []byte{'`', '~'} {
		n := 0
		for n < len(line) && line[n] == c {
			n++
		}
		if n >= 3 {
			if c == '`' && strings.ContainsRune(line[n:], '`') {
				return ""
			}
			return line[:n]
		}
	}
	return ""
}

func closesFence(line, fence string) bool {
	n := 0
	for n < len(line) && line[n] == fence[0] {
		n++
	}
	return n >= len(fence) && strings.TrimSpace(line[n:]) == ""
}

// inlineProse applies fn outside backtick code spans.
func inlineProse(s string, fn func(string) string) string {
	var out strings.Builder
	last := 0
	for i := 0; i < len(s); {
		if s[i] != '`' {
			i++
			continue
		}
		n := runLen(s, i)
		end := closingRun(s, i+n, n)
		if end < 0 {
			i += n
			continue
		}
		out.WriteString(fn(s[last:i]))
		out.WriteString(s[i:end])
		last, i = end, end
	}
	out.WriteString(fn(s[last:]))
	return out.String()
}

func runLen(s string, i int) int {
	n := 0
	for i+n < len(s) && s[i+n] == '`' {
		n++
	}
	return n
}

// closingRun finds a backtick run of exactly n starting at or after from and
// returns the index just past it, or -1.
func closingRun(s string, from, n int) int {
	for i := from; i < len(s); {
		if s[i] != '`' {
			i++
			continue
		}
		k := runLen(s, i)
		if k == n {
			return i + k
		}
		i += k
	}
	return -1
}

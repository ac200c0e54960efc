// Package parser extracts the indexable metadata of a stored note: front
// matter, title, wiki links, tags, task counts and plain text.
package parser

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mauropereiira/Moldavite-sub001/internal/document"
	"github.com/mauropereiira/Moldavite-sub001/internal/markup"
	"github.com/mauropereiira/Moldavite-sub001/internal/models"
	"github.com/mauropereiira/Moldavite-sub001/internal/tasklist"
	"github.com/mauropereiira/Moldavite-sub001/internal/wikilink"
)

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// Result holds the output of parsing a stored note.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Links       []models.WikiLink
	Tags        []string
	Title       string
	Tasks       models.TaskStatus
	Text        string // visible text, one block per line
}

// Parse extracts metadata from raw note markup. Legacy HTML notes are
// handled by the decoder, so parsing never fails on content; only a read
// error upstream can make a note unindexable.
func Parse(data []byte) (*Result, error) {
	fm, body := splitFrontmatter(data)
	doc := markup.Decode(body)

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Links:       extractLinks(body),
		Tags:        extractTags(body, fm),
		Title:       deriveTitle(fm, doc),
		Tasks:       tasklist.Index(doc),
		Text:        plainText(doc),
	}, nil
}

// splitFrontmatter separates YAML front matter (between leading ---
// delimiters) from the body. Without valid front matter the whole input is
// body.
func splitFrontmatter(data []byte) (map[string]interface{}, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim+"\n")) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil || fm == nil {
		// A thematic break at the top of a note is not front matter.
		return nil, string(data)
	}

	return fm, body
}

// extractLinks returns the note's links deduplicated by target.
func extractLinks(body string) []models.WikiLink {
	all := wikilink.Extract(body)
	seen := make(map[string]struct{}, len(all))
	var out []models.WikiLink
	for _, l := range all {
		if _, ok := seen[l.Target]; ok {
			continue
		}
		seen[l.Target] = struct{}{}
		out = append(out, l)
	}
	return out
}

// extractTags collects #tags from body and from frontmatter "tags" field.
func extractTags(body string, fm map[string]interface{}) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		if _, dup := seen[s]; dup || s == "" {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	if fm != nil {
		if raw, ok := fm["tags"].([]interface{}); ok {
			for _, item := range raw {
				if s, ok := item.(string); ok {
					add(strings.TrimSpace(s))
				}
			}
		}
	}
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the text
// of the first h1, otherwise "".
func deriveTitle(fm map[string]interface{}, doc *document.Document) string {
	if s, ok := fm["title"].(string); ok && s != "" {
		return s
	}
	for _, n := range doc.Children {
		if n.IsElement("h1") {
			return strings.TrimSpace(n.TextContent())
		}
	}
	return ""
}

// plainText renders each top-level block's text on its own line. Wiki links
// contribute their label.
func plainText(doc *document.Document) string {
	var lines []string
	for _, n := range doc.Children {
		if t := strings.TrimSpace(blockText(n)); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}

func blockText(n *document.Node) string {
	if n.Type == document.TextNode {
		return n.Text
	}
	if wikilink.IsLink(n) {
		return wikilink.Label(n)
	}
	var b strings.Builder
	for _, c := range n.Children {
		if c.Type == document.ElementNode && document.IsBlock(c.Tag) && b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(blockText(c))
	}
	return b.String()
}

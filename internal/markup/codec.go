// Package markup converts between the stored Markdown dialect and the
// editor's document tree. Decode never fails; Encode is driven by a rule
// table keyed by node kind.
package markup

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/mauropereiira/Moldavite-sub001/internal/document"
	"github.com/mauropereiira/Moldavite-sub001/internal/sanitize"
	"github.com/mauropereiira/Moldavite-sub001/internal/tasklist"
	"github.com/mauropereiira/Moldavite-sub001/internal/wikilink"
)

// formatMarker opens encoded notes whose first block would otherwise be
// taken for legacy HTML by the decoder.
const formatMarker = "<!-- markdown -->"

// htmlPrefixes are the block-level opening tags that mark a stored note as
// legacy editor HTML rather than Markdown.
var htmlPrefixes = []string{
	"<p", "<h1", "<h2", "<h3", "<h4", "<h5", "<h6", "<ul", "<ol",
	"<blockquote", "<pre", "<div", "<hr", "<img", "<table",
}

// Rule renders one node. Block rules return the block's markup without a
// trailing newline; inline rules return inline markup.
type Rule func(e *Encoder, n *document.Node) string

// Codec converts notes in both directions. A Codec is safe for concurrent
// use once built; Register must not be called after first use.
type Codec struct {
	md          goldmark.Markdown
	blocks      map[string]Rule
	inlines     map[string]Rule
	linkTargets bool
}

// Option configures a Codec.
type Option func(*Codec)

// WithLinkTargets makes Encode keep the [[Display|target]] form for links
// whose target name differs from their display text.
func WithLinkTargets(on bool) Option {
	return func(c *Codec) { c.linkTargets = on }
}

// WithRule registers a block rule for kind.
func WithRule(kind string, r Rule) Option {
	return func(c *Codec) { c.blocks[kind] = r }
}

// WithInlineRule registers an inline rule for kind.
func WithInlineRule(kind string, r Rule) Option {
	return func(c *Codec) { c.inlines[kind] = r }
}

// newMarkdown builds the shared parser: GFM task lists, strikethrough and
// tables, with raw HTML passed through so image tags, aligned blocks and
// link placeholders survive.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.Strikethrough,
			extension.TaskList,
			extension.NewTable(extension.WithTableCellAlignMethod(extension.TableCellAlignAttribute)),
		),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
}

// New creates a codec with the default rule table.
func New(opts ...Option) *Codec {
	c := &Codec{
		md:      newMarkdown(),
		blocks:  defaultBlockRules(),
		inlines: defaultInlineRules(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register adds or replaces the block rule for kind.
func (c *Codec) Register(kind string, r Rule) {
	c.blocks[kind] = r
}

// RegisterInline adds or replaces the inline rule for kind.
func (c *Codec) RegisterInline(kind string, r Rule) {
	c.inlines[kind] = r
}

var std = New()

// Decode converts stored markup with the default codec.
func Decode(markup string) *document.Document { return std.Decode(markup) }

// Encode converts a document to stored markup with the default codec.
func Encode(d *document.Document) string { return std.Encode(d) }

// IsHTML reports whether markup starts with a recognized block-level opening
// tag and so is read as legacy editor HTML.
func IsHTML(markup string) bool {
	s := strings.ToLower(strings.TrimLeft(markup, " \t\r\n"))
	for _, p := range htmlPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Decode converts stored markup into a sanitized document.
func (c *Codec) Decode(markup string) *document.Document {
	if strings.TrimSpace(markup) == "" {
		return &document.Document{}
	}
	trimmed := strings.TrimLeft(markup, " \t\r\n")
	if strings.HasPrefix(trimmed, formatMarker) {
		markup = trimmed[len(formatMarker):]
	} else if IsHTML(markup) {
		d := document.ParseHTML(markup)
		shape(d)
		return sanitize.Document(d)
	}

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(wikilink.ToPlaceholder(markup)), &buf); err != nil {
		// Only the writer can fail and bytes.Buffer does not; keep the text.
		return sanitize.Document(document.New(document.Elem("p", nil, document.Text(markup))))
	}
	d := document.ParseHTML(buf.String())
	shape(d)
	tasklist.Normalize(d)
	return sanitize.Document(d)
}

// Encode converts a document into stored markup. A document with nothing
// but empty paragraphs encodes to "". Non-empty output ends with exactly one newline.
func (c *Codec) Encode(d *document.Document) string {
	if d == nil || len(d.Children) == 0 {
		return ""
	}
	e := &Encoder{codec: c}
	out := strings.TrimRight(e.Blocks(d.Children), " \t\n")
	if strings.TrimSpace(strings.ReplaceAll(out, emptyParagraph, "")) == "" {
		return ""
	}
	if IsHTML(out) {
		out = formatMarker + "\n\n" + out
	}
	return out + "\n"
}

// containers hold only blocks; whitespace text between them is layout.
var containers = map[string]bool{
	"ul": true, "ol": true, "blockquote": true, "table": true,
	"thead": true, "tbody": true, "tr": true,
}

var renames = map[string]string{
	"b": "strong", "i": "em", "del": "s", "strike": "s",
}

// shape brings parser output to the editor's shape: layout whitespace is
// dropped, mark tags use one spelling, the line feed the parser writes after
// a hard break goes and code blocks lose their trailing newline.
func shape(d *document.Document) {
	d.Children = shapeChildren(d.Children, true)
}

func shapeChildren(nodes []*document.Node, container bool) []*document.Node {
	out := nodes[:0]
	afterBreak := false
	for _, n := range nodes {
		if n.Type == document.TextNode {
			if afterBreak {
				n.Text = strings.TrimPrefix(n.Text, "\n")
				afterBreak = false
				if n.Text == "" {
					continue
				}
			}
			if container && strings.TrimSpace(n.Text) == "" {
				continue
			}
			out = append(out, n)
			continue
		}
		afterBreak = n.Tag == "br"
		if to, ok := renames[n.Tag]; ok {
			n.Tag = to
		}
		if n.Tag == "pre" {
			trimCode(n)
			out = append(out, n)
			continue
		}
		n.Children = shapeChildren(n.Children, containers[n.Tag])
		out = append(out, n)
	}
	return out
}

func trimCode(pre *document.Node) {
	target := pre
	if len(pre.Children) == 1 && pre.Children[0].IsElement("code") {
		target = pre.Children[0]
	}
	if k := len(target.Children); k > 0 {
		if last := target.Children[k-1]; last.Type == document.TextNode {
			last.Text = strings.TrimSuffix(last.Text, "\n")
		}
	}
}

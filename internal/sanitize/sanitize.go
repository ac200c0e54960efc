// Package sanitize filters document trees against a fixed allow list before
// they reach the editing surface. Disallowed tags and attributes are removed
// silently; the filter never fails and is idempotent.
package sanitize

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mauropereiira/Moldavite-sub001/internal/document"
)

var (
	reLength    = regexp.MustCompile(`^\d{1,5}(px|%)?$`)
	reLanguage  = regexp.MustCompile(`^language-[A-Za-z0-9_+#-]{1,32}$`)
	reLangName  = regexp.MustCompile(`^[A-Za-z0-9_+#-]{1,32}$`)
	reInteger   = regexp.MustCompile(`^\d{1,6}$`)
	reTextAlign = regexp.MustCompile(`^(left|center|right|justify)$`)
	reImgAlign  = regexp.MustCompile(`^(left|center|right)$`)
	reChecked   = regexp.MustCompile(`^(true|false)$`)

	// reSchemes are the URL schemes accepted anywhere. Local asset URLs
	// use asset://localhost/ or http://asset.localhost/.
	reSchemes = regexp.MustCompile(`^(?i:https?|mailto|asset)$`)
	// reHref accepts an allowed scheme or a relative reference: no colon
	// before the first '/', '?' or '#'.
	reHref = regexp.MustCompile(`^(?i:https?:|mailto:|asset:)|^[^:/?#]*(?:[/?#]|$)`)
	// reSrc is reHref without mailto, plus inline raster images.
	reSrc = regexp.MustCompile(`^(?i:https?:|asset:|data:image/(?:png|gif|jpeg|webp);base64,)|^[^:/?#]*(?:[/?#]|$)`)
)

// std is the process-wide policy; it is never mutated after init.
var std = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements("p", "h1", "h2", "h3", "h4", "h5", "h6", "div",
		"blockquote", "hr", "br", "strong", "b", "em", "i", "s", "del",
		"strike", "u", "mark", "sub", "sup", "pre", "code", "ul", "ol", "li",
		"span", "table", "thead", "tbody", "tr", "th", "td")
	p.SkipElementsContent("script", "style", "iframe", "object", "embed",
		"noscript", "template", "textarea", "select", "svg", "math", "title",
		"head", "frameset", "frame", "applet")

	p.AllowAttrs("data-text-align").Matching(reTextAlign).
		OnElements("p", "h1", "h2", "h3", "h4", "h5", "h6", "div")
	p.AllowAttrs("data-language").Matching(reLangName).OnElements("pre")
	p.AllowAttrs("class").Matching(reLanguage).OnElements("code")
	p.AllowAttrs("data-type").Matching(regexp.MustCompile(`^`+document.TypeTaskList+`$`)).OnElements("ul")
	p.AllowAttrs("start").Matching(reInteger).OnElements("ol")
	p.AllowAttrs("data-type").Matching(regexp.MustCompile(`^`+document.TypeTaskItem+`$`)).OnElements("li")
	p.AllowAttrs("data-checked").Matching(reChecked).OnElements("li")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")

	p.AllowAttrs("href").Matching(reHref).OnElements("a")
	p.AllowAttrs("title").OnElements("a", "img")
	p.AllowAttrs("src").Matching(reSrc).OnElements("img")
	p.AllowAttrs("alt").OnElements("img")
	p.AllowAttrs("width", "height").Matching(reLength).OnElements("img")
	p.AllowAttrs("data-alignment").Matching(reImgAlign).OnElements("img")

	p.AllowAttrs("data-type").Matching(regexp.MustCompile(`^`+document.TypeWikiLink+`$`)).OnElements("span")
	p.AllowAttrs("data-label", "data-target", "data-note").OnElements("span")

	p.AllowAttrs("align").Matching(reTextAlign).OnElements("th", "td")
	p.AllowAttrs("colspan", "rowspan").Matching(reInteger).OnElements("th", "td")

	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemesMatching(reSchemes)
	p.AllowDataURIImages()
	return p
}

// Document returns a sanitized copy of d. The input is not modified.
func Document(d *document.Document) *document.Document {
	if d == nil {
		return &document.Document{}
	}
	out := document.ParseHTML(std.Sanitize(d.HTML()))
	out.Children = prune(out.Children)
	return out
}

// HTML sanitizes a fragment of editor HTML.
func HTML(s string) string {
	return Document(document.ParseHTML(s)).HTML()
}

// prune drops what the attribute policy cannot express: task checkboxes
// other than type="checkbox" and images left without a source.
func prune(nodes []*document.Node) []*document.Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n.Type == document.ElementNode {
			switch n.Tag {
			case "input":
				if t, _ := n.Attr("type"); t != "checkbox" {
					continue
				}
			case "img":
				if _, ok := n.Attr("src"); !ok {
					continue
				}
			}
			n.Children = prune(n.Children)
		}
		out = append(out, n)
	}
	return out
}

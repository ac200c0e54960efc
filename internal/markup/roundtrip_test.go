package markup

import (
	"slices"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/mauropereiira/Moldavite-sub001/internal/document"
	"github.com/mauropereiira/Moldavite-sub001/internal/wikilink"
)

var word = rapid.StringMatching(`[a-z]{1,8}`)

// punctuation holds the ASCII punctuation set plus a few non-ASCII marks.
var punctuation = []rune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~\u00a7\u2014\u00bf")

// prose draws a word that may carry punctuation, Markdown syntax included.
var prose = rapid.Custom(func(t *rapid.T) string {
	if rapid.IntRange(0, 2).Draw(t, "plain") == 0 {
		return word.Draw(t, "word")
	}
	head := rapid.StringMatching(`[a-z]{0,3}`).Draw(t, "head")
	marks := rapid.SliceOfN(rapid.SampledFrom(punctuation), 1, 2).Draw(t, "marks")
	tail := rapid.StringMatching(`[a-z]{0,3}`).Draw(t, "tail")
	return head + string(marks) + tail
})

func inlineGen() *rapid.Generator[*document.Node] {
	return rapid.Custom(func(t *rapid.T) *document.Node {
		w := prose.Draw(t, "prose")
		switch rapid.IntRange(0, 8).Draw(t, "kind") {
		case 0:
			return document.Elem("strong", nil, document.Text(w))
		case 1:
			return document.Elem("em", nil, document.Text(w))
		case 2:
			return document.Elem("s", nil, document.Text(w))
		case 3:
			return document.Elem("code", nil, document.Text(w))
		case 4:
			href := "https://example.com/" + word.Draw(t, "path")
			return document.Elem("a", map[string]string{"href": href}, document.Text(w))
		case 5:
			first := word.Draw(t, "first")
			label := strings.ToUpper(first[:1]) + first[1:] + " " + word.Draw(t, "second")
			return wikilink.Node(label, label)
		case 6:
			return document.Elem("u", nil, document.Text(w))
		default:
			return document.Text(w)
		}
	})
}

// inlineContent joins segments with a space, a no-break space, a hard break
// or nothing. Two text nodes are never made adjacent.
func inlineContent(t *rapid.T, breaks bool) []*document.Node {
	segs := rapid.SliceOfN(inlineGen(), 1, 5).Draw(t, "segs")
	var out []*document.Node
	for i, s := range segs {
		if i > 0 {
			prev := segs[i-1]
			kinds := []string{"space", "nbsp"}
			if breaks {
				kinds = append(kinds, "br")
			}
			if (prev.Type == document.TextNode) != (s.Type == document.TextNode) {
				kinds = append(kinds, "none")
			}
			switch rapid.SampledFrom(kinds).Draw(t, "sep") {
			case "space":
				out = append(out, document.Text(" "))
			case "nbsp":
				out = append(out, document.Text("\u00a0"))
			case "br":
				out = append(out, document.Elem("br", nil))
			}
		}
		out = append(out, s)
	}
	return out
}

func para(t *rapid.T) *document.Node {
	return document.Elem("p", nil, inlineContent(t, true)...)
}

func items(t *rapid.T, task bool) []*document.Node {
	n := rapid.IntRange(1, 3).Draw(t, "items")
	out := make([]*document.Node, n)
	for i := range out {
		li := document.Elem("li", nil, para(t))
		if task {
			li.Attrs = map[string]string{
				"data-type":    document.TypeTaskItem,
				"data-checked": rapid.SampledFrom([]string{"true", "false"}).Draw(t, "checked"),
			}
		} else if rapid.IntRange(0, 4).Draw(t, "nested") == 0 {
			li.Children = append(li.Children, document.Elem("ul", nil, document.Elem("li", nil, para(t))))
		}
		out[i] = li
	}
	return out
}

func blockGen() *rapid.Generator[*document.Node] {
	return rapid.Custom(func(t *rapid.T) *document.Node {
		switch rapid.IntRange(0, 11).Draw(t, "block") {
		case 0:
			level := rapid.IntRange(1, 3).Draw(t, "level")
			return document.Elem("h"+string(rune('0'+level)), nil, inlineContent(t, false)...)
		case 1:
			return document.Elem("ul", map[string]string{"data-type": document.TypeTaskList}, items(t, true)...)
		case 2:
			return document.Elem("ul", nil, items(t, false)...)
		case 3:
			return document.Elem("ol", nil, items(t, false)...)
		case 4:
			return document.Elem("blockquote", nil, para(t))
		case 5:
			code := word.Draw(t, "c1") + " := " + word.Draw(t, "c2")
			return document.Elem("pre", nil, document.Elem("code", map[string]string{"class": "language-go"}, document.Text(code)))
		case 6:
			return document.Elem("hr", nil)
		case 7:
			w := word.Draw(t, "img")
			return document.Elem("img", map[string]string{
				"src":            "/attachments/" + w + ".png",
				"alt":            w,
				"width":          "240",
				"data-alignment": rapid.SampledFrom([]string{"left", "center", "right"}).Draw(t, "align"),
			})
		case 8:
			p := para(t)
			p.SetAttr("data-text-align", rapid.SampledFrom([]string{"center", "right", "justify"}).Draw(t, "talign"))
			return p
		case 9:
			return document.Elem("p", nil)
		default:
			return para(t)
		}
	})
}

func docGen() *rapid.Generator[*document.Document] {
	return rapid.Custom(func(t *rapid.T) *document.Document {
		blocks := rapid.SliceOfN(blockGen(), 1, 6).Draw(t, "blocks")
		// A document of blank paragraphs is stored as nothing at all.
		if !slices.ContainsFunc(blocks, func(n *document.Node) bool { return !n.IsElement("p") || len(n.Children) > 0 }) {
			blocks = append(blocks, para(t))
		}
		return document.New(blocks...)
	})
}

func TestRoundTrip_EditorDocuments(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := docGen().Draw(t, "doc")
		enc := Encode(d)
		back := Decode(enc)
		if !document.Equal(back, d) {
			t.Fatalf("round trip mismatch\nmarkup: %q\n  want: %q\n   got: %q", enc, d.HTML(), back.HTML())
		}
	})
}

var fragments = []string{
	"# Title",
	"- [ ] task\n- [x] done\n- plain",
	"[[Project Alpha]] and more",
	"plain *em* **strong** ~~gone~~",
	"> quoted [[Link]]",
	"```\ncode [[x]]\n```",
	"1. one\n2. two",
	`<img src="/attachments/a.png" alt="a">`,
	"---",
	`text with \* escaped`,
	"| a | b |\n|---|:-:|\n| 1 | 2 |",
	"<p data-text-align=\"center\">mid</p>",
	"  indented   text  ",
	"x<strong>(y)</strong>z and a**b**c",
	"line\\\nbreak\u00a0here",
	"<p></p>",
	"wow\\![site](https://example.com) \\[[[Note]]",
	"## issue \\#",
	"<p>legacy <b>html</b></p>",
}

func TestRoundTrip_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		parts := rapid.SliceOfN(rapid.SampledFrom(fragments), 1, 6).Draw(t, "parts")
		src := strings.Join(parts, "\n\n")

		once := Encode(Decode(src))
		twice := Decode(once)
		thrice := Decode(Encode(twice))
		if !document.Equal(twice, thrice) {
			t.Fatalf("not idempotent\nsrc: %q\nonce: %q\n got: %q\nwant: %q", src, once, thrice.HTML(), twice.HTML())
		}
	})
}

func TestDecode_Deterministic(t *testing.T) {
	src := strings.Join(fragments, "\n\n")
	first := Decode(src).HTML()
	for i := 0; i < 5; i++ {
		if got := Decode(src).HTML(); got != first {
			t.Fatalf("run %d differs:\n%q\n%q", i, got, first)
		}
	}
}

package wikilink

import (
	"strings"
	"testing"
)

func TestSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Project Alpha", "project-alpha"},
		{"  Trim Me  ", "trim-me"},
		{"What's next?", "whats-next"},
		{"Café Notes", "café-notes"},
		{"2024 Plan", "2024-plan"},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToPlaceholder_ShortForm(t *testing.T) {
	got := ToPlaceholder("See [[Project Alpha]] today.")
	want := `See <span data-label="Project Alpha" data-note="Project Alpha" data-target="project-alpha.md" data-type="wikiLink"></span> today.`
	if got != want {
		t.Errorf("got = %q, want %q", got, want)
	}
}

func TestToPlaceholder_TargetForm(t *testing.T) {
	got := ToPlaceholder("[[the plan|Project Alpha]]")
	if !strings.Contains(got, `data-label="the plan"`) || !strings.Contains(got, `data-target="project-alpha.md"`) {
		t.Errorf("got = %q", got)
	}
}

func TestToPlaceholder_SkipsCode(t *testing.T) {
	in := "```\n[[In Fence]]\n```\nuse `[[Inline]]` or [[Real]]\n"
	got := ToPlaceholder(in)
	if !strings.Contains(got, "[[In Fence]]") {
		t.Errorf("fenced link rewritten: %q", got)
	}
	if !strings.Contains(got, "`[[Inline]]`") {
		t.Errorf("inline code link rewritten: %q", got)
	}
	if strings.Contains(got, "[[Real]]") {
		t.Errorf("prose link not rewritten: %q", got)
	}
}

func TestToPlaceholder_EscapesLabel(t *testing.T) {
	got := ToPlaceholder(`[[a "quoted" <b>]]`)
	if strings.Contains(got, `"quoted"`) || strings.Contains(got, "<b>") {
		t.Errorf("label not escaped: %q", got)
	}
}

func TestToMarkup(t *testing.T) {
	n := Node("the plan", "Project Alpha")
	if got := ToMarkup(n); got != "[[the plan]]" {
		t.Errorf("ToMarkup = %q", got)
	}
	if got := ToMarkupWithTarget(n); got != "[[the plan|Project Alpha]]" {
		t.Errorf("ToMarkupWithTarget = %q", got)
	}
	same := Node("Project Alpha", "Project Alpha")
	if got := ToMarkupWithTarget(same); got != "[[Project Alpha]]" {
		t.Errorf("ToMarkupWithTarget = %q", got)
	}
}

func TestExtract(t *testing.T) {
	links := Extract("See [[Note A]] and [[alias|Note B]] and [[ ]].")
	if len(links) != 2 {
		t.Fatalf("len(links) = %d, want 2", len(links))
	}
	if links[0].Target != "note-a.md" || links[0].DisplayText != "Note A" {
		t.Errorf("links[0] = %+v", links[0])
	}
	if links[1].Target != "note-b.md" || links[1].DisplayText != "alias" {
		t.Errorf("links[1] = %+v", links[1])
	}
}

func TestExtract_StrayBracketBeforeLink(t *testing.T) {
	links := Extract(`\[[[Note A]]`)
	if len(links) != 1 || links[0].DisplayText != "Note A" {
		t.Errorf("links = %+v", links)
	}
}

func TestContext(t *testing.T) {
	prefix := strings.Repeat("x", 60)
	content := prefix + " [[Target]] tail"
	got := Context(content, "Target")
	if !strings.HasPrefix(got, "...") {
		t.Errorf("missing leading elision: %q", got)
	}
	if strings.HasSuffix(got, "...") {
		t.Errorf("unexpected trailing elision: %q", got)
	}
	if !strings.Contains(got, "[[Target]] tail") {
		t.Errorf("got = %q", got)
	}
	if Context("no links here", "Target") != "" {
		t.Error("expected empty context")
	}
}

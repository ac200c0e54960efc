package vault

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"text/template"
	"time"
	"unicode"

	"github.com/Masterminds/sprig/v3"

	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
	"github.com/mauropereiira/Moldavite-sub001/internal/bridge"
	"github.com/mauropereiira/Moldavite-sub001/internal/models"
)

//go:embed templates/*.md
var builtinFS embed.FS

var builtins = []models.Template{
	{ID: "meeting-notes", Name: "Meeting Notes", Description: "Structured template for meeting documentation", Icon: "users"},
	{ID: "daily-log", Name: "Daily Log", Description: "Track your daily goals, accomplishments, and reflections", Icon: "calendar"},
	{ID: "project-plan", Name: "Project Plan", Description: "Plan and track project goals, timeline, and resources", Icon: "clipboard"},
}

func builtin(id string) (models.Template, bool) {
	for _, t := range builtins {
		if t.ID != id {
			continue
		}
		data, err := builtinFS.ReadFile("templates/" + id + ".md")
		if err != nil {
			return models.Template{}, false
		}
		t.IsDefault = true
		t.Content = string(data)
		return t, true
	}
	return models.Template{}, false
}

// TemplateID derives a template id from its display name: lowercase,
// runs of non-alphanumerics collapsed to a single '-'.
func TemplateID(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

// customTemplate is the on-disk form of templates/<id>.json.
type customTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	IsDefault   bool   `json:"isDefault"`
	Content     string `json:"content"`
}

func templatePath(id string) string {
	return path.Join(TemplatesDir, id+".json")
}

// ListTemplates returns the built-in templates followed by custom ones
// sorted by name.
func (v *Vault) ListTemplates(_ context.Context) ([]models.Template, error) {
	out := make([]models.Template, 0, len(builtins))
	for _, b := range builtins {
		if t, ok := builtin(b.ID); ok {
			out = append(out, t)
		}
	}
	entries, err := v.store.List(TemplatesDir, ".json")
	if err != nil {
		return nil, fmt.Errorf("vault: list templates: %w", err)
	}
	var custom []models.Template
	for _, e := range entries {
		t, err := v.readCustom(e.Path)
		if err != nil {
			continue
		}
		custom = append(custom, t)
	}
	sort.Slice(custom, func(i, j int) bool {
		return strings.ToLower(custom[i].Name) < strings.ToLower(custom[j].Name)
	})
	return append(out, custom...), nil
}

func (v *Vault) readCustom(p string) (models.Template, error) {
	data, err := v.store.Read(p)
	if err != nil {
		return models.Template{}, err
	}
	var ct customTemplate
	if err := json.Unmarshal(data, &ct); err != nil {
		return models.Template{}, fmt.Errorf("vault: template %s: %w", p, err)
	}
	return models.Template{
		ID:          ct.ID,
		Name:        ct.Name,
		Description: ct.Description,
		Icon:        ct.Icon,
		Content:     ct.Content,
	}, nil
}

// GetTemplate returns a built-in or custom template by id.
func (v *Vault) GetTemplate(_ context.Context, id string) (models.Template, error) {
	if t, ok := builtin(id); ok {
		return t, nil
	}
	if err := checkName(id); err != nil {
		return models.Template{}, err
	}
	t, err := v.readCustom(templatePath(id))
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Template{}, fmt.Errorf("vault: template %s: %w", id, apperr.ErrNotFound)
	}
	return t, err
}

// SaveTemplate stores a custom template. The id is derived from the name
// when empty; built-in ids cannot be overwritten.
func (v *Vault) SaveTemplate(_ context.Context, t models.Template) (models.Template, error) {
	if t.ID == "" {
		t.ID = TemplateID(t.Name)
	}
	if t.ID == "" {
		return models.Template{}, fmt.Errorf("vault: save template: empty name: %w", apperr.ErrInvalidFilename)
	}
	if err := checkName(t.ID); err != nil {
		return models.Template{}, err
	}
	if _, ok := builtin(t.ID); ok {
		return models.Template{}, fmt.Errorf("vault: save template %s: %w", t.ID, apperr.ErrAlreadyExists)
	}
	t.IsDefault = false
	data, err := json.MarshalIndent(customTemplate{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Icon:        t.Icon,
		Content:     t.Content,
	}, "", "  ")
	if err != nil {
		return models.Template{}, fmt.Errorf("vault: encode template: %w", err)
	}
	if err := v.store.Write(templatePath(t.ID), data); err != nil {
		return models.Template{}, fmt.Errorf("vault: save template: %w", err)
	}
	return t, nil
}

// DeleteTemplate removes a custom template.
func (v *Vault) DeleteTemplate(_ context.Context, id string) error {
	if _, ok := builtin(id); ok {
		return fmt.Errorf("vault: delete template %s: built in: %w", id, apperr.ErrConflict)
	}
	if err := checkName(id); err != nil {
		return err
	}
	if err := v.store.Delete(templatePath(id)); err != nil {
		return fmt.Errorf("vault: delete template: %w", err)
	}
	return nil
}

// CreateNoteFromTemplate writes a new note holding the rendered template.
// An existing note (plain or locked) is never overwritten.
func (v *Vault) CreateNoteFromTemplate(ctx context.Context, ref bridge.NoteRef, templateID string) error {
	p, err := notePath(ref)
	if err != nil {
		return err
	}
	if v.store.Exists(p) || v.store.Exists(p+lockedExt) {
		return fmt.Errorf("vault: create note %s: %w", p, apperr.ErrAlreadyExists)
	}
	t, err := v.GetTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	if err := v.store.Write(p, []byte(RenderTemplate(t.Content, v.now()))); err != nil {
		return fmt.Errorf("vault: create note: %w", err)
	}
	return nil
}

// RenderTemplate expands {{date}}, {{time}} and {{day_of_week}} together
// with the sprig function set. Content that does not parse or execute as a
// template only gets the three variables substituted.
func RenderTemplate(content string, now time.Time) string {
	vars := map[string]string{
		"date":        now.Format("2006-01-02"),
		"time":        now.Format("15:04"),
		"day_of_week": now.Format("Monday"),
	}
	funcs := sprig.TxtFuncMap()
	for name, val := range vars {
		funcs[name] = func() string { return val }
	}
	tmpl, err := template.New("note").Funcs(funcs).Option("missingkey=error").Parse(content)
	if err == nil {
		var b strings.Builder
		if err = tmpl.Execute(&b, nil); err == nil {
			return b.String()
		}
	}
	return strings.NewReplacer(
		"{{date}}", vars["date"],
		"{{time}}", vars["time"],
		"{{day_of_week}}", vars["day_of_week"],
	).Replace(content)
}

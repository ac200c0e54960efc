// Package noteservice answers read-side queries over the vault: note
// details, listings, search, fuzzy finding, backlinks with context, task
// status and markup conversion.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
	"github.com/mauropereiira/Moldavite-sub001/internal/checksum"
	"github.com/mauropereiira/Moldavite-sub001/internal/document"
	"github.com/mauropereiira/Moldavite-sub001/internal/index"
	"github.com/mauropereiira/Moldavite-sub001/internal/markup"
	"github.com/mauropereiira/Moldavite-sub001/internal/models"
	"github.com/mauropereiira/Moldavite-sub001/internal/parser"
	"github.com/mauropereiira/Moldavite-sub001/internal/storage"
	"github.com/mauropereiira/Moldavite-sub001/internal/wikilink"
)

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path        string            `json:"path"`
	Kind        string            `json:"kind"`
	Title       string            `json:"title"`
	Markup      string            `json:"markup"`
	HTML        string            `json:"html"`
	Checksum    string            `json:"checksum"`
	Tags        []string          `json:"tags"`
	Frontmatter map[string]any    `json:"frontmatter,omitempty"`
	Links       []models.WikiLink `json:"links"`
	Tasks       models.TaskStatus `json:"tasks"`
	Backlinks   []models.Backlink `json:"backlinks"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	Path      string    `json:"path"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Match is one fuzzy finder hit.
type Match struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Score   int    `json:"score"`
	Matched []int  `json:"matched"` // rune offsets into Title
}

// Service coordinates storage, index and codec for queries.
type Service struct {
	store storage.Provider
	db    index.NoteIndex
	codec *markup.Codec
}

// NewService creates a new note service.
func NewService(store storage.Provider, db index.NoteIndex, codec *markup.Codec) *Service {
	if codec == nil {
		codec = markup.New()
	}
	return &Service{store: store, db: db, codec: codec}
}

func checkPath(p string) error {
	if !index.Indexed(p) || strings.Contains(p, "..") {
		return fmt.Errorf("noteservice: %q: %w", p, apperr.ErrInvalidFilename)
	}
	return nil
}

// GetNote reads a note, decodes it and enriches it with backlinks. Locked
// notes cannot be read here.
func (s *Service) GetNote(ctx context.Context, p string) (*NoteDetail, error) {
	if err := checkPath(p); err != nil {
		return nil, err
	}
	data, err := s.store.Read(p)
	if errors.Is(err, apperr.ErrNotFound) && s.store.Exists(p+".locked") {
		return nil, fmt.Errorf("noteservice: %s: %w", p, apperr.ErrAlreadyLocked)
	}
	if err != nil {
		return nil, err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	bl, err := s.Backlinks(ctx, path.Base(p))
	if err != nil {
		return nil, err
	}
	title := res.Title
	if title == "" {
		title = strings.TrimSuffix(path.Base(p), ".md")
	}
	return &NoteDetail{
		Path:        p,
		Kind:        index.KindOf(p),
		Title:       title,
		Markup:      string(data),
		HTML:        s.codec.Decode(res.Body).HTML(),
		Checksum:    checksum.Sum(data),
		Tags:        nonNilSlice(res.Tags),
		Frontmatter: res.Frontmatter,
		Links:       nonNilSlice(res.Links),
		Tasks:       res.Tasks,
		Backlinks:   bl,
		UpdatedAt:   time.Now(),
	}, nil
}

// ListNotes returns a page of indexed notes, optionally of one kind.
func (s *Service) ListNotes(_ context.Context, kind string, limit, offset int) ([]NoteListItem, int, error) {
	rows, total, err := s.db.ListNotes(kind, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items := make([]NoteListItem, len(rows))
	for i, r := range rows {
		items[i] = listItem(r)
	}
	return items, total, nil
}

func listItem(r index.NoteRow) NoteListItem {
	return NoteListItem{
		Path:      r.Path,
		Kind:      r.Kind,
		Title:     r.Title,
		Checksum:  r.Checksum,
		Tags:      nonNilSlice(r.Tags),
		UpdatedAt: r.UpdatedAt,
	}
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return []index.SearchResult{}, nil
	}
	res, err := s.db.Search(query, limit)
	return nonNilSlice(res), err
}

// findLimit bounds how many notes the fuzzy finder considers.
const findLimit = 10000

// Find fuzzy-matches query against note titles, best match first.
func (s *Service) Find(_ context.Context, query string, limit int) ([]Match, error) {
	rows, _, err := s.db.ListNotes("", findLimit, 0)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Title
	}
	out := []Match{}
	for _, m := range fuzzy.Find(query, names) {
		if len(out) == limit {
			break
		}
		r := rows[m.Index]
		out = append(out, Match{Path: r.Path, Title: r.Title, Score: m.Score, Matched: m.MatchedIndexes})
	}
	return out, nil
}

// Backlinks returns the notes linking to the note stored as filename (for
// example "Project Alpha.md"), with the text around each link.
func (s *Service) Backlinks(_ context.Context, filename string) ([]models.Backlink, error) {
	target := wikilink.Filename(strings.TrimSuffix(filename, ".md"))
	rows, err := s.db.Backlinks(target)
	if err != nil {
		return nil, err
	}
	out := make([]models.Backlink, 0, len(rows))
	for _, r := range rows {
		title := r.Title
		if title == "" {
			title = path.Base(r.Source)
		}
		var ctx string
		if data, err := s.store.Read(r.Source); err == nil {
			ctx = wikilink.Context(string(data), r.Label)
		}
		out = append(out, models.Backlink{FromNote: r.Source, FromTitle: title, Context: ctx})
	}
	return out, nil
}

// TaskStatus returns the task status of a daily note date. ok is false
// when the date has no tasks.
func (s *Service) TaskStatus(_ context.Context, date string) (models.TaskStatus, bool, error) {
	return s.db.TaskStatus(date)
}

// TaskCalendar returns the task status of every date in [from, to].
func (s *Service) TaskCalendar(_ context.Context, from, to string) (map[string]models.TaskStatus, error) {
	return s.db.TaskStatusRange(from, to)
}

// Decode converts stored markup to the editor's HTML form.
func (s *Service) Decode(markupText string) string {
	return s.codec.Decode(markupText).HTML()
}

// Encode converts editor HTML to stored markup.
func (s *Service) Encode(html string) string {
	return s.codec.Encode(document.ParseHTML(html))
}

// IndexFile parses data and upserts it into the index, for writes that
// should be searchable before the watcher catches up.
func (s *Service) IndexFile(p string, data []byte) error {
	if !index.Indexed(p) {
		return nil
	}
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	title := res.Title
	if title == "" {
		title = strings.TrimSuffix(path.Base(p), ".md")
	}
	return s.db.UpsertNote(index.NoteRow{
		Path:      p,
		Title:     title,
		Checksum:  checksum.Sum(data),
		Tags:      nonNilSlice(res.Tags),
		UpdatedAt: time.Now(),
	}, res.Text, res.Links, res.Tasks)
}

// Forget removes a note from the index.
func (s *Service) Forget(p string) error {
	return s.db.DeleteNote(p)
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

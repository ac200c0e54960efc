package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
	"github.com/mauropereiira/Moldavite-sub001/internal/models"
)

// NoteRow represents a row in the notes table.
type NoteRow struct {
	Path      string
	Kind      string
	Title     string
	Checksum  string
	Tags      []string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// LinkRow is one stored wiki link.
type LinkRow struct {
	Source string
	Title  string // title of the source note
	Label  string
}

// KindOf derives the note kind from its vault path.
func KindOf(p string) string {
	switch {
	case strings.HasPrefix(p, "daily/"):
		return models.KindDaily.String()
	case strings.HasPrefix(p, "weekly/"):
		return models.KindWeekly.String()
	default:
		return models.KindStandalone.String()
	}
}

// dailyDate returns the date of a daily note path, or "".
func dailyDate(p string) string {
	if KindOf(p) != models.KindDaily.String() {
		return ""
	}
	return strings.TrimSuffix(path.Base(p), ".md")
}

// UpsertNote inserts or replaces a note, its FTS entry, its links and, for
// daily notes, the date's task status, within one transaction.
func (db *DB) UpsertNote(n NoteRow, body string, links []models.WikiLink, tasks models.TaskStatus) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if n.Kind == "" {
		n.Kind = KindOf(n.Path)
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	tagsJSON, _ := json.Marshal(n.Tags)

	_, err = tx.Exec(`
		INSERT INTO notes (path, kind, title, checksum, tags, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			kind       = excluded.kind,
			title      = excluded.title,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, n.Path, n.Kind, n.Title, n.Checksum, string(tagsJSON), body, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, n.Path, n.Title, body, n.Tags); err != nil {
		return err
	}

	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, n.Path)
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target, label) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, l := range links {
			if _, err := stmt.Exec(n.Path, l.Target, l.DisplayText); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	if date := dailyDate(n.Path); date != "" {
		if err := setTaskStatus(tx, date, tasks); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// setTaskStatus stores st for date. A date without tasks has no row.
func setTaskStatus(tx *sql.Tx, date string, st models.TaskStatus) error {
	var err error
	if st.TotalTasks == 0 {
		_, err = tx.Exec(`DELETE FROM task_status WHERE date = ?`, date)
	} else {
		_, err = tx.Exec(`
			INSERT INTO task_status (date, total, completed) VALUES (?, ?, ?)
			ON CONFLICT(date) DO UPDATE SET total = excluded.total, completed = excluded.completed
		`, date, st.TotalTasks, st.CompletedTasks)
	}
	if err != nil {
		return fmt.Errorf("index: task status: %w", err)
	}
	return nil
}

// DeleteNote removes a note, its FTS entry, outgoing links and task status.
func (db *DB) DeleteNote(p string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, p)
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, p)
	_, _ = tx.Exec(`DELETE FROM notes WHERE path = ?`, p)
	if date := dailyDate(p); date != "" {
		_, _ = tx.Exec(`DELETE FROM task_status WHERE date = ?`, date)
	}

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a note, or empty string if not found.
func (db *DB) GetChecksum(p string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE path = ?`, p).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// GetNote returns one indexed note.
func (db *DB) GetNote(p string) (*NoteRow, error) {
	row := db.conn.QueryRow(`SELECT path, kind, title, checksum, tags, updated_at FROM notes WHERE path = ?`, p)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: note %s: %w", p, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get note: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (*NoteRow, error) {
	var (
		n    NoteRow
		tags string
	)
	if err := s.Scan(&n.Path, &n.Kind, &n.Title, &n.Checksum, &tags, &n.UpdatedAt); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(tags), &n.Tags)
	return &n, nil
}

// ListNotes returns a page of notes ordered by path, optionally restricted
// to one kind, together with the total count.
func (db *DB) ListNotes(kind string, limit, offset int) ([]NoteRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes WHERE ? = '' OR kind = ?`, kind, kind).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count notes: %w", err)
	}
	rows, err := db.conn.Query(`
		SELECT path, kind, title, checksum, tags, updated_at
		FROM notes
		WHERE ? = '' OR kind = ?
		ORDER BY path
		LIMIT ? OFFSET ?
	`, kind, kind, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list notes: %w", err)
	}
	defer rows.Close()

	var out []NoteRow
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *n)
	}
	return out, total, rows.Err()
}

// AllChecksums returns the checksum of every indexed note keyed by path.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Backlinks returns every note linking to target (a slug filename such as
// "project-alpha.md"), excluding the target's own file.
func (db *DB) Backlinks(target string) ([]LinkRow, error) {
	rows, err := db.conn.Query(`
		SELECT l.source, COALESCE(n.title, ''), l.label
		FROM links l LEFT JOIN notes n ON n.path = l.source
		WHERE l.target = ?
		ORDER BY l.source
	`, target)
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []LinkRow
	for rows.Next() {
		var r LinkRow
		if err := rows.Scan(&r.Source, &r.Title, &r.Label); err != nil {
			return nil, err
		}
		if path.Base(r.Source) == target {
			continue
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TaskStatus returns the stored status of date. ok is false when the date
// has no tasks.
func (db *DB) TaskStatus(date string) (st models.TaskStatus, ok bool, err error) {
	err = db.conn.QueryRow(`SELECT total, completed FROM task_status WHERE date = ?`, date).
		Scan(&st.TotalTasks, &st.CompletedTasks)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TaskStatus{}, false, nil
	}
	if err != nil {
		return models.TaskStatus{}, false, fmt.Errorf("index: task status: %w", err)
	}
	return st, true, nil
}

// TaskStatusRange returns the status of every date in [from, to] that has
// tasks. Dates compare as YYYY-MM-DD strings.
func (db *DB) TaskStatusRange(from, to string) (map[string]models.TaskStatus, error) {
	rows, err := db.conn.Query(`SELECT date, total, completed FROM task_status WHERE date >= ? AND date <= ?`, from, to)
	if err != nil {
		return nil, fmt.Errorf("index: task status range: %w", err)
	}
	defer rows.Close()
	out := make(map[string]models.TaskStatus)
	for rows.Next() {
		var (
			date string
			st   models.TaskStatus
		)
		if err := rows.Scan(&date, &st.TotalTasks, &st.CompletedTasks); err != nil {
			return nil, err
		}
		out[date] = st
	}
	return out, rows.Err()
}

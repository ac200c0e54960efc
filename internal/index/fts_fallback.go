//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; full-text search uses LIKE fallback on the notes.body column.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _ string, _ []string) error {
	// Body is already stored in the notes table; nothing extra to do.
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

const snippetRadius = 60

// Search performs a case-insensitive LIKE search over title, text and tags
// (fallback when FTS5 is not compiled in). Title hits rank first.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT path, title, body
		FROM notes
		WHERE title LIKE ? OR body LIKE ? OR tags LIKE ?
		ORDER BY (title LIKE ?) DESC, path
		LIMIT ?
	`, like, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var (
			r    SearchResult
			body string
		)
		if err := rows.Scan(&r.Path, &r.Title, &body); err != nil {
			return nil, err
		}
		r.Snippet = snippet(body, query)
		out = append(out, r)
	}
	return out, rows.Err()
}

// snippet returns the text around the first case-insensitive match of q.
func snippet(body, q string) string {
	i := strings.Index(strings.ToLower(body), strings.ToLower(q))
	if i < 0 || len(strings.ToLower(body)) != len(body) {
		i = 0
	}
	start := max(i-snippetRadius, 0)
	end := min(i+len(q)+snippetRadius, len(body))
	for start > 0 && !utf8.RuneStart(body[start]) {
		start--
	}
	for end < len(body) && !utf8.RuneStart(body[end]) {
		end++
	}
	s := strings.ReplaceAll(body[start:end], "\n", " ")
	if start > 0 {
		s = "..." + s
	}
	if end < len(body) {
		s += "..."
	}
	return s
}

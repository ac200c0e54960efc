package index

import (
	"log/slog"
	"strings"

	"github.com/mauropereiira/Moldavite-sub001/internal/checksum"
	"github.com/mauropereiira/Moldavite-sub001/internal/parser"
	"github.com/mauropereiira/Moldavite-sub001/internal/storage"
)

// NoteDirs are the vault directories holding notes.
var NoteDirs = []string{"daily", "weekly", "notes"}

// Indexed reports whether a vault path is a note the index tracks. Locked
// notes are encrypted and never indexed.
func Indexed(p string) bool {
	if !strings.HasSuffix(p, ".md") {
		return false
	}
	for _, d := range NoteDirs {
		if strings.HasPrefix(p, d+"/") {
			return true
		}
	}
	return false
}

// listNotes returns every note file in the vault keyed by path.
func listNotes(store storage.Provider) (map[string]storage.Entry, error) {
	out := make(map[string]storage.Entry)
	for _, d := range NoteDirs {
		entries, err := store.List(d, ".md")
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			out[e.Path] = e
		}
	}
	return out, nil
}

// Sync walks the vault and brings the index up to date:
//   - new/changed notes are parsed and upserted
//   - notes removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	disk, err := listNotes(store)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	for p, e := range disk {
		if checksums[p] == e.Checksum {
			continue
		}
		data, err := store.Read(p)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, e, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", p), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", p))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteNote(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile parses data and upserts it into the DB.
func indexFile(db *DB, e storage.Entry, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	title := res.Title
	if title == "" {
		title = strings.TrimSuffix(e.Path[strings.LastIndex(e.Path, "/")+1:], ".md")
	}
	row := NoteRow{
		Path:      e.Path,
		Title:     title,
		Checksum:  checksum.Sum(data),
		Tags:      res.Tags,
		UpdatedAt: e.UpdatedAt,
	}
	return db.UpsertNote(row, res.Text, res.Links, res.Tasks)
}

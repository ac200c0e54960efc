package index

import "github.com/mauropereiira/Moldavite-sub001/internal/models"

// NoteIndex is the read/write surface of the note index. Services depend on
// it rather than on *DB so they can be tested with fakes.
type NoteIndex interface {
	UpsertNote(n NoteRow, body string, links []models.WikiLink, tasks models.TaskStatus) error
	DeleteNote(path string) error
	GetChecksum(path string) (string, error)
	GetNote(path string) (*NoteRow, error)
	ListNotes(kind string, limit, offset int) ([]NoteRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Backlinks(target string) ([]LinkRow, error)
	TaskStatus(date string) (models.TaskStatus, bool, error)
	TaskStatusRange(from, to string) (map[string]models.TaskStatus, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

var _ NoteIndex = (*DB)(nil)

// Package bridge defines the command interface through which the note core
// reaches storage, encryption and directory management.
package bridge

import (
	"context"

	"github.com/mauropereiira/Moldavite-sub001/internal/models"
)

// NoteRef identifies a note file to a backend. Filename is relative to the
// kind's directory: "2024-01-15.md" for daily notes, "2024-W03.md" for weekly
// notes and "[folder/]Title.md" for standalone notes.
type NoteRef struct {
	Filename string `json:"filename"`
	IsDaily  bool   `json:"is_daily"`
	IsWeekly bool   `json:"is_weekly"`
}

// Kind returns the note kind the ref points into.
func (r NoteRef) Kind() models.Kind {
	switch {
	case r.IsWeekly:
		return models.KindWeekly
	case r.IsDaily:
		return models.KindDaily
	default:
		return models.KindStandalone
	}
}

// RefFor builds the ref of a listing record.
func RefFor(f models.NoteFile) NoteRef {
	name := f.Name
	if f.FolderPath != "" {
		name = f.FolderPath + "/" + f.Name
	}
	return NoteRef{Filename: name, IsDaily: f.IsDaily, IsWeekly: f.IsWeekly}
}

// Commands is the narrow request/response surface consumed by the core.
// Implementations must be safe for concurrent use.
type Commands interface {
	ListNotes(ctx context.Context) ([]models.NoteFile, error)
	ListFolders(ctx context.Context) ([]models.FolderInfo, error)
	ListTrash(ctx context.Context) ([]models.TrashedNote, error)

	// ReadNote returns the stored markup, or "" when the note does not exist.
	ReadNote(ctx context.Context, ref NoteRef) (string, error)
	WriteNote(ctx context.Context, ref NoteRef, markup string) error
	// DeleteNote removes the note; deleting a missing note is not an error.
	DeleteNote(ctx context.Context, ref NoteRef) error
	CreateNoteFromTemplate(ctx context.Context, ref NoteRef, templateID string) error

	LockNote(ctx context.Context, ref NoteRef, password string) error
	// UnlockNote decrypts a locked note for viewing and returns its markup;
	// the stored file stays encrypted.
	UnlockNote(ctx context.Context, ref NoteRef, password string) (string, error)
	PermanentlyUnlockNote(ctx context.Context, ref NoteRef, password string) error
	IsNoteLocked(ctx context.Context, ref NoteRef) (bool, error)

	// RenameNote and MoveNote relocate a standalone note and return its new
	// ref. DuplicateNote returns the ref of the copy.
	RenameNote(ctx context.Context, ref NoteRef, newName string) (NoteRef, error)
	MoveNote(ctx context.Context, ref NoteRef, folder string) (NoteRef, error)
	DuplicateNote(ctx context.Context, ref NoteRef) (NoteRef, error)
	CreateNoteFromLink(ctx context.Context, name string) (NoteRef, error)

	// NoteColors maps note paths to color ids.
	NoteColors(ctx context.Context) (map[string]string, error)
	SetNoteColor(ctx context.Context, notePath, color string) error

	TrashNote(ctx context.Context, ref NoteRef) (models.TrashedNote, error)
	RestoreNote(ctx context.Context, id string) error
	ListTemplates(ctx context.Context) ([]models.Template, error)
}

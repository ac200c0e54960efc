// Package models defines the domain types for Moldavite.
package models

import "time"

// Kind tags what sort of note a Note is.
type Kind int

const (
	KindStandalone Kind = iota
	KindDaily
	KindWeekly
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindDaily:
		return "daily"
	case KindWeekly:
		return "weekly"
	default:
		return "standalone"
	}
}

// Note is a note materialized in memory. Content holds the editor's
// serialized document (sanitized HTML), never the stored markup.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Kind      Kind      `json:"kind"`
	Date      string    `json:"date,omitempty"` // YYYY-MM-DD for daily notes
	Week      string    `json:"week,omitempty"` // YYYY-Www for weekly notes
	Folder    string    `json:"folder,omitempty"`
	IsPinned  bool      `json:"is_pinned"`
	IsLocked  bool      `json:"is_locked"`
	IsVirtual bool      `json:"is_virtual"`
}

// IsPeriodic reports whether the note is a daily or weekly note.
func (n *Note) IsPeriodic() bool {
	return n.Kind == KindDaily || n.Kind == KindWeekly
}

// NoteFile is a directory-listing record produced by the list_notes command.
type NoteFile struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	IsDaily    bool   `json:"is_daily"`
	IsWeekly   bool   `json:"is_weekly"`
	Date       string `json:"date,omitempty"`
	Week       string `json:"week,omitempty"`
	IsLocked   bool   `json:"is_locked"`
	FolderPath string `json:"folder_path,omitempty"`
}

// Kind derives the note kind from the listing flags.
func (f NoteFile) Kind() Kind {
	switch {
	case f.IsWeekly:
		return KindWeekly
	case f.IsDaily:
		return KindDaily
	default:
		return KindStandalone
	}
}

// FolderInfo is a node of the standalone-notes folder tree.
type FolderInfo struct {
	Name     string       `json:"name"`
	Path     string       `json:"path"`
	Children []FolderInfo `json:"children"`
}

// TrashedNote is a trash listing record.
type TrashedNote struct {
	ID             string   `json:"id"`
	Filename       string   `json:"filename"`
	OriginalPath   string   `json:"original_path"`
	IsDaily        bool     `json:"is_daily"`
	IsWeekly       bool     `json:"is_weekly"`
	IsFolder       bool     `json:"is_folder"`
	ContainedFiles []string `json:"contained_files"`
	TrashedAt      int64    `json:"trashed_at"`
	DaysRemaining  int      `json:"days_remaining"`
}

// TaskStatus counts checkable items of a document.
type TaskStatus struct {
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
}

// WikiLink is a cross-note reference extracted from markup.
type WikiLink struct {
	DisplayText string `json:"display_text"`
	Target      string `json:"target"` // slug filename, e.g. "project-alpha.md"
}

// Template is a note template, built in or user defined.
type Template struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
	IsDefault   bool   `json:"is_default" yaml:"-"`
	Content     string `json:"content" yaml:"-"`
}

// Backlink is a note that links to another note, with the text around the
// link.
type Backlink struct {
	FromNote  string `json:"from_note"` // vault-relative path
	FromTitle string `json:"from_title"`
	Context   string `json:"context"`
}

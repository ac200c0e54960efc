package lifecycle

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/mauropereiira/Moldavite-sub001/internal/bridge"
	"github.com/mauropereiira/Moldavite-sub001/internal/models"
)

const noteExt = ".md"

// DailyName returns the date key of a daily note, "2006-01-02".
func DailyName(t time.Time) string {
	return t.Format(time.DateOnly)
}

// WeeklyName returns the ISO week key of a weekly note, "2024-W03".
func WeeklyName(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", y, w)
}

func kindDir(k models.Kind) string {
	switch k {
	case models.KindDaily:
		return "daily"
	case models.KindWeekly:
		return "weekly"
	default:
		return "notes"
	}
}

// NoteID returns the id (vault path) of the note a ref points to.
func NoteID(ref bridge.NoteRef) string {
	return kindDir(ref.Kind()) + "/" + ref.Filename
}

// refOf derives the authoritative ref of n from its kind: the date or week
// for periodic notes, [folder/]title for standalone ones.
func refOf(n *models.Note) bridge.NoteRef {
	switch n.Kind {
	case models.KindDaily:
		return bridge.NoteRef{Filename: n.Date + noteExt, IsDaily: true}
	case models.KindWeekly:
		return bridge.NoteRef{Filename: n.Week + noteExt, IsWeekly: true}
	}
	name := n.Title + noteExt
	if n.Folder != "" {
		name = n.Folder + "/" + name
	}
	return bridge.NoteRef{Filename: name}
}

// fileOf builds the listing record of n.
func fileOf(n *models.Note) models.NoteFile {
	ref := refOf(n)
	folder, name := path.Split(ref.Filename)
	return models.NoteFile{
		Name:       name,
		Path:       NoteID(ref),
		IsDaily:    ref.IsDaily,
		IsWeekly:   ref.IsWeekly,
		Date:       n.Date,
		Week:       n.Week,
		FolderPath: strings.TrimSuffix(folder, "/"),
	}
}

// noteFromFile materializes a listed note with its editor content.
func noteFromFile(f models.NoteFile, content string, now time.Time) *models.Note {
	n := &models.Note{
		ID:        f.Path,
		Title:     strings.TrimSuffix(f.Name, noteExt),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
		Kind:      f.Kind(),
		Date:      f.Date,
		Week:      f.Week,
	}
	if n.Kind == models.KindStandalone {
		n.Folder = f.FolderPath
	}
	return n
}

// periodicRef returns the ref of the daily or weekly note covering t.
func periodicRef(kind models.Kind, t time.Time) bridge.NoteRef {
	if kind == models.KindWeekly {
		return bridge.NoteRef{Filename: WeeklyName(t) + noteExt, IsWeekly: true}
	}
	return bridge.NoteRef{Filename: DailyName(t) + noteExt, IsDaily: true}
}

// periodicNote materializes the daily or weekly note covering t.
func periodicNote(kind models.Kind, t time.Time, content string, now time.Time) *models.Note {
	n := &models.Note{
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
		Kind:      kind,
	}
	if kind == models.KindWeekly {
		n.Week = WeeklyName(t)
		n.Title = n.Week
	} else {
		n.Date = DailyName(t)
		n.Title = n.Date
	}
	n.ID = NoteID(refOf(n))
	return n
}

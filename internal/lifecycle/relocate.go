package lifecycle

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
	"github.com/mauropereiira/Moldavite-sub001/internal/bridge"
	"github.com/mauropereiira/Moldavite-sub001/internal/models"
)

// RenameNote renames the standalone note id within its folder and returns
// its new id. An open tab follows the note.
func (c *Controller) RenameNote(ctx context.Context, id, newName string) (string, error) {
	return c.relocate(ctx, "rename", id, func(ref bridge.NoteRef) (bridge.NoteRef, error) {
		return c.cmds.RenameNote(ctx, ref, newName)
	})
}

// MoveNote moves the standalone note id into folder ("" for the notes root)
// and returns its new id. An open tab follows the note.
func (c *Controller) MoveNote(ctx context.Context, id, folder string) (string, error) {
	return c.relocate(ctx, "move", id, func(ref bridge.NoteRef) (bridge.NoteRef, error) {
		return c.cmds.MoveNote(ctx, ref, folder)
	})
}

func (c *Controller) relocate(ctx context.Context, op, id string, move func(bridge.NoteRef) (bridge.NoteRef, error)) (string, error) {
	var newID string
	err := c.do(ctx, func() error {
		ref, err := c.refFor(op, id)
		if err != nil {
			return err
		}
		if id == c.tabs.active {
			if err := c.flush(ctx); err != nil {
				return err
			}
		}
		next, err := move(ref)
		if err != nil {
			return fmt.Errorf("lifecycle: %s %s: %w", op, id, err)
		}
		newID = NoteID(next)
		if newID != id {
			c.rekey(id, next)
		}
		return nil
	})
	return newID, err
}

// DuplicateNote copies the note id and returns the id of the copy. The copy
// is listed but not opened.
func (c *Controller) DuplicateNote(ctx context.Context, id string) (string, error) {
	var newID string
	err := c.do(ctx, func() error {
		ref, err := c.refFor("duplicate", id)
		if err != nil {
			return err
		}
		if id == c.tabs.active {
			if err := c.flush(ctx); err != nil {
				return err
			}
		}
		next, err := c.cmds.DuplicateNote(ctx, ref)
		if err != nil {
			return fmt.Errorf("lifecycle: duplicate %s: %w", id, err)
		}
		newID = c.list(next).Path
		return nil
	})
	return newID, err
}

// CreateNoteFromLink creates the note a dangling wiki link points to and
// opens it. It returns the new note's id.
func (c *Controller) CreateNoteFromLink(ctx context.Context, name string, inNewTab bool) (string, error) {
	var file models.NoteFile
	err := c.do(ctx, func() error {
		ref, err := c.cmds.CreateNoteFromLink(ctx, name)
		if err != nil {
			return fmt.Errorf("lifecycle: create %q: %w", name, err)
		}
		file = c.list(ref)
		return nil
	})
	if err != nil {
		return "", err
	}
	return file.Path, c.OpenFile(ctx, file, inNewTab)
}

// refFor returns the bridge ref of a stored, unlocked note.
func (c *Controller) refFor(op, id string) (bridge.NoteRef, error) {
	f, listed := c.file(id)
	n := c.tabs.get(id)
	switch {
	case c.grants[id] || (listed && f.IsLocked):
		return bridge.NoteRef{}, fmt.Errorf("lifecycle: %s %s: %w", op, id, apperr.ErrAlreadyLocked)
	case listed:
		return bridge.RefFor(f), nil
	case n != nil && !n.IsVirtual:
		return refOf(n), nil
	}
	return bridge.NoteRef{}, fmt.Errorf("lifecycle: %s %s: %w", op, id, apperr.ErrNotFound)
}

// standaloneFile builds the listing record of a standalone ref.
func standaloneFile(ref bridge.NoteRef) models.NoteFile {
	folder, name := path.Split(ref.Filename)
	return models.NoteFile{
		Name:       name,
		Path:       NoteID(ref),
		FolderPath: strings.TrimSuffix(folder, "/"),
	}
}

// list adds a newly stored standalone note to the listing.
func (c *Controller) list(ref bridge.NoteRef) models.NoteFile {
	f := standaloneFile(ref)
	if !c.listed(f.Path) {
		c.files = append(c.files, f)
	}
	c.emit(Event{Type: EventListing, NoteID: f.Path})
	return f
}

// rekey points the listing entry and any open tab of oldID at ref.
func (c *Controller) rekey(oldID string, ref bridge.NoteRef) {
	f := standaloneFile(ref)
	if i := slices.IndexFunc(c.files, func(x models.NoteFile) bool { return x.Path == oldID }); i >= 0 {
		c.files[i] = f
	} else {
		c.files = append(c.files, f)
	}
	c.emit(Event{Type: EventListing, NoteID: f.Path})

	n := c.tabs.get(oldID)
	if n == nil {
		return
	}
	n.ID = f.Path
	n.Title = strings.TrimSuffix(f.Name, noteExt)
	n.Folder = f.FolderPath
	if c.tabs.active == oldID {
		c.tabs.active = f.Path
	}
	c.saver.rekey(oldID, f.Path)
	c.emit(Event{Type: EventTabs, NoteID: f.Path})
}

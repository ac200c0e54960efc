package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
)

func TestRenameNote_TabFollows(t *testing.T) {
	c, b, clk := newTestController(t)
	ctx := context.Background()
	f := b.put("notes/work/Plan.md", "plan\n")
	require.NoError(t, c.RefreshListing(ctx))
	require.NoError(t, c.OpenFile(ctx, f, false))
	require.NoError(t, c.UpdateContent(ctx, "notes/work/Plan.md", "<p>unsaved</p>"))

	id, err := c.RenameNote(ctx, "notes/work/Plan.md", "Roadmap")
	require.NoError(t, err)
	require.Equal(t, "notes/work/Roadmap.md", id)

	// The pending edit was written before the rename.
	got, ok := b.get(id)
	require.True(t, ok)
	require.Equal(t, "unsaved\n", got)
	require.Equal(t, 0, clk.Pending())

	tabs := c.Tabs()
	require.Equal(t, []string{id}, tabIDs(tabs))
	require.Equal(t, "Roadmap", tabs[0].Title)
	require.Equal(t, "work", tabs[0].Folder)
	require.Equal(t, id, activeID(t, c))
	require.Equal(t, "Roadmap.md", fileByPath(t, c, id).Name)
	require.Len(t, c.Files(), 1)

	// Later edits land under the new name.
	require.NoError(t, c.UpdateContent(ctx, id, "<p>after</p>"))
	require.NoError(t, c.FlushCurrentNote(ctx))
	got, _ = b.get(id)
	require.Equal(t, "after\n", got)
	_, ok = b.get("notes/work/Plan.md")
	require.False(t, ok)
}

func TestRenameNote_Refused(t *testing.T) {
	c, b, _ := newTestController(t)
	ctx := context.Background()
	b.put("notes/A.md", "a\n")
	b.put("notes/B.md", "b\n")
	b.put(dailyID, "day\n")
	addLocked(b, "notes/Secret.md", "pw", "s\n")
	require.NoError(t, c.RefreshListing(ctx))

	_, err := c.RenameNote(ctx, "notes/A.md", "B")
	require.ErrorIs(t, err, apperr.ErrAlreadyExists)
	_, err = c.RenameNote(ctx, dailyID, "X")
	require.ErrorIs(t, err, apperr.ErrInvalidFilename)
	_, err = c.RenameNote(ctx, "notes/Secret.md", "Open")
	require.ErrorIs(t, err, apperr.ErrAlreadyLocked)
	_, err = c.RenameNote(ctx, "notes/Missing.md", "X")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	fileByPath(t, c, "notes/A.md")
}

func TestMoveNote_InactiveTabFollows(t *testing.T) {
	c, b, _ := newTestController(t)
	ctx := context.Background()
	fa := b.put("notes/A.md", "a\n")
	fb := b.put("notes/B.md", "b\n")
	require.NoError(t, c.RefreshListing(ctx))
	require.NoError(t, c.OpenFile(ctx, fa, true))
	require.NoError(t, c.OpenFile(ctx, fb, true))

	id, err := c.MoveNote(ctx, "notes/A.md", "archive")
	require.NoError(t, err)
	require.Equal(t, "notes/archive/A.md", id)
	require.Equal(t, []string{id, "notes/B.md"}, tabIDs(c.Tabs()))
	require.Equal(t, "notes/B.md", activeID(t, c))
	require.Equal(t, "archive", fileByPath(t, c, id).FolderPath)

	require.NoError(t, c.ActivateTab(ctx, id))
	require.Equal(t, id, activeID(t, c))
}

func TestDuplicateNote(t *testing.T) {
	c, b, _ := newTestController(t)
	ctx := context.Background()
	f := b.put("notes/A.md", "a\n")
	require.NoError(t, c.RefreshListing(ctx))
	require.NoError(t, c.OpenFile(ctx, f, false))
	require.NoError(t, c.UpdateContent(ctx, "notes/A.md", "<p>edited</p>"))

	id, err := c.DuplicateNote(ctx, "notes/A.md")
	require.NoError(t, err)
	require.Equal(t, "notes/A (copy).md", id)

	got, _ := b.get(id)
	require.Equal(t, "edited\n", got)
	fileByPath(t, c, id)
	require.Equal(t, []string{"notes/A.md"}, tabIDs(c.Tabs()))

	_, err = c.DuplicateNote(ctx, "notes/Missing.md")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateNoteFromLink(t *testing.T) {
	c, b, _ := newTestController(t)
	ctx := context.Background()

	id, err := c.CreateNoteFromLink(ctx, "Project Plan", false)
	require.NoError(t, err)
	require.Equal(t, "notes/project-plan.md", id)

	got, _ := b.get(id)
	require.Equal(t, "# Project Plan\n\n", got)
	require.Equal(t, id, activeID(t, c))
	fileByPath(t, c, id)

	_, err = c.CreateNoteFromLink(ctx, "project plan", false)
	require.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

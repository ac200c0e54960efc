package vault

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
	"github.com/mauropereiira/Moldavite-sub001/internal/bridge"
	"github.com/mauropereiira/Moldavite-sub001/internal/models"
	"github.com/mauropereiira/Moldavite-sub001/internal/storage"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newVault(t *testing.T) (*Vault, *fakeClock, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	require.NoError(t, err)
	clock := &fakeClock{t: time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)}
	v, err := New(store, WithClock(clock.Now))
	require.NoError(t, err)
	return v, clock, dir
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o700))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
}

var (
	daily      = bridge.NoteRef{Filename: "2024-01-15.md", IsDaily: true}
	weekly     = bridge.NoteRef{Filename: "2024-W03.md", IsWeekly: true}
	standalone = bridge.NoteRef{Filename: "Ideas.md"}
)

func TestListNotes(t *testing.T) {
	v, _, root := newVault(t)
	writeFile(t, root, "daily/2024-01-15.md", "day")
	writeFile(t, root, "daily/2024-01-16.md.locked", "x$y$z")
	writeFile(t, root, "weekly/2024-W03.md", "week")
	writeFile(t, root, "notes/Ideas.md", "ideas")
	writeFile(t, root, "notes/work/Plan.md", "plan")
	writeFile(t, root, "notes/.hidden/Secret.md", "nope")
	writeFile(t, root, "notes/readme.txt", "skip")

	files, err := v.ListNotes(context.Background())
	require.NoError(t, err)

	byPath := make(map[string]models.NoteFile)
	for _, f := range files {
		byPath[f.Path] = f
	}
	require.Len(t, byPath, 5)

	d := byPath["daily/2024-01-15.md"]
	require.True(t, d.IsDaily)
	require.Equal(t, "2024-01-15", d.Date)

	locked := byPath["daily/2024-01-16.md"]
	require.True(t, locked.IsLocked)
	require.Equal(t, "2024-01-16.md", locked.Name)

	require.Equal(t, "2024-W03", byPath["weekly/2024-W03.md"].Week)

	plan := byPath["notes/work/Plan.md"]
	require.Equal(t, "work", plan.FolderPath)
	require.Equal(t, "Plan.md", plan.Name)
	require.Equal(t, "work/Plan.md", bridge.RefFor(plan).Filename)
}

func TestListFolders(t *testing.T) {
	v, _, root := newVault(t)
	for _, d := range []string{"notes/beta/inner", "notes/Alpha", "notes/.git"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o700))
	}
	folders, err := v.ListFolders(context.Background())
	require.NoError(t, err)
	require.Len(t, folders, 2)
	require.Equal(t, "Alpha", folders[0].Name)
	require.Equal(t, "beta", folders[1].Name)
	require.Equal(t, []models.FolderInfo{{Name: "inner", Path: "beta/inner", Children: []models.FolderInfo{}}}, folders[1].Children)
}

func TestReadWriteDelete(t *testing.T) {
	ctx := context.Background()
	v, _, root := newVault(t)

	got, err := v.ReadNote(ctx, daily)
	require.NoError(t, err)
	require.Empty(t, got)

	require.NoError(t, v.WriteNote(ctx, daily, "- [ ] task\n"))
	got, err = v.ReadNote(ctx, daily)
	require.NoError(t, err)
	require.Equal(t, "- [ ] task\n", got)
	require.FileExists(t, filepath.Join(root, "daily", "2024-01-15.md"))

	require.NoError(t, v.WriteNote(ctx, bridge.NoteRef{Filename: "deep/nested/N.md"}, "n"))
	require.FileExists(t, filepath.Join(root, "notes", "deep", "nested", "N.md"))

	require.NoError(t, v.DeleteNote(ctx, daily))
	require.NoError(t, v.DeleteNote(ctx, daily), "deleting a missing note is not an error")
}

func TestRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	v, _, _ := newVault(t)
	bad := bridge.NoteRef{Filename: "../escape.md"}

	_, err := v.ReadNote(ctx, bad)
	require.ErrorIs(t, err, apperr.ErrInvalidFilename)
	require.ErrorIs(t, v.WriteNote(ctx, bad, "x"), apperr.ErrInvalidFilename)
	require.ErrorIs(t, v.DeleteNote(ctx, bad), apperr.ErrInvalidFilename)
	require.ErrorIs(t, v.LockNote(ctx, bad, "pw"), apperr.ErrInvalidFilename)
}

func TestLockUnlock(t *testing.T) {
	ctx := context.Background()
	v, _, root := newVault(t)
	require.NoError(t, v.WriteNote(ctx, standalone, "secret plans"))

	require.NoError(t, v.LockNote(ctx, standalone, "hunter2"))
	require.NoFileExists(t, filepath.Join(root, "notes", "Ideas.md"))
	raw, err := os.ReadFile(filepath.Join(root, "notes", "Ideas.md.locked"))
	require.NoError(t, err)
	require.Len(t, strings.Split(string(raw), "$"), 3)
	require.NotContains(t, string(raw), "secret")

	locked, err := v.IsNoteLocked(ctx, standalone)
	require.NoError(t, err)
	require.True(t, locked)

	require.ErrorIs(t, v.LockNote(ctx, standalone, "again"), apperr.ErrAlreadyLocked)
	require.ErrorIs(t, v.WriteNote(ctx, standalone, "overwrite"), apperr.ErrAlreadyLocked)

	plain, err := v.UnlockNote(ctx, standalone, "hunter2")
	require.NoError(t, err)
	require.Equal(t, "secret plans", plain)
	require.FileExists(t, filepath.Join(root, "notes", "Ideas.md.locked"))

	require.NoError(t, v.PermanentlyUnlockNote(ctx, standalone, "hunter2"))
	got, err := v.ReadNote(ctx, standalone)
	require.NoError(t, err)
	require.Equal(t, "secret plans", got)
	locked, err = v.IsNoteLocked(ctx, standalone)
	require.NoError(t, err)
	require.False(t, locked)
}

func TestLockMissingNote(t *testing.T) {
	ctx := context.Background()
	v, _, _ := newVault(t)
	require.ErrorIs(t, v.LockNote(ctx, standalone, "pw"), apperr.ErrNotFound)
	_, err := v.UnlockNote(ctx, standalone, "pw")
	require.ErrorIs(t, err, apperr.ErrNotLocked)
}

func TestUnlockWrongPasswordAndRateLimit(t *testing.T) {
	ctx := context.Background()
	v, clock, _ := newVault(t)
	require.NoError(t, v.WriteNote(ctx, daily, "diary"))
	require.NoError(t, v.LockNote(ctx, daily, "right"))

	for want := MaxAttempts - 1; want > 0; want-- {
		_, err := v.UnlockNote(ctx, daily, "wrong")
		var pe *apperr.PasswordError
		require.ErrorAs(t, err, &pe)
		require.Equal(t, want, pe.Remaining)
		require.ErrorIs(t, err, apperr.ErrWrongPassword)
	}

	_, err := v.UnlockNote(ctx, daily, "wrong")
	var rl *apperr.RateLimitError
	require.ErrorAs(t, err, &rl)
	require.Equal(t, 30*time.Second, rl.RetryAfter)

	// Even the right password is refused during the lockout.
	_, err = v.UnlockNote(ctx, daily, "right")
	require.ErrorIs(t, err, apperr.ErrRateLimited)

	clock.Advance(31 * time.Second)
	plain, err := v.UnlockNote(ctx, daily, "right")
	require.NoError(t, err)
	require.Equal(t, "diary", plain)
}

func TestUnlockCorruptedFile(t *testing.T) {
	ctx := context.Background()
	v, _, root := newVault(t)
	writeFile(t, root, "weekly/2024-W03.md.locked", "not an encrypted note")

	_, err := v.UnlockNote(ctx, weekly, "pw")
	require.ErrorIs(t, err, apperr.ErrCorrupted)
	require.False(t, errors.Is(err, apperr.ErrWrongPassword))
}

func TestTrashRestore(t *testing.T) {
	ctx := context.Background()
	v, clock, root := newVault(t)
	require.NoError(t, v.WriteNote(ctx, bridge.NoteRef{Filename: "work/Plan.md"}, "plan"))

	item, err := v.TrashNote(ctx, bridge.NoteRef{Filename: "work/Plan.md"})
	require.NoError(t, err)
	require.Equal(t, "Plan.md", item.Filename)
	require.Equal(t, "work/Plan.md", item.OriginalPath)
	require.Equal(t, 7, item.DaysRemaining)
	require.NoFileExists(t, filepath.Join(root, "notes", "work", "Plan.md"))
	require.FileExists(t, filepath.Join(root, ".trash", item.ID+"_work_Plan.md"))

	clock.Advance(36 * time.Hour)
	items, err := v.ListTrash(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 6, items[0].DaysRemaining)

	require.NoError(t, v.RestoreNote(ctx, item.ID))
	require.FileExists(t, filepath.Join(root, "notes", "work", "Plan.md"))
	items, err = v.ListTrash(ctx)
	require.NoError(t, err)
	require.Empty(t, items)

	require.ErrorIs(t, v.RestoreNote(ctx, item.ID), apperr.ErrNotFound)
}

func TestTrashDailyRestoresToDaily(t *testing.T) {
	ctx := context.Background()
	v, _, root := newVault(t)
	require.NoError(t, v.WriteNote(ctx, weekly, "week"))
	item, err := v.TrashNote(ctx, weekly)
	require.NoError(t, err)
	require.True(t, item.IsWeekly)
	require.NoError(t, v.RestoreNote(ctx, item.ID))
	require.FileExists(t, filepath.Join(root, "weekly", "2024-W03.md"))
}

func TestTrashFolderAndCleanup(t *testing.T) {
	ctx := context.Background()
	v, clock, root := newVault(t)
	writeFile(t, root, "notes/old/A.md", "a")
	writeFile(t, root, "notes/old/sub/B.md", "b")
	require.NoError(t, v.WriteNote(ctx, standalone, "ideas"))

	folder, err := v.TrashFolder(ctx, "old")
	require.NoError(t, err)
	require.True(t, folder.IsFolder)
	require.ElementsMatch(t, []string{"A.md", "sub/B.md"}, folder.ContainedFiles)

	clock.Advance(6 * 24 * time.Hour)
	note, err := v.TrashNote(ctx, standalone)
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)
	n, err := v.CleanupTrash(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.NoDirExists(t, filepath.Join(root, ".trash", folder.ID+"_old"))

	items, err := v.ListTrash(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, note.ID, items[0].ID)

	require.NoError(t, v.EmptyTrash(ctx))
	items, err = v.ListTrash(ctx)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestTrashMissingNote(t *testing.T) {
	v, _, _ := newVault(t)
	_, err := v.TrashNote(context.Background(), standalone)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateNoteFromTemplate(t *testing.T) {
	ctx := context.Background()
	v, _, _ := newVault(t)

	require.NoError(t, v.CreateNoteFromTemplate(ctx, daily, "daily-log"))
	got, err := v.ReadNote(ctx, daily)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(got, "# Monday, 2024-01-15\n"), "got = %q", got)
	require.NotContains(t, got, "{{")

	err = v.CreateNoteFromTemplate(ctx, daily, "daily-log")
	require.ErrorIs(t, err, apperr.ErrAlreadyExists)

	err = v.CreateNoteFromTemplate(ctx, weekly, "no-such-template")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCustomTemplates(t *testing.T) {
	ctx := context.Background()
	v, _, _ := newVault(t)

	saved, err := v.SaveTemplate(ctx, models.Template{Name: "Weekly Review!", Icon: "star", Content: "Review for {{date}}"})
	require.NoError(t, err)
	require.Equal(t, "weekly-review", saved.ID)

	_, err = v.SaveTemplate(ctx, models.Template{Name: "Daily Log"})
	require.ErrorIs(t, err, apperr.ErrAlreadyExists)

	list, err := v.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
	require.True(t, list[0].IsDefault)
	require.Equal(t, "weekly-review", list[3].ID)
	require.False(t, list[3].IsDefault)

	require.NoError(t, v.CreateNoteFromTemplate(ctx, weekly, "weekly-review"))
	got, err := v.ReadNote(ctx, weekly)
	require.NoError(t, err)
	require.Equal(t, "Review for 2024-01-15", got)

	require.NoError(t, v.DeleteTemplate(ctx, "weekly-review"))
	require.ErrorIs(t, v.DeleteTemplate(ctx, "daily-log"), apperr.ErrConflict)
}

func TestRenderTemplate(t *testing.T) {
	now := time.Date(2024, 3, 1, 14, 5, 0, 0, time.UTC)
	tests := []struct {
		name, in, want string
	}{
		{"variables", "{{date}} {{time}} {{day_of_week}}", "2024-03-01 14:05 Friday"},
		{"sprig", `{{ "moldavite" | upper }}`, "MOLDAVITE"},
		{"unparsable falls back", "{{date}} {{ broken", "2024-03-01 {{ broken"},
		{"plain", "no variables", "no variables"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, RenderTemplate(tt.in, now))
		})
	}
}

func TestTemplateID(t *testing.T) {
	require.Equal(t, "my-great-template", TemplateID("  My Great -- Template! "))
	require.Equal(t, "über-notes", TemplateID("Über Notes"))
}

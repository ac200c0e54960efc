package lifecycle

import (
	"context"
	"errors"
	"maps"
	"path"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
	"github.com/mauropereiira/Moldavite-sub001/internal/bridge"
	"github.com/mauropereiira/Moldavite-sub001/internal/models"
	"github.com/mauropereiira/Moldavite-sub001/internal/wikilink"
)

// fakeClock fires timers only when the test advances it.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	t.clock.timers = slices.DeleteFunc(t.clock.timers, func(o *fakeTimer) bool { return o == t })
	return true
}

// Advance moves time forward and runs the timers that came due, outside
// the lock.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	c.timers = slices.DeleteFunc(c.timers, func(t *fakeTimer) bool {
		if t.at.After(c.now) {
			return false
		}
		t.stopped = true
		due = append(due, t)
		return true
	})
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// Pending returns the number of armed timers.
func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

type lockedNote struct {
	password string
	markup   string
}

// fakeBridge keeps notes in memory keyed by id.
type fakeBridge struct {
	mu        sync.Mutex
	notes     map[string]string
	locked    map[string]lockedNote
	templates map[string]string
	colors    map[string]string
	writes    int
	deletes   int
	writeErr  error

	// reads of these ids wait for the channel to close; started receives
	// the id once the read is in flight.
	block   map[string]chan struct{}
	started chan string
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		notes:     make(map[string]string),
		locked:    make(map[string]lockedNote),
		templates: map[string]string{"daily-log": "# Today\n\n- [ ] plan\n"},
		colors:    make(map[string]string),
		block:     make(map[string]chan struct{}),
		started:   make(chan string, 8),
	}
}

var _ bridge.Commands = (*fakeBridge)(nil)

func fileFor(id string, locked bool) models.NoteFile {
	dir, rest, _ := strings.Cut(id, "/")
	folder, name := path.Split(rest)
	f := models.NoteFile{Name: name, Path: id, IsLocked: locked, FolderPath: strings.TrimSuffix(folder, "/")}
	switch dir {
	case "daily":
		f.IsDaily, f.Date = true, strings.TrimSuffix(name, ".md")
	case "weekly":
		f.IsWeekly, f.Week = true, strings.TrimSuffix(name, ".md")
	}
	return f
}

func (b *fakeBridge) put(id, markup string) models.NoteFile {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notes[id] = markup
	return fileFor(id, false)
}

func (b *fakeBridge) get(id string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.notes[id]
	return s, ok
}

func (b *fakeBridge) counts() (writes, deletes int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes, b.deletes
}

func (b *fakeBridge) failWrites(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writeErr = err
}

func (b *fakeBridge) ListNotes(context.Context) ([]models.NoteFile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []models.NoteFile
	for id := range b.notes {
		out = append(out, fileFor(id, false))
	}
	for id := range b.locked {
		out = append(out, fileFor(id, true))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (b *fakeBridge) ListFolders(context.Context) ([]models.FolderInfo, error) { return nil, nil }

func (b *fakeBridge) ListTrash(context.Context) ([]models.TrashedNote, error) { return nil, nil }

func (b *fakeBridge) ReadNote(_ context.Context, ref bridge.NoteRef) (string, error) {
	id := NoteID(ref)
	b.mu.Lock()
	wait := b.block[id]
	b.mu.Unlock()
	if wait != nil {
		b.started <- id
		<-wait
	}
	s, _ := b.get(id)
	return s, nil
}

func (b *fakeBridge) WriteNote(_ context.Context, ref bridge.NoteRef, markup string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writeErr != nil {
		return b.writeErr
	}
	b.writes++
	b.notes[NoteID(ref)] = markup
	return nil
}

func (b *fakeBridge) DeleteNote(_ context.Context, ref bridge.NoteRef) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes++
	delete(b.notes, NoteID(ref))
	return nil
}

func (b *fakeBridge) CreateNoteFromTemplate(_ context.Context, ref bridge.NoteRef, templateID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	content, ok := b.templates[templateID]
	if !ok {
		return apperr.ErrNotFound
	}
	id := NoteID(ref)
	if _, exists := b.notes[id]; exists {
		return apperr.ErrAlreadyExists
	}
	b.notes[id] = content
	return nil
}

func (b *fakeBridge) LockNote(_ context.Context, ref bridge.NoteRef, password string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := NoteID(ref)
	s, ok := b.notes[id]
	if !ok {
		return apperr.ErrNotFound
	}
	delete(b.notes, id)
	b.locked[id] = lockedNote{password: password, markup: s}
	return nil
}

func (b *fakeBridge) unlock(ref bridge.NoteRef, password string) (string, error) {
	l, ok := b.locked[NoteID(ref)]
	if !ok {
		return "", apperr.ErrNotLocked
	}
	if l.password != password {
		return "", &apperr.PasswordError{Remaining: 4}
	}
	return l.markup, nil
}

func (b *fakeBridge) UnlockNote(_ context.Context, ref bridge.NoteRef, password string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unlock(ref, password)
}

func (b *fakeBridge) PermanentlyUnlockNote(_ context.Context, ref bridge.NoteRef, password string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.unlock(ref, password)
	if err != nil {
		return err
	}
	id := NoteID(ref)
	delete(b.locked, id)
	b.notes[id] = s
	return nil
}

func (b *fakeBridge) IsNoteLocked(_ context.Context, ref bridge.NoteRef) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.locked[NoteID(ref)]
	return ok, nil
}

func (b *fakeBridge) TrashNote(_ context.Context, ref bridge.NoteRef) (models.TrashedNote, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := NoteID(ref)
	if _, ok := b.notes[id]; !ok {
		return models.TrashedNote{}, apperr.ErrNotFound
	}
	delete(b.notes, id)
	return models.TrashedNote{ID: "t1", Filename: ref.Filename, IsDaily: ref.IsDaily}, nil
}

func (b *fakeBridge) RestoreNote(context.Context, string) error {
	return errors.New("not supported")
}

func (b *fakeBridge) ListTemplates(context.Context) ([]models.Template, error) { return nil, nil }

// relocate moves a standalone note to ref, keeping its content.
func (b *fakeBridge) relocate(from bridge.NoteRef, to bridge.NoteRef) (bridge.NoteRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := NoteID(from)
	if _, ok := b.locked[id]; ok {
		return bridge.NoteRef{}, apperr.ErrAlreadyLocked
	}
	s, ok := b.notes[id]
	if !ok {
		return bridge.NoteRef{}, apperr.ErrNotFound
	}
	next := NoteID(to)
	if _, taken := b.notes[next]; taken {
		return bridge.NoteRef{}, apperr.ErrAlreadyExists
	}
	delete(b.notes, id)
	b.notes[next] = s
	if c, ok := b.colors[id]; ok {
		delete(b.colors, id)
		b.colors[next] = c
	}
	return to, nil
}

func (b *fakeBridge) RenameNote(_ context.Context, ref bridge.NoteRef, newName string) (bridge.NoteRef, error) {
	if ref.IsDaily || ref.IsWeekly {
		return bridge.NoteRef{}, apperr.ErrInvalidFilename
	}
	if !strings.HasSuffix(newName, ".md") {
		newName += ".md"
	}
	return b.relocate(ref, bridge.NoteRef{Filename: path.Join(path.Dir(ref.Filename), newName)})
}

func (b *fakeBridge) MoveNote(_ context.Context, ref bridge.NoteRef, folder string) (bridge.NoteRef, error) {
	return b.relocate(ref, bridge.NoteRef{Filename: path.Join(folder, path.Base(ref.Filename))})
}

func (b *fakeBridge) DuplicateNote(_ context.Context, ref bridge.NoteRef) (bridge.NoteRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.notes[NoteID(ref)]
	if !ok {
		return bridge.NoteRef{}, apperr.ErrNotFound
	}
	dir := ""
	if !ref.IsDaily && !ref.IsWeekly {
		dir = path.Dir(ref.Filename)
	}
	copyRef := bridge.NoteRef{Filename: path.Join(dir, strings.TrimSuffix(path.Base(ref.Filename), ".md")+" (copy).md")}
	b.notes[NoteID(copyRef)] = s
	return copyRef, nil
}

func (b *fakeBridge) CreateNoteFromLink(_ context.Context, name string) (bridge.NoteRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ref := bridge.NoteRef{Filename: wikilink.Filename(name)}
	if _, ok := b.notes[NoteID(ref)]; ok {
		return bridge.NoteRef{}, apperr.ErrAlreadyExists
	}
	b.notes[NoteID(ref)] = "# " + name + "\n\n"
	return ref, nil
}

func (b *fakeBridge) NoteColors(context.Context) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return maps.Clone(b.colors), nil
}

func (b *fakeBridge) SetNoteColor(_ context.Context, notePath, color string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if color == "" || color == "default" {
		delete(b.colors, notePath)
	} else {
		b.colors[notePath] = color
	}
	return nil
}

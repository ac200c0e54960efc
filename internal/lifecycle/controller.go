// Package lifecycle manages the notes open in an editing session: the tab
// set, the active note, virtual periodic notes, debounced saving and the
// idle auto-lock of decrypted notes.
//
// Concurrency model: one goroutine owns all state. Public methods send
// closures to it and wait for the result. Bridge reads run outside the loop
// and re-enter it with a navigation sequence check, so a result that
// arrives after the user moved on is discarded with apperr.ErrStale.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
	"github.com/mauropereiira/Moldavite-sub001/internal/bridge"
	"github.com/mauropereiira/Moldavite-sub001/internal/document"
	"github.com/mauropereiira/Moldavite-sub001/internal/markup"
	"github.com/mauropereiira/Moldavite-sub001/internal/models"
	"github.com/mauropereiira/Moldavite-sub001/internal/sanitize"
	"github.com/mauropereiira/Moldavite-sub001/internal/tasklist"
)

// Event types sent on the Events channel.
const (
	EventTabs       = "tabs.changed"
	EventListing    = "listing.changed"
	EventSaved      = "note.saved"
	EventDeleted    = "note.deleted"
	EventSaveFailed = "note.save_failed"
	EventTaskStatus = "task_status.changed"
	EventAutoLocked = "note.auto_locked"
)

// Event reports a state change of the controller.
type Event struct {
	Type   string `json:"type"`
	NoteID string `json:"note_id,omitempty"`
	Date   string `json:"date,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the time source of the save and lock timers.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithCodec sets the markup codec.
func WithCodec(codec *markup.Codec) Option {
	return func(c *Controller) { c.codec = codec }
}

// WithAutoSaveDelay sets the debounce delay of automatic saves.
func WithAutoSaveDelay(d time.Duration) Option {
	return func(c *Controller) { c.saveDelay = d }
}

// WithMaxPinned sets how many tabs can be pinned.
func WithMaxPinned(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.tabs.maxPinned = n
		}
	}
}

// WithTemplates sets the templates new daily and weekly notes are created
// from. An empty id means periodic notes start out virtual.
func WithTemplates(daily, weekly string) Option {
	return func(c *Controller) {
		c.templates[models.KindDaily] = daily
		c.templates[models.KindWeekly] = weekly
	}
}

// WithAutoLock sets the idle timeout in minutes (0 disables) and the
// activity kinds that reset it.
func WithAutoLock(minutes int, events []string) Option {
	return func(c *Controller) {
		c.lockMinutes = minutes
		c.lockEvents = events
	}
}

// Controller owns the open notes of a session.
type Controller struct {
	cmds   bridge.Commands
	codec  *markup.Codec
	clock  Clock
	logger *slog.Logger

	saveDelay   time.Duration
	lockMinutes int
	lockEvents  []string
	templates   map[models.Kind]string

	ops     chan func()
	events  chan Event
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool

	tasks *tasklist.Cache

	// Owned by the loop.
	tabs   tabSet
	files  []models.NoteFile
	grants map[string]bool
	seq    uint64
	saver  *autoSaver
	locker *autoLock
}

// New starts a controller over cmds. Call Close to stop it.
func New(cmds bridge.Commands, opts ...Option) *Controller {
	c := &Controller{
		cmds:      cmds,
		codec:     markup.New(),
		clock:     realClock{},
		logger:    slog.Default(),
		saveDelay: DefaultAutoSaveDelay,
		templates: make(map[models.Kind]string),
		ops:       make(chan func()),
		events:    make(chan Event, 64),
		stopCh:    make(chan struct{}),
		stopped:   make(chan struct{}),
		tasks:     tasklist.NewCache(),
		tabs:      tabSet{maxPinned: DefaultMaxPinned},
		grants:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.saver = newAutoSaver(c.clock, c.saveDelay)
	c.locker = newAutoLock(c.clock, c.lockMinutes, c.lockEvents)

	go c.run()
	return c
}

func (c *Controller) run() {
	defer close(c.stopped)
	defer close(c.events)

	for {
		select {
		case <-c.stopCh:
			c.saver.stop()
			c.locker.stop()
			return
		case op := <-c.ops:
			op()
		}
	}
}

// Close stops the loop and both timers. Pending edits are not saved; call
// FlushCurrentNote first.
func (c *Controller) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	<-c.stopped
}

// Events returns the channel of state changes. Events are dropped when the
// consumer falls behind. The channel is closed by Close.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// do runs fn on the loop and returns its error.
func (c *Controller) do(ctx context.Context, fn func() error) error {
	if c.closed.Load() {
		return apperr.ErrClosed
	}
	done := make(chan error, 1)
	select {
	case c.ops <- func() { done <- fn() }:
	case <-c.stopped:
		return apperr.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post queues fn on the loop without waiting. Timers use it.
func (c *Controller) post(fn func()) {
	select {
	case c.ops <- fn:
	case <-c.stopped:
	}
}

func (c *Controller) emit(e Event) {
	select {
	case c.events <- e:
	default:
		c.logger.Debug("lifecycle: event dropped", slog.String("type", e.Type))
	}
}

// navigate starts a new navigation. Reads started under an older sequence
// are discarded when they come back.
func (c *Controller) navigate() uint64 {
	c.seq++
	return c.seq
}

// Tabs returns a copy of the open notes in display order.
func (c *Controller) Tabs() []models.Note {
	var out []models.Note
	_ = c.do(context.Background(), func() error {
		out = c.tabs.snapshot()
		return nil
	})
	return out
}

// Active returns the active note.
func (c *Controller) Active() (models.Note, bool) {
	var (
		out models.Note
		ok  bool
	)
	_ = c.do(context.Background(), func() error {
		if n := c.tabs.activeNote(); n != nil {
			out, ok = *n, true
		}
		return nil
	})
	return out, ok
}

// Files returns the last listing.
func (c *Controller) Files() []models.NoteFile {
	var out []models.NoteFile
	_ = c.do(context.Background(), func() error {
		out = slices.Clone(c.files)
		return nil
	})
	return out
}

// Grants returns the ids of notes opened through a temporary unlock.
func (c *Controller) Grants() []string {
	var out []string
	_ = c.do(context.Background(), func() error {
		for id := range c.grants {
			out = append(out, id)
		}
		return nil
	})
	slices.Sort(out)
	return out
}

// TaskStatus returns the task status of a daily note date. ok is false when
// the date has no tasks.
func (c *Controller) TaskStatus(date string) (models.TaskStatus, bool) {
	return c.tasks.Get(date)
}

// TaskStatuses returns every known task status keyed by date.
func (c *Controller) TaskStatuses() map[string]models.TaskStatus {
	return c.tasks.All()
}

// RefreshListing replaces the listing with a fresh one from the bridge.
func (c *Controller) RefreshListing(ctx context.Context) error {
	files, err := c.cmds.ListNotes(ctx)
	if err != nil {
		return fmt.Errorf("lifecycle: list notes: %w", err)
	}
	return c.do(ctx, func() error {
		c.files = files
		c.emit(Event{Type: EventListing})
		return nil
	})
}

// OpenTab shows note. An open note with the same id is refreshed and
// activated; otherwise the note takes a new tab when inNewTab is set or no
// tab is active, and the active tab's slot when not. The active note is
// flushed first when the switch leaves it.
func (c *Controller) OpenTab(ctx context.Context, note models.Note, inNewTab bool) error {
	if note.ID == "" {
		note.ID = NoteID(refOf(&note))
	}
	note.Content = sanitize.HTML(note.Content)
	return c.do(ctx, func() error {
		if err := c.flush(ctx); err != nil {
			return err
		}
		if note.ID != c.tabs.active {
			c.navigate()
		}
		c.show(&note, inNewTab)
		return nil
	})
}

// OpenFile flushes the active note, reads file through the bridge and shows
// it. Locked files must go through UnlockNote.
func (c *Controller) OpenFile(ctx context.Context, file models.NoteFile, inNewTab bool) error {
	if file.IsLocked {
		return fmt.Errorf("lifecycle: open %s: %w", file.Path, apperr.ErrAlreadyLocked)
	}
	seq, err := c.beginNavigation(ctx)
	if err != nil {
		return err
	}
	text, err := c.cmds.ReadNote(ctx, bridge.RefFor(file))
	if err != nil {
		return fmt.Errorf("lifecycle: read %s: %w", file.Path, err)
	}
	content := c.codec.Decode(text).HTML()
	return c.do(ctx, func() error {
		if err := c.land(ctx, seq, "open", file.Path); err != nil {
			return err
		}
		c.show(noteFromFile(file, content, c.clock.Now()), inNewTab)
		return nil
	})
}

// beginNavigation flushes the active note and starts a navigation.
func (c *Controller) beginNavigation(ctx context.Context) (uint64, error) {
	var seq uint64
	err := c.do(ctx, func() error {
		if err := c.flush(ctx); err != nil {
			return err
		}
		seq = c.navigate()
		return nil
	})
	return seq, err
}

// land finishes a navigation started under seq. The active note is flushed
// again since edits can arrive while the read is in flight.
func (c *Controller) land(ctx context.Context, seq uint64, op, id string) error {
	if seq != c.seq {
		return fmt.Errorf("lifecycle: %s %s: %w", op, id, apperr.ErrStale)
	}
	return c.flush(ctx)
}

// show puts n in the tab set and records its content as saved.
func (c *Controller) show(n *models.Note, inNewTab bool) {
	if replaced := c.tabs.open(n, inNewTab); replaced != "" {
		c.release(replaced)
	}
	c.saver.saved(n.ID, n.Content)
	if n.Kind == models.KindDaily {
		c.setTaskStatus(n.Date, tasklist.Index(document.ParseHTML(n.Content)))
	}
	c.emit(Event{Type: EventTabs, NoteID: n.ID})
}

// release forgets a note that left the tab set, grant included.
func (c *Controller) release(id string) {
	c.saver.forget(id)
	if c.grants[id] {
		delete(c.grants, id)
		c.rearmLock()
	}
}

func (c *Controller) dropTab(id string) {
	if c.tabs.remove(id) {
		c.release(id)
		c.emit(Event{Type: EventTabs, NoteID: id})
	}
}

// CloseTab closes id, flushing it first when it is active.
func (c *Controller) CloseTab(ctx context.Context, id string) error {
	return c.do(ctx, func() error {
		if c.tabs.get(id) == nil {
			return fmt.Errorf("lifecycle: close %s: %w", id, apperr.ErrNotFound)
		}
		if id == c.tabs.active {
			if err := c.flush(ctx); err != nil {
				return err
			}
			c.navigate()
		}
		c.dropTab(id)
		return nil
	})
}

// ActivateTab flushes the active note and switches to id.
func (c *Controller) ActivateTab(ctx context.Context, id string) error {
	return c.do(ctx, func() error {
		if c.tabs.get(id) == nil {
			return fmt.Errorf("lifecycle: activate %s: %w", id, apperr.ErrNotFound)
		}
		if id == c.tabs.active {
			return nil
		}
		if err := c.flush(ctx); err != nil {
			return err
		}
		c.navigate()
		c.tabs.active = id
		c.emit(Event{Type: EventTabs, NoteID: id})
		return nil
	})
}

// PinTab toggles the pin of id.
func (c *Controller) PinTab(ctx context.Context, id string) error {
	return c.do(ctx, func() error {
		if err := c.tabs.togglePin(id); err != nil {
			return err
		}
		c.emit(Event{Type: EventTabs, NoteID: id})
		return nil
	})
}

// LoadDailyNote opens the daily note of date.
func (c *Controller) LoadDailyNote(ctx context.Context, date time.Time) error {
	return c.loadPeriodic(ctx, models.KindDaily, date)
}

// LoadWeeklyNote opens the weekly note of the ISO week containing date.
func (c *Controller) LoadWeeklyNote(ctx context.Context, date time.Time) error {
	return c.loadPeriodic(ctx, models.KindWeekly, date)
}

// loadPeriodic flushes the active note, then opens the stored note, a new
// one from the configured template, or a virtual note, in that order.
func (c *Controller) loadPeriodic(ctx context.Context, kind models.Kind, t time.Time) error {
	ref := periodicRef(kind, t)
	id := NoteID(ref)

	var (
		seq      uint64
		isOpen   bool
		listed   bool
		template string
	)
	err := c.do(ctx, func() error {
		if err := c.flush(ctx); err != nil {
			return err
		}
		seq = c.navigate()
		if f, ok := c.file(id); ok {
			if f.IsLocked {
				return fmt.Errorf("lifecycle: load %s: %w", id, apperr.ErrAlreadyLocked)
			}
			listed = true
		}
		if c.tabs.get(id) != nil {
			c.tabs.active = id
			c.emit(Event{Type: EventTabs, NoteID: id})
			isOpen = true
		}
		template = c.templates[kind]
		return nil
	})
	if err != nil || isOpen {
		return err
	}

	text, err := c.cmds.ReadNote(ctx, ref)
	if err != nil {
		return fmt.Errorf("lifecycle: read %s: %w", id, err)
	}
	exists := listed || text != ""
	created := false
	if !exists && template != "" {
		if err := c.cmds.CreateNoteFromTemplate(ctx, ref, template); err != nil {
			return fmt.Errorf("lifecycle: create %s from %s: %w", id, template, err)
		}
		if text, err = c.cmds.ReadNote(ctx, ref); err != nil {
			return fmt.Errorf("lifecycle: read %s: %w", id, err)
		}
		created = true
	}
	content := c.codec.Decode(text).HTML()

	return c.do(ctx, func() error {
		if err := c.land(ctx, seq, "load", id); err != nil {
			return err
		}
		n := periodicNote(kind, t, content, c.clock.Now())
		n.IsVirtual = !exists && !created
		if (exists || created) && !c.listed(id) {
			c.files = append(c.files, fileOf(n))
			c.emit(Event{Type: EventListing, NoteID: id})
		}
		c.show(n, false)
		return nil
	})
}

// UpdateContent applies an editor change to the active note id and
// schedules a save. Notes opened through an unlock grant are read-only.
func (c *Controller) UpdateContent(ctx context.Context, id, html string) error {
	return c.do(ctx, func() error {
		n := c.tabs.activeNote()
		if n == nil || n.ID != id {
			return fmt.Errorf("lifecycle: update %s: %w", id, apperr.ErrStale)
		}
		if c.grants[id] {
			return fmt.Errorf("lifecycle: update %s: %w", id, apperr.ErrReadOnly)
		}
		doc := sanitize.Document(document.ParseHTML(html))
		n.Content = doc.HTML()
		n.UpdatedAt = c.clock.Now()
		if n.Kind == models.KindDaily {
			c.setTaskStatus(n.Date, tasklist.Index(doc))
		}
		if c.saver.changed(id, n.Content) {
			c.saver.schedule(id, c.autoSave)
		}
		return nil
	})
}

// FlushCurrentNote saves the active note now.
func (c *Controller) FlushCurrentNote(ctx context.Context) error {
	return c.do(ctx, func() error { return c.flush(ctx) })
}

// flush saves the active note if it has unsaved changes. Its pending timer
// is cleared only after the save succeeded.
func (c *Controller) flush(ctx context.Context) error {
	n := c.tabs.activeNote()
	if n == nil {
		return nil
	}
	if !c.saver.pending(n.ID) && !c.saver.changed(n.ID, n.Content) {
		return nil
	}
	if err := c.save(ctx, n); err != nil {
		return err
	}
	c.saver.cancel(n.ID)
	return nil
}

// autoSave is the debounce timer callback.
func (c *Controller) autoSave(id string, gen uint64) {
	c.post(func() {
		if !c.saver.current(gen) {
			return
		}
		c.saver.stop()
		n := c.tabs.get(id)
		if n == nil {
			return
		}
		if err := c.save(context.Background(), n); err != nil {
			c.logger.Error("lifecycle: auto-save failed",
				slog.String("note", id),
				slog.String("error", err.Error()))
			c.emit(Event{Type: EventSaveFailed, NoteID: id, Error: err.Error()})
		}
	})
}

// save persists n. An empty periodic note is deleted from disk and stays
// open as a virtual note only while it is active. Other content is encoded
// and written. On error nothing in memory changes.
func (c *Controller) save(ctx context.Context, n *models.Note) error {
	if c.grants[n.ID] {
		return nil
	}
	content := n.Content
	ref := refOf(n)
	doc := document.ParseHTML(content)

	if n.IsPeriodic() && doc.IsEmpty() {
		if c.listed(n.ID) {
			if err := c.cmds.DeleteNote(ctx, ref); err != nil {
				return fmt.Errorf("lifecycle: delete %s: %w", n.ID, err)
			}
			c.unlist(n.ID)
			c.logger.Info("lifecycle: empty note deleted", slog.String("note", n.ID))
			c.emit(Event{Type: EventDeleted, NoteID: n.ID})
		}
		if n.Kind == models.KindDaily {
			c.setTaskStatus(n.Date, models.TaskStatus{})
		}
		n.IsVirtual = true
		c.saver.saved(n.ID, content)
		if n.ID != c.tabs.active {
			c.dropTab(n.ID)
		}
		return nil
	}

	if err := c.cmds.WriteNote(ctx, ref, c.codec.Encode(doc)); err != nil {
		return fmt.Errorf("lifecycle: write %s: %w", n.ID, err)
	}
	if !c.listed(n.ID) {
		c.files = append(c.files, fileOf(n))
		c.emit(Event{Type: EventListing, NoteID: n.ID})
	}
	n.IsVirtual = false
	c.saver.saved(n.ID, content)
	c.logger.Debug("lifecycle: note saved", slog.String("note", n.ID))
	c.emit(Event{Type: EventSaved, NoteID: n.ID})
	return nil
}

func (c *Controller) setTaskStatus(date string, st models.TaskStatus) {
	prev, had := c.tasks.Get(date)
	c.tasks.Set(date, st)
	if cur, has := c.tasks.Get(date); had != has || prev != cur {
		c.emit(Event{Type: EventTaskStatus, Date: date})
	}
}

func (c *Controller) file(id string) (models.NoteFile, bool) {
	i := slices.IndexFunc(c.files, func(f models.NoteFile) bool { return f.Path == id })
	if i < 0 {
		return models.NoteFile{}, false
	}
	return c.files[i], true
}

func (c *Controller) listed(id string) bool {
	_, ok := c.file(id)
	return ok
}

func (c *Controller) unlist(id string) {
	c.files = slices.DeleteFunc(c.files, func(f models.NoteFile) bool { return f.Path == id })
	c.emit(Event{Type: EventListing, NoteID: id})
}

func (c *Controller) setLocked(id string, locked bool) {
	for i := range c.files {
		if c.files[i].Path == id {
			c.files[i].IsLocked = locked
		}
	}
	c.emit(Event{Type: EventListing, NoteID: id})
}

// UnlockNote decrypts file for viewing and opens it read-only under a
// temporary grant. The grant ends when the tab closes or the idle timer
// fires.
func (c *Controller) UnlockNote(ctx context.Context, file models.NoteFile, password string) error {
	seq, err := c.beginNavigation(ctx)
	if err != nil {
		return err
	}
	text, err := c.cmds.UnlockNote(ctx, bridge.RefFor(file), password)
	if err != nil {
		return fmt.Errorf("lifecycle: unlock %s: %w", file.Path, err)
	}
	content := c.codec.Decode(text).HTML()
	return c.do(ctx, func() error {
		if err := c.land(ctx, seq, "unlock", file.Path); err != nil {
			return err
		}
		n := noteFromFile(file, content, c.clock.Now())
		n.IsLocked = true
		c.show(n, false)
		c.grants[n.ID] = true
		c.rearmLock()
		return nil
	})
}

// LockNote saves and encrypts the open note id, then closes its tab.
func (c *Controller) LockNote(ctx context.Context, id, password string) error {
	return c.do(ctx, func() error {
		n := c.tabs.get(id)
		if n == nil {
			return fmt.Errorf("lifecycle: lock %s: %w", id, apperr.ErrNotFound)
		}
		if c.grants[id] {
			return fmt.Errorf("lifecycle: lock %s: %w", id, apperr.ErrAlreadyLocked)
		}
		if c.saver.pending(id) || c.saver.changed(id, n.Content) {
			if err := c.save(ctx, n); err != nil {
				return err
			}
			c.saver.cancel(id)
		}
		if n.IsVirtual {
			return fmt.Errorf("lifecycle: lock %s: %w", id, apperr.ErrNotFound)
		}
		if err := c.cmds.LockNote(ctx, refOf(n), password); err != nil {
			return fmt.Errorf("lifecycle: lock %s: %w", id, err)
		}
		c.setLocked(id, true)
		if id == c.tabs.active {
			c.navigate()
		}
		c.dropTab(id)
		return nil
	})
}

// PermanentlyUnlockNote removes the encryption of file. An open grant for
// it becomes a normal editable tab.
func (c *Controller) PermanentlyUnlockNote(ctx context.Context, file models.NoteFile, password string) error {
	if err := c.cmds.PermanentlyUnlockNote(ctx, bridge.RefFor(file), password); err != nil {
		return fmt.Errorf("lifecycle: permanently unlock %s: %w", file.Path, err)
	}
	return c.do(ctx, func() error {
		c.setLocked(file.Path, false)
		if n := c.tabs.get(file.Path); n != nil {
			n.IsLocked = false
			delete(c.grants, n.ID)
			c.saver.saved(n.ID, n.Content)
			c.rearmLock()
			c.emit(Event{Type: EventTabs, NoteID: n.ID})
		}
		return nil
	})
}

// TrashNote moves the note id to the trash and closes its tab. A virtual
// note only loses its tab.
func (c *Controller) TrashNote(ctx context.Context, id string) error {
	return c.do(ctx, func() error {
		var ref bridge.NoteRef
		n := c.tabs.get(id)
		f, listed := c.file(id)
		switch {
		case listed:
			ref = bridge.RefFor(f)
		case n != nil && n.IsVirtual:
		case n != nil:
			ref = refOf(n)
		default:
			return fmt.Errorf("lifecycle: trash %s: %w", id, apperr.ErrNotFound)
		}
		if ref.Filename != "" {
			if _, err := c.cmds.TrashNote(ctx, ref); err != nil {
				return fmt.Errorf("lifecycle: trash %s: %w", id, err)
			}
			if listed {
				c.unlist(id)
			}
			if ref.IsDaily {
				c.setTaskStatus(strings.TrimSuffix(ref.Filename, noteExt), models.TaskStatus{})
			}
			c.emit(Event{Type: EventDeleted, NoteID: id})
		}
		if n != nil {
			if id == c.tabs.active {
				c.navigate()
			}
			c.dropTab(id)
		}
		return nil
	})
}

// RecordActivity resets the idle timer when kind is a tracked activity.
func (c *Controller) RecordActivity(ctx context.Context, kind string) error {
	return c.do(ctx, func() error {
		if c.locker.tracks(kind) && c.locker.armed() {
			c.rearmLock()
		}
		return nil
	})
}

// SetAutoLockTimeout changes the idle timeout. Zero disables auto-lock.
func (c *Controller) SetAutoLockTimeout(ctx context.Context, minutes int) error {
	return c.do(ctx, func() error {
		c.locker.setTimeout(minutes)
		c.rearmLock()
		return nil
	})
}

func (c *Controller) rearmLock() {
	c.locker.rearm(len(c.grants) > 0, c.autoLockFired)
}

// autoLockFired is the idle timer callback: every grant is revoked and its
// tab closed without saving.
func (c *Controller) autoLockFired(gen uint64) {
	c.post(func() {
		if !c.locker.current(gen) {
			return
		}
		c.locker.stop()
		ids := make([]string, 0, len(c.grants))
		for id := range c.grants {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			delete(c.grants, id)
			if id == c.tabs.active {
				c.navigate()
			}
			c.dropTab(id)
			c.emit(Event{Type: EventAutoLocked, NoteID: id})
		}
		c.logger.Info("lifecycle: auto-lock revoked grants", slog.Int("count", len(ids)))
	})
}

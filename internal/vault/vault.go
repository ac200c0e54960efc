// Package vault is the on-disk command-bridge backend. It keeps daily notes
// in daily/, weekly notes in weekly/, standalone notes (with folders) in
// notes/, deleted items in .trash/ and custom templates in templates/.
package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
	"github.com/mauropereiira/Moldavite-sub001/internal/bridge"
	"github.com/mauropereiira/Moldavite-sub001/internal/models"
	"github.com/mauropereiira/Moldavite-sub001/internal/storage"
)

// Vault directories, relative to the vault root.
const (
	DailyDir     = "daily"
	WeeklyDir    = "weekly"
	NotesDir     = "notes"
	TrashDir     = ".trash"
	TemplatesDir = "templates"
)

const (
	noteExt   = ".md"
	lockedExt = ".locked"
)

var _ bridge.Commands = (*Vault)(nil)

// Vault implements bridge.Commands over a storage.Provider.
type Vault struct {
	store     storage.Provider
	limiter   *RateLimiter
	now       func() time.Time
	trashDays int
	logger    *slog.Logger

	colorsMu sync.Mutex
}

// Option configures a Vault.
type Option func(*Vault)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(v *Vault) { v.now = now }
}

// WithTrashRetention sets how many days trashed items are kept.
func WithTrashRetention(days int) Option {
	return func(v *Vault) {
		if days > 0 {
			v.trashDays = days
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Vault) { v.logger = l }
}

// WithRateLimiter shares an unlock rate limiter between vaults.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(v *Vault) { v.limiter = rl }
}

// New returns a Vault over store and creates the standard directories.
func New(store storage.Provider, opts ...Option) (*Vault, error) {
	v := &Vault{
		store:     store,
		now:       time.Now,
		trashDays: 7,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.limiter == nil {
		v.limiter = NewRateLimiter(v.now)
	}
	for _, dir := range []string{DailyDir, WeeklyDir, NotesDir} {
		if err := store.MkdirAll(dir); err != nil {
			return nil, fmt.Errorf("vault: init: %w", err)
		}
	}
	return v, nil
}

func kindDir(ref bridge.NoteRef) string {
	switch ref.Kind() {
	case models.KindWeekly:
		return WeeklyDir
	case models.KindDaily:
		return DailyDir
	default:
		return NotesDir
	}
}

func checkName(name string) error {
	if name == "" || strings.Contains(name, "..") || strings.HasPrefix(name, "/") {
		return fmt.Errorf("vault: %q: %w", name, apperr.ErrInvalidFilename)
	}
	return nil
}

// notePath returns the vault-relative path of ref's plain file.
func notePath(ref bridge.NoteRef) (string, error) {
	if err := checkName(ref.Filename); err != nil {
		return "", err
	}
	return path.Join(kindDir(ref), ref.Filename), nil
}

// ListNotes lists every note in the vault. Locked notes are reported under
// their plain name with IsLocked set.
func (v *Vault) ListNotes(_ context.Context) ([]models.NoteFile, error) {
	var out []models.NoteFile
	for _, dir := range []string{DailyDir, WeeklyDir, NotesDir} {
		entries, err := v.store.List(dir, noteExt, noteExt+lockedExt)
		if err != nil {
			return nil, fmt.Errorf("vault: list notes: %w", err)
		}
		for _, e := range entries {
			rel := strings.TrimPrefix(e.Path, dir+"/")
			folder, name := path.Split(rel)
			folder = strings.TrimSuffix(folder, "/")
			if dir != NotesDir && folder != "" {
				continue
			}
			locked := strings.HasSuffix(name, lockedExt)
			name = strings.TrimSuffix(name, lockedExt)
			nf := models.NoteFile{
				Name:       name,
				Path:       path.Join(dir, folder, name),
				IsLocked:   locked,
				FolderPath: folder,
			}
			switch dir {
			case DailyDir:
				nf.IsDaily = true
				nf.Date = strings.TrimSuffix(name, noteExt)
			case WeeklyDir:
				nf.IsWeekly = true
				nf.Week = strings.TrimSuffix(name, noteExt)
			}
			out = append(out, nf)
		}
	}
	return out, nil
}

// ListFolders returns the folder tree below notes/, each level sorted
// case-insensitively.
func (v *Vault) ListFolders(_ context.Context) ([]models.FolderInfo, error) {
	dirs, err := v.store.Dirs(NotesDir)
	if err != nil {
		return nil, fmt.Errorf("vault: list folders: %w", err)
	}
	byParent := make(map[string][]string)
	for _, d := range dirs {
		rel := strings.TrimPrefix(d, NotesDir+"/")
		parent := path.Dir(rel)
		if parent == "." {
			parent = ""
		}
		byParent[parent] = append(byParent[parent], rel)
	}
	return folderTree(byParent, ""), nil
}

func folderTree(byParent map[string][]string, parent string) []models.FolderInfo {
	out := make([]models.FolderInfo, 0, len(byParent[parent]))
	for _, rel := range byParent[parent] {
		out = append(out, models.FolderInfo{
			Name:     path.Base(rel),
			Path:     rel,
			Children: folderTree(byParent, rel),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// CreateFolder creates a folder below notes/.
func (v *Vault) CreateFolder(_ context.Context, folder string) error {
	if err := checkName(folder); err != nil {
		return err
	}
	if err := v.store.MkdirAll(path.Join(NotesDir, folder)); err != nil {
		return fmt.Errorf("vault: create folder: %w", err)
	}
	return nil
}

// ReadNote returns the note's markup, or "" when it does not exist.
func (v *Vault) ReadNote(_ context.Context, ref bridge.NoteRef) (string, error) {
	p, err := notePath(ref)
	if err != nil {
		return "", err
	}
	data, err := v.store.Read(p)
	if errors.Is(err, apperr.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("vault: read note: %w", err)
	}
	return string(data), nil
}

// WriteNote stores markup, creating parent folders as needed.
func (v *Vault) WriteNote(_ context.Context, ref bridge.NoteRef, markup string) error {
	p, err := notePath(ref)
	if err != nil {
		return err
	}
	if v.store.Exists(p + lockedExt) {
		return fmt.Errorf("vault: write note %s: %w", p, apperr.ErrAlreadyLocked)
	}
	if err := v.store.Write(p, []byte(markup)); err != nil {
		return fmt.Errorf("vault: write note: %w", err)
	}
	return nil
}

// DeleteNote removes the note. A missing note is not an error.
func (v *Vault) DeleteNote(_ context.Context, ref bridge.NoteRef) error {
	p, err := notePath(ref)
	if err != nil {
		return err
	}
	if err := v.store.Delete(p); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("vault: delete note: %w", err)
	}
	return nil
}

// IsNoteLocked reports whether an encrypted copy of the note exists.
func (v *Vault) IsNoteLocked(_ context.Context, ref bridge.NoteRef) (bool, error) {
	p, err := notePath(ref)
	if err != nil {
		return false, err
	}
	return v.store.Exists(p + lockedExt), nil
}

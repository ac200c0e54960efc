package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
	"github.com/mauropereiira/Moldavite-sub001/internal/bridge"
	"github.com/mauropereiira/Moldavite-sub001/internal/wikilink"
)

// colorsFile maps note paths to their color id.
const colorsFile = ".note-metadata.json"

var reNumbered = regexp.MustCompile(`^(.+) \((\d+)\)$`)

type noteMetadata struct {
	Colors map[string]string `json:"colors"`
}

// uniqueName returns base+".md" if nothing (plain or locked) holds that name
// in dir, otherwise the first free "base (N).md". A base that is already
// numbered continues from its number.
func (v *Vault) uniqueName(dir, base string) string {
	taken := func(name string) bool {
		p := path.Join(dir, name)
		return v.store.Exists(p) || v.store.Exists(p+lockedExt)
	}
	if name := base + noteExt; !taken(name) {
		return name
	}
	stem, n := base, 2
	if m := reNumbered.FindStringSubmatch(base); m != nil {
		if k, err := strconv.Atoi(m[2]); err == nil {
			stem, n = m[1], k+1
		}
	}
	for ; ; n++ {
		if name := fmt.Sprintf("%s (%d)%s", stem, n, noteExt); !taken(name) {
			return name
		}
	}
}

// standalonePath resolves a standalone ref to its plain file, refusing
// periodic refs and locked notes.
func (v *Vault) standalonePath(op string, ref bridge.NoteRef) (string, error) {
	if ref.IsDaily || ref.IsWeekly {
		return "", fmt.Errorf("vault: %s %s: periodic notes keep their name: %w", op, ref.Filename, apperr.ErrInvalidFilename)
	}
	p, err := notePath(ref)
	if err != nil {
		return "", err
	}
	if v.store.Exists(p + lockedExt) {
		return "", fmt.Errorf("vault: %s %s: %w", op, p, apperr.ErrAlreadyLocked)
	}
	if !v.store.Exists(p) {
		return "", fmt.Errorf("vault: %s %s: %w", op, p, apperr.ErrNotFound)
	}
	return p, nil
}

// RenameNote gives a standalone note a new name in its folder. newName may
// omit the .md extension.
func (v *Vault) RenameNote(_ context.Context, ref bridge.NoteRef, newName string) (bridge.NoteRef, error) {
	p, err := v.standalonePath("rename", ref)
	if err != nil {
		return bridge.NoteRef{}, err
	}
	newName = strings.TrimSpace(newName)
	if !strings.HasSuffix(newName, noteExt) {
		newName += noteExt
	}
	if err := checkName(newName); err != nil {
		return bridge.NoteRef{}, err
	}
	if strings.Contains(newName, "/") || newName == noteExt {
		return bridge.NoteRef{}, fmt.Errorf("vault: rename to %q: %w", newName, apperr.ErrInvalidFilename)
	}
	folder := path.Dir(ref.Filename)
	if folder == "." {
		folder = ""
	}
	next := bridge.NoteRef{Filename: path.Join(folder, newName)}
	dest := path.Join(NotesDir, next.Filename)
	if dest == p {
		return next, nil
	}
	if v.store.Exists(dest) || v.store.Exists(dest+lockedExt) {
		return bridge.NoteRef{}, fmt.Errorf("vault: rename %s: %w", dest, apperr.ErrAlreadyExists)
	}
	if err := v.store.Move(p, dest); err != nil {
		return bridge.NoteRef{}, fmt.Errorf("vault: rename: %w", err)
	}
	v.rekeyColor(p, dest)
	v.logger.Info("note renamed", slog.String("from", p), slog.String("to", dest))
	return next, nil
}

// MoveNote moves a standalone note into an existing folder below notes/;
// "" is the notes root. A clashing name gets a numbered suffix.
func (v *Vault) MoveNote(_ context.Context, ref bridge.NoteRef, folder string) (bridge.NoteRef, error) {
	p, err := v.standalonePath("move", ref)
	if err != nil {
		return bridge.NoteRef{}, err
	}
	folder = strings.Trim(folder, "/")
	if strings.Contains(folder, "..") {
		return bridge.NoteRef{}, fmt.Errorf("vault: move to %q: %w", folder, apperr.ErrInvalidFilename)
	}
	dir := path.Join(NotesDir, folder)
	if !v.store.Exists(dir) {
		return bridge.NoteRef{}, fmt.Errorf("vault: move to folder %q: %w", folder, apperr.ErrNotFound)
	}
	if path.Dir(p) == dir {
		return ref, nil
	}
	name := v.uniqueName(dir, strings.TrimSuffix(path.Base(p), noteExt))
	dest := path.Join(dir, name)
	if err := v.store.Move(p, dest); err != nil {
		return bridge.NoteRef{}, fmt.Errorf("vault: move: %w", err)
	}
	v.rekeyColor(p, dest)
	v.logger.Info("note moved", slog.String("from", p), slog.String("to", dest))
	return bridge.NoteRef{Filename: path.Join(folder, name)}, nil
}

// DuplicateNote copies a note to "<name> (copy).md". Standalone copies stay
// in the source folder; copies of daily and weekly notes land in the notes
// root since a second note cannot share a date.
func (v *Vault) DuplicateNote(_ context.Context, ref bridge.NoteRef) (bridge.NoteRef, error) {
	p, err := notePath(ref)
	if err != nil {
		return bridge.NoteRef{}, err
	}
	if v.store.Exists(p + lockedExt) {
		return bridge.NoteRef{}, fmt.Errorf("vault: duplicate %s: %w", p, apperr.ErrAlreadyLocked)
	}
	data, err := v.store.Read(p)
	if err != nil {
		return bridge.NoteRef{}, fmt.Errorf("vault: duplicate: %w", err)
	}
	folder := ""
	if !ref.IsDaily && !ref.IsWeekly {
		if folder = path.Dir(ref.Filename); folder == "." {
			folder = ""
		}
	}
	dir := path.Join(NotesDir, folder)
	name := v.uniqueName(dir, strings.TrimSuffix(path.Base(p), noteExt)+" (copy)")
	if err := v.store.Write(path.Join(dir, name), data); err != nil {
		return bridge.NoteRef{}, fmt.Errorf("vault: duplicate: %w", err)
	}
	return bridge.NoteRef{Filename: path.Join(folder, name)}, nil
}

// CreateNoteFromLink creates the standalone note a wiki link to name
// resolves to, headed with the link text.
func (v *Vault) CreateNoteFromLink(_ context.Context, name string) (bridge.NoteRef, error) {
	name = strings.TrimSpace(name)
	if wikilink.Slug(name) == "" {
		return bridge.NoteRef{}, fmt.Errorf("vault: note from link %q: %w", name, apperr.ErrInvalidFilename)
	}
	ref := bridge.NoteRef{Filename: wikilink.Filename(name)}
	p := path.Join(NotesDir, ref.Filename)
	if v.store.Exists(p) || v.store.Exists(p+lockedExt) {
		return bridge.NoteRef{}, fmt.Errorf("vault: note from link %s: %w", p, apperr.ErrAlreadyExists)
	}
	if err := v.store.Write(p, []byte("# "+name+"\n\n")); err != nil {
		return bridge.NoteRef{}, fmt.Errorf("vault: note from link: %w", err)
	}
	return ref, nil
}

// readColors returns the stored color map. A missing or unreadable file is
// empty. Callers hold colorsMu.
func (v *Vault) readColors() noteMetadata {
	meta := noteMetadata{Colors: map[string]string{}}
	data, err := v.store.Read(colorsFile)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			v.logger.Warn("note metadata unreadable", slog.String("error", err.Error()))
		}
		return meta
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		v.logger.Warn("note metadata unreadable", slog.String("error", err.Error()))
		return noteMetadata{Colors: map[string]string{}}
	}
	if meta.Colors == nil {
		meta.Colors = map[string]string{}
	}
	return meta
}

func (v *Vault) writeColors(meta noteMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("vault: encode note metadata: %w", err)
	}
	if err := v.store.Write(colorsFile, data); err != nil {
		return fmt.Errorf("vault: write note metadata: %w", err)
	}
	return nil
}

// NoteColors returns the color id of every colored note, keyed by note path.
func (v *Vault) NoteColors(_ context.Context) (map[string]string, error) {
	v.colorsMu.Lock()
	defer v.colorsMu.Unlock()
	return v.readColors().Colors, nil
}

// SetNoteColor assigns a color id to the note at notePath. "" and "default"
// clear it.
func (v *Vault) SetNoteColor(_ context.Context, notePath, color string) error {
	if err := checkName(notePath); err != nil {
		return err
	}
	v.colorsMu.Lock()
	defer v.colorsMu.Unlock()
	meta := v.readColors()
	if color == "" || color == "default" {
		if _, ok := meta.Colors[notePath]; !ok {
			return nil
		}
		delete(meta.Colors, notePath)
	} else {
		meta.Colors[notePath] = color
	}
	return v.writeColors(meta)
}

// rekeyColor carries a color from one note path to another; to == "" drops
// it. Failures are logged, the note operation already happened.
func (v *Vault) rekeyColor(from, to string) {
	v.colorsMu.Lock()
	defer v.colorsMu.Unlock()
	meta := v.readColors()
	color, ok := meta.Colors[from]
	if !ok {
		return
	}
	delete(meta.Colors, from)
	if to != "" {
		meta.Colors[to] = color
	}
	if err := v.writeColors(meta); err != nil {
		v.logger.Warn("note color not moved", slog.String("path", from), slog.String("error", err.Error()))
	}
}

package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
	"github.com/mauropereiira/Moldavite-sub001/internal/bridge"
	"github.com/mauropereiira/Moldavite-sub001/internal/models"
)

var trashMetadata = path.Join(TrashDir, "metadata.json")

type trashItem struct {
	ID             string   `json:"id"`
	Filename       string   `json:"filename"`
	OriginalPath   string   `json:"original_path"`
	IsDaily        bool     `json:"is_daily"`
	IsWeekly       bool     `json:"is_weekly,omitempty"`
	IsFolder       bool     `json:"is_folder"`
	ContainedFiles []string `json:"contained_files"`
	TrashedAt      int64    `json:"trashed_at"`
}

type trashIndex struct {
	Items []trashItem `json:"items"`
}

// storedName is the file or directory name of the item inside .trash/.
func (it trashItem) storedName() string {
	return path.Join(TrashDir, it.ID+"_"+strings.ReplaceAll(it.OriginalPath, "/", "_"))
}

func (it trashItem) homeDir() string {
	switch {
	case it.IsWeekly:
		return WeeklyDir
	case it.IsDaily:
		return DailyDir
	default:
		return NotesDir
	}
}

// readTrash returns the trash index. A missing or unreadable index is empty.
func (v *Vault) readTrash() trashIndex {
	var idx trashIndex
	data, err := v.store.Read(trashMetadata)
	if err != nil {
		return idx
	}
	if err := json.Unmarshal(data, &idx); err != nil {
		v.logger.Warn("trash metadata unreadable", slog.String("error", err.Error()))
		return trashIndex{}
	}
	return idx
}

func (v *Vault) writeTrash(idx trashIndex) error {
	if idx.Items == nil {
		idx.Items = []trashItem{}
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("vault: encode trash metadata: %w", err)
	}
	if err := v.store.Write(trashMetadata, data); err != nil {
		return fmt.Errorf("vault: write trash metadata: %w", err)
	}
	return nil
}

func (v *Vault) retention() time.Duration {
	return time.Duration(v.trashDays) * 24 * time.Hour
}

// TrashNote moves a note (plain or locked) into the trash.
func (v *Vault) TrashNote(_ context.Context, ref bridge.NoteRef) (models.TrashedNote, error) {
	p, err := notePath(ref)
	if err != nil {
		return models.TrashedNote{}, err
	}
	plain, name := p, ref.Filename
	if !v.store.Exists(p) {
		if !v.store.Exists(p + lockedExt) {
			return models.TrashedNote{}, fmt.Errorf("vault: trash note %s: %w", p, apperr.ErrNotFound)
		}
		p += lockedExt
		name += lockedExt
	}
	item := trashItem{
		ID:             uuid.New().String(),
		Filename:       path.Base(name),
		OriginalPath:   name,
		IsDaily:        ref.IsDaily && !ref.IsWeekly,
		IsWeekly:       ref.IsWeekly,
		ContainedFiles: []string{},
		TrashedAt:      v.now().Unix(),
	}
	if err := v.store.Move(p, item.storedName()); err != nil {
		return models.TrashedNote{}, fmt.Errorf("vault: trash note: %w", err)
	}
	idx := v.readTrash()
	idx.Items = append(idx.Items, item)
	if err := v.writeTrash(idx); err != nil {
		return models.TrashedNote{}, err
	}
	v.rekeyColor(plain, "")
	v.logger.Info("note trashed", slog.String("path", p), slog.String("trash_id", item.ID))
	return v.record(item), nil
}

// TrashFolder moves a folder below notes/ and everything in it into the trash.
func (v *Vault) TrashFolder(_ context.Context, folder string) (models.TrashedNote, error) {
	if err := checkName(folder); err != nil {
		return models.TrashedNote{}, err
	}
	dir := path.Join(NotesDir, folder)
	if !v.store.Exists(dir) {
		return models.TrashedNote{}, fmt.Errorf("vault: trash folder %s: %w", folder, apperr.ErrNotFound)
	}
	entries, err := v.store.List(dir, noteExt)
	if err != nil {
		return models.TrashedNote{}, fmt.Errorf("vault: trash folder: %w", err)
	}
	contained := make([]string, 0, len(entries))
	for _, e := range entries {
		contained = append(contained, strings.TrimPrefix(e.Path, dir+"/"))
	}
	item := trashItem{
		ID:             uuid.New().String(),
		Filename:       path.Base(folder),
		OriginalPath:   folder,
		IsFolder:       true,
		ContainedFiles: contained,
		TrashedAt:      v.now().Unix(),
	}
	if err := v.store.Move(dir, item.storedName()); err != nil {
		return models.TrashedNote{}, fmt.Errorf("vault: trash folder: %w", err)
	}
	idx := v.readTrash()
	idx.Items = append(idx.Items, item)
	if err := v.writeTrash(idx); err != nil {
		return models.TrashedNote{}, err
	}
	return v.record(item), nil
}

func (v *Vault) record(it trashItem) models.TrashedNote {
	elapsed := v.now().Unix() - it.TrashedAt
	left := int64(v.retention().Seconds()) - elapsed
	days := int(math.Ceil(float64(left) / 86400))
	contained := it.ContainedFiles
	if contained == nil {
		contained = []string{}
	}
	return models.TrashedNote{
		ID:             it.ID,
		Filename:       it.Filename,
		OriginalPath:   it.OriginalPath,
		IsDaily:        it.IsDaily,
		IsWeekly:       it.IsWeekly,
		IsFolder:       it.IsFolder,
		ContainedFiles: contained,
		TrashedAt:      it.TrashedAt,
		DaysRemaining:  max(days, 0),
	}
}

// ListTrash lists trashed items in the order they were trashed.
func (v *Vault) ListTrash(_ context.Context) ([]models.TrashedNote, error) {
	idx := v.readTrash()
	out := make([]models.TrashedNote, 0, len(idx.Items))
	for _, it := range idx.Items {
		out = append(out, v.record(it))
	}
	return out, nil
}

func (v *Vault) findTrash(idx trashIndex, id string) (int, error) {
	for i, it := range idx.Items {
		if it.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("vault: trash item %s: %w", id, apperr.ErrNotFound)
}

// RestoreNote moves a trashed item back to where it came from. An index
// entry whose file has disappeared is dropped and reported as not found.
func (v *Vault) RestoreNote(_ context.Context, id string) error {
	idx := v.readTrash()
	i, err := v.findTrash(idx, id)
	if err != nil {
		return err
	}
	it := idx.Items[i]
	stored := it.storedName()
	if !v.store.Exists(stored) {
		idx.Items = append(idx.Items[:i], idx.Items[i+1:]...)
		if err := v.writeTrash(idx); err != nil {
			return err
		}
		return fmt.Errorf("vault: restore %s: file missing: %w", id, apperr.ErrNotFound)
	}
	dest := path.Join(it.homeDir(), it.OriginalPath)
	if v.store.Exists(dest) {
		return fmt.Errorf("vault: restore %s: %w", dest, apperr.ErrAlreadyExists)
	}
	if err := v.store.Move(stored, dest); err != nil {
		return fmt.Errorf("vault: restore: %w", err)
	}
	idx.Items = append(idx.Items[:i], idx.Items[i+1:]...)
	return v.writeTrash(idx)
}

// DeleteFromTrash permanently removes one trashed item.
func (v *Vault) DeleteFromTrash(_ context.Context, id string) error {
	idx := v.readTrash()
	i, err := v.findTrash(idx, id)
	if err != nil {
		return err
	}
	if err := v.purge(idx.Items[i]); err != nil {
		return err
	}
	idx.Items = append(idx.Items[:i], idx.Items[i+1:]...)
	return v.writeTrash(idx)
}

// EmptyTrash permanently removes every trashed item.
func (v *Vault) EmptyTrash(_ context.Context) error {
	idx := v.readTrash()
	for _, it := range idx.Items {
		if err := v.purge(it); err != nil {
			return err
		}
	}
	return v.writeTrash(trashIndex{})
}

// CleanupTrash removes items older than the retention period and returns
// how many files or folders were deleted.
func (v *Vault) CleanupTrash(_ context.Context) (int, error) {
	idx := v.readTrash()
	now := v.now().Unix()
	limit := int64(v.retention().Seconds())
	kept := idx.Items[:0]
	deleted := 0
	for _, it := range idx.Items {
		if now-it.TrashedAt < limit {
			kept = append(kept, it)
			continue
		}
		if v.store.Exists(it.storedName()) {
			if err := v.purge(it); err != nil {
				v.logger.Warn("trash cleanup failed", slog.String("trash_id", it.ID), slog.String("error", err.Error()))
				continue
			}
			deleted++
		}
	}
	idx.Items = kept
	if err := v.writeTrash(idx); err != nil {
		return deleted, err
	}
	return deleted, nil
}

func (v *Vault) purge(it trashItem) error {
	var err error
	if it.IsFolder {
		err = v.store.RemoveAll(it.storedName())
	} else {
		err = v.store.Delete(it.storedName())
	}
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("vault: purge %s: %w", it.ID, err)
	}
	return nil
}

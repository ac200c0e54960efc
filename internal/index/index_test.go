package index

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
	"github.com/mauropereiira/Moldavite-sub001/internal/models"
	"github.com/mauropereiira/Moldavite-sub001/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func link(label string) models.WikiLink {
	return models.WikiLink{DisplayText: label, Target: "project-alpha.md"}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"notes", "links", "task_status"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestUpsertAndGetNote(t *testing.T) {
	db := testDB(t)
	row := NoteRow{
		Path:      "notes/Hello.md",
		Title:     "Hello World",
		Checksum:  "abc123",
		Tags:      []string{"go", "test"},
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertNote(row, "This is a hello world note.", []models.WikiLink{link("Project Alpha")}, models.TaskStatus{}); err != nil {
		t.Fatalf("UpsertNote: %v", err)
	}
	cs, err := db.GetChecksum("notes/Hello.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
	n, err := db.GetNote("notes/Hello.md")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if n.Kind != "standalone" || n.Title != "Hello World" || len(n.Tags) != 2 {
		t.Errorf("note = %+v", n)
	}
	if _, err := db.GetNote("notes/missing.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestBacklinks(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Path: "notes/A.md", Title: "A", Checksum: "1"}, "body", []models.WikiLink{link("Project Alpha")}, models.TaskStatus{})
	_ = db.UpsertNote(NoteRow{Path: "daily/2024-01-15.md", Checksum: "2"}, "body", []models.WikiLink{link("the plan")}, models.TaskStatus{})
	_ = db.UpsertNote(NoteRow{Path: "notes/project-alpha.md", Checksum: "3"}, "body", []models.WikiLink{link("self")}, models.TaskStatus{})

	bl, err := db.Backlinks("project-alpha.md")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(bl) != 2 {
		t.Fatalf("expected 2 backlinks, got %+v", bl)
	}
	if bl[0].Source != "daily/2024-01-15.md" || bl[0].Label != "the plan" {
		t.Errorf("bl[0] = %+v", bl[0])
	}
	if bl[1].Title != "A" {
		t.Errorf("bl[1].Title = %q, want %q", bl[1].Title, "A")
	}
}

func TestDeleteNote(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Path: "notes/del.md", Checksum: "x"}, "body", []models.WikiLink{link("x")}, models.TaskStatus{})

	if err := db.DeleteNote("notes/del.md"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	cs, _ := db.GetChecksum("notes/del.md")
	if cs != "" {
		t.Errorf("deleted note still has checksum %q", cs)
	}
	bl, _ := db.Backlinks("project-alpha.md")
	if len(bl) != 0 {
		t.Errorf("expected 0 backlinks after delete, got %d", len(bl))
	}
}

func TestTaskStatus(t *testing.T) {
	db := testDB(t)
	path := "daily/2024-01-15.md"
	_ = db.UpsertNote(NoteRow{Path: path, Checksum: "1"}, "", nil, models.TaskStatus{TotalTasks: 3, CompletedTasks: 2})
	_ = db.UpsertNote(NoteRow{Path: "daily/2024-02-01.md", Checksum: "1"}, "", nil, models.TaskStatus{TotalTasks: 1})
	_ = db.UpsertNote(NoteRow{Path: "notes/Tasks.md", Checksum: "1"}, "", nil, models.TaskStatus{TotalTasks: 9})

	st, ok, err := db.TaskStatus("2024-01-15")
	if err != nil || !ok {
		t.Fatalf("TaskStatus: ok=%v err=%v", ok, err)
	}
	if st != (models.TaskStatus{TotalTasks: 3, CompletedTasks: 2}) {
		t.Errorf("status = %+v", st)
	}

	month, err := db.TaskStatusRange("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("TaskStatusRange: %v", err)
	}
	if len(month) != 1 {
		t.Errorf("range = %+v, want only 2024-01-15", month)
	}

	// Zero tasks removes the entry instead of storing 0/0.
	_ = db.UpsertNote(NoteRow{Path: path, Checksum: "2"}, "", nil, models.TaskStatus{})
	if _, ok, _ := db.TaskStatus("2024-01-15"); ok {
		t.Error("entry should be absent after tasks were removed")
	}

	_ = db.DeleteNote("daily/2024-02-01.md")
	if _, ok, _ := db.TaskStatus("2024-02-01"); ok {
		t.Error("entry should be absent after note deletion")
	}
}

func TestListNotes(t *testing.T) {
	db := testDB(t)
	for _, p := range []string{"daily/2024-01-15.md", "daily/2024-01-16.md", "weekly/2024-W03.md", "notes/A.md"} {
		_ = db.UpsertNote(NoteRow{Path: p, Checksum: "1"}, "", nil, models.TaskStatus{})
	}
	rows, total, err := db.ListNotes("daily", 1, 0)
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if total != 2 || len(rows) != 1 || rows[0].Path != "daily/2024-01-15.md" {
		t.Errorf("rows = %+v total = %d", rows, total)
	}
	_, total, _ = db.ListNotes("", 10, 0)
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Path: "notes/s.md", Title: "Search Me", Checksum: "1"}, "uniqueword appears here", nil, models.TaskStatus{})

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "notes/s.md" {
		t.Errorf("search results = %+v, want 1 hit for notes/s.md", results)
	}
}

func TestSync(t *testing.T) {
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	db := testDB(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	write := func(rel, content string) {
		t.Helper()
		if err := store.Write(rel, []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	write("daily/2024-01-15.md", "- [ ] a\n- [x] b\n\nsee [[Project Alpha]]\n")
	write("notes/Plain.md", "no heading here\n")
	write("notes/Secret.md.locked", "a$b$c")
	write("templates/t.json", "{}")
	write(".trash/x_Old.md", "# Old")

	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	all, _ := db.AllChecksums()
	if len(all) != 2 {
		t.Fatalf("indexed = %v, want daily and Plain only", all)
	}
	n, err := db.GetNote("notes/Plain.md")
	if err != nil {
		t.Fatal(err)
	}
	if n.Title != "Plain" {
		t.Errorf("title = %q, want filename fallback %q", n.Title, "Plain")
	}
	if st, ok, _ := db.TaskStatus("2024-01-15"); !ok || st.TotalTasks != 2 || st.CompletedTasks != 1 {
		t.Errorf("task status = %+v ok=%v", st, ok)
	}
	if bl, _ := db.Backlinks("project-alpha.md"); len(bl) != 1 {
		t.Errorf("backlinks = %+v", bl)
	}

	if err := store.Delete("notes/Plain.md"); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if cs, _ := db.GetChecksum("notes/Plain.md"); cs != "" {
		t.Error("stale note not removed")
	}
}

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
	"github.com/mauropereiira/Moldavite-sub001/internal/bridge"
	"github.com/mauropereiira/Moldavite-sub001/internal/lifecycle"
	"github.com/mauropereiira/Moldavite-sub001/internal/models"
	"github.com/mauropereiira/Moldavite-sub001/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	session *lifecycle.Controller
	cmds    bridge.Commands
	notes   *noteservice.Service
	now     func() time.Time
}

// NewHandler creates a new Handler.
func NewHandler(session *lifecycle.Controller, cmds bridge.Commands, notes *noteservice.Service) *Handler {
	return &Handler{session: session, cmds: cmds, notes: notes, now: time.Now}
}

// notePath extracts the note path from the URL (everything after /api/notes/).
// Supports encoded slashes from OpenAPI clients (e.g. notes%2Fhello.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// tabID extracts the escaped note id of /tabs/{id}/... routes.
func tabID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// dateParam parses {date} as YYYY-MM-DD. "today" is accepted.
func (h *Handler) dateParam(r *http.Request) (time.Time, bool) {
	raw := chi.URLParam(r, "date")
	if raw == "today" {
		return h.now(), true
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	return t, err == nil
}

// listedFile finds p in the session listing, refreshing it once on a miss.
func (h *Handler) listedFile(ctx context.Context, p string) (models.NoteFile, error) {
	find := func() (models.NoteFile, bool) {
		for _, f := range h.session.Files() {
			if f.Path == p {
				return f, true
			}
		}
		return models.NoteFile{}, false
	}
	if f, ok := find(); ok {
		return f, nil
	}
	if err := h.session.RefreshListing(ctx); err != nil {
		return models.NoteFile{}, err
	}
	if f, ok := find(); ok {
		return f, nil
	}
	return models.NoteFile{}, apperr.ErrNotFound
}

func (h *Handler) writeTabs(w http.ResponseWriter) {
	resp := TabsResponse{Tabs: h.session.Tabs()}
	if n, ok := h.session.Active(); ok {
		resp.Active = n.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListTabs handles GET /api/tabs.
//
//	@Summary		List open tabs
//	@Tags			tabs
//	@Produce		json
//	@Success		200	{object}	TabsResponse
//	@Security		BearerAuth
//	@Router			/tabs [get]
func (h *Handler) ListTabs(w http.ResponseWriter, _ *http.Request) {
	h.writeTabs(w)
}

// OpenTab handles POST /api/tabs.
//
//	@Summary		Open a listed note in a tab
//	@Tags			tabs
//	@Accept			json
//	@Produce		json
//	@Param			body	body		OpenTabRequest	true	"Note to open"
//	@Success		200		{object}	TabsResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tabs [post]
func (h *Handler) OpenTab(w http.ResponseWriter, r *http.Request) {
	var req OpenTabRequest
	if !decodeBody(w, r, &req) {
		return
	}
	f, err := h.listedFile(r.Context(), req.Path)
	if err != nil {
		writeError(w, "open tab", err)
		return
	}
	if err := h.session.OpenFile(r.Context(), f, req.InNewTab); err != nil {
		writeError(w, "open tab", err)
		return
	}
	h.writeTabs(w)
}

// ActivateTab handles POST /api/tabs/{id}/activate.
//
//	@Summary		Switch to an open tab
//	@Tags			tabs
//	@Param			id	path		string	true	"Escaped note id"
//	@Success		200	{object}	TabsResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tabs/{id}/activate [post]
func (h *Handler) ActivateTab(w http.ResponseWriter, r *http.Request) {
	if err := h.session.ActivateTab(r.Context(), tabID(r)); err != nil {
		writeError(w, "activate tab", err)
		return
	}
	h.writeTabs(w)
}

// PinTab handles POST /api/tabs/{id}/pin, which toggles the pin.
//
//	@Summary		Pin or unpin a tab
//	@Tags			tabs
//	@Param			id	path		string	true	"Escaped note id"
//	@Success		200	{object}	TabsResponse
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tabs/{id}/pin [post]
func (h *Handler) PinTab(w http.ResponseWriter, r *http.Request) {
	if err := h.session.PinTab(r.Context(), tabID(r)); err != nil {
		writeError(w, "pin tab", err)
		return
	}
	h.writeTabs(w)
}

// CloseTab handles DELETE /api/tabs/{id}.
//
//	@Summary		Close a tab, saving it first
//	@Tags			tabs
//	@Param			id	path		string	true	"Escaped note id"
//	@Success		200	{object}	TabsResponse
//	@Security		BearerAuth
//	@Router			/tabs/{id} [delete]
func (h *Handler) CloseTab(w http.ResponseWriter, r *http.Request) {
	if err := h.session.CloseTab(r.Context(), tabID(r)); err != nil {
		writeError(w, "close tab", err)
		return
	}
	h.writeTabs(w)
}

// UpdateContent handles PUT /api/tabs/{id}/content.
//
//	@Summary		Replace the editor document of the active tab
//	@Tags			tabs
//	@Accept			json
//	@Param			id		path	string					true	"Escaped note id"
//	@Param			body	body	UpdateContentRequest	true	"Editor HTML"
//	@Success		204		"Content accepted"
//	@Failure		403		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tabs/{id}/content [put]
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	var req UpdateContentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.session.UpdateContent(r.Context(), tabID(r), req.HTML); err != nil {
		writeError(w, "update content", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Flush handles POST /api/flush.
func (h *Handler) Flush(w http.ResponseWriter, r *http.Request) {
	if err := h.session.FlushCurrentNote(r.Context()); err != nil {
		writeError(w, "flush", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadDaily handles POST /api/daily/{date}.
//
//	@Summary		Open the daily note of a date
//	@Tags			periodic
//	@Param			date	path		string	true	"YYYY-MM-DD or today"
//	@Success		200		{object}	TabsResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/daily/{date} [post]
func (h *Handler) LoadDaily(w http.ResponseWriter, r *http.Request) {
	t, ok := h.dateParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("date must be YYYY-MM-DD"))
		return
	}
	if err := h.session.LoadDailyNote(r.Context(), t); err != nil {
		writeError(w, "load daily note", err)
		return
	}
	h.writeTabs(w)
}

// LoadWeekly handles POST /api/weekly/{date}. Any date of the week works.
//
//	@Summary		Open the weekly note of the ISO week containing a date
//	@Tags			periodic
//	@Param			date	path		string	true	"YYYY-MM-DD or today"
//	@Success		200		{object}	TabsResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/weekly/{date} [post]
func (h *Handler) LoadWeekly(w http.ResponseWriter, r *http.Request) {
	t, ok := h.dateParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("date must be YYYY-MM-DD"))
		return
	}
	if err := h.session.LoadWeeklyNote(r.Context(), t); err != nil {
		writeError(w, "load weekly note", err)
		return
	}
	h.writeTabs(w)
}

// ListFiles handles GET /api/files, the session's directory listing.
func (h *Handler) ListFiles(w http.ResponseWriter, _ *http.Request) {
	files := h.session.Files()
	if files == nil {
		files = []models.NoteFile{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

// ListFolders handles GET /api/folders.
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.cmds.ListFolders(r.Context())
	if err != nil {
		writeError(w, "list folders", err)
		return
	}
	if folders == nil {
		folders = []models.FolderInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"folders": folders})
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List indexed notes with optional pagination and kind filter
//	@Tags			notes
//	@Produce		json
//	@Param			kind	query		string	false	"Note kind"	Enums(daily, weekly, standalone)
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.notes.ListNotes(r.Context(), q.Get("kind"), limit, offset)
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: total})
}

// FindNotes handles GET /api/notes/find.
//
//	@Summary		Fuzzy match note titles
//	@Tags			notes
//	@Produce		json
//	@Param			q		query		string	true	"Pattern"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	FindResponse
//	@Security		BearerAuth
//	@Router			/notes/find [get]
func (h *Handler) FindNotes(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	matches, err := h.notes.Find(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, "find notes", err)
		return
	}
	writeJSON(w, http.StatusOK, FindResponse{Matches: matches})
}

// GetNote handles GET /api/notes/*.
//
//	@Summary		Get a single indexed note by path
//	@Tags			notes
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	NoteDetail
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{path} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	p := notePath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	note, err := h.notes.GetNote(r.Context(), p)
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across notes
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.notes.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{Path: hit.Path, Title: hit.Title, Snippet: hit.Snippet}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Backlinks handles GET /api/backlinks?note=<filename>.
//
//	@Summary		Notes linking to a note
//	@Tags			links
//	@Produce		json
//	@Param			note	query		string	true	"Target filename, e.g. Project Alpha.md"
//	@Success		200		{object}	BacklinksResponse
//	@Security		BearerAuth
//	@Router			/backlinks [get]
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("note")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'note' is required"))
		return
	}
	links, err := h.notes.Backlinks(r.Context(), name)
	if err != nil {
		writeError(w, "backlinks", err)
		return
	}
	writeJSON(w, http.StatusOK, BacklinksResponse{Backlinks: links})
}

// Decode handles POST /api/convert/decode.
func (h *Handler) Decode(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, DecodeResponse{HTML: h.notes.Decode(req.Markup)})
}

// Encode handles POST /api/convert/encode.
func (h *Handler) Encode(w http.ResponseWriter, r *http.Request) {
	var req EncodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, EncodeResponse{Markup: h.notes.Encode(req.HTML)})
}

// Lock handles POST /api/lock.
//
//	@Summary		Encrypt an open note and close its tab
//	@Tags			lock
//	@Accept			json
//	@Param			body	body	LockRequest	true	"Note and password"
//	@Success		204		"Note locked"
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/lock [post]
func (h *Handler) Lock(w http.ResponseWriter, r *http.Request) {
	var req LockRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.session.LockNote(r.Context(), req.ID, req.Password); err != nil {
		writeError(w, "lock note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unlock handles POST /api/unlock.
//
//	@Summary		Open a locked note read-only, or remove its lock
//	@Tags			lock
//	@Accept			json
//	@Produce		json
//	@Param			body	body		UnlockRequest	true	"Note and password"
//	@Success		200		{object}	TabsResponse
//	@Failure		403		{object}	PasswordErrorResponse
//	@Failure		429		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/unlock [post]
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req UnlockRequest
	if !decodeBody(w, r, &req) {
		return
	}
	f, err := h.listedFile(r.Context(), req.Path)
	if err != nil {
		writeError(w, "unlock note", err)
		return
	}
	if req.Permanent {
		err = h.session.PermanentlyUnlockNote(r.Context(), f, req.Password)
	} else {
		err = h.session.UnlockNote(r.Context(), f, req.Password)
	}
	if err != nil {
		writeError(w, "unlock note", err)
		return
	}
	h.writeTabs(w)
}

// Activity handles POST /api/activity.
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	var req ActivityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.session.RecordActivity(r.Context(), req.Kind); err != nil {
		writeError(w, "record activity", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AutoLock handles PUT /api/autolock.
func (h *Handler) AutoLock(w http.ResponseWriter, r *http.Request) {
	var req AutoLockRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.session.SetAutoLockTimeout(r.Context(), req.Minutes); err != nil {
		writeError(w, "set auto-lock", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TaskStatus handles GET /api/tasks/{date}. Unsaved edits of the open daily
// note win over the index.
//
//	@Summary		Task counts of a daily note
//	@Tags			tasks
//	@Produce		json
//	@Param			date	path		string	true	"YYYY-MM-DD or today"
//	@Success		200		{object}	TaskStatusResponse
//	@Security		BearerAuth
//	@Router			/tasks/{date} [get]
func (h *Handler) TaskStatus(w http.ResponseWriter, r *http.Request) {
	t, ok := h.dateParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("date must be YYYY-MM-DD"))
		return
	}
	date := lifecycle.DailyName(t)
	if st, ok := h.session.TaskStatus(date); ok {
		writeJSON(w, http.StatusOK, TaskStatusResponse{Date: date, Exists: true, Status: st})
		return
	}
	st, ok, err := h.notes.TaskStatus(r.Context(), date)
	if err != nil {
		writeError(w, "task status", err)
		return
	}
	writeJSON(w, http.StatusOK, TaskStatusResponse{Date: date, Exists: ok, Status: st})
}

// TaskCalendar handles GET /api/tasks?from=&to=.
func (h *Handler) TaskCalendar(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	for _, d := range []string{from, to} {
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("from and to must be YYYY-MM-DD"))
			return
		}
	}
	days, err := h.notes.TaskCalendar(r.Context(), from, to)
	if err != nil {
		writeError(w, "task calendar", err)
		return
	}
	if days == nil {
		days = make(map[string]models.TaskStatus)
	}
	for date, st := range h.session.TaskStatuses() {
		if date >= from && date <= to {
			days[date] = st
		}
	}
	writeJSON(w, http.StatusOK, TaskCalendarResponse{Days: days})
}

// ListTrash handles GET /api/trash.
func (h *Handler) ListTrash(w http.ResponseWriter, r *http.Request) {
	items, err := h.cmds.ListTrash(r.Context())
	if err != nil {
		writeError(w, "list trash", err)
		return
	}
	if items == nil {
		items = []models.TrashedNote{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Trash handles POST /api/trash.
//
//	@Summary		Move a note to the trash
//	@Tags			trash
//	@Accept			json
//	@Param			body	body	TrashRequest	true	"Note id"
//	@Success		204		"Note trashed"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/trash [post]
func (h *Handler) Trash(w http.ResponseWriter, r *http.Request) {
	var req TrashRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.session.TrashNote(r.Context(), req.ID); err != nil {
		writeError(w, "trash note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Restore handles POST /api/trash/{id}/restore.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	if err := h.cmds.RestoreNote(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "restore note", err)
		return
	}
	if err := h.session.RefreshListing(r.Context()); err != nil {
		writeError(w, "restore note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTemplates handles GET /api/templates.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.cmds.ListTemplates(r.Context())
	if err != nil {
		writeError(w, "list templates", err)
		return
	}
	if templates == nil {
		templates = []models.Template{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

// RenameNote handles POST /api/notes/rename.
//
//	@Summary		Rename a standalone note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RenameRequest	true	"Note id and new name"
//	@Success		200		{object}	NoteIDResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/rename [post]
func (h *Handler) RenameNote(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.relocated(w, r, "rename note", req.ID, func(ctx context.Context) (string, error) {
		return h.session.RenameNote(ctx, req.ID, req.Name)
	})
}

// MoveNote handles POST /api/notes/move.
//
//	@Summary		Move a standalone note to another folder
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MoveRequest	true	"Note id and folder"
//	@Success		200		{object}	NoteIDResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/move [post]
func (h *Handler) MoveNote(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.relocated(w, r, "move note", req.ID, func(ctx context.Context) (string, error) {
		return h.session.MoveNote(ctx, req.ID, req.Folder)
	})
}

// DuplicateNote handles POST /api/notes/duplicate.
//
//	@Summary		Copy a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DuplicateRequest	true	"Note id"
//	@Success		201		{object}	NoteIDResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/duplicate [post]
func (h *Handler) DuplicateNote(w http.ResponseWriter, r *http.Request) {
	var req DuplicateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := h.listedFile(r.Context(), req.ID); err != nil {
		writeError(w, "duplicate note", err)
		return
	}
	id, err := h.session.DuplicateNote(r.Context(), req.ID)
	if err != nil {
		writeError(w, "duplicate note", err)
		return
	}
	writeJSON(w, http.StatusCreated, NoteIDResponse{ID: id})
}

// relocated runs a rename or move of a listed note and reports the new id.
func (h *Handler) relocated(w http.ResponseWriter, r *http.Request, op, id string, fn func(context.Context) (string, error)) {
	if _, err := h.listedFile(r.Context(), id); err != nil {
		writeError(w, op, err)
		return
	}
	newID, err := fn(r.Context())
	if err != nil {
		writeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, NoteIDResponse{ID: newID})
}

// NoteFromLink handles POST /api/notes/from-link.
//
//	@Summary		Create the note a wiki link points to and open it
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NoteFromLinkRequest	true	"Link text"
//	@Success		201		{object}	TabsResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/from-link [post]
func (h *Handler) NoteFromLink(w http.ResponseWriter, r *http.Request) {
	var req NoteFromLinkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := h.session.CreateNoteFromLink(r.Context(), req.Name, req.InNewTab); err != nil {
		writeError(w, "create note from link", err)
		return
	}
	resp := TabsResponse{Tabs: h.session.Tabs()}
	if n, ok := h.session.Active(); ok {
		resp.Active = n.ID
	}
	writeJSON(w, http.StatusCreated, resp)
}

// NoteColors handles GET /api/colors.
//
//	@Summary		List note colors
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	ColorsResponse
//	@Security		BearerAuth
//	@Router			/colors [get]
func (h *Handler) NoteColors(w http.ResponseWriter, r *http.Request) {
	colors, err := h.cmds.NoteColors(r.Context())
	if err != nil {
		writeError(w, "note colors", err)
		return
	}
	if colors == nil {
		colors = map[string]string{}
	}
	writeJSON(w, http.StatusOK, ColorsResponse{Colors: colors})
}

// SetNoteColor handles PUT /api/colors.
//
//	@Summary		Set or clear a note color
//	@Tags			notes
//	@Accept			json
//	@Param			body	body	SetColorRequest	true	"Note path and color id"
//	@Success		204		"Color stored"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/colors [put]
func (h *Handler) SetNoteColor(w http.ResponseWriter, r *http.Request) {
	var req SetColorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.cmds.SetNoteColor(r.Context(), req.Path, req.Color); err != nil {
		writeError(w, "set note color", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

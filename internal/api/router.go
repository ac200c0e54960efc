package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mauropereiira/Moldavite-sub001/internal/bridge"
	"github.com/mauropereiira/Moldavite-sub001/internal/lifecycle"
	"github.com/mauropereiira/Moldavite-sub001/internal/noteservice"
	"github.com/mauropereiira/Moldavite-sub001/internal/storage"
)

// Deps are the services behind the API.
type Deps struct {
	Session *lifecycle.Controller
	Vault   bridge.Commands
	Notes   *noteservice.Service
	Store   storage.Provider
}

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(d Deps, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(d.Session, d.Vault, d.Notes)
	ah := NewAttachmentHandler(d.Store)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Editing session. Ids are vault paths, escaped as one segment.
	r.Get("/tabs", h.ListTabs)
	r.Post("/tabs", h.OpenTab)
	r.Post("/tabs/{id}/activate", h.ActivateTab)
	r.Post("/tabs/{id}/pin", h.PinTab)
	r.Put("/tabs/{id}/content", h.UpdateContent)
	r.Delete("/tabs/{id}", h.CloseTab)
	r.Post("/flush", h.Flush)
	r.Post("/daily/{date}", h.LoadDaily)
	r.Post("/weekly/{date}", h.LoadWeekly)
	r.Get("/files", h.ListFiles)
	r.Get("/folders", h.ListFolders)

	// Locking.
	r.Post("/lock", h.Lock)
	r.Post("/unlock", h.Unlock)
	r.Post("/activity", h.Activity)
	r.Put("/autolock", h.AutoLock)

	// Index queries.
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/find", h.FindNotes)
	r.Get("/notes/*", h.GetNote)
	r.Post("/notes/rename", h.RenameNote)
	r.Post("/notes/move", h.MoveNote)
	r.Post("/notes/duplicate", h.DuplicateNote)
	r.Post("/notes/from-link", h.NoteFromLink)
	r.Get("/colors", h.NoteColors)
	r.Put("/colors", h.SetNoteColor)
	r.Get("/search", h.Search)
	r.Get("/backlinks", h.Backlinks)
	r.Get("/tasks", h.TaskCalendar)
	r.Get("/tasks/{date}", h.TaskStatus)

	// Conversion.
	r.Post("/convert/decode", h.Decode)
	r.Post("/convert/encode", h.Encode)

	// Trash and templates.
	r.Get("/trash", h.ListTrash)
	r.Post("/trash", h.Trash)
	r.Post("/trash/{id}/restore", h.Restore)
	r.Get("/templates", h.ListTemplates)

	// Attachments upload (auth-protected).
	r.Post("/attachments", ah.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

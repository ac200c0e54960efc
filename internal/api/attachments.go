package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
	"github.com/mauropereiira/Moldavite-sub001/internal/storage"
)

const (
	attachDir      = "attachments"
	maxUploadBytes = 50 << 20 // 50 MB
)

// AttachmentHandler serves and accepts files kept under the vault's
// attachments directory. Editor images reference them as /attachments/<name>.
type AttachmentHandler struct {
	store storage.Provider
}

// NewAttachmentHandler creates a handler over the vault store.
func NewAttachmentHandler(store storage.Provider) *AttachmentHandler {
	return &AttachmentHandler{store: store}
}

// safeName checks that name is a plain file name and returns its vault path.
func safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	if strings.ContainsAny(name, `/\`) || name != path.Clean(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	return attachDir + "/" + name, nil
}

// freeName returns a vault path for name that does not exist yet, adding a
// counter before the extension and finally a random suffix.
func (h *AttachmentHandler) freeName(name string) (string, string) {
	p := attachDir + "/" + name
	if !h.store.Exists(p) {
		return name, p
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; i < 100; i++ {
		candidate := fmt.Sprintf("%s-%d%s", base, i, ext)
		if p := attachDir + "/" + candidate; !h.store.Exists(p) {
			return candidate, p
		}
	}
	candidate := base + "-" + uuid.NewString()[:8] + ext
	return candidate, attachDir + "/" + candidate
}

// ServeFile handles GET /attachments/{filename}.
func (h *AttachmentHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	p, err := safeName(filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := h.store.Read(p)
	if errors.Is(err, apperr.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, filename, time.Time{}, bytes.NewReader(data))
}

// Upload handles POST /api/attachments (multipart/form-data, field "file").
// A name that is taken gets a numeric suffix instead of overwriting.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	if _, err := safeName(header.Filename); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}

	name, p := h.freeName(header.Filename)
	if err := h.store.Write(p, data); err != nil {
		writeError(w, "store attachment", err)
		return
	}

	writeJSON(w, http.StatusCreated, AttachmentUploadResponse{
		Filename: name,
		Size:     int64(len(data)),
		URL:      "/attachments/" + name,
	})
}

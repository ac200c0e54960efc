package api

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mauropereiira/Moldavite-sub001/internal/models"
	"github.com/mauropereiira/Moldavite-sub001/internal/noteservice"
)

// OpenTabRequest opens a listed note by its vault path.
type OpenTabRequest struct {
	Path     string `json:"path" example:"notes/Project Alpha.md" validate:"required"`
	InNewTab bool   `json:"in_new_tab"`
}

// Validate validates the request.
func (r OpenTabRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required),
	)
}

// UpdateContentRequest carries the editor document of the active tab.
type UpdateContentRequest struct {
	HTML string `json:"html" example:"<p>hello</p>"`
}

// LockRequest locks an open note with a password.
type LockRequest struct {
	ID       string `json:"id" example:"notes/Project Alpha.md" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Validate validates the request.
func (r LockRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// UnlockRequest opens a locked note. Permanent removes the encryption.
type UnlockRequest struct {
	Path      string `json:"path" example:"notes/Project Alpha.md" validate:"required"`
	Password  string `json:"password" validate:"required"`
	Permanent bool   `json:"permanent"`
}

// Validate validates the request.
func (r UnlockRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// ActivityRequest reports a user activity event.
type ActivityRequest struct {
	Kind string `json:"kind" example:"keydown" validate:"required"`
}

// Validate validates the request.
func (r ActivityRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Kind, validation.Required),
	)
}

// AutoLockRequest changes the idle timeout. Zero disables auto-lock.
type AutoLockRequest struct {
	Minutes int `json:"minutes" example:"5"`
}

// Validate validates the request.
func (r AutoLockRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Minutes, validation.Min(0), validation.Max(24*60)),
	)
}

// TrashRequest moves a note to the trash.
type TrashRequest struct {
	ID string `json:"id" example:"daily/2024-01-15.md" validate:"required"`
}

// Validate validates the request.
func (r TrashRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
	)
}

// RenameRequest renames a standalone note within its folder.
type RenameRequest struct {
	ID   string `json:"id" example:"notes/work/Plan.md" validate:"required"`
	Name string `json:"name" example:"Roadmap" validate:"required"`
}

// Validate validates the request.
func (r RenameRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
	)
}

// MoveRequest moves a standalone note to a folder; "" is the notes root.
type MoveRequest struct {
	ID     string `json:"id" example:"notes/Plan.md" validate:"required"`
	Folder string `json:"folder" example:"work"`
}

// Validate validates the request.
func (r MoveRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
	)
}

// DuplicateRequest copies a note.
type DuplicateRequest struct {
	ID string `json:"id" example:"notes/Plan.md" validate:"required"`
}

// Validate validates the request.
func (r DuplicateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
	)
}

// NoteFromLinkRequest creates the note a wiki link names and opens it.
type NoteFromLinkRequest struct {
	Name     string `json:"name" example:"Project Plan" validate:"required"`
	InNewTab bool   `json:"in_new_tab"`
}

// Validate validates the request.
func (r NoteFromLinkRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
	)
}

// NoteIDResponse carries the id a note ended up under.
type NoteIDResponse struct {
	ID string `json:"id" example:"notes/work/Roadmap.md" validate:"required"`
}

var reColor = regexp.MustCompile(`^[a-z0-9-]{1,32}$`)

// SetColorRequest colors a note. An empty color or "default" clears it.
type SetColorRequest struct {
	Path  string `json:"path" example:"notes/Plan.md" validate:"required"`
	Color string `json:"color" example:"blue"`
}

// Validate validates the request.
func (r SetColorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required),
		validation.Field(&r.Color, validation.Match(reColor)),
	)
}

// ColorsResponse maps note paths to color ids.
type ColorsResponse struct {
	Colors map[string]string `json:"colors" validate:"required"`
}

// DecodeRequest converts stored markup to editor HTML.
type DecodeRequest struct {
	Markup string `json:"markup" example:"- [ ] plan"`
}

// DecodeResponse is the result of a decode.
type DecodeResponse struct {
	HTML string `json:"html" validate:"required"`
}

// EncodeRequest converts editor HTML to stored markup.
type EncodeRequest struct {
	HTML string `json:"html" example:"<p>hello</p>"`
}

// EncodeResponse is the result of an encode.
type EncodeResponse struct {
	Markup string `json:"markup" validate:"required"`
}

// TabsResponse is the session's open tabs and the active one.
type TabsResponse struct {
	Tabs   []models.Note `json:"tabs" validate:"required"`
	Active string        `json:"active" example:"daily/2024-01-15.md"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListItem is a lightweight item in a list response (aliased from the domain layer).
type NoteListItem = noteservice.NoteListItem

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// FindResponse wraps fuzzy title matches.
type FindResponse struct {
	Matches []noteservice.Match `json:"matches" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path" example:"notes/hello.md" validate:"required"`
	Title   string `json:"title" example:"Hello" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// BacklinksResponse wraps the notes linking to a note.
type BacklinksResponse struct {
	Backlinks []models.Backlink `json:"backlinks" validate:"required"`
}

// TaskStatusResponse is the task count of one daily note.
type TaskStatusResponse struct {
	Date   string            `json:"date" example:"2024-01-15"`
	Exists bool              `json:"exists"`
	Status models.TaskStatus `json:"status"`
}

// TaskCalendarResponse maps dates to task counts.
type TaskCalendarResponse struct {
	Days map[string]models.TaskStatus `json:"days" validate:"required"`
}

// PasswordErrorResponse is returned when an unlock password is wrong.
type PasswordErrorResponse struct {
	Error     string `json:"error"`
	Remaining int    `json:"remaining" example:"4"`
}

// AttachmentUploadResponse is returned after a successful attachment upload.
type AttachmentUploadResponse struct {
	Filename string `json:"filename" example:"image.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"/attachments/image.png" validate:"required"`
}

// NoteListItemDTO mirrors NoteListItem for swag.
type NoteListItemDTO struct {
	Path      string    `json:"path" example:"notes/hello.md"`
	Kind      string    `json:"kind" example:"standalone"`
	Title     string    `json:"title" example:"Hello"`
	Checksum  string    `json:"checksum" example:"abc123..."`
	Tags      []string  `json:"tags" example:"tag1,tag2"`
	UpdatedAt time.Time `json:"updated_at"`
}

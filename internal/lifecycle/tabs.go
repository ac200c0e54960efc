package lifecycle

import (
	"fmt"
	"slices"

	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
	"github.com/mauropereiira/Moldavite-sub001/internal/models"
)

// DefaultMaxPinned is the number of tabs that can be pinned at once.
const DefaultMaxPinned = 5

// tabSet is the ordered set of open notes: pinned tabs first, then
// unpinned ones. Ids are unique and active is empty or a member.
type tabSet struct {
	tabs      []*models.Note
	active    string
	maxPinned int
}

func (s *tabSet) index(id string) int {
	return slices.IndexFunc(s.tabs, func(n *models.Note) bool { return n.ID == id })
}

func (s *tabSet) get(id string) *models.Note {
	if i := s.index(id); i >= 0 {
		return s.tabs[i]
	}
	return nil
}

func (s *tabSet) activeNote() *models.Note {
	if s.active == "" {
		return nil
	}
	return s.get(s.active)
}

func (s *tabSet) pinnedCount() int {
	n := 0
	for _, t := range s.tabs {
		if t.IsPinned {
			n++
		}
	}
	return n
}

// open shows n. An already open note is refreshed and activated. Otherwise
// n gets a new tab when asked for or when nothing is active, and takes over
// the active tab's slot when not. A pinned slot is never taken over. open
// returns the id of the note whose slot was reused, or "".
func (s *tabSet) open(n *models.Note, inNewTab bool) (replaced string) {
	if cur := s.get(n.ID); cur != nil {
		cur.Content = n.Content
		cur.UpdatedAt = n.UpdatedAt
		cur.IsLocked = n.IsLocked
		cur.IsVirtual = n.IsVirtual
		s.active = n.ID
		return ""
	}
	n.IsPinned = false
	i := s.index(s.active)
	if inNewTab || i < 0 || s.tabs[i].IsPinned {
		s.tabs = append(s.tabs, n)
		s.active = n.ID
		return ""
	}
	replaced = s.tabs[i].ID
	s.tabs[i] = n
	s.active = n.ID
	return replaced
}

// remove drops id. When it was active the tab now at its index, or the last
// tab, becomes active.
func (s *tabSet) remove(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.tabs = slices.Delete(s.tabs, i, i+1)
	if s.active == id {
		s.active = ""
		if len(s.tabs) > 0 {
			s.active = s.tabs[min(i, len(s.tabs)-1)].ID
		}
	}
	return true
}

// togglePin pins or unpins id. A newly pinned tab goes to the end of the
// pinned group and an unpinned one to the start of the unpinned group.
func (s *tabSet) togglePin(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("lifecycle: pin %s: %w", id, apperr.ErrNotFound)
	}
	n := s.tabs[i]
	pinned := s.pinnedCount()
	if !n.IsPinned && pinned >= s.maxPinned {
		return fmt.Errorf("lifecycle: pin %s: %w (max %d)", id, apperr.ErrPinLimit, s.maxPinned)
	}
	s.tabs = slices.Delete(s.tabs, i, i+1)
	if n.IsPinned {
		n.IsPinned = false
		s.tabs = slices.Insert(s.tabs, pinned-1, n)
	} else {
		n.IsPinned = true
		s.tabs = slices.Insert(s.tabs, pinned, n)
	}
	return nil
}

// snapshot copies the tabs for callers outside the loop.
func (s *tabSet) snapshot() []models.Note {
	out := make([]models.Note, len(s.tabs))
	for i, t := range s.tabs {
		out[i] = *t
	}
	return out
}

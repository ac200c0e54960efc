package tasklist

import (
	"sync"

	"github.com/mauropereiira/Moldavite-sub001/internal/document"
	"github.com/mauropereiira/Moldavite-sub001/internal/models"
)

// Index counts the checkable items of d and how many are checked. Task
// items are counted by their data attributes; bare checkbox inputs from an
// unnormalized tree are counted too.
func Index(d *document.Document) models.TaskStatus {
	var st models.TaskStatus
	d.Walk(func(n *document.Node) bool {
		if n.Type != document.ElementNode {
			return false
		}
		switch {
		case n.Tag == "li" && n.DataType() == document.TypeTaskItem:
			st.TotalTasks++
			if v, _ := n.Attr("data-checked"); v == "true" {
				st.CompletedTasks++
			}
		case n.Tag == "input":
			if t, _ := n.Attr("type"); t == "checkbox" {
				st.TotalTasks++
				if _, ok := n.Attr("checked"); ok {
					st.CompletedTasks++
				}
			}
		}
		return true
	})
	return st
}

// Cache holds task status keyed by date (YYYY-MM-DD). A date without tasks
// has no entry at all.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]models.TaskStatus
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]models.TaskStatus)}
}

// Set stores st for date, or removes the entry when st has no tasks.
func (c *Cache) Set(date string, st models.TaskStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st.TotalTasks == 0 {
		delete(c.entries, date)
		return
	}
	c.entries[date] = st
}

// Get returns the status for date and whether an entry exists.
func (c *Cache) Get(date string) (models.TaskStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st, ok := c.entries[date]
	return st, ok
}

// Delete drops the entry for date.
func (c *Cache) Delete(date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, date)
}

// All returns a copy of every entry.
func (c *Cache) All() map[string]models.TaskStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]models.TaskStatus, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

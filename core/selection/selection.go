package selection

import "sync"

// Context tracks the ambulance targeted by dispatch and cancel commands.
type Context struct {
	mu sync.RWMutex
	id string
}

// New returns an empty selection.
func New() *Context { return &Context{} }

// Select replaces the current selection. Selecting the same id again keeps it selected.
func (c *Context) Select(id string) {
	c.mu.Lock()
	c.id = id
	c.mu.Unlock()
}

// Clear empties the selection.
func (c *Context) Clear() { c.Select("") }

// Current returns the selected id and whether one is set.
func (c *Context) Current() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id, c.id != ""
}

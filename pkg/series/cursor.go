package series

import "holobrowse/pkg/repository"

// Cursor selects which field is graphed. Moving past either end wraps
// around. Dataset 0's field list is the canonical one.
type Cursor struct {
	index int
	count int
}

// NewCursor creates a cursor at field 0 over the canonical fields of repo
func NewCursor(repo *repository.Repository) *Cursor {
	c := &Cursor{}
	if repo.Len() > 0 {
		c.count = repo.Dataset(0).Metadata.Len()
	}
	return c
}

// Index returns the selected field position
func (c *Cursor) Index() int {
	return c.index
}

// Count returns the number of canonical fields
func (c *Cursor) Count() int {
	return c.count
}

// Next advances to the following field, wrapping to 0 after the last
func (c *Cursor) Next() int {
	if c.count == 0 {
		return c.index
	}
	c.index++
	if c.index >= c.count {
		c.index = 0
	}
	return c.index
}

// Prev moves to the previous field, wrapping to the last after 0
func (c *Cursor) Prev() int {
	if c.count == 0 {
		return c.index
	}
	c.index--
	if c.index < 0 {
		c.index = c.count - 1
	}
	return c.index
}

// Package navigation maps the viewer's depth position to the dataset
// currently in front of them.
package navigation

import "math"

// Resolve returns the index of the dataset in front of a viewer standing at
// depthOffset: floor(depthOffset / depth) - 1, clamped to [0, count-1].
// An empty repository or a flat layout resolves to 0.
func Resolve(depthOffset, depth float64, count int) int {
	if count <= 0 || depth <= 0 {
		return 0
	}
	f := math.Floor(depthOffset/depth) - 1
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > float64(count-1) {
		return count - 1
	}
	return int(f)
}

// Tracker remembers the last resolved dataset so dependent displays are
// refreshed only when it actually changes.
type Tracker struct {
	depth   float64
	count   int
	current int

	// OnChange, when set, is called with the new index after every change
	OnChange func(index int)
}

// NewTracker creates a tracker starting at dataset 0
func NewTracker(depth float64, count int) *Tracker {
	return &Tracker{depth: depth, count: count}
}

// Current returns the last resolved index
func (t *Tracker) Current() int {
	return t.current
}

// Update resolves the dataset for depthOffset and reports whether it differs
// from the previous one. Calling it again with the same offset never reports
// a change.
func (t *Tracker) Update(depthOffset float64) (int, bool) {
	idx := Resolve(depthOffset, t.depth, t.count)
	if idx == t.current {
		return idx, false
	}
	t.current = idx
	if t.OnChange != nil {
		t.OnChange(idx)
	}
	return idx, true
}

// Package measure implements the two-point distance tool.
//
// While the trigger is held the tool follows the pointing ray: the first
// plane crossing becomes the start point and every later frame moves the end
// point. Releasing the trigger stops updates but keeps both points so the last
// measurement stays on screen until the next one begins.
package measure

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"holobrowse/pkg/picking"
)

// Default conversion from normalized panel units back to physical units
const (
	DefaultScale      = 300.0
	DefaultDepthScale = 10.0
)

// Scale converts normalized coordinates to physical units. Depth is scaled by
// XY * Depth, matching how panel depths are normalized at load time.
type Scale struct {
	XY    float64
	Depth float64
}

// DefaultScaleFactors returns the load-time normalization factors
func DefaultScaleFactors() Scale {
	return Scale{XY: DefaultScale, Depth: DefaultDepthScale}
}

// Crosser finds where a ray crosses a panel plane near a viewer's dataset
type Crosser interface {
	Crossing(ray picking.Ray, viewerIndex int) (picking.Hit, bool)
}

// Tool records a start and end point and reports the distance between them
type Tool struct {
	crosser Crosser
	scale   Scale

	active   bool
	hasStart bool
	hasEnd   bool
	start    r3.Vec
	end      r3.Vec
}

// NewTool creates an inactive measurement tool
func NewTool(crosser Crosser, scale Scale) *Tool {
	return &Tool{crosser: crosser, scale: scale}
}

// Begin starts a new measurement from the ray's closest plane crossing.
// Previous points are discarded. If the ray crosses nothing the tool is still
// active and the first crossing found by Update becomes the start point.
func (m *Tool) Begin(ray picking.Ray, viewerIndex int) {
	m.active = true
	m.hasStart = false
	m.hasEnd = false
	m.Update(ray, viewerIndex)
}

// Update moves the end point to the ray's current crossing.
// It does nothing while the tool is inactive or when the ray crosses nothing.
func (m *Tool) Update(ray picking.Ray, viewerIndex int) {
	if !m.active {
		return
	}
	hit, ok := m.crosser.Crossing(ray, viewerIndex)
	if !ok {
		return
	}
	if !m.hasStart {
		m.start = hit.Point
		m.hasStart = true
	}
	m.end = hit.Point
	m.hasEnd = true
}

// Stop ends the measurement, keeping the recorded points
func (m *Tool) Stop() {
	m.active = false
}

// Active reports whether Update calls currently move the end point
func (m *Tool) Active() bool {
	return m.active
}

// Points returns the recorded start and end. ok is false until a start
// point has been recorded.
func (m *Tool) Points() (start, end r3.Vec, ok bool) {
	return m.start, m.end, m.hasStart && m.hasEnd
}

// Distance returns the physical distance between the recorded points,
// or 0 when nothing has been recorded.
func (m *Tool) Distance() float64 {
	if !m.hasStart || !m.hasEnd {
		return 0
	}
	return m.scale.Distance(m.start, m.end)
}

// Distance converts the normalized points to physical units and returns
// the Euclidean distance between them. It is symmetric in a and b.
func (s Scale) Distance(a, b r3.Vec) float64 {
	d := r3.Sub(a, b)
	return math.Sqrt(
		math.Pow(d.X*s.XY, 2) +
			math.Pow(d.Y*s.XY, 2) +
			math.Pow(d.Z*s.XY*s.Depth, 2))
}

// FormatDistance renders a distance with six decimals
func FormatDistance(d float64) string {
	return fmt.Sprintf("%f", d)
}

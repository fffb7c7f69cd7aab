// Package picking finds the panel a pointing ray hits.
//
// Panels are treated as planes of constant depth; a ray is intersected with
// each plane and the hit point tested against the panel rectangle. Only the
// datasets within a fixed depth distance of the viewer are scanned, so the
// cost does not grow with the number of datasets.
package picking

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"holobrowse/internal/models"
	"holobrowse/pkg/layout"
	"holobrowse/pkg/repository"
)

// Default picking limits, in panel coordinate units
const (
	DefaultMaxDistance = 5.0
	DefaultWindowDepth = 10.0
)

// Ray is a pointing ray. Dir need not be unit length; intersection
// parameters are expressed in multiples of Dir.
type Ray struct {
	Origin r3.Vec
	Dir    r3.Vec
}

// NewRay returns a ray from origin toward the given direction, scaled to length.
// A zero direction yields a zero Dir, which never intersects anything.
func NewRay(origin, toward r3.Vec, length float64) Ray {
	n := r3.Norm(toward)
	if n == 0 {
		return Ray{Origin: origin}
	}
	return Ray{Origin: origin, Dir: r3.Scale(length/n, toward)}
}

// At returns the point origin + dir * t
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Dir))
}

// planeT returns the ray parameter at which it crosses the plane z = const.
// A ray parallel to the plane has no crossing.
func (r Ray) planeT(z float64) (float64, bool) {
	if r.Dir.Z == 0 {
		return 0, false
	}
	t := (z - r.Origin.Z) / r.Dir.Z
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, false
	}
	return t, true
}

// Hit describes an accepted intersection
type Hit struct {
	// Ref addresses the panel whose plane was crossed
	Ref models.PanelRef

	// T is the ray parameter of the hit
	T float64

	// Point is the intersection point in world space
	Point r3.Vec

	// Distance is the world-space distance from the ray origin, T * |Dir|
	Distance float64
}

// Picker scans a repository for ray hits
type Picker struct {
	repo   *repository.Repository
	extent r3.Vec

	// MaxDistance bounds the ray parameter; hits at or beyond it are ignored
	MaxDistance float64

	// WindowDepth is the depth distance covered on each side of the viewer's dataset
	WindowDepth float64
}

// NewPicker creates a picker with the default limits
func NewPicker(repo *repository.Repository, extent r3.Vec) *Picker {
	return &Picker{
		repo:        repo,
		extent:      extent,
		MaxDistance: DefaultMaxDistance,
		WindowDepth: DefaultWindowDepth,
	}
}

// Window returns the inclusive range of dataset indices scanned around
// viewerIndex. It is empty (lo > hi) only for an empty repository.
func (p *Picker) Window(viewerIndex int) (lo, hi int) {
	n := p.repo.Len()
	if n == 0 {
		return 0, -1
	}

	// a flat layout puts every dataset at the same depth
	span := n
	if p.extent.Z > 0 {
		r := math.Floor(p.WindowDepth / p.extent.Z)
		if r < float64(n) {
			span = int(r)
		}
	}

	lo = viewerIndex - span
	hi = viewerIndex + span
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}

// Pick returns the closest panel whose rectangle the ray crosses, scanning
// the window around viewerIndex. Among equally close panels the first one
// scanned (lowest dataset, then lowest panel index) wins.
func (p *Picker) Pick(ray Ray, viewerIndex int) (Hit, bool) {
	return p.scan(ray, viewerIndex, true)
}

// Crossing returns the closest crossing of any panel plane in the window,
// without requiring the hit point to lie inside the panel rectangle.
// Measurement uses this so a point can be placed between panels.
func (p *Picker) Crossing(ray Ray, viewerIndex int) (Hit, bool) {
	return p.scan(ray, viewerIndex, false)
}

func (p *Picker) scan(ray Ray, viewerIndex int, needRect bool) (Hit, bool) {
	var best Hit
	found := false
	bestT := p.MaxDistance

	lo, hi := p.Window(viewerIndex)
	for i := lo; i <= hi; i++ {
		panels := p.repo.Panels(i)
		offset := layout.DepthOffset(i, p.extent)
		for j := range panels {
			panel := &panels[j]
			t, ok := ray.planeT(panel.LocalZ() + offset)
			if !ok || t <= 0 || t >= bestT {
				continue
			}
			pt := ray.At(t)
			if needRect && !panel.Contains(pt) {
				continue
			}
			bestT = t
			best = Hit{Ref: models.PanelRef{Dataset: i, Index: j}, T: t, Point: pt}
			found = true
		}
	}

	if found {
		best.Distance = best.T * r3.Norm(ray.Dir)
	}
	return best, found
}

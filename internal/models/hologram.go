package models

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Corner indexes of a Panel, in the order they are stored
const (
	BottomLeft = iota
	BottomRight
	TopRight
	TopLeft
)

// TextureRef identifies the image drawn on a panel. The rendering side owns
// the uploaded texture; the interaction code never looks inside it.
type TextureRef struct {
	// Path is the image file the texture is decoded from
	Path string

	// Handle is assigned by the renderer once the texture is uploaded
	Handle uint32
}

// Panel represents a single image-mapped rectangle (hologram) of a dataset
type Panel struct {
	// Corners are in the dataset's local, depth-normalized space,
	// ordered bottom-left, bottom-right, top-right, top-left.
	// All four share the same Z.
	Corners [4]r3.Vec

	// Texture is the image drawn on the panel
	Texture TextureRef

	// ESD and ESV are the two scalar measurements attached to the panel
	ESD float64
	ESV float64

	// Type is a free-form classification label
	Type string

	// DatasetID is the id of the owning dataset
	DatasetID int
}

// LocalZ returns the depth of the panel plane before the dataset offset is applied
func (p *Panel) LocalZ() float64 {
	return p.Corners[BottomLeft].Z
}

// Rect returns the x/y bounds of the panel, using the bottom-left and
// top-right corners as the opposite-corner pair.
func (p *Panel) Rect() (minX, minY, maxX, maxY float64) {
	a, b := p.Corners[BottomLeft], p.Corners[TopRight]
	return math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Max(a.X, b.X), math.Max(a.Y, b.Y)
}

// Contains reports whether the point's x/y projection falls within the panel rectangle.
// Bounds are inclusive.
func (p *Panel) Contains(pt r3.Vec) bool {
	minX, minY, maxX, maxY := p.Rect()
	return pt.X >= minX && pt.X <= maxX && pt.Y >= minY && pt.Y <= maxY
}

// PanelRef addresses a panel inside a repository by dataset and position.
// It never owns the panel and is only meaningful for the repository it came from.
type PanelRef struct {
	Dataset int
	Index   int
}

// Dataset is one slot along the depth axis: its panels and its metadata
type Dataset struct {
	// Panels holds the dataset's holograms in load order
	Panels []Panel

	// Metadata holds the named scalar values of the dataset, in file order
	Metadata Metadata

	// ID is the 0-based sequence id, equal to the position in the repository
	// and to the dataset's slot along the depth axis
	ID int

	// Label is the display name (source folder name)
	Label string
}

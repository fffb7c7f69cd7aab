package visualization

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"holobrowse/internal/models"
	"holobrowse/pkg/engine"
)

// Label is a block of text lines anchored at a world-space point
type Label struct {
	Lines  []string
	Anchor r3.Vec
}

// Overlay holds the world-space annotations drawn over the panels
type Overlay struct {
	// HoverOutline is a closed line strip around the hovered panel
	HoverOutline []r3.Vec
	HoverLabel   *Label

	// MeasureLine joins the two measurement points
	MeasureLine  []r3.Vec
	MeasureLabel *Label
}

const (
	hoverLabelDrop   = 0.3
	measureLabelDrop = 0.1
)

// BuildOverlay derives the annotations for a frame snapshot
func BuildOverlay(st engine.State) Overlay {
	var ov Overlay

	if h := st.Hover; h != nil {
		ov.HoverOutline = []r3.Vec{
			h.Outline[models.BottomLeft],
			h.Outline[models.BottomRight],
			h.Outline[models.TopRight],
			h.Outline[models.TopLeft],
			h.Outline[models.BottomLeft],
		}
		anchor := h.Outline[models.BottomRight]
		anchor.Y -= hoverLabelDrop
		ov.HoverLabel = &Label{
			Lines:  HoverLines(h.Panel),
			Anchor: anchor,
		}
	}

	// points stay on screen until the next measurement begins
	if m := st.Measurement; m.Valid {
		ov.MeasureLine = []r3.Vec{m.Start, m.End}
		anchor := m.End
		anchor.Y -= measureLabelDrop
		ov.MeasureLabel = &Label{Lines: []string{m.Text}, Anchor: anchor}
	}

	return ov
}

// HoverLines returns the label text shown for a hovered panel
func HoverLines(p models.Panel) []string {
	return []string{
		"Type:  " + p.Type,
		fmt.Sprintf("ESD:  %f", p.ESD),
		fmt.Sprintf("ESV:  %f", p.ESV),
	}
}

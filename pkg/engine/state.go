package engine

import (
	"gonum.org/v1/gonum/spatial/r3"

	"holobrowse/internal/models"
	"holobrowse/pkg/layout"
	"holobrowse/pkg/measure"
)

// Hover describes the panel under the pointing ray
type Hover struct {
	Ref   models.PanelRef
	Panel models.Panel

	// Outline holds the panel corners in world space
	Outline [4]r3.Vec

	// Point is where the ray meets the panel
	Point r3.Vec

	// Distance is the world-space distance from the controller
	Distance float64
}

// Measurement is the measurement tool's display state
type Measurement struct {
	// Active is true while the trigger is held
	Active bool

	// Valid is true once both points have been recorded
	Valid bool

	Start, End r3.Vec
	Distance   float64

	// Text is the formatted distance
	Text string
}

// State is a read-only snapshot of everything the rendering and UI layers
// display. It shares no memory with the engine.
type State struct {
	// Current is the index of the dataset in front of the viewer
	Current int
	Label   string

	// FieldNames and FieldValues are the current dataset's metadata
	FieldNames  []string
	FieldValues []string

	// Field is the graphed field; its name comes from dataset 0 and its
	// value from the current dataset ("" when absent)
	FieldIndex int
	FieldName  string
	FieldValue string

	// Series is the graphed field across all datasets
	Series []float64

	// Hover is nil when the ray hits no panel
	Hover *Hover

	Measurement Measurement

	// Room is the world-to-room transform applied to dataset geometry
	Room Transform

	// Changes counts how many times the current dataset display was refreshed
	Changes int
}

// State returns a snapshot of the current frame
func (e *Engine) State() State {
	st := State{
		Current:     e.tracker.Current(),
		Label:       e.label,
		FieldNames:  append([]string(nil), e.fieldNames...),
		FieldValues: append([]string(nil), e.fieldValues...),
		FieldIndex:  e.cursor.Index(),
		FieldName:   e.fieldName,
		FieldValue:  e.fieldValue,
		Series:      append([]float64(nil), e.series...),
		Room:        e.room,
		Changes:     e.changes,
	}

	if e.hasHover {
		if p, ok := e.repo.Panel(e.hover); ok {
			st.Hover = &Hover{
				Ref:      e.hover,
				Panel:    *p,
				Outline:  layout.WorldCorners(p, e.extent),
				Point:    e.hoverHit.Point,
				Distance: e.hoverHit.Distance,
			}
		}
	}

	start, end, ok := e.tool.Points()
	st.Measurement = Measurement{
		Active: e.tool.Active(),
		Valid:  ok,
		Start:  start,
		End:    end,
	}
	if ok {
		st.Measurement.Distance = e.tool.Distance()
		st.Measurement.Text = measure.FormatDistance(st.Measurement.Distance)
	}
	return st
}

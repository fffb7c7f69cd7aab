// Package engine owns the per-frame interaction state: the room and
// controller transforms, the dataset in front of the viewer, the hovered
// panel, the measurement and the graphed field.
//
// The engine is single-threaded. The host loop calls Handle for every input
// event and Frame once per rendered frame, then reads State.
package engine

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"holobrowse/internal/models"
	"holobrowse/pkg/config"
	"holobrowse/pkg/layout"
	"holobrowse/pkg/measure"
	"holobrowse/pkg/navigation"
	"holobrowse/pkg/picking"
	"holobrowse/pkg/repository"
	"holobrowse/pkg/series"
)

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for dataset changes and transform errors
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine drives navigation, picking and measurement over a repository
type Engine struct {
	repo *repository.Repository
	cfg  *config.Config
	log  *slog.Logger

	extent    r3.Vec
	picker    *picking.Picker
	tracker   *navigation.Tracker
	tool      *measure.Tool
	extractor *series.Extractor
	cursor    *series.Cursor

	// room maps world space to room space; controller is in room space
	room       Transform
	controller Transform
	moveX      float64
	moveY      float64

	hover    models.PanelRef
	hoverHit picking.Hit
	hasHover bool

	// display values, refreshed only when the dataset or field changes
	label       string
	fieldNames  []string
	fieldValues []string
	fieldName   string
	fieldValue  string
	series      []float64
	changes     int
}

// New creates an engine over repo. The depth extent is computed here, once,
// and the viewer is centered on dataset 0.
func New(repo *repository.Repository, cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	e := &Engine{
		repo:       repo,
		cfg:        cfg,
		log:        slog.Default(),
		room:       Identity(),
		controller: Identity(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.extent = layout.ComputeExtent(repo)

	e.picker = picking.NewPicker(repo, e.extent)
	e.picker.MaxDistance = cfg.Picking.MaxDistance
	e.picker.WindowDepth = cfg.Picking.WindowDepth

	e.tracker = navigation.NewTracker(e.extent.Z, repo.Len())
	e.tool = measure.NewTool(e.picker, measure.Scale{XY: cfg.Layout.Scale, Depth: cfg.Layout.DepthScale})
	e.extractor = &series.Extractor{Undefined: cfg.Series.Undefined}
	e.cursor = series.NewCursor(repo)

	e.refreshDataset()
	e.refreshField()
	if repo.Len() > 0 {
		e.CenterOn(0)
	}
	return e
}

// Extent returns the depth layout extent
func (e *Engine) Extent() r3.Vec {
	return e.extent
}

// Handle applies one input event
func (e *Engine) Handle(ev Event) {
	switch ev := ev.(type) {
	case ControllerMoved:
		e.controller = ev.Pose
		e.updateHover()
		if e.tool.Active() {
			e.tool.Update(e.Ray(), e.tracker.Current())
		}
	case TriggerChanged:
		if ev.Pressed {
			e.tool.Begin(e.Ray(), e.tracker.Current())
		} else {
			e.tool.Stop()
		}
	case JoystickMoved:
		switch ev.Axis {
		case AxisX:
			e.moveX = ev.Value
		case AxisY:
			e.moveY = ev.Value
		}
	case DatasetSelected:
		if e.repo.Len() > 0 {
			e.CenterOn(e.repo.Clamp(ev.Index))
		}
	case FieldNext:
		e.cursor.Next()
		e.refreshField()
	case FieldPrev:
		e.cursor.Prev()
		e.refreshField()
	}
}

// Frame advances one frame: applies joystick movement, resolves the current
// dataset and refreshes the hover panel and the measurement.
func (e *Engine) Frame() {
	nav := e.cfg.Navigation
	if math.Abs(e.moveX) > nav.DeadZone || math.Abs(e.moveY) > nav.DeadZone {
		offset := e.controller.Vector(r3.Vec{Z: e.moveY * nav.Speed})
		room := Translation(offset).Mul(e.room)
		e.setRoom(RotationY(e.moveX / nav.TurnDivisor).Mul(room))
	}

	e.resolve()
	e.updateHover()
	if e.tool.Active() {
		e.tool.Update(e.Ray(), e.tracker.Current())
	}
}

// CenterOn moves the room so that dataset i sits in front of the viewer,
// then resolves the current dataset immediately. It panics if i is out of range.
func (e *Engine) CenterOn(i int) {
	ds := e.repo.Dataset(i)
	c := layout.Centroid(ds)
	c.Z += layout.DepthOffset(ds.ID, e.extent)
	e.setRoom(Translation(r3.Scale(-1, c)))
	e.resolve()
}

// ViewerDepth returns the viewer's position along the depth axis in world space
func (e *Engine) ViewerDepth() float64 {
	return e.roomInverse().Position().Z
}

// Ray returns the controller's pointing ray in world space
func (e *Engine) Ray() picking.Ray {
	m := e.roomInverse().Mul(e.controller)
	return picking.Ray{
		Origin: m.Point(r3.Vec{}),
		Dir:    m.Vector(r3.Vec{Z: -e.cfg.Picking.RayLength}),
	}
}

// Room returns the world-to-room transform
func (e *Engine) Room() Transform {
	return e.room
}

// setRoom replaces the room transform. A transform without an inverse is
// rejected and the room is reset to identity.
func (e *Engine) setRoom(t Transform) {
	if _, err := t.Inverse(); err != nil {
		e.log.Warn("room transform is singular, resetting", "error", err)
		t = Identity()
	}
	e.room = t
}

// roomInverse maps room space to world space. setRoom keeps the room
// invertible; identity stands in should that ever fail.
func (e *Engine) roomInverse() Transform {
	inv, err := e.room.Inverse()
	if err != nil {
		return Identity()
	}
	return inv
}

func (e *Engine) resolve() {
	if _, changed := e.tracker.Update(e.ViewerDepth()); changed {
		e.refreshDataset()
	}
}

func (e *Engine) updateHover() {
	hit, ok := e.picker.Pick(e.Ray(), e.tracker.Current())
	e.hasHover = ok
	e.hoverHit = hit
	e.hover = hit.Ref
}

func (e *Engine) refreshDataset() {
	e.changes++
	if e.repo.Len() == 0 {
		return
	}
	cur := e.tracker.Current()
	ds := e.repo.Dataset(cur)
	e.label = ds.Label
	e.fieldNames, e.fieldValues = e.repo.Metadata(cur)
	e.fieldValue = ds.Metadata.Value(e.cursor.Index())
	e.log.Debug("current dataset changed", "index", cur, "label", ds.Label)
}

func (e *Engine) refreshField() {
	if e.repo.Len() == 0 {
		e.series = nil
		return
	}
	field := e.cursor.Index()
	e.fieldName = e.repo.Dataset(0).Metadata.Name(field)
	e.fieldValue = e.repo.Dataset(e.tracker.Current()).Metadata.Value(field)
	e.series = e.extractor.Extract(e.repo, field)
}

package engine

import (
	"errors"
	"fmt"

	"holobrowse/pkg/config"
)

// ErrUnknownEvent indicates a device event name without a binding
var ErrUnknownEvent = errors.New("unknown event")

// Event is one input delivered to the engine. The set of events is closed:
// only the types in this file implement it.
type Event interface {
	event()
}

// Axis identifies a joystick axis
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// ControllerMoved carries a new pose of the pointing controller
type ControllerMoved struct {
	Pose Transform
}

// TriggerChanged reports the measurement trigger being pressed or released
type TriggerChanged struct {
	Pressed bool
}

// JoystickMoved carries an analog value in [-1, 1] for one axis
type JoystickMoved struct {
	Axis  Axis
	Value float64
}

// DatasetSelected is fired when a dataset is picked on the graph
type DatasetSelected struct {
	Index int
}

// FieldNext advances the graphed field
type FieldNext struct{}

// FieldPrev moves the graphed field back
type FieldPrev struct{}

func (ControllerMoved) event() {}
func (TriggerChanged) event()  {}
func (JoystickMoved) event()   {}
func (DatasetSelected) event() {}
func (FieldNext) event()       {}
func (FieldPrev) event()       {}

// RawEvent is a named device event as delivered by the device layer
type RawEvent struct {
	Name string

	// Pose holds 16 column-major values for pose events
	Pose []float64

	// Value holds the analog value for analog and touchpad events
	Value float64
}

// Decoder translates named device events into engine events
type Decoder struct {
	bindings config.Bindings
}

// NewDecoder creates a decoder for the given bindings
func NewDecoder(b config.Bindings) *Decoder {
	return &Decoder{bindings: b}
}

// Decode returns the engine events for a raw device event. An unbound name
// returns ErrUnknownEvent.
func (d *Decoder) Decode(raw RawEvent) ([]Event, error) {
	if raw.Name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownEvent)
	}
	b := d.bindings
	switch raw.Name {
	case b.ControllerPose:
		if len(raw.Pose) != 16 {
			return nil, fmt.Errorf("pose event %s has %d values, want 16", raw.Name, len(raw.Pose))
		}
		var t Transform
		copy(t[:], raw.Pose)
		return []Event{ControllerMoved{Pose: t}}, nil
	case b.TriggerPressed:
		return []Event{TriggerChanged{Pressed: true}}, nil
	case b.TriggerReleased:
		return []Event{TriggerChanged{Pressed: false}}, nil
	case b.JoystickX:
		return []Event{JoystickMoved{Axis: AxisX, Value: raw.Value}}, nil
	case b.JoystickY:
		return []Event{JoystickMoved{Axis: AxisY, Value: raw.Value}}, nil
	case b.TouchpadPressed:
		// the touchpad only drives forward motion
		return []Event{
			JoystickMoved{Axis: AxisX, Value: 0},
			JoystickMoved{Axis: AxisY, Value: raw.Value},
		}, nil
	case b.TouchpadReleased:
		return []Event{
			JoystickMoved{Axis: AxisX, Value: 0},
			JoystickMoved{Axis: AxisY, Value: 0},
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, raw.Name)
}

package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"holobrowse/pkg/config"
)

func TestDecode(t *testing.T) {
	d := NewDecoder(config.DefaultConfig().Bindings)

	pose := Translation(r3.Vec{X: 1, Y: 2, Z: 3})
	evs, err := d.Decode(RawEvent{Name: "HTC_Controller_1", Pose: pose[:]})
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, ControllerMoved{Pose: pose}, evs[0])

	evs, err = d.Decode(RawEvent{Name: "HTC_Controller_1_Axis1Button_Pressed"})
	require.NoError(t, err)
	assert.Equal(t, []Event{TriggerChanged{Pressed: true}}, evs)

	evs, err = d.Decode(RawEvent{Name: "Wand_Joystick_X_Change", Value: 0.5})
	require.NoError(t, err)
	assert.Equal(t, []Event{JoystickMoved{Axis: AxisX, Value: 0.5}}, evs)

	evs, err = d.Decode(RawEvent{Name: "HTC_Controller_1_Axis0Button_Pressed", Value: -0.7})
	require.NoError(t, err)
	assert.Equal(t, []Event{
		JoystickMoved{Axis: AxisX, Value: 0},
		JoystickMoved{Axis: AxisY, Value: -0.7},
	}, evs)
}

func TestDecodeErrors(t *testing.T) {
	d := NewDecoder(config.DefaultConfig().Bindings)

	_, err := d.Decode(RawEvent{Name: "KbdEsc_Down"})
	assert.True(t, errors.Is(err, ErrUnknownEvent))

	_, err = d.Decode(RawEvent{})
	assert.True(t, errors.Is(err, ErrUnknownEvent))

	_, err = d.Decode(RawEvent{Name: "HTC_Controller_1", Pose: []float64{1, 2}})
	assert.Error(t, err)
}

func TestTransform(t *testing.T) {
	tr := Translation(r3.Vec{X: 1, Y: -2, Z: 3})

	assert.Equal(t, r3.Vec{X: 1, Y: -2, Z: 3}, tr.Point(r3.Vec{}))
	assert.Equal(t, r3.Vec{Z: 1}, tr.Vector(r3.Vec{Z: 1}), "directions ignore translation")

	inv, err := tr.Inverse()
	require.NoError(t, err)
	assert.InDelta(t, 0.0, r3.Norm(r3.Add(inv.Position(), r3.Vec{X: 1, Y: -2, Z: 3})), 1e-12)

	rot := RotationY(math.Pi / 2)
	got := rot.Vector(r3.Vec{Z: 1})
	assert.InDelta(t, 0.0, r3.Norm(r3.Sub(got, r3.Vec{X: 1})), 1e-12)

	round := rot.Mul(tr)
	back, err := round.Inverse()
	require.NoError(t, err)
	p := r3.Vec{X: 0.3, Y: 0.4, Z: -2}
	assert.InDelta(t, 0.0, r3.Norm(r3.Sub(back.Point(round.Point(p)), p)), 1e-9)

	_, err = Transform{}.Inverse()
	assert.Error(t, err)
}

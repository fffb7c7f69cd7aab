package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"holobrowse/internal/models"
	"holobrowse/pkg/config"
	"holobrowse/pkg/navigation"
	"holobrowse/pkg/repository"
	"holobrowse/pkg/series"
)

func rectPanel(id int, x0, y0, x1, y1, z float64) models.Panel {
	return models.Panel{
		DatasetID: id,
		Type:      "Diatom",
		Corners: [4]r3.Vec{
			{X: x0, Y: y0, Z: z},
			{X: x1, Y: y0, Z: z},
			{X: x1, Y: y1, Z: z},
			{X: x0, Y: y1, Z: z},
		},
	}
}

// testRepo builds three datasets, each with a panel A at local z 0 spanning
// [-1,1]^2 and a panel B at local z 2 spanning [2,3]^2. The extent is (4,4,2)
// and every dataset's centroid is (1.25, 1.25, 1).
func testRepo(t *testing.T) *repository.Repository {
	t.Helper()
	fields := [][][2]string{
		{{"temp", "10"}, {"sal", "35"}, {"depth", "1"}},
		{{"temp", "11"}, {"sal", "bad"}},
		{{"temp", "12"}},
	}
	datasets := make([]models.Dataset, 3)
	for i := range datasets {
		var md models.Metadata
		for _, kv := range fields[i] {
			md.Add(kv[0], kv[1])
		}
		datasets[i] = models.Dataset{
			ID:       i,
			Label:    []string{"s0", "s1", "s2"}[i],
			Metadata: md,
			Panels: []models.Panel{
				rectPanel(i, -1, -1, 1, 1, 0),
				rectPanel(i, 2, 2, 3, 3, 2),
			},
		}
	}
	repo, err := repository.New(datasets)
	require.NoError(t, err)
	return repo
}

// roomPose places the controller at a room-space position pointing down -z
func roomPose(x, y, z float64) Event {
	return ControllerMoved{Pose: Translation(r3.Vec{X: x, Y: y, Z: z})}
}

func TestNewCentersOnFirstDataset(t *testing.T) {
	e := New(testRepo(t), nil)

	assert.Equal(t, r3.Vec{X: 4, Y: 4, Z: 2}, e.Extent())
	assert.InDelta(t, 1.0, e.ViewerDepth(), 1e-12)

	st := e.State()
	assert.Equal(t, 0, st.Current)
	assert.Equal(t, "s0", st.Label)
	assert.Equal(t, []string{"temp", "sal", "depth"}, st.FieldNames)
	assert.Equal(t, "temp", st.FieldName)
	assert.Equal(t, "10", st.FieldValue)
	assert.Equal(t, []float64{10, 11, 12}, st.Series)
	assert.Nil(t, st.Hover)
	assert.Equal(t, 1, st.Changes)
}

func TestHoverPicksNearestPanel(t *testing.T) {
	e := New(testRepo(t), nil)

	// world origin (0, 0, 6), pointer (0, 0, -5)
	e.Handle(roomPose(-1.25, -1.25, 5))
	st := e.State()
	require.NotNil(t, st.Hover)
	assert.Equal(t, models.PanelRef{Dataset: 2, Index: 0}, st.Hover.Ref)
	assert.InDelta(t, 2.0, st.Hover.Distance, 1e-9)
	for _, c := range st.Hover.Outline {
		assert.InDelta(t, 4.0, c.Z, 1e-12)
	}
	assert.Equal(t, "Diatom", st.Hover.Panel.Type)

	// nothing under the ray
	e.Handle(roomPose(10, 10, 5))
	assert.Nil(t, e.State().Hover)
}

func TestMeasurement(t *testing.T) {
	e := New(testRepo(t), nil)

	e.Handle(roomPose(-1.25, -1.25, 5))
	e.Handle(TriggerChanged{Pressed: true})
	e.Handle(roomPose(-0.25, -1.25, 5))

	m := e.State().Measurement
	require.True(t, m.Active)
	require.True(t, m.Valid)
	assert.InDelta(t, 0.0, r3.Norm(r3.Sub(m.Start, r3.Vec{Z: 4})), 1e-9)
	assert.InDelta(t, 0.0, r3.Norm(r3.Sub(m.End, r3.Vec{X: 1, Z: 4})), 1e-9)
	assert.InDelta(t, 300.0, m.Distance, 1e-6)
	assert.Equal(t, "300.000000", m.Text)

	e.Handle(TriggerChanged{Pressed: false})
	e.Handle(roomPose(5, 5, 5))
	m = e.State().Measurement
	assert.False(t, m.Active)
	assert.True(t, m.Valid, "released measurement keeps its points")
	assert.InDelta(t, 300.0, m.Distance, 1e-6)
}

func TestMovementResolvesDatasets(t *testing.T) {
	e := New(testRepo(t), nil)

	e.Handle(JoystickMoved{Axis: AxisY, Value: -3})

	e.Frame()
	st := e.State()
	assert.InDelta(t, 4.0, e.ViewerDepth(), 1e-9)
	assert.Equal(t, 1, st.Current)
	assert.Equal(t, "s1", st.Label)
	assert.Equal(t, 2, st.Changes)

	e.Frame()
	st = e.State()
	assert.Equal(t, 2, st.Current)
	assert.Equal(t, "12", st.FieldValue)
	assert.Equal(t, []string{"temp"}, st.FieldNames)
	assert.Equal(t, 3, st.Changes)

	// clamped at the last dataset, no further change
	e.Frame()
	assert.Equal(t, 3, e.State().Changes)

	// stopping the joystick keeps everything where it is
	e.Handle(JoystickMoved{Axis: AxisY, Value: 0.05})
	e.Frame()
	e.Frame()
	assert.InDelta(t, 10.0, e.ViewerDepth(), 1e-9)
	assert.Equal(t, 3, e.State().Changes)
}

func TestTurnRotatesRoom(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Navigation.TurnDivisor = 1
	e := New(testRepo(t), cfg)

	e.Handle(JoystickMoved{Axis: AxisX, Value: math.Pi / 2})
	e.Frame()

	// a quarter turn maps the world x axis onto room -z
	got := e.Room().Vector(r3.Vec{X: 1})
	assert.InDelta(t, 0.0, r3.Norm(r3.Sub(got, r3.Vec{Z: -1})), 1e-9)
}

func TestFieldNavigation(t *testing.T) {
	e := New(testRepo(t), nil)
	undef := config.DefaultConfig().Series.Undefined

	e.Handle(FieldNext{})
	st := e.State()
	assert.Equal(t, 1, st.FieldIndex)
	assert.Equal(t, "sal", st.FieldName)
	assert.Equal(t, "35", st.FieldValue)
	assert.Equal(t, []float64{35, undef, undef}, st.Series)

	e.Handle(FieldNext{})
	e.Handle(FieldNext{})
	assert.Equal(t, 0, e.State().FieldIndex)

	e.Handle(FieldPrev{})
	st = e.State()
	assert.Equal(t, 2, st.FieldIndex)
	assert.Equal(t, "depth", st.FieldName)
	assert.Len(t, st.Series, 3)
}

func TestDatasetSelected(t *testing.T) {
	e := New(testRepo(t), nil)

	e.Handle(DatasetSelected{Index: 2})
	assert.InDelta(t, 5.0, e.ViewerDepth(), 1e-9)
	assert.Equal(t, navigation.Resolve(5, 2, 3), e.State().Current)

	// out of range selections are clamped
	e.Handle(DatasetSelected{Index: 99})
	assert.InDelta(t, 5.0, e.ViewerDepth(), 1e-9)
}

func TestEmptyRepository(t *testing.T) {
	repo, err := repository.New(nil)
	require.NoError(t, err)

	e := New(repo, nil)
	e.Handle(roomPose(0, 0, 1))
	e.Handle(TriggerChanged{Pressed: true})
	e.Handle(FieldNext{})
	e.Handle(DatasetSelected{Index: 3})
	e.Frame()

	st := e.State()
	assert.Equal(t, 0, st.Current)
	assert.Equal(t, r3.Vec{}, e.Extent())
	assert.Empty(t, st.Series)
	assert.Nil(t, st.Hover)
	assert.False(t, st.Measurement.Valid)
}

func TestStateIsACopy(t *testing.T) {
	e := New(testRepo(t), nil)
	st := e.State()
	st.Series[0] = series.Undefined
	st.FieldNames[0] = "changed"

	again := e.State()
	assert.Equal(t, 10.0, again.Series[0])
	assert.Equal(t, "temp", again.FieldNames[0])
}

func TestSingularRoom(t *testing.T) {
	e := New(testRepo(t), nil)

	// reads never touch the room, even when it cannot be inverted
	e.room = Transform{}
	assert.InDelta(t, 0.0, e.ViewerDepth(), 1e-12)
	_ = e.Ray()
	_ = e.State()
	assert.Equal(t, Transform{}, e.Room())

	// writes reject it
	e.setRoom(Transform{})
	assert.Equal(t, Identity(), e.Room())

	e.setRoom(Translation(r3.Vec{Z: -3}))
	assert.InDelta(t, 3.0, e.ViewerDepth(), 1e-12)
}

package engine

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-xmas/engine/geometry"
	"github.com/Carmen-Shannon/oxy-xmas/engine/input"
	"github.com/Carmen-Shannon/oxy-xmas/engine/mesh"
	"github.com/Carmen-Shannon/oxy-xmas/engine/model"
	"github.com/Carmen-Shannon/oxy-xmas/engine/particle"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-xmas/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHeadlessScene(t *testing.T, name string, options ...scene.SceneBuilderOption) (scene.Scene, *renderer.HeadlessBackend) {
	t.Helper()
	backend := renderer.NewHeadlessBackend()
	r := renderer.NewRenderer(backend, renderer.WithSurfaceSize(800, 600))
	s, err := scene.NewScene(name, r, append([]scene.SceneBuilderOption{scene.WithComputeWorkers(1)}, options...)...)
	require.NoError(t, err)
	t.Cleanup(s.Release)

	v, i := geometry.GroundQuad(-5, 10)
	m, err := s.NewMesh(v, i, 1, mesh.WithLabel(name+" ground"))
	require.NoError(t, err)
	d, err := model.NewMultiMesh("ground", []model.Placement{{Mesh: m, Instance: mesh.Instance{Model: mgl32.Ident4()}}})
	require.NoError(t, err)
	s.AddDrawable(d)
	return s, backend
}

func TestStepAppliesInputThenDraws(t *testing.T) {
	s, backend := newHeadlessScene(t, "main")
	e := NewEngine(WithScene(0, s))

	before := s.Camera().Orbit()
	e.Input().Push(input.Rotate(0.25, -0.1))
	e.Input().Push(input.Resize(1000, 500))

	require.NoError(t, e.Step())
	after := s.Camera().Orbit()
	assert.InDelta(t, before.Azimuth+0.25, after.Azimuth, 1e-6)
	assert.InDelta(t, before.Elevation-0.1, after.Elevation, 1e-6)
	assert.Equal(t, float32(2), s.Camera().Aspect())

	w, h := backend.SurfaceSize()
	assert.Equal(t, [2]int{1000, 500}, [2]int{w, h})
	assert.Equal(t, 1, backend.Frames())
	assert.Len(t, backend.Draws(), 1)
	assert.Equal(t, 1, e.Frames())
}

func TestStepSkipsInactiveScenesAndOrdersByKey(t *testing.T) {
	back, backBackend := newHeadlessScene(t, "back")
	front, frontBackend := newHeadlessScene(t, "front")
	hidden, hiddenBackend := newHeadlessScene(t, "hidden", scene.WithActive(false))

	e := NewEngine(WithScene(2, front), WithScene(1, back), WithScene(0, hidden))
	var order []string
	e.SetTickCallback(func(float32) {
		order = append(order, "tick")
	})
	e.Input().Push(input.Rotate(1, 0))

	require.NoError(t, e.Step())
	assert.Equal(t, 1, backBackend.Frames())
	assert.Equal(t, 1, frontBackend.Frames())
	assert.Zero(t, hiddenBackend.Frames())
	assert.Equal(t, []string{"tick"}, order)

	assert.Equal(t, back.Camera().Orbit().Azimuth, front.Camera().Orbit().Azimuth, "input reaches every active scene")
	assert.NotEqual(t, back.Camera().Orbit().Azimuth, hidden.Camera().Orbit().Azimuth)
}

func TestStepReportsDrawErrorsAndKeepsGoing(t *testing.T) {
	broken, brokenBackend := newHeadlessScene(t, "broken")
	v, i := geometry.GroundQuad(0, 1)
	m, err := broken.NewMesh(v, i, 1, mesh.WithPipelineKey("missing"))
	require.NoError(t, err)
	d, err := model.NewMultiMesh("orphan", []model.Placement{{Mesh: m, Instance: mesh.Instance{Model: mgl32.Ident4()}}})
	require.NoError(t, err)
	broken.AddDrawable(d)

	ok, okBackend := newHeadlessScene(t, "ok")
	e := NewEngine(WithScene(0, broken), WithScene(1, ok))

	assert.ErrorIs(t, e.Step(), renderer.ErrUnknownPipeline)
	assert.Equal(t, 1, brokenBackend.Frames())
	assert.Equal(t, 1, okBackend.Frames())
}

func TestStepSkipsDrawWhenAdvanceFails(t *testing.T) {
	broken, brokenBackend := newHeadlessScene(t, "broken")
	flake, flakeIndices := geometry.Snowflake(0.05)
	m, err := broken.NewMesh(flake, flakeIndices, 4, mesh.WithLabel("snow"))
	require.NoError(t, err)
	snow, err := particle.NewSnow(m, material.Handle(0), particle.WithCount(4), particle.WithWorkerPool(broken.WorkerPool(), 2))
	require.NoError(t, err)
	broken.AddDrawable(model.NewParticleField(snow))
	m.Release()

	ok, okBackend := newHeadlessScene(t, "ok")
	e := NewEngine(WithScene(0, broken), WithScene(1, ok))

	err = e.Step()
	assert.ErrorIs(t, err, renderer.ErrBufferBounds)
	assert.Zero(t, brokenBackend.Frames(), "a scene that failed to update is not drawn")
	assert.Empty(t, brokenBackend.Draws())
	assert.Equal(t, 1, okBackend.Frames())
	assert.Equal(t, 1, e.Frames())
}

func TestHeadlessRunStopsAtMaxFrames(t *testing.T) {
	s, backend := newHeadlessScene(t, "main")
	e := NewEngine(WithScene(0, s), WithMaxFrames(3), WithProfiling(true))
	e.Run()
	assert.Equal(t, 3, e.Frames())
	assert.Equal(t, 3, backend.Frames())
}

func TestQuitStopsRun(t *testing.T) {
	s, _ := newHeadlessScene(t, "main")
	e := NewEngine(WithScene(0, s))
	e.SetTickCallback(func(float32) {
		if e.Frames() == 4 {
			e.Quit()
		}
	})
	e.Run()
	assert.Equal(t, 5, e.Frames())
	e.Quit()
}

func TestSharedQueueAndSceneRegistry(t *testing.T) {
	q := input.NewQueue()
	s, _ := newHeadlessScene(t, "main")
	e := NewEngine(WithInputQueue(q))
	assert.Same(t, q, e.Input())
	assert.Nil(t, e.Window())

	e.AddScene(3, s)
	assert.Equal(t, s, e.Scene(3))
	assert.Len(t, e.Scenes(), 1)
	e.RemoveScene(3)
	assert.Nil(t, e.Scene(3))

	require.NoError(t, e.Step(), "an engine without scenes still steps")
}

func TestFrameDuration(t *testing.T) {
	assert.Zero(t, frameDuration(0))
	assert.Equal(t, int64(16666666), int64(frameDuration(60)))
}

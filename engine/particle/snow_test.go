package particle

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/engine/geometry"
	"github.com/Carmen-Shannon/oxy-xmas/engine/mesh"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/pipeline"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlakeMesh(t *testing.T, maxInstances int) (mesh.Mesh, renderer.Renderer, *renderer.HeadlessBackend) {
	t.Helper()
	backend := renderer.NewHeadlessBackend()
	r := renderer.NewRenderer(backend)
	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline(mesh.DefaultPipelineKey)))

	v, i := geometry.Snowflake(0.05)
	m, err := mesh.NewMesh(r, v, i, maxInstances, mesh.WithLabel("snowflake"))
	require.NoError(t, err)
	t.Cleanup(m.Release)
	return m, r, backend
}

func newTestSnow(t *testing.T, count int, options ...SnowBuilderOption) (Snow, renderer.Renderer, *renderer.HeadlessBackend) {
	t.Helper()
	m, r, backend := newFlakeMesh(t, count)
	options = append([]SnowBuilderOption{WithCount(count), WithSeed(1, 2)}, options...)
	s, err := NewSnow(m, 3, options...)
	require.NoError(t, err)
	t.Cleanup(s.Release)
	return s, r, backend
}

func TestSpawnInsideBounds(t *testing.T) {
	s, _, _ := newTestSnow(t, 1000)
	b := s.Bounds()

	flakes := s.Flakes()
	require.Len(t, flakes, 1000)
	for _, f := range flakes {
		for axis := range 3 {
			assert.GreaterOrEqual(t, f.Position[axis], b.Min[axis])
			assert.Less(t, f.Position[axis], b.Max[axis])
			assert.GreaterOrEqual(t, f.Rotation[axis], float32(0))
			assert.Less(t, f.Rotation[axis], float32(2*3.1416))
		}
	}
}

func TestStepMovesWithinJitterAndFalls(t *testing.T) {
	s, _, _ := newTestSnow(t, 500)
	before := s.Flakes()
	s.Step()
	after := s.Flakes()

	const eps = 1e-5
	for i := range before {
		dx := after[i].Position[0] - before[i].Position[0]
		dy := after[i].Position[1] - before[i].Position[1]
		dz := after[i].Position[2] - before[i].Position[2]
		if after[i].Position[1] == s.Bounds().Max[1] {
			continue
		}
		assert.LessOrEqual(t, abs(dx), DefaultJitter+eps)
		assert.LessOrEqual(t, abs(dz), DefaultJitter+eps)
		assert.GreaterOrEqual(t, dy, -DefaultJitter-DefaultFallSpeed-eps)
		assert.LessOrEqual(t, dy, DefaultJitter-DefaultFallSpeed+eps)
		for axis := range 3 {
			assert.LessOrEqual(t, abs(after[i].Rotation[axis]-before[i].Rotation[axis]), DefaultSpin+eps)
		}
	}
}

func TestStepWrapsToTopWithoutResettingOtherState(t *testing.T) {
	bounds := Bounds{Min: mgl32.Vec3{-1, 0, -1}, Max: mgl32.Vec3{1, 0.001, 1}}
	s, _, _ := newTestSnow(t, 50, WithBounds(bounds), WithFallSpeed(1))
	before := s.Flakes()
	s.Step()
	after := s.Flakes()

	for i := range before {
		assert.Equal(t, bounds.Max[1], after[i].Position[1], "flake %d wraps to the top", i)
		assert.InDelta(t, before[i].Position[0], after[i].Position[0], float64(DefaultJitter)+1e-5)
		assert.NotEqual(t, before[i].Rotation, mgl32.Vec3{})
	}
}

func TestSeedIsReproducible(t *testing.T) {
	a, _, _ := newTestSnow(t, 100)
	b, _, _ := newTestSnow(t, 100)
	a.Step()
	b.Step()
	assert.Equal(t, a.Flakes(), b.Flakes())
}

func TestInstancesUseTranslateRotateAndSharedMaterial(t *testing.T) {
	s, _, _ := newTestSnow(t, 20)
	flakes := s.Flakes()
	instances := s.Instances()
	require.Len(t, instances, len(flakes))
	for i, f := range flakes {
		assert.Equal(t, common.TranslateRotate(f.Position, f.Rotation), instances[i].Model)
		assert.Equal(t, float32(3), instances[i].Material)
	}
}

func TestAdvanceFrameRewritesWholeInstanceBuffer(t *testing.T) {
	pool := worker.NewDynamicWorkerPool(4, 64, time.Second)
	t.Cleanup(pool.Stop)
	s, _, backend := newTestSnow(t, 1200, WithWorkerPool(pool, 100))
	backend.ResetWrites()

	require.NoError(t, s.AdvanceFrame())

	writes := backend.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, uint64(0), writes[0].Offset)
	assert.Equal(t, 1200*mesh.InstanceSize, writes[0].Len)

	data := backend.Contents(s.Mesh().Provider().InstanceBuffer())
	want := mesh.MarshalInstances(s.Instances(), 1200)
	assert.Equal(t, want, data)
}

func TestDrawIssuesOneInstancedDraw(t *testing.T) {
	s, r, backend := newTestSnow(t, 64)

	require.NoError(t, r.BeginFrame())
	require.NoError(t, s.Draw())
	require.NoError(t, r.EndFrame())

	draws := backend.Draws()
	require.Len(t, draws, 1)
	assert.True(t, draws[0].Instanced)
	assert.Equal(t, uint32(64), draws[0].InstanceCount)
	assert.Equal(t, "snowflake", draws[0].MeshLabel)
}

func TestNewSnowValidation(t *testing.T) {
	m, _, _ := newFlakeMesh(t, 10)

	_, err := NewSnow(m, 0, WithCount(11))
	assert.ErrorIs(t, err, mesh.ErrTooManyInstances)

	_, err = NewSnow(m, 0, WithCount(5), WithBounds(Bounds{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 0, 1}}))
	assert.ErrorIs(t, err, ErrInvalidBounds)
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

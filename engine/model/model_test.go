package model

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-xmas/engine/geometry"
	"github.com/Carmen-Shannon/oxy-xmas/engine/mesh"
	"github.com/Carmen-Shannon/oxy-xmas/engine/particle"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/pipeline"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) (renderer.Renderer, *renderer.HeadlessBackend) {
	t.Helper()
	backend := renderer.NewHeadlessBackend()
	r := renderer.NewRenderer(backend)
	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline(mesh.DefaultPipelineKey)))
	return r, backend
}

func newGroundMesh(t *testing.T, r renderer.Renderer, label string, maxInstances int) mesh.Mesh {
	t.Helper()
	v, i := geometry.GroundQuad(0, 1)
	m, err := mesh.NewMesh(r, v, i, maxInstances, mesh.WithLabel(label))
	require.NoError(t, err)
	return m
}

func TestStaticInstancesUploadsOnceAndDrawsInstanced(t *testing.T) {
	r, backend := newTestRenderer(t)
	m := newGroundMesh(t, r, "baubles", 4)
	backend.ResetWrites()

	d, err := NewStaticInstances(m, []mesh.Instance{
		{Model: mgl32.Translate3D(1, 0, 0), Material: 1},
		{Model: mgl32.Translate3D(2, 0, 0), Material: 2},
	})
	require.NoError(t, err)
	defer d.Release()

	assert.Equal(t, KindStaticInstances, d.Kind())
	assert.Equal(t, "baubles", d.Name())
	require.Len(t, backend.Writes(), 1)

	backend.ResetWrites()
	require.NoError(t, d.AdvanceFrame())
	assert.Empty(t, backend.Writes())

	require.NoError(t, r.BeginFrame())
	require.NoError(t, d.Draw())
	require.NoError(t, r.EndFrame())

	assert.Equal(t, []renderer.DrawRecord{
		{PipelineKey: mesh.DefaultPipelineKey, MeshLabel: "baubles", IndexCount: m.IndexCount(), InstanceCount: 2, Instanced: true},
	}, backend.Draws())
}

func TestStaticInstancesRejectsOverflow(t *testing.T) {
	r, _ := newTestRenderer(t)
	m := newGroundMesh(t, r, "small", 1)
	defer m.Release()

	_, err := NewStaticInstances(m, make([]mesh.Instance, 2))
	assert.ErrorIs(t, err, mesh.ErrTooManyInstances)
}

func TestMultiMeshDrawsEachPartOnce(t *testing.T) {
	r, backend := newTestRenderer(t)
	trunk := newGroundMesh(t, r, "trunk", 1)
	foliage := newGroundMesh(t, r, "foliage", 1)
	scale := mgl32.Scale3D(1.8, 1, 1.8)

	d, err := NewMultiMesh("tree", []Placement{
		{Mesh: trunk, Instance: mesh.Instance{Model: scale, Material: 0}},
		{Mesh: foliage, Instance: mesh.Instance{Model: scale, Material: 1}},
	})
	require.NoError(t, err)
	defer d.Release()

	assert.Equal(t, KindMultiMesh, d.Kind())
	assert.Equal(t, mesh.MarshalInstances([]mesh.Instance{{Model: scale, Material: 1}}, 1),
		backend.Contents(foliage.Provider().InstanceBuffer()))

	require.NoError(t, r.BeginFrame())
	require.NoError(t, d.Draw())
	require.NoError(t, r.EndFrame())

	draws := backend.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, "trunk", draws[0].MeshLabel)
	assert.Equal(t, "foliage", draws[1].MeshLabel)
	for _, draw := range draws {
		assert.False(t, draw.Instanced)
		assert.Equal(t, uint32(1), draw.InstanceCount)
	}
}

func TestMultiMeshNeedsParts(t *testing.T) {
	_, err := NewMultiMesh("empty", nil)
	assert.ErrorIs(t, err, ErrNoParts)
}

func TestParticleFieldAdvancesEveryFrame(t *testing.T) {
	r, backend := newTestRenderer(t)
	v, i := geometry.Snowflake(0.05)
	m, err := mesh.NewMesh(r, v, i, 16, mesh.WithLabel("snow"))
	require.NoError(t, err)

	snow, err := particle.NewSnow(m, 0, particle.WithCount(16), particle.WithSeed(7, 7))
	require.NoError(t, err)
	d := NewParticleField(snow, WithName("snowfall"))
	defer d.Release()

	assert.Equal(t, KindParticleField, d.Kind())
	assert.Equal(t, "snowfall", d.Name())

	backend.ResetWrites()
	require.NoError(t, d.AdvanceFrame())
	require.NoError(t, d.AdvanceFrame())
	assert.Len(t, backend.Writes(), 2)

	require.NoError(t, r.BeginFrame())
	require.NoError(t, d.Draw())
	require.NoError(t, r.EndFrame())
	draws := backend.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, uint32(16), draws[0].InstanceCount)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "StaticInstances", KindStaticInstances.String())
	assert.Equal(t, "ParticleField", KindParticleField.String())
	assert.Equal(t, "MultiMesh", KindMultiMesh.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

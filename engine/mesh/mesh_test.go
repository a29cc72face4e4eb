package mesh

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/pipeline"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quad() ([]Vertex, []uint32) {
	up := mgl32.Vec3{0, 1, 0}
	return []Vertex{
		{Position: mgl32.Vec3{-1, 0, -1}, Normal: up},
		{Position: mgl32.Vec3{1, 0, -1}, Normal: up},
		{Position: mgl32.Vec3{-1, 0, 1}, Normal: up},
		{Position: mgl32.Vec3{1, 0, 1}, Normal: up},
	}, []uint32{0, 1, 2, 1, 3, 2}
}

func newTestMesh(t *testing.T, maxInstances int, options ...MeshOption) (Mesh, renderer.Renderer, *renderer.HeadlessBackend) {
	t.Helper()
	backend := renderer.NewHeadlessBackend()
	r := renderer.NewRenderer(backend)
	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline(DefaultPipelineKey)))

	v, i := quad()
	m, err := NewMesh(r, v, i, maxInstances, options...)
	require.NoError(t, err)
	t.Cleanup(m.Release)
	return m, r, backend
}

func f32(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func TestVertexMarshal(t *testing.T) {
	b := Vertex{Position: mgl32.Vec3{1, 2, 3}, Normal: mgl32.Vec3{4, 5, 6}}.Marshal()
	require.Len(t, b, VertexSize)
	for i, want := range []float32{1, 2, 3, 4, 5, 6} {
		assert.Equal(t, want, f32(b, i*4))
	}
}

func TestInstanceMarshalColumnMajor(t *testing.T) {
	in := Instance{Model: mgl32.Translate3D(7, 8, 9), Material: 3}
	b := in.Marshal()
	require.Len(t, b, InstanceSize)

	assert.Equal(t, float32(1), f32(b, 0))
	assert.Equal(t, float32(7), f32(b, 48))
	assert.Equal(t, float32(8), f32(b, 52))
	assert.Equal(t, float32(9), f32(b, 56))
	assert.Equal(t, float32(1), f32(b, 60))
	assert.Equal(t, float32(3), f32(b, 64))
}

func TestVertexLayouts(t *testing.T) {
	layouts := VertexLayouts()
	require.Len(t, layouts, 2)

	assert.Equal(t, uint64(24), layouts[0].ArrayStride)
	assert.Equal(t, pipeline.StepModeVertex, layouts[0].StepMode)
	assert.Equal(t, uint64(68), layouts[1].ArrayStride)
	assert.Equal(t, pipeline.StepModeInstance, layouts[1].StepMode)

	var locations []uint32
	for _, l := range layouts {
		var end uint64
		for _, a := range l.Attributes {
			locations = append(locations, a.Location)
			assert.GreaterOrEqual(t, a.Offset, end, "attribute %d overlaps", a.Location)
			end = a.Offset + a.Format.Size()
		}
		assert.Equal(t, l.ArrayStride, end)
	}
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5, 6}, locations)
}

func TestNewMeshAllocatesBuffers(t *testing.T) {
	m, _, backend := newTestMesh(t, 5, WithLabel("ground"))

	assert.Equal(t, "ground", m.Label())
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 6, m.IndexCount())
	assert.Equal(t, 5, m.MaxInstances())

	p := m.Provider()
	assert.Equal(t, uint64(4*VertexSize), p.VertexBuffer().Size())
	assert.Equal(t, uint64(6*4), p.IndexBuffer().Size())
	assert.Equal(t, uint64(5*InstanceSize), p.InstanceBuffer().Size())
	assert.Equal(t, make([]byte, 5*InstanceSize), backend.Contents(p.InstanceBuffer()))

	idx := backend.Contents(p.IndexBuffer())
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(idx[16:]))
}

func TestNewMeshDefaultLabelIsUnique(t *testing.T) {
	r := renderer.NewRenderer(renderer.NewHeadlessBackend())
	v, i := quad()
	a, err := NewMesh(r, v, i, 1)
	require.NoError(t, err)
	b, err := NewMesh(r, v, i, 1)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a.Label(), "Mesh "))
	assert.NotEqual(t, a.Label(), b.Label())
}

func TestNewMeshRejectsBadInput(t *testing.T) {
	r := renderer.NewRenderer(renderer.NewHeadlessBackend())
	v, i := quad()

	_, err := NewMesh(r, nil, i, 1)
	assert.ErrorIs(t, err, ErrEmptyMesh)
	_, err = NewMesh(r, v, i[:4], 1)
	assert.ErrorIs(t, err, ErrEmptyMesh)
	_, err = NewMesh(r, v, []uint32{0, 1, 9}, 1)
	assert.ErrorIs(t, err, ErrEmptyMesh)
	_, err = NewMesh(r, v, i, 0)
	assert.ErrorIs(t, err, ErrTooManyInstances)
}

func TestUploadInstancesRewritesWholeBuffer(t *testing.T) {
	m, _, backend := newTestMesh(t, 3)
	buf := m.Provider().InstanceBuffer()

	require.NoError(t, m.UploadInstances([]Instance{
		{Model: mgl32.Ident4(), Material: 1},
		{Model: mgl32.Ident4(), Material: 2},
		{Model: mgl32.Ident4(), Material: 3},
	}))
	backend.ResetWrites()

	require.NoError(t, m.UploadInstances([]Instance{{Model: mgl32.Translate3D(1, 0, 0), Material: 9}}))

	writes := backend.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, uint64(0), writes[0].Offset)
	assert.Equal(t, 3*InstanceSize, writes[0].Len)

	data := backend.Contents(buf)
	assert.Equal(t, float32(9), f32(data, 64))
	assert.Equal(t, make([]byte, 2*InstanceSize), data[InstanceSize:], "stale records cleared")
	assert.Equal(t, 1, m.Uploaded())
}

func TestUploadInstancesOverCapacity(t *testing.T) {
	m, _, backend := newTestMesh(t, 1)
	backend.ResetWrites()

	err := m.UploadInstances(make([]Instance, 2))
	assert.ErrorIs(t, err, ErrTooManyInstances)
	assert.Empty(t, backend.Writes())
}

func TestDrawSingleAndInstances(t *testing.T) {
	uniforms := bind_group_provider.NewBindGroupProvider("uniforms")
	m, r, backend := newTestMesh(t, 10, WithBindGroups(uniforms), WithLabel("flake"))

	require.NoError(t, r.BeginFrame())
	require.NoError(t, m.DrawSingle())
	require.NoError(t, m.DrawInstances(10))
	assert.ErrorIs(t, m.DrawInstances(11), ErrTooManyInstances)
	require.NoError(t, r.EndFrame())

	assert.Equal(t, []renderer.DrawRecord{
		{PipelineKey: DefaultPipelineKey, MeshLabel: "flake", IndexCount: 6, InstanceCount: 1, Instanced: false, BindGroups: 1},
		{PipelineKey: DefaultPipelineKey, MeshLabel: "flake", IndexCount: 6, InstanceCount: 10, Instanced: true, BindGroups: 1},
	}, backend.Draws())
}

func TestDrawOutsideFrame(t *testing.T) {
	m, _, _ := newTestMesh(t, 1)
	assert.ErrorIs(t, m.DrawSingle(), renderer.ErrNoFrame)
}

func TestDrawWithUnregisteredPipeline(t *testing.T) {
	m, r, _ := newTestMesh(t, 1, WithPipelineKey("other"))
	require.NoError(t, r.BeginFrame())
	assert.ErrorIs(t, m.DrawSingle(), renderer.ErrUnknownPipeline)
}

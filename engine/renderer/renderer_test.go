package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) (Renderer, *HeadlessBackend) {
	t.Helper()
	backend := NewHeadlessBackend()
	r := NewRenderer(backend, WithSurfaceSize(800, 600), WithPresentMode(PresentModeVSync))
	t.Cleanup(r.Release)
	return r, backend
}

func TestNewRendererAppliesOptions(t *testing.T) {
	_, backend := newTestRenderer(t)
	w, h := backend.SurfaceSize()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

func TestResizeIgnoresDegenerateSizes(t *testing.T) {
	r, backend := newTestRenderer(t)
	r.Resize(0, 100)
	w, h := backend.SurfaceSize()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	r.Resize(1024, 768)
	w, h = backend.SurfaceSize()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, h)
}

func TestRegisterPipelinesSkipsDuplicates(t *testing.T) {
	r, backend := newTestRenderer(t)
	p := pipeline.NewPipeline("scene", pipeline.WithClearColor([4]float64{0.1, 0.2, 0.3, 1}))

	require.NoError(t, r.RegisterPipelines(p, p))
	require.NoError(t, r.RegisterPipelines(p))

	assert.Equal(t, []string{"scene"}, backend.Pipelines())
	assert.Equal(t, "scene", p.Handle())
	assert.Same(t, p, r.Pipeline("scene"))
	assert.Len(t, r.Pipelines(), 1)
	assert.Nil(t, r.Pipeline("missing"))
}

func TestRegisterPipelinesPropagatesCreationFailure(t *testing.T) {
	r, backend := newTestRenderer(t)
	backend.FailCreate(errors.New("device lost"))

	err := r.RegisterPipelines(pipeline.NewPipeline("scene"))
	assert.ErrorIs(t, err, ErrResourceCreation)
	assert.Nil(t, r.Pipeline("scene"))
}

func TestUniformBufferIsZeroInitializedAndBoundsChecked(t *testing.T) {
	r, backend := newTestRenderer(t)
	provider := bind_group_provider.NewBindGroupProvider("uniforms")

	require.NoError(t, r.InitUniformBuffer(provider, 0, 32))
	buf := provider.Buffer(0)
	require.NotNil(t, buf)
	assert.Equal(t, make([]byte, 32), backend.Contents(buf))

	err := r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: provider, Binding: 0, Offset: 4, Data: []byte{1, 2, 3, 4}},
	})
	require.NoError(t, err)

	got := backend.Contents(buf)
	assert.Equal(t, []byte{0, 0, 0, 0, 1, 2, 3, 4}, got[:8])
	assert.Equal(t, []WriteRecord{{Label: buf.Label(), Offset: 4, Len: 4}}, backend.Writes())

	err = r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: provider, Binding: 0, Offset: 30, Data: []byte{1, 2, 3, 4}},
	})
	assert.ErrorIs(t, err, ErrBufferBounds)
	assert.Equal(t, got, backend.Contents(buf))

	err = r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: provider, Binding: 7, Data: []byte{1}},
	})
	assert.ErrorIs(t, err, ErrBufferBounds)
}

func TestInitBindGroup(t *testing.T) {
	r, _ := newTestRenderer(t)
	provider := bind_group_provider.NewBindGroupProvider("uniforms")

	assert.ErrorIs(t, r.InitBindGroup(provider), ErrResourceCreation)

	require.NoError(t, r.InitUniformBuffer(provider, 2, 16))
	require.NoError(t, r.InitUniformBuffer(provider, 0, 16))
	require.NoError(t, r.InitBindGroup(provider))

	bg, ok := provider.BindGroup().(*headlessBindGroup)
	require.True(t, ok)
	require.Len(t, bg.entries, 2)
	assert.Equal(t, uint32(0), bg.entries[0].Binding)
	assert.Equal(t, uint32(2), bg.entries[1].Binding)
}

func TestDrawCallRequiresFrameAndPipeline(t *testing.T) {
	r, backend := newTestRenderer(t)
	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline("scene")))

	mesh := bind_group_provider.NewBindGroupProvider("quad")
	require.NoError(t, r.InitMeshBuffers(mesh, make([]byte, 96), make([]byte, 24), 6))
	require.NoError(t, r.InitInstanceBuffer(mesh, 68))

	assert.ErrorIs(t, r.DrawCall("scene", mesh, 1, false, nil), ErrNoFrame)

	require.NoError(t, r.BeginFrame())
	assert.ErrorIs(t, r.DrawCall("other", mesh, 1, false, nil), ErrUnknownPipeline)
	require.NoError(t, r.DrawCall("scene", mesh, 9, false, nil))
	require.NoError(t, r.DrawCall("scene", mesh, 3, true, nil))
	require.NoError(t, r.EndFrame())
	r.Present()

	assert.Equal(t, 1, backend.Frames())
	assert.Equal(t, []DrawRecord{
		{PipelineKey: "scene", MeshLabel: "quad", IndexCount: 6, InstanceCount: 1, Instanced: false},
		{PipelineKey: "scene", MeshLabel: "quad", IndexCount: 6, InstanceCount: 3, Instanced: true},
	}, backend.Draws())

	assert.ErrorIs(t, r.EndFrame(), ErrNoFrame)
}

func TestBeginFrameUsesFirstPipelineClearColor(t *testing.T) {
	r, backend := newTestRenderer(t)
	require.NoError(t, r.RegisterPipelines(
		pipeline.NewPipeline("a", pipeline.WithClearColor([4]float64{0.5, 0.5, 0.5, 1})),
		pipeline.NewPipeline("b", pipeline.WithClearColor([4]float64{1, 0, 0, 1})),
	))

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.EndFrame())
	r.Present()
	assert.Equal(t, [4]float64{0.5, 0.5, 0.5, 1}, backend.ClearColor())
}

func TestBeginFrameRequiresPresent(t *testing.T) {
	r, backend := newTestRenderer(t)

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.EndFrame())
	assert.Error(t, r.BeginFrame(), "an ended frame must be presented first")

	r.Present()
	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.EndFrame())
	r.Present()
	assert.Equal(t, 2, backend.Frames())
	assert.Equal(t, 2, backend.Presented())
}

func TestInitMeshBuffersCopiesData(t *testing.T) {
	r, backend := newTestRenderer(t)
	mesh := bind_group_provider.NewBindGroupProvider("tri")
	vertices := []byte{1, 2, 3, 4}

	require.NoError(t, r.InitMeshBuffers(mesh, vertices, []byte{0, 0, 0, 0}, 1))
	vertices[0] = 9

	assert.Equal(t, []byte{1, 2, 3, 4}, backend.Contents(mesh.VertexBuffer()))
	assert.Equal(t, 1, mesh.IndexCount())
}

func TestReleasedBuffersRejectWrites(t *testing.T) {
	r, _ := newTestRenderer(t)
	provider := bind_group_provider.NewBindGroupProvider("u")
	require.NoError(t, r.InitUniformBuffer(provider, 0, 16))
	buf := provider.Buffer(0)
	buf.Release()

	err := r.Backend().WriteBuffer(buf, 0, []byte{1})
	assert.ErrorIs(t, err, ErrBufferBounds)
}

package mesh

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/bind_group_provider"
	"github.com/google/uuid"
)

// DefaultPipelineKey is the pipeline meshes draw with unless configured otherwise.
const DefaultPipelineKey = "scene"

var (
	// ErrTooManyInstances is returned when an upload or draw exceeds the instance capacity.
	ErrTooManyInstances = errors.New("instance count exceeds mesh capacity")

	// ErrEmptyMesh is returned when a mesh is built without vertices or indices.
	ErrEmptyMesh = errors.New("mesh has no geometry")
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	mu sync.Mutex

	renderer    renderer.Renderer
	provider    bind_group_provider.BindGroupProvider
	pipelineKey string
	bindGroups  []bind_group_provider.BindGroupProvider

	vertexCount  int
	indexCount   int
	maxInstances int
	uploaded     int
}

// Mesh owns the vertex, index and instance buffers of one piece of geometry.
//
// The vertex and index buffers are immutable after construction. The instance buffer is
// rewritten in full on every UploadInstances call, unlike uniform blocks which only ever take
// partial writes.
type Mesh interface {
	// Label returns the debug label of the mesh's GPU resources.
	Label() string

	// VertexCount returns the number of vertices.
	VertexCount() int

	// IndexCount returns the number of indices issued per draw.
	IndexCount() int

	// MaxInstances returns the instance capacity fixed at construction.
	MaxInstances() int

	// Uploaded returns the number of instances written by the last UploadInstances.
	Uploaded() int

	// Provider returns the provider holding the mesh buffers.
	Provider() bind_group_provider.BindGroupProvider

	// UploadInstances overwrites the entire instance buffer with one write. Records past
	// len(instances) are zeroed.
	//
	// Parameters:
	//   - instances: at most MaxInstances records
	//
	// Returns:
	//   - error: ErrTooManyInstances, or a buffer write error
	UploadInstances(instances []Instance) error

	// DrawSingle issues one non-instanced indexed draw reading instance record 0.
	DrawSingle() error

	// DrawInstances issues one indexed draw replicated count times, one instance record each.
	//
	// Parameters:
	//   - count: the number of instances, at most MaxInstances
	//
	// Returns:
	//   - error: ErrTooManyInstances, or a renderer draw error
	DrawInstances(count int) error

	// Release frees the mesh buffers.
	Release()
}

var _ Mesh = &mesh{}

// NewMesh uploads geometry and reserves a zero-initialized instance buffer.
//
// Parameters:
//   - r: the renderer owning the buffers
//   - vertices: the interleaved vertices
//   - indices: 32-bit indices into vertices, a multiple of 3
//   - maxInstances: the instance capacity, at least 1
//   - options: variadic list of MeshOption functions
//
// Returns:
//   - Mesh: the mesh
//   - error: ErrEmptyMesh for degenerate input, or a wrapped renderer.ErrResourceCreation
func NewMesh(r renderer.Renderer, vertices []Vertex, indices []uint32, maxInstances int, options ...MeshOption) (Mesh, error) {
	if len(vertices) == 0 || len(indices) == 0 || len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d vertices, %d indices", ErrEmptyMesh, len(vertices), len(indices))
	}
	if maxInstances < 1 {
		return nil, fmt.Errorf("%w: capacity %d", ErrTooManyInstances, maxInstances)
	}
	for _, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("%w: index %d out of %d vertices", ErrEmptyMesh, idx, len(vertices))
		}
	}

	cfg := meshConfig{
		label:       "Mesh " + uuid.NewString(),
		pipelineKey: DefaultPipelineKey,
	}
	for _, opt := range options {
		opt(&cfg)
	}

	m := &mesh{
		renderer:     r,
		provider:     bind_group_provider.NewBindGroupProvider(cfg.label),
		pipelineKey:  cfg.pipelineKey,
		bindGroups:   cfg.bindGroups,
		vertexCount:  len(vertices),
		indexCount:   len(indices),
		maxInstances: maxInstances,
	}

	if err := r.InitMeshBuffers(m.provider, MarshalVertices(vertices), MarshalIndices(indices), len(indices)); err != nil {
		m.provider.Release()
		return nil, fmt.Errorf("mesh %q: %w", cfg.label, err)
	}
	if err := r.InitInstanceBuffer(m.provider, uint64(maxInstances*InstanceSize)); err != nil {
		m.provider.Release()
		return nil, fmt.Errorf("mesh %q: %w", cfg.label, err)
	}

	common.ComponentLogger("mesh").Debug("mesh created",
		"label", cfg.label, "vertices", len(vertices), "indices", len(indices), "maxInstances", maxInstances)

	return m, nil
}

func (m *mesh) Label() string {
	return m.provider.Label()
}

func (m *mesh) VertexCount() int {
	return m.vertexCount
}

func (m *mesh) IndexCount() int {
	return m.indexCount
}

func (m *mesh) MaxInstances() int {
	return m.maxInstances
}

func (m *mesh) Uploaded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploaded
}

func (m *mesh) Provider() bind_group_provider.BindGroupProvider {
	return m.provider
}

func (m *mesh) UploadInstances(instances []Instance) error {
	if len(instances) > m.maxInstances {
		return fmt.Errorf("%w: %d > %d for %q", ErrTooManyInstances, len(instances), m.maxInstances, m.Label())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.renderer.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: m.provider,
		Target:   bind_group_provider.TargetInstance,
		Offset:   0,
		Data:     MarshalInstances(instances, m.maxInstances),
	}})
	if err != nil {
		return err
	}
	m.uploaded = len(instances)
	return nil
}

func (m *mesh) DrawSingle() error {
	return m.renderer.DrawCall(m.pipelineKey, m.provider, 1, false, m.bindGroups)
}

func (m *mesh) DrawInstances(count int) error {
	if count < 0 || count > m.maxInstances {
		return fmt.Errorf("%w: draw %d of %d for %q", ErrTooManyInstances, count, m.maxInstances, m.Label())
	}
	return m.renderer.DrawCall(m.pipelineKey, m.provider, uint32(count), true, m.bindGroups)
}

func (m *mesh) Release() {
	m.provider.Release()
}

package renderer

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/pipeline"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backend RendererBackend
	log     *slog.Logger

	inFrame    bool
	clearColor [4]float64

	// Pre-creation config collected from builder options
	pendingPresentMode *PresentMode
	pendingSize        *[2]int
}

// Renderer defines the interface for the rendering system.
//
// This is a high-level API designed to simplify rendering tasks into a streamlined and idiomatic flow.
// The Renderer manages a cache of pipelines and owns every buffer allocation, write and draw.
// The Renderer also wraps a backend which allows for multiple backend API implementations to exist.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves a copy of the entire cache of Pipelines.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines registers one or more pipelines by creating the corresponding GPU
	// pipeline objects via the backend, then caching them by PipelineKey.
	// Pipelines whose keys are already registered are skipped to avoid duplicate GPU resource creation.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode changes the present mode. It applies on the next Resize.
	SetPresentMode(mode PresentMode)

	// InitUniformBuffer creates a zero-initialized uniform buffer of exactly size bytes and
	// stores it on the provider at the given binding.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the buffer on
	//   - binding: the binding index inside group 0
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - error: wrapping ErrResourceCreation if allocation fails
	InitUniformBuffer(provider bind_group_provider.BindGroupProvider, binding int, size uint64) error

	// InitBindGroup creates the group 0 bind group over every uniform buffer on the provider,
	// ordered by binding, and stores it on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider holding the uniform buffers
	//
	// Returns:
	//   - error: an error if the provider holds no buffers or creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider) error

	// InitMeshBuffers creates GPU vertex and index buffers from raw byte data and stores them
	// on the given BindGroupProvider for later use in draw calls.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//   - indexCount: the number of indices, used for draw calls
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitInstanceBuffer creates a zero-initialized per-instance vertex buffer on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the buffer on
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitInstanceBuffer(provider bind_group_provider.BindGroupProvider, size uint64) error

	// WriteBuffers writes all staged buffer writes to the GPU queue, in order.
	// Each BufferWrite targets a specific buffer on a BindGroupProvider at a given binding and offset.
	// Processing stops at the first write whose target is missing or out of bounds.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	//
	// Returns:
	//   - error: the first failing write's error
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// BeginFrame starts a new frame, clearing to the clear color of the first registered
	// pipeline (or black).
	//
	// Returns:
	//   - error: an error if the surface image cannot be acquired
	BeginFrame() error

	// DrawCall issues one indexed draw with the named pipeline. The mesh provider's instance
	// buffer feeds the per-instance attributes; a non-instanced draw reads instance 0 only.
	//
	// Parameters:
	//   - pipelineKey: the registered pipeline to use
	//   - meshProvider: the provider holding the vertex, index and instance buffers
	//   - instanceCount: the number of instances to replicate
	//   - instanced: false for a single non-replicated draw
	//   - bindGroups: the providers whose bind groups are bound starting at group 0
	//
	// Returns:
	//   - error: ErrNoFrame, ErrUnknownPipeline or a backend error
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, instanced bool, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame submits the frame's recorded draws.
	EndFrame() error

	// Present presents the last submitted frame to the surface.
	Present()

	// Backend returns the backend this renderer drives.
	Backend() RendererBackend

	// Release frees every backend resource.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer driving the given backend.
//
// Parameters:
//   - backend: the GPU backend implementation
//   - options: variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(backend RendererBackend, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backend:       backend,
		log:           common.ComponentLogger("renderer"),
		clearColor:    [4]float64{0, 0, 0, 1},
	}

	for _, opt := range options {
		opt(r)
	}

	if r.pendingPresentMode != nil {
		backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingSize != nil {
		backend.ConfigureSurface(r.pendingSize[0], r.pendingSize[1])
	}

	return r
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, v := range r.pipelineCache {
		out[k] = v
	}
	return out
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range pipelines {
		if _, exists := r.pipelineCache[p.PipelineKey()]; exists {
			continue
		}
		handle, err := r.backend.CreateRenderPipeline(p)
		if err != nil {
			return fmt.Errorf("register pipeline %q: %w", p.PipelineKey(), err)
		}
		p.SetHandle(handle)
		if len(r.pipelineCache) == 0 {
			r.clearColor = p.ClearColor()
		}
		r.pipelineCache[p.PipelineKey()] = p
		r.log.Debug("pipeline registered", "key", p.PipelineKey())
	}
	return nil
}

func (r *renderer) InitUniformBuffer(provider bind_group_provider.BindGroupProvider, binding int, size uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf, err := r.backend.CreateBuffer(fmt.Sprintf("%s Uniform %d", provider.Label(), binding), BufferUsageUniform, size)
	if err != nil {
		return err
	}
	provider.SetBuffer(binding, buf)
	r.log.Debug("uniform buffer created", "label", provider.Label(), "binding", binding, "size", size)
	return nil
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	buffers := provider.Buffers()
	if len(buffers) == 0 {
		return fmt.Errorf("%w: bind group %q has no buffers", ErrResourceCreation, provider.Label())
	}
	bindings := make([]int, 0, len(buffers))
	for b := range buffers {
		bindings = append(bindings, b)
	}
	sort.Ints(bindings)

	entries := make([]BindGroupEntry, 0, len(bindings))
	for _, b := range bindings {
		entries = append(entries, BindGroupEntry{Binding: uint32(b), Buffer: buffers[b]})
	}
	bg, err := r.backend.CreateBindGroup(provider.Label()+" Bind Group", entries)
	if err != nil {
		return err
	}
	provider.SetBindGroup(bg)
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := r.backend.CreateBufferInit(provider.Label()+" Vertex Buffer", BufferUsageVertex, vertexData)
		if err != nil {
			return err
		}
		provider.SetVertexBuffer(buf)
	}

	if len(indexData) > 0 {
		buf, err := r.backend.CreateBufferInit(provider.Label()+" Index Buffer", BufferUsageIndex, indexData)
		if err != nil {
			return err
		}
		provider.SetIndexBuffer(buf)
	}

	provider.SetIndexCount(indexCount)

	return nil
}

func (r *renderer) InitInstanceBuffer(provider bind_group_provider.BindGroupProvider, size uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf, err := r.backend.CreateBuffer(provider.Label()+" Instance Buffer", BufferUsageVertex, size)
	if err != nil {
		return err
	}
	provider.SetInstanceBuffer(buf)
	return nil
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range writes {
		var buf bind_group_provider.Buffer
		switch w.Target {
		case bind_group_provider.TargetInstance:
			buf = w.Provider.InstanceBuffer()
		default:
			buf = w.Provider.Buffer(w.Binding)
		}
		if buf == nil {
			return fmt.Errorf("%w: %q has no buffer for target %d binding %d", ErrBufferBounds, w.Provider.Label(), w.Target, w.Binding)
		}
		if err := r.backend.WriteBuffer(buf, w.Offset, w.Data); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) BeginFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.backend.BeginFrame(r.clearColor); err != nil {
		return err
	}
	r.inFrame = true
	return nil
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, instanced bool, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return ErrNoFrame
	}
	p, ok := r.pipelineCache[pipelineKey]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPipeline, pipelineKey)
	}
	if !instanced {
		instanceCount = 1
	}

	return r.backend.DrawIndexed(DrawCommand{
		Pipeline:      p,
		Mesh:          meshProvider,
		BindGroups:    bindGroups,
		InstanceCount: instanceCount,
		Instanced:     instanced,
	})
}

func (r *renderer) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return ErrNoFrame
	}
	r.inFrame = false
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Present()
}

func (r *renderer) Backend() RendererBackend {
	return r.backend
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Release()
}

package bind_group_provider

import "sync"

// Buffer is a GPU buffer created by a renderer backend.
type Buffer interface {
	// Label returns the debug label the buffer was created with.
	Label() string

	// Size returns the buffer size in bytes. It never changes after creation.
	Size() uint64

	// Release frees the GPU memory backing the buffer.
	Release()
}

// BindGroup is a GPU bind group created by a renderer backend.
type BindGroup interface {
	// Release frees the GPU bind group.
	Release()
}

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	mu sync.RWMutex

	// label is a debug label added for convenience.
	label string

	// The following fields are GPU allocated resources and must be released when no longer needed. They are populated by the Renderer during initialization, not by user-creation.

	// bindGroup is the GPU bind group created for this provider, or nil if not initialized with the Renderer.
	bindGroup BindGroup
	// buffers holds the uniform buffers created for this provider, keyed by binding index.
	buffers map[int]Buffer

	// The following fields are specific to geometry providers.

	// vertexBuffer holds interleaved per-vertex attributes, or nil if not initialized with the Renderer.
	vertexBuffer Buffer
	// indexBuffer holds 32-bit indices, or nil if not initialized with the Renderer.
	indexBuffer Buffer
	// instanceBuffer holds per-instance attributes, or nil if not initialized with the Renderer.
	instanceBuffer Buffer
	// indexCount is the number of indices issued by each indexed draw of this provider.
	indexCount int
}

// BindGroupProvider holds the GPU resources one component draws or binds with.
//
// Uniform blocks share one provider whose buffers are keyed by binding index and whose bind
// group is bound once per frame. Every mesh owns its own provider holding vertex, index and
// instance buffers.
//
// Usage pattern:
//  1. Component creates a BindGroupProvider with a debug label
//  2. Renderer.InitUniformBuffer / InitMeshBuffers / InitInstanceBuffer create GPU buffers on it
//  3. Renderer.InitBindGroup creates the bind group over its uniform buffers
//  4. Renderer.WriteBuffers issues partial writes addressed by provider and binding
//  5. Renderer.DrawIndexed draws from its geometry buffers
type BindGroupProvider interface {
	// Release releases every GPU resource held by this provider and clears the references.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group, or nil if not initialized.
	BindGroup() BindGroup

	// SetBindGroup stores the created bind group.
	SetBindGroup(bg BindGroup)

	// Buffer returns the uniform buffer at a binding index, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - Buffer: the buffer or nil
	Buffer(binding int) Buffer

	// Buffers returns a copy of the binding-to-buffer map.
	Buffers() map[int]Buffer

	// SetBuffer stores a uniform buffer at a binding index.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer
	SetBuffer(binding int, buf Buffer)

	// VertexBuffer returns the vertex buffer, or nil if not initialized.
	VertexBuffer() Buffer

	// SetVertexBuffer stores the vertex buffer.
	SetVertexBuffer(buf Buffer)

	// IndexBuffer returns the index buffer, or nil if not initialized.
	IndexBuffer() Buffer

	// SetIndexBuffer stores the index buffer.
	SetIndexBuffer(buf Buffer)

	// InstanceBuffer returns the per-instance attribute buffer, or nil if not initialized.
	InstanceBuffer() Buffer

	// SetInstanceBuffer stores the per-instance attribute buffer.
	SetInstanceBuffer(buf Buffer)

	// IndexCount returns the number of indices drawn per indexed draw.
	IndexCount() int

	// SetIndexCount stores the number of indices drawn per indexed draw.
	SetIndexCount(count int)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider.
//
// Parameters:
//   - label: debug label used for the GPU resources created on this provider
//   - options: variadic list of BindGroupProviderOption functions
//
// Returns:
//   - BindGroupProvider: the provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		buffers: make(map[int]Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for binding, buf := range p.buffers {
		buf.Release()
		delete(p.buffers, binding)
	}
	for _, buf := range []*Buffer{&p.vertexBuffer, &p.indexBuffer, &p.instanceBuffer} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
	p.indexCount = 0
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() BindGroup {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bindGroup
}

func (p *bindGroupProvider) SetBindGroup(bg BindGroup) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bindGroup = bg
}

func (p *bindGroupProvider) Buffer(binding int) Buffer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]Buffer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[int]Buffer, len(p.buffers))
	for k, v := range p.buffers {
		out[k] = v
	}
	return out
}

func (p *bindGroupProvider) SetBuffer(binding int, buf Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) VertexBuffer() Buffer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.vertexBuffer
}

func (p *bindGroupProvider) SetVertexBuffer(buf Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vertexBuffer = buf
}

func (p *bindGroupProvider) IndexBuffer() Buffer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.indexBuffer
}

func (p *bindGroupProvider) SetIndexBuffer(buf Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.indexBuffer = buf
}

func (p *bindGroupProvider) InstanceBuffer() Buffer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.instanceBuffer
}

func (p *bindGroupProvider) SetInstanceBuffer(buf Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.instanceBuffer = buf
}

func (p *bindGroupProvider) IndexCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.indexCount
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.indexCount = count
}

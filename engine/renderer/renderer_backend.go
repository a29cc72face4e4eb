package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/pipeline"
)

// ErrResourceCreation is returned when a backend fails to allocate a GPU resource. Resource
// creation happens at setup time and callers treat it as unrecoverable.
var ErrResourceCreation = errors.New("gpu resource creation failed")

// ErrBufferBounds is returned when a write would reach outside the target buffer.
var ErrBufferBounds = errors.New("buffer write out of bounds")

// ErrNoFrame is returned when a draw is issued outside BeginFrame/EndFrame.
var ErrNoFrame = errors.New("no frame in progress")

// ErrUnknownPipeline is returned when a draw names a pipeline that was never registered.
var ErrUnknownPipeline = errors.New("unknown pipeline")

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// BufferUsage is a bit set describing how a buffer is bound. Every buffer created through a
// backend is also a copy destination so it can be written after creation.
type BufferUsage uint32

const (
	BufferUsageUniform BufferUsage = 1 << iota
	BufferUsageVertex
	BufferUsageIndex
)

// BindGroupEntry binds one uniform buffer into a bind group.
type BindGroupEntry struct {
	Binding uint32
	Buffer  bind_group_provider.Buffer
}

// DrawCommand is one indexed draw issued inside a frame.
type DrawCommand struct {
	// Pipeline is the registered pipeline to draw with.
	Pipeline pipeline.Pipeline
	// Mesh holds the vertex, index and instance buffers.
	Mesh bind_group_provider.BindGroupProvider
	// BindGroups are bound in order starting at group 0.
	BindGroups []bind_group_provider.BindGroupProvider
	// InstanceCount is the number of replicated instances read from the instance buffer.
	InstanceCount uint32
	// Instanced is false for a single non-replicated draw of instance 0.
	Instanced bool
}

// RendererBackend is the GPU API a Renderer drives. Implementations are not required to be
// safe for concurrent use; the Renderer serializes every call.
type RendererBackend interface {
	// ConfigureSurface (re)creates the swapchain and depth attachments for a surface size.
	ConfigureSurface(width, height int)

	// SetPresentMode selects how frames are delivered. It takes effect on the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// CreateBuffer allocates a zero-initialized buffer.
	//
	// Parameters:
	//   - label: debug label
	//   - usage: how the buffer is bound
	//   - size: the size in bytes
	//
	// Returns:
	//   - bind_group_provider.Buffer: the buffer
	//   - error: wrapping ErrResourceCreation on failure
	CreateBuffer(label string, usage BufferUsage, size uint64) (bind_group_provider.Buffer, error)

	// CreateBufferInit allocates a buffer sized to data and fills it.
	CreateBufferInit(label string, usage BufferUsage, data []byte) (bind_group_provider.Buffer, error)

	// WriteBuffer copies data into buf at offset. Writes reaching past the buffer end fail with
	// ErrBufferBounds and leave the buffer untouched.
	WriteBuffer(buf bind_group_provider.Buffer, offset uint64, data []byte) error

	// CreateBindGroup creates a bind group for group 0 over the given uniform buffers.
	CreateBindGroup(label string, entries []BindGroupEntry) (bind_group_provider.BindGroup, error)

	// CreateRenderPipeline creates the backend pipeline object for a pipeline description.
	//
	// Returns:
	//   - any: the backend handle stored with pipeline.Pipeline.SetHandle
	//   - error: wrapping ErrResourceCreation on failure
	CreateRenderPipeline(p pipeline.Pipeline) (any, error)

	// BeginFrame acquires the next surface image and clears color and depth.
	BeginFrame(clear [4]float64) error

	// DrawIndexed records one indexed draw into the current frame.
	DrawIndexed(cmd DrawCommand) error

	// EndFrame submits the recorded frame.
	EndFrame() error

	// Present shows the last submitted frame.
	Present()

	// Release frees every device-level resource.
	Release()
}

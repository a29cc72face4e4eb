package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/pipeline"
)

// headlessBuffer keeps buffer contents in host memory.
type headlessBuffer struct {
	label    string
	usage    BufferUsage
	data     []byte
	released bool
}

func (b *headlessBuffer) Label() string { return b.label }
func (b *headlessBuffer) Size() uint64  { return uint64(len(b.data)) }
func (b *headlessBuffer) Release()      { b.released = true }

type headlessBindGroup struct {
	label   string
	entries []BindGroupEntry
}

func (g *headlessBindGroup) Release() {}

// WriteRecord is one buffer write observed by a HeadlessBackend.
type WriteRecord struct {
	Label  string
	Offset uint64
	Len    int
}

// DrawRecord is one draw observed by a HeadlessBackend.
type DrawRecord struct {
	PipelineKey   string
	MeshLabel     string
	IndexCount    int
	InstanceCount uint32
	Instanced     bool
	BindGroups    int
}

// HeadlessBackend is a RendererBackend that keeps every buffer in host memory and records the
// writes and draws issued against it. It needs no GPU or window and is used by tests and by
// the engine's headless mode.
type HeadlessBackend struct {
	mu sync.Mutex

	width, height int
	presentMode   PresentMode

	buffers   []*headlessBuffer
	pipelines []string
	writes    []WriteRecord
	draws     []DrawRecord
	frames    int
	presented int
	inFrame   bool
	// unpresented is set between a successful EndFrame and Present, mirroring a swapchain
	// image that has been acquired but not handed back.
	unpresented bool
	clear       [4]float64

	failCreate error
}

var _ RendererBackend = &HeadlessBackend{}

// NewHeadlessBackend creates an empty headless backend.
//
// Returns:
//   - *HeadlessBackend: the backend
func NewHeadlessBackend() *HeadlessBackend {
	return &HeadlessBackend{}
}

// FailCreate makes every following buffer, bind group or pipeline creation fail with err
// wrapped in ErrResourceCreation. Passing nil clears the failure.
func (h *HeadlessBackend) FailCreate(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failCreate = err
}

func (h *HeadlessBackend) creationError(label string) error {
	if h.failCreate == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrResourceCreation, label, h.failCreate)
}

func (h *HeadlessBackend) ConfigureSurface(width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.width, h.height = width, height
}

func (h *HeadlessBackend) SetPresentMode(mode PresentMode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.presentMode = mode
}

func (h *HeadlessBackend) CreateBuffer(label string, usage BufferUsage, size uint64) (bind_group_provider.Buffer, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.creationError(label); err != nil {
		return nil, err
	}
	b := &headlessBuffer{label: label, usage: usage, data: make([]byte, size)}
	h.buffers = append(h.buffers, b)
	return b, nil
}

func (h *HeadlessBackend) CreateBufferInit(label string, usage BufferUsage, data []byte) (bind_group_provider.Buffer, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.creationError(label); err != nil {
		return nil, err
	}
	b := &headlessBuffer{label: label, usage: usage, data: append([]byte(nil), data...)}
	h.buffers = append(h.buffers, b)
	return b, nil
}

func (h *HeadlessBackend) WriteBuffer(buf bind_group_provider.Buffer, offset uint64, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, ok := buf.(*headlessBuffer)
	if !ok {
		return fmt.Errorf("%w: foreign buffer %q", ErrBufferBounds, buf.Label())
	}
	if b.released {
		return fmt.Errorf("%w: %q was released", ErrBufferBounds, b.label)
	}
	end := offset + uint64(len(data))
	if end > uint64(len(b.data)) {
		return fmt.Errorf("%w: %q write [%d,%d) exceeds size %d", ErrBufferBounds, b.label, offset, end, len(b.data))
	}
	copy(b.data[offset:end], data)
	h.writes = append(h.writes, WriteRecord{Label: b.label, Offset: offset, Len: len(data)})
	return nil
}

func (h *HeadlessBackend) CreateBindGroup(label string, entries []BindGroupEntry) (bind_group_provider.BindGroup, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.creationError(label); err != nil {
		return nil, err
	}
	return &headlessBindGroup{label: label, entries: append([]BindGroupEntry(nil), entries...)}, nil
}

func (h *HeadlessBackend) CreateRenderPipeline(p pipeline.Pipeline) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.creationError(p.PipelineKey()); err != nil {
		return nil, err
	}
	h.pipelines = append(h.pipelines, p.PipelineKey())
	return p.PipelineKey(), nil
}

func (h *HeadlessBackend) BeginFrame(clear [4]float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.inFrame {
		return fmt.Errorf("previous frame not yet ended")
	}
	if h.unpresented {
		return fmt.Errorf("previous frame surface not yet presented")
	}
	h.inFrame = true
	h.clear = clear
	return nil
}

func (h *HeadlessBackend) DrawIndexed(cmd DrawCommand) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.inFrame {
		return ErrNoFrame
	}
	if cmd.Mesh.VertexBuffer() == nil || cmd.Mesh.IndexBuffer() == nil {
		return fmt.Errorf("mesh %q has no geometry buffers", cmd.Mesh.Label())
	}
	h.draws = append(h.draws, DrawRecord{
		PipelineKey:   cmd.Pipeline.PipelineKey(),
		MeshLabel:     cmd.Mesh.Label(),
		IndexCount:    cmd.Mesh.IndexCount(),
		InstanceCount: cmd.InstanceCount,
		Instanced:     cmd.Instanced,
		BindGroups:    len(cmd.BindGroups),
	})
	return nil
}

func (h *HeadlessBackend) EndFrame() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.inFrame {
		return ErrNoFrame
	}
	h.inFrame = false
	h.unpresented = true
	h.frames++
	return nil
}

func (h *HeadlessBackend) Present() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.unpresented {
		return
	}
	h.unpresented = false
	h.presented++
}

func (h *HeadlessBackend) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, b := range h.buffers {
		b.released = true
	}
}

// Contents returns a copy of a buffer's bytes, or nil if the buffer was not created by this backend.
func (h *HeadlessBackend) Contents(buf bind_group_provider.Buffer) []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := buf.(*headlessBuffer)
	if !ok {
		return nil
	}
	return append([]byte(nil), b.data...)
}

// Writes returns every successful write in issue order.
func (h *HeadlessBackend) Writes() []WriteRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]WriteRecord(nil), h.writes...)
}

// ResetWrites clears the recorded writes.
func (h *HeadlessBackend) ResetWrites() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writes = nil
}

// Draws returns every draw in issue order across all frames.
func (h *HeadlessBackend) Draws() []DrawRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]DrawRecord(nil), h.draws...)
}

// ResetDraws clears the recorded draws.
func (h *HeadlessBackend) ResetDraws() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.draws = nil
}

// Frames returns the number of completed frames.
func (h *HeadlessBackend) Frames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

// Presented returns the number of frames handed to Present after ending.
func (h *HeadlessBackend) Presented() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.presented
}

// Pipelines returns the keys of every created pipeline in creation order.
func (h *HeadlessBackend) Pipelines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.pipelines...)
}

// SurfaceSize returns the last configured surface size.
func (h *HeadlessBackend) SurfaceSize() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

// ClearColor returns the clear color of the most recent frame.
func (h *HeadlessBackend) ClearColor() [4]float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clear
}

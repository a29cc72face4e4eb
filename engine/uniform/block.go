package uniform

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/engine/layout"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrBlockAlreadyAllocated is returned when a binding already holds a block on the provider.
var ErrBlockAlreadyAllocated = errors.New("uniform block already allocated")

// BlockKind identifies one of the three uniform blocks shared by every shader program.
// The numeric value is the fixed binding index.
type BlockKind int

const (
	BlockCamera BlockKind = iota
	BlockLights
	BlockMaterials
)

// Binding returns the fixed binding index of the block inside group 0.
func (k BlockKind) Binding() int {
	return int(k)
}

func (k BlockKind) String() string {
	switch k {
	case BlockCamera:
		return "Camera"
	case BlockLights:
		return "Lights"
	case BlockMaterials:
		return "Materials"
	default:
		return fmt.Sprintf("BlockKind(%d)", int(k))
	}
}

// block is the implementation of the Block interface.
type block struct {
	mu sync.Mutex

	kind     BlockKind
	layout   *layout.Layout
	renderer renderer.Renderer
	provider bind_group_provider.BindGroupProvider
}

// Block is a GPU-resident uniform buffer with a packed layout. The buffer is write-only from
// the CPU side: every field update is one partial write of exactly the field's bytes at the
// field's packed offset, leaving all other bytes untouched.
type Block interface {
	// Kind returns the block kind.
	Kind() BlockKind

	// Layout returns the packed layout the block was allocated with.
	Layout() *layout.Layout

	// WriteField writes raw bytes to the field at path.
	//
	// Parameters:
	//   - path: the field path, e.g. "materials[3].specular"
	//   - data: the bytes to write, at most the slot's footprint
	//
	// Returns:
	//   - error: layout.ErrLayoutViolation if the path is unknown or the data would spill
	WriteField(path string, data []byte) error

	// WriteVec3 writes the 12 bytes of a 3-vector.
	WriteVec3(path string, v mgl32.Vec3) error

	// WriteMat4 writes the 64 bytes of a column-major 4x4 matrix.
	WriteMat4(path string, m mgl32.Mat4) error

	// WriteInt32 writes a 4-byte signed integer.
	WriteInt32(path string, v int32) error

	// WriteFloat32 writes a 4-byte float.
	WriteFloat32(path string, v float32) error
}

var _ Block = &block{}

// Allocate packs a schema and reserves a zero-initialized GPU buffer of exactly the packed
// size on the provider at the kind's binding index.
//
// Parameters:
//   - r: the renderer owning the buffer
//   - provider: the shared uniform provider
//   - kind: the block kind, which fixes the binding index
//   - schema: the block schema
//
// Returns:
//   - Block: the allocated block
//   - error: a layout error, ErrBlockAlreadyAllocated, or a wrapped renderer.ErrResourceCreation
func Allocate(r renderer.Renderer, provider bind_group_provider.BindGroupProvider, kind BlockKind, schema layout.Schema) (Block, error) {
	l, err := layout.Pack(schema)
	if err != nil {
		return nil, err
	}
	if provider.Buffer(kind.Binding()) != nil {
		return nil, fmt.Errorf("%w: %s at binding %d", ErrBlockAlreadyAllocated, kind, kind.Binding())
	}
	if err := r.InitUniformBuffer(provider, kind.Binding(), l.Size()); err != nil {
		return nil, fmt.Errorf("allocate %s block: %w", kind, err)
	}

	common.ComponentLogger("uniform").Debug("block allocated", "block", kind.String(), "binding", kind.Binding(), "size", l.Size())

	return &block{
		kind:     kind,
		layout:   l,
		renderer: r,
		provider: provider,
	}, nil
}

func (b *block) Kind() BlockKind {
	return b.kind
}

func (b *block) Layout() *layout.Layout {
	return b.layout
}

func (b *block) WriteField(path string, data []byte) error {
	slot, err := b.layout.Slot(path)
	if err != nil {
		return err
	}
	if err := b.layout.CheckRange(slot, len(data)); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renderer.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: b.provider,
		Target:   bind_group_provider.TargetBinding,
		Binding:  b.kind.Binding(),
		Offset:   slot.Offset,
		Data:     data,
	}})
}

func (b *block) WriteVec3(path string, v mgl32.Vec3) error {
	return b.WriteField(path, common.Float32sToBytes(v[0], v[1], v[2]))
}

func (b *block) WriteMat4(path string, m mgl32.Mat4) error {
	return b.WriteField(path, common.Float32sToBytes(m[:]...))
}

func (b *block) WriteInt32(path string, v int32) error {
	return b.WriteField(path, common.Uint32sToBytes(uint32(v)))
}

func (b *block) WriteFloat32(path string, v float32) error {
	return b.WriteField(path, common.Uint32sToBytes(math.Float32bits(v)))
}

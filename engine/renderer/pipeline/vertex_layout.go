package pipeline

// StepMode is the rate at which a vertex buffer advances: once per vertex, or once per drawn
// instance (the attribute divisor).
type StepMode int

const (
	// StepModeVertex advances the buffer once per vertex (divisor 0).
	StepModeVertex StepMode = iota

	// StepModeInstance advances the buffer once per drawn instance (divisor 1).
	StepModeInstance
)

// VertexFormat is the component layout of a single vertex attribute.
type VertexFormat int

const (
	// VertexFormatFloat32 is one 32-bit float.
	VertexFormatFloat32 VertexFormat = iota
	// VertexFormatFloat32x3 is three 32-bit floats.
	VertexFormatFloat32x3
	// VertexFormatFloat32x4 is four 32-bit floats.
	VertexFormatFloat32x4
)

// Size returns the attribute size in bytes.
func (f VertexFormat) Size() uint64 {
	switch f {
	case VertexFormatFloat32:
		return 4
	case VertexFormatFloat32x3:
		return 12
	case VertexFormatFloat32x4:
		return 16
	default:
		return 0
	}
}

// VertexAttribute binds a shader location (attribute slot) to a byte offset inside one buffer element.
type VertexAttribute struct {
	Location uint32
	Offset   uint64
	Format   VertexFormat
}

// VertexBufferLayout describes how one bound vertex buffer is split into attributes.
type VertexBufferLayout struct {
	ArrayStride uint64
	StepMode    StepMode
	Attributes  []VertexAttribute
}

// UniformBinding describes one uniform buffer entry of a bind group layout.
type UniformBinding struct {
	// Binding is the binding index inside the group.
	Binding uint32
	// MinSize is the exact block size the shader expects at this binding.
	MinSize uint64
}

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// FrontFace selects the winding order that marks a triangle as front-facing.
type FrontFace int

const (
	FrontFaceCCW FrontFace = iota
	FrontFaceCW
)

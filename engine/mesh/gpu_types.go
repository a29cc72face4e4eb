package mesh

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/pipeline"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// VertexSize is the stride of one interleaved vertex: position then normal, 6 floats.
	VertexSize = 24
	// InstanceSize is the stride of one instance record: a 4x4 model matrix then the material handle, 17 floats.
	InstanceSize = 68
)

// Vertex is one mesh vertex as laid out in the vertex buffer.
type Vertex struct {
	Position mgl32.Vec3 // offset  0: slot 0
	Normal   mgl32.Vec3 // offset 12: slot 1
}

// Marshal serializes the vertex into 24 little-endian bytes.
//
// Returns:
//   - []byte: 24-byte buffer ready for GPU upload.
func (v Vertex) Marshal() []byte {
	buf := make([]byte, VertexSize)
	v.marshalInto(buf)
	return buf
}

func (v Vertex) marshalInto(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(v.Normal[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(v.Normal[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(v.Normal[2]))
}

// Instance is one per-instance record: where to place a copy of the mesh and which material
// to shade it with.
type Instance struct {
	Model    mgl32.Mat4 // offset  0: slots 2-5, one column per slot
	Material float32    // offset 64: slot 6, a material registry handle
}

// Marshal serializes the instance into 68 little-endian bytes, matrix columns first.
//
// Returns:
//   - []byte: 68-byte buffer ready for GPU upload.
func (in Instance) Marshal() []byte {
	buf := make([]byte, InstanceSize)
	in.marshalInto(buf)
	return buf
}

func (in Instance) marshalInto(buf []byte) {
	for i, f := range in.Model {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	binary.LittleEndian.PutUint32(buf[64:68], math.Float32bits(in.Material))
}

// MarshalVertices serializes a vertex list into one contiguous buffer.
func MarshalVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexSize)
	for i, v := range vertices {
		v.marshalInto(buf[i*VertexSize:])
	}
	return buf
}

// MarshalIndices serializes 32-bit indices into one contiguous buffer.
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// MarshalInstances serializes instances into a buffer of capacity records. Records past
// len(instances) are zero.
func MarshalInstances(instances []Instance, capacity int) []byte {
	buf := make([]byte, capacity*InstanceSize)
	for i, in := range instances {
		in.marshalInto(buf[i*InstanceSize:])
	}
	return buf
}

// VertexLayouts returns the two vertex buffer layouts every mesh binds: buffer 0 advances per
// vertex and carries slots 0-1, buffer 1 advances per instance and carries slots 2-6.
//
// Returns:
//   - []pipeline.VertexBufferLayout: buffer 0 then buffer 1
func VertexLayouts() []pipeline.VertexBufferLayout {
	return []pipeline.VertexBufferLayout{
		{
			ArrayStride: VertexSize,
			StepMode:    pipeline.StepModeVertex,
			Attributes: []pipeline.VertexAttribute{
				{Location: 0, Offset: 0, Format: pipeline.VertexFormatFloat32x3},
				{Location: 1, Offset: 12, Format: pipeline.VertexFormatFloat32x3},
			},
		},
		{
			ArrayStride: InstanceSize,
			StepMode:    pipeline.StepModeInstance,
			Attributes: []pipeline.VertexAttribute{
				{Location: 2, Offset: 0, Format: pipeline.VertexFormatFloat32x4},
				{Location: 3, Offset: 16, Format: pipeline.VertexFormatFloat32x4},
				{Location: 4, Offset: 32, Format: pipeline.VertexFormatFloat32x4},
				{Location: 5, Offset: 48, Format: pipeline.VertexFormatFloat32x4},
				{Location: 6, Offset: 64, Format: pipeline.VertexFormatFloat32},
			},
		},
	}
}

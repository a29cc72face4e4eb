package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-xmas/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidShape is returned for non-positive radii or a sphere precision below 2.
var ErrInvalidShape = errors.New("invalid shape parameters")

// SphereVertexCount returns the number of vertices Sphere generates: two poles plus
// precision-1 rings of 2*precision vertices.
func SphereVertexCount(precision int) int {
	return 2 + (precision-1)*2*precision
}

// SphereIndexCount returns the number of indices Sphere generates. Each of the two polar caps
// is a fan of 2*precision triangles and each of the precision-2 middle bands holds
// 2*precision quads of two triangles, so the total is 12*precision*(precision-1).
func SphereIndexCount(precision int) int {
	return 12 * precision * (precision - 1)
}

// SphereIndex maps a (layer, slice) grid position to a vertex index. Layer 0 is the top pole
// and layer precision the bottom pole; both resolve to their single vertex whatever the slice.
// Ring slices wrap modulo 2*precision to close the seam.
//
// Parameters:
//   - layer: the latitude layer in [0, precision]
//   - slice: the longitude slice, any non-negative value
//   - precision: the sphere precision
//
// Returns:
//   - uint32: the vertex index
func SphereIndex(layer, slice, precision int) uint32 {
	switch layer {
	case 0:
		return 0
	case precision:
		return uint32((layer-1)*2*precision + 1)
	default:
		return uint32((layer-1)*2*precision + 1 + slice%(2*precision))
	}
}

// Sphere tessellates a sphere into latitude layers and longitude slices. The output is fully
// determined by the arguments.
//
// Vertex order is the top pole, then each ring from top to bottom starting at slice 0, then
// the bottom pole. The layer angle is pi*layer/precision and the slice angle pi*slice/precision.
//
// Parameters:
//   - center: the sphere center
//   - radius: the sphere radius, positive
//   - precision: the number of layers from pole to pole, at least 2
//
// Returns:
//   - []mesh.Vertex: SphereVertexCount(precision) vertices
//   - []uint32: SphereIndexCount(precision) indices
//   - error: ErrInvalidShape for bad parameters
func Sphere(center mgl32.Vec3, radius float32, precision int) ([]mesh.Vertex, []uint32, error) {
	if precision < 2 {
		return nil, nil, fmt.Errorf("%w: sphere precision %d, need at least 2", ErrInvalidShape, precision)
	}
	if radius <= 0 {
		return nil, nil, fmt.Errorf("%w: sphere radius %v", ErrInvalidShape, radius)
	}
	return sphereVertices(center, radius, precision), sphereIndices(precision), nil
}

func sphereVertices(center mgl32.Vec3, radius float32, precision int) []mesh.Vertex {
	step := math.Pi / float64(precision)
	vertices := make([]mesh.Vertex, 0, SphereVertexCount(precision))

	vertices = append(vertices, mesh.Vertex{
		Position: mgl32.Vec3{center[0], center[1] + radius, center[2]},
		Normal:   mgl32.Vec3{0, 1, 0},
	})

	for layer := 1; layer < precision; layer++ {
		v := step * float64(layer)
		sinV, cosV := float32(math.Sin(v)), float32(math.Cos(v))
		ring := radius * sinV
		for slice := 0; slice < 2*precision; slice++ {
			h := step * float64(slice)
			sinH, cosH := float32(math.Sin(h)), float32(math.Cos(h))
			vertices = append(vertices, mesh.Vertex{
				Position: mgl32.Vec3{center[0] + ring*sinH, center[1] + radius*cosV, center[2] + ring*cosH},
				Normal:   mgl32.Vec3{sinH, cosV, cosH},
			})
		}
	}

	vertices = append(vertices, mesh.Vertex{
		Position: mgl32.Vec3{center[0], center[1] - radius, center[2]},
		Normal:   mgl32.Vec3{0, -1, 0},
	})
	return vertices
}

// sphereIndices emits the triangles between each layer and the one above it.
func sphereIndices(precision int) []uint32 {
	idx := func(layer, slice int) uint32 { return SphereIndex(layer, slice, precision) }
	slices := 2 * precision
	indices := make([]uint32, 0, SphereIndexCount(precision))

	for slice := 0; slice < slices; slice++ {
		indices = append(indices, idx(0, slice), idx(1, slice+1), idx(1, slice))
	}

	for layer := 2; layer < precision; layer++ {
		for slice := 0; slice < slices; slice++ {
			indices = append(indices,
				idx(layer-1, slice), idx(layer, slice+1), idx(layer, slice),
				idx(layer-1, slice), idx(layer-1, slice+1), idx(layer, slice+1),
			)
		}
	}

	for slice := 0; slice < slices; slice++ {
		indices = append(indices, idx(precision-1, slice), idx(precision-1, slice+1), idx(precision, slice))
	}
	return indices
}

package geometry

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-xmas/engine/mesh"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// Part is one piece of a multi-material model: geometry drawn with a single material.
type Part struct {
	Name     string
	Material material.Material
	Vertices []mesh.Vertex
	Indices  []uint32
}

// Snowflake builds a flat six-pointed flake in the YZ plane: two triangles per side, each side
// with its own vertices so the two faces carry opposite normals.
//
// Vertices alternate between the +X face (even indices) and the -X face (odd indices), one
// pair per 60 degree step.
//
// Parameters:
//   - radius: the distance from the center to each point
//
// Returns:
//   - []mesh.Vertex: 12 vertices
//   - []uint32: 12 indices
func Snowflake(radius float32) ([]mesh.Vertex, []uint32) {
	normal := mgl32.Vec3{1, 0, 0}
	vertices := make([]mesh.Vertex, 0, 12)
	for i := 0; i < 6; i++ {
		a := float64(i) * math.Pi / 3
		y, z := radius*float32(math.Cos(a)), radius*float32(math.Sin(a))
		vertices = append(vertices,
			mesh.Vertex{Position: mgl32.Vec3{0, y, z}, Normal: normal},
			mesh.Vertex{Position: mgl32.Vec3{0, -y, -z}, Normal: mgl32.Vec3{-1, 0, 0}},
		)
	}
	indices := []uint32{
		8, 4, 0,
		10, 6, 2,
		1, 5, 9,
		3, 7, 11,
	}
	return vertices, indices
}

// GroundQuad builds a square at height y spanning [-halfExtent, halfExtent] on X and Z, facing up.
//
// Parameters:
//   - y: the plane height
//   - halfExtent: half the side length
//
// Returns:
//   - []mesh.Vertex: 4 vertices
//   - []uint32: 6 indices
func GroundQuad(y, halfExtent float32) ([]mesh.Vertex, []uint32) {
	up := mgl32.Vec3{0, 1, 0}
	h := halfExtent
	return []mesh.Vertex{
			{Position: mgl32.Vec3{-h, y, -h}, Normal: up}, // far
			{Position: mgl32.Vec3{-h, y, h}, Normal: up},  // left
			{Position: mgl32.Vec3{h, y, -h}, Normal: up},  // right
			{Position: mgl32.Vec3{h, y, h}, Normal: up},   // near
		}, []uint32{
			0, 1, 2,
			1, 3, 2,
		}
}

// Cone builds an open-bottomed cone with smooth side normals. Each side triangle has its own
// apex vertex so the apex normal follows the triangle's mid angle.
//
// Parameters:
//   - base: the center of the base circle
//   - radius: the base radius
//   - height: the distance from base to apex along +Y
//   - segments: the number of sides, at least 3
//
// Returns:
//   - []mesh.Vertex: 2*segments vertices
//   - []uint32: 3*segments indices
//   - error: ErrInvalidShape for bad parameters
func Cone(base mgl32.Vec3, radius, height float32, segments int) ([]mesh.Vertex, []uint32, error) {
	if segments < 3 || radius <= 0 || height <= 0 {
		return nil, nil, fmt.Errorf("%w: cone radius %v height %v segments %d", ErrInvalidShape, radius, height, segments)
	}
	sideNormal := func(a float64) mgl32.Vec3 {
		return mgl32.Vec3{float32(math.Sin(a)) * height, radius, float32(math.Cos(a)) * height}.Normalize()
	}
	step := 2 * math.Pi / float64(segments)
	apex := base.Add(mgl32.Vec3{0, height, 0})

	vertices := make([]mesh.Vertex, 0, 2*segments)
	for i := 0; i < segments; i++ {
		a := step * float64(i)
		vertices = append(vertices, mesh.Vertex{
			Position: base.Add(mgl32.Vec3{radius * float32(math.Sin(a)), 0, radius * float32(math.Cos(a))}),
			Normal:   sideNormal(a),
		})
	}
	for i := 0; i < segments; i++ {
		vertices = append(vertices, mesh.Vertex{Position: apex, Normal: sideNormal(step * (float64(i) + 0.5))})
	}

	indices := make([]uint32, 0, 3*segments)
	for i := 0; i < segments; i++ {
		next := (i + 1) % segments
		indices = append(indices, uint32(i), uint32(next), uint32(segments+i))
	}
	return vertices, indices, nil
}

// Cylinder builds an uncapped vertical tube.
//
// Parameters:
//   - base: the center of the bottom circle
//   - radius: the tube radius
//   - height: the tube length along +Y
//   - segments: the number of sides, at least 3
//
// Returns:
//   - []mesh.Vertex: 2*segments vertices
//   - []uint32: 6*segments indices
//   - error: ErrInvalidShape for bad parameters
func Cylinder(base mgl32.Vec3, radius, height float32, segments int) ([]mesh.Vertex, []uint32, error) {
	if segments < 3 || radius <= 0 || height <= 0 {
		return nil, nil, fmt.Errorf("%w: cylinder radius %v height %v segments %d", ErrInvalidShape, radius, height, segments)
	}
	step := 2 * math.Pi / float64(segments)
	vertices := make([]mesh.Vertex, 0, 2*segments)
	for _, y := range []float32{0, height} {
		for i := 0; i < segments; i++ {
			a := step * float64(i)
			n := mgl32.Vec3{float32(math.Sin(a)), 0, float32(math.Cos(a))}
			vertices = append(vertices, mesh.Vertex{
				Position: base.Add(mgl32.Vec3{radius * n[0], y, radius * n[2]}),
				Normal:   n,
			})
		}
	}

	indices := make([]uint32, 0, 6*segments)
	for i := 0; i < segments; i++ {
		next := (i + 1) % segments
		b0, b1 := uint32(i), uint32(next)
		t0, t1 := uint32(segments+i), uint32(segments+next)
		indices = append(indices, b0, b1, t0, b1, t1, t0)
	}
	return vertices, indices, nil
}

// appendGeometry concatenates b onto a, rebasing b's indices.
func appendGeometry(av []mesh.Vertex, ai []uint32, bv []mesh.Vertex, bi []uint32) ([]mesh.Vertex, []uint32) {
	offset := uint32(len(av))
	for _, idx := range bi {
		ai = append(ai, idx+offset)
	}
	return append(av, bv...), ai
}

// Tree builds a stylized fir standing on y = -5: a brown trunk and three stacked green cones,
// one Part per material. It is used when no tree model file is configured.
//
// Returns:
//   - []Part: the trunk part then the foliage part
//   - error: never non-nil for the built-in dimensions
func Tree() ([]Part, error) {
	const segments = 24

	trunkV, trunkI, err := Cylinder(mgl32.Vec3{0, -5, 0}, 0.35, 1.2, segments)
	if err != nil {
		return nil, err
	}

	var foliageV []mesh.Vertex
	var foliageI []uint32
	for _, tier := range []struct {
		baseY, radius, height float32
	}{
		{-4.4, 2.4, 3.6},
		{-2.6, 1.9, 3.4},
		{-0.7, 1.3, 3.6},
	} {
		v, i, err := Cone(mgl32.Vec3{0, tier.baseY, 0}, tier.radius, tier.height, segments)
		if err != nil {
			return nil, err
		}
		foliageV, foliageI = appendGeometry(foliageV, foliageI, v, i)
	}

	return []Part{
		{
			Name: "trunk",
			Material: material.NewMaterial(
				material.WithName("bark"),
				material.WithAmbient(mgl32.Vec3{0.19, 0.12, 0.07}),
				material.WithDiffuse(mgl32.Vec3{0.40, 0.26, 0.13}),
				material.WithSpecular(mgl32.Vec3{0.05, 0.05, 0.05}),
				material.WithShininess(8),
			),
			Vertices: trunkV,
			Indices:  trunkI,
		},
		{
			Name: "foliage",
			Material: material.NewMaterial(
				material.WithName("needles"),
				material.WithAmbient(mgl32.Vec3{0.02, 0.12, 0.04}),
				material.WithDiffuse(mgl32.Vec3{0.07, 0.42, 0.14}),
				material.WithSpecular(mgl32.Vec3{0.10, 0.20, 0.10}),
				material.WithShininess(16),
			),
			Vertices: foliageV,
			Indices:  foliageI,
		},
	}, nil
}

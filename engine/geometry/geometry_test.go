package geometry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-5

func TestSphereCounts(t *testing.T) {
	for _, p := range []int{2, 3, 8, 16} {
		v, i, err := Sphere(mgl32.Vec3{}, 1, p)
		require.NoError(t, err)
		assert.Len(t, v, SphereVertexCount(p), "precision %d", p)
		assert.Len(t, i, SphereIndexCount(p), "precision %d", p)
		assert.Equal(t, 2+(p-1)*2*p, len(v))
		assert.Equal(t, 12*p*(p-1), len(i))
	}
}

func TestSphereRejectsBadParameters(t *testing.T) {
	_, _, err := Sphere(mgl32.Vec3{}, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidShape)
	_, _, err = Sphere(mgl32.Vec3{}, 0, 8)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestSphereIndexPolesAndWrap(t *testing.T) {
	p := 8
	for _, slice := range []int{0, 3, 15, 100} {
		assert.Equal(t, uint32(0), SphereIndex(0, slice, p))
		assert.Equal(t, uint32(SphereVertexCount(p)-1), SphereIndex(p, slice, p))
	}
	assert.Equal(t, uint32(1), SphereIndex(1, 0, p))
	assert.Equal(t, SphereIndex(1, 0, p), SphereIndex(1, 2*p, p), "seam wraps")
	assert.Equal(t, SphereIndex(3, 5, p), SphereIndex(3, 5+2*p, p))
	assert.Equal(t, uint32(2*p+1), SphereIndex(2, 0, p))
}

func TestSphereIndicesInRange(t *testing.T) {
	v, indices, err := Sphere(mgl32.Vec3{}, 1, 8)
	require.NoError(t, err)
	for _, idx := range indices {
		assert.Less(t, int(idx), len(v))
	}
	// Every vertex is referenced.
	seen := make(map[uint32]bool)
	for _, idx := range indices {
		seen[idx] = true
	}
	assert.Len(t, seen, len(v))
}

func TestSphereVerticesLieOnSurface(t *testing.T) {
	center := mgl32.Vec3{1, -2, 3}
	vertices, _, err := Sphere(center, 0.2, 8)
	require.NoError(t, err)

	assert.True(t, vertices[0].Position.ApproxEqual(mgl32.Vec3{1, -1.8, 3}))
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, vertices[0].Normal)
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, vertices[len(vertices)-1].Normal)

	for _, v := range vertices {
		assert.InDelta(t, 0.2, v.Position.Sub(center).Len(), eps)
	}
}

func TestSphereNormalParameterization(t *testing.T) {
	p := 4
	vertices, _, err := Sphere(mgl32.Vec3{}, 1, p)
	require.NoError(t, err)

	// layer 1, slice 1
	layerAngle := math.Pi / float64(p)
	sliceAngle := math.Pi / float64(p)
	n := vertices[SphereIndex(1, 1, p)].Normal
	assert.InDelta(t, math.Sin(sliceAngle), float64(n[0]), eps)
	assert.InDelta(t, math.Cos(layerAngle), float64(n[1]), eps)
	assert.InDelta(t, math.Cos(sliceAngle), float64(n[2]), eps)
}

func TestSphereIsDeterministic(t *testing.T) {
	v1, i1, err := Sphere(mgl32.Vec3{0.5, 0, 0}, 0.2, 8)
	require.NoError(t, err)
	v2, i2, err := Sphere(mgl32.Vec3{0.5, 0, 0}, 0.2, 8)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, i1, i2)
}

func TestSphereFirstTriangles(t *testing.T) {
	_, indices, err := Sphere(mgl32.Vec3{}, 1, 2)
	require.NoError(t, err)
	// Top fan: pole, next ring vertex, ring vertex.
	assert.Equal(t, []uint32{0, 2, 1}, indices[:3])
	// Last top-fan triangle closes the seam.
	assert.Equal(t, []uint32{0, 1, 4}, indices[9:12])
	// Bottom fan.
	assert.Equal(t, []uint32{1, 2, 5}, indices[12:15])
}

func TestSnowflake(t *testing.T) {
	v, i := Snowflake(0.05)
	require.Len(t, v, 12)
	assert.Equal(t, []uint32{8, 4, 0, 10, 6, 2, 1, 5, 9, 3, 7, 11}, i)

	for k, vert := range v {
		assert.InDelta(t, 0.05, vert.Position.Len(), eps)
		assert.Zero(t, vert.Position[0])
		if k%2 == 0 {
			assert.Equal(t, mgl32.Vec3{1, 0, 0}, vert.Normal)
		} else {
			assert.Equal(t, mgl32.Vec3{-1, 0, 0}, vert.Normal)
			assert.True(t, vert.Position.ApproxEqual(v[k-1].Position.Mul(-1)))
		}
	}
	assert.True(t, v[0].Position.ApproxEqual(mgl32.Vec3{0, 0.05, 0}))
}

func TestGroundQuad(t *testing.T) {
	v, i := GroundQuad(-5, 10)
	require.Len(t, v, 4)
	assert.Equal(t, []uint32{0, 1, 2, 1, 3, 2}, i)
	assert.Equal(t, mgl32.Vec3{-10, -5, -10}, v[0].Position)
	assert.Equal(t, mgl32.Vec3{10, -5, 10}, v[3].Position)
	for _, vert := range v {
		assert.Equal(t, mgl32.Vec3{0, 1, 0}, vert.Normal)
	}
}

func TestConeAndCylinder(t *testing.T) {
	v, i, err := Cone(mgl32.Vec3{0, 1, 0}, 2, 3, 6)
	require.NoError(t, err)
	assert.Len(t, v, 12)
	assert.Len(t, i, 18)
	assert.Equal(t, mgl32.Vec3{0, 4, 0}, v[6].Position)
	for _, vert := range v {
		assert.InDelta(t, 1, vert.Normal.Len(), eps)
		assert.Greater(t, vert.Normal[1], float32(0))
	}

	v, i, err = Cylinder(mgl32.Vec3{}, 1, 2, 8)
	require.NoError(t, err)
	assert.Len(t, v, 16)
	assert.Len(t, i, 48)
	for _, idx := range i {
		assert.Less(t, int(idx), len(v))
	}

	_, _, err = Cone(mgl32.Vec3{}, 1, 1, 2)
	assert.ErrorIs(t, err, ErrInvalidShape)
	_, _, err = Cylinder(mgl32.Vec3{}, -1, 1, 8)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestTree(t *testing.T) {
	parts, err := Tree()
	require.NoError(t, err)
	require.Len(t, parts, 2)

	for _, p := range parts {
		require.NotNil(t, p.Material, p.Name)
		require.NotEmpty(t, p.Indices, p.Name)
		assert.Zero(t, len(p.Indices)%3, p.Name)
		for _, idx := range p.Indices {
			assert.Less(t, int(idx), len(p.Vertices), p.Name)
		}
		for _, v := range p.Vertices {
			assert.GreaterOrEqual(t, v.Position[1], float32(-5), p.Name)
		}
	}
	assert.Equal(t, "bark", parts[0].Material.Name())
	assert.Equal(t, "needles", parts[1].Material.Name())
}

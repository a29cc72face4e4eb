package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xmas/engine/uniform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCamera(t *testing.T, options ...CameraBuilderOption) (Camera, uniform.Set, *renderer.HeadlessBackend) {
	t.Helper()
	backend := renderer.NewHeadlessBackend()
	r := renderer.NewRenderer(backend)
	set, err := uniform.NewSet(r)
	require.NoError(t, err)
	t.Cleanup(set.Release)

	backend.ResetWrites()
	c, err := NewCamera(set.Camera(), options...)
	require.NoError(t, err)
	return c, set, backend
}

func cameraBytes(set uniform.Set, backend *renderer.HeadlessBackend) []byte {
	return backend.Contents(set.Provider().Buffer(uniform.BlockCamera.Binding()))
}

func mat4At(b []byte, off int) mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range m {
		m[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[off+4*i:]))
	}
	return m
}

func TestNewCameraUploadsFullState(t *testing.T) {
	c, set, backend := newTestCamera(t, WithAspect(1.5))

	writes := backend.Writes()
	require.Len(t, writes, 3)
	assert.Equal(t, uint64(0), writes[0].Offset)
	assert.Equal(t, 12, writes[0].Len)
	assert.Equal(t, uint64(16), writes[1].Offset)
	assert.Equal(t, 64, writes[1].Len)
	assert.Equal(t, uint64(80), writes[2].Offset)
	assert.Equal(t, 64, writes[2].Len)

	data := cameraBytes(set, backend)
	assert.Equal(t, c.ViewMatrix(), mat4At(data, 16))
	assert.Equal(t, c.ProjectionMatrix(), mat4At(data, 80))
}

// assertVec3InDelta compares component-wise with an absolute tolerance, so float32 trig residue
// next to an exact zero still matches.
func assertVec3InDelta(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d of %v", i, got)
	}
}

func TestPositionFollowsOrbit(t *testing.T) {
	c, _, _ := newTestCamera(t, WithOrbit(common.SphericalPoint{Radius: 10, Azimuth: 0, Elevation: math.Pi / 2}))
	assertVec3InDelta(t, mgl32.Vec3{0, 0, 10}, c.Position())

	require.NoError(t, c.Rotate(math.Pi/2, 0))
	assertVec3InDelta(t, mgl32.Vec3{10, 0, 0}, c.Position())

	require.NoError(t, c.Rotate(0, -math.Pi/2))
	assertVec3InDelta(t, mgl32.Vec3{0, 10, 0}, c.Position())
}

func TestRotateUploadsPositionAndViewOnly(t *testing.T) {
	c, set, backend := newTestCamera(t)
	projection := mat4At(cameraBytes(set, backend), 80)
	backend.ResetWrites()

	require.NoError(t, c.Rotate(0.3, -0.2))

	writes := backend.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, uint64(0), writes[0].Offset)
	assert.Equal(t, uint64(16), writes[1].Offset)
	assert.Equal(t, projection, mat4At(cameraBytes(set, backend), 80))
}

func TestRotateByZeroIsIdempotent(t *testing.T) {
	c, set, backend := newTestCamera(t)
	before := cameraBytes(set, backend)

	require.NoError(t, c.Rotate(0, 0))

	assert.Equal(t, before, cameraBytes(set, backend))
}

func TestElevationIsNotClamped(t *testing.T) {
	c, _, _ := newTestCamera(t)
	start := c.Orbit().Elevation

	for range 10 {
		require.NoError(t, c.Rotate(0, 1))
	}
	assert.InDelta(t, start+10, c.Orbit().Elevation, 1e-4)
}

func TestOnResizeUploadsProjectionOnly(t *testing.T) {
	c, set, backend := newTestCamera(t)
	view := mat4At(cameraBytes(set, backend), 16)
	backend.ResetWrites()

	require.NoError(t, c.OnResize(2))

	writes := backend.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, uint64(80), writes[0].Offset)
	assert.Equal(t, float32(2), c.Aspect())
	assert.Equal(t, view, mat4At(cameraBytes(set, backend), 16))
	assert.Equal(t, common.Perspective(common.Radians(45), 2, 0.1, 100), mat4At(cameraBytes(set, backend), 80))
}

func TestOnResizeRejectsInvalidAspect(t *testing.T) {
	c, _, backend := newTestCamera(t)
	backend.ResetWrites()

	for _, aspect := range []float32{0, -1, float32(math.NaN())} {
		assert.ErrorIs(t, c.OnResize(aspect), ErrInvalidAspect)
	}
	assert.Empty(t, backend.Writes())
	assert.Equal(t, float32(1), c.Aspect())
}

func TestNewCameraRejectsInvalidAspect(t *testing.T) {
	backend := renderer.NewHeadlessBackend()
	set, err := uniform.NewSet(renderer.NewRenderer(backend))
	require.NoError(t, err)
	defer set.Release()

	_, err = NewCamera(set.Camera(), WithAspect(0))
	assert.ErrorIs(t, err, ErrInvalidAspect)
}

func TestDragToRotation(t *testing.T) {
	dAz, dEl := DragToRotation(100, 50, 800, 400, DragPointer)
	assert.InDelta(t, -2*math.Pi/800*100, dAz, 1e-6)
	assert.InDelta(t, -2*math.Pi/800*50, dEl, 1e-6)

	tAz, tEl := DragToRotation(100, 50, 800, 400, DragTouch)
	assert.Equal(t, dAz, tAz)
	assert.Equal(t, -dEl, tEl)

	zAz, zEl := DragToRotation(10, 10, 0, 0, DragPointer)
	assert.Zero(t, zAz)
	assert.Zero(t, zEl)
}

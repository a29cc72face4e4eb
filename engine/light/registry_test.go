package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xmas/engine/uniform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) (Registry, *renderer.HeadlessBackend, func() []byte) {
	t.Helper()
	backend := renderer.NewHeadlessBackend()
	set, err := uniform.NewSet(renderer.NewRenderer(backend))
	require.NoError(t, err)
	reg, err := NewRegistry(set.Lights())
	require.NoError(t, err)
	contents := func() []byte {
		return backend.Contents(set.Provider().Buffer(uniform.BlockLights.Binding()))
	}
	return reg, backend, contents
}

func f32(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func count(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

func TestNewRegistryStartsEmpty(t *testing.T) {
	reg, _, contents := newRegistry(t)
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, 4, reg.Cap())
	assert.Equal(t, int32(0), count(contents()))
}

func TestAppendWritesRecordAndCount(t *testing.T) {
	reg, _, contents := newRegistry(t)

	_, err := reg.Append(NewLight(WithName("key"), WithPosition(0, 10, 0)))
	require.NoError(t, err)
	h, err := reg.Append(NewLight(
		WithName("fill"),
		WithPosition(1, 2, 3),
		WithAmbient(mgl32.Vec3{0.1, 0.2, 0.3}),
		WithDiffuse(mgl32.Vec3{0.4, 0.5, 0.6}),
		WithSpecular(mgl32.Vec3{0.7, 0.8, 0.9}),
	))
	require.NoError(t, err)
	assert.Equal(t, Handle(1), h)

	data := contents()
	assert.Equal(t, int32(2), count(data))

	base := 16 + 64
	for i, want := range []float32{1, 2, 3} {
		assert.Equal(t, want, f32(data, base+i*4))
	}
	assert.Equal(t, float32(0.2), f32(data, base+16+4))
	assert.Equal(t, float32(0.6), f32(data, base+32+8))
	assert.Equal(t, float32(0.7), f32(data, base+48))

	l, ok := reg.Get(h)
	require.True(t, ok)
	assert.Equal(t, "fill", l.Name())
}

func TestAppendAtCapacityLeavesCountUntouched(t *testing.T) {
	reg, backend, contents := newRegistry(t)
	for i := 0; i < 4; i++ {
		_, err := reg.Append(NewLight())
		require.NoError(t, err)
	}
	backend.ResetWrites()

	_, err := reg.Append(NewLight())
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Empty(t, backend.Writes())
	assert.Equal(t, int32(4), count(contents()))
	assert.Equal(t, 4, reg.Len())

	_, ok := reg.Get(4)
	assert.False(t, ok)
}

package uniform

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-xmas/engine/layout"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSet(t *testing.T) (Set, *renderer.HeadlessBackend) {
	t.Helper()
	backend := renderer.NewHeadlessBackend()
	r := renderer.NewRenderer(backend)
	s, err := NewSet(r)
	require.NoError(t, err)
	t.Cleanup(s.Release)
	return s, backend
}

func float32At(b []byte, off uint64) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func TestNewSetAllocatesExactBlockSizes(t *testing.T) {
	s, backend := newSet(t)

	for kind, want := range map[BlockKind]uint64{
		BlockCamera:    144,
		BlockLights:    272,
		BlockMaterials: 4800,
	} {
		buf := s.Provider().Buffer(kind.Binding())
		require.NotNil(t, buf, kind.String())
		assert.Equal(t, want, buf.Size(), kind.String())
		assert.Equal(t, make([]byte, want), backend.Contents(buf), "%s is zero-initialized", kind)
	}
	assert.NotNil(t, s.Provider().BindGroup())
	assert.Equal(t, []int{0, 1, 2}, []int{BlockCamera.Binding(), BlockLights.Binding(), BlockMaterials.Binding()})
}

func TestUniformBindingsMatchBlockSizes(t *testing.T) {
	s, _ := newSet(t)
	bindings := s.UniformBindings()
	require.Len(t, bindings, 3)
	assert.Equal(t, uint32(0), bindings[0].Binding)
	assert.Equal(t, uint64(144), bindings[0].MinSize)
	assert.Equal(t, uint32(1), bindings[1].Binding)
	assert.Equal(t, uint64(272), bindings[1].MinSize)
	assert.Equal(t, uint32(2), bindings[2].Binding)
	assert.Equal(t, uint64(4800), bindings[2].MinSize)
}

func TestWriteFieldIssuesOnePartialWrite(t *testing.T) {
	s, backend := newSet(t)
	backend.ResetWrites()

	require.NoError(t, s.Materials().WriteVec3("materials[2].diffuse", mgl32.Vec3{1, 2, 3}))

	writes := backend.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, uint64(2*48+16), writes[0].Offset)
	assert.Equal(t, 12, writes[0].Len)

	data := backend.Contents(s.Provider().Buffer(BlockMaterials.Binding()))
	assert.Equal(t, float32(1), float32At(data, 112))
	assert.Equal(t, float32(2), float32At(data, 116))
	assert.Equal(t, float32(3), float32At(data, 120))
	// The padding word after the vector stays untouched.
	assert.Equal(t, float32(0), float32At(data, 124))
}

func TestShininessPacksIntoSpecularPadding(t *testing.T) {
	s, backend := newSet(t)

	require.NoError(t, s.Materials().WriteVec3("materials[0].specular", mgl32.Vec3{0.5, 0.5, 0.5}))
	require.NoError(t, s.Materials().WriteFloat32("materials[0].shininess", 225))

	data := backend.Contents(s.Provider().Buffer(BlockMaterials.Binding()))
	assert.Equal(t, float32(0.5), float32At(data, 32))
	assert.Equal(t, float32(225), float32At(data, 44))
}

func TestCameraWrites(t *testing.T) {
	s, backend := newSet(t)
	view := mgl32.Translate3D(1, 2, 3)

	require.NoError(t, s.Camera().WriteMat4("view", view))
	require.NoError(t, s.Camera().WriteVec3("position", mgl32.Vec3{4, 5, 6}))

	data := backend.Contents(s.Provider().Buffer(BlockCamera.Binding()))
	assert.Equal(t, float32(4), float32At(data, 0))
	// Column-major: translation lives in the fourth column.
	assert.Equal(t, float32(1), float32At(data, 16+48))
	assert.Equal(t, float32(2), float32At(data, 16+52))
	assert.Equal(t, float32(3), float32At(data, 16+56))
	assert.Equal(t, make([]byte, 64), data[80:144], "projection untouched")
}

func TestWriteInt32(t *testing.T) {
	s, backend := newSet(t)
	require.NoError(t, s.Lights().WriteInt32("count", 3))

	data := backend.Contents(s.Provider().Buffer(BlockLights.Binding()))
	assert.Equal(t, int32(3), int32(binary.LittleEndian.Uint32(data)))
}

func TestWriteFieldRejectsViolations(t *testing.T) {
	s, backend := newSet(t)
	backend.ResetWrites()

	assert.ErrorIs(t, s.Materials().WriteVec3("materials[100].ambient", mgl32.Vec3{}), layout.ErrIndexOutOfRange)
	assert.ErrorIs(t, s.Camera().WriteVec3("eye", mgl32.Vec3{}), layout.ErrUnknownField)
	assert.ErrorIs(t, s.Camera().WriteField("position", make([]byte, 20)), layout.ErrLayoutViolation)
	assert.ErrorIs(t, s.Materials().WriteField("materials[0].shininess", make([]byte, 8)), layout.ErrLayoutViolation)
	assert.ErrorIs(t, s.Lights().WriteField("count", nil), layout.ErrLayoutViolation)

	assert.Empty(t, backend.Writes())
}

func TestCustomCapacities(t *testing.T) {
	r := renderer.NewRenderer(renderer.NewHeadlessBackend())
	s, err := NewSet(r, WithLightCapacity(8), WithMaterialCapacity(10), WithLabel("custom"))
	require.NoError(t, err)

	n, err := s.Lights().Layout().Len("lights")
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, uint64(480), s.Materials().Layout().Size())
	assert.Equal(t, "custom", s.Provider().Label())
}

func TestNewSetFailsOnResourceCreation(t *testing.T) {
	backend := renderer.NewHeadlessBackend()
	backend.FailCreate(errors.New("out of memory"))

	_, err := NewSet(renderer.NewRenderer(backend))
	assert.ErrorIs(t, err, renderer.ErrResourceCreation)
}

func TestAllocateRejectsDuplicateBinding(t *testing.T) {
	r := renderer.NewRenderer(renderer.NewHeadlessBackend())
	provider := bind_group_provider.NewBindGroupProvider("u")

	_, err := Allocate(r, provider, BlockCamera, CameraSchema())
	require.NoError(t, err)
	_, err = Allocate(r, provider, BlockCamera, CameraSchema())
	assert.ErrorIs(t, err, ErrBlockAlreadyAllocated)
}

func TestAllocateRejectsOversizedSchema(t *testing.T) {
	r := renderer.NewRenderer(renderer.NewHeadlessBackend())
	provider := bind_group_provider.NewBindGroupProvider("u")

	_, err := Allocate(r, provider, BlockMaterials, MaterialsSchema(5000))
	assert.ErrorIs(t, err, layout.ErrLayoutViolation)
	assert.Nil(t, provider.Buffer(BlockMaterials.Binding()))
}

func TestSetLabels(t *testing.T) {
	r := renderer.NewRenderer(renderer.NewHeadlessBackend())

	a, err := NewSet(r)
	require.NoError(t, err)
	defer a.Release()
	b, err := NewSet(r, WithLabel(""))
	require.NoError(t, err)
	defer b.Release()

	for _, s := range []Set{a, b} {
		label := s.Provider().Label()
		require.True(t, strings.HasPrefix(label, "Uniforms "), label)
		_, err := uuid.Parse(strings.TrimPrefix(label, "Uniforms "))
		assert.NoError(t, err)
	}
	assert.NotEqual(t, a.Provider().Label(), b.Provider().Label())

	named, err := NewSet(r, WithLabel("tree Uniforms"))
	require.NoError(t, err)
	defer named.Release()
	assert.Equal(t, "tree Uniforms", named.Provider().Label())
}

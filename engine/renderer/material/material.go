package material

import "github.com/go-gl/mathgl/mgl32"

// material is the implementation of the Material interface.
type material struct {
	name      string
	ambient   mgl32.Vec3
	diffuse   mgl32.Vec3
	specular  mgl32.Vec3
	shininess float32
}

// Material defines a Phong surface: the ambient, diffuse and specular reflectance colors and
// the specular exponent. Materials are immutable once built; register one with a Registry to
// obtain the handle instances refer to.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Ambient retrieves the ambient reflectance color.
	//
	// Returns:
	//   - mgl32.Vec3: the color as (r, g, b)
	Ambient() mgl32.Vec3

	// Diffuse retrieves the diffuse reflectance color.
	//
	// Returns:
	//   - mgl32.Vec3: the color as (r, g, b)
	Diffuse() mgl32.Vec3

	// Specular retrieves the specular reflectance color.
	//
	// Returns:
	//   - mgl32.Vec3: the color as (r, g, b)
	Specular() mgl32.Vec3

	// Shininess retrieves the specular exponent.
	//
	// Returns:
	//   - float32: the exponent, higher is a tighter highlight
	Shininess() float32
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
// Unset colors default to a mid grey diffuse surface with a faint white highlight.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		ambient:   mgl32.Vec3{0.1, 0.1, 0.1},
		diffuse:   mgl32.Vec3{0.5, 0.5, 0.5},
		specular:  mgl32.Vec3{0.2, 0.2, 0.2},
		shininess: 32,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Ambient() mgl32.Vec3 {
	return m.ambient
}

func (m *material) Diffuse() mgl32.Vec3 {
	return m.diffuse
}

func (m *material) Specular() mgl32.Vec3 {
	return m.specular
}

func (m *material) Shininess() float32 {
	return m.shininess
}

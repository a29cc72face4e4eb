package light

import "github.com/go-gl/mathgl/mgl32"

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	name     string
	position mgl32.Vec3
	ambient  mgl32.Vec3
	diffuse  mgl32.Vec3
	specular mgl32.Vec3
}

// Light defines a Phong point light: a world-space position and the ambient, diffuse and
// specular colors it contributes. Lights are registered once at scene setup; the Lights
// block then carries them to every fragment shader invocation.
type Light interface {
	// Name returns the light's debug name.
	Name() string

	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - mgl32.Vec3: position as (x, y, z)
	Position() mgl32.Vec3

	// Ambient returns the ambient color contribution.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	Ambient() mgl32.Vec3

	// Diffuse returns the diffuse color contribution.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	Diffuse() mgl32.Vec3

	// Specular returns the specular color contribution.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	Specular() mgl32.Vec3
}

var _ Light = &lightImpl{}

// NewLight creates a new Light configured with the provided options. The default is a white
// light at the origin with a dim ambient term.
//
// Parameters:
//   - options: variadic list of LightBuilderOption functions
//
// Returns:
//   - Light: the light
func NewLight(options ...LightBuilderOption) Light {
	l := &lightImpl{
		ambient:  mgl32.Vec3{0.1, 0.1, 0.1},
		diffuse:  mgl32.Vec3{1, 1, 1},
		specular: mgl32.Vec3{1, 1, 1},
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *lightImpl) Name() string {
	return l.name
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Ambient() mgl32.Vec3 {
	return l.ambient
}

func (l *lightImpl) Diffuse() mgl32.Vec3 {
	return l.diffuse
}

func (l *lightImpl) Specular() mgl32.Vec3 {
	return l.specular
}

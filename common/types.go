// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SphericalPoint is a point expressed as a distance from the origin and two angles.
// Azimuth rotates around the Y axis starting at +Z; Elevation is the polar angle measured
// from +Y, so Elevation 0 is straight up and π is straight down.
type SphericalPoint struct {
	// Radius is the distance from the origin.
	Radius float32
	// Azimuth is the horizontal angle in radians.
	Azimuth float32
	// Elevation is the polar angle in radians.
	Elevation float32
}

// Cartesian converts the spherical point to a Cartesian vector.
//
// Returns:
//   - mgl32.Vec3: the equivalent (x, y, z) position
func (p SphericalPoint) Cartesian() mgl32.Vec3 {
	sinEl := float32(math.Sin(float64(p.Elevation)))
	return mgl32.Vec3{
		p.Radius * sinEl * float32(math.Sin(float64(p.Azimuth))),
		p.Radius * float32(math.Cos(float64(p.Elevation))),
		p.Radius * sinEl * float32(math.Cos(float64(p.Azimuth))),
	}
}

// CylindricalPoint is a point expressed as a distance from the Y axis, an angle around it
// (starting at +Z), and a height along it.
type CylindricalPoint struct {
	Radius float32
	Angle  float32
	Height float32
}

// Cartesian converts the cylindrical point to a Cartesian vector.
//
// Returns:
//   - mgl32.Vec3: the equivalent (x, y, z) position
func (p CylindricalPoint) Cartesian() mgl32.Vec3 {
	return mgl32.Vec3{
		p.Radius * float32(math.Sin(float64(p.Angle))),
		p.Height,
		p.Radius * float32(math.Cos(float64(p.Angle))),
	}
}

// Color is an RGB triple in the [0, 1] range used for material and light terms.
type Color = mgl32.Vec3

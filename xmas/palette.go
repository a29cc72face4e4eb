package xmas

import (
	"math"

	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/engine/light"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// GroundHeight is the y coordinate of the ground plane.
	GroundHeight float32 = -5
	// GroundHalfExtent is half the side length of the square ground plane.
	GroundHalfExtent float32 = 10
	// BaubleRadius is the radius of every bauble sphere.
	BaubleRadius float32 = 0.2
	// BaublePrecision is the sphere tessellation of the bauble mesh.
	BaublePrecision = 8
	// SnowflakeRadius is the distance from a flake's center to each of its points.
	SnowflakeRadius float32 = 0.05
)

// TreeScale stretches the tree horizontally.
var TreeScale = mgl32.Vec3{1.8, 1, 1.8}

// ice is shared by the ground and the snow. Each registers its own copy.
func ice() material.Material {
	return material.NewMaterial(
		material.WithName("ice"),
		material.WithAmbient(mgl32.Vec3{1, 1, 1}),
		material.WithDiffuse(mgl32.Vec3{0.623960, 0.686685, 0.693872}),
		material.WithSpecular(mgl32.Vec3{0.5, 0.5, 0.5}),
		material.WithShininess(225),
	)
}

// baubleColor indexes baubleMaterials.
type baubleColor int

const (
	red baubleColor = iota
	blue
	yellow
	lightBlue
	violet
)

func baubleMaterials() []material.Material {
	const shininess = 76.8
	glossy := func(name string, ambient, diffuse, specular mgl32.Vec3) material.Material {
		return material.NewMaterial(
			material.WithName(name),
			material.WithAmbient(ambient),
			material.WithDiffuse(diffuse),
			material.WithSpecular(specular),
			material.WithShininess(shininess),
		)
	}
	return []material.Material{
		red:       glossy("bauble red", mgl32.Vec3{0.1745, 0.01175, 0.01175}, mgl32.Vec3{0.61424, 0.04136, 0.04136}, mgl32.Vec3{0.727811, 0.626959, 0.626959}),
		blue:      glossy("bauble blue", mgl32.Vec3{0.01175, 0.01175, 0.1745}, mgl32.Vec3{0.04136, 0.04136, 0.61424}, mgl32.Vec3{0.626959, 0.626959, 0.61424}),
		yellow:    glossy("bauble yellow", mgl32.Vec3{0.1745, 0.1745, 0.01175}, mgl32.Vec3{0.61424, 0.61424, 0.04136}, mgl32.Vec3{0.727811, 0.727811, 0.626959}),
		lightBlue: glossy("bauble light blue", mgl32.Vec3{0.01175, 0.1745, 0.1745}, mgl32.Vec3{0.04136, 0.61424, 0.61424}, mgl32.Vec3{0.626959, 0.727811, 0.727811}),
		violet:    glossy("bauble violet", mgl32.Vec3{0.1745, 0.01175, 0.1745}, mgl32.Vec3{0.61424, 0.04136, 0.61424}, mgl32.Vec3{0.727811, 0.626959, 0.727811}),
	}
}

type bauble struct {
	center common.CylindricalPoint
	color  baubleColor
}

func at(radius, angle, height float64, color baubleColor) bauble {
	return bauble{
		center: common.CylindricalPoint{Radius: float32(radius), Angle: float32(angle), Height: float32(height)},
		color:  color,
	}
}

// baubles hang in rings that narrow toward the top of the tree.
var baubles = []bauble{
	at(0, 0, 2.7, red),
	at(1.1, -0.5, 1.3, blue),
	at(1.1, 1.7, 1.3, yellow),
	at(1.5, 1.2, 0.25, red),
	at(1.5, -1.7, 0.25, lightBlue),
	at(2.2, 1.0, -0.85, lightBlue),
	at(2.2, 3*math.Pi/4, -0.85, blue),
	at(2.2, -0.2, -0.85, red),
	at(3, math.Pi/2, -1.8, violet),
	at(3, -math.Pi/2, -1.8, yellow),
	at(3, -math.Pi/4-3, -1.8, red),
	at(3, 3.6, -1.8, violet),
	at(3, 0.2, -1.8, blue),
	at(3.6, 1*math.Pi/6, -3, lightBlue),
	at(3.6, 2*math.Pi/6, -3, red),
	at(3.6, 4*math.Pi/6, -3, blue),
	at(3.6, 5*math.Pi/6, -3, violet),
	at(3.6, 6*math.Pi/6, -3, yellow),
	at(3.6, 8*math.Pi/6, -3, blue),
	at(3.6, 9*math.Pi/6, -3, lightBlue),
	at(3.6, 11*math.Pi/6, -3, yellow),
	at(4, 3*math.Pi/8, -4.1, lightBlue),
	at(4, 4*math.Pi/8, -4.1, yellow),
	at(4, 5*math.Pi/8, -4.1, blue),
	at(4, 7*math.Pi/8, -4.1, violet),
	at(4, 11*math.Pi/8, -4.1, red),
	at(4, 12*math.Pi/8, -4.1, blue),
	at(4, 13*math.Pi/8, -4.1, yellow),
	at(4, 17*math.Pi/8, -4.1, red),
	at(4, 21*math.Pi/8, -4.1, blue),
}

// sceneLights returns a cold key light above the tree and a warm fill light at eye level.
func sceneLights() []light.Light {
	return []light.Light{
		light.NewLight(
			light.WithName("moonlight"),
			light.WithPosition(2, 14, 4),
			light.WithAmbient(mgl32.Vec3{0.08, 0.08, 0.12}),
			light.WithDiffuse(mgl32.Vec3{0.55, 0.65, 0.85}),
			light.WithSpecular(mgl32.Vec3{0.8, 0.85, 1}),
		),
		light.NewLight(
			light.WithName("hearth"),
			light.WithPosition(-9, 0, 7),
			light.WithAmbient(mgl32.Vec3{0.04, 0.03, 0.02}),
			light.WithDiffuse(mgl32.Vec3{0.55, 0.4, 0.25}),
			light.WithSpecular(mgl32.Vec3{0.35, 0.25, 0.15}),
		),
	}
}

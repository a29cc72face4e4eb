package uniform

import "github.com/Carmen-Shannon/oxy-xmas/engine/layout"

const (
	// MaxLights is the default capacity of the Lights block.
	MaxLights = 4
	// MaxMaterials is the default capacity of the Materials block.
	MaxMaterials = 100
)

// CameraSchema declares the Camera block: eye position, view matrix and projection matrix.
func CameraSchema() layout.Schema {
	return layout.Schema{Name: "Camera", Fields: []layout.Field{
		layout.Vec3("position"),
		layout.Mat4("view"),
		layout.Mat4("projection"),
	}}
}

// LightsSchema declares the Lights block: a live count followed by a fixed array of lights.
//
// Parameters:
//   - capacity: the number of light records reserved
//
// Returns:
//   - layout.Schema: the schema
func LightsSchema(capacity int) layout.Schema {
	return layout.Schema{Name: "Lights", Fields: []layout.Field{
		layout.Scalar("count"),
		layout.Array("lights", capacity, layout.Record("light",
			layout.Vec3("position"),
			layout.Vec3("ambient"),
			layout.Vec3("diffuse"),
			layout.Vec3("specular"),
		)),
	}}
}

// MaterialsSchema declares the Materials block. Shininess shares the specular slot's fourth component.
//
// Parameters:
//   - capacity: the number of material records reserved
//
// Returns:
//   - layout.Schema: the schema
func MaterialsSchema(capacity int) layout.Schema {
	return layout.Schema{Name: "Materials", Fields: []layout.Field{
		layout.Array("materials", capacity, layout.Record("material",
			layout.Vec3("ambient"),
			layout.Vec3("diffuse"),
			layout.Vec3Packed("specular", "shininess"),
		)),
	}}
}

package scene

import (
	"github.com/Carmen-Shannon/oxy-xmas/engine/camera"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/pipeline"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithComputeWorkers sets the number of worker goroutines shared by per-frame CPU work.
// Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of compute workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithComputeWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.computeWorkers = n
	}
}

// WithShaderSource replaces the embedded WGSL program. The program must declare the Camera,
// Lights and Materials uniforms at group 0 with sizes matching the configured capacities.
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShaderSource(source string) SceneBuilderOption {
	return func(s *scene) {
		s.shaderSource = source
	}
}

// WithLightCapacity sets the number of light records reserved in the Lights block.
func WithLightCapacity(n int) SceneBuilderOption {
	return func(s *scene) {
		s.lightCapacity = n
	}
}

// WithMaterialCapacity sets the number of material records reserved in the Materials block.
func WithMaterialCapacity(n int) SceneBuilderOption {
	return func(s *scene) {
		s.materialCapacity = n
	}
}

// WithCameraOptions forwards options to the camera the scene creates.
//
// Parameters:
//   - options: camera options such as camera.WithOrbit or camera.WithAspect
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCameraOptions(options ...camera.CameraBuilderOption) SceneBuilderOption {
	return func(s *scene) {
		s.cameraOptions = append(s.cameraOptions, options...)
	}
}

// WithClearColor sets the color the surface is cleared to at the start of every frame.
func WithClearColor(rgba [4]float64) SceneBuilderOption {
	return func(s *scene) {
		s.clearColor = rgba
	}
}

// WithCullMode sets the face culling mode of the scene pipeline.
func WithCullMode(mode pipeline.CullMode) SceneBuilderOption {
	return func(s *scene) {
		s.cullMode = mode
	}
}

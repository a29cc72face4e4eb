package uniform

import "github.com/Carmen-Shannon/oxy-xmas/common"

// SetOption is a functional option used to configure a Set during construction.
type SetOption func(*set)

// WithLightCapacity sets the number of light records reserved in the Lights block.
// It must match the array length declared by the shader.
//
// Parameters:
//   - n: the light capacity
//
// Returns:
//   - SetOption: a function that sets the light capacity
func WithLightCapacity(n int) SetOption {
	return func(s *set) {
		s.lightCapacity = n
	}
}

// WithMaterialCapacity sets the number of material records reserved in the Materials block.
// It must match the array length declared by the shader.
//
// Parameters:
//   - n: the material capacity
//
// Returns:
//   - SetOption: a function that sets the material capacity
func WithMaterialCapacity(n int) SetOption {
	return func(s *set) {
		s.materialCapacity = n
	}
}

// WithLabel sets the debug label of the shared provider. An empty label keeps the generated
// "Uniforms <uuid>" label.
func WithLabel(label string) SetOption {
	return func(s *set) {
		s.label = common.Coalesce(label, s.label)
	}
}

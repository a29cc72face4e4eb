package common

// Input codes for cross-platform input handling.
// These values match GLFW codes.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyEsc = 256 // Escape key (GLFW)

	MouseButtonLeft = 0 // Left mouse button (GLFW)
)

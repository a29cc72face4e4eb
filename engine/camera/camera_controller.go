package camera

import "math"

// DragConvention selects how a vertical drag maps onto elevation.
type DragConvention int

const (
	// DragPointer is the mouse convention: dragging down lowers the eye toward the horizon.
	DragPointer DragConvention = iota
	// DragTouch inverts the vertical axis relative to DragPointer.
	DragTouch
)

// DragToRotation converts a drag distance in pixels into orbit angle deltas. A drag across the
// larger surface dimension is one full turn.
//
// Parameters:
//   - dx, dy: drag distance in pixels since the previous event
//   - width, height: the surface size in pixels
//   - convention: DragPointer or DragTouch
//
// Returns:
//   - dAzimuth, dElevation: deltas in radians for Camera.Rotate
func DragToRotation(dx, dy float64, width, height int, convention DragConvention) (dAzimuth, dElevation float32) {
	maxDim := math.Max(float64(width), float64(height))
	if maxDim <= 0 {
		return 0, 0
	}
	scale := -2 * math.Pi / maxDim
	dAzimuth = float32(scale * dx)
	dElevation = float32(scale * dy)
	if convention == DragTouch {
		dElevation = -dElevation
	}
	return dAzimuth, dElevation
}

package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Perspective creates a right-handed perspective projection matrix that maps view-space depth
// into WebGPU clip space [0, 1] (mgl32.Perspective targets the OpenGL [-1, 1] range instead).
// The matrix is column-major, matching the layout of a WGSL mat4x4<f32>.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))

	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// EulerRotation builds a rotation matrix from three independent angles, composed as
// Rx · Ry · Rz so a vector is rotated about Z first, then Y, then X.
//
// Parameters:
//   - x, y, z: rotation angles in radians around each axis
//
// Returns:
//   - mgl32.Mat4: the homogeneous rotation matrix
func EulerRotation(x, y, z float32) mgl32.Mat4 {
	return mgl32.HomogRotate3DX(x).Mul4(mgl32.HomogRotate3DY(y)).Mul4(mgl32.HomogRotate3DZ(z))
}

// TranslateRotate returns translation · rotation for a position and Euler angles.
//
// Parameters:
//   - position: world-space translation
//   - rotation: Euler angles in radians (x, y, z)
//
// Returns:
//   - mgl32.Mat4: the model matrix
func TranslateRotate(position, rotation mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(position.X(), position.Y(), position.Z()).Mul4(EulerRotation(rotation.X(), rotation.Y(), rotation.Z()))
}

// Radians converts degrees to radians in float32.
func Radians(deg float32) float32 {
	return deg * math.Pi / 180
}

package camera

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/engine/uniform"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidAspect is returned by OnResize for a non-positive or NaN aspect ratio.
var ErrInvalidAspect = errors.New("invalid aspect ratio")

type cameraImpl struct {
	mu *sync.Mutex

	orbit  common.SphericalPoint
	target mgl32.Vec3
	up     mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	block uniform.Block
}

// Camera is an orbit camera looking at a fixed target. Its position is kept as spherical
// coordinates around the world origin and converted to Cartesian form on every upload.
// State changes are pushed straight into the Camera uniform block with field-scoped writes.
type Camera interface {
	// Orbit returns the current spherical coordinates.
	//
	// Returns:
	//   - common.SphericalPoint: radius, azimuth and elevation
	Orbit() common.SphericalPoint

	// Position returns the Cartesian eye position derived from the orbit coordinates.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// Target returns the look-at point.
	Target() mgl32.Vec3

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// ViewMatrix recomputes the view matrix from the current orbit and target.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix (column-major)
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix recomputes the perspective projection for the current aspect ratio.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix (column-major, depth in [0, 1])
	ProjectionMatrix() mgl32.Mat4

	// Rotate adds the deltas to the orbit angles and uploads the position and view matrix.
	// Neither angle is clamped or wrapped.
	//
	// Parameters:
	//   - dAzimuth: horizontal delta in radians
	//   - dElevation: vertical delta in radians
	//
	// Returns:
	//   - error: an error if the uniform write fails
	Rotate(dAzimuth, dElevation float32) error

	// OnResize stores a new aspect ratio and uploads the projection matrix only.
	//
	// Parameters:
	//   - aspect: width / height
	//
	// Returns:
	//   - error: ErrInvalidAspect for aspect <= 0 or NaN, or an upload error
	OnResize(aspect float32) error

	// Upload writes position, view and projection to the Camera block.
	Upload() error
}

var _ Camera = &cameraImpl{}

// NewCamera creates an orbit camera bound to the Camera uniform block and uploads its full
// state once.
//
// Parameters:
//   - block: the Camera uniform block
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
//   - error: ErrInvalidAspect or an upload error
func NewCamera(block uniform.Block, options ...CameraBuilderOption) (Camera, error) {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		orbit:  common.SphericalPoint{Radius: 18, Azimuth: 1.7, Elevation: 0.9},
		target: mgl32.Vec3{0, -1, 0},
		up:     mgl32.Vec3{0, 1, 0},
		fov:    common.Radians(45),
		aspect: 1,
		near:   0.1,
		far:    100,
		block:  block,
	}
	for _, option := range options {
		option(c)
	}
	if !validAspect(c.aspect) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAspect, c.aspect)
	}
	if err := c.Upload(); err != nil {
		return nil, err
	}
	return c, nil
}

func validAspect(aspect float32) bool {
	return aspect > 0 && !math.IsNaN(float64(aspect)) && !math.IsInf(float64(aspect), 0)
}

func (c *cameraImpl) Orbit() common.SphericalPoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orbit
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orbit.Cartesian()
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix()
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix()
}

func (c *cameraImpl) Rotate(dAzimuth, dElevation float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.orbit.Azimuth += dAzimuth
	c.orbit.Elevation += dElevation
	return c.uploadView()
}

func (c *cameraImpl) OnResize(aspect float32) error {
	if !validAspect(aspect) {
		return fmt.Errorf("%w: %v", ErrInvalidAspect, aspect)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.aspect = aspect
	return c.block.WriteMat4("projection", c.projectionMatrix())
}

func (c *cameraImpl) Upload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.uploadView(); err != nil {
		return err
	}
	return c.block.WriteMat4("projection", c.projectionMatrix())
}

// uploadView writes the eye position and view matrix. Caller holds mu.
func (c *cameraImpl) uploadView() error {
	if err := c.block.WriteVec3("position", c.orbit.Cartesian()); err != nil {
		return err
	}
	return c.block.WriteMat4("view", c.viewMatrix())
}

func (c *cameraImpl) viewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.orbit.Cartesian(), c.target, c.up)
}

func (c *cameraImpl) projectionMatrix() mgl32.Mat4 {
	return common.Perspective(c.fov, c.aspect, c.near, c.far)
}

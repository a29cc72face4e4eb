package particle

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/engine/mesh"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultCount is the number of flakes in a field built without WithCount.
	DefaultCount = 5000
	// DefaultFallSpeed is the downward distance a flake drops per frame.
	DefaultFallSpeed float32 = 0.01
	// DefaultJitter is the largest random per-axis position offset per frame.
	DefaultJitter float32 = 0.01
	// DefaultChunkSize is how many instances one worker task rebuilds.
	DefaultChunkSize = 512
)

// DefaultSpin is the largest random per-axis rotation change per frame, 10 degrees.
var DefaultSpin = common.Radians(10)

// ErrInvalidBounds is returned when a bound's minimum is not below its maximum on every axis.
var ErrInvalidBounds = errors.New("invalid particle bounds")

// Bounds is the axis-aligned box flakes are spawned in. Only the vertical extent is enforced
// after spawning; flakes drift freely on X and Z.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// DefaultBounds returns the box above the ground plane the scene's snow falls through.
func DefaultBounds() Bounds {
	return Bounds{Min: mgl32.Vec3{-10, -5, -10}, Max: mgl32.Vec3{10, 10, 10}}
}

func (b Bounds) valid() bool {
	for i := range 3 {
		if !(b.Min[i] < b.Max[i]) {
			return false
		}
	}
	return true
}

// Flake is the state of a single particle.
type Flake struct {
	Position mgl32.Vec3
	// Rotation holds Euler angles in radians. They accumulate without wrapping.
	Rotation mgl32.Vec3
}

type snow struct {
	mu sync.Mutex

	mesh     mesh.Mesh
	material material.Handle

	bounds    Bounds
	count     int
	fallSpeed float32
	jitter    float32
	spin      float32
	rng       *rand.Rand

	pool      worker.DynamicWorkerPool
	ownsPool  bool
	chunkSize int

	flakes    []Flake
	instances []mesh.Instance
}

// Snow is a fixed population of falling, tumbling flakes drawn as instances of one mesh.
type Snow interface {
	// Count returns the fixed population size.
	Count() int

	// Bounds returns the spawn box.
	Bounds() Bounds

	// Flakes returns a copy of every flake's current state.
	//
	// Returns:
	//   - []Flake: the flake states in instance order
	Flakes() []Flake

	// Step advances every flake by one frame. X and Z drift by a uniform offset in
	// [-jitter, jitter); Y drifts the same way minus the fall speed and wraps to the top of the
	// box once it drops below the bottom. Each rotation angle changes by a uniform amount in
	// [-spin, spin).
	Step()

	// Instances builds translation · rotation for every flake with the shared material.
	//
	// Returns:
	//   - []mesh.Instance: one instance per flake
	Instances() []mesh.Instance

	// AdvanceFrame steps the field, rebuilds every instance on the worker pool and rewrites the
	// whole instance buffer once.
	//
	// Returns:
	//   - error: an error if the upload fails
	AdvanceFrame() error

	// Draw issues a single instanced draw for the whole population.
	Draw() error

	// Mesh returns the flake mesh.
	Mesh() mesh.Mesh

	// Release stops a worker pool the field created for itself. The mesh is not released.
	Release()
}

var _ Snow = &snow{}

// NewSnow creates a snow field over an already uploaded flake mesh, spawns the population
// uniformly inside the bounds with random orientations, and uploads the first instance buffer.
//
// Parameters:
//   - m: the flake mesh; its instance capacity must cover the population
//   - materialHandle: the material every flake shares
//   - options: functional options to configure the field
//
// Returns:
//   - Snow: the created field
//   - error: ErrInvalidBounds, mesh.ErrTooManyInstances or an upload error
func NewSnow(m mesh.Mesh, materialHandle material.Handle, options ...SnowBuilderOption) (Snow, error) {
	s := &snow{
		mesh:      m,
		material:  materialHandle,
		bounds:    DefaultBounds(),
		count:     DefaultCount,
		fallSpeed: DefaultFallSpeed,
		jitter:    DefaultJitter,
		spin:      DefaultSpin,
		chunkSize: DefaultChunkSize,
	}
	for _, option := range options {
		option(s)
	}

	if !s.bounds.valid() {
		return nil, fmt.Errorf("%w: min %v max %v", ErrInvalidBounds, s.bounds.Min, s.bounds.Max)
	}
	if s.count < 0 || s.count > m.MaxInstances() {
		return nil, fmt.Errorf("%w: %d flakes, mesh %q holds %d", mesh.ErrTooManyInstances, s.count, m.Label(), m.MaxInstances())
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.chunkSize <= 0 {
		s.chunkSize = DefaultChunkSize
	}
	if s.pool == nil {
		s.pool = worker.NewDynamicWorkerPool(runtime.NumCPU(), 256, 1*time.Second)
		s.ownsPool = true
	}

	s.spawn()
	s.instances = make([]mesh.Instance, s.count)
	s.rebuildInstances()
	if err := s.mesh.UploadInstances(s.instances); err != nil {
		s.Release()
		return nil, err
	}

	common.ComponentLogger("particle").Debug("snow created", "mesh", m.Label(), "count", s.count)
	return s, nil
}

func (s *snow) spawn() {
	s.flakes = make([]Flake, s.count)
	for i := range s.flakes {
		var f Flake
		for axis := range 3 {
			f.Position[axis] = s.uniform(s.bounds.Min[axis], s.bounds.Max[axis])
		}
		for axis := range 3 {
			f.Rotation[axis] = s.uniform(0, 2*math.Pi)
		}
		s.flakes[i] = f
	}
}

// uniform samples [lo, hi).
func (s *snow) uniform(lo, hi float32) float32 {
	return lo + s.rng.Float32()*(hi-lo)
}

func (s *snow) Count() int {
	return s.count
}

func (s *snow) Bounds() Bounds {
	return s.bounds
}

func (s *snow) Flakes() []Flake {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Flake(nil), s.flakes...)
}

func (s *snow) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step()
}

func (s *snow) step() {
	for i := range s.flakes {
		f := &s.flakes[i]
		f.Position[0] += s.uniform(-s.jitter, s.jitter)
		f.Position[1] += s.uniform(-s.jitter, s.jitter) - s.fallSpeed
		if f.Position[1] < s.bounds.Min[1] {
			f.Position[1] = s.bounds.Max[1]
		}
		f.Position[2] += s.uniform(-s.jitter, s.jitter)

		for axis := range 3 {
			f.Rotation[axis] += s.uniform(-s.spin, s.spin)
		}
	}
}

func (s *snow) Instances() []mesh.Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]mesh.Instance, len(s.flakes))
	for i, f := range s.flakes {
		out[i] = s.instanceOf(f)
	}
	return out
}

func (s *snow) instanceOf(f Flake) mesh.Instance {
	return mesh.Instance{
		Model:    common.TranslateRotate(f.Position, f.Rotation),
		Material: s.material.Float(),
	}
}

// rebuildInstances fills s.instances from s.flakes in chunks on the worker pool. Each task owns
// a disjoint range so no locking is needed beyond the frame barrier. Caller holds mu.
func (s *snow) rebuildInstances() {
	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < len(s.flakes); start += s.chunkSize {
		end := min(start+s.chunkSize, len(s.flakes))
		lo, hi := start, end
		wg.Add(1)
		s.pool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				for i := lo; i < hi; i++ {
					s.instances[i] = s.instanceOf(s.flakes[i])
				}
				return nil, nil
			},
		})
		taskID++
	}
	wg.Wait()
}

func (s *snow) AdvanceFrame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.step()
	s.rebuildInstances()
	return s.mesh.UploadInstances(s.instances)
}

func (s *snow) Draw() error {
	return s.mesh.DrawInstances(s.count)
}

func (s *snow) Mesh() mesh.Mesh {
	return s.mesh
}

func (s *snow) Release() {
	if s.ownsPool && s.pool != nil {
		s.pool.Stop()
		s.pool = nil
	}
}

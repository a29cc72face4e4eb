package particle

import (
	"math/rand/v2"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// SnowBuilderOption is a functional option applied to a snow field during construction via NewSnow.
type SnowBuilderOption func(*snow)

// WithBounds sets the spawn box.
//
// Parameters:
//   - bounds: the box; Min must be below Max on every axis
//
// Returns:
//   - SnowBuilderOption: a function that applies the bounds option
func WithBounds(bounds Bounds) SnowBuilderOption {
	return func(s *snow) {
		s.bounds = bounds
	}
}

// WithCount sets the fixed population size.
func WithCount(count int) SnowBuilderOption {
	return func(s *snow) {
		s.count = count
	}
}

// WithFallSpeed sets the per-frame downward drop.
func WithFallSpeed(speed float32) SnowBuilderOption {
	return func(s *snow) {
		s.fallSpeed = speed
	}
}

// WithJitter sets the largest per-axis random position offset per frame.
func WithJitter(jitter float32) SnowBuilderOption {
	return func(s *snow) {
		s.jitter = jitter
	}
}

// WithSpin sets the largest per-axis random rotation change per frame, in radians.
func WithSpin(spin float32) SnowBuilderOption {
	return func(s *snow) {
		s.spin = spin
	}
}

// WithSeed makes the field reproducible by drawing every random value from a PCG generator
// seeded with the two words.
//
// Parameters:
//   - seed1, seed2: the PCG seed
//
// Returns:
//   - SnowBuilderOption: a function that applies the seed option
func WithSeed(seed1, seed2 uint64) SnowBuilderOption {
	return func(s *snow) {
		s.rng = rand.New(rand.NewPCG(seed1, seed2))
	}
}

// WithWorkerPool shares an existing pool for instance rebuilding. The field does not stop a
// pool it did not create.
//
// Parameters:
//   - pool: the worker pool
//   - chunkSize: instances per task; non-positive values fall back to DefaultChunkSize
//
// Returns:
//   - SnowBuilderOption: a function that applies the worker pool option
func WithWorkerPool(pool worker.DynamicWorkerPool, chunkSize int) SnowBuilderOption {
	return func(s *snow) {
		s.pool = pool
		s.chunkSize = chunkSize
	}
}

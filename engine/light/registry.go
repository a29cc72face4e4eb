package light

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/engine/uniform"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrCapacityExceeded is returned by Append once every light record is in use.
var ErrCapacityExceeded = errors.New("light registry full")

// Handle is a stable index into the Lights block.
type Handle uint32

// registry is the implementation of the Registry interface.
type registry struct {
	mu sync.Mutex

	block    uniform.Block
	capacity int
	entries  []Light
}

// Registry is an append-only table of lights backed by the Lights uniform block. Besides
// the light record, every append re-uploads the live count the shader loops over.
type Registry interface {
	// Append writes a light into the next free record and updates the count.
	//
	// Parameters:
	//   - l: the light
	//
	// Returns:
	//   - Handle: the record index
	//   - error: ErrCapacityExceeded when full, or a write error; the registry is unchanged on error
	Append(l Light) (Handle, error)

	// Get returns the light registered under h.
	Get(h Handle) (Light, bool)

	// Len returns the number of registered lights, the value of the uploaded count.
	Len() int

	// Cap returns the block capacity.
	Cap() int
}

var _ Registry = &registry{}

// NewRegistry wraps a Lights block and uploads a count of zero.
//
// Parameters:
//   - block: the Lights uniform block
//
// Returns:
//   - Registry: an empty registry
//   - error: an error if the block has no lights array or count field
func NewRegistry(block uniform.Block) (Registry, error) {
	n, err := block.Layout().Len("lights")
	if err != nil {
		return nil, err
	}
	if err := block.WriteInt32("count", 0); err != nil {
		return nil, err
	}
	return &registry{block: block, capacity: n}, nil
}

func (r *registry) Append(l Light) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) >= r.capacity {
		return 0, fmt.Errorf("%w: %d of %d used", ErrCapacityExceeded, len(r.entries), r.capacity)
	}
	h := Handle(len(r.entries))
	prefix := fmt.Sprintf("lights[%d].", h)

	for _, f := range []struct {
		name  string
		value mgl32.Vec3
	}{
		{"position", l.Position()},
		{"ambient", l.Ambient()},
		{"diffuse", l.Diffuse()},
		{"specular", l.Specular()},
	} {
		if err := r.block.WriteVec3(prefix+f.name, f.value); err != nil {
			return 0, err
		}
	}
	if err := r.block.WriteInt32("count", int32(h)+1); err != nil {
		return 0, err
	}

	r.entries = append(r.entries, l)
	common.ComponentLogger("lights").Debug("light registered", "name", l.Name(), "handle", uint32(h))
	return h, nil
}

func (r *registry) Get(h Handle) (Light, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(h) >= len(r.entries) {
		return nil, false
	}
	return r.entries[h], true
}

func (r *registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *registry) Cap() int {
	return r.capacity
}

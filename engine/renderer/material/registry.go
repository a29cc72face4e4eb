package material

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/engine/uniform"
)

// ErrCapacityExceeded is returned by Append once every record of the block is in use.
var ErrCapacityExceeded = errors.New("material registry full")

// Handle is a stable index into the Materials block. Instances carry it as a float attribute.
type Handle uint32

// Float returns the handle as the per-instance attribute value.
func (h Handle) Float() float32 {
	return float32(h)
}

// registry is the implementation of the Registry interface.
type registry struct {
	mu sync.Mutex

	block    uniform.Block
	capacity int
	entries  []Material
	byName   map[string]Handle
}

// Registry is an append-only table of materials backed by the Materials uniform block.
// Handles are assigned densely from 0 and are never reused.
type Registry interface {
	// Append writes a material into the next free record and returns its handle.
	//
	// Parameters:
	//   - m: the material
	//
	// Returns:
	//   - Handle: the record index
	//   - error: ErrCapacityExceeded when full, or a write error; the registry is unchanged on error
	Append(m Material) (Handle, error)

	// Get returns the material registered under h.
	Get(h Handle) (Material, bool)

	// Lookup returns the handle of the first material registered with a name.
	Lookup(name string) (Handle, bool)

	// Len returns the number of registered materials.
	Len() int

	// Cap returns the block capacity.
	Cap() int
}

var _ Registry = &registry{}

// NewRegistry wraps a Materials block. The capacity is the block's array length.
//
// Parameters:
//   - block: the Materials uniform block
//
// Returns:
//   - Registry: an empty registry
//   - error: an error if the block has no materials array
func NewRegistry(block uniform.Block) (Registry, error) {
	n, err := block.Layout().Len("materials")
	if err != nil {
		return nil, err
	}
	return &registry{
		block:    block,
		capacity: n,
		byName:   make(map[string]Handle),
	}, nil
}

func (r *registry) Append(m Material) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) >= r.capacity {
		return 0, fmt.Errorf("%w: %d of %d used", ErrCapacityExceeded, len(r.entries), r.capacity)
	}
	h := Handle(len(r.entries))
	prefix := fmt.Sprintf("materials[%d].", h)

	if err := r.block.WriteVec3(prefix+"ambient", m.Ambient()); err != nil {
		return 0, err
	}
	if err := r.block.WriteVec3(prefix+"diffuse", m.Diffuse()); err != nil {
		return 0, err
	}
	if err := r.block.WriteVec3(prefix+"specular", m.Specular()); err != nil {
		return 0, err
	}
	if err := r.block.WriteFloat32(prefix+"shininess", m.Shininess()); err != nil {
		return 0, err
	}

	r.entries = append(r.entries, m)
	if _, seen := r.byName[m.Name()]; !seen && m.Name() != "" {
		r.byName[m.Name()] = h
	}
	common.ComponentLogger("materials").Debug("material registered", "name", m.Name(), "handle", uint32(h))
	return h, nil
}

func (r *registry) Get(h Handle) (Material, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(h) >= len(r.entries) {
		return nil, false
	}
	return r.entries[h], true
}

func (r *registry) Lookup(name string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.byName[name]
	return h, ok
}

func (r *registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *registry) Cap() int {
	return r.capacity
}

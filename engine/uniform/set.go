package uniform

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/pipeline"
	"github.com/google/uuid"
)

// set is the implementation of the Set interface.
type set struct {
	provider bind_group_provider.BindGroupProvider

	camera    Block
	lights    Block
	materials Block

	lightCapacity    int
	materialCapacity int
	label            string
}

// Set is the Camera, Lights and Materials blocks plus the single bind group over them.
// The bind group is bound once per frame at group 0 for every draw.
type Set interface {
	// Camera returns the Camera block (binding 0).
	Camera() Block

	// Lights returns the Lights block (binding 1).
	Lights() Block

	// Materials returns the Materials block (binding 2).
	Materials() Block

	// Provider returns the provider holding the three buffers and the bind group.
	Provider() bind_group_provider.BindGroupProvider

	// UniformBindings returns the bind group layout entries a pipeline must declare,
	// with each entry's size equal to its block's packed size.
	UniformBindings() []pipeline.UniformBinding

	// Release frees the three buffers and the bind group.
	Release()
}

var _ Set = &set{}

// NewSet allocates the three uniform blocks and creates the bind group over them.
//
// Parameters:
//   - r: the renderer owning the buffers
//   - options: variadic list of SetOption functions
//
// Returns:
//   - Set: the allocated set
//   - error: an error if any block or the bind group cannot be created
func NewSet(r renderer.Renderer, options ...SetOption) (Set, error) {
	s := &set{
		lightCapacity:    MaxLights,
		materialCapacity: MaxMaterials,
		label:            "Uniforms " + uuid.NewString(),
	}
	for _, opt := range options {
		opt(s)
	}
	s.provider = bind_group_provider.NewBindGroupProvider(s.label)

	var err error
	if s.camera, err = Allocate(r, s.provider, BlockCamera, CameraSchema()); err != nil {
		return nil, err
	}
	if s.lights, err = Allocate(r, s.provider, BlockLights, LightsSchema(s.lightCapacity)); err != nil {
		s.provider.Release()
		return nil, err
	}
	if s.materials, err = Allocate(r, s.provider, BlockMaterials, MaterialsSchema(s.materialCapacity)); err != nil {
		s.provider.Release()
		return nil, err
	}
	if err := r.InitBindGroup(s.provider); err != nil {
		s.provider.Release()
		return nil, fmt.Errorf("uniform bind group: %w", err)
	}
	return s, nil
}

func (s *set) Camera() Block {
	return s.camera
}

func (s *set) Lights() Block {
	return s.lights
}

func (s *set) Materials() Block {
	return s.materials
}

func (s *set) Provider() bind_group_provider.BindGroupProvider {
	return s.provider
}

func (s *set) UniformBindings() []pipeline.UniformBinding {
	out := make([]pipeline.UniformBinding, 0, 3)
	for _, b := range []Block{s.camera, s.lights, s.materials} {
		out = append(out, pipeline.UniformBinding{
			Binding: uint32(b.Kind().Binding()),
			MinSize: b.Layout().Size(),
		})
	}
	return out
}

func (s *set) Release() {
	s.provider.Release()
}

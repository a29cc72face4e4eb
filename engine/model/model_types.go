package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-xmas/engine/mesh"
)

// Kind identifies which of the fixed drawable variants a Drawable is.
type Kind int

const (
	// KindStaticInstances is one mesh drawn as a fixed set of instances.
	KindStaticInstances Kind = iota
	// KindParticleField is one mesh drawn once per particle, re-uploaded every frame.
	KindParticleField
	// KindMultiMesh is several meshes, each drawn once with its own placement.
	KindMultiMesh
)

func (k Kind) String() string {
	switch k {
	case KindStaticInstances:
		return "StaticInstances"
	case KindParticleField:
		return "ParticleField"
	case KindMultiMesh:
		return "MultiMesh"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Placement pairs a mesh part with the single instance record it is drawn with.
type Placement struct {
	// Mesh is the uploaded part.
	Mesh mesh.Mesh

	// Instance is the model matrix and material handle used for the part's single draw.
	Instance mesh.Instance
}

package model

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/engine/mesh"
	"github.com/Carmen-Shannon/oxy-xmas/engine/particle"
)

// ErrNoParts is returned when a MultiMesh is built without any placements.
var ErrNoParts = errors.New("drawable has no parts")

// Drawable is one entity of the scene. The scene calls AdvanceFrame on every drawable before
// any Draw, then Draw on each in registration order. The set of variants is fixed: Kind
// reports which one a value is and there is no way to implement Drawable outside this package.
type Drawable interface {
	// Name returns the entity name used in logs.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Kind returns the variant.
	//
	// Returns:
	//   - Kind: one of KindStaticInstances, KindParticleField or KindMultiMesh
	Kind() Kind

	// AdvanceFrame applies the per-frame update. Only particle fields change between frames.
	//
	// Returns:
	//   - error: an error if an instance upload fails
	AdvanceFrame() error

	// Draw issues the entity's draw calls into the current frame.
	//
	// Returns:
	//   - error: an error if a draw call is rejected
	Draw() error

	// Release frees the GPU resources owned by the entity.
	Release()

	sealed()
}

type staticInstances struct {
	name      string
	mesh      mesh.Mesh
	instances []mesh.Instance
}

var _ Drawable = &staticInstances{}

// NewStaticInstances uploads a fixed instance list once and draws it with a single instanced
// call every frame.
//
// Parameters:
//   - m: the shared mesh
//   - instances: the placements; must fit the mesh's instance capacity
//   - options: functional options to configure the drawable
//
// Returns:
//   - Drawable: the drawable
//   - error: mesh.ErrTooManyInstances or an upload error
func NewStaticInstances(m mesh.Mesh, instances []mesh.Instance, options ...DrawableOption) (Drawable, error) {
	cfg := newConfig(m.Label(), options)
	d := &staticInstances{
		name:      cfg.name,
		mesh:      m,
		instances: append([]mesh.Instance(nil), instances...),
	}
	if err := m.UploadInstances(d.instances); err != nil {
		return nil, fmt.Errorf("%s: %w", d.name, err)
	}
	common.ComponentLogger("model").Debug("static instances ready", "name", d.name, "instances", len(d.instances))
	return d, nil
}

func (d *staticInstances) Name() string {
	return d.name
}

func (d *staticInstances) Kind() Kind {
	return KindStaticInstances
}

func (d *staticInstances) AdvanceFrame() error {
	return nil
}

func (d *staticInstances) Draw() error {
	return d.mesh.DrawInstances(len(d.instances))
}

func (d *staticInstances) Release() {
	d.mesh.Release()
}

func (d *staticInstances) sealed() {}

type particleField struct {
	name string
	snow particle.Snow
}

var _ Drawable = &particleField{}

// NewParticleField wraps a snow field. Its instances are regenerated and re-uploaded on every
// AdvanceFrame.
//
// Parameters:
//   - snow: the particle field
//   - options: functional options to configure the drawable
//
// Returns:
//   - Drawable: the drawable
func NewParticleField(snow particle.Snow, options ...DrawableOption) Drawable {
	cfg := newConfig(snow.Mesh().Label(), options)
	return &particleField{name: cfg.name, snow: snow}
}

func (d *particleField) Name() string {
	return d.name
}

func (d *particleField) Kind() Kind {
	return KindParticleField
}

func (d *particleField) AdvanceFrame() error {
	return d.snow.AdvanceFrame()
}

func (d *particleField) Draw() error {
	return d.snow.Draw()
}

func (d *particleField) Release() {
	d.snow.Release()
	d.snow.Mesh().Release()
}

func (d *particleField) sealed() {}

type multiMesh struct {
	name  string
	parts []Placement
}

var _ Drawable = &multiMesh{}

// NewMultiMesh uploads one instance record per part and draws each part with a single
// non-instanced call, in the order given.
//
// Parameters:
//   - name: the entity name
//   - parts: the meshes and their placements
//
// Returns:
//   - Drawable: the drawable
//   - error: ErrNoParts or an upload error
func NewMultiMesh(name string, parts []Placement) (Drawable, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoParts, name)
	}
	for _, p := range parts {
		if err := p.Mesh.UploadInstances([]mesh.Instance{p.Instance}); err != nil {
			return nil, fmt.Errorf("%s: part %q: %w", name, p.Mesh.Label(), err)
		}
	}
	common.ComponentLogger("model").Debug("multi mesh ready", "name", name, "parts", len(parts))
	return &multiMesh{name: name, parts: append([]Placement(nil), parts...)}, nil
}

func (d *multiMesh) Name() string {
	return d.name
}

func (d *multiMesh) Kind() Kind {
	return KindMultiMesh
}

func (d *multiMesh) AdvanceFrame() error {
	return nil
}

func (d *multiMesh) Draw() error {
	for _, p := range d.parts {
		if err := p.Mesh.DrawSingle(); err != nil {
			return fmt.Errorf("%s: part %q: %w", d.name, p.Mesh.Label(), err)
		}
	}
	return nil
}

func (d *multiMesh) Release() {
	for _, p := range d.parts {
		p.Mesh.Release()
	}
}

func (d *multiMesh) sealed() {}

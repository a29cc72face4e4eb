// Package xmas builds the Christmas tree scene: a frozen ground plane, the tree, its baubles and
// a field of falling snow under two lights.
package xmas

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/config"
	"github.com/Carmen-Shannon/oxy-xmas/engine/camera"
	"github.com/Carmen-Shannon/oxy-xmas/engine/geometry"
	"github.com/Carmen-Shannon/oxy-xmas/engine/loader"
	"github.com/Carmen-Shannon/oxy-xmas/engine/mesh"
	"github.com/Carmen-Shannon/oxy-xmas/engine/model"
	"github.com/Carmen-Shannon/oxy-xmas/engine/particle"
	"github.com/Carmen-Shannon/oxy-xmas/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// Drawable names, in draw order.
const (
	GroundName  = "ground"
	TreeName    = "tree"
	BaublesName = "baubles"
	SnowName    = "snow"
)

// seedMix derives the second PCG seed word from the configured seed.
const seedMix = 0x9e3779b97f4a7c15

type buildConfig struct {
	loader loader.Loader
}

// BuildOption is a functional option applied by Build.
type BuildOption func(*buildConfig)

// WithLoader sets the model loader used for a configured tree file. By default a new OBJ loader
// is created.
//
// Parameters:
//   - l: the loader
//
// Returns:
//   - BuildOption: a function that applies the loader option
func WithLoader(l loader.Loader) BuildOption {
	return func(c *buildConfig) {
		c.loader = l
	}
}

// SceneOptions translates settings into the scene options that shape the camera and the
// compute pool.
//
// Parameters:
//   - settings: the validated settings
//
// Returns:
//   - []scene.SceneBuilderOption: options for scene.NewScene
func SceneOptions(settings config.Settings) []scene.SceneBuilderOption {
	cam := settings.Camera
	options := []scene.SceneBuilderOption{
		scene.WithCameraOptions(
			camera.WithOrbit(common.SphericalPoint{Radius: cam.Radius, Azimuth: cam.Azimuth, Elevation: cam.Elevation}),
			camera.WithTarget(cam.Target[0], cam.Target[1], cam.Target[2]),
			camera.WithFov(common.Radians(cam.FovDegrees)),
			camera.WithClipPlanes(cam.Near, cam.Far),
			camera.WithAspect(float32(settings.Window.Width)/float32(settings.Window.Height)),
		),
	}
	if settings.Workers > 0 {
		options = append(options, scene.WithComputeWorkers(settings.Workers))
	}
	return options
}

// Build registers the lights and materials and adds the ground, tree, baubles and snow to s,
// in that order.
//
// Parameters:
//   - s: a freshly created scene
//   - settings: the validated settings
//   - options: functional options to configure the build
//
// Returns:
//   - error: a registry, mesh, loader or particle error; the scene should then be released
func Build(s scene.Scene, settings config.Settings, options ...BuildOption) error {
	cfg := &buildConfig{}
	for _, option := range options {
		option(cfg)
	}
	if cfg.loader == nil {
		cfg.loader = loader.NewLoader(loader.BackendTypeOBJ)
	}

	for _, l := range sceneLights() {
		if _, err := s.Lights().Append(l); err != nil {
			return fmt.Errorf("xmas: light %q: %w", l.Name(), err)
		}
	}

	steps := []struct {
		name  string
		build func() (model.Drawable, error)
	}{
		{GroundName, func() (model.Drawable, error) { return buildGround(s) }},
		{TreeName, func() (model.Drawable, error) { return buildTree(s, settings.Tree, cfg.loader) }},
		{BaublesName, func() (model.Drawable, error) { return buildBaubles(s) }},
		{SnowName, func() (model.Drawable, error) { return buildSnow(s, settings.Snow) }},
	}
	for _, step := range steps {
		d, err := step.build()
		if err != nil {
			return fmt.Errorf("xmas: %s: %w", step.name, err)
		}
		s.AddDrawable(d)
	}

	common.ComponentLogger("scene").Info("xmas scene built",
		"materials", s.Materials().Len(),
		"lights", s.Lights().Len(),
		"flakes", settings.Snow.Count,
	)
	return nil
}

func buildGround(s scene.Scene) (model.Drawable, error) {
	handle, err := s.Materials().Append(ice())
	if err != nil {
		return nil, err
	}
	v, i := geometry.GroundQuad(GroundHeight, GroundHalfExtent)
	m, err := s.NewMesh(v, i, 1, mesh.WithLabel(GroundName))
	if err != nil {
		return nil, err
	}
	return model.NewMultiMesh(GroundName, []model.Placement{
		{Mesh: m, Instance: mesh.Instance{Model: mgl32.Ident4(), Material: handle.Float()}},
	})
}

func buildTree(s scene.Scene, settings config.TreeSettings, ld loader.Loader) (model.Drawable, error) {
	var (
		parts []geometry.Part
		err   error
	)
	if settings.OBJ != "" {
		parts, err = ld.Load(settings.OBJ, settings.MTL)
	} else {
		parts, err = geometry.Tree()
	}
	if err != nil {
		return nil, err
	}

	scale := mgl32.Scale3D(TreeScale[0], TreeScale[1], TreeScale[2])
	placements := make([]model.Placement, 0, len(parts))
	for _, part := range parts {
		handle, err := s.Materials().Append(part.Material)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", part.Material.Name(), err)
		}
		m, err := s.NewMesh(part.Vertices, part.Indices, 1, mesh.WithLabel(TreeName+"/"+part.Name))
		if err != nil {
			return nil, err
		}
		placements = append(placements, model.Placement{
			Mesh:     m,
			Instance: mesh.Instance{Model: scale, Material: handle.Float()},
		})
	}
	return model.NewMultiMesh(TreeName, placements)
}

func buildBaubles(s scene.Scene) (model.Drawable, error) {
	mats := baubleMaterials()
	handles := make([]float32, len(mats))
	for i, mat := range mats {
		h, err := s.Materials().Append(mat)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", mat.Name(), err)
		}
		handles[i] = h.Float()
	}

	v, i, err := geometry.Sphere(mgl32.Vec3{}, BaubleRadius, BaublePrecision)
	if err != nil {
		return nil, err
	}
	m, err := s.NewMesh(v, i, len(baubles), mesh.WithLabel(BaublesName))
	if err != nil {
		return nil, err
	}

	instances := make([]mesh.Instance, len(baubles))
	for n, b := range baubles {
		instances[n] = mesh.Instance{
			Model:    mgl32.Translate3D(b.center.Cartesian().Elem()),
			Material: handles[b.color],
		}
	}
	return model.NewStaticInstances(m, instances, model.WithName(BaublesName))
}

func buildSnow(s scene.Scene, settings config.SnowSettings) (model.Drawable, error) {
	handle, err := s.Materials().Append(ice())
	if err != nil {
		return nil, err
	}
	v, i := geometry.Snowflake(SnowflakeRadius)
	m, err := s.NewMesh(v, i, settings.Count, mesh.WithLabel(SnowName))
	if err != nil {
		return nil, err
	}

	options := []particle.SnowBuilderOption{
		particle.WithCount(settings.Count),
		particle.WithBounds(particle.Bounds{
			Min: mgl32.Vec3(settings.BoundsMin),
			Max: mgl32.Vec3(settings.BoundsMax),
		}),
		particle.WithFallSpeed(settings.FallSpeed),
		particle.WithJitter(settings.Jitter),
		particle.WithSpin(common.Radians(settings.SpinDegrees)),
		particle.WithWorkerPool(s.WorkerPool(), particle.DefaultChunkSize),
	}
	if settings.Seed != 0 {
		options = append(options, particle.WithSeed(settings.Seed, settings.Seed^seedMix))
	}
	snow, err := particle.NewSnow(m, handle, options...)
	if err != nil {
		m.Release()
		return nil, err
	}
	return model.NewParticleField(snow, model.WithName(SnowName)), nil
}

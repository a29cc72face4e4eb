package scene

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/engine/camera"
	"github.com/Carmen-Shannon/oxy-xmas/engine/light"
	"github.com/Carmen-Shannon/oxy-xmas/engine/mesh"
	"github.com/Carmen-Shannon/oxy-xmas/engine/model"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-xmas/engine/uniform"
)

// ErrShaderLayoutMismatch is returned when the WGSL program disagrees with the CPU-side uniform
// block layouts or the vertex attribute contract.
var ErrShaderLayoutMismatch = errors.New("shader does not match uniform layout")

// vertexLocations is the attribute contract every mesh satisfies: position and normal per
// vertex, four model matrix columns and a material handle per instance.
var vertexLocations = []int{0, 1, 2, 3, 4, 5, 6}

// Scene owns everything a frame needs: the renderer, the three uniform blocks with the
// material and light registries writing into them, the orbit camera, the single render
// pipeline and the drawables in registration order.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Active returns whether the scene is drawn by the frame driver.
	Active() bool

	// SetActive sets whether the scene is drawn by the frame driver.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Materials returns the material registry backed by the Materials block.
	Materials() material.Registry

	// Lights returns the light registry backed by the Lights block.
	Lights() light.Registry

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// Uniforms returns the uniform block set bound at group 0.
	Uniforms() uniform.Set

	// Pipeline returns the scene's render pipeline.
	Pipeline() pipeline.Pipeline

	// WorkerPool returns the pool shared by per-frame CPU work such as particle instance rebuilds.
	WorkerPool() worker.DynamicWorkerPool

	// NewMesh uploads geometry and wires it to the scene pipeline and uniform bind group.
	//
	// Parameters:
	//   - vertices: the mesh vertices
	//   - indices: the triangle list
	//   - maxInstances: the instance buffer capacity
	//   - options: extra mesh options such as a label
	//
	// Returns:
	//   - mesh.Mesh: the uploaded mesh
	//   - error: an error if the geometry is invalid or a buffer cannot be created
	NewMesh(vertices []mesh.Vertex, indices []uint32, maxInstances int, options ...mesh.MeshOption) (mesh.Mesh, error)

	// AddDrawable appends a drawable. Drawables advance and draw in the order they were added.
	//
	// Parameters:
	//   - d: the drawable
	AddDrawable(d model.Drawable)

	// Drawables returns the registered drawables in order.
	Drawables() []model.Drawable

	// AdvanceFrame runs every drawable's per-frame update in registration order.
	//
	// Returns:
	//   - error: the first update error, wrapped with the drawable's name
	AdvanceFrame() error

	// Draw records one frame: clears the surface, draws every drawable in registration order,
	// then ends and presents the frame.
	//
	// Returns:
	//   - error: the first draw error, or a frame error
	Draw() error

	// Release frees every drawable, the uniform blocks and the worker pool.
	Release()
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu sync.Mutex

	name   string
	active bool

	r         renderer.Renderer
	uniforms  uniform.Set
	materials material.Registry
	lights    light.Registry
	camera    camera.Camera
	pipeline  pipeline.Pipeline

	shaderSource     string
	lightCapacity    int
	materialCapacity int
	cameraOptions    []camera.CameraBuilderOption
	clearColor       [4]float64
	cullMode         pipeline.CullMode

	computeWorkers int
	computePool    worker.DynamicWorkerPool

	drawables []model.Drawable
}

var _ Scene = &scene{}

// NewScene allocates the uniform blocks, builds the registries and camera on top of them,
// validates the WGSL program against the packed layouts, and registers the render pipeline.
//
// Parameters:
//   - name: the scene identifier
//   - r: the renderer
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the scene, ready for AddDrawable
//   - error: ErrShaderLayoutMismatch, shader.ErrShaderCompile or a resource error
func NewScene(name string, r renderer.Renderer, options ...SceneBuilderOption) (Scene, error) {
	s := &scene{
		name:             name,
		active:           true,
		r:                r,
		shaderSource:     shader.SceneSource,
		lightCapacity:    uniform.MaxLights,
		materialCapacity: uniform.MaxMaterials,
		clearColor:       [4]float64{0, 0, 0, 1},
		cullMode:         pipeline.CullModeNone,
		computeWorkers:   max(runtime.NumCPU()-1, 1),
	}
	for _, option := range options {
		option(s)
	}

	log := common.ComponentLogger("scene")

	var err error
	setOptions := []uniform.SetOption{
		uniform.WithLightCapacity(s.lightCapacity),
		uniform.WithMaterialCapacity(s.materialCapacity),
	}
	if name != "" {
		setOptions = append(setOptions, uniform.WithLabel(name+" Uniforms"))
	}
	s.uniforms, err = uniform.NewSet(r, setOptions...)
	if err != nil {
		return nil, err
	}
	if err := s.setup(); err != nil {
		s.uniforms.Release()
		return nil, err
	}

	// Queue size of 256 accommodates the per-frame chunk count with headroom.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)

	log.Info("scene ready", "name", name, "lights", s.lights.Cap(), "materials", s.materials.Cap(), "workers", s.computeWorkers)
	return s, nil
}

func (s *scene) setup() error {
	var err error
	if s.materials, err = material.NewRegistry(s.uniforms.Materials()); err != nil {
		return err
	}
	if s.lights, err = light.NewRegistry(s.uniforms.Lights()); err != nil {
		return err
	}
	if s.camera, err = camera.NewCamera(s.uniforms.Camera(), s.cameraOptions...); err != nil {
		return err
	}

	vs := shader.NewShader(s.name+" vs", shader.ShaderTypeVertex, s.shaderSource)
	fs := shader.NewShader(s.name+" fs", shader.ShaderTypeFragment, s.shaderSource)
	for _, sh := range []shader.Shader{vs, fs} {
		if err := sh.Validate(); err != nil {
			return err
		}
	}
	if err := CheckShaderLayout(vs, s.uniforms); err != nil {
		return err
	}

	s.pipeline = pipeline.NewPipeline(mesh.DefaultPipelineKey,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithVertexLayouts(mesh.VertexLayouts()...),
		pipeline.WithUniformBindings(s.uniforms.UniformBindings()...),
		pipeline.WithDepthTestEnabled(true),
		pipeline.WithDepthWriteEnabled(true),
		pipeline.WithCullMode(s.cullMode),
		pipeline.WithClearColor(s.clearColor),
	)
	if err := s.r.RegisterPipelines(s.pipeline); err != nil {
		return err
	}
	if registered := s.r.Pipeline(mesh.DefaultPipelineKey); registered != nil {
		s.pipeline = registered
	}
	return nil
}

// CheckShaderLayout verifies that every group 0 uniform the shader declares has exactly the
// packed size of the block at the same binding, and that the vertex inputs consume locations
// 0 through 6.
//
// Parameters:
//   - sh: the parsed vertex shader
//   - set: the allocated uniform blocks
//
// Returns:
//   - error: ErrShaderLayoutMismatch describing the first disagreement
func CheckShaderLayout(sh shader.Shader, set uniform.Set) error {
	blocks := map[int]uniform.Block{}
	for _, b := range []uniform.Block{set.Camera(), set.Lights(), set.Materials()} {
		blocks[b.Kind().Binding()] = b
	}

	seen := map[int]bool{}
	for _, decl := range sh.Uniforms() {
		if decl.Group != 0 {
			continue
		}
		b, ok := blocks[decl.Binding]
		if !ok {
			return fmt.Errorf("%w: %s at binding %d has no block", ErrShaderLayoutMismatch, decl.Name, decl.Binding)
		}
		size, ok := sh.StructSize(decl.TypeName)
		if !ok {
			return fmt.Errorf("%w: struct %s is not resolvable", ErrShaderLayoutMismatch, decl.TypeName)
		}
		if size != b.Layout().Size() {
			return fmt.Errorf("%w: %s is %d bytes in WGSL, %s block packs to %d",
				ErrShaderLayoutMismatch, decl.TypeName, size, b.Kind(), b.Layout().Size())
		}
		seen[decl.Binding] = true
	}
	for binding, b := range blocks {
		if !seen[binding] {
			return fmt.Errorf("%w: %s block at binding %d is not declared", ErrShaderLayoutMismatch, b.Kind(), binding)
		}
	}
	if !slices.Equal(sh.VertexLocations(), vertexLocations) {
		return fmt.Errorf("%w: vertex locations %v, want %v", ErrShaderLayoutMismatch, sh.VertexLocations(), vertexLocations)
	}
	return nil
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	return s.camera
}

func (s *scene) Materials() material.Registry {
	return s.materials
}

func (s *scene) Lights() light.Registry {
	return s.lights
}

func (s *scene) Renderer() renderer.Renderer {
	return s.r
}

func (s *scene) Uniforms() uniform.Set {
	return s.uniforms
}

func (s *scene) Pipeline() pipeline.Pipeline {
	return s.pipeline
}

func (s *scene) WorkerPool() worker.DynamicWorkerPool {
	return s.computePool
}

func (s *scene) NewMesh(vertices []mesh.Vertex, indices []uint32, maxInstances int, options ...mesh.MeshOption) (mesh.Mesh, error) {
	opts := append([]mesh.MeshOption{
		mesh.WithPipelineKey(s.pipeline.PipelineKey()),
		mesh.WithBindGroups(s.uniforms.Provider()),
	}, options...)
	return mesh.NewMesh(s.r, vertices, indices, maxInstances, opts...)
}

func (s *scene) AddDrawable(d model.Drawable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawables = append(s.drawables, d)
	common.ComponentLogger("scene").Debug("drawable added", "name", d.Name(), "kind", d.Kind().String(), "order", len(s.drawables)-1)
}

func (s *scene) Drawables() []model.Drawable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Drawable(nil), s.drawables...)
}

func (s *scene) AdvanceFrame() error {
	for _, d := range s.Drawables() {
		if err := d.AdvanceFrame(); err != nil {
			return fmt.Errorf("advance %s: %w", d.Name(), err)
		}
	}
	return nil
}

func (s *scene) Draw() error {
	if err := s.r.BeginFrame(); err != nil {
		return err
	}

	var drawErr error
	for _, d := range s.Drawables() {
		if err := d.Draw(); err != nil {
			drawErr = fmt.Errorf("draw %s: %w", d.Name(), err)
			break
		}
	}

	if err := s.r.EndFrame(); err != nil {
		return errors.Join(drawErr, err)
	}
	// An ended frame is always presented so the surface image is handed back even when a
	// drawable failed; otherwise every later BeginFrame would be refused.
	s.r.Present()
	return drawErr
}

func (s *scene) Release() {
	s.mu.Lock()
	drawables := s.drawables
	s.drawables = nil
	s.mu.Unlock()

	for _, d := range drawables {
		d.Release()
	}
	if s.computePool != nil {
		s.computePool.Stop()
	}
	s.uniforms.Release()
}

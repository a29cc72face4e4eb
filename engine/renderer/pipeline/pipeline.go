package pipeline

import (
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/shader"
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	pipelineKey string

	vertexShader, fragmentShader shader.Shader

	vertexLayouts   []VertexBufferLayout
	uniformBindings []UniformBinding

	// handle is the backend-created pipeline object, nil until registered with a Renderer.
	handle any

	depthTestEnabled  bool
	depthWriteEnabled bool
	cullMode          CullMode
	frontFace         FrontFace
	clearColor        [4]float64
}

// Pipeline defines a render pipeline: its shaders, vertex buffer layouts, uniform bind group
// layout and fixed-function state. The Renderer creates the backend object from this
// description once, at registration.
type Pipeline interface {
	// PipelineKey returns the unique identifier of this pipeline.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Shader returns the shader for a stage, or nil if none is set.
	//
	// Parameters:
	//   - shaderType: the stage to look up
	//
	// Returns:
	//   - shader.Shader: the stage's shader or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// VertexLayouts returns the vertex buffer layouts in slot order.
	//
	// Returns:
	//   - []VertexBufferLayout: buffer 0 first
	VertexLayouts() []VertexBufferLayout

	// UniformBindings returns the uniform entries of bind group 0.
	//
	// Returns:
	//   - []UniformBinding: the uniform entries ordered by binding
	UniformBindings() []UniformBinding

	// Handle returns the backend-created pipeline object, or nil if not yet registered.
	Handle() any

	// SetHandle stores the backend-created pipeline object.
	//
	// Parameters:
	//   - h: the backend pipeline object
	SetHandle(h any)

	// DepthTestEnabled reports whether fragments are depth tested.
	DepthTestEnabled() bool

	// DepthWriteEnabled reports whether fragments write depth.
	DepthWriteEnabled() bool

	// CullMode returns the face culling mode.
	CullMode() CullMode

	// FrontFace returns the front-facing winding order.
	FrontFace() FrontFace

	// ClearColor returns the RGBA color the frame is cleared to before this pipeline draws.
	ClearColor() [4]float64
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a render pipeline description. Depth testing and writing are on, no faces
// are culled, and the clear color is opaque black unless overridden by options.
//
// Parameters:
//   - pipelineKey: the unique identifier for the pipeline
//   - opts: variadic list of PipelineBuilderOption functions
//
// Returns:
//   - Pipeline: the pipeline description
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          CullModeNone,
		frontFace:         FrontFaceCCW,
		clearColor:        [4]float64{0, 0, 0, 1},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) VertexLayouts() []VertexBufferLayout {
	return p.vertexLayouts
}

func (p *pipeline) UniformBindings() []UniformBinding {
	return p.uniformBindings
}

func (p *pipeline) Handle() any {
	return p.handle
}

func (p *pipeline) SetHandle(h any) {
	p.handle = h
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) CullMode() CullMode {
	return p.cullMode
}

func (p *pipeline) FrontFace() FrontFace {
	return p.frontFace
}

func (p *pipeline) ClearColor() [4]float64 {
	return p.clearColor
}

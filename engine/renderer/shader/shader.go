package shader

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
)

// SceneSource is the WGSL program shared by every drawable in the scene. It declares the
// Camera, Lights and Materials uniform blocks at group 0 bindings 0, 1 and 2 and consumes
// vertex attributes at locations 0-1 (per vertex) and 2-6 (per instance).
//
//go:embed assets/scene.wgsl
var SceneSource string

// ErrShaderCompile is returned when WGSL source fails validation.
var ErrShaderCompile = errors.New("shader compile failed")

// ShaderType identifies the pipeline stage a shader entry point belongs to.
type ShaderType int

const (
	// ShaderTypeVertex identifies a vertex stage entry point.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment identifies a fragment stage entry point.
	ShaderTypeFragment
)

// shader is the implementation of the Shader interface.
type shader struct {
	key             string
	source          string
	shaderType      ShaderType
	entryPoint      string
	uniforms        []UniformDecl
	structLayouts   map[string]wgslTypeLayout
	vertexLocations []int
}

// Shader is a parsed WGSL program bound to one stage entry point.
//
// Parsing happens once at construction: the entry point, the uniform declarations, the struct
// sizes and the vertex input locations are extracted so the scene can check them against the
// CPU-side block layouts and vertex attribute contract before anything is drawn.
type Shader interface {
	// Key returns the unique identifier of this shader.
	Key() string

	// Source returns the WGSL source.
	Source() string

	// ShaderType returns the stage this shader's entry point belongs to.
	ShaderType() ShaderType

	// EntryPoint returns the name of the entry point function for this shader's stage,
	// or an empty string if the source declares none.
	EntryPoint() string

	// Uniforms returns every `var<uniform>` declaration ordered by group then binding.
	Uniforms() []UniformDecl

	// StructSize returns the uniform address space size in bytes of a declared struct.
	//
	// Parameters:
	//   - name: the WGSL struct name
	//
	// Returns:
	//   - uint64: the struct size in bytes
	//   - bool: false if the struct is not declared or could not be resolved
	StructSize(name string) (uint64, bool)

	// VertexLocations returns the sorted @location indices consumed by the vertex inputs.
	VertexLocations() []int

	// Validate compiles the source with naga and reports ErrShaderCompile on failure.
	// It also fails if the source declares no entry point for this shader's stage.
	//
	// Returns:
	//   - error: nil if the source is valid
	Validate() error
}

var _ Shader = &shader{}

// NewShader parses WGSL source for the given stage.
//
// Parameters:
//   - key: the unique identifier for the shader
//   - shaderType: the stage whose entry point this shader represents
//   - source: the WGSL source
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, shaderType ShaderType, source string) Shader {
	return &shader{
		key:             key,
		source:          source,
		shaderType:      shaderType,
		entryPoint:      parseEntryPoint(source, shaderType),
		uniforms:        parseUniformDecls(source),
		structLayouts:   computeStructSizes(parseStructBlocks(stripComments(source))),
		vertexLocations: parseVertexLocations(source),
	}
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) Uniforms() []UniformDecl {
	return s.uniforms
}

func (s *shader) StructSize(name string) (uint64, bool) {
	l, ok := s.structLayouts[name]
	return l.size, ok
}

func (s *shader) VertexLocations() []int {
	return s.vertexLocations
}

func (s *shader) Validate() error {
	if s.entryPoint == "" {
		return fmt.Errorf("%w: %s: no entry point for stage %d", ErrShaderCompile, s.key, s.shaderType)
	}
	if _, err := naga.Compile(s.source); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrShaderCompile, s.key, err)
	}
	return nil
}

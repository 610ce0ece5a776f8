package shader

import (
	_ "embed"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// MorphTemplate is the WGSL source of the morph surface shader, before slot expansion.
//
//go:embed assets/morph.wgsl
var MorphTemplate string

const (
	// VertexEntryPoint is the vertex stage entry point of the morph template.
	VertexEntryPoint = "vs_main"

	// FragmentEntryPoint is the fragment stage entry point of the morph template.
	FragmentEntryPoint = "fs_main"
)

// shader is the implementation of the Shader interface.
type shader struct {
	key     string
	source  string
	version int
	layout  Layout
	module  *wgpu.ShaderModuleDescriptor

	pp PreProcessor
}

// Shader is an expanded morph template together with everything a render pipeline
// needs from it: the module descriptor, entry points, and vertex buffer layouts.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used as the module label.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the expanded WGSL source.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// Version returns the template version the source declared.
	//
	// Returns:
	//   - int: the template version
	Version() int

	// Layout returns the channel layout the template was expanded for.
	//
	// Returns:
	//   - Layout: the channel layout
	Layout() Layout

	// VertexLayouts returns one vertex buffer layout per channel, in slot order.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts
	VertexLayouts() []wgpu.VertexBufferLayout

	// Module returns the wgpu.ShaderModuleDescriptor built from the expanded source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// Declarations returns the annotations found in the template, in source order.
	//
	// Returns:
	//   - []Annotation: the version and slot annotations
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader expands a template for the given layout.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - template: the WGSL source containing @oxy: annotations
//   - layout: the channel layout to expand for
//
// Returns:
//   - Shader: the expanded shader
//   - error: an error if the layout is invalid or the template cannot be expanded
func NewShader(key, template string, layout Layout) (Shader, error) {
	pp, err := NewPreProcessor(layout)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	source, err := pp.Process(template)
	if err != nil {
		return nil, fmt.Errorf("shader %s: failed to pre-process template: %w", key, err)
	}
	return &shader{
		key:     key,
		source:  source,
		version: pp.Version(),
		layout:  layout,
		module: &wgpu.ShaderModuleDescriptor{
			Label: key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: source,
			},
		},
		pp: pp,
	}, nil
}

// NewMorphShader expands the embedded MorphTemplate for the given layout.
//
// Parameters:
//   - layout: the channel layout to expand for
//
// Returns:
//   - Shader: the expanded morph shader
//   - error: an error if the layout is invalid
func NewMorphShader(layout Layout) (Shader, error) {
	return NewShader("morph", MorphTemplate, layout)
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Version() int {
	return s.version
}

func (s *shader) Layout() Layout {
	return s.layout
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.layout.VertexBufferLayouts()
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

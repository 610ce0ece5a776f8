package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMorphShaderExpandsChannels(t *testing.T) {
	s, err := NewMorphShader(Layout{PositionChannels: 4, ColorChannels: 4})
	require.NoError(t, err)

	src := s.Source()
	assert.NotContains(t, src, "@oxy:")
	assert.Equal(t, 1, s.Version())

	for _, want := range []string{
		"position_weights: array<vec4<f32>, 1>,",
		"color_weights: array<vec4<f32>, 1>,",
		"@location(0) position0: vec3<f32>,",
		"@location(3) position3: vec3<f32>,",
		"@location(4) color0: vec4<f32>,",
		"@location(7) color3: vec4<f32>,",
		"let position_weight3 = u.position_weights[0][3];",
		"let color_rest = 1.0 - (color_weight0 + color_weight1 + color_weight2 + color_weight3);",
		"position = in.position0 * (position_weight0 + position_rest) + in.position1 * position_weight1",
	} {
		assert.Contains(t, src, want)
	}
	assert.NotContains(t, src, "@location(8)")

	require.NotNil(t, s.Module())
	require.NotNil(t, s.Module().WGSLDescriptor)
	assert.Equal(t, src, s.Module().WGSLDescriptor.Code)
	assert.Equal(t, "morph", s.Module().Label)
}

func TestMorphShaderUnevenLayout(t *testing.T) {
	s, err := NewMorphShader(Layout{PositionChannels: 5, ColorChannels: 2})
	require.NoError(t, err)

	src := s.Source()
	assert.Contains(t, src, "position_weights: array<vec4<f32>, 2>,")
	assert.Contains(t, src, "let position_weight4 = u.position_weights[1][0];")
	assert.Contains(t, src, "@location(5) color0: vec4<f32>,")
	assert.Contains(t, src, "@location(6) color1: vec4<f32>,")
	assert.Equal(t, uint64(64+2*16+1*16), s.Layout().UniformSize())
}

func TestVertexBufferLayouts(t *testing.T) {
	l := Layout{PositionChannels: 2, ColorChannels: 3}
	layouts := l.VertexBufferLayouts()
	require.Len(t, layouts, 5)

	for i, vbl := range layouts {
		require.Len(t, vbl.Attributes, 1)
		assert.Equal(t, uint32(i), vbl.Attributes[0].ShaderLocation)
		if i < 2 {
			assert.Equal(t, wgpu.VertexFormatFloat32x3, vbl.Attributes[0].Format)
			assert.Equal(t, uint64(12), vbl.ArrayStride)
		} else {
			assert.Equal(t, wgpu.VertexFormatUnorm8x4, vbl.Attributes[0].Format)
			assert.Equal(t, uint64(4), vbl.ArrayStride)
		}
	}
	assert.Equal(t, uint32(1), l.PositionSlot(1))
	assert.Equal(t, uint32(4), l.ColorSlot(2))
}

func TestLayoutValidate(t *testing.T) {
	assert.NoError(t, Layout{PositionChannels: 4, ColorChannels: 4}.Validate())
	assert.Error(t, Layout{PositionChannels: 0, ColorChannels: 4}.Validate())
	assert.Error(t, Layout{PositionChannels: 5, ColorChannels: 4}.Validate())

	_, err := NewMorphShader(Layout{PositionChannels: 6, ColorChannels: 6})
	assert.Error(t, err)
}

func TestProcessRejectsBadTemplates(t *testing.T) {
	full := MorphTemplate
	cases := map[string]string{
		"unknown slot":      strings.Replace(full, "//@oxy:slot morph_color", "//@oxy:slot morph_normal", 1),
		"missing slot":      strings.Replace(full, "//@oxy:slot morph_color", "", 1),
		"duplicate slot":    strings.Replace(full, "//@oxy:slot morph_color", "//@oxy:slot morph_color\n//@oxy:slot morph_color", 1),
		"no version":        strings.Replace(full, "//@oxy:version 1", "", 1),
		"wrong version":     strings.Replace(full, "//@oxy:version 1", "//@oxy:version 2", 1),
		"bad version":       strings.Replace(full, "//@oxy:version 1", "//@oxy:version one", 1),
		"slot arity":        strings.Replace(full, "//@oxy:slot morph_color", "//@oxy:slot morph_color extra", 1),
		"unknown directive": strings.Replace(full, "//@oxy:version 1", "//@oxy:version 1\n//@oxy:include camera", 1),
		"empty annotation":  strings.Replace(full, "//@oxy:version 1", "//@oxy:version 1\n//@oxy:", 1),
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewShader(name, src, Layout{PositionChannels: 4, ColorChannels: 4})
			assert.Error(t, err)
		})
	}
}

func TestProcessReportsLine(t *testing.T) {
	pp, err := NewPreProcessor(Layout{PositionChannels: 1, ColorChannels: 1})
	require.NoError(t, err)

	_, err = pp.Process("//@oxy:version 1\n\n//@oxy:slot nope\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestDeclarations(t *testing.T) {
	s, err := NewMorphShader(Layout{PositionChannels: 1, ColorChannels: 1})
	require.NoError(t, err)

	decls := s.Declarations()
	require.Len(t, decls, 5)
	assert.Equal(t, AnnotationTypeVersion, decls[0].Type)
	var slots []AnnotationArg
	for _, d := range decls[1:] {
		assert.Equal(t, AnnotationTypeSlot, d.Type)
		slots = append(slots, d.Slot)
	}
	assert.Equal(t, []AnnotationArg{AnnotationArgMorphWeights, AnnotationArgMorphAttributes, AnnotationArgMorphPosition, AnnotationArgMorphColor}, slots)
}

func TestParseAnnotationIgnoresPlainLines(t *testing.T) {
	for _, line := range []string{"", "let x = 1.0;", "// a comment", "    struct Foo {"} {
		a, err := parseAnnotation(line, 1)
		assert.NoError(t, err)
		assert.Nil(t, a)
	}

	a, err := parseAnnotation("    //  @oxy:slot morph_position", 9)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, AnnotationArgMorphPosition, a.Slot)
	assert.Equal(t, 9, a.Line)
}

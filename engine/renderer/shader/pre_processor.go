// pre_processor.go implements the morph template pre-processor. It scans shader source
// for @oxy: annotations and replaces every slot with code generated for a channel Layout,
// so the same fixed template serves any number of position and color channels.
package shader

import (
	"fmt"
	"strings"
)

// SupportedVersion is the only template version this pre-processor expands.
const SupportedVersion = 1

// slotRule generates the WGSL lines that replace a slot for a given layout.
type slotRule func(l Layout) []string

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// layout is the channel layout that slots are expanded for.
	layout Layout

	// rules maps each slot name to its generator.
	rules map[AnnotationArg]slotRule

	// declarations accumulates the annotations found during a Process call. Reset at the
	// start of each Process invocation.
	declarations []Annotation

	version int
}

// PreProcessor expands the @oxy: slots of a morph template for a fixed channel Layout.
type PreProcessor interface {
	// Process replaces every @oxy:slot line with the generated code for the layout and
	// strips the @oxy:version line. Each known slot must appear exactly once and the
	// version must be SupportedVersion.
	//
	// The declarations list is reset at the start of each call and can be retrieved
	// via Declarations() after Process returns.
	//
	// Parameters:
	//   - source: the raw WGSL template
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: an error if an annotation is malformed, a slot is unknown, missing or
	//     repeated, or the version is unsupported
	Process(source string) (string, error)

	// Declarations returns the annotations found during the most recent call to Process,
	// in source order. Returns nil if Process has not been called.
	//
	// Returns:
	//   - []Annotation: the annotations collected during the last Process call
	Declarations() []Annotation

	// Version returns the template version declared by the last processed source.
	//
	// Returns:
	//   - int: the version, or 0 if Process has not succeeded
	Version() int
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor that expands slots for the given layout.
//
// Parameters:
//   - layout: the channel layout
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
//   - error: an error if the layout is invalid
func NewPreProcessor(layout Layout) (PreProcessor, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &preProcessor{
		layout: layout,
		rules: map[AnnotationArg]slotRule{
			AnnotationArgMorphWeights:    morphWeights,
			AnnotationArgMorphAttributes: morphAttributes,
			AnnotationArgMorphPosition:   morphPosition,
			AnnotationArgMorphColor:      morphColor,
		},
	}, nil
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	p.version = 0

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	seen := make(map[AnnotationArg]int, len(p.rules))
	version := 0

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case AnnotationTypeVersion:
			if version != 0 {
				return "", fmt.Errorf("line %d: duplicate @oxy:version", a.Line)
			}
			if a.Version != SupportedVersion {
				return "", fmt.Errorf("line %d: unsupported template version %d, want %d", a.Line, a.Version, SupportedVersion)
			}
			version = a.Version
		case AnnotationTypeSlot:
			if version == 0 {
				return "", fmt.Errorf("line %d: @oxy:slot before @oxy:version", a.Line)
			}
			if prev, ok := seen[a.Slot]; ok {
				return "", fmt.Errorf("line %d: slot %q already expanded at line %d", a.Line, a.Slot, prev)
			}
			seen[a.Slot] = a.Line
			rule, ok := p.rules[a.Slot]
			if !ok {
				return "", fmt.Errorf("line %d: no rule for slot %q", a.Line, a.Slot)
			}
			out = append(out, rule(p.layout)...)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", a.Line, a.Type)
		}
		p.declarations = append(p.declarations, *a)
	}

	if version == 0 {
		return "", fmt.Errorf("template declares no @oxy:version")
	}
	for _, slot := range validSlots {
		if _, ok := seen[slot]; !ok {
			return "", fmt.Errorf("template is missing slot %q", slot)
		}
	}
	p.version = version
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

func (p *preProcessor) Version() int {
	return p.version
}

func morphWeights(l Layout) []string {
	return []string{
		fmt.Sprintf("    position_weights: array<vec4<f32>, %d>,", WeightVectors(l.PositionChannels)),
		fmt.Sprintf("    color_weights: array<vec4<f32>, %d>,", WeightVectors(l.ColorChannels)),
	}
}

func morphAttributes(l Layout) []string {
	lines := make([]string, 0, l.VertexBufferCount())
	for i := range l.PositionChannels {
		lines = append(lines, fmt.Sprintf("    @location(%d) position%d: vec3<f32>,", l.PositionSlot(i), i))
	}
	for i := range l.ColorChannels {
		lines = append(lines, fmt.Sprintf("    @location(%d) color%d: vec4<f32>,", l.ColorSlot(i), i))
	}
	return lines
}

func morphPosition(l Layout) []string {
	return blend("position", l.PositionChannels)
}

func morphColor(l Layout) []string {
	return blend("color", l.ColorChannels)
}

// blend emits the weighted sum of n channels of the named attribute. Whatever weight the
// bound channels do not account for is given to channel 0, which holds the base surface
// whenever anything is left over.
func blend(name string, n int) []string {
	lines := make([]string, 0, n+2)
	weights := make([]string, n)
	terms := make([]string, n)
	for i := range n {
		weights[i] = fmt.Sprintf("%s_weight%d", name, i)
		lines = append(lines, fmt.Sprintf("    let %s = u.%s_weights[%d][%d];", weights[i], name, i/4, i%4))
		terms[i] = fmt.Sprintf("in.%s%d * %s", name, i, weights[i])
	}
	lines = append(lines, fmt.Sprintf("    let %s_rest = 1.0 - (%s);", name, strings.Join(weights, " + ")))
	terms[0] = fmt.Sprintf("in.%s0 * (%s + %s_rest)", name, weights[0], name)
	lines = append(lines, fmt.Sprintf("    %s = %s;", name, strings.Join(terms, " + ")))
	return lines
}

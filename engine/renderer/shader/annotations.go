// annotations.go defines the annotation types and parser for the morph shader template.
// Annotations are single-line WGSL comments prefixed with @oxy: that mark where the
// pre-processor inserts generated per-channel code, and which template version a source
// was written against.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// AnnotationTypeSlot marks an insertion point that the pre-processor replaces with
	// code generated for the configured channel layout.
	//
	// Syntax: //@oxy:slot <slot_name>
	//
	// Example: //@oxy:slot morph_position
	AnnotationTypeSlot AnnotationType = "slot"

	// AnnotationTypeVersion declares the template version the source was written for.
	// It must appear exactly once, before any slot.
	//
	// Syntax: //@oxy:version <n>
	//
	// Example: //@oxy:version 1
	AnnotationTypeVersion AnnotationType = "version"
)

// Annotation represents a single parsed @oxy: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Slot is the slot name for slot annotations, empty otherwise.
	Slot AnnotationArg

	// Version is the declared version for version annotations, 0 otherwise.
	Version int

	// Line is the 1-based line number in the original WGSL source where this annotation
	// was found. Used for error reporting.
	Line int
}

// AnnotationArg is a typed string constant naming a template slot.
type AnnotationArg string

const (
	// AnnotationArgMorphWeights expands to the per-channel weight fields of the uniform struct.
	AnnotationArgMorphWeights AnnotationArg = "morph_weights"

	// AnnotationArgMorphAttributes expands to one vertex input field per position and color channel.
	AnnotationArgMorphAttributes AnnotationArg = "morph_attributes"

	// AnnotationArgMorphPosition expands to the weighted sum of the position channels,
	// assigned to a local named position.
	AnnotationArgMorphPosition AnnotationArg = "morph_position"

	// AnnotationArgMorphColor expands to the weighted sum of the color channels,
	// assigned to a local named color.
	AnnotationArgMorphColor AnnotationArg = "morph_color"
)

// validSlots lists every slot a template may declare. Each one must appear exactly once.
var validSlots = []AnnotationArg{
	AnnotationArgMorphWeights,
	AnnotationArgMorphAttributes,
	AnnotationArgMorphPosition,
	AnnotationArgMorphColor,
}

// parseAnnotation attempts to parse a single line of WGSL source as an @oxy: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix. Returns
// a populated Annotation for valid annotations, or an error describing the problem for
// malformed annotations with correct prefix but invalid syntax or unknown arguments.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	comment, ok := strings.CutPrefix(trimmed, "//")
	if !ok {
		return nil, nil
	}
	after, ok := strings.CutPrefix(strings.TrimSpace(comment), annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch args[0] {
	case string(AnnotationTypeSlot):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy slot annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validSlots, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown slot %q in @oxy slot annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: AnnotationTypeSlot,
			Slot: AnnotationArg(args[1]),
			Line: lineNum,
		}, nil
	case string(AnnotationTypeVersion):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy version annotation requires exactly one argument", lineNum)
		}
		v, err := strconv.Atoi(args[1])
		if err != nil || v < 1 {
			return nil, fmt.Errorf("line %d: invalid version %q in @oxy version annotation", lineNum, args[1])
		}
		return &Annotation{
			Type:    AnnotationTypeVersion,
			Version: v,
			Line:    lineNum,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}

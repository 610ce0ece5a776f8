package engine

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/oxy-morph/engine/grid"
	"github.com/Carmen-Shannon/oxy-morph/engine/loader"
	"github.com/Carmen-Shannon/oxy-morph/engine/mesh"
)

// Variant is one selectable state of the globe.
type Variant struct {
	// Index is the variant's position in the weight vector.
	Index int

	// Name is the manifest name, used for selection by name.
	Name string

	// Hue is the hue range the variant's magnitudes are coloured across.
	Hue mesh.HueRange
}

// Prepared is the geometry for a manifest: one surface per surviving variant, all
// sharing a single topology.
type Prepared struct {
	// Variants are the surviving variants in manifest order.
	Variants []Variant

	// Grids are the variant grids, parallel to Variants.
	Grids []*grid.Grid

	// Surfaces are the built surfaces, parallel to Variants.
	Surfaces []*mesh.Surface

	// Mask is the union of absent cells over all grids.
	Mask *mesh.Mask

	// Failures maps every dropped variant to the reason it was dropped.
	Failures map[string]error
}

// Prepare builds the geometry for a loaded dataset: it checks every grid's shape against
// the first, builds the union mask, then builds all surfaces in parallel.
//
// Parameters:
//   - ctx: cancels outstanding builds
//   - b: the mesh builder
//   - ds: the loaded dataset
//
// Returns:
//   - *Prepared: the surfaces and their variants
//   - error: a *grid.ShapeMismatchError, a *mesh.TopologyMismatchError, or ctx.Err()
func Prepare(ctx context.Context, b mesh.Builder, ds *loader.Dataset) (*Prepared, error) {
	p := &Prepared{
		Variants: make([]Variant, len(ds.Variants)),
		Grids:    make([]*grid.Grid, len(ds.Variants)),
		Failures: ds.Failures,
	}
	sources := make([]mesh.Source, len(ds.Variants))
	for i, v := range ds.Variants {
		p.Variants[i] = Variant{Index: i, Name: v.Spec.Name, Hue: mesh.HueRange(v.Spec.Hue)}
		p.Grids[i] = v.Grid
		sources[i] = mesh.Source{Grid: v.Grid, Hue: mesh.HueRange(v.Spec.Hue)}
	}

	mask, err := mesh.NewMask(p.Grids...)
	if err != nil {
		return nil, fmt.Errorf("failed to build missing-cell mask: %w", err)
	}
	p.Mask = mask

	surfaces, err := b.BuildAll(ctx, sources, mask)
	if err != nil {
		return nil, fmt.Errorf("failed to build surfaces: %w", err)
	}
	p.Surfaces = surfaces
	return p, nil
}

// LoadAndPrepare loads a manifest and prepares its geometry on the calling goroutine.
//
// Parameters:
//   - ctx: cancels fetches and builds
//   - l: the loader
//   - b: the mesh builder
//   - m: the manifest
//
// Returns:
//   - *Prepared: the surfaces and their variants
//   - error: the first fatal load or build error
func LoadAndPrepare(ctx context.Context, l loader.Loader, b mesh.Builder, m *loader.Manifest) (*Prepared, error) {
	ds, err := l.Load(ctx, m, nil)
	if err != nil {
		return nil, err
	}
	return Prepare(ctx, b, ds)
}

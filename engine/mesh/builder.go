package mesh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-morph/common"
	"github.com/Carmen-Shannon/oxy-morph/engine/grid"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Source pairs a variant grid with the hue range its magnitudes are coloured across.
type Source struct {
	Grid *grid.Grid
	Hue  HueRange
}

// builder is the implementation of the Builder interface.
type builder struct {
	// baseRadius is the radial distance from the globe centre to the base of each box.
	baseRadius float32

	// originOffset shifts the box along its own radial axis before scaling, so a box
	// grows outward from the globe surface instead of from its centre.
	originOffset float32

	// lateralExtent is the constant width and depth of every box.
	lateralExtent float32

	// minExtent and maxExtent bound the radial height of a box.
	minExtent float32
	maxExtent float32

	// lonCorrection and latCorrection are added to the cell angles to line the boxes up with the globe texture.
	lonCorrection float32
	latCorrection float32

	saturation   float64
	minLightness float64
	maxLightness float64

	workers  int
	pool     worker.DynamicWorkerPool
	poolOnce *sync.Once

	logger *slog.Logger
}

// Builder turns variant grids into merged Surfaces that share one vertex topology.
type Builder interface {
	// Build emits one box per cell that survives mask, positioned on the globe by its
	// longitude/latitude, extruded by its normalised magnitude, and coloured from hue.
	//
	// Parameters:
	//   - g: the variant grid
	//   - hue: the hue endpoints for the variant
	//   - mask: the union-of-missingness for all variants
	//
	// Returns:
	//   - *Surface: the merged geometry
	//   - error: a *grid.ShapeMismatchError if g does not match the mask's shape
	Build(g *grid.Grid, hue HueRange, mask *Mask) (*Surface, error)

	// BuildAll builds every source against one mask in parallel on the builder's worker
	// pool and validates that the results share topology.
	//
	// Parameters:
	//   - ctx: cancels outstanding builds
	//   - sources: the variants in display order
	//   - mask: the union-of-missingness for all variants
	//
	// Returns:
	//   - []*Surface: one surface per source, in source order
	//   - error: the joined build errors, a *TopologyMismatchError, or ctx.Err()
	BuildAll(ctx context.Context, sources []Source, mask *Mask) ([]*Surface, error)

	// CellTransform returns the closed-form model matrix for one cell:
	// Ry(lon) * Rx(lat) * T(0, 0, baseRadius) * S(lateral, lateral, height) * T(0, 0, originOffset).
	//
	// Parameters:
	//   - lonDeg: cell longitude in degrees
	//   - latDeg: cell latitude in degrees
	//   - amount: normalised magnitude in [0, 1]
	//
	// Returns:
	//   - mgl32.Mat4: the column-major transform
	CellTransform(lonDeg, latDeg, amount float32) mgl32.Mat4
}

var _ Builder = &builder{}

// NewBuilder creates a Builder with the globe layout used by the viewer, then applies options.
//
// Parameters:
//   - options: functional options to configure the builder
//
// Returns:
//   - Builder: the configured builder
func NewBuilder(options ...BuilderOption) Builder {
	b := &builder{
		baseRadius:    1,
		originOffset:  0.5,
		lateralExtent: 0.005,
		minExtent:     0.01,
		maxExtent:     0.5,
		lonCorrection: math32.Pi * 0.5,
		latCorrection: math32.Pi * -0.135,
		saturation:    1,
		minLightness:  0.4,
		maxLightness:  1.0,
		workers:       runtime.NumCPU(),
		poolOnce:      &sync.Once{},
		logger:        slog.Default(),
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *builder) CellTransform(lonDeg, latDeg, amount float32) mgl32.Mat4 {
	lon := common.DegToRad(lonDeg) + b.lonCorrection
	lat := common.DegToRad(latDeg) + b.latCorrection
	height := common.Lerp(b.minExtent, b.maxExtent, amount)

	return mgl32.HomogRotate3DY(lon).
		Mul4(mgl32.HomogRotate3DX(lat)).
		Mul4(mgl32.Translate3D(0, 0, b.baseRadius)).
		Mul4(mgl32.Scale3D(b.lateralExtent, b.lateralExtent, height)).
		Mul4(mgl32.Translate3D(0, 0, b.originOffset))
}

func (b *builder) Build(g *grid.Grid, hue HueRange, mask *Mask) (*Surface, error) {
	if got := g.Shape(); got != mask.Shape() {
		return nil, &grid.ShapeMismatchError{Want: mask.Shape(), Got: got}
	}

	cells := mask.Present()
	s := &Surface{
		Positions: make([]float32, 0, cells*BoxVertexCount*3),
		Colors:    make([]uint8, 0, cells*BoxVertexCount*4),
		Indices:   make([]uint32, 0, cells*BoxIndexCount),
		Cells:     make([]CellRef, 0, cells),
	}

	shape := mask.Shape()
	for row := 0; row < shape.Rows; row++ {
		for col := 0; col < shape.Cols; col++ {
			if mask.Missing(row, col) {
				continue
			}
			v, ok := g.Value(row, col)
			if !ok {
				return nil, fmt.Errorf("cell (%d, %d) is absent but not masked", row, col)
			}
			amount := g.Amount(v)
			lon := float32(float64(col)*shape.CellSize + shape.XLLCorner)
			lat := float32(float64(row)*shape.CellSize + shape.YLLCorner)
			b.appendCell(s, row, col, b.CellTransform(lon, lat, float32(amount)), b.cellColor(hue, amount))
		}
	}
	return s, nil
}

// cellColor maps a normalised magnitude to a flat colour across the variant's hue range.
func (b *builder) cellColor(hue HueRange, amount float64) common.RGBA8 {
	h := common.Lerp64(hue[0], hue[1], amount)
	l := common.Lerp64(b.minLightness, b.maxLightness, amount)
	return common.HSLToRGBA8(h, b.saturation, l)
}

// appendCell bakes m into a unit box and appends it to s with its indices offset past the existing vertices.
func (b *builder) appendCell(s *Surface, row, col int, m mgl32.Mat4, c common.RGBA8) {
	first := uint32(s.VertexCount())
	s.Cells = append(s.Cells, CellRef{Row: row, Col: col, FirstVertex: first})
	for _, p := range unitBox.positions {
		w := m.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1})
		s.Positions = append(s.Positions, w[0], w[1], w[2])
		s.Colors = append(s.Colors, c[:]...)
	}
	for _, idx := range unitBox.indices {
		s.Indices = append(s.Indices, first+idx)
	}
}

func (b *builder) BuildAll(ctx context.Context, sources []Source, mask *Mask) ([]*Surface, error) {
	if len(sources) == 0 {
		return nil, nil
	}
	pool := b.workerPool()

	start := time.Now()
	surfaces := make([]*Surface, len(sources))
	errs := make([]error, len(sources))

	// The pool's own Wait blocks until workers idle out, so a WaitGroup is the barrier.
	var wg sync.WaitGroup
	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		wg.Add(1)
		idx, s := i, src
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				if err := ctx.Err(); err != nil {
					errs[idx] = err
					return nil, err
				}
				surf, err := b.Build(s.Grid, s.Hue, mask)
				if err != nil {
					errs[idx] = fmt.Errorf("variant %d: %w", idx, err)
					return nil, err
				}
				surfaces[idx] = surf
				return surf, nil
			},
		})
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := ValidateTopology(surfaces...); err != nil {
		return nil, err
	}

	b.logger.Debug("built variant surfaces",
		slog.Int("variants", len(surfaces)),
		slog.Int("cells", len(surfaces[0].Cells)),
		slog.Int("vertices", surfaces[0].VertexCount()),
		slog.Duration("elapsed", time.Since(start)))
	return surfaces, nil
}

// workerPool lazily creates the shared pool on first use.
func (b *builder) workerPool() worker.DynamicWorkerPool {
	b.poolOnce.Do(func() {
		b.pool = worker.NewDynamicWorkerPool(max(b.workers, 1), 256, 1*time.Second)
	})
	return b.pool
}

package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-morph/common"
	"github.com/Carmen-Shannon/oxy-morph/engine/grid"
	"github.com/Carmen-Shannon/oxy-morph/engine/loader"
	"github.com/Carmen-Shannon/oxy-morph/engine/mesh"
	"github.com/Carmen-Shannon/oxy-morph/engine/morph"
	"github.com/Carmen-Shannon/oxy-morph/engine/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gridA = `ncols 3
nrows 2
NODATA_value -9999
1 2 3
4 -9999 6
`

const gridB = `ncols 3
nrows 2
3 2 1
6 5 4
`

// fakeHost is a manual frame host: work queues until the test drains it.
type fakeHost struct {
	mu     sync.Mutex
	posted []func()
	frame  func()
	notify chan struct{}

	// beforeFrame runs ahead of every frame callback.
	beforeFrame func()
	title       string
}

func newFakeHost() *fakeHost {
	return &fakeHost{notify: make(chan struct{}, 1)}
}

func (h *fakeHost) RequestFrame(fn func()) {
	h.mu.Lock()
	h.frame = fn
	h.mu.Unlock()
	h.signal()
}

func (h *fakeHost) Post(fn func()) {
	h.mu.Lock()
	h.posted = append(h.posted, fn)
	h.mu.Unlock()
	h.signal()
}

func (h *fakeHost) SetTitle(title string) {
	h.title = title
}

func (h *fakeHost) signal() {
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

func (h *fakeHost) hasFrame() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame != nil
}

// drain runs the queued work once and reports whether anything ran.
func (h *fakeHost) drain() bool {
	h.mu.Lock()
	posted, frame := h.posted, h.frame
	h.posted, h.frame = nil, nil
	h.mu.Unlock()

	for _, fn := range posted {
		fn()
	}
	if frame != nil {
		if h.beforeFrame != nil {
			h.beforeFrame()
		}
		frame()
	}
	return len(posted) > 0 || frame != nil
}

// pumpUntil drains the host until cond holds.
func (h *fakeHost) pumpUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for !cond() {
		if h.drain() {
			continue
		}
		select {
		case <-h.notify:
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			t.Fatal("condition not reached")
		}
	}
}

// settle drains until no frame is pending, bounded so a runaway scheduler fails the test.
func (h *fakeHost) settle(t *testing.T) int {
	t.Helper()
	frames := 0
	for h.hasFrame() {
		require.Less(t, frames, 1000, "frames never stopped")
		h.drain()
		frames++
	}
	return frames
}

type fakeRenderer struct {
	uploads  [][]*mesh.Surface
	binds    []morph.Assignment
	weights  [2][]float32
	viewProj [16]float32
	resizes  [][2]int
	renders  int
}

func (r *fakeRenderer) UploadSurfaces(surfaces []*mesh.Surface) error {
	r.uploads = append(r.uploads, surfaces)
	return nil
}
func (r *fakeRenderer) Bind(assign morph.Assignment) { r.binds = append(r.binds, assign) }
func (r *fakeRenderer) SetWeights(positionWeights, colorWeights []float32) {
	r.weights = [2][]float32{positionWeights, colorWeights}
}
func (r *fakeRenderer) Resize(width, height int) { r.resizes = append(r.resizes, [2]int{width, height}) }
func (r *fakeRenderer) SetViewProjection(m [16]float32) { r.viewProj = m }
func (r *fakeRenderer) Render() error {
	r.renders++
	return nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustParse(t *testing.T, text string) *grid.Grid {
	t.Helper()
	g, err := grid.Parse(text)
	require.NoError(t, err)
	return g
}

func testManifest() *loader.Manifest {
	return &loader.Manifest{
		Title: "test",
		Variants: []loader.VariantSpec{
			{Name: "a", Hue: [2]float64{0.7, 0.3}, Source: "memory://a"},
			{Name: "b", Hue: [2]float64{0.1, 0.4}, Source: "memory://b"},
			{Name: "a>b", Hue: [2]float64{0.6, 1.1}, Derive: &loader.DeriveSpec{Base: "a", Other: "b", Compare: grid.CompareGreater}},
		},
	}
}

type harness struct {
	host       *fakeHost
	renderer   *fakeRenderer
	clock      *fakeClock
	engine     Engine
	ready      []error
	affordance map[int]bool
}

func newHarness(t *testing.T, options ...EngineBuilderOption) *harness {
	t.Helper()
	h := &harness{
		host:       newFakeHost(),
		renderer:   &fakeRenderer{},
		clock:      &fakeClock{t: time.Unix(0, 0)},
		affordance: map[int]bool{},
	}
	h.host.beforeFrame = func() { h.clock.advance(50 * time.Millisecond) }

	l := loader.NewLoader(
		loader.WithLogger(quietLogger()),
		loader.WithWorkers(2),
		loader.WithRetry(time.Millisecond, 10*time.Millisecond, 1),
		loader.WithGrid("memory://a", mustParse(t, gridA)),
		loader.WithGrid("memory://b", mustParse(t, gridB)),
	)
	base := []EngineBuilderOption{
		WithLogger(quietLogger()),
		WithLoader(l),
		WithMeshBuilder(mesh.NewBuilder(mesh.WithWorkers(2), mesh.WithLogger(quietLogger()))),
		WithSchedulerOptions(scheduler.WithClock(h.clock.now)),
		WithTransitionDuration(200 * time.Millisecond),
		WithReadyCallback(func(err error) { h.ready = append(h.ready, err) }),
		WithAffordanceCallback(func(index int, selected bool) { h.affordance[index] = selected }),
	}
	h.engine = NewEngine(h.host, h.renderer, append(base, options...)...)
	return h
}

func (h *harness) load(t *testing.T, m *loader.Manifest) error {
	t.Helper()
	h.engine.Load(context.Background(), m)
	h.host.pumpUntil(t, func() bool { return len(h.ready) > 0 })
	return h.ready[0]
}

func TestLoadInstallsAndSelectsFirstVariant(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.load(t, testManifest()))

	e := h.engine
	require.Len(t, e.Variants(), 3)
	assert.Equal(t, "a>b", e.Variants()[2].Name)
	assert.Equal(t, mesh.HueRange{0.6, 1.1}, e.Variants()[2].Hue)
	assert.Equal(t, 0, e.Selected())
	assert.Equal(t, []float32{1, 0, 0}, e.Weights())
	assert.Equal(t, map[int]bool{0: true, 1: false, 2: false}, h.affordance)
	assert.Equal(t, "test", h.host.title)

	require.Len(t, h.renderer.uploads, 1)
	surfaces := h.renderer.uploads[0]
	require.Len(t, surfaces, 3)
	// the absent centre cell of a is masked out of every variant
	assert.Len(t, surfaces[0].Cells, 5)
	require.NoError(t, mesh.ValidateTopology(surfaces...))

	h.host.settle(t)
	assert.Equal(t, 1, h.renderer.renders, "one frame after install, then idle")
	require.Len(t, h.renderer.binds, 1)
	assert.Equal(t, []morph.Binding{{Channel: 0, Variant: 0, Weight: 1}}, h.renderer.binds[0].Positions)
	assert.Equal(t, []float32{1, 0, 0, 0}, h.renderer.weights[0])
	assert.Equal(t, h.engine.Camera().ViewProjectionMatrix(), h.renderer.viewProj)
}

func TestSelectVariantAnimatesToIdle(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.load(t, testManifest()))
	h.host.settle(t)
	rendersBefore := h.renderer.renders

	require.NoError(t, h.engine.SelectVariant(1))
	assert.True(t, h.engine.IsAnimating())
	assert.Equal(t, map[int]bool{0: false, 1: true, 2: false}, h.affordance)

	frames := h.host.settle(t)
	assert.Equal(t, 4, frames, "200ms at 50ms per frame")
	assert.Equal(t, rendersBefore+4, h.renderer.renders)
	assert.False(t, h.engine.IsAnimating())
	assert.Equal(t, scheduler.StateIdle, h.engine.Scheduler().State())
	assert.Equal(t, []float32{0, 1, 0}, h.engine.Weights())

	last := h.renderer.binds[len(h.renderer.binds)-1]
	assert.Equal(t, []morph.Binding{{Channel: 0, Variant: 1, Weight: 1}}, last.Positions)
	assert.Equal(t, []float32{1, 0, 0, 0}, h.renderer.weights[0])
}

func TestMidTransitionBindsBothEndpoints(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.load(t, testManifest()))
	h.host.settle(t)

	require.NoError(t, h.engine.SelectVariant(2))
	h.host.drain()
	h.host.drain()

	last := h.renderer.binds[len(h.renderer.binds)-1]
	require.Len(t, last.Positions, 2)
	assert.Equal(t, 0, last.Positions[0].Variant)
	assert.Equal(t, 2, last.Positions[1].Variant)
	assert.InDeltaSlice(t, []float32{0.5, 0.5, 0, 0}, h.renderer.weights[0], 1e-6)
}

func TestSelectVariantErrors(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.engine.SelectVariant(0), ErrNotReady)
	assert.ErrorIs(t, h.engine.SelectVariantByName("a"), ErrNotReady)
	assert.ErrorIs(t, h.engine.SetTargetWeights([]float32{1}), ErrNotReady)
	assert.Equal(t, -1, h.engine.Selected())
	assert.Nil(t, h.engine.Weights())

	require.NoError(t, h.load(t, testManifest()))
	assert.Error(t, h.engine.SelectVariant(3))
	assert.Error(t, h.engine.SelectVariant(-1))
	assert.Error(t, h.engine.SelectVariantByName("c"))

	require.NoError(t, h.engine.SelectVariantByName("b"))
	assert.Equal(t, 1, h.engine.Selected())
}

func TestSetTargetWeights(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.load(t, testManifest()))

	assert.Error(t, h.engine.SetTargetWeights([]float32{0.5, 0.5}))

	require.NoError(t, h.engine.SetTargetWeights([]float32{0.5, 0, 0.5}))
	assert.Equal(t, -1, h.engine.Selected())
	assert.Equal(t, map[int]bool{0: false, 1: false, 2: false}, h.affordance)

	h.host.settle(t)
	assert.Equal(t, []float32{0.5, 0, 0.5}, h.engine.Weights())
}

func TestPartialTargetBlendsAgainstBase(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.load(t, testManifest()))
	h.host.settle(t)

	require.NoError(t, h.engine.SetTargetWeights([]float32{0, 0.5, 0}))
	h.host.settle(t)
	assert.Equal(t, []float32{0, 0.5, 0}, h.engine.Weights())

	last := h.renderer.binds[len(h.renderer.binds)-1]
	require.Len(t, last.Positions, 2)
	assert.Equal(t, []int{0, 1}, []int{last.Positions[0].Variant, last.Positions[1].Variant})
	assert.Equal(t, 0, last.Positions[0].Channel, "the base takes channel 0")
	assert.InDeltaSlice(t, []float32{0.5, 0.5, 0, 0}, h.renderer.weights[0], 1e-6)
	assert.InDeltaSlice(t, []float32{0.5, 0.5, 0, 0}, h.renderer.weights[1], 1e-6)
}

func TestLoadDropsFailedVariant(t *testing.T) {
	h := newHarness(t)
	m := testManifest()
	m.Variants = append(m.Variants, loader.VariantSpec{Name: "gone", Hue: [2]float64{0, 1}, Source: t.TempDir() + "/missing.asc"})

	require.NoError(t, h.load(t, m))
	assert.Len(t, h.engine.Variants(), 3)
}

func TestLoadFailureIsReported(t *testing.T) {
	h := newHarness(t)
	m := &loader.Manifest{Variants: []loader.VariantSpec{
		{Name: "gone", Hue: [2]float64{0, 1}, Source: t.TempDir() + "/missing.asc"},
	}}

	assert.Error(t, h.load(t, m))
	assert.Empty(t, h.renderer.uploads)
	assert.Empty(t, h.engine.Variants())
	assert.ErrorIs(t, h.engine.SelectVariant(0), ErrNotReady)
}

func TestInstallRejectsMismatchedSurfaces(t *testing.T) {
	h := newHarness(t)
	a := &mesh.Surface{Positions: make([]float32, 3), Colors: make([]uint8, 4), Indices: []uint32{0}}
	b := &mesh.Surface{Positions: make([]float32, 6), Colors: make([]uint8, 8), Indices: []uint32{0}}

	err := h.engine.Install(&Prepared{Variants: []Variant{{Index: 0}, {Index: 1}}, Surfaces: []*mesh.Surface{a, b}})
	assert.ErrorIs(t, err, mesh.ErrTopologyMismatch)
	assert.Empty(t, h.renderer.uploads)
	assert.ErrorIs(t, h.engine.Install(nil), ErrNotReady)
}

func TestDigitKeysSelectVariants(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.load(t, testManifest()))
	h.host.settle(t)

	h.engine.HandleKey(common.Key2)
	assert.Equal(t, 1, h.engine.Selected())

	h.engine.HandleKey(common.Key9)
	assert.Equal(t, 1, h.engine.Selected(), "no ninth variant")
}

func TestCameraInputRequestsFrames(t *testing.T) {
	h := newHarness(t)
	cam := h.engine.Camera()
	startAz := cam.Controller().Azimuth()

	h.engine.HandleKey(common.KeyRight)
	assert.Equal(t, scheduler.StateRequested, h.engine.Scheduler().State())
	frames := h.host.settle(t)
	assert.Greater(t, frames, 1, "camera glides over several frames")
	assert.Greater(t, cam.Controller().Azimuth(), startAz)

	h.engine.HandleKey(0)
	assert.False(t, h.host.hasFrame(), "unbound key")

	h.engine.HandleResize(800, 400)
	assert.Equal(t, [][2]int{{800, 400}}, h.renderer.resizes)
	assert.InDelta(t, 2.0, cam.Aspect(), 1e-6)
	assert.True(t, h.host.hasFrame())
}

func TestOneHotIndex(t *testing.T) {
	assert.Equal(t, 1, oneHotIndex([]float32{0, 1, 0}))
	assert.Equal(t, -1, oneHotIndex([]float32{0, 0}))
	assert.Equal(t, -1, oneHotIndex([]float32{1, 1}))
	assert.Equal(t, -1, oneHotIndex([]float32{0.5, 0.5}))
}

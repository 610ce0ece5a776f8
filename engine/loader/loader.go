package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-morph/engine/grid"
)

// Variant is a loaded variant: its manifest entry and its grid.
type Variant struct {
	Spec VariantSpec
	Grid *grid.Grid
}

// Dataset is the outcome of loading a manifest.
type Dataset struct {
	// Variants are the variants that loaded, in manifest order.
	Variants []Variant

	// Failures maps the name of every dropped variant to the reason it was dropped.
	Failures map[string]error
}

// Result reports the completion of one fetched source.
type Result struct {
	// Name is the variant the source belongs to.
	Name string

	// Source is the URL or path that was fetched.
	Source string

	// Grid is the parsed grid, nil on failure.
	Grid *grid.Grid

	// Err is the fetch or parse failure, nil on success.
	Err error
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	gridCache map[string]*grid.Grid

	httpBackend *httpLoaderBackend
	fileBackend *fileLoaderBackend

	workers  int
	pool     worker.DynamicWorkerPool
	poolOnce *sync.Once

	logger *slog.Logger
}

// Loader fetches, parses, and derives the variant grids a manifest describes.
// A variant whose source fails to load is dropped together with every variant derived
// from it; the remaining variants still load.
type Loader interface {
	// LoadGrid fetches and parses a single source, caching the result by source.
	//
	// Parameters:
	//   - ctx: cancels the fetch
	//   - source: a URL or file path
	//
	// Returns:
	//   - *grid.Grid: the parsed grid
	//   - error: a *FetchError or *grid.ParseError
	LoadGrid(ctx context.Context, source string) (*grid.Grid, error)

	// Load fetches every sourced variant in parallel on the worker pool, then derives the
	// remaining variants in manifest order. onResult (may be nil) is called from a worker
	// goroutine as each source completes.
	//
	// Parameters:
	//   - ctx: cancels outstanding fetches
	//   - m: the manifest to load
	//   - onResult: per-source completion callback
	//
	// Returns:
	//   - *Dataset: the surviving variants and the failures
	//   - error: a *grid.ShapeMismatchError from a derive, ctx.Err(), or an error when no variant survives
	Load(ctx context.Context, m *Manifest, onResult func(Result)) (*Dataset, error)

	// LoadAsync runs Load on its own goroutine and reports through callbacks. Both
	// callbacks run off the caller's goroutine.
	//
	// Parameters:
	//   - ctx: cancels outstanding fetches
	//   - m: the manifest to load
	//   - onResult: per-source completion callback (may be nil)
	//   - onDone: called once with Load's return values
	LoadAsync(ctx context.Context, m *Manifest, onResult func(Result), onDone func(*Dataset, error))

	// Get retrieves a cached grid by source. Returns nil if not loaded.
	//
	// Parameters:
	//   - source: the URL or path used to load it
	//
	// Returns:
	//   - *grid.Grid: the cached grid or nil
	Get(source string) *grid.Grid
}

var _ Loader = &loader{}

// NewLoader creates a Loader with HTTP and file backends, then applies options.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: the configured loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		gridCache:   make(map[string]*grid.Grid),
		httpBackend: &httpLoaderBackend{
			client:          &http.Client{Timeout: 30 * time.Second},
			initialInterval: 500 * time.Millisecond,
			maxElapsed:      30 * time.Second,
			maxRetries:      5,
		},
		fileBackend: &fileLoaderBackend{},
		workers:     min(runtime.NumCPU(), 8),
		poolOnce:    &sync.Once{},
		logger:      slog.Default(),
	}
	for _, option := range options {
		option(l)
	}
	l.httpBackend.logger = l.logger
	return l
}

func (l *loader) LoadGrid(ctx context.Context, source string) (*grid.Grid, error) {
	if g := l.Get(source); g != nil {
		return g, nil
	}

	rc, err := l.resolveBackend(source).Open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	g, err := grid.ParseReader(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}

	l.mu.Lock()
	l.gridCache[source] = g
	l.mu.Unlock()
	return g, nil
}

func (l *loader) Get(source string) *grid.Grid {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.gridCache[source]
}

func (l *loader) Load(ctx context.Context, m *Manifest, onResult func(Result)) (*Dataset, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	grids := make([]*grid.Grid, len(m.Variants))
	errs := make([]error, len(m.Variants))

	pool := l.workerPool()
	var wg sync.WaitGroup
	for i, spec := range m.Variants {
		if spec.Source == "" {
			continue
		}
		wg.Add(1)
		idx, s := i, spec
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				g, err := l.LoadGrid(ctx, s.Source)
				grids[idx], errs[idx] = g, err
				if onResult != nil {
					onResult(Result{Name: s.Name, Source: s.Source, Grid: g, Err: err})
				}
				return g, err
			},
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds := &Dataset{Failures: make(map[string]error)}
	byName := make(map[string]*grid.Grid, len(m.Variants))
	for i, spec := range m.Variants {
		if spec.Derive != nil {
			g, err := l.derive(spec, byName, ds.Failures)
			if err != nil {
				if errors.Is(err, grid.ErrShapeMismatch) {
					return nil, fmt.Errorf("variant %q: %w", spec.Name, err)
				}
				errs[i] = err
			}
			grids[i] = g
		}

		if errs[i] != nil {
			ds.Failures[spec.Name] = errs[i]
			l.logger.Warn("dropping variant", slog.String("variant", spec.Name), slog.Any("error", errs[i]))
			continue
		}
		byName[spec.Name] = grids[i]
		ds.Variants = append(ds.Variants, Variant{Spec: spec, Grid: grids[i]})
	}

	if len(ds.Variants) == 0 {
		return nil, fmt.Errorf("no variant loaded: %w", joinFailures(ds.Failures))
	}

	l.logger.Info("datasets loaded",
		slog.Int("variants", len(ds.Variants)),
		slog.Int("dropped", len(ds.Failures)),
		slog.Duration("elapsed", time.Since(start)))
	return ds, nil
}

// derive builds a derived variant from already loaded ones. A missing input means the
// input was dropped, so the derived variant is dropped too.
func (l *loader) derive(spec VariantSpec, byName map[string]*grid.Grid, failures map[string]error) (*grid.Grid, error) {
	d := spec.Derive
	for _, ref := range []string{d.Base, d.Other} {
		if _, ok := byName[ref]; !ok {
			return nil, fmt.Errorf("depends on dropped variant %q: %w", ref, failures[ref])
		}
	}
	fn, err := d.Compare.Func()
	if err != nil {
		return nil, err
	}
	return grid.Derive(byName[d.Base], byName[d.Other], fn)
}

func (l *loader) LoadAsync(ctx context.Context, m *Manifest, onResult func(Result), onDone func(*Dataset, error)) {
	go func() {
		ds, err := l.Load(ctx, m, onResult)
		if onDone != nil {
			onDone(ds, err)
		}
	}()
}

// resolveBackend selects the backend for a source by its scheme.
func (l *loader) resolveBackend(source string) loaderBackend {
	if isURL(source) {
		return l.httpBackend
	}
	return l.fileBackend
}

func (l *loader) workerPool() worker.DynamicWorkerPool {
	l.poolOnce.Do(func() {
		l.pool = worker.NewDynamicWorkerPool(max(l.workers, 1), 256, 1*time.Second)
	})
	return l.pool
}

func joinFailures(failures map[string]error) error {
	names := make([]string, 0, len(failures))
	for name, err := range failures {
		names = append(names, fmt.Sprintf("%s: %v", name, err))
	}
	slices.Sort(names)
	return errors.New(strings.Join(names, "; "))
}

package loader

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Carmen-Shannon/oxy-morph/engine/grid"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithHTTPClient is an option builder that sets the client used for remote sources.
//
// Parameters:
//   - client: the HTTP client
//
// Returns:
//   - LoaderBuilderOption: a function that applies the client option to a loader
func WithHTTPClient(client *http.Client) LoaderBuilderOption {
	return func(l *loader) {
		if client != nil {
			l.httpBackend.client = client
		}
	}
}

// WithRetry is an option builder that configures exponential backoff for remote sources.
//
// Parameters:
//   - initial: the first retry interval
//   - maxElapsed: the total time after which retrying stops (0 retries forever, bounded by maxRetries)
//   - maxRetries: the maximum number of retries (0 means unbounded)
//
// Returns:
//   - LoaderBuilderOption: a function that applies the retry policy to a loader
func WithRetry(initial, maxElapsed time.Duration, maxRetries uint64) LoaderBuilderOption {
	return func(l *loader) {
		l.httpBackend.initialInterval = initial
		l.httpBackend.maxElapsed = maxElapsed
		l.httpBackend.maxRetries = maxRetries
	}
}

// WithWorkers is an option builder that sets how many sources are fetched concurrently.
//
// Parameters:
//   - workers: the worker count; values below 1 are treated as 1
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count to a loader
func WithWorkers(workers int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = workers
	}
}

// WithGrid is an option builder that pre-populates the grid cache.
//
// Parameters:
//   - source: the cache key
//   - g: the grid to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the grid option to a loader
func WithGrid(source string, g *grid.Grid) LoaderBuilderOption {
	return func(l *loader) {
		l.gridCache[source] = g
	}
}

// WithLogger is an option builder that sets the loader's logger.
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

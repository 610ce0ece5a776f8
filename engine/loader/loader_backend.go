package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrFetch is matched by every *FetchError through errors.Is.
var ErrFetch = errors.New("dataset fetch failed")

// FetchError reports a dataset source that could not be retrieved.
type FetchError struct {
	// Source is the URL or path that failed.
	Source string

	// Status is the final HTTP status code, or 0 when no response was received.
	Status int

	// Err is the underlying cause.
	Err error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Source, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// loaderBackend retrieves the raw bytes of a dataset source. Concrete implementations
// handle one kind of source (remote URL, local file).
type loaderBackend interface {
	// Open returns a reader over the source contents. The caller closes it.
	//
	// Parameters:
	//   - ctx: cancels the retrieval
	//   - source: the URL or path to open
	//
	// Returns:
	//   - io.ReadCloser: the source contents
	//   - error: a *FetchError if the source cannot be retrieved
	Open(ctx context.Context, source string) (io.ReadCloser, error)
}

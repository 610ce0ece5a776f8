package loader

import (
	"context"
	"io"
	"os"
)

// fileLoaderBackend opens sources from the local filesystem.
type fileLoaderBackend struct{}

var _ loaderBackend = &fileLoaderBackend{}

func (b *fileLoaderBackend) Open(ctx context.Context, source string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}
	return f, nil
}

package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// httpLoaderBackend fetches sources with plain GET requests, retrying transient failures
// with exponential backoff. 4xx responses other than 408 and 429 are not retried.
type httpLoaderBackend struct {
	client *http.Client

	initialInterval time.Duration
	maxElapsed      time.Duration
	maxRetries      uint64

	logger *slog.Logger
}

var _ loaderBackend = &httpLoaderBackend{}

func (b *httpLoaderBackend) Open(ctx context.Context, source string) (io.ReadCloser, error) {
	var body io.ReadCloser
	var lastStatus int

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := b.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		lastStatus = resp.StatusCode
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			body = resp.Body
			return nil
		}

		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		err = fmt.Errorf("unexpected status %s", resp.Status)
		if !retryableStatus(resp.StatusCode) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		b.logger.Warn("dataset fetch failed, retrying",
			slog.String("source", source),
			slog.Duration("wait", wait),
			slog.Any("error", err))
	}

	if err := backoff.RetryNotify(op, b.policy(ctx), notify); err != nil {
		return nil, &FetchError{Source: source, Status: lastStatus, Err: err}
	}
	return body, nil
}

func (b *httpLoaderBackend) policy(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = b.initialInterval
	eb.MaxElapsedTime = b.maxElapsed
	var policy backoff.BackOff = eb
	if b.maxRetries > 0 {
		policy = backoff.WithMaxRetries(policy, b.maxRetries)
	}
	return backoff.WithContext(policy, ctx)
}

func retryableStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	case code >= 500:
		return true
	default:
		return false
	}
}

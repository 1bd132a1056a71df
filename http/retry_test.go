package http_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/mdstream"
	mdhttp "github.com/fwojciec/mdstream/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry(t *testing.T) {
	t.Parallel()

	delays := []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		t.Parallel()

		calls := 0
		var attempts []int
		err := mdhttp.Retry(context.Background(), delays, func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("connection reset")
			}
			return nil
		}, func(attempt int, err error) {
			attempts = append(attempts, attempt)
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []int{2, 3}, attempts)
	})

	t.Run("returns last error when attempts run out", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := mdhttp.Retry(context.Background(), delays, func(ctx context.Context) error {
			calls++
			return errors.New("still down")
		}, nil)

		require.EqualError(t, err, "still down")
		assert.Equal(t, 4, calls)
	})

	t.Run("does not retry application errors", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := mdhttp.Retry(context.Background(), delays, func(ctx context.Context) error {
			calls++
			return mdstream.Errorf(mdstream.ENOTFOUND, "gone")
		}, nil)

		assert.Equal(t, mdstream.ENOTFOUND, mdstream.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := mdhttp.Retry(context.Background(), delays, func(ctx context.Context) error {
			calls++
			return &mdhttp.StatusError{Code: 403, URL: "https://example.com"}
		}, nil)

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		err := mdhttp.Retry(ctx, []time.Duration{time.Hour}, func(ctx context.Context) error {
			cancel()
			return errors.New("flaky")
		}, nil)

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("no delays means one attempt", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := mdhttp.Retry(context.Background(), nil, func(ctx context.Context) error {
			calls++
			return errors.New("down")
		}, nil)

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

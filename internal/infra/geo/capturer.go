package geo

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/cropcare/cropcare-go/internal/domain/healthcheck"
	apperrors "github.com/cropcare/cropcare-go/pkg/errors"
)

// Capturer guards a Provider so at most one capture is in flight per
// user action. The result, success or failure, fully replaces any prior
// position; no partial location data is merged.
type Capturer struct {
	provider Provider
	logger   *slog.Logger

	mu   sync.Mutex
	busy bool
}

// NewCapturer wraps a provider with the single-flight guard.
func NewCapturer(provider Provider, logger *slog.Logger) *Capturer {
	return &Capturer{
		provider: provider,
		logger:   logger.With("component", "geo.capturer"),
	}
}

// Capture performs one position lookup. A second call while one is
// outstanding fails with code "capture_in_flight" instead of double
// firing the underlying provider.
func (c *Capturer) Capture(ctx context.Context, opts Options) (healthcheck.Location, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return healthcheck.Location{}, apperrors.Wrap("capture_in_flight", "a location capture is already in progress", nil)
	}
	c.busy = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	loc, err := c.provider.Capture(ctx, opts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = &Error{Kind: KindTimeout, Message: "position lookup timed out", Err: err}
		}
		c.logger.Warn("location capture failed", "error", err)
		return healthcheck.Location{}, err
	}
	c.logger.Info("location captured", "lat", loc.Latitude, "lon", loc.Longitude, "has_accuracy", loc.AccuracyM != nil)
	return loc, nil
}

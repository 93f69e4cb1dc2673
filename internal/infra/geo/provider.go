// Package geo wraps one-shot position lookup behind an explicit
// success/failure contract. Headless deployments configure a static fix;
// platforms without any position source fail fast as unsupported.
package geo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cropcare/cropcare-go/internal/domain/healthcheck"
)

// ErrorKind classifies capture failures.
type ErrorKind int

const (
	KindUnsupported ErrorKind = iota
	KindTimeout
	KindPermissionDenied
	KindPositionUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindPermissionDenied:
		return "permission_denied"
	case KindPositionUnavailable:
		return "position_unavailable"
	default:
		return "unsupported"
	}
}

// Error is the typed failure produced by a capture attempt.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geolocation %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("geolocation %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the capture error kind, if err is a geolocation error.
func KindOf(err error) (ErrorKind, bool) {
	var geoErr *Error
	if errors.As(err, &geoErr) {
		return geoErr.Kind, true
	}
	return 0, false
}

// Options tune a single capture attempt.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxCacheAge  time.Duration
}

// Provider performs one position lookup.
type Provider interface {
	Capture(ctx context.Context, opts Options) (healthcheck.Location, error)
}

// StaticProvider serves a fix configured up front, the usual setup for
// field kiosks with a known mounting position.
type StaticProvider struct {
	Latitude  float64
	Longitude float64
	AccuracyM *float64
}

func (p *StaticProvider) Capture(ctx context.Context, _ Options) (healthcheck.Location, error) {
	if err := ctx.Err(); err != nil {
		return healthcheck.Location{}, &Error{Kind: KindPositionUnavailable, Message: "capture cancelled", Err: err}
	}
	loc := healthcheck.Location{Latitude: p.Latitude, Longitude: p.Longitude}
	if p.AccuracyM != nil {
		acc := *p.AccuracyM
		loc.AccuracyM = &acc
	}
	return loc, nil
}

// NoneProvider reports the platform as lacking geolocation support.
type NoneProvider struct{}

func (NoneProvider) Capture(context.Context, Options) (healthcheck.Location, error) {
	return healthcheck.Location{}, &Error{Kind: KindUnsupported, Message: "no geolocation capability on this platform"}
}

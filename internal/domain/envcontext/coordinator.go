// Package envcontext coordinates the two location-keyed context queries
// (weather, air quality) that accompany a health check. Each slot is
// enabled only while a location is known, caches successful results per
// location key, and resolves independently of the other.
package envcontext

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cropcare/cropcare-go/internal/domain/healthcheck"
	"github.com/cropcare/cropcare-go/pkg/reqstate"
)

// WeatherClient fetches weather readings for a coordinate.
type WeatherClient interface {
	Weather(ctx context.Context, lat, lon float64) (healthcheck.WeatherContext, error)
}

// AirClient fetches air quality readings for a coordinate.
type AirClient interface {
	Air(ctx context.Context, lat, lon float64) (healthcheck.AirContext, error)
}

// Store caches successful context results per location key.
type Store interface {
	GetWeather(ctx context.Context, key string) (healthcheck.WeatherContext, bool, error)
	SaveWeather(ctx context.Context, key string, value healthcheck.WeatherContext, ttl time.Duration) error
	GetAir(ctx context.Context, key string) (healthcheck.AirContext, bool, error)
	SaveAir(ctx context.Context, key string, value healthcheck.AirContext, ttl time.Duration) error
}

// Config drives cache behavior.
type Config struct {
	CacheTTL time.Duration
}

type slot[T any] struct {
	gen   uint64
	state reqstate.State[T]
}

// bump invalidates any outstanding fetch and returns the new generation.
func (s *slot[T]) bump(state reqstate.State[T]) uint64 {
	s.gen++
	s.state = state
	return s.gen
}

// Coordinator owns the weather and air query slots. All state mutation
// happens under one mutex; fetches run concurrently and install their
// resolution only if their generation is still current, so a response
// arriving after the key changed is dropped.
type Coordinator struct {
	cfg           Config
	weatherClient WeatherClient
	airClient     AirClient
	store         Store
	logger        *slog.Logger

	mu      sync.Mutex
	key     string
	loc     healthcheck.Location
	weather slot[healthcheck.WeatherContext]
	air     slot[healthcheck.AirContext]
	changed chan struct{}
}

// NewCoordinator wires up the context query slots. store may be nil to
// disable caching.
func NewCoordinator(cfg Config, weatherClient WeatherClient, airClient AirClient, store Store, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		cfg:           cfg,
		weatherClient: weatherClient,
		airClient:     airClient,
		store:         store,
		logger:        logger.With("component", "envcontext.coordinator"),
		weather:       slot[healthcheck.WeatherContext]{state: reqstate.Idle[healthcheck.WeatherContext]()},
		air:           slot[healthcheck.AirContext]{state: reqstate.Idle[healthcheck.AirContext]()},
		changed:       make(chan struct{}),
	}
}

// Key returns the current location key, empty when no location is set.
func (c *Coordinator) Key() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.key
}

// Location returns the location keying the slots, if one is set.
func (c *Coordinator) Location() (healthcheck.Location, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loc, c.key != ""
}

// Weather returns the current weather slot state.
func (c *Coordinator) Weather() reqstate.State[healthcheck.WeatherContext] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weather.state
}

// Air returns the current air slot state.
func (c *Coordinator) Air() reqstate.State[healthcheck.AirContext] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.air.state
}

// SetLocation re-keys both slots. A nil location disables them: states
// reset to Idle and any outstanding fetch is logically cancelled. A new
// key starts one fetch per slot; an unchanged key is a no-op.
func (c *Coordinator) SetLocation(ctx context.Context, loc *healthcheck.Location) {
	key := locationKey(loc)

	c.mu.Lock()
	defer c.mu.Unlock()
	if key == c.key {
		return
	}
	c.key = key
	if key == "" {
		c.loc = healthcheck.Location{}
		c.weather.bump(reqstate.Idle[healthcheck.WeatherContext]())
		c.air.bump(reqstate.Idle[healthcheck.AirContext]())
		c.notifyLocked()
		c.logger.Info("context queries disabled", "reason", "location cleared")
		return
	}
	c.loc = *loc
	c.logger.Info("context queries keyed", "key", key)
	c.startWeatherLocked(ctx, key, loc.Latitude, loc.Longitude, false)
	c.startAirLocked(ctx, key, loc.Latitude, loc.Longitude, false)
}

// RefreshWeather refetches the weather slot for the current key,
// bypassing the cache. No-op while no location is set.
func (c *Coordinator) RefreshWeather(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.key == "" {
		return
	}
	c.startWeatherLocked(ctx, c.key, c.loc.Latitude, c.loc.Longitude, true)
}

// RefreshAir refetches the air slot for the current key, bypassing the
// cache. No-op while no location is set.
func (c *Coordinator) RefreshAir(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.key == "" {
		return
	}
	c.startAirLocked(ctx, c.key, c.loc.Latitude, c.loc.Longitude, true)
}

// Wait blocks until neither slot is pending or the context ends.
func (c *Coordinator) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		pending := c.weather.state.IsPending() || c.air.state.IsPending()
		changed := c.changed
		c.mu.Unlock()
		if !pending {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

func (c *Coordinator) startWeatherLocked(ctx context.Context, key string, lat, lon float64, bypassCache bool) {
	gen := c.weather.bump(reqstate.Pending[healthcheck.WeatherContext]())
	c.notifyLocked()
	go func() {
		if !bypassCache && c.store != nil {
			cached, ok, err := c.store.GetWeather(ctx, key)
			if err != nil {
				c.logger.Warn("weather cache read failed", "key", key, "error", err)
			} else if ok {
				c.installWeather(gen, reqstate.Succeeded(cached))
				return
			}
		}
		value, err := c.weatherClient.Weather(ctx, lat, lon)
		if err != nil {
			c.installWeather(gen, reqstate.Failed[healthcheck.WeatherContext](err))
			return
		}
		if c.store != nil {
			if err := c.store.SaveWeather(ctx, key, value, c.cfg.CacheTTL); err != nil {
				c.logger.Warn("weather cache write failed", "key", key, "error", err)
			}
		}
		c.installWeather(gen, reqstate.Succeeded(value))
	}()
}

func (c *Coordinator) startAirLocked(ctx context.Context, key string, lat, lon float64, bypassCache bool) {
	gen := c.air.bump(reqstate.Pending[healthcheck.AirContext]())
	c.notifyLocked()
	go func() {
		if !bypassCache && c.store != nil {
			cached, ok, err := c.store.GetAir(ctx, key)
			if err != nil {
				c.logger.Warn("air cache read failed", "key", key, "error", err)
			} else if ok {
				c.installAir(gen, reqstate.Succeeded(cached))
				return
			}
		}
		value, err := c.airClient.Air(ctx, lat, lon)
		if err != nil {
			c.installAir(gen, reqstate.Failed[healthcheck.AirContext](err))
			return
		}
		if c.store != nil {
			if err := c.store.SaveAir(ctx, key, value, c.cfg.CacheTTL); err != nil {
				c.logger.Warn("air cache write failed", "key", key, "error", err)
			}
		}
		c.installAir(gen, reqstate.Succeeded(value))
	}()
}

func (c *Coordinator) installWeather(gen uint64, state reqstate.State[healthcheck.WeatherContext]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.weather.gen {
		c.logger.Debug("stale weather resolution dropped", "generation", gen)
		return
	}
	c.weather.state = state
	c.notifyLocked()
}

func (c *Coordinator) installAir(gen uint64, state reqstate.State[healthcheck.AirContext]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.air.gen {
		c.logger.Debug("stale air resolution dropped", "generation", gen)
		return
	}
	c.air.state = state
	c.notifyLocked()
}

func (c *Coordinator) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// locationKey rounds coordinates so jitter in repeated fixes keys to the
// same cache entry. Empty when no location is present.
func locationKey(loc *healthcheck.Location) string {
	if loc == nil {
		return ""
	}
	return fmt.Sprintf("%.4f,%.4f", loc.Latitude, loc.Longitude)
}

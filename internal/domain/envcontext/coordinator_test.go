package envcontext

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cropcare/cropcare-go/internal/domain/healthcheck"
)

func TestSlotsStayIdleWithoutLocation(t *testing.T) {
	weather := &stubWeather{}
	air := &stubAir{}
	c := newTestCoordinator(weather, air, nil)

	c.SetLocation(context.Background(), nil)

	require.True(t, c.Weather().IsIdle())
	require.True(t, c.Air().IsIdle())
	require.Equal(t, 0, weather.callCount())
	require.Equal(t, 0, air.callCount())
	require.Equal(t, "", c.Key())
}

func TestSetLocationFetchesOncePerKey(t *testing.T) {
	weather := &stubWeather{value: healthcheck.WeatherContext{TempC: 30, HumidityPct: 70}}
	air := &stubAir{value: healthcheck.AirContext{AQI: 85, Category: "moderate"}}
	c := newTestCoordinator(weather, air, nil)

	loc := &healthcheck.Location{Latitude: 12.34, Longitude: 56.78}
	c.SetLocation(context.Background(), loc)
	c.SetLocation(context.Background(), loc) // same key, no-op

	require.NoError(t, c.Wait(testCtx(t)))
	require.Equal(t, 1, weather.callCount())
	require.Equal(t, 1, air.callCount())

	wx, ok := c.Weather().Value()
	require.True(t, ok)
	require.Equal(t, 30.0, wx.TempC)
	aq, ok := c.Air().Value()
	require.True(t, ok)
	require.Equal(t, 85, aq.AQI)
	require.Equal(t, "12.3400,56.7800", c.Key())
}

func TestSlotsFailIndependently(t *testing.T) {
	boom := errors.New("weather upstream down")
	weather := &stubWeather{err: boom}
	air := &stubAir{value: healthcheck.AirContext{AQI: 40, Category: "good"}}
	c := newTestCoordinator(weather, air, nil)

	c.SetLocation(context.Background(), &healthcheck.Location{Latitude: 1, Longitude: 2})
	require.NoError(t, c.Wait(testCtx(t)))

	require.True(t, c.Weather().IsFailed())
	require.ErrorIs(t, c.Weather().Err(), boom)
	require.True(t, c.Air().IsSucceeded())
}

func TestClearingLocationDropsLateResponse(t *testing.T) {
	gate := make(chan struct{})
	weather := &stubWeather{gate: gate, value: healthcheck.WeatherContext{TempC: 99}}
	air := &stubAir{}
	c := newTestCoordinator(weather, air, nil)

	c.SetLocation(context.Background(), &healthcheck.Location{Latitude: 1, Longitude: 2})
	require.Eventually(t, func() bool { return weather.callCount() == 1 }, time.Second, time.Millisecond)
	require.True(t, c.Weather().IsPending())

	c.SetLocation(context.Background(), nil)
	require.True(t, c.Weather().IsIdle())

	close(gate)
	// The fetch for the old key resolves but must not attach to state.
	require.Never(t, func() bool { return c.Weather().IsSucceeded() }, 100*time.Millisecond, 10*time.Millisecond)
	require.True(t, c.Weather().IsIdle())
}

func TestRekeyingDropsResponseForOldKey(t *testing.T) {
	gate := make(chan struct{})
	weather := &stubWeather{gate: gate, value: healthcheck.WeatherContext{TempC: 11}}
	air := &stubAir{}
	c := newTestCoordinator(weather, air, nil)

	c.SetLocation(context.Background(), &healthcheck.Location{Latitude: 1, Longitude: 2})
	require.Eventually(t, func() bool { return weather.callCount() == 1 }, time.Second, time.Millisecond)

	weather.setValue(healthcheck.WeatherContext{TempC: 22})
	c.SetLocation(context.Background(), &healthcheck.Location{Latitude: 3, Longitude: 4})
	require.Eventually(t, func() bool { return weather.callCount() == 2 }, time.Second, time.Millisecond)

	close(gate) // first fetch resolves with TempC 11, after the re-key
	require.NoError(t, c.Wait(testCtx(t)))

	wx, ok := c.Weather().Value()
	require.True(t, ok)
	require.Equal(t, 22.0, wx.TempC)
}

func TestCacheServesRepeatKeyWithoutFetch(t *testing.T) {
	weather := &stubWeather{value: healthcheck.WeatherContext{TempC: 28}}
	air := &stubAir{value: healthcheck.AirContext{AQI: 60}}
	store := newStubStore()
	c := newTestCoordinator(weather, air, store)

	first := &healthcheck.Location{Latitude: 10, Longitude: 20}
	second := &healthcheck.Location{Latitude: 30, Longitude: 40}

	c.SetLocation(context.Background(), first)
	require.NoError(t, c.Wait(testCtx(t)))
	c.SetLocation(context.Background(), second)
	require.NoError(t, c.Wait(testCtx(t)))
	require.Equal(t, 2, weather.callCount())

	// Returning to the first key is served from cache.
	c.SetLocation(context.Background(), first)
	require.NoError(t, c.Wait(testCtx(t)))
	require.Equal(t, 2, weather.callCount())
	require.Equal(t, 2, air.callCount())
	require.True(t, c.Weather().IsSucceeded())
}

func TestRefreshBypassesCache(t *testing.T) {
	weather := &stubWeather{value: healthcheck.WeatherContext{TempC: 28}}
	air := &stubAir{}
	store := newStubStore()
	c := newTestCoordinator(weather, air, store)

	c.SetLocation(context.Background(), &healthcheck.Location{Latitude: 10, Longitude: 20})
	require.NoError(t, c.Wait(testCtx(t)))
	require.Equal(t, 1, weather.callCount())

	c.RefreshWeather(context.Background())
	require.NoError(t, c.Wait(testCtx(t)))
	require.Equal(t, 2, weather.callCount())
	require.Equal(t, 1, air.callCount())
}

func TestRefreshWithoutKeyIsNoop(t *testing.T) {
	weather := &stubWeather{}
	air := &stubAir{}
	c := newTestCoordinator(weather, air, nil)

	c.RefreshWeather(context.Background())
	c.RefreshAir(context.Background())

	require.Equal(t, 0, weather.callCount())
	require.Equal(t, 0, air.callCount())
	require.True(t, c.Weather().IsIdle())
	require.True(t, c.Air().IsIdle())
}

func newTestCoordinator(weather WeatherClient, air AirClient, store Store) *Coordinator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCoordinator(Config{CacheTTL: time.Minute}, weather, air, store, logger)
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

type stubWeather struct {
	mu    sync.Mutex
	calls int
	gate  chan struct{}
	value healthcheck.WeatherContext
	err   error
}

func (s *stubWeather) Weather(ctx context.Context, lat, lon float64) (healthcheck.WeatherContext, error) {
	s.mu.Lock()
	s.calls++
	calls := s.calls
	gate := s.gate
	value := s.value
	err := s.err
	s.mu.Unlock()
	if gate != nil && calls == 1 {
		<-gate
	}
	if err != nil {
		return healthcheck.WeatherContext{}, err
	}
	return value, nil
}

func (s *stubWeather) setValue(value healthcheck.WeatherContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
}

func (s *stubWeather) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubAir struct {
	mu    sync.Mutex
	calls int
	value healthcheck.AirContext
	err   error
}

func (s *stubAir) Air(ctx context.Context, lat, lon float64) (healthcheck.AirContext, error) {
	s.mu.Lock()
	s.calls++
	err := s.err
	value := s.value
	s.mu.Unlock()
	if err != nil {
		return healthcheck.AirContext{}, err
	}
	return value, nil
}

func (s *stubAir) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubStore struct {
	mu      sync.Mutex
	weather map[string]healthcheck.WeatherContext
	air     map[string]healthcheck.AirContext
}

func newStubStore() *stubStore {
	return &stubStore{
		weather: make(map[string]healthcheck.WeatherContext),
		air:     make(map[string]healthcheck.AirContext),
	}
}

func (s *stubStore) GetWeather(_ context.Context, key string) (healthcheck.WeatherContext, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.weather[key]
	return value, ok, nil
}

func (s *stubStore) SaveWeather(_ context.Context, key string, value healthcheck.WeatherContext, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weather[key] = value
	return nil
}

func (s *stubStore) GetAir(_ context.Context, key string) (healthcheck.AirContext, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.air[key]
	return value, ok, nil
}

func (s *stubStore) SaveAir(_ context.Context, key string, value healthcheck.AirContext, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.air[key] = value
	return nil
}

package envstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cropcare/cropcare-go/internal/domain/healthcheck"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := store.GetWeather(ctx, "1.0000,2.0000")
	require.NoError(t, err)
	require.False(t, ok)

	rain := 6.0
	weather := healthcheck.WeatherContext{TempC: 28, HumidityPct: 81, RainMm: &rain}
	require.NoError(t, store.SaveWeather(ctx, "1.0000,2.0000", weather, time.Minute))

	got, ok, err := store.GetWeather(ctx, "1.0000,2.0000")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, weather, got)

	air := healthcheck.AirContext{AQI: 85, Category: "moderate"}
	require.NoError(t, store.SaveAir(ctx, "1.0000,2.0000", air, 0))
	gotAir, ok, err := store.GetAir(ctx, "1.0000,2.0000")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, air, gotAir)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SaveWeather(ctx, "k", healthcheck.WeatherContext{TempC: 1}, time.Nanosecond))
	time.Sleep(5 * time.Millisecond)

	_, ok, err := store.GetWeather(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SaveWeather(ctx, "a", healthcheck.WeatherContext{TempC: 1}, time.Minute))
	_, ok, err := store.GetWeather(ctx, "b")
	require.NoError(t, err)
	require.False(t, ok)
}

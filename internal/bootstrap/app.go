// Package bootstrap assembles the client application and the mock API
// server from their wired dependencies.
package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/cropcare/cropcare-go/internal/domain/advisory"
	"github.com/cropcare/cropcare-go/internal/domain/auth"
	"github.com/cropcare/cropcare-go/internal/domain/envcontext"
	"github.com/cropcare/cropcare-go/internal/domain/healthcheck"
	"github.com/cropcare/cropcare-go/internal/infra/api"
	"github.com/cropcare/cropcare-go/internal/infra/config"
	"github.com/cropcare/cropcare-go/internal/infra/geo"
)

// App is the assembled CropCare client. It ties the device position,
// the environment context, and the health check workflow together.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	tokens   *auth.TokenStore
	api      *api.Client
	capturer *geo.Capturer
	env      *envcontext.Coordinator
	checker  *healthcheck.Service
}

// NewApp is used by Wire to build the runnable client.
func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	tokens *auth.TokenStore,
	client *api.Client,
	capturer *geo.Capturer,
	env *envcontext.Coordinator,
	checker *healthcheck.Service,
) *App {
	return &App{
		cfg:      cfg,
		logger:   logger.With("component", "bootstrap"),
		tokens:   tokens,
		api:      client,
		capturer: capturer,
		env:      env,
		checker:  checker,
	}
}

// ScanInput carries one leaf submission.
type ScanInput struct {
	Image       []byte
	Filename    string
	CropType    healthcheck.CropType
	CropStage   healthcheck.CropStage
	UseLocation bool
}

// ScanReport combines the diagnosis with the environment context that
// was current when the scan completed.
type ScanReport struct {
	Result   healthcheck.AnalysisResult  `json:"result"`
	Location *healthcheck.Location       `json:"location,omitempty"`
	Weather  *healthcheck.WeatherContext `json:"weather,omitempty"`
	Air      *healthcheck.AirContext     `json:"air,omitempty"`
	Notes    []string                    `json:"notes,omitempty"`
}

// EnvReport describes current conditions at the captured position.
type EnvReport struct {
	Location *healthcheck.Location       `json:"location,omitempty"`
	Weather  *healthcheck.WeatherContext `json:"weather,omitempty"`
	Air      *healthcheck.AirContext     `json:"air,omitempty"`
	Notes    []string                    `json:"notes,omitempty"`
}

// Scan submits a leaf image and composes the full report. Position and
// environment lookups are best effort and never fail the scan.
func (a *App) Scan(ctx context.Context, input ScanInput) (ScanReport, error) {
	if a.tokens.IsAuthed() && a.tokens.Expired(time.Now()) {
		a.logger.Warn("bearer token appears expired, request may be rejected")
	}

	var location *healthcheck.Location
	if input.UseLocation {
		location = a.captureLocation(ctx)
	}

	result, err := a.checker.Submit(ctx, healthcheck.SubmitRequest{
		Image:     input.Image,
		Filename:  input.Filename,
		CropType:  input.CropType,
		CropStage: input.CropStage,
		Location:  location,
	})
	if err != nil {
		return ScanReport{}, err
	}

	report := ScanReport{Result: result, Location: location}
	weather, air := a.waitForEnv(ctx)
	report.Weather = weather
	report.Air = air
	report.Notes = advisory.Notes(weather)
	return report, nil
}

// Env captures the position and reports conditions there.
func (a *App) Env(ctx context.Context) (EnvReport, error) {
	location := a.captureLocation(ctx)
	report := EnvReport{Location: location}
	if location == nil {
		return report, nil
	}
	weather, air := a.waitForEnv(ctx)
	report.Weather = weather
	report.Air = air
	report.Notes = advisory.Notes(weather)
	return report, nil
}

// RefreshEnv forces fresh environment lookups, skipping the cache.
func (a *App) RefreshEnv(ctx context.Context) (EnvReport, error) {
	location := a.captureLocation(ctx)
	report := EnvReport{Location: location}
	if location == nil {
		return report, nil
	}
	a.env.RefreshWeather(ctx)
	a.env.RefreshAir(ctx)
	weather, air := a.waitForEnv(ctx)
	report.Weather = weather
	report.Air = air
	report.Notes = advisory.Notes(weather)
	return report, nil
}

// History lists previously recorded detections.
func (a *App) History(ctx context.Context, limit, offset int) ([]healthcheck.Detection, error) {
	return a.api.Detections(ctx, limit, offset)
}

// Tips fetches general crop-care tips.
func (a *App) Tips(ctx context.Context) ([]string, error) {
	return a.api.Tips(ctx)
}

// Profile fetches the signed-in farmer, substituting the guest profile
// when the lookup fails for any reason.
func (a *App) Profile(ctx context.Context) healthcheck.Profile {
	profile, err := a.api.Me(ctx)
	if err != nil {
		a.logger.Warn("profile lookup failed, using guest profile", "error", err)
		return healthcheck.DefaultProfile()
	}
	return profile
}

// Checker exposes the health check service, mainly for state inspection.
func (a *App) Checker() *healthcheck.Service {
	return a.checker
}

// Tokens exposes the session token store.
func (a *App) Tokens() *auth.TokenStore {
	return a.tokens
}

// captureLocation attempts one position fix and feeds it to the
// environment coordinator. Returns nil when no fix is available.
func (a *App) captureLocation(ctx context.Context) *healthcheck.Location {
	opts := geo.Options{
		HighAccuracy: a.cfg.Geo.HighAccuracy,
		Timeout:      a.cfg.Geo.Timeout,
		MaxCacheAge:  a.cfg.Geo.MaxCacheAge,
	}
	fix, err := a.capturer.Capture(ctx, opts)
	if err != nil {
		a.logger.Warn("position unavailable", "error", err)
		a.env.SetLocation(ctx, nil)
		return nil
	}
	a.env.SetLocation(ctx, &fix)
	return &fix
}

// waitForEnv blocks until pending environment lookups settle, then
// returns whichever readings succeeded.
func (a *App) waitForEnv(ctx context.Context) (*healthcheck.WeatherContext, *healthcheck.AirContext) {
	if err := a.env.Wait(ctx); err != nil {
		a.logger.Warn("environment lookup interrupted", "error", err)
	}
	var weather *healthcheck.WeatherContext
	if value, ok := a.env.Weather().Value(); ok {
		weather = &value
	}
	var air *healthcheck.AirContext
	if value, ok := a.env.Air().Value(); ok {
		air = &value
	}
	return weather, air
}

package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cropcare/cropcare-go/internal/domain/auth"
	"github.com/cropcare/cropcare-go/internal/domain/envcontext"
	"github.com/cropcare/cropcare-go/internal/domain/healthcheck"
	"github.com/cropcare/cropcare-go/internal/infra/api"
	"github.com/cropcare/cropcare-go/internal/infra/config"
	"github.com/cropcare/cropcare-go/internal/infra/geo"
)

func TestEnvWithoutPositionFix(t *testing.T) {
	app, coord := newTestApp(t, nil)

	report, err := app.Env(context.Background())
	require.NoError(t, err)
	require.Nil(t, report.Location)
	require.Nil(t, report.Weather)
	require.Nil(t, report.Air)
	require.Empty(t, report.Notes)

	require.True(t, coord.Weather().IsIdle())
	require.True(t, coord.Air().IsIdle())
	_, keyed := coord.Location()
	require.False(t, keyed)
}

func TestScanProceedsWithoutPositionFix(t *testing.T) {
	infer := &stubInfer{result: healthcheck.AnalysisResult{Label: "Healthy", Confidence: 0.97}}
	app, coord := newTestApp(t, infer)

	report, err := app.Scan(context.Background(), ScanInput{
		Image:       []byte("leaf"),
		UseLocation: true,
	})
	require.NoError(t, err)
	require.Equal(t, "Healthy", report.Result.Label)
	require.Nil(t, report.Location)
	require.Nil(t, report.Weather)
	require.Nil(t, report.Air)
	require.Empty(t, report.Notes)
	require.True(t, coord.Weather().IsIdle())
	require.True(t, coord.Air().IsIdle())
}

// newTestApp assembles an App whose position source always fails. infer
// may be nil when the test never submits.
func newTestApp(t *testing.T, infer healthcheck.InferClient) (*App, *envcontext.Coordinator) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Geo: config.GeoConfig{Provider: "none", Timeout: time.Second},
	}
	tokens := auth.NewTokenStore("")
	client := api.NewClient("", time.Second, tokens)
	capturer := geo.NewCapturer(geo.NoneProvider{}, logger)
	coord := envcontext.NewCoordinator(envcontext.Config{}, client, client, nil, logger)
	if infer == nil {
		infer = client
	}
	checker := healthcheck.NewService(infer, nil, logger)
	return NewApp(cfg, logger, tokens, client, capturer, coord, checker), coord
}

type stubInfer struct {
	result healthcheck.AnalysisResult
}

func (s *stubInfer) Infer(_ context.Context, _ io.Reader, _ string) (healthcheck.AnalysisResult, error) {
	return s.result, nil
}

//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/cropcare/cropcare-go/internal/bootstrap"
	"github.com/cropcare/cropcare-go/internal/domain/envcontext"
	"github.com/cropcare/cropcare-go/internal/infra/api"
	"github.com/cropcare/cropcare-go/internal/infra/config"
	httpiface "github.com/cropcare/cropcare-go/internal/interface/http"
	"github.com/cropcare/cropcare-go/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideTokenStore,
		provideAPIClient,
		provideGeoCapturer,
		provideEnvConfig,
		provideEnvStore,
		provideHealthCheckService,
		envcontext.NewCoordinator,
		wire.Bind(new(envcontext.WeatherClient), new(*api.Client)),
		wire.Bind(new(envcontext.AirClient), new(*api.Client)),
		bootstrap.NewApp,
	)
	return nil, nil
}

func initializeMockAPI() (*bootstrap.MockAPI, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideScanRepository,
		provideImageStore,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewMockAPI,
	)
	return nil, nil
}

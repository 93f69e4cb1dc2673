package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/cropcare/cropcare-go/internal/domain/auth"
	"github.com/cropcare/cropcare-go/internal/domain/envcontext"
	"github.com/cropcare/cropcare-go/internal/domain/healthcheck"
	"github.com/cropcare/cropcare-go/internal/infra/api"
	"github.com/cropcare/cropcare-go/internal/infra/config"
	"github.com/cropcare/cropcare-go/internal/infra/envstore"
	"github.com/cropcare/cropcare-go/internal/infra/geo"
	"github.com/cropcare/cropcare-go/internal/infra/scanrepo"
	"github.com/cropcare/cropcare-go/internal/infra/scanstore"
	httpiface "github.com/cropcare/cropcare-go/internal/interface/http"
)

func provideTokenStore(cfg *config.Config) *auth.TokenStore {
	return auth.NewTokenStore(cfg.API.Token)
}

func provideAPIClient(cfg *config.Config, tokens *auth.TokenStore) *api.Client {
	return api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, tokens)
}

func provideGeoCapturer(cfg *config.Config, logger *slog.Logger) *geo.Capturer {
	var provider geo.Provider
	switch strings.ToLower(strings.TrimSpace(cfg.Geo.Provider)) {
	case "static":
		static := &geo.StaticProvider{
			Latitude:  cfg.Geo.Latitude,
			Longitude: cfg.Geo.Longitude,
		}
		if cfg.Geo.AccuracyM > 0 {
			acc := cfg.Geo.AccuracyM
			static.AccuracyM = &acc
		}
		provider = static
	default:
		provider = geo.NoneProvider{}
	}
	return geo.NewCapturer(provider, logger)
}

func provideEnvConfig(cfg *config.Config) envcontext.Config {
	return envcontext.Config{CacheTTL: cfg.Cache.TTL}
}

func provideEnvStore(cfg *config.Config, logger *slog.Logger) envcontext.Store {
	if cfg.Cache.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return envstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return envstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("valkey env cache enabled", "addr", cfg.Cache.Valkey.Addr)
			return envstore.NewValkeyStore(client, cfg.Cache.Valkey.Prefix)
		}
	}
	return envstore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideHealthCheckService(client *api.Client, logger *slog.Logger) *healthcheck.Service {
	return healthcheck.NewService(client, nil, logger)
}

func provideScanRepository(cfg *config.Config, logger *slog.Logger) httpiface.ScanRepository {
	fallback := scanrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Mock.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Mock.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Mock.Postgres.MaxConns
	}
	if cfg.Mock.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Mock.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("postgres detections repository enabled")
	return scanrepo.NewPostgresRepository(pool)
}

func provideImageStore(cfg *config.Config, logger *slog.Logger) httpiface.ImageStore {
	endpoint := strings.TrimSpace(cfg.Mock.Storage.Endpoint)
	if endpoint == "" {
		logger.Info("object store endpoint not set, using memory image store")
		return scanstore.NewMemoryStore()
	}
	store, err := scanstore.NewMinioStore(
		endpoint,
		cfg.Mock.Storage.AccessKey,
		cfg.Mock.Storage.SecretKey,
		cfg.Mock.Storage.Bucket,
		cfg.Mock.Storage.Region,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize object store, using memory image store", "error", err)
		return scanstore.NewMemoryStore()
	}
	logger.Info("object image store enabled", "bucket", cfg.Mock.Storage.Bucket)
	return store
}

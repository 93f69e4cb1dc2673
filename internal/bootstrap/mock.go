package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// MockAPI encapsulates the mock server lifecycle.
type MockAPI struct {
	logger *slog.Logger
	server *http.Server
}

// NewMockAPI is used by Wire to build the runnable mock server.
func NewMockAPI(logger *slog.Logger, server *http.Server) *MockAPI {
	return &MockAPI{logger: logger.With("component", "bootstrap.mock"), server: server}
}

// Run starts the mock API server and blocks until shutdown.
func (m *MockAPI) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		m.logger.Info("mock api starting", "address", m.server.Addr)
		if err := m.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		m.logger.Info("shutdown signal received")
		if err := m.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

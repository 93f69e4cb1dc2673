package envstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/cropcare/cropcare-go/internal/domain/envcontext"
	"github.com/cropcare/cropcare-go/internal/domain/healthcheck"
)

// ValkeyStore persists env context entries in a Valkey-compatible
// database so cached weather/air results survive across CLI runs on the
// same kiosk.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "env"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) GetWeather(ctx context.Context, key string) (healthcheck.WeatherContext, bool, error) {
	var out healthcheck.WeatherContext
	ok, err := s.getJSON(ctx, s.weatherKey(key), &out)
	return out, ok, err
}

func (s *ValkeyStore) SaveWeather(ctx context.Context, key string, value healthcheck.WeatherContext, ttl time.Duration) error {
	return s.setJSON(ctx, s.weatherKey(key), value, ttl)
}

func (s *ValkeyStore) GetAir(ctx context.Context, key string) (healthcheck.AirContext, bool, error) {
	var out healthcheck.AirContext
	ok, err := s.getJSON(ctx, s.airKey(key), &out)
	return out, ok, err
}

func (s *ValkeyStore) SaveAir(ctx context.Context, key string, value healthcheck.AirContext, ttl time.Duration) error {
	return s.setJSON(ctx, s.airKey(key), value, ttl)
}

func (s *ValkeyStore) getJSON(ctx context.Context, key string, out any) (bool, error) {
	result := s.client.Do(ctx, s.client.B().Get().Key(key).Build())
	payload, err := result.ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return false, err
	}
	return true, nil
}

func (s *ValkeyStore) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(key).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) weatherKey(key string) string {
	return fmt.Sprintf("%s:wx:%s", s.prefix, key)
}

func (s *ValkeyStore) airKey(key string) string {
	return fmt.Sprintf("%s:aq:%s", s.prefix, key)
}

var _ envcontext.Store = (*ValkeyStore)(nil)

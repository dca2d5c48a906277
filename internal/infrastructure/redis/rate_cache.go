// Package redis cachea la última tasa publicada por moneda.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-fiscal-api/internal/application/exchange"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
	"github.com/jhoicas/ventas-fiscal-api/pkg/config"
)

var _ exchange.Cache = (*RateCache)(nil)

const (
	keyPrefix  = "exchange_rate:latest:"
	defaultTTL = 10 * time.Minute
)

type cachedRate struct {
	ID          string          `json:"id"`
	Currency    string          `json:"currency"`
	RateToLocal decimal.Decimal `json:"rate_to_local"`
	ObservedAt  time.Time       `json:"observed_at"`
	Source      string          `json:"source"`
}

// RateCache implementa exchange.Cache sobre Redis. Una tasa nueva publicada en la BD
// puede tardar hasta TTL en verse.
type RateCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewClient abre el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRateCache construye la caché. ttl <= 0 usa 10 minutos.
func NewRateCache(client *goredis.Client, ttl time.Duration) *RateCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RateCache{client: client, ttl: ttl}
}

// Get devuelve ok=false si la clave no existe o expiró.
func (c *RateCache) Get(ctx context.Context, currency string) (*entity.ExchangeRate, bool, error) {
	raw, err := c.client.Get(ctx, rateKey(currency)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get rate: %w", err)
	}
	rate, err := decodeRate(raw)
	if err != nil {
		return nil, false, err
	}
	return rate, true, nil
}

func (c *RateCache) Set(ctx context.Context, rate *entity.ExchangeRate) error {
	raw, err := encodeRate(rate)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, rateKey(rate.Currency), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set rate: %w", err)
	}
	return nil
}

func rateKey(currency string) string {
	return keyPrefix + currency
}

func encodeRate(r *entity.ExchangeRate) ([]byte, error) {
	return json.Marshal(cachedRate{
		ID:          r.ID,
		Currency:    r.Currency,
		RateToLocal: r.RateToLocal,
		ObservedAt:  r.ObservedAt,
		Source:      r.Source,
	})
}

func decodeRate(raw []byte) (*entity.ExchangeRate, error) {
	var c cachedRate
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode cached rate: %w", err)
	}
	return &entity.ExchangeRate{
		ID:          c.ID,
		Currency:    c.Currency,
		RateToLocal: c.RateToLocal,
		ObservedAt:  c.ObservedAt,
		Source:      c.Source,
	}, nil
}

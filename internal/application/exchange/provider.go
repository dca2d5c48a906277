// Package exchange resuelve la tasa que se congela en cada venta.
package exchange

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/repository"
	"github.com/jhoicas/ventas-fiscal-api/pkg/logger"
)

// Cache caché de la última tasa por moneda (Redis en producción). Opcional.
type Cache interface {
	Get(ctx context.Context, currency string) (*entity.ExchangeRate, bool, error)
	Set(ctx context.Context, rate *entity.ExchangeRate) error
}

// Provider obtiene la última tasa publicada y cae a la tasa por defecto si no hay ninguna.
type Provider struct {
	repo        repository.ExchangeRateRepository
	cache       Cache
	defaultRate decimal.Decimal
	log         *logger.Logger
}

// NewProvider construye el proveedor. cache puede ser nil.
func NewProvider(repo repository.ExchangeRateRepository, cache Cache, defaultRate decimal.Decimal, log *logger.Logger) *Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &Provider{repo: repo, cache: cache, defaultRate: defaultRate, log: log.Component("exchange")}
}

// Snapshot devuelve la tasa vigente en at para currency.
// La ausencia de tasa no es un error: se usa la tasa por defecto y se marca IsFallback.
func (p *Provider) Snapshot(ctx context.Context, currency string, at time.Time) (entity.RateSnapshot, error) {
	if p.cache != nil {
		rate, ok, err := p.cache.Get(ctx, currency)
		if err != nil {
			p.log.Warn().Err(err).Str("currency", currency).Msg("caché de tasas no disponible")
		}
		if ok && !rate.ObservedAt.After(at) {
			return snapshotOf(rate), nil
		}
	}

	rate, err := p.repo.Latest(ctx, currency, at)
	if errors.Is(err, domain.ErrNotFound) {
		p.log.Warn().
			Str("currency", currency).
			Str("default_rate", p.defaultRate.String()).
			Msg("sin tasa publicada; usando tasa por defecto")
		return entity.RateSnapshot{
			Currency:    currency,
			RateToLocal: p.defaultRate,
			ObservedAt:  at,
			IsFallback:  true,
		}, nil
	}
	if err != nil {
		return entity.RateSnapshot{}, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, rate); err != nil {
			p.log.Warn().Err(err).Str("currency", currency).Msg("no se pudo cachear la tasa")
		}
	}
	return snapshotOf(rate), nil
}

func snapshotOf(r *entity.ExchangeRate) entity.RateSnapshot {
	return entity.RateSnapshot{
		Currency:    r.Currency,
		RateToLocal: r.RateToLocal,
		ObservedAt:  r.ObservedAt,
	}
}

package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/repository"
)

var _ repository.ExchangeRateRepository = (*ExchangeRateRepo)(nil)

// ExchangeRateRepo lectura de tasas publicadas.
type ExchangeRateRepo struct {
	q Querier
}

// NewExchangeRateRepository construye el adaptador.
func NewExchangeRateRepository(q Querier) *ExchangeRateRepo {
	return &ExchangeRateRepo{q: q}
}

// Latest usa el índice (currency, observed_at DESC).
func (r *ExchangeRateRepo) Latest(ctx context.Context, currency string, asOf time.Time) (*entity.ExchangeRate, error) {
	query := `
		SELECT id, currency, rate_to_local, observed_at, source
		FROM exchange_rates
		WHERE currency = $1 AND observed_at <= $2
		ORDER BY observed_at DESC
		LIMIT 1`
	var rate entity.ExchangeRate
	err := r.q.QueryRow(ctx, query, currency, asOf).Scan(
		&rate.ID, &rate.Currency, &rate.RateToLocal, &rate.ObservedAt, &rate.Source,
	)
	if err != nil {
		return nil, wrap("latest exchange rate", err)
	}
	return &rate, nil
}

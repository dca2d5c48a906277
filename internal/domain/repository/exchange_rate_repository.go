package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
)

// ExchangeRateRepository tasas publicadas (BCV). Solo lectura para el motor.
type ExchangeRateRepository interface {
	// Latest devuelve la tasa más reciente observada en o antes de asOf.
	// domain.ErrNotFound si no hay ninguna.
	Latest(ctx context.Context, currency string, asOf time.Time) (*entity.ExchangeRate, error)
}

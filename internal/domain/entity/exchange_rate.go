package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate tasa publicada (ej. BCV) para convertir una unidad de Currency a moneda local.
type ExchangeRate struct {
	ID          string
	Currency    string
	RateToLocal decimal.Decimal
	ObservedAt  time.Time
	Source      string
}

// RateSnapshot copia congelada de la tasa dentro de una venta. Nunca se vuelve a consultar.
type RateSnapshot struct {
	Currency    string
	RateToLocal decimal.Decimal
	ObservedAt  time.Time
	IsFallback  bool // true si no había tasa publicada y se usó la tasa por defecto
}

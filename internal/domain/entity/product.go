package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo.
// PriceHard es el precio autoritativo; PriceLocal es solo una caché de visualización
// calculada con la tasa vigente al fijar el precio y nunca se usa para contabilizar ventas.
type Product struct {
	ID                string
	CompanyID         string
	SKU               string // único por empresa
	Name              string
	PriceHard         decimal.Decimal
	PriceLocal        decimal.Decimal
	StockQuantity     int64
	MinStockThreshold int64
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// BelowMinimum indica si el stock quedó por debajo del umbral de reposición.
func (p *Product) BelowMinimum() bool {
	return p.StockQuantity < p.MinStockThreshold
}

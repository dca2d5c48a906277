package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de retención.
const (
	WithholdingKindIVA       = "iva"
	WithholdingKindISLR      = "islr"
	WithholdingKindMunicipal = "municipal"
)

// Withholding comprobante de retención derivado de una venta. Máximo uno por (venta, tipo).
// Los montos locales usan la tasa congelada de la venta (RateToLocal).
type Withholding struct {
	ID                     string
	CompanyID              string
	SaleID                 string
	CustomerID             string
	WithholdingNumber      string
	Kind                   string
	RatePercent            decimal.Decimal
	BaseAmountHard         decimal.Decimal
	WithholdingAmountHard  decimal.Decimal
	BaseAmountLocal        decimal.Decimal
	WithholdingAmountLocal decimal.Decimal
	RateToLocal            decimal.Decimal
	WithholdingDate        time.Time
	ServiceType            string // solo ISLR
	CreatedAt              time.Time
}

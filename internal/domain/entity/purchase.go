package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase factura de compra registrada por el módulo de compras (solo lectura aquí).
type Purchase struct {
	ID            string
	CompanyID     string
	VendorID      string
	InvoiceNumber string
	ControlNumber string
	PurchasedAt   time.Time
	SubtotalHard  decimal.Decimal
	TaxHard       decimal.Decimal
	TotalHard     decimal.Decimal
}

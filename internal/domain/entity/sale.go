package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago y de ciclo de vida de una venta.
const (
	PaymentStatusPaid     = "paid"
	PaymentStatusPending  = "pending"
	PaymentStatusRejected = "rejected"

	LifecycleStatusCompleted = "completed"
)

// Sale venta contabilizada. Es inmutable tras su creación salvo PaymentStatus.
// Invariantes: Total = Subtotal + Tax en ambas monedas y
// SubtotalLocal = round2(SubtotalHard × Rate.RateToLocal).
type Sale struct {
	ID              string
	CompanyID       string
	CustomerID      string
	UserID          string
	PaymentMethodID string
	SequenceNumber  int64
	SaleNumber      string // VEN-000001
	InvoiceNumber   string // FAC-000001
	PostedAt        time.Time
	Rate            RateSnapshot
	SubtotalHard    decimal.Decimal
	SubtotalLocal   decimal.Decimal
	TaxHard         decimal.Decimal
	TaxLocal        decimal.Decimal
	TotalHard       decimal.Decimal
	TotalLocal      decimal.Decimal
	TaxRatePercent  decimal.Decimal
	PaymentStatus   string
	LifecycleStatus string
	Notes           string
	Items           []*SaleLineItem
}

// SaleLineItem línea de una venta con montos en ambas monedas.
type SaleLineItem struct {
	ID                string
	SaleID            string
	ProductID         string
	Description       string
	Quantity          int64
	UnitPriceHard     decimal.Decimal
	UnitPriceLocal    decimal.Decimal
	LineSubtotalHard  decimal.Decimal
	LineSubtotalLocal decimal.Decimal
	LineTaxHard       decimal.Decimal
	LineTaxLocal      decimal.Decimal
	LineTotalHard     decimal.Decimal
	LineTotalLocal    decimal.Decimal
}

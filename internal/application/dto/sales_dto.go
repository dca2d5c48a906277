package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostSaleRequest body para POST /api/sales (carrito).
type PostSaleRequest struct {
	CustomerID      string                `json:"customer_id"`
	PaymentMethodID string                `json:"payment_method_id"`
	Items           []PostSaleLineRequest `json:"items"`
	Notes           string                `json:"notes,omitempty"`
}

// PostSaleLineRequest producto y cantidad. El precio siempre sale del catálogo.
type PostSaleLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// RateResponse tasa congelada en la venta.
type RateResponse struct {
	Currency    string          `json:"currency"`
	RateToLocal decimal.Decimal `json:"rate_to_local"`
	ObservedAt  time.Time       `json:"observed_at"`
	IsFallback  bool            `json:"is_fallback"`
}

// SaleResponse venta contabilizada con líneas para GET /api/sales/:id.
type SaleResponse struct {
	ID              string             `json:"id"`
	CompanyID       string             `json:"company_id"`
	CustomerID      string             `json:"customer_id"`
	UserID          string             `json:"user_id"`
	PaymentMethodID string             `json:"payment_method_id"`
	SaleNumber      string             `json:"sale_number"`
	InvoiceNumber   string             `json:"invoice_number"`
	PostedAt        time.Time          `json:"posted_at"`
	Rate            RateResponse       `json:"rate"`
	TaxRatePercent  decimal.Decimal    `json:"tax_rate_percent"`
	SubtotalHard    decimal.Decimal    `json:"subtotal_hard"`
	TaxHard         decimal.Decimal    `json:"tax_hard"`
	TotalHard       decimal.Decimal    `json:"total_hard"`
	SubtotalLocal   decimal.Decimal    `json:"subtotal_local"`
	TaxLocal        decimal.Decimal    `json:"tax_local"`
	TotalLocal      decimal.Decimal    `json:"total_local"`
	PaymentStatus   string             `json:"payment_status"`
	LifecycleStatus string             `json:"lifecycle_status"`
	Notes           string             `json:"notes,omitempty"`
	Items           []SaleItemResponse `json:"items,omitempty"`
}

// SaleItemResponse línea de la venta.
type SaleItemResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	Description    string          `json:"description"`
	Quantity       int64           `json:"quantity"`
	UnitPriceHard  decimal.Decimal `json:"unit_price_hard"`
	UnitPriceLocal decimal.Decimal `json:"unit_price_local"`
	SubtotalHard   decimal.Decimal `json:"subtotal_hard"`
	SubtotalLocal  decimal.Decimal `json:"subtotal_local"`
	TaxHard        decimal.Decimal `json:"tax_hard"`
	TaxLocal       decimal.Decimal `json:"tax_local"`
	TotalHard      decimal.Decimal `json:"total_hard"`
	TotalLocal     decimal.Decimal `json:"total_local"`
}

// SaleListResponse página de ventas (sin líneas).
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateWithholdingRequest body para POST /api/sales/:id/withholdings.
// ServiceType solo aplica (y es obligatorio) para kind=islr.
type CreateWithholdingRequest struct {
	Kind        string `json:"kind"`
	ServiceType string `json:"service_type,omitempty"`
}

// WithholdingResponse comprobante de retención.
type WithholdingResponse struct {
	ID                     string          `json:"id"`
	SaleID                 string          `json:"sale_id"`
	CustomerID             string          `json:"customer_id"`
	WithholdingNumber      string          `json:"withholding_number"`
	Kind                   string          `json:"kind"`
	ServiceType            string          `json:"service_type,omitempty"`
	RatePercent            decimal.Decimal `json:"rate_percent"`
	BaseAmountHard         decimal.Decimal `json:"base_amount_hard"`
	WithholdingAmountHard  decimal.Decimal `json:"withholding_amount_hard"`
	BaseAmountLocal        decimal.Decimal `json:"base_amount_local"`
	WithholdingAmountLocal decimal.Decimal `json:"withholding_amount_local"`
	RateToLocal            decimal.Decimal `json:"rate_to_local"`
	WithholdingDate        time.Time       `json:"withholding_date"`
}

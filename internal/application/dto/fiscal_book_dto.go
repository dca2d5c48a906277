package dto

import "github.com/shopspring/decimal"

// BookTotalsResponse conteo y sumas en moneda dura.
type BookTotalsResponse struct {
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// CounterpartyGroupResponse totales por RIF.
type CounterpartyGroupResponse struct {
	TaxID  string             `json:"tax_id"`
	Name   string             `json:"name"`
	Totals BookTotalsResponse `json:"totals"`
}

// BookLineResponse documento del periodo.
type BookLineResponse struct {
	DocumentID        string          `json:"document_id"`
	DocumentNumber    string          `json:"document_number"`
	Date              string          `json:"date"`
	CounterpartyTaxID string          `json:"counterparty_tax_id"`
	CounterpartyName  string          `json:"counterparty_name"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Tax               decimal.Decimal `json:"tax"`
	Total             decimal.Decimal `json:"total"`
}

// FiscalBookResponse para GET /api/fiscal-books/:kind.
type FiscalBookResponse struct {
	Kind   string                      `json:"kind"`
	From   string                      `json:"from"`
	To     string                      `json:"to"`
	Totals BookTotalsResponse          `json:"totals"`
	Groups []CounterpartyGroupResponse `json:"groups"`
	Lines  []BookLineResponse          `json:"lines"`
}

// FiscalSummaryResponse resumen del periodo: débito fiscal (ventas), crédito fiscal
// (compras) y retenciones emitidas. IVAPayable = débito - crédito.
type FiscalSummaryResponse struct {
	From              string             `json:"from"`
	To                string             `json:"to"`
	Sales             BookTotalsResponse `json:"sales"`
	Purchases         BookTotalsResponse `json:"purchases"`
	IVAPayable        decimal.Decimal    `json:"iva_payable"`
	WithheldIVA       decimal.Decimal    `json:"withheld_iva"`
	WithheldISLR      decimal.Decimal    `json:"withheld_islr"`
	WithheldMunicipal decimal.Decimal    `json:"withheld_municipal"`
	WithholdingsCount int                `json:"withholdings_count"`
}

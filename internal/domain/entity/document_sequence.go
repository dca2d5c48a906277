package entity

import "time"

// Clases de documento numeradas por empresa. La venta y su factura comparten el
// mismo correlativo (VEN-n / FAC-n).
const (
	DocumentClassSale                 = "sale"
	DocumentClassWithholdingIVA       = "withholding_iva"
	DocumentClassWithholdingISLR      = "withholding_islr"
	DocumentClassWithholdingMunicipal = "withholding_municipal"
)

// DocumentSequence contador atómico por (empresa, clase de documento).
type DocumentSequence struct {
	CompanyID     string
	DocumentClass string
	LastValue     int64
	UpdatedAt     time.Time
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Company representa una organización/tenant del sistema (enfoque Venezuela, RIF).
type Company struct {
	ID                 string
	Name               string
	TaxID              string // RIF (ej: J-12345678-9)
	Address            string
	IsWithholdingAgent bool
	TaxRatePercent     *decimal.Decimal // IVA propio de la empresa; nil = tasa por defecto de la configuración
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

package fiscal

import (
	"fmt"
	"time"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
)

// FormatSaleNumber VEN-000001.
func FormatSaleNumber(n int64) string {
	return fmt.Sprintf("VEN-%06d", n)
}

// FormatInvoiceNumber FAC-000001.
func FormatInvoiceNumber(n int64) string {
	return fmt.Sprintf("FAC-%06d", n)
}

// WithholdingClass clase de secuencia que numera cada tipo de retención.
func WithholdingClass(kind string) (string, bool) {
	switch kind {
	case entity.WithholdingKindIVA:
		return entity.DocumentClassWithholdingIVA, true
	case entity.WithholdingKindISLR:
		return entity.DocumentClassWithholdingISLR, true
	case entity.WithholdingKindMunicipal:
		return entity.DocumentClassWithholdingMunicipal, true
	}
	return "", false
}

// FormatWithholdingNumber numera el comprobante.
// IVA sigue el formato SENIAT AAAAMM + 8 dígitos (ej. 20261000000001).
func FormatWithholdingNumber(kind string, n int64, at time.Time) string {
	switch kind {
	case entity.WithholdingKindIVA:
		return fmt.Sprintf("%s%08d", at.Format("200601"), n)
	case entity.WithholdingKindISLR:
		return fmt.Sprintf("ISLR-%06d", n)
	default:
		return fmt.Sprintf("MUN-%06d", n)
	}
}

package withholding

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/repository"
)

// TxRunner numera y persiste el comprobante en una sola transacción.
type TxRunner interface {
	RunWithholding(ctx context.Context, fn func(
		withholdingRepo repository.WithholdingRepository,
		seqRepo repository.SequenceRepository,
	) error) error
}

// CertificatePDFGenerator genera el comprobante de retención en PDF.
type CertificatePDFGenerator interface {
	GenerateWithholdingPDF(data CertificateData) ([]byte, error)
}

// CertificateData todo lo que el PDF necesita, ya cargado.
type CertificateData struct {
	Withholding *entity.Withholding
	Sale        *entity.Sale
	Agent       *entity.Company  // quien emite el comprobante
	Subject     *entity.Customer // contraparte de la venta
	ConceptCode string           // solo ISLR
}

// ISLRRelationBuilder arma el XML de la relación mensual de retenciones de ISLR.
type ISLRRelationBuilder interface {
	BuildISLRRelation(agentTaxID, period string, rows []ISLRRow) ([]byte, error)
}

// ISLRRow detalle de una retención en la relación mensual.
type ISLRRow struct {
	SubjectTaxID  string
	InvoiceNumber string
	ControlNumber string
	OperationDate time.Time
	ConceptCode   string
	BaseAmount    decimal.Decimal
	RatePercent   decimal.Decimal
}

// Metrics contador de comprobantes emitidos. Puede ser nil.
type Metrics interface {
	WithholdingCreated(kind string)
}

type noopMetrics struct{}

func (noopMetrics) WithholdingCreated(string) {}

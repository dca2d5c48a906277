// Package withholding emite comprobantes de retención (IVA, ISLR y municipal) sobre
// ventas ya contabilizadas y genera sus representaciones (PDF y XML SENIAT).
package withholding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/ventas-fiscal-api/internal/application/dto"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/fiscal"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/repository"
	"github.com/jhoicas/ventas-fiscal-api/pkg/logger"
)

// UseCase casos de uso de retenciones.
type UseCase struct {
	txRunner        TxRunner
	saleRepo        repository.SaleRepository
	customerRepo    repository.CustomerRepository
	companyRepo     repository.CompanyRepository
	withholdingRepo repository.WithholdingRepository
	pdf             CertificatePDFGenerator
	xml             ISLRRelationBuilder
	metrics         Metrics
	log             *logger.Logger
	loc             *time.Location
	now             func() time.Time
}

// NewUseCase construye el caso de uso. metrics y log pueden ser nil.
func NewUseCase(
	txRunner TxRunner,
	saleRepo repository.SaleRepository,
	customerRepo repository.CustomerRepository,
	companyRepo repository.CompanyRepository,
	withholdingRepo repository.WithholdingRepository,
	pdf CertificatePDFGenerator,
	xml ISLRRelationBuilder,
	metrics Metrics,
	log *logger.Logger,
) *UseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		txRunner:        txRunner,
		saleRepo:        saleRepo,
		customerRepo:    customerRepo,
		companyRepo:     companyRepo,
		withholdingRepo: withholdingRepo,
		pdf:             pdf,
		xml:             xml,
		metrics:         metrics,
		log:             log.Component("withholding"),
		loc:             time.UTC,
		now:             time.Now,
	}
}

// WithLocation fija la zona fiscal: el mes del número de comprobante IVA, el
// periodo AAAAMM de la relación ISLR y las fechas impresas se toman en loc.
func (uc *UseCase) WithLocation(loc *time.Location) *UseCase {
	if loc != nil {
		uc.loc = loc
	}
	return uc
}

// Generate calcula y emite el comprobante de tipo in.Kind para la venta.
// Una venta admite a lo sumo un comprobante por tipo (domain.ErrAlreadyWithheld).
func (uc *UseCase) Generate(ctx context.Context, companyID, saleID string, in dto.CreateWithholdingRequest) (*dto.WithholdingResponse, error) {
	kind := strings.ToLower(strings.TrimSpace(in.Kind))
	class, ok := fiscal.WithholdingClass(kind)
	if !ok {
		return nil, domain.Invalid("tipo de retención desconocido %q", in.Kind)
	}
	if kind != entity.WithholdingKindISLR && in.ServiceType != "" {
		return nil, domain.Invalid("service_type solo aplica a retenciones de ISLR")
	}

	sale, err := uc.saleRepo.GetByID(ctx, companyID, saleID)
	if err != nil {
		return nil, err
	}
	existing, err := uc.withholdingRepo.ListBySale(ctx, companyID, saleID)
	if err != nil {
		return nil, err
	}
	for _, w := range existing {
		if w.Kind == kind {
			return nil, domain.ErrAlreadyWithheld
		}
	}

	at := uc.now().In(uc.loc)
	var w *entity.Withholding
	switch kind {
	case entity.WithholdingKindIVA:
		customer, err := uc.customerRepo.GetByID(ctx, companyID, sale.CustomerID)
		if err != nil {
			return nil, err
		}
		w, err = fiscal.CalculateIVA(sale, customer, at)
		if err != nil {
			return nil, err
		}
	case entity.WithholdingKindISLR:
		st, err := fiscal.ParseServiceType(in.ServiceType)
		if err != nil {
			return nil, err
		}
		w, err = fiscal.CalculateISLR(sale, st, at)
		if err != nil {
			return nil, err
		}
	default:
		w = fiscal.CalculateMunicipal(sale, at)
	}
	w.ID = uuid.New().String()
	w.CreatedAt = at.UTC()

	err = uc.txRunner.RunWithholding(ctx, func(withholdingRepo repository.WithholdingRepository, seqRepo repository.SequenceRepository) error {
		n, err := seqRepo.Next(ctx, companyID, class)
		if err != nil {
			return err
		}
		w.WithholdingNumber = fiscal.FormatWithholdingNumber(kind, n, at)
		return withholdingRepo.Create(ctx, w)
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.WithholdingCreated(kind)
	uc.log.Info().
		Str("company_id", companyID).
		Str("sale_id", saleID).
		Str("kind", kind).
		Str("number", w.WithholdingNumber).
		Str("amount_hard", w.WithholdingAmountHard.StringFixed(2)).
		Msg("comprobante de retención emitido")
	return ToWithholdingResponse(w), nil
}

// ListBySale comprobantes emitidos para una venta de la empresa.
func (uc *UseCase) ListBySale(ctx context.Context, companyID, saleID string) ([]dto.WithholdingResponse, error) {
	if _, err := uc.saleRepo.GetByID(ctx, companyID, saleID); err != nil {
		return nil, err
	}
	list, err := uc.withholdingRepo.ListBySale(ctx, companyID, saleID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.WithholdingResponse, 0, len(list))
	for _, w := range list {
		out = append(out, *ToWithholdingResponse(w))
	}
	return out, nil
}

// RenderCertificate genera el PDF del comprobante. Devuelve el contenido y el nombre de archivo.
func (uc *UseCase) RenderCertificate(ctx context.Context, companyID, withholdingID string) ([]byte, string, error) {
	w, err := uc.withholdingRepo.GetByID(ctx, companyID, withholdingID)
	if err != nil {
		return nil, "", err
	}
	sale, err := uc.saleRepo.GetByID(ctx, companyID, w.SaleID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener venta: %w", err)
	}
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener empresa: %w", err)
	}
	customer, err := uc.customerRepo.GetByID(ctx, companyID, w.CustomerID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener cliente: %w", err)
	}

	w.WithholdingDate = w.WithholdingDate.In(uc.loc)
	sale.PostedAt = sale.PostedAt.In(uc.loc)
	data := CertificateData{Withholding: w, Sale: sale, Agent: company, Subject: customer}
	if rate, ok := fiscal.ServiceType(w.ServiceType).Rate(); ok {
		data.ConceptCode = rate.ConceptCode
	}
	pdf, err := uc.pdf.GenerateWithholdingPDF(data)
	if err != nil {
		uc.log.Error().Err(err).Str("withholding_id", withholdingID).Msg("error generando PDF")
		return nil, "", domain.ErrInternal
	}
	return pdf, fmt.Sprintf("retencion-%s-%s.pdf", w.Kind, w.WithholdingNumber), nil
}

// ExportISLRXML relación mensual de retenciones de ISLR (period AAAAMM).
func (uc *UseCase) ExportISLRXML(ctx context.Context, companyID, period string) ([]byte, error) {
	from, err := time.ParseInLocation("200601", period, uc.loc)
	if err != nil {
		return nil, domain.Invalid("periodo inválido %q, se espera AAAAMM", period)
	}
	to := from.AddDate(0, 1, 0)

	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	list, err := uc.withholdingRepo.ListByCompanyAndKind(ctx, companyID, entity.WithholdingKindISLR, from, to)
	if err != nil {
		return nil, err
	}

	customers := make(map[string]*entity.Customer)
	rows := make([]ISLRRow, 0, len(list))
	for _, w := range list {
		sale, err := uc.saleRepo.GetByID(ctx, companyID, w.SaleID)
		if err != nil {
			return nil, fmt.Errorf("relación ISLR: venta %s: %w", w.SaleID, err)
		}
		c, ok := customers[w.CustomerID]
		if !ok {
			c, err = uc.customerRepo.GetByID(ctx, companyID, w.CustomerID)
			if err != nil {
				return nil, fmt.Errorf("relación ISLR: cliente %s: %w", w.CustomerID, err)
			}
			customers[w.CustomerID] = c
		}
		rate, _ := fiscal.ServiceType(w.ServiceType).Rate()
		rows = append(rows, ISLRRow{
			SubjectTaxID:  c.TaxID,
			InvoiceNumber: sale.InvoiceNumber,
			ControlNumber: sale.SaleNumber,
			OperationDate: sale.PostedAt.In(uc.loc),
			ConceptCode:   rate.ConceptCode,
			BaseAmount:    w.BaseAmountHard,
			RatePercent:   w.RatePercent,
		})
	}
	out, err := uc.xml.BuildISLRRelation(company.TaxID, period, rows)
	if err != nil {
		uc.log.Error().Err(err).Str("period", period).Msg("error generando XML ISLR")
		return nil, domain.ErrInternal
	}
	return out, nil
}

// ToWithholdingResponse mapea la entidad al DTO.
func ToWithholdingResponse(w *entity.Withholding) *dto.WithholdingResponse {
	return &dto.WithholdingResponse{
		ID:                     w.ID,
		SaleID:                 w.SaleID,
		CustomerID:             w.CustomerID,
		WithholdingNumber:      w.WithholdingNumber,
		Kind:                   w.Kind,
		ServiceType:            w.ServiceType,
		RatePercent:            w.RatePercent,
		BaseAmountHard:         w.BaseAmountHard,
		WithholdingAmountHard:  w.WithholdingAmountHard,
		BaseAmountLocal:        w.BaseAmountLocal,
		WithholdingAmountLocal: w.WithholdingAmountLocal,
		RateToLocal:            w.RateToLocal,
		WithholdingDate:        w.WithholdingDate,
	}
}

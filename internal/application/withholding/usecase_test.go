package withholding_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-fiscal-api/internal/application/dto"
	"github.com/jhoicas/ventas-fiscal-api/internal/application/withholding"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
	"github.com/jhoicas/ventas-fiscal-api/internal/infrastructure/memory"
	"github.com/jhoicas/ventas-fiscal-api/internal/infrastructure/seniat"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyID = "co-1"
	special   = "cu-special"
	ordinary  = "cu-ordinary"
	saleOne   = "sale-1"
	saleOrd   = "sale-2"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	s.AddCompany(entity.Company{ID: companyID, Name: "Empresa", TaxID: "J-40000000-1"})
	s.AddCustomer(entity.Customer{ID: special, CompanyID: companyID, TaxID: "J-30000000-5", Name: "Especial", IsSpecialTaxpayer: true})
	s.AddCustomer(entity.Customer{ID: ordinary, CompanyID: companyID, TaxID: "V-1", Name: "Ordinario"})

	posted := time.Now().UTC().Add(-time.Hour)
	for _, sale := range []*entity.Sale{
		{ID: saleOne, CompanyID: companyID, CustomerID: special, SaleNumber: "VEN-000001", InvoiceNumber: "FAC-000001", SequenceNumber: 1},
		{ID: saleOrd, CompanyID: companyID, CustomerID: ordinary, SaleNumber: "VEN-000002", InvoiceNumber: "FAC-000002", SequenceNumber: 2},
	} {
		sale.PostedAt = posted
		sale.Rate = entity.RateSnapshot{Currency: "USD", RateToLocal: dec("276.58")}
		sale.SubtotalHard = dec("450.00")
		sale.TaxHard = dec("72.00")
		sale.TotalHard = dec("522.00")
		require.NoError(t, s.Sales().Create(context.Background(), sale))
	}
	return s
}

type fakePDF struct {
	got withholding.CertificateData
	err error
}

func (f *fakePDF) GenerateWithholdingPDF(d withholding.CertificateData) ([]byte, error) {
	f.got = d
	return []byte("%PDF-fake"), f.err
}

type kindCounter struct {
	mu    sync.Mutex
	kinds map[string]int
}

func (k *kindCounter) WithholdingCreated(kind string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.kinds[kind]++
}

func newUseCase(s *memory.Store, pdf withholding.CertificatePDFGenerator, m withholding.Metrics) *withholding.UseCase {
	return withholding.NewUseCase(s, s.Sales(), s.Customers(), s.Companies(), s.Withholdings(),
		pdf, seniat.NewISLRXMLBuilder(), m, nil)
}

// ──────────────────────────────────────────────────────────────────────────────
// Generate
// ──────────────────────────────────────────────────────────────────────────────

func TestGenerate_IVAContribuyenteEspecial(t *testing.T) {
	s := newStore(t)
	m := &kindCounter{kinds: map[string]int{}}
	uc := newUseCase(s, &fakePDF{}, m)

	res, err := uc.Generate(context.Background(), companyID, saleOne, dto.CreateWithholdingRequest{Kind: "iva"})
	require.NoError(t, err)
	assert.Equal(t, "72.00", res.BaseAmountHard.StringFixed(2))
	assert.Equal(t, "54.00", res.WithholdingAmountHard.StringFixed(2))
	assert.Equal(t, "14935.32", res.WithholdingAmountLocal.StringFixed(2))
	assert.True(t, res.RateToLocal.Equal(dec("276.58")), "usa la tasa congelada de la venta")
	assert.Len(t, res.WithholdingNumber, 14)
	assert.Equal(t, time.Now().UTC().Format("200601"), res.WithholdingNumber[:6])
	assert.Equal(t, 1, m.kinds["iva"])
}

func TestGenerate_IVAClienteOrdinario(t *testing.T) {
	uc := newUseCase(newStore(t), &fakePDF{}, nil)
	_, err := uc.Generate(context.Background(), companyID, saleOrd, dto.CreateWithholdingRequest{Kind: "iva"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGenerate_UnoPorTipo(t *testing.T) {
	uc := newUseCase(newStore(t), &fakePDF{}, nil)
	ctx := context.Background()

	first, err := uc.Generate(ctx, companyID, saleOrd, dto.CreateWithholdingRequest{Kind: "municipal"})
	require.NoError(t, err)
	assert.Equal(t, "MUN-000001", first.WithholdingNumber)
	assert.Equal(t, "4.50", first.WithholdingAmountHard.StringFixed(2))

	_, err = uc.Generate(ctx, companyID, saleOrd, dto.CreateWithholdingRequest{Kind: "municipal"})
	assert.ErrorIs(t, err, domain.ErrAlreadyWithheld)

	// otro tipo sobre la misma venta sí se permite
	islr, err := uc.Generate(ctx, companyID, saleOrd, dto.CreateWithholdingRequest{Kind: "islr", ServiceType: "contractor_services"})
	require.NoError(t, err)
	assert.Equal(t, "ISLR-000001", islr.WithholdingNumber)
	assert.Equal(t, "9.00", islr.WithholdingAmountHard.StringFixed(2))

	list, err := uc.ListBySale(ctx, companyID, saleOrd)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestGenerate_ConcurrenteSoloUnoGana(t *testing.T) {
	uc := newUseCase(newStore(t), &fakePDF{}, nil)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Generate(context.Background(), companyID, saleOne, dto.CreateWithholdingRequest{Kind: "islr", ServiceType: "freight"})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyWithheld)
	}
	assert.Equal(t, 1, ok)
}

func TestGenerate_Validaciones(t *testing.T) {
	uc := newUseCase(newStore(t), &fakePDF{}, nil)
	ctx := context.Background()

	_, err := uc.Generate(ctx, companyID, saleOrd, dto.CreateWithholdingRequest{Kind: "iae"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Generate(ctx, companyID, saleOrd, dto.CreateWithholdingRequest{Kind: "islr"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "ISLR exige tipo de servicio")

	_, err = uc.Generate(ctx, companyID, saleOrd, dto.CreateWithholdingRequest{Kind: "islr", ServiceType: "consulting"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Generate(ctx, companyID, saleOrd, dto.CreateWithholdingRequest{Kind: "municipal", ServiceType: "freight"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Generate(ctx, companyID, "no-existe", dto.CreateWithholdingRequest{Kind: "municipal"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Generate(ctx, "otra-empresa", saleOrd, dto.CreateWithholdingRequest{Kind: "municipal"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Documentos
// ──────────────────────────────────────────────────────────────────────────────

func TestRenderCertificate(t *testing.T) {
	s := newStore(t)
	pdf := &fakePDF{}
	uc := newUseCase(s, pdf, nil)
	ctx := context.Background()

	w, err := uc.Generate(ctx, companyID, saleOne, dto.CreateWithholdingRequest{Kind: "islr", ServiceType: "advertising"})
	require.NoError(t, err)

	body, name, err := uc.RenderCertificate(ctx, companyID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(body))
	assert.Equal(t, "retencion-islr-ISLR-000001.pdf", name)
	assert.Equal(t, "083", pdf.got.ConceptCode)
	assert.Equal(t, "J-40000000-1", pdf.got.Agent.TaxID)
	assert.Equal(t, special, pdf.got.Subject.ID)

	_, _, err = uc.RenderCertificate(ctx, "otra-empresa", w.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	pdf.err = errors.New("fuente no encontrada")
	_, _, err = uc.RenderCertificate(ctx, companyID, w.ID)
	assert.ErrorIs(t, err, domain.ErrInternal)
}

func TestExportISLRXML(t *testing.T) {
	uc := newUseCase(newStore(t), &fakePDF{}, nil)
	ctx := context.Background()

	_, err := uc.Generate(ctx, companyID, saleOne, dto.CreateWithholdingRequest{Kind: "islr", ServiceType: "professional_fees"})
	require.NoError(t, err)
	_, err = uc.Generate(ctx, companyID, saleOne, dto.CreateWithholdingRequest{Kind: "municipal"})
	require.NoError(t, err)

	period := time.Now().UTC().Format("200601")
	out, err := uc.ExportISLRXML(ctx, companyID, period)
	require.NoError(t, err)
	xml := string(out)
	assert.Contains(t, xml, `RifAgente="J400000001"`)
	assert.Contains(t, xml, "<CodigoConcepto>002</CodigoConcepto>")
	assert.Contains(t, xml, "<MontoOperacion>450.00</MontoOperacion>")
	assert.Equal(t, 1, strings.Count(xml, "<DetalleRetencion>"), "solo retenciones de ISLR")

	_, err = uc.ExportISLRXML(ctx, companyID, "2026-10")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWithLocation_FechasEnZonaFiscal(t *testing.T) {
	vet := time.FixedZone("VET", -4*3600)
	pdf := &fakePDF{}
	uc := newUseCase(newStore(t), pdf, nil).WithLocation(vet)
	ctx := context.Background()

	res, err := uc.Generate(ctx, companyID, saleOne, dto.CreateWithholdingRequest{Kind: "iva"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.WithholdingNumber, time.Now().In(vet).Format("200601")), res.WithholdingNumber)

	_, _, err = uc.RenderCertificate(ctx, companyID, res.ID)
	require.NoError(t, err)
	assert.Equal(t, vet, pdf.got.Withholding.WithholdingDate.Location())
	assert.Equal(t, vet, pdf.got.Sale.PostedAt.Location())

	_, err = uc.Generate(ctx, companyID, saleOne, dto.CreateWithholdingRequest{Kind: "islr", ServiceType: "freight"})
	require.NoError(t, err)
	out, err := uc.ExportISLRXML(ctx, companyID, time.Now().In(vet).Format("200601"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "<CodigoConcepto>071</CodigoConcepto>")
}

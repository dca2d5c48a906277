package fiscalbook_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-fiscal-api/internal/application/fiscalbook"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
	"github.com/jhoicas/ventas-fiscal-api/internal/infrastructure/memory"
)

const companyID = "co-1"

var (
	oct  = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	nov  = time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	ctxB = context.Background()
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seeded(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	s.AddCustomer(entity.Customer{ID: "cu-1", CompanyID: companyID, TaxID: "J-1", Name: "Cliente Uno"})
	s.AddCustomer(entity.Customer{ID: "cu-2", CompanyID: companyID, TaxID: "V-2", Name: "Cliente Dos"})
	s.AddVendor(entity.Vendor{ID: "ve-1", CompanyID: companyID, TaxID: "J-9", Name: "Proveedor"})

	sales := []struct {
		id, customer, number string
		at                   time.Time
		sub, tax             string
	}{
		{"s1", "cu-1", "FAC-000001", oct.Add(24 * time.Hour), "100.00", "16.00"},
		{"s2", "cu-2", "FAC-000002", oct.Add(48 * time.Hour), "200.00", "32.00"},
		{"s3", "cu-1", "FAC-000003", oct.Add(72 * time.Hour), "50.00", "8.00"},
		{"s4", "cu-1", "FAC-000004", nov.Add(time.Hour), "999.00", "159.84"},
	}
	for i, sv := range sales {
		sub, tax := dec(sv.sub), dec(sv.tax)
		require.NoError(t, s.Sales().Create(ctxB, &entity.Sale{
			ID: sv.id, CompanyID: companyID, CustomerID: sv.customer,
			SequenceNumber: int64(i + 1), SaleNumber: strings.Replace(sv.number, "FAC", "VEN", 1), InvoiceNumber: sv.number,
			PostedAt: sv.at, SubtotalHard: sub, TaxHard: tax, TotalHard: sub.Add(tax),
		}))
	}
	s.AddPurchase(entity.Purchase{ID: "p1", CompanyID: companyID, VendorID: "ve-1", InvoiceNumber: "0001", PurchasedAt: oct.Add(36 * time.Hour),
		SubtotalHard: dec("100.00"), TaxHard: dec("16.00"), TotalHard: dec("116.00")})
	return s
}

func TestAggregate_Ventas(t *testing.T) {
	s := seeded(t)
	uc := fiscalbook.NewUseCase(s.FiscalBooks(), s.Withholdings(), nil)

	res, err := uc.Aggregate(ctxB, companyID, "sales", oct, nov)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Totals.Count)
	assert.Equal(t, "350.00", res.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "56.00", res.Totals.Tax.StringFixed(2))
	assert.Equal(t, "406.00", res.Totals.Total.StringFixed(2))
	require.Len(t, res.Groups, 2)
	assert.Equal(t, "J-1", res.Groups[0].TaxID)
	assert.Equal(t, 2, res.Groups[0].Totals.Count)
	require.Len(t, res.Lines, 3)
	assert.Equal(t, "FAC-000001", res.Lines[0].DocumentNumber)
	assert.Equal(t, "2026-10-02", res.Lines[0].Date)
}

func TestAggregate_Compras(t *testing.T) {
	s := seeded(t)
	uc := fiscalbook.NewUseCase(s.FiscalBooks(), s.Withholdings(), nil)

	res, err := uc.Aggregate(ctxB, companyID, "purchases", oct, nov)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Totals.Count)
	assert.Equal(t, "Proveedor", res.Groups[0].Name)
}

func TestAggregate_Validaciones(t *testing.T) {
	s := seeded(t)
	uc := fiscalbook.NewUseCase(s.FiscalBooks(), s.Withholdings(), nil)

	_, err := uc.Aggregate(ctxB, companyID, "diario", oct, nov)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Aggregate(ctxB, companyID, "sales", nov, oct)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Aggregate(ctxB, companyID, "sales", time.Time{}, oct)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExport(t *testing.T) {
	s := seeded(t)
	uc := fiscalbook.NewUseCase(s.FiscalBooks(), s.Withholdings(), nil)

	out, name, err := uc.Export(ctxB, companyID, "sales", oct, nov, "")
	require.NoError(t, err)
	assert.Equal(t, "libro-sales-20261001-20261031.txt", name)
	text := string(out)
	assert.True(t, strings.HasPrefix(text, "LIBRO DE VENTAS\r\n"))
	assert.Contains(t, text, "TOTAL TRANSACCIONES: 3")

	_, _, err = uc.Export(ctxB, companyID, "sales", oct, nov, "koi8-r")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSummary(t *testing.T) {
	s := seeded(t)
	wuc := s.Withholdings()
	require.NoError(t, wuc.Create(ctxB, &entity.Withholding{
		ID: "w1", CompanyID: companyID, SaleID: "s1", CustomerID: "cu-1", Kind: entity.WithholdingKindIVA,
		WithholdingNumber: "20261000000001", WithholdingAmountHard: dec("12.00"), WithholdingDate: oct.Add(50 * time.Hour),
	}))
	require.NoError(t, wuc.Create(ctxB, &entity.Withholding{
		ID: "w2", CompanyID: companyID, SaleID: "s2", CustomerID: "cu-2", Kind: entity.WithholdingKindMunicipal,
		WithholdingNumber: "MUN-000001", WithholdingAmountHard: dec("2.00"), WithholdingDate: oct.Add(50 * time.Hour),
	}))

	uc := fiscalbook.NewUseCase(s.FiscalBooks(), s.Withholdings(), nil)
	res, err := uc.Summary(ctxB, companyID, oct, nov)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Sales.Count)
	assert.Equal(t, 1, res.Purchases.Count)
	assert.Equal(t, "40.00", res.IVAPayable.StringFixed(2))
	assert.Equal(t, "12.00", res.WithheldIVA.StringFixed(2))
	assert.Equal(t, "0.00", res.WithheldISLR.StringFixed(2))
	assert.Equal(t, "2.00", res.WithheldMunicipal.StringFixed(2))
	assert.Equal(t, 2, res.WithholdingsCount)
}

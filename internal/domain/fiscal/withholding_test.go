package fiscal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/fiscal"
)

func postedSale() *entity.Sale {
	return &entity.Sale{
		ID:            "sale-1",
		CompanyID:     "co-1",
		CustomerID:    "cu-1",
		Rate:          entity.RateSnapshot{Currency: "USD", RateToLocal: d("276.58")},
		SubtotalHard:  d("450.00"),
		TaxHard:       d("72.00"),
		TotalHard:     d("522.00"),
		SubtotalLocal: d("124461.00"),
	}
}

var when = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func TestCalculateIVA_ContribuyenteEspecial(t *testing.T) {
	w, err := fiscal.CalculateIVA(postedSale(), &entity.Customer{ID: "cu-1", IsSpecialTaxpayer: true}, when)
	require.NoError(t, err)

	assert.Equal(t, entity.WithholdingKindIVA, w.Kind)
	assert.Equal(t, "72.00", w.BaseAmountHard.StringFixed(2))
	assert.Equal(t, "54.00", w.WithholdingAmountHard.StringFixed(2))
	assert.Equal(t, "19913.76", w.BaseAmountLocal.StringFixed(2))
	assert.Equal(t, "14935.32", w.WithholdingAmountLocal.StringFixed(2))
	assert.Equal(t, "sale-1", w.SaleID)
	assert.Equal(t, "co-1", w.CompanyID)
}

func TestCalculateIVA_ClienteOrdinario(t *testing.T) {
	_, err := fiscal.CalculateIVA(postedSale(), &entity.Customer{ID: "cu-1"}, when)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = fiscal.CalculateIVA(postedSale(), nil, when)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCalculateISLR_TablaDeConceptos(t *testing.T) {
	cases := []struct {
		st      fiscal.ServiceType
		percent string
		amount  string
		code    string
	}{
		{fiscal.ServiceProfessionalFees, "3", "13.50", "002"},
		{fiscal.ServiceContractorServices, "2", "9.00", "053"},
		{fiscal.ServiceRealEstateRent, "3", "13.50", "061"},
		{fiscal.ServiceFreight, "3", "13.50", "071"},
		{fiscal.ServiceAdvertising, "3", "13.50", "083"},
	}
	for _, tc := range cases {
		t.Run(string(tc.st), func(t *testing.T) {
			w, err := fiscal.CalculateISLR(postedSale(), tc.st, when)
			require.NoError(t, err)
			assert.Equal(t, tc.percent, w.RatePercent.String())
			assert.Equal(t, "450.00", w.BaseAmountHard.StringFixed(2))
			assert.Equal(t, tc.amount, w.WithholdingAmountHard.StringFixed(2))
			assert.Equal(t, string(tc.st), w.ServiceType)

			rate, ok := tc.st.Rate()
			require.True(t, ok)
			assert.Equal(t, tc.code, rate.ConceptCode)
		})
	}
}

func TestCalculateISLR_ConceptoDesconocido(t *testing.T) {
	_, err := fiscal.CalculateISLR(postedSale(), fiscal.ServiceType("consulting"), when)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = fiscal.ParseServiceType("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	st, err := fiscal.ParseServiceType("freight")
	require.NoError(t, err)
	assert.Equal(t, fiscal.ServiceFreight, st)
}

func TestCalculateMunicipal(t *testing.T) {
	w := fiscal.CalculateMunicipal(postedSale(), when)
	assert.Equal(t, entity.WithholdingKindMunicipal, w.Kind)
	assert.Equal(t, "4.50", w.WithholdingAmountHard.StringFixed(2))
	assert.Equal(t, "1244.61", w.WithholdingAmountLocal.StringFixed(2))
}

func TestFormatWithholdingNumber(t *testing.T) {
	assert.Equal(t, "20261000000001", fiscal.FormatWithholdingNumber(entity.WithholdingKindIVA, 1, when))
	assert.Equal(t, "ISLR-000012", fiscal.FormatWithholdingNumber(entity.WithholdingKindISLR, 12, when))
	assert.Equal(t, "MUN-000003", fiscal.FormatWithholdingNumber(entity.WithholdingKindMunicipal, 3, when))
	assert.Equal(t, "VEN-000042", fiscal.FormatSaleNumber(42))
	assert.Equal(t, "FAC-000042", fiscal.FormatInvoiceNumber(42))

	class, ok := fiscal.WithholdingClass(entity.WithholdingKindISLR)
	assert.True(t, ok)
	assert.Equal(t, entity.DocumentClassWithholdingISLR, class)
	_, ok = fiscal.WithholdingClass("otro")
	assert.False(t, ok)
}

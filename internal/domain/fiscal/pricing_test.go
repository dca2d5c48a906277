package fiscal_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain/fiscal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ──────────────────────────────────────────────────────────────────────────────
// Venta de un producto de 450.00 USD a tasa 276.58 con IVA 16 %.
// ──────────────────────────────────────────────────────────────────────────────

func TestPriceSale_UnaLinea(t *testing.T) {
	lines, totals := fiscal.PriceSale([]fiscal.LineInput{
		{ProductID: "A", Quantity: 1, UnitPriceHard: d("450.00")},
	}, d("276.58"), d("16"))

	require.Len(t, lines, 1)
	assert.Equal(t, "450.00", totals.SubtotalHard.StringFixed(2))
	assert.Equal(t, "72.00", totals.TaxHard.StringFixed(2))
	assert.Equal(t, "522.00", totals.TotalHard.StringFixed(2))
	assert.Equal(t, "124461.00", totals.SubtotalLocal.StringFixed(2))
	assert.Equal(t, "19913.76", totals.TaxLocal.StringFixed(2))
	assert.Equal(t, "144374.76", totals.TotalLocal.StringFixed(2))

	l := lines[0]
	assert.Equal(t, "124461.00", l.UnitPriceLocal.StringFixed(2))
	assert.True(t, l.TotalHard.Equal(totals.TotalHard))
	assert.True(t, l.TotalLocal.Equal(totals.TotalLocal))
}

func TestPriceSale_LineasCuadranConCabecera(t *testing.T) {
	in := []fiscal.LineInput{
		{ProductID: "A", Quantity: 3, UnitPriceHard: d("0.33")},
		{ProductID: "B", Quantity: 7, UnitPriceHard: d("1.17")},
		{ProductID: "C", Quantity: 1, UnitPriceHard: d("0.05")},
	}
	lines, totals := fiscal.PriceSale(in, d("36.1234"), d("16"))

	var subLocal, taxHard, taxLocal, totHard, totLocal decimal.Decimal
	for _, l := range lines {
		subLocal = subLocal.Add(l.SubtotalLocal)
		taxHard = taxHard.Add(l.TaxHard)
		taxLocal = taxLocal.Add(l.TaxLocal)
		totHard = totHard.Add(l.TotalHard)
		totLocal = totLocal.Add(l.TotalLocal)
	}
	assert.True(t, subLocal.Equal(totals.SubtotalLocal), "subtotal local %s != %s", subLocal, totals.SubtotalLocal)
	assert.True(t, taxHard.Equal(totals.TaxHard))
	assert.True(t, taxLocal.Equal(totals.TaxLocal))
	assert.True(t, totHard.Equal(totals.TotalHard))
	assert.True(t, totLocal.Equal(totals.TotalLocal))

	assert.True(t, totals.SubtotalLocal.Equal(fiscal.ToLocal(totals.SubtotalHard, d("36.1234"))))
	assert.True(t, totals.TotalHard.Equal(totals.SubtotalHard.Add(totals.TaxHard)))
	assert.True(t, totals.TotalLocal.Equal(totals.SubtotalLocal.Add(totals.TaxLocal)))
}

func TestPriceSale_SinLineas(t *testing.T) {
	lines, totals := fiscal.PriceSale(nil, d("10"), d("16"))
	assert.Empty(t, lines)
	assert.True(t, totals.TotalHard.IsZero())
	assert.True(t, totals.TotalLocal.IsZero())
}

func TestPercent_RedondeoMitadArriba(t *testing.T) {
	assert.Equal(t, "0.01", fiscal.Percent(d("0.05"), d("16")).StringFixed(2))   // 0.008
	assert.Equal(t, "0.13", fiscal.Percent(d("0.78125"), d("16")).StringFixed(2)) // 0.125
	assert.Equal(t, "54.00", fiscal.Percent(d("72.00"), d("75")).StringFixed(2))
}

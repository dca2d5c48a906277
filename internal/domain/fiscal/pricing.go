// Package fiscal reúne los cálculos puros del motor: precios en doble moneda,
// retenciones (IVA, ISLR, municipal), numeración de documentos y libros fiscales.
// No accede a persistencia ni a la red.
package fiscal

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Round2 redondea a céntimos (mitad hacia arriba, lejos de cero).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent devuelve round2(base × pct / 100).
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return Round2(base.Mul(pct).Div(hundred))
}

// ToLocal convierte un monto en moneda dura con la tasa congelada.
func ToLocal(amountHard, rate decimal.Decimal) decimal.Decimal {
	return Round2(amountHard.Mul(rate))
}

// LineInput línea ya validada: el precio proviene del catálogo (moneda dura).
type LineInput struct {
	ProductID     string
	Description   string
	Quantity      int64
	UnitPriceHard decimal.Decimal
}

// PricedLine línea con todos sus montos en ambas monedas.
type PricedLine struct {
	LineInput
	UnitPriceLocal decimal.Decimal
	SubtotalHard   decimal.Decimal
	SubtotalLocal  decimal.Decimal
	TaxHard        decimal.Decimal
	TaxLocal       decimal.Decimal
	TotalHard      decimal.Decimal
	TotalLocal     decimal.Decimal
}

// Totals cabecera de la venta.
type Totals struct {
	SubtotalHard  decimal.Decimal
	SubtotalLocal decimal.Decimal
	TaxHard       decimal.Decimal
	TaxLocal      decimal.Decimal
	TotalHard     decimal.Decimal
	TotalLocal    decimal.Decimal
}

// PriceSale calcula líneas y cabecera de una venta.
//
// La única fuente de los montos locales es la tasa congelada (rate); el precio local
// cacheado en el catálogo no participa. La cabecera se calcula sobre el subtotal
// agregado y la diferencia de redondeo contra la suma de líneas se imputa a la línea
// de mayor subtotal, de modo que las columnas siempre cuadran con la cabecera.
func PriceSale(lines []LineInput, rate, taxRatePercent decimal.Decimal) ([]PricedLine, Totals) {
	priced := make([]PricedLine, len(lines))
	var subtotalHard decimal.Decimal
	largest := 0
	for i, in := range lines {
		qty := decimal.NewFromInt(in.Quantity)
		sub := Round2(in.UnitPriceHard.Mul(qty))
		priced[i] = PricedLine{
			LineInput:      in,
			UnitPriceLocal: ToLocal(in.UnitPriceHard, rate),
			SubtotalHard:   sub,
			SubtotalLocal:  ToLocal(sub, rate),
			TaxHard:        Percent(sub, taxRatePercent),
		}
		priced[i].TaxLocal = Percent(priced[i].SubtotalLocal, taxRatePercent)
		subtotalHard = subtotalHard.Add(sub)
		if sub.GreaterThan(priced[largest].SubtotalHard) {
			largest = i
		}
	}

	t := Totals{SubtotalHard: subtotalHard}
	t.SubtotalLocal = ToLocal(subtotalHard, rate)
	t.TaxHard = Percent(subtotalHard, taxRatePercent)
	t.TaxLocal = Percent(t.SubtotalLocal, taxRatePercent)
	t.TotalHard = t.SubtotalHard.Add(t.TaxHard)
	t.TotalLocal = t.SubtotalLocal.Add(t.TaxLocal)

	if len(priced) > 0 {
		var sumSubLocal, sumTaxHard, sumTaxLocal decimal.Decimal
		for _, p := range priced {
			sumSubLocal = sumSubLocal.Add(p.SubtotalLocal)
			sumTaxHard = sumTaxHard.Add(p.TaxHard)
			sumTaxLocal = sumTaxLocal.Add(p.TaxLocal)
		}
		l := &priced[largest]
		l.SubtotalLocal = l.SubtotalLocal.Add(t.SubtotalLocal.Sub(sumSubLocal))
		l.TaxHard = l.TaxHard.Add(t.TaxHard.Sub(sumTaxHard))
		l.TaxLocal = l.TaxLocal.Add(t.TaxLocal.Sub(sumTaxLocal))
	}
	for i := range priced {
		priced[i].TotalHard = priced[i].SubtotalHard.Add(priced[i].TaxHard)
		priced[i].TotalLocal = priced[i].SubtotalLocal.Add(priced[i].TaxLocal)
	}
	return priced, t
}

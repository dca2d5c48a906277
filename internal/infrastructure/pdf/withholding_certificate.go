// Package pdf genera el Comprobante de Retención en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Agente de retención + RIF │ Tipo + N° + Fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SUJETO RETENIDO: Nombre + RIF + dirección                  │
//	│  DOCUMENTO: N° factura / N° control / fecha / tasa          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Concepto | Base | % | Retenido   (USD y Bs)         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR de verificación + leyenda legal                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appwithholding "github.com/jhoicas/ventas-fiscal-api/internal/application/withholding"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var kindTitles = map[string]string{
	entity.WithholdingKindIVA:       "COMPROBANTE DE RETENCIÓN DE IVA",
	entity.WithholdingKindISLR:      "COMPROBANTE DE RETENCIÓN DE ISLR",
	entity.WithholdingKindMunicipal: "COMPROBANTE DE RETENCIÓN MUNICIPAL",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appwithholding.CertificatePDFGenerator = (*MarotoCertificateGenerator)(nil)

// MarotoCertificateGenerator implementa withholding.CertificatePDFGenerator usando Maroto v2.
type MarotoCertificateGenerator struct{}

// NewMarotoCertificateGenerator construye el generador.
func NewMarotoCertificateGenerator() *MarotoCertificateGenerator {
	return &MarotoCertificateGenerator{}
}

// GenerateWithholdingPDF genera el PDF y devuelve sus bytes.
func (g *MarotoCertificateGenerator) GenerateWithholdingPDF(d appwithholding.CertificateData) ([]byte, error) {
	if d.Withholding == nil || d.Sale == nil || d.Agent == nil || d.Subject == nil {
		return nil, fmt.Errorf("pdf: datos del comprobante incompletos")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title(d.Withholding.Kind), true).
		WithAuthor(d.Agent.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(d.Withholding, d.Agent))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(subjectRow(d.Subject))
	m.AddRows(documentRow(d.Sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(amountRows(d)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(d)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func title(kind string) string {
	if t, ok := kindTitles[kind]; ok {
		return t
	}
	return "COMPROBANTE DE RETENCIÓN"
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: agente de retención (izq) y tipo, número y fecha (der).
func headerRow(w *entity.Withholding, agent *entity.Company) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(agent.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("RIF: "+agent.TaxID, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(title(w.Kind), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("N° "+w.WithholdingNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+w.WithholdingDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func subjectRow(c *entity.Customer) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("SUJETO RETENIDO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(c.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("RIF: %s   |   Dirección: %s",
				c.TaxID,
				nonEmpty(c.Address, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func documentRow(s *entity.Sale) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DOCUMENTO AFECTADO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Factura: %s   |   Control: %s   |   Fecha: %s   |   Tasa BCV: %s Bs/%s",
				s.InvoiceNumber,
				s.SaleNumber,
				s.PostedAt.Format("02/01/2006"),
				formatMoney(s.Rate.RateToLocal.StringFixed(4)),
				nonEmpty(s.Rate.Currency, "USD"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Moneda", 2, align.Left),
		h("Concepto", 3, align.Left),
		h("Base imponible", 3, align.Right),
		h("%", 1, align.Center),
		h("Monto retenido", 3, align.Right),
	)
}

// amountRows una fila por moneda: USD (autoritativa) y Bs (con la tasa de la venta).
func amountRows(d appwithholding.CertificateData) []core.Row {
	w := d.Withholding
	concept := conceptLabel(w.Kind, d.ConceptCode)
	r := func(currency string, base, amount decimal.Decimal) core.Row {
		return row.New(7).Add(
			col.New(2).Add(text.New(currency, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(concept, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(formatMoney(base.StringFixed(2)), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(w.RatePercent.String()+"%", props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New(formatMoney(amount.StringFixed(2)), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
		)
	}
	return []core.Row{
		r(nonEmpty(d.Sale.Rate.Currency, "USD"), w.BaseAmountHard, w.WithholdingAmountHard),
		r("Bs", w.BaseAmountLocal, w.WithholdingAmountLocal),
	}
}

func conceptLabel(kind, code string) string {
	switch kind {
	case entity.WithholdingKindIVA:
		return "IVA facturado"
	case entity.WithholdingKindISLR:
		if code != "" {
			return "ISLR concepto " + code
		}
		return "ISLR"
	default:
		return "Actividades económicas"
	}
}

// footerRows: QR con los datos de verificación + leyenda legal.
func footerRows(d appwithholding.CertificateData) []core.Row {
	w := d.Withholding
	qr := strings.Join([]string{
		w.WithholdingNumber,
		d.Agent.TaxID,
		d.Subject.TaxID,
		d.Sale.InvoiceNumber,
		w.WithholdingAmountHard.StringFixed(2),
		w.WithholdingAmountLocal.StringFixed(2),
	}, "|")

	return []core.Row{
		row.New(40).Add(
			col.New(4).Add(code.NewQr(qr, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(8).Add(
				text.New("Firma y sello del agente de retención", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New("_______________________________", props.Text{
					Size: 10, Top: 22, Left: 3,
				}),
			),
		),
		row.New(8).Add(col.New(12).Add(
			text.New(
				"Este comprobante se emite en cumplimiento de la normativa tributaria vigente. "+
					"Los montos en bolívares se calcularon con la tasa congelada en la factura.",
				props.Text{Size: 6.5, Color: colorGray, Top: 2},
			),
		)),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney formato venezolano: punto de miles y coma decimal.
// Ej: "124461.00" → "124.461,00", "-54.5" → "-54,5"
func formatMoney(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+len(frac)+1)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	if hasFrac {
		buf = append(buf, ',')
		buf = append(buf, frac...)
	}
	return sign + string(buf)
}

// Package seniat genera los archivos que se declaran en el portal fiscal.
package seniat

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/beevik/etree"

	appwithholding "github.com/jhoicas/ventas-fiscal-api/internal/application/withholding"
)

var _ appwithholding.ISLRRelationBuilder = (*ISLRXMLBuilder)(nil)

// ISLRXMLBuilder arma la RelacionRetencionesISLR mensual.
type ISLRXMLBuilder struct{}

// NewISLRXMLBuilder construye el builder.
func NewISLRXMLBuilder() *ISLRXMLBuilder { return &ISLRXMLBuilder{} }

// BuildISLRRelation devuelve el XML con un DetalleRetencion por fila.
// Los RIF van sin guiones y los números de documento solo con dígitos.
func (b *ISLRXMLBuilder) BuildISLRRelation(agentTaxID, period string, rows []appwithholding.ISLRRow) ([]byte, error) {
	if len(period) != 6 {
		return nil, fmt.Errorf("seniat: periodo inválido %q", period)
	}
	rif := normalizeRIF(agentTaxID)
	if rif == "" {
		return nil, fmt.Errorf("seniat: RIF del agente vacío")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("RelacionRetencionesISLR")
	root.CreateAttr("RifAgente", rif)
	root.CreateAttr("Periodo", period)

	for _, r := range rows {
		det := root.CreateElement("DetalleRetencion")
		det.CreateElement("RifRetenido").SetText(normalizeRIF(r.SubjectTaxID))
		det.CreateElement("NumeroFactura").SetText(digits(r.InvoiceNumber))
		det.CreateElement("NumeroControl").SetText(digits(r.ControlNumber))
		det.CreateElement("FechaOperacion").SetText(r.OperationDate.Format("02/01/2006"))
		det.CreateElement("CodigoConcepto").SetText(r.ConceptCode)
		det.CreateElement("MontoOperacion").SetText(r.BaseAmount.StringFixed(2))
		det.CreateElement("PorcentajeRetencion").SetText(r.RatePercent.StringFixed(2))
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("seniat: serializar XML: %w", err)
	}
	return out, nil
}

// normalizeRIF "j-12345678-9" → "J123456789".
func normalizeRIF(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func digits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

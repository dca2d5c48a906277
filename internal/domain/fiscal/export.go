package fiscal

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
)

// Anchos de columna del archivo de texto del libro. El consumidor del archivo
// los lee por posición: no cambiar sin coordinar.
const (
	colSeq     = 5
	colDoc     = 12
	colDate    = 10
	colTaxID   = 12
	colName    = 30
	colAmount  = 15
	lineWidth  = colSeq + colDoc + colDate + colTaxID + colName + 3*colAmount + 7
	labelWidth = colSeq + colDoc + colDate + colTaxID + colName + 4

	crlf = "\r\n"
)

// Charsets soportados por la exportación.
const (
	CharsetUTF8   = "utf-8"
	CharsetLatin1 = "iso-8859-1"
)

var (
	rowFormat    = fmt.Sprintf("%%%dd %%-%ds %%-%ds %%-%ds %%-%ds %%%ds %%%ds %%%ds", colSeq, colDoc, colDate, colTaxID, colName, colAmount, colAmount, colAmount)
	headerFormat = strings.Replace(rowFormat, "d", "s", 1)
	footerFormat = fmt.Sprintf("%%-%ds %%%ds %%%ds %%%ds", labelWidth, colAmount, colAmount, colAmount)
	separator    = strings.Repeat("-", lineWidth)
)

// WriteBook escribe el libro en formato de ancho fijo (UTF-8, fin de línea CRLF).
// Las fechas de los documentos se imprimen en la zona horaria del periodo.
func WriteBook(w io.Writer, b *Book, generatedAt time.Time) error {
	bw := bufio.NewWriter(w)
	line := func(s string) {
		bw.WriteString(s)
		bw.WriteString(crlf)
	}

	line(b.Kind.Title())
	line(fmt.Sprintf("PERIODO: %s AL %s", b.Start.Format("2006-01-02"), b.End.AddDate(0, 0, -1).Format("2006-01-02")))
	line("GENERADO: " + b.LocalDate(generatedAt).Format("2006-01-02 15:04:05"))
	line(separator)
	line(fmt.Sprintf(headerFormat, "NRO", "DOCUMENTO", "FECHA", "RIF", "NOMBRE / RAZON SOCIAL", "BASE IMPONIBLE", "IMPUESTO", "TOTAL"))
	line(separator)
	for i, e := range b.Lines {
		line(fmt.Sprintf(rowFormat,
			i+1,
			fit(e.DocumentNumber, colDoc),
			b.LocalDate(e.Date).Format("2006-01-02"),
			fit(e.CounterpartyTaxID, colTaxID),
			fit(e.CounterpartyName, colName),
			amount(e.Subtotal),
			amount(e.Tax),
			amount(e.Total),
		))
	}
	line(separator)
	line(fmt.Sprintf(footerFormat,
		fmt.Sprintf("TOTAL TRANSACCIONES: %d", b.Totals.Count),
		amount(b.Totals.Subtotal),
		amount(b.Totals.Tax),
		amount(b.Totals.Total),
	))
	return bw.Flush()
}

// EncodeBook genera el archivo completo en el charset pedido.
// En ISO-8859-1 los caracteres sin representación se sustituyen por '?'.
func EncodeBook(b *Book, generatedAt time.Time, charset string) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteBook(&buf, b, generatedAt); err != nil {
		return nil, err
	}
	switch strings.ToLower(charset) {
	case "", CharsetUTF8, "utf8":
		return buf.Bytes(), nil
	case CharsetLatin1, "latin1", "latin-1":
		return toLatin1(buf.String()), nil
	default:
		return nil, domain.Invalid("charset no soportado %q", charset)
	}
}

func toLatin1(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			out = append(out, b)
			continue
		}
		out = append(out, '?')
	}
	return out
}

// fit trunca por runas, no por bytes: los nombres llevan tildes y eñes.
func fit(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[:width])
	}
	return s
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

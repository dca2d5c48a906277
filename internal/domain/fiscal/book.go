package fiscal

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BookKind tipo de libro fiscal.
type BookKind string

const (
	BookSales     BookKind = "sales"
	BookPurchases BookKind = "purchases"
)

// ParseBookKind valida el tipo recibido por la API.
func ParseBookKind(s string) (BookKind, bool) {
	switch BookKind(s) {
	case BookSales, BookPurchases:
		return BookKind(s), true
	}
	return "", false
}

// Title encabezado del libro en el archivo exportado.
func (k BookKind) Title() string {
	if k == BookPurchases {
		return "LIBRO DE COMPRAS"
	}
	return "LIBRO DE VENTAS"
}

// BookEntry documento contabilizado (venta o compra) visto desde el libro fiscal.
type BookEntry struct {
	DocumentID        string
	DocumentNumber    string
	Date              time.Time
	CounterpartyTaxID string
	CounterpartyName  string
	Subtotal          decimal.Decimal
	Tax               decimal.Decimal
	Total             decimal.Decimal
}

// BookTotals conteo y sumas en moneda dura.
type BookTotals struct {
	Count    int
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

func (t BookTotals) add(e BookEntry) BookTotals {
	return BookTotals{
		Count:    t.Count + 1,
		Subtotal: t.Subtotal.Add(e.Subtotal),
		Tax:      t.Tax.Add(e.Tax),
		Total:    t.Total.Add(e.Total),
	}
}

// Plus suma dos totales.
func (t BookTotals) Plus(o BookTotals) BookTotals {
	return BookTotals{
		Count:    t.Count + o.Count,
		Subtotal: t.Subtotal.Add(o.Subtotal),
		Tax:      t.Tax.Add(o.Tax),
		Total:    t.Total.Add(o.Total),
	}
}

// CounterpartyGroup totales de un cliente o proveedor, por RIF.
type CounterpartyGroup struct {
	TaxID  string
	Name   string
	Totals BookTotals
}

// Book resultado de agregar un periodo [Start, End).
type Book struct {
	Kind   BookKind
	Start  time.Time
	End    time.Time
	Totals BookTotals
	Groups []CounterpartyGroup
	Lines  []BookEntry
}

// LocalDate lleva t a la zona horaria del periodo: un documento de las 21:00 en
// Caracas del último día del mes pertenece a ese mes aunque en UTC ya sea el siguiente.
func (b *Book) LocalDate(t time.Time) time.Time {
	return t.In(b.Start.Location())
}

// AggregateBook filtra las entradas por fecha dentro de [start, end) y calcula totales
// y agrupación por contraparte. Es puro: no modifica entries.
func AggregateBook(kind BookKind, start, end time.Time, entries []BookEntry) *Book {
	b := &Book{Kind: kind, Start: start, End: end}
	for _, e := range entries {
		if e.Date.Before(start) || !e.Date.Before(end) {
			continue
		}
		b.Lines = append(b.Lines, e)
	}
	b.finish()
	return b
}

// MergeBooks combina libros del mismo tipo de periodos contiguos o del mismo periodo
// calculados por partes. El resultado es igual a agregar todas las entradas de una vez.
func MergeBooks(kind BookKind, start, end time.Time, books ...*Book) *Book {
	b := &Book{Kind: kind, Start: start, End: end}
	for _, part := range books {
		if part == nil {
			continue
		}
		for _, e := range part.Lines {
			if e.Date.Before(start) || !e.Date.Before(end) {
				continue
			}
			b.Lines = append(b.Lines, e)
		}
	}
	b.finish()
	return b
}

func (b *Book) finish() {
	sort.SliceStable(b.Lines, func(i, j int) bool {
		if !b.Lines[i].Date.Equal(b.Lines[j].Date) {
			return b.Lines[i].Date.Before(b.Lines[j].Date)
		}
		return b.Lines[i].DocumentNumber < b.Lines[j].DocumentNumber
	})

	groups := make(map[string]*CounterpartyGroup)
	b.Totals = BookTotals{}
	for _, e := range b.Lines {
		b.Totals = b.Totals.add(e)
		g, ok := groups[e.CounterpartyTaxID]
		if !ok {
			g = &CounterpartyGroup{TaxID: e.CounterpartyTaxID, Name: e.CounterpartyName}
			groups[e.CounterpartyTaxID] = g
		}
		g.Totals = g.Totals.add(e)
	}

	b.Groups = make([]CounterpartyGroup, 0, len(groups))
	for _, g := range groups {
		b.Groups = append(b.Groups, *g)
	}
	sort.Slice(b.Groups, func(i, j int) bool { return b.Groups[i].TaxID < b.Groups[j].TaxID })
}

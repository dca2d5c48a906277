package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain/fiscal"
)

// FiscalBookRepository lectura de documentos contabilizados para los libros fiscales.
// Devuelve entradas con fecha en [from, to) ya unidas con el RIF y nombre de la contraparte.
type FiscalBookRepository interface {
	SalesEntries(ctx context.Context, companyID string, from, to time.Time) ([]fiscal.BookEntry, error)
	PurchaseEntries(ctx context.Context, companyID string, from, to time.Time) ([]fiscal.BookEntry, error)
}

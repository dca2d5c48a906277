package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain/fiscal"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/repository"
)

var _ repository.FiscalBookRepository = (*FiscalBookRepo)(nil)

// FiscalBookRepo lectura de ventas y compras del periodo para los libros.
type FiscalBookRepo struct {
	q Querier
}

// NewFiscalBookRepository construye el adaptador.
func NewFiscalBookRepository(q Querier) *FiscalBookRepo {
	return &FiscalBookRepo{q: q}
}

func (r *FiscalBookRepo) SalesEntries(ctx context.Context, companyID string, from, to time.Time) ([]fiscal.BookEntry, error) {
	query := `
		SELECT s.id, s.invoice_number, s.posted_at, c.tax_id, c.name, s.subtotal_hard, s.tax_hard, s.total_hard
		FROM sales s
		JOIN customers c ON c.id = s.customer_id
		WHERE s.company_id = $1 AND s.posted_at >= $2 AND s.posted_at < $3
		ORDER BY s.posted_at, s.invoice_number`
	return r.entries(ctx, "sales book", query, companyID, from, to)
}

func (r *FiscalBookRepo) PurchaseEntries(ctx context.Context, companyID string, from, to time.Time) ([]fiscal.BookEntry, error) {
	query := `
		SELECT p.id, p.invoice_number, p.purchased_at, v.tax_id, v.name, p.subtotal_hard, p.tax_hard, p.total_hard
		FROM purchases p
		JOIN vendors v ON v.id = p.vendor_id
		WHERE p.company_id = $1 AND p.purchased_at >= $2 AND p.purchased_at < $3
		ORDER BY p.purchased_at, p.invoice_number`
	return r.entries(ctx, "purchases book", query, companyID, from, to)
}

func (r *FiscalBookRepo) entries(ctx context.Context, op, query string, args ...any) ([]fiscal.BookEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()
	var out []fiscal.BookEntry
	for rows.Next() {
		var e fiscal.BookEntry
		if err := rows.Scan(&e.DocumentID, &e.DocumentNumber, &e.Date, &e.CounterpartyTaxID, &e.CounterpartyName,
			&e.Subtotal, &e.Tax, &e.Total); err != nil {
			return nil, fmt.Errorf("scan %s: %w", op, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `
	id, company_id, customer_id, user_id, payment_method_id, sequence_number, sale_number, invoice_number,
	posted_at, rate_currency, rate_to_local, rate_observed_at, rate_is_fallback,
	subtotal_hard, subtotal_local, tax_hard, tax_local, total_hard, total_local, tax_rate_percent,
	payment_status, lifecycle_status, notes`

// SaleRepo implementación de SaleRepository (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la cabecera y las líneas en un solo batch.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	b := &pgx.Batch{}
	b.Queue(`INSERT INTO sales (`+saleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		sale.ID, sale.CompanyID, sale.CustomerID, sale.UserID, sale.PaymentMethodID,
		sale.SequenceNumber, sale.SaleNumber, sale.InvoiceNumber, sale.PostedAt,
		sale.Rate.Currency, sale.Rate.RateToLocal, sale.Rate.ObservedAt, sale.Rate.IsFallback,
		sale.SubtotalHard, sale.SubtotalLocal, sale.TaxHard, sale.TaxLocal, sale.TotalHard, sale.TotalLocal,
		sale.TaxRatePercent, sale.PaymentStatus, sale.LifecycleStatus, sale.Notes,
	)
	for _, it := range sale.Items {
		b.Queue(`
			INSERT INTO sale_items (id, sale_id, product_id, description, quantity,
				unit_price_hard, unit_price_local, line_subtotal_hard, line_subtotal_local,
				line_tax_hard, line_tax_local, line_total_hard, line_total_local)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			it.ID, sale.ID, it.ProductID, it.Description, it.Quantity,
			it.UnitPriceHard, it.UnitPriceLocal, it.LineSubtotalHard, it.LineSubtotalLocal,
			it.LineTaxHard, it.LineTaxLocal, it.LineTotalHard, it.LineTotalLocal,
		)
	}

	br := r.q.SendBatch(ctx, b)
	defer br.Close()
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("venta %s: %w", sale.SaleNumber, domain.ErrDuplicate)
			}
			return wrap("insert sale", err)
		}
	}
	return wrap("insert sale", br.Close())
}

func scanSale(row rowScanner) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.CustomerID, &s.UserID, &s.PaymentMethodID, &s.SequenceNumber,
		&s.SaleNumber, &s.InvoiceNumber, &s.PostedAt,
		&s.Rate.Currency, &s.Rate.RateToLocal, &s.Rate.ObservedAt, &s.Rate.IsFallback,
		&s.SubtotalHard, &s.SubtotalLocal, &s.TaxHard, &s.TaxLocal, &s.TotalHard, &s.TotalLocal,
		&s.TaxRatePercent, &s.PaymentStatus, &s.LifecycleStatus, &s.Notes,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID obtiene la venta con sus líneas.
func (r *SaleRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id = $1 AND company_id = $2`, id, companyID))
	if err != nil {
		return nil, wrap("get sale", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, description, quantity,
			unit_price_hard, unit_price_local, line_subtotal_hard, line_subtotal_local,
			line_tax_hard, line_tax_local, line_total_hard, line_total_local
		FROM sale_items WHERE sale_id = $1 ORDER BY product_id`, s.ID)
	if err != nil {
		return nil, wrap("list sale items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SaleLineItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Description, &it.Quantity,
			&it.UnitPriceHard, &it.UnitPriceLocal, &it.LineSubtotalHard, &it.LineSubtotalLocal,
			&it.LineTaxHard, &it.LineTaxLocal, &it.LineTotalHard, &it.LineTotalLocal); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		s.Items = append(s.Items, &it)
	}
	return s, rows.Err()
}

// ListByCompany lista cabeceras con paginación, más recientes primero.
func (r *SaleRepo) ListByCompany(ctx context.Context, companyID string, from, to time.Time, limit, offset int) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + `
		FROM sales
		WHERE company_id = $1 AND posted_at >= $2 AND posted_at < $3
		ORDER BY posted_at DESC, sequence_number DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, companyID, from, to, limit, offset)
	if err != nil {
		return nil, wrap("list sales", err)
	}
	defer rows.Close()
	list := []*entity.Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

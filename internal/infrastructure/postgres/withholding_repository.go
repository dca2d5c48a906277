package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/repository"
)

var _ repository.WithholdingRepository = (*WithholdingRepo)(nil)

// Constraint único (sale_id, kind) de la migración inicial.
const withholdingPerSaleConstraint = "withholdings_sale_kind_key"

const withholdingColumns = `
	id, company_id, sale_id, customer_id, withholding_number, kind, rate_percent,
	base_amount_hard, withholding_amount_hard, base_amount_local, withholding_amount_local,
	rate_to_local, withholding_date, service_type, created_at`

// WithholdingRepo implementación de WithholdingRepository (usable con pool o tx).
type WithholdingRepo struct {
	q Querier
}

// NewWithholdingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWithholdingRepository(q Querier) *WithholdingRepo {
	return &WithholdingRepo{q: q}
}

// Create persiste el comprobante. La unicidad por (venta, tipo) la garantiza la BD.
func (r *WithholdingRepo) Create(ctx context.Context, w *entity.Withholding) error {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	_, err := r.q.Exec(ctx, `INSERT INTO withholdings (`+withholdingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		w.ID, w.CompanyID, w.SaleID, w.CustomerID, w.WithholdingNumber, w.Kind, w.RatePercent,
		w.BaseAmountHard, w.WithholdingAmountHard, w.BaseAmountLocal, w.WithholdingAmountLocal,
		w.RateToLocal, w.WithholdingDate, w.ServiceType, w.CreatedAt,
	)
	switch {
	case err == nil:
		return nil
	case isUniqueConstraint(err, withholdingPerSaleConstraint):
		return domain.ErrAlreadyWithheld
	case isUniqueViolation(err):
		return fmt.Errorf("comprobante %s: %w", w.WithholdingNumber, domain.ErrDuplicate)
	}
	return wrap("insert withholding", err)
}

func scanWithholding(row rowScanner) (*entity.Withholding, error) {
	var w entity.Withholding
	err := row.Scan(&w.ID, &w.CompanyID, &w.SaleID, &w.CustomerID, &w.WithholdingNumber, &w.Kind, &w.RatePercent,
		&w.BaseAmountHard, &w.WithholdingAmountHard, &w.BaseAmountLocal, &w.WithholdingAmountLocal,
		&w.RateToLocal, &w.WithholdingDate, &w.ServiceType, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithholdingRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Withholding, error) {
	w, err := scanWithholding(r.q.QueryRow(ctx,
		`SELECT `+withholdingColumns+` FROM withholdings WHERE id = $1 AND company_id = $2`, id, companyID))
	if err != nil {
		return nil, wrap("get withholding", err)
	}
	return w, nil
}

func (r *WithholdingRepo) ListBySale(ctx context.Context, companyID, saleID string) ([]*entity.Withholding, error) {
	return r.list(ctx, `SELECT `+withholdingColumns+`
		FROM withholdings WHERE company_id = $1 AND sale_id = $2
		ORDER BY kind, withholding_number`, companyID, saleID)
}

func (r *WithholdingRepo) ListByCompanyAndKind(ctx context.Context, companyID, kind string, from, to time.Time) ([]*entity.Withholding, error) {
	return r.list(ctx, `SELECT `+withholdingColumns+`
		FROM withholdings
		WHERE company_id = $1 AND kind = $2 AND withholding_date >= $3 AND withholding_date < $4
		ORDER BY withholding_number`, companyID, kind, from, to)
}

func (r *WithholdingRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Withholding, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list withholdings", err)
	}
	defer rows.Close()
	var list []*entity.Withholding
	for rows.Next() {
		w, err := scanWithholding(rows)
		if err != nil {
			return nil, fmt.Errorf("scan withholding: %w", err)
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, company_id, sku, name, price_hard, price_local, stock_quantity, min_stock_threshold, is_active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.PriceHard, &p.PriceLocal,
		&p.StockQuantity, &p.MinStockThreshold, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID obtiene un producto de la empresa.
func (r *ProductRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND company_id = $2`, id, companyID))
	if err != nil {
		return nil, wrap("get product", err)
	}
	return p, nil
}

// LockForSale obtiene los productos y bloquea sus filas (SELECT FOR UPDATE) en orden de id.
func (r *ProductRepo) LockForSale(ctx context.Context, companyID string, ids []string) (map[string]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE company_id = $1 AND id::text = ANY($2)
		ORDER BY id
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, companyID, ids)
	if err != nil {
		return nil, wrap("lock products", err)
	}
	defer rows.Close()

	out := make(map[string]*entity.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("lock products", err)
	}
	return out, nil
}

// DecrementStock descuenta stock solo si alcanza. El UPDATE condicional es la última
// barrera aunque la fila ya esté bloqueada.
func (r *ProductRepo) DecrementStock(ctx context.Context, productID string, qty int64) error {
	if qty <= 0 {
		return domain.Invalid("cantidad inválida para el producto %s", productID)
	}
	var remaining int64
	err := r.q.QueryRow(ctx, `
		UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE id = $1 AND stock_quantity >= $2
		RETURNING stock_quantity`,
		productID, qty,
	).Scan(&remaining)
	if err == nil {
		return nil
	}
	if !isNoRows(err) {
		return wrap("decrement stock", err)
	}

	var available int64
	if err := r.q.QueryRow(ctx, `SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&available); err != nil {
		return wrap("read stock", err)
	}
	return &domain.InsufficientStockError{ProductID: productID, Available: available, Requested: qty}
}

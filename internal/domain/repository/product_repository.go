package repository

import (
	"context"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	GetByID(ctx context.Context, companyID, id string) (*entity.Product, error)

	// LockForSale bloquea las filas de los productos (SELECT ... FOR UPDATE) en orden
	// ascendente de id, para que dos ventas concurrentes nunca se bloqueen en orden inverso.
	// Solo tiene sentido dentro de una transacción. Los ids ausentes o de otra empresa no
	// aparecen en el mapa devuelto.
	LockForSale(ctx context.Context, companyID string, ids []string) (map[string]*entity.Product, error)

	// DecrementStock descuenta qty de forma condicional (stock >= qty).
	// Si el stock no alcanza devuelve *domain.InsufficientStockError.
	DecrementStock(ctx context.Context, productID string, qty int64) error
}

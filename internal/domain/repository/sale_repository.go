package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para Sale y sus líneas.
type SaleRepository interface {
	// Create inserta la cabecera y todas las líneas. Un número de venta repetido
	// para la empresa devuelve domain.ErrDuplicate.
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Sale, error)
	// ListByCompany ventas con PostedAt en [from, to), más recientes primero, sin líneas.
	ListByCompany(ctx context.Context, companyID string, from, to time.Time, limit, offset int) ([]*entity.Sale, error)
}

package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
)

// WithholdingRepository define el puerto de persistencia para comprobantes de retención.
type WithholdingRepository interface {
	// Create devuelve domain.ErrAlreadyWithheld si la venta ya tiene una retención de ese tipo.
	Create(ctx context.Context, w *entity.Withholding) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Withholding, error)
	ListBySale(ctx context.Context, companyID, saleID string) ([]*entity.Withholding, error)
	// ListByCompanyAndKind comprobantes con fecha en [from, to), en orden de número.
	ListByCompanyAndKind(ctx context.Context, companyID, kind string, from, to time.Time) ([]*entity.Withholding, error)
}

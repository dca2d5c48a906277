package repository

import (
	"context"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
)

// PaymentMethodRepository solo lectura: los métodos de pago se administran fuera del motor.
type PaymentMethodRepository interface {
	GetByID(ctx context.Context, companyID, id string) (*entity.PaymentMethod, error)
}

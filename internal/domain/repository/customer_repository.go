package repository

import (
	"context"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
// Un cliente de otra empresa se reporta como domain.ErrNotFound.
type CustomerRepository interface {
	GetByID(ctx context.Context, companyID, id string) (*entity.Customer, error)
}

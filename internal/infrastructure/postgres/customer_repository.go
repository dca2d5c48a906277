package postgres

import (
	"context"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// GetByID obtiene un cliente de la empresa. Clientes de otra empresa no existen para ella.
func (r *CustomerRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Customer, error) {
	query := `
		SELECT id, company_id, tax_id, name, address, is_special_taxpayer, created_at, updated_at
		FROM customers WHERE id = $1 AND company_id = $2`
	var c entity.Customer
	err := r.q.QueryRow(ctx, query, id, companyID).Scan(
		&c.ID, &c.CompanyID, &c.TaxID, &c.Name, &c.Address, &c.IsSpecialTaxpayer, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, wrap("get customer", err)
	}
	return &c, nil
}

var _ repository.PaymentMethodRepository = (*PaymentMethodRepo)(nil)

// PaymentMethodRepo lectura de métodos de pago.
type PaymentMethodRepo struct {
	q Querier
}

// NewPaymentMethodRepository construye el adaptador.
func NewPaymentMethodRepository(q Querier) *PaymentMethodRepo {
	return &PaymentMethodRepo{q: q}
}

func (r *PaymentMethodRepo) GetByID(ctx context.Context, companyID, id string) (*entity.PaymentMethod, error) {
	var pm entity.PaymentMethod
	err := r.q.QueryRow(ctx,
		`SELECT id, company_id, name, currency, is_active FROM payment_methods WHERE id = $1 AND company_id = $2`,
		id, companyID,
	).Scan(&pm.ID, &pm.CompanyID, &pm.Name, &pm.Currency, &pm.IsActive)
	if err != nil {
		return nil, wrap("get payment method", err)
	}
	return &pm, nil
}

package entity

// PaymentMethod forma de pago configurada por la empresa (efectivo, punto de venta, pasarela).
type PaymentMethod struct {
	ID        string
	CompanyID string
	Name      string
	Currency  string
	IsActive  bool
}

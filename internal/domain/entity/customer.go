package entity

import "time"

// Customer representa un cliente de la empresa.
// IsSpecialTaxpayer (contribuyente especial) habilita la retención de IVA sobre sus compras.
type Customer struct {
	ID                string
	CompanyID         string
	TaxID             string // RIF o cédula
	Name              string
	Address           string
	IsSpecialTaxpayer bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Vendor proveedor: contraparte de las compras que alimentan el libro de compras.
type Vendor struct {
	ID        string
	CompanyID string
	TaxID     string
	Name      string
	CreatedAt time.Time
}

package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
)

// Identificadores fijos del conjunto de demostración.
const (
	DemoCompanyID        = "00000000-0000-0000-0000-0000000000c1"
	DemoCustomerID       = "00000000-0000-0000-0000-0000000000a1"
	DemoSpecialCustomer  = "00000000-0000-0000-0000-0000000000a2"
	DemoPaymentMethodID  = "00000000-0000-0000-0000-0000000000b1"
	DemoVendorID         = "00000000-0000-0000-0000-0000000000d1"
	DemoProductCoffeeID  = "00000000-0000-0000-0000-0000000000e1"
	DemoProductLaptopID  = "00000000-0000-0000-0000-0000000000e2"
	DemoProductServiceID = "00000000-0000-0000-0000-0000000000e3"
)

// NewSeeded crea un store con una empresa, clientes, productos y una tasa BCV
// para levantar la API sin base de datos.
func NewSeeded(now time.Time) *Store {
	s := NewStore()
	s.AddCompany(entity.Company{
		ID:                 DemoCompanyID,
		Name:               "Distribuidora Demo C.A.",
		TaxID:              "J-40000000-1",
		Address:            "Av. Principal, Caracas",
		IsWithholdingAgent: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	s.AddCustomer(entity.Customer{ID: DemoCustomerID, CompanyID: DemoCompanyID, TaxID: "V-12345678", Name: "Cliente Ordinario", CreatedAt: now, UpdatedAt: now})
	s.AddCustomer(entity.Customer{ID: DemoSpecialCustomer, CompanyID: DemoCompanyID, TaxID: "J-30000000-5", Name: "Contribuyente Especial S.A.", IsSpecialTaxpayer: true, CreatedAt: now, UpdatedAt: now})
	s.AddVendor(entity.Vendor{ID: DemoVendorID, CompanyID: DemoCompanyID, TaxID: "J-20000000-3", Name: "Proveedor Mayorista C.A.", CreatedAt: now})
	s.AddPaymentMethod(entity.PaymentMethod{ID: DemoPaymentMethodID, CompanyID: DemoCompanyID, Name: "Efectivo USD", Currency: "USD", IsActive: true})

	rate := decimal.RequireFromString("36.50")
	for _, p := range []struct {
		id, sku, name string
		price         string
		stock, min    int64
	}{
		{DemoProductCoffeeID, "CAF-500", "Café molido 500g", "4.50", 200, 20},
		{DemoProductLaptopID, "LAP-14", "Laptop 14 pulgadas", "450.00", 15, 2},
		{DemoProductServiceID, "SRV-INST", "Servicio de instalación", "80.00", 1000, 0},
	} {
		price := decimal.RequireFromString(p.price)
		s.AddProduct(entity.Product{
			ID:                p.id,
			CompanyID:         DemoCompanyID,
			SKU:               p.sku,
			Name:              p.name,
			PriceHard:         price,
			PriceLocal:        price.Mul(rate).Round(2),
			StockQuantity:     p.stock,
			MinStockThreshold: p.min,
			IsActive:          true,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	s.AddRate(entity.ExchangeRate{ID: "rate-seed", Currency: "USD", RateToLocal: rate, ObservedAt: now.Add(-time.Hour), Source: "BCV"})
	s.AddPurchase(entity.Purchase{
		ID:            "purchase-seed",
		CompanyID:     DemoCompanyID,
		VendorID:      DemoVendorID,
		InvoiceNumber: "00012345",
		ControlNumber: "00-0012345",
		PurchasedAt:   now.Add(-24 * time.Hour),
		SubtotalHard:  decimal.RequireFromString("1000.00"),
		TaxHard:       decimal.RequireFromString("160.00"),
		TotalHard:     decimal.RequireFromString("1160.00"),
	})
	return s
}

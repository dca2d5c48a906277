// Package memory implementa los repositorios en memoria para desarrollo y tests.
// Una transacción toma el mutex del store, trabaja sobre una copia del estado y la
// publica solo si fn termina sin error; así el rollback es descartar la copia.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/repository"
)

type seqKey struct {
	companyID string
	class     string
}

type state struct {
	companies      map[string]entity.Company
	customers      map[string]entity.Customer
	vendors        map[string]entity.Vendor
	paymentMethods map[string]entity.PaymentMethod
	products       map[string]entity.Product
	rates          []entity.ExchangeRate
	purchases      []entity.Purchase
	sales          map[string]*entity.Sale
	sequences      map[seqKey]int64
	withholdings   map[string]entity.Withholding
}

func newState() *state {
	return &state{
		companies:      make(map[string]entity.Company),
		customers:      make(map[string]entity.Customer),
		vendors:        make(map[string]entity.Vendor),
		paymentMethods: make(map[string]entity.PaymentMethod),
		products:       make(map[string]entity.Product),
		sales:          make(map[string]*entity.Sale),
		sequences:      make(map[seqKey]int64),
		withholdings:   make(map[string]entity.Withholding),
	}
}

// clone copia lo que una transacción puede modificar. Las ventas ya confirmadas son
// inmutables, por eso basta con copiar el mapa y no cada venta.
func (s *state) clone() *state {
	c := *s
	c.products = make(map[string]entity.Product, len(s.products))
	for k, v := range s.products {
		c.products[k] = v
	}
	c.sales = make(map[string]*entity.Sale, len(s.sales))
	for k, v := range s.sales {
		c.sales[k] = v
	}
	c.sequences = make(map[seqKey]int64, len(s.sequences))
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	c.withholdings = make(map[string]entity.Withholding, len(s.withholdings))
	for k, v := range s.withholdings {
		c.withholdings[k] = v
	}
	return &c
}

// Store base de datos en memoria segura para uso concurrente.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// with ejecuta fn sobre el estado de la transacción o, fuera de ella, bajo el mutex.
func (s *Store) with(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func (s *Store) runTx(ctx context.Context, fn func(tx *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	staged := s.st.clone()
	if err := fn(staged); err != nil {
		return err
	}
	s.st = staged
	return nil
}

// RunSale ejecuta fn con repos atados a una transacción en memoria.
func (s *Store) RunSale(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	return s.runTx(ctx, func(tx *state) error {
		return fn(&ProductRepo{store: s, tx: tx}, &SaleRepo{store: s, tx: tx}, &SequenceRepo{store: s, tx: tx})
	})
}

// RunWithholding ejecuta fn con repos de retenciones y secuencias en una transacción.
func (s *Store) RunWithholding(ctx context.Context, fn func(
	withholdingRepo repository.WithholdingRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	return s.runTx(ctx, func(tx *state) error {
		return fn(&WithholdingRepo{store: s, tx: tx}, &SequenceRepo{store: s, tx: tx})
	})
}

// Repos fuera de transacción.
func (s *Store) Companies() *CompanyRepo             { return &CompanyRepo{store: s} }
func (s *Store) Customers() *CustomerRepo           { return &CustomerRepo{store: s} }
func (s *Store) PaymentMethods() *PaymentMethodRepo { return &PaymentMethodRepo{store: s} }
func (s *Store) Products() *ProductRepo             { return &ProductRepo{store: s} }
func (s *Store) ExchangeRates() *ExchangeRateRepo   { return &ExchangeRateRepo{store: s} }
func (s *Store) Sales() *SaleRepo                   { return &SaleRepo{store: s} }
func (s *Store) Sequences() *SequenceRepo           { return &SequenceRepo{store: s} }
func (s *Store) Withholdings() *WithholdingRepo     { return &WithholdingRepo{store: s} }
func (s *Store) FiscalBooks() *FiscalBookRepo       { return &FiscalBookRepo{store: s} }

// Carga de datos maestros (seeds y tests).

func (s *Store) AddCompany(c entity.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.companies[c.ID] = c
}

func (s *Store) AddCustomer(c entity.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.customers[c.ID] = c
}

func (s *Store) AddVendor(v entity.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.vendors[v.ID] = v
}

func (s *Store) AddPaymentMethod(pm entity.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.paymentMethods[pm.ID] = pm
}

func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[p.ID] = p
}

func (s *Store) AddRate(r entity.ExchangeRate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.rates = append(s.st.rates, r)
}

func (s *Store) AddPurchase(p entity.Purchase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.purchases = append(s.st.purchases, p)
}

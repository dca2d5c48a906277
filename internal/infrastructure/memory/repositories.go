package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/fiscal"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/repository"
)

var (
	_ repository.CompanyRepository       = (*CompanyRepo)(nil)
	_ repository.CustomerRepository      = (*CustomerRepo)(nil)
	_ repository.PaymentMethodRepository = (*PaymentMethodRepo)(nil)
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.ExchangeRateRepository  = (*ExchangeRateRepo)(nil)
	_ repository.SaleRepository          = (*SaleRepo)(nil)
	_ repository.SequenceRepository      = (*SequenceRepo)(nil)
	_ repository.WithholdingRepository   = (*WithholdingRepo)(nil)
	_ repository.FiscalBookRepository    = (*FiscalBookRepo)(nil)
)

// ─── Company ──────────────────────────────────────────────────────────────────

type CompanyRepo struct {
	store *Store
}

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	var out *entity.Company
	err := r.store.with(nil, func(st *state) error {
		c, ok := st.companies[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

// ─── Customer ─────────────────────────────────────────────────────────────────

type CustomerRepo struct {
	store *Store
}

func (r *CustomerRepo) GetByID(_ context.Context, companyID, id string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.store.with(nil, func(st *state) error {
		c, ok := st.customers[id]
		if !ok || c.CompanyID != companyID {
			return domain.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

// ─── PaymentMethod ────────────────────────────────────────────────────────────

type PaymentMethodRepo struct {
	store *Store
}

func (r *PaymentMethodRepo) GetByID(_ context.Context, companyID, id string) (*entity.PaymentMethod, error) {
	var out *entity.PaymentMethod
	err := r.store.with(nil, func(st *state) error {
		pm, ok := st.paymentMethods[id]
		if !ok || pm.CompanyID != companyID {
			return domain.ErrNotFound
		}
		out = &pm
		return nil
	})
	return out, err
}

// ─── Product ──────────────────────────────────────────────────────────────────

type ProductRepo struct {
	store *Store
	tx    *state
}

func (r *ProductRepo) GetByID(_ context.Context, companyID, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.store.with(r.tx, func(st *state) error {
		p, ok := st.products[id]
		if !ok || p.CompanyID != companyID {
			return domain.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

// LockForSale en memoria el bloqueo ya lo da el mutex de la transacción.
func (r *ProductRepo) LockForSale(_ context.Context, companyID string, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	err := r.store.with(r.tx, func(st *state) error {
		for _, id := range ids {
			p, ok := st.products[id]
			if !ok || p.CompanyID != companyID {
				continue
			}
			out[id] = &p
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) DecrementStock(_ context.Context, productID string, qty int64) error {
	if qty <= 0 {
		return domain.Invalid("cantidad inválida para el producto %s", productID)
	}
	return r.store.with(r.tx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		if p.StockQuantity < qty {
			return &domain.InsufficientStockError{ProductID: productID, Available: p.StockQuantity, Requested: qty}
		}
		p.StockQuantity -= qty
		p.UpdatedAt = time.Now().UTC()
		st.products[productID] = p
		return nil
	})
}

// ─── ExchangeRate ─────────────────────────────────────────────────────────────

type ExchangeRateRepo struct {
	store *Store
}

func (r *ExchangeRateRepo) Latest(_ context.Context, currency string, asOf time.Time) (*entity.ExchangeRate, error) {
	var out *entity.ExchangeRate
	err := r.store.with(nil, func(st *state) error {
		for i := range st.rates {
			rate := st.rates[i]
			if rate.Currency != currency || rate.ObservedAt.After(asOf) {
				continue
			}
			if out == nil || rate.ObservedAt.After(out.ObservedAt) {
				out = &rate
			}
		}
		if out == nil {
			return domain.ErrNotFound
		}
		return nil
	})
	return out, err
}

// ─── Sale ─────────────────────────────────────────────────────────────────────

type SaleRepo struct {
	store *Store
	tx    *state
}

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	return r.store.with(r.tx, func(st *state) error {
		if _, ok := st.sales[sale.ID]; ok {
			return fmt.Errorf("venta %s: %w", sale.ID, domain.ErrDuplicate)
		}
		for _, s := range st.sales {
			if s.CompanyID == sale.CompanyID && s.SaleNumber == sale.SaleNumber {
				return fmt.Errorf("número %s: %w", sale.SaleNumber, domain.ErrDuplicate)
			}
		}
		st.sales[sale.ID] = copySale(sale, true)
		return nil
	})
}

func (r *SaleRepo) GetByID(_ context.Context, companyID, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.store.with(r.tx, func(st *state) error {
		s, ok := st.sales[id]
		if !ok || s.CompanyID != companyID {
			return domain.ErrNotFound
		}
		out = copySale(s, true)
		return nil
	})
	return out, err
}

func (r *SaleRepo) ListByCompany(_ context.Context, companyID string, from, to time.Time, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := r.store.with(r.tx, func(st *state) error {
		for _, s := range st.sales {
			if s.CompanyID != companyID || s.PostedAt.Before(from) || !s.PostedAt.Before(to) {
				continue
			}
			out = append(out, copySale(s, false))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PostedAt.Equal(out[j].PostedAt) {
			return out[i].PostedAt.After(out[j].PostedAt)
		}
		return out[i].SequenceNumber > out[j].SequenceNumber
	})
	if offset >= len(out) {
		return []*entity.Sale{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func copySale(s *entity.Sale, withItems bool) *entity.Sale {
	c := *s
	c.Items = nil
	if withItems {
		c.Items = make([]*entity.SaleLineItem, len(s.Items))
		for i, it := range s.Items {
			item := *it
			c.Items[i] = &item
		}
	}
	return &c
}

// ─── Sequence ─────────────────────────────────────────────────────────────────

type SequenceRepo struct {
	store *Store
	tx    *state
}

func (r *SequenceRepo) Next(_ context.Context, companyID, documentClass string) (int64, error) {
	var n int64
	err := r.store.with(r.tx, func(st *state) error {
		k := seqKey{companyID: companyID, class: documentClass}
		st.sequences[k]++
		n = st.sequences[k]
		return nil
	})
	return n, err
}

// ─── Withholding ──────────────────────────────────────────────────────────────

type WithholdingRepo struct {
	store *Store
	tx    *state
}

func (r *WithholdingRepo) Create(_ context.Context, w *entity.Withholding) error {
	return r.store.with(r.tx, func(st *state) error {
		for _, existing := range st.withholdings {
			if existing.SaleID == w.SaleID && existing.Kind == w.Kind {
				return domain.ErrAlreadyWithheld
			}
			if existing.CompanyID == w.CompanyID && existing.Kind == w.Kind && existing.WithholdingNumber == w.WithholdingNumber {
				return fmt.Errorf("comprobante %s: %w", w.WithholdingNumber, domain.ErrDuplicate)
			}
		}
		if w.CreatedAt.IsZero() {
			w.CreatedAt = time.Now().UTC()
		}
		st.withholdings[w.ID] = *w
		return nil
	})
}

func (r *WithholdingRepo) GetByID(_ context.Context, companyID, id string) (*entity.Withholding, error) {
	var out *entity.Withholding
	err := r.store.with(r.tx, func(st *state) error {
		w, ok := st.withholdings[id]
		if !ok || w.CompanyID != companyID {
			return domain.ErrNotFound
		}
		out = &w
		return nil
	})
	return out, err
}

func (r *WithholdingRepo) ListBySale(_ context.Context, companyID, saleID string) ([]*entity.Withholding, error) {
	return r.list(func(w entity.Withholding) bool {
		return w.CompanyID == companyID && w.SaleID == saleID
	})
}

func (r *WithholdingRepo) ListByCompanyAndKind(_ context.Context, companyID, kind string, from, to time.Time) ([]*entity.Withholding, error) {
	return r.list(func(w entity.Withholding) bool {
		return w.CompanyID == companyID && w.Kind == kind &&
			!w.WithholdingDate.Before(from) && w.WithholdingDate.Before(to)
	})
}

func (r *WithholdingRepo) list(match func(entity.Withholding) bool) ([]*entity.Withholding, error) {
	var out []*entity.Withholding
	err := r.store.with(r.tx, func(st *state) error {
		for _, w := range st.withholdings {
			if match(w) {
				out = append(out, &w)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].WithholdingNumber < out[j].WithholdingNumber
	})
	return out, err
}

// ─── FiscalBook ───────────────────────────────────────────────────────────────

type FiscalBookRepo struct {
	store *Store
}

func (r *FiscalBookRepo) SalesEntries(_ context.Context, companyID string, from, to time.Time) ([]fiscal.BookEntry, error) {
	var out []fiscal.BookEntry
	err := r.store.with(nil, func(st *state) error {
		for _, s := range st.sales {
			if s.CompanyID != companyID || s.PostedAt.Before(from) || !s.PostedAt.Before(to) {
				continue
			}
			c := st.customers[s.CustomerID]
			out = append(out, fiscal.BookEntry{
				DocumentID:        s.ID,
				DocumentNumber:    s.InvoiceNumber,
				Date:              s.PostedAt,
				CounterpartyTaxID: c.TaxID,
				CounterpartyName:  c.Name,
				Subtotal:          s.SubtotalHard,
				Tax:               s.TaxHard,
				Total:             s.TotalHard,
			})
		}
		return nil
	})
	return out, err
}

func (r *FiscalBookRepo) PurchaseEntries(_ context.Context, companyID string, from, to time.Time) ([]fiscal.BookEntry, error) {
	var out []fiscal.BookEntry
	err := r.store.with(nil, func(st *state) error {
		for _, p := range st.purchases {
			if p.CompanyID != companyID || p.PurchasedAt.Before(from) || !p.PurchasedAt.Before(to) {
				continue
			}
			v := st.vendors[p.VendorID]
			out = append(out, fiscal.BookEntry{
				DocumentID:        p.ID,
				DocumentNumber:    p.InvoiceNumber,
				Date:              p.PurchasedAt,
				CounterpartyTaxID: v.TaxID,
				CounterpartyName:  v.Name,
				Subtotal:          p.SubtotalHard,
				Tax:               p.TaxHard,
				Total:             p.TotalHard,
			})
		}
		return nil
	})
	return out, err
}

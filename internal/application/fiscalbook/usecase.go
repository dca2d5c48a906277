// Package fiscalbook arma los libros de compras y ventas de un periodo.
// Solo lee documentos ya contabilizados.
package fiscalbook

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/ventas-fiscal-api/internal/application/dto"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/fiscal"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/repository"
	"github.com/jhoicas/ventas-fiscal-api/pkg/logger"
)

const dateLayout = "2006-01-02"

// UseCase consultas y exportación de libros fiscales.
type UseCase struct {
	bookRepo        repository.FiscalBookRepository
	withholdingRepo repository.WithholdingRepository
	log             *logger.Logger
	now             func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(bookRepo repository.FiscalBookRepository, withholdingRepo repository.WithholdingRepository, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		bookRepo:        bookRepo,
		withholdingRepo: withholdingRepo,
		log:             log.Component("fiscalbook"),
		now:             time.Now,
	}
}

// Book agrega el libro kind de la empresa en [from, to).
func (uc *UseCase) Book(ctx context.Context, companyID, kind string, from, to time.Time) (*fiscal.Book, error) {
	bk, ok := fiscal.ParseBookKind(kind)
	if !ok {
		return nil, domain.Invalid("libro desconocido %q", kind)
	}
	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}

	var (
		entries []fiscal.BookEntry
		err     error
	)
	if bk == fiscal.BookPurchases {
		entries, err = uc.bookRepo.PurchaseEntries(ctx, companyID, from, to)
	} else {
		entries, err = uc.bookRepo.SalesEntries(ctx, companyID, from, to)
	}
	if err != nil {
		return nil, err
	}
	return fiscal.AggregateBook(bk, from, to, entries), nil
}

// Aggregate devuelve el libro como DTO.
func (uc *UseCase) Aggregate(ctx context.Context, companyID, kind string, from, to time.Time) (*dto.FiscalBookResponse, error) {
	b, err := uc.Book(ctx, companyID, kind, from, to)
	if err != nil {
		return nil, err
	}
	return toBookResponse(b), nil
}

// Export genera el archivo de texto de ancho fijo del libro.
func (uc *UseCase) Export(ctx context.Context, companyID, kind string, from, to time.Time, charset string) ([]byte, string, error) {
	b, err := uc.Book(ctx, companyID, kind, from, to)
	if err != nil {
		return nil, "", err
	}
	out, err := fiscal.EncodeBook(b, uc.now(), charset)
	if err != nil {
		return nil, "", err
	}
	uc.log.Info().
		Str("company_id", companyID).
		Str("kind", string(b.Kind)).
		Int("documents", b.Totals.Count).
		Msg("libro fiscal exportado")
	name := fmt.Sprintf("libro-%s-%s-%s.txt", b.Kind, from.Format("20060102"), to.AddDate(0, 0, -1).Format("20060102"))
	return out, name, nil
}

// Summary calcula ambos libros y las retenciones del periodo en paralelo.
func (uc *UseCase) Summary(ctx context.Context, companyID string, from, to time.Time) (*dto.FiscalSummaryResponse, error) {
	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}

	var (
		salesBook, purchasesBook *fiscal.Book
		withheld                 = map[string][]*entity.Withholding{}
		kinds                    = []string{entity.WithholdingKindIVA, entity.WithholdingKindISLR, entity.WithholdingKindMunicipal}
		results                  = make([][]*entity.Withholding, len(kinds))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		salesBook, err = uc.Book(gctx, companyID, string(fiscal.BookSales), from, to)
		return err
	})
	g.Go(func() error {
		var err error
		purchasesBook, err = uc.Book(gctx, companyID, string(fiscal.BookPurchases), from, to)
		return err
	})
	for i, k := range kinds {
		g.Go(func() error {
			list, err := uc.withholdingRepo.ListByCompanyAndKind(gctx, companyID, k, from, to)
			results[i] = list
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, k := range kinds {
		withheld[k] = results[i]
	}

	out := &dto.FiscalSummaryResponse{
		From:              from.Format(dateLayout),
		To:                to.Format(dateLayout),
		Sales:             toTotals(salesBook.Totals),
		Purchases:         toTotals(purchasesBook.Totals),
		IVAPayable:        salesBook.Totals.Tax.Sub(purchasesBook.Totals.Tax),
		WithheldIVA:       sumWithheld(withheld[entity.WithholdingKindIVA]),
		WithheldISLR:      sumWithheld(withheld[entity.WithholdingKindISLR]),
		WithheldMunicipal: sumWithheld(withheld[entity.WithholdingKindMunicipal]),
	}
	for _, list := range withheld {
		out.WithholdingsCount += len(list)
	}
	return out, nil
}

func validatePeriod(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return domain.Invalid("el periodo requiere from y to")
	}
	if !from.Before(to) {
		return domain.Invalid("from debe ser anterior a to")
	}
	return nil
}

func sumWithheld(list []*entity.Withholding) decimal.Decimal {
	total := decimal.Zero
	for _, w := range list {
		total = total.Add(w.WithholdingAmountHard)
	}
	return total
}

func toTotals(t fiscal.BookTotals) dto.BookTotalsResponse {
	return dto.BookTotalsResponse{Count: t.Count, Subtotal: t.Subtotal, Tax: t.Tax, Total: t.Total}
}

func toBookResponse(b *fiscal.Book) *dto.FiscalBookResponse {
	out := &dto.FiscalBookResponse{
		Kind:   string(b.Kind),
		From:   b.Start.Format(dateLayout),
		To:     b.End.Format(dateLayout),
		Totals: toTotals(b.Totals),
		Groups: make([]dto.CounterpartyGroupResponse, 0, len(b.Groups)),
		Lines:  make([]dto.BookLineResponse, 0, len(b.Lines)),
	}
	for _, g := range b.Groups {
		out.Groups = append(out.Groups, dto.CounterpartyGroupResponse{TaxID: g.TaxID, Name: g.Name, Totals: toTotals(g.Totals)})
	}
	for _, l := range b.Lines {
		out.Lines = append(out.Lines, dto.BookLineResponse{
			DocumentID:        l.DocumentID,
			DocumentNumber:    l.DocumentNumber,
			Date:              b.LocalDate(l.Date).Format(dateLayout),
			CounterpartyTaxID: l.CounterpartyTaxID,
			CounterpartyName:  l.CounterpartyName,
			Subtotal:          l.Subtotal,
			Tax:               l.Tax,
			Total:             l.Total,
		})
	}
	return out
}

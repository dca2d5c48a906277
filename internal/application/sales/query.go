package sales

import (
	"context"
	"time"

	"github.com/jhoicas/ventas-fiscal-api/internal/application/dto"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
)

// GetSale devuelve la venta con sus líneas. Una venta de otra empresa es NotFound.
func (uc *PostSaleUseCase) GetSale(ctx context.Context, companyID, saleID string) (*dto.SaleResponse, error) {
	if saleID == "" {
		return nil, domain.Invalid("id de venta requerido")
	}
	sale, err := uc.saleRepo.GetByID(ctx, companyID, saleID)
	if err != nil {
		return nil, err
	}
	return ToSaleResponse(sale), nil
}

// ListSales ventas con fecha en [from, to). Un to cero significa "hasta ahora".
func (uc *PostSaleUseCase) ListSales(ctx context.Context, companyID string, from, to time.Time, page dto.PageRequest) (*dto.SaleListResponse, error) {
	page.DefaultPage()
	if to.IsZero() {
		to = uc.now().UTC().Add(time.Second)
	}
	if !from.Before(to) {
		return nil, domain.Invalid("el rango de fechas es vacío")
	}
	list, err := uc.saleRepo.ListByCompany(ctx, companyID, from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.SaleListResponse{
		Items: make([]dto.SaleResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, s := range list {
		out.Items = append(out.Items, *ToSaleResponse(s))
	}
	return out, nil
}

// ToSaleResponse mapea la entidad al DTO de respuesta.
func ToSaleResponse(s *entity.Sale) *dto.SaleResponse {
	out := &dto.SaleResponse{
		ID:              s.ID,
		CompanyID:       s.CompanyID,
		CustomerID:      s.CustomerID,
		UserID:          s.UserID,
		PaymentMethodID: s.PaymentMethodID,
		SaleNumber:      s.SaleNumber,
		InvoiceNumber:   s.InvoiceNumber,
		PostedAt:        s.PostedAt,
		Rate: dto.RateResponse{
			Currency:    s.Rate.Currency,
			RateToLocal: s.Rate.RateToLocal,
			ObservedAt:  s.Rate.ObservedAt,
			IsFallback:  s.Rate.IsFallback,
		},
		TaxRatePercent:  s.TaxRatePercent,
		SubtotalHard:    s.SubtotalHard,
		TaxHard:         s.TaxHard,
		TotalHard:       s.TotalHard,
		SubtotalLocal:   s.SubtotalLocal,
		TaxLocal:        s.TaxLocal,
		TotalLocal:      s.TotalLocal,
		PaymentStatus:   s.PaymentStatus,
		LifecycleStatus: s.LifecycleStatus,
		Notes:           s.Notes,
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, dto.SaleItemResponse{
			ID:             it.ID,
			ProductID:      it.ProductID,
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPriceHard:  it.UnitPriceHard,
			UnitPriceLocal: it.UnitPriceLocal,
			SubtotalHard:   it.LineSubtotalHard,
			SubtotalLocal:  it.LineSubtotalLocal,
			TaxHard:        it.LineTaxHard,
			TaxLocal:       it.LineTaxLocal,
			TotalHard:      it.LineTotalHard,
			TotalLocal:     it.LineTotalLocal,
		})
	}
	return out
}

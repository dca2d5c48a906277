package sales

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-fiscal-api/internal/application/dto"
	"github.com/jhoicas/ventas-fiscal-api/internal/application/inventory"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/fiscal"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/repository"
	"github.com/jhoicas/ventas-fiscal-api/pkg/logger"
)

// Config parámetros de política del proceso de ventas.
type Config struct {
	HardCurrency   string
	TaxRatePercent decimal.Decimal // IVA por defecto si la empresa no define el suyo
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// PostSaleUseCase contabiliza ventas: valida, congela la tasa, descuenta stock,
// numera y persiste en una sola transacción.
type PostSaleUseCase struct {
	txRunner          TxRunner
	rates             RateProvider
	companyRepo       repository.CompanyRepository
	customerRepo      repository.CustomerRepository
	paymentMethodRepo repository.PaymentMethodRepository
	saleRepo          repository.SaleRepository
	cfg               Config
	metrics           Metrics
	log               *logger.Logger
	now               func() time.Time
}

// NewPostSaleUseCase construye el caso de uso. metrics y log pueden ser nil.
func NewPostSaleUseCase(
	txRunner TxRunner,
	rates RateProvider,
	companyRepo repository.CompanyRepository,
	customerRepo repository.CustomerRepository,
	paymentMethodRepo repository.PaymentMethodRepository,
	saleRepo repository.SaleRepository,
	cfg Config,
	metrics Metrics,
	log *logger.Logger,
) *PostSaleUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.HardCurrency == "" {
		cfg.HardCurrency = "USD"
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 20 * time.Millisecond
	}
	return &PostSaleUseCase{
		txRunner:          txRunner,
		rates:             rates,
		companyRepo:       companyRepo,
		customerRepo:      customerRepo,
		paymentMethodRepo: paymentMethodRepo,
		saleRepo:          saleRepo,
		cfg:               cfg,
		metrics:           metrics,
		log:               log.Component("sales"),
		now:               time.Now,
	}
}

// PostSale contabiliza el carrito para la empresa y usuario de la sesión.
func (uc *PostSaleUseCase) PostSale(ctx context.Context, companyID, userID string, in dto.PostSaleRequest) (*dto.SaleResponse, error) {
	start := uc.now()
	sale, err := uc.post(ctx, companyID, userID, in)
	if err != nil {
		uc.metrics.SaleRejected(rejectReason(err))
		return nil, err
	}
	uc.metrics.SalePosted(uc.now().Sub(start))
	uc.log.Info().
		Str("company_id", companyID).
		Str("sale_id", sale.ID).
		Str("sale_number", sale.SaleNumber).
		Str("total_hard", sale.TotalHard.StringFixed(2)).
		Bool("rate_fallback", sale.Rate.IsFallback).
		Msg("venta contabilizada")
	return ToSaleResponse(sale), nil
}

func (uc *PostSaleUseCase) post(ctx context.Context, companyID, userID string, in dto.PostSaleRequest) (*entity.Sale, error) {
	if companyID == "" || userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if in.CustomerID == "" {
		return nil, domain.Invalid("customer_id es requerido")
	}
	if in.PaymentMethodID == "" {
		return nil, domain.Invalid("payment_method_id es requerido")
	}
	raw := make([]inventory.Line, len(in.Items))
	for i, l := range in.Items {
		raw[i] = inventory.Line{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	lines, err := inventory.Consolidate(raw)
	if err != nil {
		return nil, err
	}

	// Integridad referencial fuera de la transacción (solo lectura).
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.customerRepo.GetByID(ctx, companyID, in.CustomerID); err != nil {
		return nil, err
	}
	pm, err := uc.paymentMethodRepo.GetByID(ctx, companyID, in.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	if !pm.IsActive {
		return nil, domain.Invalid("el método de pago %s está inactivo", pm.ID)
	}

	taxRate := uc.cfg.TaxRatePercent
	if company.TaxRatePercent != nil {
		taxRate = *company.TaxRatePercent
	}

	postedAt := uc.now().UTC()
	rate, err := uc.rates.Snapshot(ctx, uc.cfg.HardCurrency, postedAt)
	if err != nil {
		return nil, err
	}

	header := &entity.Sale{
		CompanyID:       companyID,
		CustomerID:      in.CustomerID,
		UserID:          userID,
		PaymentMethodID: in.PaymentMethodID,
		PostedAt:        postedAt,
		Rate:            rate,
		TaxRatePercent:  taxRate,
		PaymentStatus:   entity.PaymentStatusPaid,
		LifecycleStatus: entity.LifecycleStatusCompleted,
		Notes:           in.Notes,
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = uc.cfg.RetryBaseDelay
	b.MaxInterval = 20 * uc.cfg.RetryBaseDelay

	attempt := 0
	sale, err := backoff.Retry(ctx, func() (*entity.Sale, error) {
		attempt++
		if attempt > 1 {
			uc.metrics.SaleRetried()
		}
		s, err := uc.postOnce(ctx, header, lines)
		if err == nil {
			return s, nil
		}
		if errors.Is(err, domain.ErrTransient) {
			uc.log.Warn().Err(err).Int("attempt", attempt).Str("company_id", companyID).Msg("conflicto al contabilizar; reintentando")
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(uc.cfg.MaxRetries+1)))
	if err != nil {
		if errors.Is(err, domain.ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
			uc.log.Error().Err(err).Int("attempts", attempt).Str("company_id", companyID).Msg("venta no contabilizada tras reintentos")
			return nil, domain.ErrInternal
		}
		return nil, err
	}
	return sale, nil
}

// postOnce es un intento completo: bloqueo, verificación, numeración, descuento y escritura.
func (uc *PostSaleUseCase) postOnce(ctx context.Context, header *entity.Sale, lines []inventory.Line) (*entity.Sale, error) {
	sale := *header
	sale.ID = uuid.New().String()

	var low []*entity.Product
	err := uc.txRunner.RunSale(ctx, func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		seqRepo repository.SequenceRepository,
	) error {
		products, err := inventory.LockAndCheck(ctx, productRepo, sale.CompanyID, lines)
		if err != nil {
			return err
		}

		inputs := make([]fiscal.LineInput, len(lines))
		for i, l := range lines {
			p := products[l.ProductID]
			inputs[i] = fiscal.LineInput{
				ProductID:     p.ID,
				Description:   p.Name,
				Quantity:      l.Quantity,
				UnitPriceHard: p.PriceHard,
			}
		}
		priced, totals := fiscal.PriceSale(inputs, sale.Rate.RateToLocal, sale.TaxRatePercent)

		n, err := seqRepo.Next(ctx, sale.CompanyID, entity.DocumentClassSale)
		if err != nil {
			return err
		}
		sale.SequenceNumber = n
		sale.SaleNumber = fiscal.FormatSaleNumber(n)
		sale.InvoiceNumber = fiscal.FormatInvoiceNumber(n)

		low, err = inventory.Apply(ctx, productRepo, products, lines)
		if err != nil {
			return err
		}

		sale.SubtotalHard = totals.SubtotalHard
		sale.SubtotalLocal = totals.SubtotalLocal
		sale.TaxHard = totals.TaxHard
		sale.TaxLocal = totals.TaxLocal
		sale.TotalHard = totals.TotalHard
		sale.TotalLocal = totals.TotalLocal
		sale.Items = make([]*entity.SaleLineItem, len(priced))
		for i, p := range priced {
			sale.Items[i] = &entity.SaleLineItem{
				ID:                uuid.New().String(),
				SaleID:            sale.ID,
				ProductID:         p.ProductID,
				Description:       p.Description,
				Quantity:          p.Quantity,
				UnitPriceHard:     p.UnitPriceHard,
				UnitPriceLocal:    p.UnitPriceLocal,
				LineSubtotalHard:  p.SubtotalHard,
				LineSubtotalLocal: p.SubtotalLocal,
				LineTaxHard:       p.TaxHard,
				LineTaxLocal:      p.TaxLocal,
				LineTotalHard:     p.TotalHard,
				LineTotalLocal:    p.TotalLocal,
			}
		}
		return saleRepo.Create(ctx, &sale)
	})
	if err != nil {
		return nil, err
	}

	for _, p := range low {
		uc.log.Warn().
			Str("company_id", sale.CompanyID).
			Str("product_id", p.ID).
			Int64("stock", p.StockQuantity).
			Int64("min_stock", p.MinStockThreshold).
			Msg("producto por debajo del stock mínimo")
	}
	return &sale, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrDuplicate):
		return "duplicate"
	default:
		return "internal"
	}
}

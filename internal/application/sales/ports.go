package sales

import (
	"context"
	"time"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con repositorios atados a ella.
// Si fn retorna error se hace rollback de todo (stock, secuencia y venta).
// Los conflictos de concurrencia se reportan envolviendo domain.ErrTransient.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		seqRepo repository.SequenceRepository,
	) error) error
}

// RateProvider entrega la tasa a congelar en la venta.
type RateProvider interface {
	Snapshot(ctx context.Context, currency string, at time.Time) (entity.RateSnapshot, error)
}

// Metrics contadores del proceso de ventas. Puede ser nil.
type Metrics interface {
	SalePosted(elapsed time.Duration)
	SaleRejected(reason string)
	SaleRetried()
}

type noopMetrics struct{}

func (noopMetrics) SalePosted(time.Duration) {}
func (noopMetrics) SaleRejected(string)      {}
func (noopMetrics) SaleRetried()             {}

// Package metrics expone contadores Prometheus del motor de ventas y retenciones.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/ventas-fiscal-api/internal/application/sales"
	"github.com/jhoicas/ventas-fiscal-api/internal/application/withholding"
)

const namespace = "ventas_fiscal"

var (
	_ sales.Metrics       = (*Recorder)(nil)
	_ withholding.Metrics = (*Recorder)(nil)
)

// Recorder implementa los puertos de métricas de ventas y retenciones.
type Recorder struct {
	salesPosted        prometheus.Counter
	salesRejected      *prometheus.CounterVec
	saleRetries        prometheus.Counter
	postDuration       prometheus.Histogram
	withholdingsIssued *prometheus.CounterVec
}

// New registra las métricas en reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		salesPosted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_posted_total",
			Help:      "Ventas contabilizadas.",
		}),
		salesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_rejected_total",
			Help:      "Ventas rechazadas por motivo.",
		}, []string{"reason"}),
		saleRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_post_retries_total",
			Help:      "Reintentos por conflictos transitorios de la base de datos.",
		}),
		postDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sales_post_duration_seconds",
			Help:      "Duración de la contabilización de una venta.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		withholdingsIssued: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "withholdings_created_total",
			Help:      "Comprobantes de retención emitidos por tipo.",
		}, []string{"kind"}),
	}
}

func (r *Recorder) SalePosted(elapsed time.Duration) {
	r.salesPosted.Inc()
	r.postDuration.Observe(elapsed.Seconds())
}

func (r *Recorder) SaleRejected(reason string) {
	r.salesRejected.WithLabelValues(reason).Inc()
}

func (r *Recorder) SaleRetried() {
	r.saleRetries.Inc()
}

func (r *Recorder) WithholdingCreated(kind string) {
	r.withholdingsIssued.WithLabelValues(kind).Inc()
}

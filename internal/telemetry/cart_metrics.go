package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mkorchagin/foodcart/internal/domain"
)

// CartMetrics holds Prometheus metrics for cart-level observability.
type CartMetrics struct {
	Reconciliations *prometheus.CounterVec
	CartChanges     *prometheus.CounterVec
	CartValue       prometheus.Histogram
	CartItemCount   prometheus.Histogram
	CacheReads      *prometheus.CounterVec
}

// NewCartMetrics creates and registers all cart metrics
func NewCartMetrics(namespace string) *CartMetrics {
	if namespace == "" {
		namespace = "foodcart"
	}

	subsystem := "cart"

	return &CartMetrics{
		Reconciliations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reconciliations_total",
				Help:      "Total cart reconciliation calls by outcome",
			},
			[]string{"outcome"}, // outcome: ok, error
		),
		CartChanges: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "changes_total",
				Help:      "Total automatic cart corrections by type",
			},
			[]string{"type"}, // type: removed, price_changed, quantity_changed
		),
		CartValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "value",
				Help:      "Reconciled cart totals in minor currency units",
				Buckets:   prometheus.ExponentialBuckets(100, 4, 10),
			},
		),
		CartItemCount: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "item_count",
				Help:      "Number of lines in reconciled carts",
				Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
			},
		),
		CacheReads: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_reads_total",
				Help:      "Cart cache reads by result",
			},
			[]string{"result"}, // result: hit, miss, error
		),
	}
}

// Cache read result labels.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// ObserveCacheRead records one cart cache read by result.
func (m *CartMetrics) ObserveCacheRead(result string) {
	m.CacheReads.WithLabelValues(result).Inc()
}

// ObserveReconciliation records one successful reconciliation result.
func (m *CartMetrics) ObserveReconciliation(result *domain.ReconcileResult) {
	m.Reconciliations.WithLabelValues("ok").Inc()
	m.CartValue.Observe(float64(result.Cart.Totals.Total))
	m.CartItemCount.Observe(float64(len(result.Cart.Items)))
	for _, change := range result.Changes {
		m.CartChanges.WithLabelValues(string(change.Type)).Inc()
	}
}

// ObserveReconciliationError records a failed reconciliation call.
func (m *CartMetrics) ObserveReconciliationError() {
	m.Reconciliations.WithLabelValues("error").Inc()
}

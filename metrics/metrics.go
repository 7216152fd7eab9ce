// Package metrics exposes Prometheus counters, gauges and histograms for
// the quality signals §7 asks to be surfaced rather than silently dropped,
// plus per-session timing and synthetic-order emission volume.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	NoiseTicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capflow_noise_ticks_total",
			Help: "Ticks classified NOISE, by symbol",
		},
		[]string{"symbol"},
	)

	MissingQuote = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capflow_missing_quote_total",
			Help: "Large ticks classified without quote context, by symbol",
		},
		[]string{"symbol"},
	)

	AmountMismatch = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capflow_amount_mismatch_total",
			Help: "Ticks whose amount diverged from price*volume beyond tolerance, by symbol",
		},
		[]string{"symbol"},
	)

	SyntheticOrders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capflow_synthetic_orders_total",
			Help: "Synthetic orders emitted, by order type and direction",
		},
		[]string{"order_type", "direction"},
	)

	ValidationStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "capflow_validation_status",
			Help: "1 if the most recent session for a symbol validated INVALID, else 0",
		},
		[]string{"symbol"},
	)

	SessionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "capflow_session_duration_seconds",
			Help:    "Wall-clock time to run one symbol's full session",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(NoiseTicks, MissingQuote, AmountMismatch)
	prometheus.MustRegister(SyntheticOrders)
	prometheus.MustRegister(ValidationStatus)
	prometheus.MustRegister(SessionDuration)
}

// Handler returns the /metrics HTTP handler for a Prometheus scrape target.
func Handler() http.Handler {
	return promhttp.Handler()
}

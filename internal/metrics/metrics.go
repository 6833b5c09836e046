// Package metrics exposes Prometheus instrumentation for backtest runs and
// data fetching.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	backtestsTotal   *prometheus.CounterVec
	backtestDuration prometheus.Histogram
	tradesSimulated  prometheus.Counter

	dataFetchesTotal *prometheus.CounterVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
}

// NewRegistry creates a metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		backtestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockies_backtests_total",
				Help: "Total number of backtest runs",
			},
			[]string{"mode", "status"},
		),
		backtestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stockies_backtest_duration_seconds",
				Help:    "Backtest run duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
			},
		),
		tradesSimulated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stockies_trades_simulated_total",
				Help: "Total number of simulated round-trip trades",
			},
		),
		dataFetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockies_data_fetches_total",
				Help: "Total number of upstream history fetches",
			},
			[]string{"source", "status"},
		),
		cacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stockies_price_cache_hits_total",
				Help: "History requests served from the price store",
			},
		),
		cacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stockies_price_cache_misses_total",
				Help: "History requests that went to the upstream provider",
			},
		),
	}

	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.tradesSimulated)
	reg.MustRegister(r.dataFetchesTotal)
	reg.MustRegister(r.cacheHits)
	reg.MustRegister(r.cacheMisses)

	return r
}

// RecordBacktest records one finished run. mode is "single" or "multi",
// status is "ok" or "failed".
func (r *Registry) RecordBacktest(mode, status string, duration float64, trades int) {
	r.backtestsTotal.WithLabelValues(mode, status).Inc()
	r.backtestDuration.Observe(duration)
	r.tradesSimulated.Add(float64(trades))
}

// RecordFetch records one upstream history fetch.
func (r *Registry) RecordFetch(source, status string) {
	r.dataFetchesTotal.WithLabelValues(source, status).Inc()
}

// RecordCacheHit counts a history request served from the store.
func (r *Registry) RecordCacheHit() { r.cacheHits.Inc() }

// RecordCacheMiss counts a history request that fell through to upstream.
func (r *Registry) RecordCacheMiss() { r.cacheMisses.Inc() }

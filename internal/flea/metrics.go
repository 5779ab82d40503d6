package flea

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	TableGenerationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "broker_price_table_generation_seconds",
		Help:    "Time to generate the full price lookup table",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	TableSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "broker_price_table_templates",
		Help: "Number of templates in the price lookup table",
	})

	EstimateFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "broker_price_estimate_fallbacks_total",
		Help: "Templates priced from catalog estimates because no usable listings survived filtering",
	})
)

package aggregate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	GroupsPerBatch = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "broker_sell_groups_per_batch",
		Help:    "Number of per-trader groups produced per sell batch",
		Buckets: prometheus.LinearBuckets(1, 1, 10),
	})
)

package trade

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	GroupsConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "broker_sell_groups_confirmed_total",
		Help: "Sell groups confirmed by the host trade pipeline",
	})
)

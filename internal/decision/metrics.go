package decision

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "broker_sell_decisions_total",
		Help: "Sell decisions by chosen route",
	}, []string{"route"})

	NoTraderTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "broker_no_eligible_trader_total",
		Help: "Items no counterparty would buy",
	})
)

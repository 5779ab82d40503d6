package app

import (
	"context"
	"sync"

	"github.com/stashbroker/broker/internal/catalog"
	"github.com/stashbroker/broker/internal/decision"
	"github.com/stashbroker/broker/internal/flea"
	"github.com/stashbroker/broker/internal/trade"
	"github.com/stashbroker/broker/pkg/config"
	"github.com/stashbroker/broker/pkg/healthprobe"
	"github.com/stashbroker/broker/pkg/httpserver"
	"github.com/stashbroker/broker/pkg/types"
	"go.uber.org/zap"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	catalog       *catalog.FileCatalog
	traders       *decision.TraderIndex
	table         *flea.Table
	engine        *decision.Engine
	controller    *trade.Controller
	ledger        trade.Ledger
	profile       *types.Profile
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Options holds application options.
type Options struct {
	RegenerateTable bool // rebuild the price table even when a cached one exists
}

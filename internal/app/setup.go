package app

import (
	"context"
	"fmt"

	"github.com/stashbroker/broker/internal/aggregate"
	"github.com/stashbroker/broker/internal/catalog"
	"github.com/stashbroker/broker/internal/decision"
	"github.com/stashbroker/broker/internal/flea"
	"github.com/stashbroker/broker/internal/storage"
	"github.com/stashbroker/broker/internal/trade"
	"github.com/stashbroker/broker/internal/valuation"
	"github.com/stashbroker/broker/pkg/cache"
	"github.com/stashbroker/broker/pkg/config"
	"github.com/stashbroker/broker/pkg/healthprobe"
	"github.com/stashbroker/broker/pkg/httpserver"
	"github.com/stashbroker/broker/pkg/types"
	"go.uber.org/zap"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := setupHealthChecker()

	// Data snapshots
	cat, err := catalog.Load(catalog.DefaultPath(cfg.DataDir), logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	listings, err := catalog.LoadListings(catalog.DefaultListingsPath(cfg.DataDir), logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("load listings: %w", err)
	}

	traderFile, err := catalog.LoadTraders(catalog.DefaultTradersPath(cfg.DataDir), cfg.CustomTraderIDs, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("load traders: %w", err)
	}

	profile, err := catalog.LoadProfile(catalog.DefaultProfilePath(cfg.DataDir), logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("load profile: %w", err)
	}

	traders := decision.NewTraderIndex(cfg.BrokerTraderID, traderFile.Traders, logger)

	// Pricing pipeline
	estimateCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	pricer := valuation.NewPricer(cat, logger)
	table, err := setupPriceTable(cfg, logger, cat, listings, estimateCache, opts)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup price table: %w", err)
	}

	feeCalc := flea.NewFeeCalculator(cat, pricer, logger)
	provider := decision.NewClientProvider()

	engine := decision.New(
		decision.Config{
			UseFlea:                  cfg.UseFlea,
			FleaIgnoreAttachments:    cfg.FleaIgnoreAttachments,
			FleaIgnoreFoundInSession: cfg.FleaIgnoreFoundInSession,
			FleaIgnorePlayerLevel:    cfg.FleaIgnorePlayerLevel,
			TradersIgnoreUnlocked:    cfg.TradersIgnoreUnlocked,
			UseClientOverrides:       cfg.UseClientOverrides,
			ProfitCommissionPercent:  cfg.ProfitCommissionPercent,
			Logger:                   logger,
		},
		cat,
		pricer,
		feeCalc,
		table,
		flea.UnitPrice,
		traders,
		provider,
		cat.Currencies(),
		buyRates(cfg),
	)

	aggregator := aggregate.New(aggregate.Config{
		IgnoreAttachments: cfg.FleaIgnoreAttachments,
		Logger:            logger,
	}, engine, traders)

	// Trade confirmation
	ledger, err := setupLedger(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup ledger: %w", err)
	}

	controller := trade.NewController(trade.Config{
		ProfitCommissionPercent: cfg.ProfitCommissionPercent,
		Logger:                  logger,
	}, aggregator, traders, trade.NewLoopbackConfirmer(logger), ledger, cat)

	httpServer := setupHTTPServer(cfg, logger, healthChecker, cat, traders, table, provider, controller, profile, traderFile)

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		catalog:       cat,
		traders:       traders,
		table:         table,
		engine:        engine,
		controller:    controller,
		ledger:        ledger,
		profile:       profile,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupHealthChecker() *healthprobe.HealthChecker {
	return healthprobe.New()
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 100000, // 10x expected max items (~10k market templates)
		MaxCost:     10000,
		BufferItems: 64,
		Logger:      logger,
	})
}

// setupPriceTable loads the persisted price table when allowed, otherwise
// generates it from listings and persists the result.
func setupPriceTable(
	cfg *config.Config,
	logger *zap.Logger,
	cat *catalog.FileCatalog,
	listings *catalog.FileListingIndex,
	estimateCache cache.Cache,
	opts *Options,
) (*flea.Table, error) {
	table := flea.NewTable()
	store := flea.NewFileStore(cfg.CacheFile, logger)

	if cfg.UseCache && !opts.RegenerateTable {
		prices, err := store.Load()
		if err == nil && len(prices) > 0 {
			table.Replace(prices)
			logger.Info("price-table-loaded-from-cache",
				zap.String("path", cfg.CacheFile),
				zap.Int("templates", table.Len()))
			return table, nil
		}
		if err != nil {
			logger.Warn("price-table-cache-unreadable", zap.Error(err))
		}
	}

	estimator := flea.NewEstimator(flea.EstimatorConfig{
		UseLowestPrice:    cfg.FleaUseLowestPrice,
		IgnoreAttachments: cfg.FleaIgnoreAttachments,
		Logger:            logger,
	}, cat, listings)
	cached := flea.NewCachedEstimator(estimator, estimateCache)

	builder := flea.NewBuilder(cat, cached, logger)
	prices, err := builder.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate price table: %w", err)
	}
	table.Replace(prices)

	if cfg.UseCache {
		err = store.Save(prices)
		if err != nil {
			logger.Warn("price-table-cache-write-failed", zap.Error(err))
		}
	}

	return table, nil
}

func setupLedger(cfg *config.Config, logger *zap.Logger) (trade.Ledger, error) {
	if cfg.StorageMode == "postgres" {
		pgLedger, err := storage.NewPostgresLedger(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres ledger: %w", err)
		}
		return pgLedger, nil
	}

	return storage.NewConsoleLedger(logger), nil
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	cat *catalog.FileCatalog,
	traders *decision.TraderIndex,
	table *flea.Table,
	provider *decision.ClientProvider,
	controller *trade.Controller,
	profile *types.Profile,
	stocker trade.CurrencyStocker,
) *httpserver.Server {
	handler := httpserver.NewBrokerHandler(&httpserver.HandlerConfig{
		ClientConfig: httpserver.ClientConfig{
			BrokerTraderID:           cfg.BrokerTraderID,
			UseFlea:                  cfg.UseFlea,
			FleaIgnoreAttachments:    cfg.FleaIgnoreAttachments,
			FleaIgnoreFoundInSession: cfg.FleaIgnoreFoundInSession,
			FleaIgnorePlayerLevel:    cfg.FleaIgnorePlayerLevel,
			TradersIgnoreUnlocked:    cfg.TradersIgnoreUnlocked,
			UseClientOverrides:       cfg.UseClientOverrides,
			ProfitCommissionPercent:  cfg.ProfitCommissionPercent,
			BuyRates:                 buyRates(cfg),
		},
		Traders:            traders,
		Table:              table,
		Provider:           provider,
		Controller:         controller,
		Profile:            profile,
		Stocker:            stocker,
		CurrencyBasePrices: cat.CurrencyBasePrices(),
		RepGain:            cat.Globals().RatingIncreaseCount,
		Logger:             logger,
	})

	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Handler:       handler,
	})
}

func buyRates(cfg *config.Config) map[string]float64 {
	return map[string]float64{
		"USD": cfg.BuyRateDollar,
		"EUR": cfg.BuyRateEuro,
	}
}

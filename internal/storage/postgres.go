package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/stashbroker/broker/internal/aggregate"
	"go.uber.org/zap"
)

// PostgresLedger records confirmed sell groups in PostgreSQL.
type PostgresLedger struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresLedger creates a new PostgreSQL ledger.
func NewPostgresLedger(cfg *PostgresConfig) (*PostgresLedger, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-ledger-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresLedger{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// StoreSellGroup inserts one confirmed sell group.
func (p *PostgresLedger) StoreSellGroup(ctx context.Context, profileID, receiptID string, g *aggregate.SellGroup) error {
	query := `
		INSERT INTO sell_groups (
			receipt_id, profile_id, trader_id, trader_name, is_flea_market,
			total_price, total_tax, total_profit, total_profit_in_base,
			commission, commission_in_base,
			item_count, stack_count, full_item_count
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
	`

	_, err := p.db.ExecContext(ctx, query,
		receiptID,
		profileID,
		g.TraderID,
		g.TraderName,
		g.IsFleaMarket,
		g.TotalPrice,
		g.TotalTax,
		g.TotalProfit,
		g.TotalProfitInBase,
		g.Commission,
		g.CommissionInBase,
		g.TotalItemCount,
		g.TotalStackCount,
		g.FullItemCount,
	)

	if err != nil {
		return fmt.Errorf("insert sell group: %w", err)
	}

	p.logger.Debug("sell-group-stored",
		zap.String("receipt-id", receiptID),
		zap.String("trader-id", g.TraderID))

	return nil
}

// Close closes the database connection.
func (p *PostgresLedger) Close() error {
	p.logger.Info("closing-postgres-ledger")
	return p.db.Close()
}

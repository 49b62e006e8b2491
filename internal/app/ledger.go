package app

import (
	"context"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/icl-ladder/internal/config"
	"github.com/riskibarqy/icl-ladder/internal/domain/ledger"
	"github.com/riskibarqy/icl-ladder/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/icl-ladder/internal/infrastructure/repository/jsonfile"
	"github.com/riskibarqy/icl-ladder/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/icl-ladder/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/icl-ladder/internal/platform/cache"
	"github.com/riskibarqy/icl-ladder/internal/platform/logging"
	"github.com/riskibarqy/icl-ladder/internal/platform/resilience"
)

// newLedgerRepository builds the ledger store selected by LEDGER_DRIVER. The
// returned close func is nil when the store holds no resources.
func newLedgerRepository(ctx context.Context, cfg config.Config, logger *logging.Logger) (ledger.Repository, func() error, error) {
	var (
		repo    ledger.Repository
		closeFn func() error
	)

	switch cfg.LedgerDriver {
	case config.LedgerDriverMemory:
		logger.Warn("ledger is in memory; recorded rounds are lost on exit")
		return memory.NewLedgerRepository(nil), nil, nil
	case config.LedgerDriverPostgres:
		dbName := dbNameFromURL(cfg.DBURL)
		db, err := otelsqlx.Open("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
			otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
			otelsql.WithDBName(dbName),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("open ledger database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping ledger database: %w", err)
		}

		var breaker *resilience.CircuitBreaker
		if cfg.DBCircuitEnabled {
			breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: cfg.DBCircuitFailureCount,
				OpenTimeout:      cfg.DBCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.DBCircuitHalfOpenMaxReq,
			})
		}
		repo = postgres.NewLedgerRepository(db, breaker).WithQueryTracer(newDBQueryTracer(dbName))
		closeFn = db.Close
		logger.Info("ledger stored in postgres", "db_name", dbName, "circuit_breaker", cfg.DBCircuitEnabled)
	default:
		fileRepo, err := jsonfile.NewLedgerRepository(cfg.LedgerDir)
		if err != nil {
			return nil, nil, err
		}
		repo = fileRepo
		logger.Info("ledger stored in files", "dir", cfg.LedgerDir)
	}

	if cfg.CacheEnabled {
		repo = cache.NewLedgerRepository(
			repo,
			basecache.NewStore[ledger.Ledger](cfg.CacheTTL),
			basecache.NewStore[[]string](cfg.CacheTTL),
		)
	}
	return repo, closeFn, nil
}

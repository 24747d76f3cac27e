package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/matchfeed/external/apifootball"
	"github.com/riskibarqy/matchfeed/internal/config"
	"github.com/riskibarqy/matchfeed/internal/domain/fixture"
	"github.com/riskibarqy/matchfeed/internal/domain/ingest"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchfeed/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/matchfeed/internal/interfaces/httpapi"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const (
	dbMaxOpenConns    = 10
	dbMaxIdleConns    = 5
	dbConnMaxLifetime = 30 * time.Minute
	dbPingTimeout     = 5 * time.Second
)

// Services is the wired service graph shared by the API server and the importer.
type Services struct {
	Fixtures *usecase.FixtureService
	Matches  *usecase.MatchService
	Stats    *usecase.StatsService
	Results  *usecase.ResultService
	Importer *usecase.ImportService

	// InMemory is set when no DB_URL was configured.
	InMemory bool

	db *sqlx.DB
}

func (s *Services) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type storage struct {
	tx       ingest.TxRunner
	fixtures fixture.Repository
	matches  match.Repository
	db       *sqlx.DB
}

// BuildServices opens storage and the provider client and wires every usecase.
// Without DB_URL it falls back to a seeded in-memory store.
func BuildServices(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Default()
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var provider *apifootball.Client
	providerCfg, err := cfg.ProviderConfig()
	switch {
	case errors.Is(err, usecase.ErrConfigurationMissing):
		logger.WarnContext(ctx, "api-football is not configured, stats and import are disabled", "reason", err.Error())
	case err != nil:
		closeDB(store.db)
		return nil, err
	default:
		provider, err = apifootball.NewClient(apifootball.ClientConfig{
			BaseURL:        providerCfg.BaseURL,
			APIKey:         providerCfg.APIKey,
			Timeout:        providerCfg.Timeout,
			MaxRetries:     providerCfg.MaxRetries,
			CircuitBreaker: providerCfg.CircuitBreaker,
			Logger:         logger,
		})
		if err != nil {
			closeDB(store.db)
			return nil, fmt.Errorf("build api-football client: %w", err)
		}
	}

	reconciler := usecase.NewReconcileService(store.tx, logger)
	if store.db == nil {
		if _, err := reconciler.Reconcile(ctx, memory.SeedBatch()); err != nil {
			return nil, fmt.Errorf("seed in-memory store: %w", err)
		}
	}

	services := &Services{
		Fixtures: usecase.NewFixtureService(store.fixtures),
		Matches:  usecase.NewMatchService(store.matches),
		Results:  usecase.NewResultService(store.matches, match.NewRandomSimulator(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))), cfg.ResultWorkers, logger),
		InMemory: store.db == nil,
		db:       store.db,
	}
	// Typed nil pointers must not leak into the provider interfaces.
	if provider != nil {
		services.Stats = usecase.NewStatsService(store.matches, usecase.CacheStatistics(provider, cfg.StatsCacheTTL))
		services.Importer = usecase.NewImportService(provider, usecase.NewResolver(), reconciler, cfg.ImportFetchConcurrency, logger)
	} else {
		services.Stats = usecase.NewStatsService(store.matches, nil)
		services.Importer = usecase.NewImportService(nil, usecase.NewResolver(), reconciler, cfg.ImportFetchConcurrency, logger)
	}

	return services, nil
}

func openStorage(ctx context.Context, cfg config.Config, logger *logging.Logger) (storage, error) {
	if cfg.DBURL == "" {
		logger.WarnContext(ctx, "DB_URL is empty, using in-memory store")
		mem := memory.NewStore()
		return storage{tx: mem, fixtures: mem, matches: mem}, nil
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return storage{}, err
	}
	logger.InfoContext(ctx, "connected to postgres", "db_name", postgresDSN(cfg.DBURL).database())

	return storage{
		tx:       postgres.NewTxRunner(db),
		fixtures: postgres.NewFixtureRepository(db),
		matches:  postgres.NewMatchRepository(db),
		db:       db,
	}, nil
}

func openDatabase(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := postgresDSN(cfg.DBURL)
	db, err := otelsqlx.Open("postgres", dsn.forDriver(cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dsn.database()),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %v", usecase.ErrDependencyUnavailable, err)
	}

	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)
	otelsql.ReportDBStatsMetrics(db.DB)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("%w: ping postgres: %v", usecase.ErrDependencyUnavailable, err)
	}

	return db, nil
}

func closeDB(db *sqlx.DB) {
	if db != nil {
		_ = db.Close()
	}
}

func NewHTTPServer(cfg config.Config, services *Services, logger *logging.Logger) (*http.Server, error) {
	if services == nil {
		return nil, fmt.Errorf("services cannot be nil")
	}

	handler := httpapi.NewHandler(
		services.Fixtures,
		services.Matches,
		services.Stats,
		services.Results,
		services.Importer,
		cfg.ImportTargets,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

// internal/app.go
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	router "balance-ledger/internal/api"
	"balance-ledger/internal/api/handler"
	"balance-ledger/internal/config"
	"balance-ledger/internal/repository"
	"balance-ledger/internal/repository/ledger"
	"balance-ledger/internal/service"
	"balance-ledger/internal/store"
	"balance-ledger/internal/store/memory"
	"balance-ledger/internal/store/postgres"
	"balance-ledger/internal/store/surreal"
	"balance-ledger/internal/util"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config  *config.AppConfig
	Logger  *zerolog.Logger
	Backend store.Backend

	Repositories  repository.Set
	LedgerService service.LedgerService

	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{Logger: util.GetLogger()}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	app.Logger = util.InitLogger(cfg.LogLevel, cfg.LogPretty)
	app.Logger.Info().Str("backend", cfg.StoreBackend).Msg("Application configuration loaded")

	backend, err := openBackend(ctx, cfg, app.Logger)
	if err != nil {
		return err
	}
	app.Backend = backend
	app.Logger.Info().Str("backend", backend.Name()).Bool("atomic", backend.Atomic()).Msg("Store connection established")

	app.Repositories = ledger.NewSet()

	app.LedgerService = service.NewLedgerService(app.Backend, app.Repositories, service.Options{
		BcryptCost:          cfg.BcryptCost,
		SerializeMutations:  cfg.SerializeMutations,
		DepositHistoryLimit: cfg.DepositHistoryLimit,
	}, app.Logger)

	ledgerHandler := handler.NewLedgerHandler(app.LedgerService, app.Logger)
	app.HTTPHandler = router.NewRouter(ledgerHandler, router.RouterConfig{
		AdminKey:      cfg.AdminKey,
		AuthRateLimit: cfg.AuthRateLimit,
		AuthRateBurst: cfg.AuthRateBurst,

		TrustProxyHeaders: cfg.TrustProxyHeaders,
	}, app.Logger)
	app.Logger.Debug().Msg("HTTP router and handlers initialized")

	return nil
}

func openBackend(ctx context.Context, cfg *config.AppConfig, logger *zerolog.Logger) (store.Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		b, err := postgres.Open(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return b, nil
	case config.BackendSurreal:
		b, err := surreal.Open(ctx, cfg.Surreal, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open surreal store: %w", err)
		}
		return b, nil
	case config.BackendMemory:
		logger.Warn().Msg("Using the in-memory store; data is lost on exit")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info().Msg("Shutting down application")
	if app.Backend != nil {
		if err := app.Backend.Close(); err != nil {
			app.Logger.Error().Err(err).Msg("Failed to close store connection")
			return fmt.Errorf("failed to close store connection: %w", err)
		}
		app.Logger.Info().Msg("Store connection closed")
	}
	return nil
}

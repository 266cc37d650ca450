package app

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"parkhub/internal/config"
	"parkhub/internal/db"
	httpserver "parkhub/internal/http"
	"parkhub/internal/http/handlers"
	"parkhub/internal/qr"
	redisstore "parkhub/internal/redis"
	"parkhub/internal/repository"
	"parkhub/internal/service"
)

// App wires parkhub dependencies.
type App struct {
	server      *httpserver.Server
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := db.EnsureSchema(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := db.SeedDefaultRates(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	// The active-session cache is optional; the service degrades to
	// ledger-only lookups without it.
	var (
		redisClient *redis.Client
		activeStore *redisstore.Store
	)
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		redisClient, err = redisstore.NewClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		activeStore = redisstore.NewStore(redisClient, cfg.ActiveSessionTTL())
	}

	qrGenerator, err := qr.NewGenerator(cfg.QR.Dir, cfg.QR.URLPrefix)
	if err != nil {
		closeAll(sqlDB, redisClient)
		return nil, err
	}

	sessionRepo := repository.NewSessionRepository(sqlDB)
	rateRepo := repository.NewRateRepository(sqlDB)

	sessionsService := service.NewSessionsService(sessionRepo, rateRepo, activeStore, qrGenerator, nil, nil, logger)
	ratesService := service.NewRatesService(rateRepo, sessionRepo, logger)
	dashboardService := service.NewDashboardService(sessionRepo, nil, logger)

	validate := validator.New()

	routes := httpserver.Routes{
		Entry:             handlers.NewEntryHandler(sessionsService, validate),
		Verify:            handlers.NewVerifyHandler(sessionsService),
		Exit:              handlers.NewExitHandler(sessionsService, validate),
		UpdateSession:     handlers.NewUpdateSessionHandler(sessionsService, validate),
		CalculatorSearch:  handlers.NewCalculatorSearchHandler(sessionsService),
		ListVehicleTypes:  handlers.NewListVehicleTypesHandler(ratesService),
		CreateVehicleType: handlers.NewCreateVehicleTypeHandler(ratesService, validate),
		UpdateVehicleType: handlers.NewUpdateVehicleTypeHandler(ratesService, validate),
		DeleteVehicleType: handlers.NewDeleteVehicleTypeHandler(ratesService),
		Dashboard:         handlers.NewDashboardHandler(dashboardService),
		Health:            handlers.NewHealthHandler(),
		QRFiles:           http.StripPrefix("/static/qrs/", http.FileServer(http.Dir(qrGenerator.Dir()))),
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}

func closeAll(sqlDB *sql.DB, redisClient *redis.Client) {
	if sqlDB != nil {
		sqlDB.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}
}

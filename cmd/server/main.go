// Package main starts the water resource licensing billing server: the HTTP
// API, the supplementary billing flag handler and the nightly reissue
// scheduler.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/wrls/backend/internal/application/billrun"
	"github.com/wrls/backend/internal/application/reissue"
	"github.com/wrls/backend/internal/application/supplementary"
	"github.com/wrls/backend/internal/infrastructure/cache"
	"github.com/wrls/backend/internal/infrastructure/config"
	"github.com/wrls/backend/internal/infrastructure/event"
	"github.com/wrls/backend/internal/infrastructure/logger"
	"github.com/wrls/backend/internal/infrastructure/migration"
	"github.com/wrls/backend/internal/infrastructure/persistence"
	"github.com/wrls/backend/internal/infrastructure/scheduler"
	"github.com/wrls/backend/internal/infrastructure/telemetry"
	"github.com/wrls/backend/internal/interfaces/http/handler"
	"github.com/wrls/backend/internal/interfaces/http/middleware"
	"github.com/wrls/backend/internal/interfaces/http/router"
	"github.com/wrls/backend/migrations"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const (
	shutdownTimeout    = 30 * time.Second
	slowQueryThreshold = 200 * time.Millisecond
)

func main() {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
		Env:     cfg.App.Env,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting WRLS billing backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = meterProvider.Shutdown(shutdownCtx)
		_ = tracerProvider.Shutdown(shutdownCtx)
	}()

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), slowQueryThreshold)),
		persistence.WithPlugins(telemetry.DBTracingPlugins(telemetry.DBTracingConfig{
			Enabled: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
			DBName:  cfg.Database.DBName,
		}, otel.GetTracerProvider())...),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		if err := migrateUp(db, log); err != nil {
			return err
		}
	}

	// Repositories
	licenceRepo := persistence.NewGormLicenceRepository(db.DB)
	chargeVersionRepo := persistence.NewGormChargeVersionRepository(db.DB)
	returnLogRepo := persistence.NewGormReturnLogRepository(db.DB)
	workflowRepo := persistence.NewGormWorkflowRepository(db.DB)
	billRunRepo := persistence.NewGormBillRunRepository(db.DB)
	billRepo := persistence.NewGormBillRepository(db.DB)
	yearRepo := persistence.NewGormLicenceSupplementaryYearRepository(db.DB)

	notifier := logger.NewZapNotifier(log)
	meter := meterProvider.Meter(telemetry.MeterName)

	// Supplementary billing flags
	flagMetrics, err := telemetry.NewFlagMetrics(meter)
	if err != nil {
		return err
	}
	persister := supplementary.NewPersistSupplementaryBillingFlagsService(licenceRepo, yearRepo, log)
	flagService := supplementary.NewProcessBillingFlagService(supplementary.ProcessBillingFlagServiceDeps{
		ChargeVersion:   supplementary.NewDetermineChargeVersionFlagsService(chargeVersionRepo, time.Now),
		ReturnLog:       supplementary.NewDetermineReturnLogFlagsService(returnLogRepo, time.Now),
		Workflow:        supplementary.NewDetermineWorkflowFlagsService(workflowRepo, time.Now),
		ImportedLicence: supplementary.NewDetermineImportedLicenceFlagsService(licenceRepo, chargeVersionRepo, time.Now),
		ExistingYears:   supplementary.NewDetermineExistingBillRunYearsService(billRunRepo),
		Persister:       persister,
		Notifier:        notifier,
		Metrics:         flagMetrics,
		Tracer:          tracerProvider.Tracer("supplementary"),
	})

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(supplementary.NewFlagEventHandler(flagService))
	if err := eventBus.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Warn("Event bus did not drain before shutdown", zap.Error(err))
		}
	}()

	// Bill reissue
	locker, closeLocker, err := cache.NewLockerFactory(cfg.Redis, cache.WithLogger(log)).CreateLocker(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeLocker(); err != nil {
			log.Error("Error closing locker", zap.Error(err))
		}
	}()

	fetcher := reissue.NewFetchBillsToBeReissuedService(billRepo, notifier)
	reissuer := reissue.NewReissueBillsService(fetcher, billRepo, notifier)
	runner := reissue.NewReissueRunner(billRepo, billRunRepo, reissuer, locker, log,
		reissue.RunnerConfig{LockTTL: cfg.Reissue.LockTTL})

	if cfg.Scheduler.Enabled {
		job, err := telemetry.NewInstrumentedReissueJob(runner, meter)
		if err != nil {
			return err
		}
		reissueScheduler, err := scheduler.NewReissueScheduler(scheduler.ReissueSchedulerConfigFrom(cfg.Scheduler), job, log)
		if err != nil {
			return err
		}
		if err := reissueScheduler.Start(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := reissueScheduler.Stop(stopCtx); err != nil {
				log.Warn("Reissue scheduler did not stop cleanly", zap.Error(err))
			}
		}()
	}

	// Bill run maintenance
	removeBill := billrun.NewRemoveBillService(billRunRepo, billRepo, yearRepo, persister, notifier, log)
	removeBillLicence := billrun.NewRemoveBillLicenceService(billRunRepo, billRepo, yearRepo, persister, notifier, log)

	// HTTP
	mode := gin.DebugMode
	if cfg.IsProduction() {
		mode = gin.ReleaseMode
	}
	engine := router.NewEngine(router.EngineConfig{
		Mode:         mode,
		MaxBodyBytes: cfg.HTTP.MaxBodySize,
		Tracing: middleware.TracingConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			Enabled:        tracerProvider.IsEnabled(),
			TracerProvider: otel.GetTracerProvider(),
		},
	}, log)
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return err
	}

	health := handler.NewHealthHandler(telemetry.ServiceVersion, map[string]handler.HealthCheck{
		"database": func(context.Context) error { return db.Ping() },
	})
	engine.GET("/health", health.Health)

	router.NewRouter(engine).
		Register(
			handler.NewSupplementaryBillingHandler(eventBus),
			handler.NewReissueHandler(runner),
			handler.NewBillHandler(removeBill, removeBillLicence),
		).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return err
	case sig := <-quit:
		log.Info("Shutting down server...", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func migrateUp(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.NewEmbedded(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared connection pool
	return m.Up()
}

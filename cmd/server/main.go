package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appaudit "github.com/fixdesk/backend/internal/application/audit"
	"github.com/fixdesk/backend/internal/application/common"
	financeapp "github.com/fixdesk/backend/internal/application/finance"
	inventoryapp "github.com/fixdesk/backend/internal/application/inventory"
	repairapp "github.com/fixdesk/backend/internal/application/repair"
	tradeapp "github.com/fixdesk/backend/internal/application/trade"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/internal/infrastructure/cache"
	"github.com/fixdesk/backend/internal/infrastructure/config"
	"github.com/fixdesk/backend/internal/infrastructure/event"
	"github.com/fixdesk/backend/internal/infrastructure/logger"
	"github.com/fixdesk/backend/internal/infrastructure/persistence"
	"github.com/fixdesk/backend/internal/infrastructure/scheduler"
	"github.com/fixdesk/backend/internal/infrastructure/telemetry"
	"github.com/fixdesk/backend/internal/interfaces/http/handler"
	"github.com/fixdesk/backend/internal/interfaces/http/middleware"
	"github.com/fixdesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sweepActor is recorded as the actor of scheduled sweeps
const sweepActor = "scheduler"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	log = loggerProvider.Bridge(log, cfg.App.Name, level)
	defer shutdownTelemetry(log, tracerProvider, meterProvider, loggerProvider)

	log.Info("Starting fixdesk backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if db.Driver == "sqlite" {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to migrate sqlite database", zap.Error(err))
		}
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(ctx, db.DB, meterProvider, telemetry.DBMetricsConfig{
		Enabled:            cfg.Telemetry.MetricsEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
		PoolStatsInterval:  cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	if dbMetrics != nil {
		defer dbMetrics.Stop()
	}
	log.Info("Database connected successfully")

	// Idempotency store for inbound events
	store, err := cache.NewIdempotencyStore(ctx, cfg.Event, cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	// Unit of work
	auditMode, err := appaudit.ParseMode(cfg.Audit.Mode)
	if err != nil {
		log.Fatal("Invalid audit mode", zap.Error(err))
	}
	repos := persistence.NewRepositories(db.DB)
	trail := appaudit.NewTrail(repos.AuditRepo(), auditMode, log)
	bus := event.NewInMemoryEventBus(log)
	runner := common.NewRunner(persistence.NewGormTransactionScope(db.DB), trail, log,
		common.WithEventPublisher(bus),
	)

	// Application services
	ledger := inventoryapp.NewLedger(cfg.Inventory.AllowNegativeStock)
	partService := inventoryapp.NewPartService(runner, ledger, repos, inventoryapp.PartServiceConfig{
		BarcodeAttempts: cfg.Inventory.BarcodeAttempts,
	}, log)
	invoiceService := financeapp.NewInvoiceService(runner, repos, log)
	supplierInvoiceService := financeapp.NewSupplierInvoiceService(runner, repos, financeapp.SupplierInvoiceConfig{
		DueDays: cfg.Billing.SupplierDueDays,
	}, log)
	purchaseOrderService := tradeapp.NewPurchaseOrderService(runner, ledger, supplierInvoiceService, repos, log)
	returnService := tradeapp.NewReturnService(runner, ledger, repos, tradeapp.ReturnConfig{
		CreditValidityDays: cfg.Billing.CreditValidityDays,
	}, log)
	partUsageService := repairapp.NewPartUsageService(runner, ledger, repos, log)
	deviceService := repairapp.NewDeviceService(runner, repos)

	if meterProvider.IsEnabled() {
		engineMetrics, err := telemetry.NewEngineMetrics(telemetry.EngineMetricsConfig{
			Meter:    meterProvider.Meter("fixdesk.engine"),
			Logger:   log,
			LowStock: telemetry.NewGormLowStockCounter(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to create engine metrics", zap.Error(err))
		}
		ledger.SetMetrics(engineMetrics)
		invoiceService.SetMetrics(engineMetrics)
		supplierInvoiceService.SetMetrics(engineMetrics)
		returnService.SetMetrics(engineMetrics)
		engineMetrics.StartLowStockCollection(ctx, cfg.Telemetry.MetricsInterval)
		defer engineMetrics.Stop()
	}

	// Event subscribers. Inbound events are deduplicated by id; the low
	// stock alert is raised internally and delivered once.
	bus.Subscribe(inventoryapp.NewLowStockHandler(log))
	event.SubscribeIdempotent(bus, store, shared.IdempotencyConfig{
		TTL:            cfg.Event.IdempotencyTTL,
		Enabled:        cfg.Event.IdempotencyEnabled,
		RetryOnFailure: cfg.Event.RetryOnFailure,
	}, log,
		repairapp.NewPartConsumedHandler(partUsageService, log),
		tradeapp.NewPurchaseOrderReceivedHandler(purchaseOrderService, log),
		tradeapp.NewPurchaseReturnApprovedHandler(returnService, log),
		financeapp.NewPaymentRecordedHandler(invoiceService, log),
	)
	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)

	// Scheduled sweeps
	sweeps, err := scheduler.New(scheduler.Config{
		Enabled:    cfg.Scheduler.Enabled,
		Interval:   cfg.Scheduler.SweepInterval,
		JobTimeout: cfg.Scheduler.JobTimeout,
		LockTTL:    cfg.Scheduler.LockTTL,
	}, log,
		scheduler.Sweep{Name: "supplier_overdue", Run: func(ctx context.Context, asOf time.Time) (int, error) {
			return supplierInvoiceService.MarkOverdue(ctx, asOf, sweepActor)
		}},
		scheduler.Sweep{Name: "credit_expiry", Run: func(ctx context.Context, asOf time.Time) (int, error) {
			return returnService.ExpireCreditNotes(ctx, asOf, sweepActor)
		}},
	)
	if err != nil {
		log.Fatal("Failed to create sweep scheduler", zap.Error(err))
	}
	if cfg.Scheduler.DistributedLock {
		lockClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect sweep lock to Redis", zap.Error(err))
		}
		defer func() { _ = lockClient.Close() }()
		sweeps.SetLocker(scheduler.NewRedisLocker(lockClient))
	}
	if err := sweeps.Start(ctx); err != nil {
		log.Fatal("Failed to start sweep scheduler", zap.Error(err))
	}
	defer func() {
		if err := sweeps.Stop(context.Background()); err != nil {
			log.Error("Error stopping sweep scheduler", zap.Error(err))
		}
	}()

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateWindow)
		defer limiter.Stop()
	}
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSOrigins

	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.App.Name,
		Logger:         log,
		TracingEnabled: tracerProvider.IsEnabled(),
		Meter:          httpMeter(meterProvider),
		TrustedProxies: cfg.HTTP.TrustedProxies,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		RateLimiter:    limiter,
		CORS:           cors,
		Secure: middleware.SecureConfig{
			SSLRedirect: cfg.HTTP.SSLRedirect,
			STSSeconds:  cfg.HTTP.HSTSSeconds,
		},
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	router.NewRouter(engine,
		router.WithHealthCheck("database", func(context.Context) error { return db.Ping() }),
	).
		Register(handler.NewPartHandler(partService)).
		Register(handler.NewInvoiceHandler(invoiceService)).
		Register(handler.NewSupplierInvoiceHandler(supplierInvoiceService)).
		Register(handler.NewPurchaseOrderHandler(purchaseOrderService)).
		Register(handler.NewPurchaseReturnHandler(returnService)).
		Register(handler.NewRepairHandler(partUsageService, deviceService)).
		Register(handler.NewAuditHandler(trail)).
		Register(handler.NewEventHandler(serializer, bus)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}

func httpMeter(mp *telemetry.MeterProvider) metric.Meter {
	if !mp.IsEnabled() {
		return nil
	}
	return mp.Meter("fixdesk.http")
}

func shutdownTelemetry(log *zap.Logger, tp *telemetry.TracerProvider, mp *telemetry.MeterProvider, lp *telemetry.LoggerProvider) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := mp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := lp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
}

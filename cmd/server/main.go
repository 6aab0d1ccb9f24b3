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
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	appacademic "github.com/schoolerp/backend/internal/application/academic"
	appbilling "github.com/schoolerp/backend/internal/application/billing"
	"github.com/schoolerp/backend/internal/domain/academic"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/infrastructure/cache"
	"github.com/schoolerp/backend/internal/infrastructure/config"
	"github.com/schoolerp/backend/internal/infrastructure/logger"
	"github.com/schoolerp/backend/internal/infrastructure/persistence"
	"github.com/schoolerp/backend/internal/infrastructure/telemetry"
	"github.com/schoolerp/backend/internal/interfaces/http/handler"
	"github.com/schoolerp/backend/internal/interfaces/http/router"
)

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
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting school fee ledger backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, gormlogger.Warn)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if cfg.Telemetry.Enabled {
		if err := telemetry.EnableDBTracing(db.DB, cfg.Database.DBName, log); err != nil {
			log.Fatal("Failed to enable database tracing", zap.Error(err))
		}
	}

	// Repositories
	periodRepo := persistence.NewGormAcademicPeriodRepository(db.DB)
	termRepo := persistence.NewGormTermRepository(db.DB)
	studentRepo := persistence.NewGormStudentRepository(db.DB)
	recordRepo := persistence.NewGormAcademicRecordRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepositoryWithPrefix(db.DB, cfg.Billing.PaymentNumberPrefix)
	allocRepo := persistence.NewGormPaymentAllocationRepository(db.DB)
	creditRepo := persistence.NewGormCreditLedgerRepository(db.DB)
	feeRepo := persistence.NewGormExpectedFeeRepository(db.DB)
	snapshotRepo := persistence.NewGormFeeSnapshotRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Idempotency store guards batch carry-forward runs
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.Idempotency.RequireRedis),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	idemConfig := shared.IdempotencyConfig{
		Enabled: cfg.Idempotency.Enabled,
		TTL:     cfg.Idempotency.TTL,
	}

	// Application services
	eligibility := academic.NewTermEligibilityResolver(termRepo, recordRepo)
	academicService := appacademic.NewAcademicService(periodRepo, termRepo, studentRepo, recordRepo, log)
	paymentService := appbilling.NewPaymentService(txScope, paymentRepo, studentRepo, termRepo, log)
	feeScheduleService := appbilling.NewFeeScheduleService(txScope, feeRepo, termRepo, log)
	allocationService := appbilling.NewAllocationService(txScope, paymentRepo, allocRepo, feeRepo, studentRepo, eligibility, log)
	creditService := appbilling.NewCreditService(txScope, creditRepo, log)
	carryForwardService := appbilling.NewCarryForwardService(txScope, feeRepo, allocRepo, recordRepo, termRepo, idempotencyStore, idemConfig, log)
	feeStatusService := appbilling.NewFeeStatusService(feeRepo, allocRepo, creditRepo, snapshotRepo, recordRepo, termRepo, log)

	// HTTP layer
	r := router.New(router.Config{
		APIVersion:     "v1",
		AllowedOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowedMethods: cfg.HTTP.CORSAllowMethods,
		AllowedHeaders: cfg.HTTP.CORSAllowHeaders,
		TracingEnabled: cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
	}, log)
	r.Register(handler.NewAcademicHandler(academicService)).
		Register(handler.NewPaymentHandler(paymentService, allocationService)).
		Register(handler.NewFeeHandler(feeScheduleService, feeStatusService)).
		Register(handler.NewCreditHandler(creditService)).
		Register(handler.NewCarryForwardHandler(carryForwardService))
	r.Setup()

	engine := r.Engine()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if err := idempotencyStore.Close(); err != nil {
		log.Error("Idempotency store close failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer shutdown failed", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Database close failed", zap.Error(err))
	}
	log.Info("Shutdown complete")
}

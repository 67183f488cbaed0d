package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/mobility/pkg/assessment"
	"github.com/synaptica-ai/mobility/pkg/clinical"
	"github.com/synaptica-ai/mobility/pkg/common/config"
	"github.com/synaptica-ai/mobility/pkg/common/database"
	"github.com/synaptica-ai/mobility/pkg/common/kafka"
	"github.com/synaptica-ai/mobility/pkg/common/logger"
	"github.com/synaptica-ai/mobility/pkg/gateway/middleware"
	"github.com/synaptica-ai/mobility/pkg/observability/metrics"
)

const serviceName = "mobility-service"

func main() {
	logger.Init(serviceName)
	cfg := config.Load()

	vocab, err := clinical.LoadVocabulary(cfg.VocabularyPath)
	if err != nil {
		logger.Log.WithError(err).WithField("path", cfg.VocabularyPath).Warn("Vocabulary not loaded, using defaults")
		vocab = clinical.DefaultVocabulary()
	}

	deps := assessment.Dependencies{}
	checks := map[string]assessment.ReadinessCheck{}
	var audits assessment.AuditLister

	redisClient := database.GetRedis(cfg)
	defer database.CloseRedis()
	counter := metrics.NewDailyCounter(redisClient, cfg.MetricsCounterTTL)
	deps.Counter = counter
	checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }

	if cfg.AuditEnabled {
		db, err := database.GetPostgres(cfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("Audit enabled but PostgreSQL unavailable")
		}
		defer database.ClosePostgres()

		repo := assessment.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to migrate audit table")
		}
		deps.Audit = repo
		audits = repo
		checks["postgres"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.AssessmentTopic)
	defer producer.Close()
	deps.Events = producer

	if cfg.BaseCalculatorURL != "" {
		deps.BaseCalculator = assessment.NewBaseCalculatorClient(cfg.BaseCalculatorURL, cfg.BaseCalculatorTimeout, cfg.BaseCalculatorRetries)
	}

	service := assessment.NewService(
		assessment.NewEngine(vocab),
		assessment.NewValidator(cfg.StrictEnums),
		deps,
		serviceName,
	)

	// Setup router
	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.CORS)
	router.Use(middleware.BodyLimit(cfg.MaxRequestBody))
	router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	assessment.NewHTTPHandler(service, audits, checks).WithDailyStats(counter).Register(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host":         cfg.ServerHost,
			"port":         cfg.ServerPort,
			"strict_enums": cfg.StrictEnums,
			"audit":        cfg.AuditEnabled,
		}).Info("Mobility Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Mobility Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Mobility Service stopped")
}

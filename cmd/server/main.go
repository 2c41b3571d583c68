package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"covenant/internal/audit"
	"covenant/internal/consent/handler"
	"covenant/internal/consent/metrics"
	"covenant/internal/consent/service"
	"covenant/internal/consent/store"
	"covenant/internal/ledger"
	"covenant/internal/platform/config"
	"covenant/internal/platform/database"
	"covenant/internal/platform/health"
	"covenant/internal/platform/kafka/producer"
	"covenant/internal/platform/logger"
	"covenant/internal/platform/middleware"
	platformredis "covenant/internal/platform/redis"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing covenant",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
	)

	healthHandler := health.New(cfg.Environment)

	pool, err := database.New(cfg.Database)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	var consentStore service.Store
	if pool != nil {
		defer pool.Close()
		consentStore = store.NewPostgres(pool.DB())
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
	} else {
		log.Warn("no database configured, using in-memory consent store")
		consentStore = store.NewInMemory()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		healthHandler.RegisterCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(ctx)
		})
	}

	var ledgerClient ledger.Client
	if cfg.Ledger.GatewayURL != "" {
		ledgerClient = ledger.NewGatewayClient(cfg.Ledger.GatewayURL, cfg.Ledger.APIKey,
			ledger.WithTimeout(cfg.Ledger.Timeout))
	} else {
		log.Warn("no ledger gateway configured, using in-process simulator")
		ledgerClient = ledger.NewInMemory()
	}
	if redisClient != nil {
		ledgerClient = ledger.NewCachedClient(ledgerClient, redisClient.Client, cfg.Redis.TrailTTL)
	}

	opts := []service.Option{
		service.WithMetrics(metrics.New()),
		service.WithLedgerTimeout(cfg.Ledger.Timeout),
	}

	if cfg.Kafka.Brokers != "" {
		kafkaProducer, err := producer.New(producer.Config{
			Brokers:         cfg.Kafka.Brokers,
			Retries:         3,
			DeliveryTimeout: 10 * time.Second,
		}, log)
		if err != nil {
			log.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = kafkaProducer.Close(ctx)
		}()

		compliance := audit.NewPublisher(
			audit.NewKafkaSink(kafkaProducer, cfg.Kafka.ComplianceTopic),
			audit.WithAsyncBuffer(256),
			audit.WithLogger(log),
		)
		defer compliance.Close()
		opts = append(opts, service.WithCompliancePublisher(compliance))
	}

	consentService := service.NewService(consentStore, ledgerClient, log, opts...)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Timeout(30 * time.Second))

	healthHandler.Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Route("/api", func(r chi.Router) {
		handler.New(consentService, log).Register(r)
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

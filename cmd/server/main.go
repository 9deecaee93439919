// Package main provides the API server entry point for the fanbacker service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fanbacker/internal/api"
	"github.com/fanbacker/internal/config"
	"github.com/fanbacker/internal/logging"
	"github.com/fanbacker/internal/service"
	"github.com/fanbacker/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Initialize database connections
	logger.Info("Connecting to databases...")

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	redis, err := storage.NewRedisCache(&cfg.Database.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	// ClickHouse carries the audit trail only; the service runs without it
	var auditRepo *storage.AuditRepository
	clickhouse, err := storage.NewClickHouseDB(&cfg.Database.ClickHouse)
	if err != nil {
		logger.WithError(err).Warn("ClickHouse unavailable, audit trail disabled")
	} else {
		defer clickhouse.Close()
		auditRepo = storage.NewAuditRepository(clickhouse)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := auditRepo.EnsureSchema(ctx); err != nil {
			logger.WithError(err).Warn("Failed to ensure audit schema, audit trail disabled")
			auditRepo = nil
		}
		cancel()
	}

	logger.Info("Database connections established")

	// Initialize repositories
	userRepo := storage.NewUserRepository(postgres)
	campaignRepo := storage.NewCampaignRepository(postgres)
	walletRepo := storage.NewWalletRepository(postgres)
	holdingRepo := storage.NewHoldingRepository(postgres)
	revenueRepo := storage.NewRevenueRepository(postgres)

	// Initialize cache service
	cacheService := storage.NewCacheService(redis, cfg.Cache.TTL)

	// Initialize services
	logger.Info("Initializing services...")

	auditService := service.NewAuditService(auditRepo, logger)
	economicsService := service.NewEconomicsService()
	predictionService := service.NewPredictionService()
	returnsService := service.NewReturnsService(cfg.Policy.MinInvestment)

	campaignService := service.NewCampaignService(
		postgres, campaignRepo, holdingRepo, revenueRepo, userRepo,
		economicsService, predictionService, cacheService,
		auditService, auditRepo, logger,
	)
	walletService := service.NewWalletService(postgres, walletRepo, auditService, cfg.Policy, logger)
	investmentService := service.NewInvestmentService(
		postgres, campaignRepo, holdingRepo, walletRepo,
		cacheService, auditService, logger,
	)
	distributionService := service.NewDistributionService(
		postgres, campaignRepo, holdingRepo, walletRepo, revenueRepo,
		cacheService, auditService, cfg.Policy, logger,
	)
	portfolioService := service.NewPortfolioService(
		campaignRepo, holdingRepo, walletRepo, predictionService, logger,
	)

	logger.Info("Services initialized")

	// Sweep live campaigns past their end date to failed
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go campaignService.RunExpirySweep(sweepCtx, cfg.Lifecycle.ExpirySweepInterval)

	// Create server configuration
	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		ArtistRPS:       cfg.RateLimit.ArtistRPS,
		InvestorRPS:     cfg.RateLimit.InvestorRPS,
		AnonymousRPS:    cfg.RateLimit.AnonymousRPS,
	}

	server := api.NewServer(
		serverConfig,
		campaignService, investmentService, walletService,
		distributionService, portfolioService, returnsService,
		userRepo,
	)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fanbacker/internal/logging"
	"github.com/fanbacker/internal/models"
	"github.com/fanbacker/internal/service"
	"github.com/fanbacker/internal/storage"
	"github.com/fanbacker/internal/types"
)

// Service interfaces for dependency injection and testing

// CampaignServiceInterface defines the interface for campaign operations
type CampaignServiceInterface interface {
	Create(ctx context.Context, artistID string, in service.CreateCampaignInput) (*service.CampaignDetails, error)
	Get(ctx context.Context, campaignID string) (*service.CampaignDetails, error)
	ListLive(ctx context.Context) ([]*service.CampaignDetails, error)
	ListByArtist(ctx context.Context, artistID string) ([]*service.CampaignDetails, error)
	Predict(ctx context.Context, campaignID string) (*service.RevenuePrediction, error)
	Publish(ctx context.Context, callerID, campaignID string, startDate, endDate *time.Time) (*models.Campaign, error)
	Close(ctx context.Context, callerID, campaignID string) (*models.Campaign, error)
	Analytics(ctx context.Context, campaignID string) (*service.CampaignAnalytics, error)
}

// InvestmentServiceInterface defines the interface for investment operations
type InvestmentServiceInterface interface {
	Execute(ctx context.Context, investorID string, req service.InvestmentRequest) (*service.InvestmentResult, error)
}

// WalletServiceInterface defines the interface for wallet operations
type WalletServiceInterface interface {
	Deposit(ctx context.Context, userID string, amount types.Money) (*models.Wallet, *models.WalletTransaction, error)
	Withdraw(ctx context.Context, userID string, amount types.Money) (*models.Wallet, *models.WalletTransaction, error)
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)
	History(ctx context.Context, userID string, page, pageSize int) (*service.WalletHistory, error)
}

// DistributionServiceInterface defines the interface for revenue operations
type DistributionServiceInterface interface {
	Report(ctx context.Context, callerID, campaignID string, amount types.Money, source, reportingEventID string) (*models.RevenueEvent, error)
	Distribute(ctx context.Context, callerID, reportingEventID string) (*models.Distribution, error)
}

// PortfolioServiceInterface defines the interface for portfolio operations
type PortfolioServiceInterface interface {
	Get(ctx context.Context, investorID string) (*service.Portfolio, error)
}

// ReturnsServiceInterface defines the interface for the returns calculator
type ReturnsServiceInterface interface {
	Calculate(amount float64, pred *service.RevenuePrediction, poolPct float64) (*service.InvestorReturns, error)
}

// Server represents the HTTP API server.
type Server struct {
	router              *mux.Router
	httpServer          *http.Server
	campaignService     CampaignServiceInterface
	investmentService   InvestmentServiceInterface
	walletService       WalletServiceInterface
	distributionService DistributionServiceInterface
	portfolioService    PortfolioServiceInterface
	returnsService      ReturnsServiceInterface
	userRepo            *storage.UserRepository
	config              *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	ArtistRPS       int
	InvestorRPS     int
	AnonymousRPS    int
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	campaignService CampaignServiceInterface,
	investmentService InvestmentServiceInterface,
	walletService WalletServiceInterface,
	distributionService DistributionServiceInterface,
	portfolioService PortfolioServiceInterface,
	returnsService ReturnsServiceInterface,
	userRepo *storage.UserRepository,
) *Server {
	s := &Server{
		router:              mux.NewRouter(),
		campaignService:     campaignService,
		investmentService:   investmentService,
		walletService:       walletService,
		distributionService: distributionService,
		portfolioService:    portfolioService,
		returnsService:      returnsService,
		userRepo:            userRepo,
		config:              config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.ArtistRPS, s.config.InvestorRPS, s.config.AnonymousRPS)

	// Middleware order matters
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))
	s.router.Use(IdentityMiddleware)
	s.router.Use(CompressionMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// API v1 routes
	api := s.router.PathPrefix("/api").Subrouter()

	// User endpoints
	api.HandleFunc("/users", s.handleCreateUser).Methods("POST")
	api.HandleFunc("/users/{id}", s.handleGetUser).Methods("GET")

	// Campaign endpoints
	api.HandleFunc("/campaigns", s.handleCreateCampaign).Methods("POST")
	api.HandleFunc("/campaigns", s.handleListCampaigns).Methods("GET")
	api.HandleFunc("/campaigns/{id}", s.handleGetCampaign).Methods("GET")
	api.HandleFunc("/campaigns/{id}/publish", s.handlePublishCampaign).Methods("POST")
	api.HandleFunc("/campaigns/{id}/close", s.handleCloseCampaign).Methods("POST")
	api.HandleFunc("/campaigns/{id}/prediction", s.handleGetPrediction).Methods("GET")
	api.HandleFunc("/campaigns/{id}/returns", s.handleCalculateReturns).Methods("GET")
	api.HandleFunc("/campaigns/{id}/analytics", s.handleGetAnalytics).Methods("GET")

	// Investment endpoints
	api.HandleFunc("/campaigns/{id}/invest", s.handleInvest).Methods("POST")
	api.HandleFunc("/portfolio", s.handleGetPortfolio).Methods("GET")

	// Revenue endpoints
	api.HandleFunc("/campaigns/{id}/revenue", s.handleReportRevenue).Methods("POST")
	api.HandleFunc("/revenue/{reportingEventId}/distribute", s.handleDistribute).Methods("POST")

	// Wallet endpoints
	api.HandleFunc("/wallet", s.handleGetWallet).Methods("GET")
	api.HandleFunc("/wallet/deposit", s.handleDeposit).Methods("POST")
	api.HandleFunc("/wallet/withdraw", s.handleWithdraw).Methods("POST")
	api.HandleFunc("/wallet/transactions", s.handleGetTransactions).Methods("GET")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "fanbacker",
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.WithField("addr", s.httpServer.Addr).Info("Starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}

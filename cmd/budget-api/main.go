package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epson121/budget/internal/config"
	"github.com/epson121/budget/internal/database"
	"github.com/epson121/budget/internal/handlers"
	"github.com/epson121/budget/internal/middleware"
	"github.com/epson121/budget/internal/repositories"
	"github.com/epson121/budget/internal/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	tokenCleanupInterval = time.Hour
	authRatePerSecond    = 1
	authRateBurst        = 5
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.Initialize(cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err, "driver", cfg.Database.Driver)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.CleanupExpiredTokens(); err != nil {
		logger.Warn("Initial token cleanup failed", "error", err)
	}

	userRepo := repositories.NewUserRepository(db.DB)
	categoryRepo := repositories.NewCategoryRepository(db.DB)
	transactionRepo := repositories.NewTransactionRepository(db.DB)
	ledgerRepo := repositories.NewLedgerRepository(db.DB)
	auditRepo := repositories.NewAuditLogRepository(db.DB)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db.DB)
	blacklistedTokenRepo := repositories.NewBlacklistedTokenRepository(db.DB)

	metrics := services.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	auditLogger := services.NewAuditLogger(logger)
	auditService := services.NewAuditService(auditRepo, logger)
	passwordService := services.NewPasswordService(cfg.Security)
	tokenService := services.NewTokenService(&cfg.JWT)
	authService := services.NewAuthService(
		userRepo,
		refreshTokenRepo,
		auditRepo,
		blacklistedTokenRepo,
		passwordService,
		tokenService,
		cfg.Security.MaxFailedAttempts,
		logger,
	)
	ledger := services.NewLedgerService(ledgerRepo, auditLogger, metrics, logger)
	filters := services.NewFilterEngine()
	categoryService := services.NewCategoryService(categoryRepo, auditService, metrics, logger)
	transactionService := services.NewTransactionService(
		transactionRepo,
		categoryRepo,
		ledger,
		filters,
		auditService,
		auditLogger,
		metrics,
		logger,
	)
	userService := services.NewUserService(userRepo, transactionRepo, filters, auditLogger, metrics, logger)

	router := &handlers.Router{
		Auth:         handlers.NewAuthHandler(authService),
		Users:        handlers.NewUserHandler(userService, auditService),
		Categories:   handlers.NewCategoryHandler(categoryService),
		Transactions: handlers.NewTransactionHandler(transactionService),
		Health:       handlers.NewHealthCheckHandler(db.DB),
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler
	e.Validator = handlers.NewValidator()

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization, middleware.TraceIDHeader},
	}))
	e.Use(echomw.BodyLimit("1M"))
	e.Use(middleware.RateLimiterWithConfig(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitPerSecond*2))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	router.Register(e,
		middleware.RequireAuth(tokenService, blacklistedTokenRepo),
		middleware.RateLimiterWithConfig(authRatePerSecond, authRateBurst),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go cleanupTokens(ctx, logger, refreshTokenRepo, blacklistedTokenRepo)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting budget API", "addr", srv.Addr, "env", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	logger.Info("Server stopped gracefully")
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}

	format := cfg.Log.Format
	if format == "" && cfg.IsProduction() {
		format = "json"
	}

	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// cleanupTokens drops expired refresh tokens and blacklist entries until ctx is done
func cleanupTokens(
	ctx context.Context,
	logger *slog.Logger,
	refreshTokens repositories.RefreshTokenRepositoryInterface,
	blacklist repositories.BlacklistedTokenRepositoryInterface,
) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refreshed, err := refreshTokens.DeleteExpired()
			if err != nil {
				logger.Warn("Failed to delete expired refresh tokens", "error", err)
			}
			revoked, err := blacklist.DeleteExpired()
			if err != nil {
				logger.Warn("Failed to delete expired blacklist entries", "error", err)
			}
			logger.Debug("Token cleanup finished", "refresh_tokens", refreshed, "blacklisted_tokens", revoked)
		}
	}
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/trubalance/trubalance-backend/internal/config"
	"github.com/trubalance/trubalance-backend/internal/handler"
	"github.com/trubalance/trubalance-backend/internal/middleware"
	"github.com/trubalance/trubalance-backend/internal/repository/postgres"
	"github.com/trubalance/trubalance-backend/internal/repository/storage"
	"github.com/trubalance/trubalance-backend/internal/service"
	"github.com/trubalance/trubalance-backend/internal/websocket"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	profileRepo := postgres.NewBusinessProfileRepository(pool)
	incomeRepo := postgres.NewIncomeRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	budgetRepo := postgres.NewBudgetRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)

	// Object storage is optional; without credentials the receipt and
	// logo endpoints answer 503
	var receiptService *service.ReceiptService
	if cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "" {
		objectRepo, err := storage.NewS3ObjectRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize object storage")
		}
		receiptService = service.NewReceiptService(objectRepo)
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Object storage enabled")
	} else {
		receiptService = service.NewReceiptService(nil)
		log.Warn().Msg("Object storage not configured; file uploads disabled")
	}

	// Initialize services
	gstService := service.NewGSTService()
	categorizer := service.NewCategorizerService(log.Logger)
	optimizer := service.NewBudgetOptimizerService()
	numberService := service.NewInvoiceNumberService(invoiceRepo)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.BcryptCost)
	clientService := service.NewClientService(clientRepo, gstService)
	profileService := service.NewBusinessProfileService(profileRepo, gstService)
	incomeService := service.NewIncomeService(incomeRepo, categorizer)
	expenseService := service.NewExpenseService(expenseRepo, categorizer)
	budgetService := service.NewBudgetService(budgetRepo, expenseRepo, incomeRepo, optimizer)
	invoiceService := service.NewInvoiceService(invoiceRepo, clientRepo, profileRepo, gstService, numberService)
	statsService := service.NewStatsService(incomeRepo, expenseRepo)
	insightsService := service.NewInsightsService(incomeRepo, expenseRepo, budgetRepo, optimizer)

	// WebSocket hub; mutations fan out to the owning user's connections
	hub := websocket.NewHub()
	clientService.SetEventPublisher(hub)
	incomeService.SetEventPublisher(hub)
	expenseService.SetEventPublisher(hub)
	budgetService.SetEventPublisher(hub)
	invoiceService.SetEventPublisher(hub)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware([]byte(cfg.JWTSecret))
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Initialize handlers
	handlers := &handler.Handlers{
		Auth:            handler.NewAuthHandler(authService),
		Client:          handler.NewClientHandler(clientService),
		BusinessProfile: handler.NewBusinessProfileHandler(profileService, receiptService),
		Income:          handler.NewIncomeHandler(incomeService),
		Expense:         handler.NewExpenseHandler(expenseService, receiptService),
		Budget:          handler.NewBudgetHandler(budgetService),
		Invoice:         handler.NewInvoiceHandler(invoiceService),
		GST:             handler.NewGSTHandler(gstService),
		Stats:           handler.NewStatsHandler(statsService),
		Insights:        handler.NewInsightsHandler(insightsService),
		WebSocket:       handler.NewWebSocketHandler(hub, websocket.NewJWTValidator(cfg.JWTSecret), cfg.CORSOrigins),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, handlers)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}

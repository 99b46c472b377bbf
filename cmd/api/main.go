package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/config"
	"github.com/dafibh/clinica/clinica-backend/internal/handler"
	"github.com/dafibh/clinica/clinica-backend/internal/middleware"
	"github.com/dafibh/clinica/clinica-backend/internal/notify"
	"github.com/dafibh/clinica/clinica-backend/internal/repository/postgres"
	"github.com/dafibh/clinica/clinica-backend/internal/repository/storage"
	"github.com/dafibh/clinica/clinica-backend/internal/service"
	"github.com/dafibh/clinica/clinica-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title Clinica API
// @version 1.0
// @description Agenda, patients, expenses and public booking for small clinics
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
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

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
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
	clinicRepo := postgres.NewClinicRepository(pool)
	patientRepo := postgres.NewPatientRepository(pool)
	appointmentRepo := postgres.NewAppointmentRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)

	// Realtime hub
	hub := websocket.NewHub()

	// Patient notifications
	var notifier notify.Notifier = notify.NoOpNotifier{}
	if cfg.AMQP.URL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.AMQP.URL, cfg.AMQP.ExchangeName, cfg.AMQP.QueueName)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to AMQP broker")
		}
		defer amqpNotifier.Close()
		notifier = amqpNotifier
		log.Info().Str("exchange", cfg.AMQP.ExchangeName).Msg("AMQP notifications enabled")
	} else {
		log.Warn().Msg("AMQP_URL not set, patient notifications disabled")
	}

	// Receipt storage is optional
	var objectStore storage.ObjectStore
	if cfg.S3.Enabled() {
		s3Store, err := storage.NewS3Store(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
		}
		objectStore = s3Store
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Receipt storage enabled")
	} else {
		log.Warn().Msg("S3_BUCKET not set, receipt uploads disabled")
	}

	if cfg.Payments.WebhookSecret == "" {
		log.Warn().Msg("PAYMENTS_WEBHOOK_SECRET not set, every webhook will be rejected")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, clinicRepo)
	clinicService := service.NewClinicService(clinicRepo)
	patientService := service.NewPatientService(patientRepo)
	patientService.SetEventPublisher(hub)
	agendaService := service.NewAgendaService(appointmentRepo, patientRepo, clinicRepo)
	agendaService.SetEventPublisher(hub)
	agendaService.SetNotifier(notifier)
	expenseService := service.NewExpenseService(expenseRepo)
	expenseService.SetEventPublisher(hub)
	receiptService := service.NewReceiptService(objectStore, expenseRepo)
	dashboardService := service.NewDashboardService(clinicRepo, appointmentRepo, expenseRepo)
	publicService := service.NewPublicSchedulingService(clinicRepo, appointmentRepo, patientService, agendaService)
	paymentService := service.NewPaymentService(paymentRepo, appointmentRepo, cfg.Payments.WebhookSecret, cfg.Payments.Currency)
	paymentService.SetEventPublisher(hub)

	// AuthService resolves the caller's clinic for both HTTP and WebSocket auth
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, authService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}
	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, authService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket token validator")
	}

	publicLimiter := middleware.NewRateLimiterWithConfig(cfg.PublicRateLimit, cfg.PublicBurstSize)
	defer publicLimiter.Stop()

	// Initialize handlers
	handlers := &handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Clinic:    handler.NewClinicHandler(clinicService),
		Patient:   handler.NewPatientHandler(patientService),
		Agenda:    handler.NewAgendaHandler(agendaService),
		Expense:   handler.NewExpenseHandler(expenseService),
		Receipt:   handler.NewReceiptHandler(receiptService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Public:    handler.NewPublicHandler(publicService),
		Payment:   handler.NewPaymentHandler(paymentService),
		WebSocket: handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins),
		OpenAPI:   handler.NewOpenAPI3Handler(handler.OpenAPIServers(cfg.Port, cfg.PublicURL)),
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
		return c.JSON(http.StatusOK, map[string]any{
			"status":    "ok",
			"wsClients": hub.TotalClientCount(),
		})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, publicLimiter, handlers)

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
		log.Error().Err(err).Msg("Server forced to shutdown")
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

			event := log.Info()
			if res.Status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
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

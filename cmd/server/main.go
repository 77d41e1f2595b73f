package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/pingpal/pingpal-server/internal/config"
	"github.com/pingpal/pingpal-server/internal/database"
	"github.com/pingpal/pingpal-server/internal/handlers"
	"github.com/pingpal/pingpal-server/internal/identity"
	"github.com/pingpal/pingpal-server/internal/logging"
	"github.com/pingpal/pingpal-server/internal/middleware"
	"github.com/pingpal/pingpal-server/internal/push"
	"github.com/pingpal/pingpal-server/internal/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	// Initialize logger
	logger := logging.New()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := logging.ParseLevel(cfg.Server.LogLevel)
	logger.SetLevel(level)
	logging.SetDefaultLevel(level)

	logger.Info("Starting PingPal server...")

	// Connect to PostgreSQL
	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(context.Background(), cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.Database.DSN(), "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("Migrations completed")

	// Connect to Redis
	logger.Info("Connecting to Redis", map[string]interface{}{
		"addr": cfg.Redis.Addr(),
	})
	redisDB, err := database.NewRedisDB(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()
	logger.Info("Connected to Redis")

	// Firebase is optional: without credentials the server runs with
	// session-only auth and log-only push delivery.
	var verifier identity.Verifier
	var sender push.Sender
	if cfg.Firebase.CredentialsFile != "" {
		app, err := firebase.NewApp(context.Background(), nil, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
		if err != nil {
			return fmt.Errorf("initializing firebase: %w", err)
		}
		verifier, err = identity.NewFirebaseVerifier(context.Background(), app)
		if err != nil {
			return fmt.Errorf("initializing firebase auth: %w", err)
		}
		sender, err = push.NewFCMSender(context.Background(), app, logger)
		if err != nil {
			return fmt.Errorf("initializing fcm: %w", err)
		}
		logger.Info("Firebase initialized")
	} else {
		verifier = identity.DisabledVerifier{}
		sender = push.NewLogSender(logger)
		logger.Warn("No Firebase credentials configured; ID tokens are rejected and pushes are logged only")
	}

	// Initialize services
	dbAdapter := services.NewPoolAdapter(db.Pool)
	redisAdapter := services.NewRedisAdapter(redisDB.Client)

	profileService := services.NewProfileService(dbAdapter)
	inviteService := services.NewInviteService(dbAdapter)
	notificationService := services.NewNotificationService(dbAdapter, sender, logger)
	muteService := services.NewMuteService(dbAdapter)
	apiKeyService := services.NewAPIKeyService(dbAdapter)
	sessionService := services.NewSessionService(dbAdapter, redisAdapter)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, redisDB)
	authHandler := handlers.NewAuthHandler(sessionService)
	profileHandler := handlers.NewProfileHandler(profileService, sessionService)
	inviteHandler := handlers.NewInviteHandler(inviteService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	muteHandler := handlers.NewMuteHandler(muteService)
	webhookHandler := handlers.NewWebhookHandler(apiKeyService, notificationService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(verifier, sessionService, profileService)
	requestLogger := middleware.NewRequestLogger(logger)

	requireAuth := authMiddleware.RequireAuth

	// Set up router
	mux := http.NewServeMux()

	// Health endpoints (no auth)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	// Auth endpoints
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.Handle("POST /api/logout", requireAuth(http.HandlerFunc(authHandler.Logout)))

	// Profile endpoints
	mux.Handle("POST /api/profile", requireAuth(http.HandlerFunc(profileHandler.Create)))
	mux.Handle("GET /api/profile", requireAuth(http.HandlerFunc(profileHandler.Get)))
	mux.Handle("GET /api/friends", requireAuth(http.HandlerFunc(profileHandler.Friends)))
	mux.Handle("POST /api/device-token", requireAuth(http.HandlerFunc(profileHandler.UpdateDeviceToken)))

	// Invite endpoints
	mux.Handle("POST /api/invites", requireAuth(http.HandlerFunc(inviteHandler.Create)))
	mux.Handle("GET /api/invites", requireAuth(http.HandlerFunc(inviteHandler.ListActive)))
	mux.Handle("POST /api/invites/accept", requireAuth(http.HandlerFunc(inviteHandler.Accept)))
	mux.Handle("POST /api/invites/revoke", requireAuth(http.HandlerFunc(inviteHandler.Revoke)))

	// Notification endpoints
	mux.Handle("POST /api/yo", requireAuth(http.HandlerFunc(notificationHandler.SendYo)))
	mux.Handle("GET /api/notifications", requireAuth(http.HandlerFunc(notificationHandler.List)))
	mux.Handle("POST /api/notifications/{id}/read", requireAuth(http.HandlerFunc(notificationHandler.MarkRead)))

	// Mute endpoints
	mux.Handle("POST /api/mutes", requireAuth(http.HandlerFunc(muteHandler.Mute)))
	mux.Handle("POST /api/mutes/remove", requireAuth(http.HandlerFunc(muteHandler.Unmute)))

	// Webhook endpoint (authenticated by API key inside the handler)
	mux.HandleFunc("POST /api/webhooks/trigger", webhookHandler.Trigger)

	// Build middleware chain (order matters: outermost first)
	var handler http.Handler = mux
	handler = authMiddleware.Authenticate(handler)
	handler = middleware.CORS(handler)
	handler = requestLogger.Apply(handler)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{
		"addr": addr,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}

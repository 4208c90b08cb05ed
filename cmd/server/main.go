package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ti-assistant/server/internal/auth"
	"github.com/ti-assistant/server/internal/catalog"
	"github.com/ti-assistant/server/internal/config"
	"github.com/ti-assistant/server/internal/gc"
	"github.com/ti-assistant/server/internal/handler"
	"github.com/ti-assistant/server/internal/logger"
	"github.com/ti-assistant/server/internal/middleware"
	"github.com/ti-assistant/server/internal/milty"
	"github.com/ti-assistant/server/internal/repository/postgres"
	redisrepo "github.com/ti-assistant/server/internal/repository/redis"
	"github.com/ti-assistant/server/internal/service"
)

func main() {
	logger.Init()
	catalog.Init()
	cfg := config.Load()
	log.Info().Str("databaseURL", cfg.DatabaseURL).Msg("Config loaded")

	// Database
	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	if cfg.Migrate {
		if err := postgres.Migrate(cfg.DatabaseURL, "migrations"); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
	}

	// Redis
	redisClient, err := redisrepo.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	// Enable keyspace notifications so the Inactivity Collector hears
	// idle-key expiry instead of relying solely on its cron sweep.
	if err := redisClient.EnableExpiryNotifications(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Failed to set Redis keyspace notifications (idle expiry will fall back to cron only)")
	}

	// Repos
	eventStore := postgres.NewEventStore(db)
	accountRepo := postgres.NewAccountRepo(db)

	// Auth
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
	googleOAuth := auth.NewGoogleOAuth(
		os.Getenv("GOOGLE_CLIENT_ID"),
		os.Getenv("GOOGLE_CLIENT_SECRET"),
		os.Getenv("GOOGLE_REDIRECT_URL"),
	)

	// WebSocket hub
	wsHub := handler.NewHub()

	// Game service: owns the per-game write lock, the durable event log,
	// and the hot-state cache.
	gameSvc := service.NewGameService(eventStore, redisClient, wsHub)

	// Inactivity Collector: reaps lobbies with zero subscribers.
	collector, err := gc.New(eventStore, wsHub, redisClient, cfg.InactivityCronExpr)
	if err != nil {
		log.Fatal().Err(err).Msg("Inactivity collector schedule invalid")
	}

	// Handlers
	authHandler := handler.NewAuthHandler(googleOAuth, jwtMgr, accountRepo)
	userHandler := handler.NewUserHandler(accountRepo)
	gameHandler := handler.NewGameHandler(gameSvc)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr, gameSvc, milty.NewImporter())

	// Router
	mux := http.NewServeMux()
	authMw := auth.Middleware(jwtMgr)

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth (public)
	mux.HandleFunc("GET /auth/google/login", authHandler.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleCallback)
	mux.HandleFunc("POST /auth/refresh", authHandler.RefreshToken)
	mux.HandleFunc("GET /auth/dev", authHandler.DevLogin)

	// Protected API routes
	api := http.NewServeMux()
	api.HandleFunc("GET /users/me", userHandler.GetMe)
	api.HandleFunc("GET /users/{id}", userHandler.GetUser)
	api.HandleFunc("POST /games", gameHandler.CreateGame)
	api.HandleFunc("GET /games", gameHandler.ListGames)
	api.HandleFunc("GET /games/{id}", gameHandler.GetGame)
	api.HandleFunc("DELETE /games/{id}", gameHandler.DeleteGame)
	api.HandleFunc("POST /games/{id}/events", gameHandler.ApplyEvent)
	api.HandleFunc("POST /games/{id}/undo", gameHandler.Undo)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", authMw(api)))

	// WebSocket (auth via query param, not middleware)
	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Logger, middleware.CORS("*"), middleware.JSON)

	srv := &http.Server{
		Addr:         cfg.Host + ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	collector.Start(ctx)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	cancel()
	collector.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orrery-server/internal/auth"
	"orrery-server/internal/compound"
	"orrery-server/internal/middleware"
	"orrery-server/internal/planet"
	"orrery-server/internal/planettype"
	"orrery-server/internal/server"
	"orrery-server/internal/shared/config"
	"orrery-server/internal/shared/database"
	"orrery-server/internal/shared/logger"
	"orrery-server/internal/shared/redis"
	"orrery-server/internal/system"
	"orrery-server/internal/user"
)

func main() {
	if err := config.Init(); err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Init()
	cfg := config.GlobalConfig

	log := slog.With("component", "main")
	log.Info("Starting orrery server",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
	)

	db, err := database.Connect()
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}()

	if err := db.RunMigrations(); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.Connect()
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis client", "error", err)
		}
	}()

	appLogger := slog.Default()

	userRepo := user.NewRepository(db, appLogger)
	userService := user.NewService(userRepo, appLogger)
	authService := auth.NewService(userService, appLogger)

	planetTypeRepo := planettype.NewRepository(db, appLogger)

	compoundRepo := compound.NewRepository(db, appLogger)
	catalog := compound.NewHTTPCatalog(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)

	// The typed nil from NewRedisCache must not reach the Cache interface,
	// or the resolver's nil check stops working.
	var catalogCache compound.Cache
	if rc := compound.NewRedisCache(redisClient, cfg.Catalog.CacheTTL, appLogger); rc != nil {
		catalogCache = rc
	}
	resolver := compound.NewResolver(compoundRepo, catalog, catalogCache, appLogger)

	systemRepo := system.NewRepository(db, appLogger)
	systemService := system.NewService(db, systemRepo, appLogger)

	planetRepo := planet.NewRepository(db, appLogger)
	planetService := planet.NewService(db, planetRepo, systemRepo, planetTypeRepo, resolver, appLogger)

	oauthConfig := auth.InitOAuth()

	routes := server.NewRoutes(
		db,
		userService,
		authService,
		systemService,
		planetService,
		planetTypeRepo,
		compoundRepo,
		oauthConfig,
		appLogger,
	)
	mux := routes.Setup()

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		Enabled:           cfg.RateLimit.Enabled,
	})
	corsMiddleware := middleware.NewCORS()

	handler := corsMiddleware.Middleware(rateLimiter.Middleware(mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped")
}

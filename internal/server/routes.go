package server

import (
	"log/slog"
	"net/http"

	"orrery-server/internal/auth"
	authHandlers "orrery-server/internal/auth/handlers"
	"orrery-server/internal/compound"
	compoundHandlers "orrery-server/internal/compound/handlers"
	"orrery-server/internal/middleware"
	"orrery-server/internal/planet"
	planetHandlers "orrery-server/internal/planet/handlers"
	"orrery-server/internal/planettype"
	planettypeHandlers "orrery-server/internal/planettype/handlers"
	serverHandlers "orrery-server/internal/server/handlers"
	"orrery-server/internal/shared/database"
	"orrery-server/internal/system"
	systemHandlers "orrery-server/internal/system/handlers"
	"orrery-server/internal/user"
	userHandlers "orrery-server/internal/user/handlers"
)

type Routes struct {
	db             *database.DB
	userService    *user.Service
	authService    *auth.Service
	systemService  *system.Service
	planetService  *planet.Service
	planetTypeRepo *planettype.Repository
	compoundRepo   *compound.Repository
	oauthConfig    *auth.OAuthConfig
	logger         *slog.Logger
}

func NewRoutes(
	db *database.DB,
	userService *user.Service,
	authService *auth.Service,
	systemService *system.Service,
	planetService *planet.Service,
	planetTypeRepo *planettype.Repository,
	compoundRepo *compound.Repository,
	oauthConfig *auth.OAuthConfig,
	logger *slog.Logger,
) *Routes {
	return &Routes{
		db:             db,
		userService:    userService,
		authService:    authService,
		systemService:  systemService,
		planetService:  planetService,
		planetTypeRepo: planetTypeRepo,
		compoundRepo:   compoundRepo,
		oauthConfig:    oauthConfig,
		logger:         logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db)
	meHandler := userHandlers.NewMeHandler(r.userService)
	authHandler := authHandlers.NewAuthHandler(r.authService, r.logger)
	systemHandler := systemHandlers.NewSystemHandler(r.systemService)
	planetHandler := planetHandlers.NewPlanetHandler(r.planetService)
	planetTypeHandler := planettypeHandlers.NewPlanetTypeHandler(r.planetTypeRepo)
	compoundHandler := compoundHandlers.NewCompoundHandler(r.compoundRepo)

	googleAuthHandler := authHandlers.NewGoogleAuthHandler(
		r.oauthConfig.GoogleProvider,
		r.authService,
		r.oauthConfig.GoogleConfigured,
	)

	protected := func(h http.HandlerFunc) http.Handler {
		return middleware.JWTMiddleware(h)
	}

	// Public read endpoints
	mux.Handle("GET /api/server/health", healthHandler)
	mux.HandleFunc("GET /api/planet-types", planetTypeHandler.List)
	mux.HandleFunc("GET /api/planet-types/{id}", planetTypeHandler.Get)
	mux.HandleFunc("GET /api/systems", systemHandler.List)
	mux.HandleFunc("GET /api/systems/{id}", systemHandler.Get)
	mux.HandleFunc("GET /api/systems/{id}/planets", planetHandler.GetBySystemID)
	mux.HandleFunc("GET /api/planets/{id}", planetHandler.Get)
	mux.HandleFunc("GET /api/compounds", compoundHandler.List)

	// Mutations require authentication; ownership is enforced in services
	mux.Handle("POST /api/systems", protected(systemHandler.Create))
	mux.Handle("PATCH /api/systems/{id}", protected(systemHandler.Update))
	mux.Handle("PATCH /api/systems/{id}/star", protected(systemHandler.UpdateStar))
	mux.Handle("DELETE /api/systems/{id}", protected(systemHandler.Delete))
	mux.Handle("POST /api/systems/{id}/planets", protected(planetHandler.Create))
	mux.Handle("PUT /api/planets/{id}", protected(planetHandler.Replace))
	mux.Handle("PATCH /api/planets/{id}", protected(planetHandler.Patch))
	mux.Handle("DELETE /api/planets/{id}", protected(planetHandler.Delete))

	// Account endpoints
	mux.Handle("GET /api/users/me", protected(meHandler.ServeHTTP))
	mux.Handle("PATCH /api/users/me/avatar", protected(meHandler.UpdateAvatar))
	mux.HandleFunc("POST /auth/register", authHandler.HandleRegister)
	mux.HandleFunc("POST /auth/login", authHandler.HandleLogin)
	mux.HandleFunc("POST /auth/logout", authHandler.HandleLogout)

	// OAuth endpoints
	mux.HandleFunc("GET /auth/google", googleAuthHandler.HandleAuth)
	mux.HandleFunc("GET /auth/google/callback", googleAuthHandler.HandleCallback)

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/server/health", "/api/planet-types", "/api/systems", "/api/planets"},
		"protected_endpoints", []string{"/api/systems", "/api/planets", "/api/users/me"},
		"auth_endpoints", []string{"/auth/register", "/auth/login", "/auth/google", "/auth/logout"},
	)

	return mux
}

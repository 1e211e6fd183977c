package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/keyforge/licensing-system/internal/api/handler"
	"github.com/keyforge/licensing-system/internal/api/middleware"
	"github.com/keyforge/licensing-system/internal/core/ports"
	"github.com/keyforge/licensing-system/internal/infrastructure/http/handlers"
)

// Deps carries the wired collaborators the router needs.
type Deps struct {
	Service   ports.LicenseService
	Sessions  handler.SessionLister
	Mongo     *mongo.Database
	Redis     *redis.Client
	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("licensing"))

	// --- License operations ---
	licenseHandler := handler.NewLicenseHandler(deps.Service)

	e.POST("/authorize", licenseHandler.Authorize)
	e.POST("/logout", licenseHandler.Logout)
	e.POST("/consume", licenseHandler.Consume)
	e.POST("/set-time", licenseHandler.SetTime)

	// --- Admin surface (JWT + admin role) ---
	adminHandler := handler.NewAdminHandler(deps.Service, deps.Sessions)

	admin := e.Group("/admin", middleware.Auth(deps.JWTSecret), middleware.RBAC(middleware.RoleAdmin))
	admin.GET("/accounts/:login", adminHandler.GetAccount)
	admin.GET("/sessions", adminHandler.ListSessions)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}

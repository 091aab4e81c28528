package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/meetgrid/meetgrid/internal/app"
	iauth "github.com/meetgrid/meetgrid/internal/auth"
	"github.com/meetgrid/meetgrid/internal/handlers"
	"github.com/meetgrid/meetgrid/internal/middleware"
	"github.com/meetgrid/meetgrid/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	// Basic rate limiting: 100 requests/minute per IP+path
	r.Use(middleware.RateLimit(middleware.NewMemoryRateStore(), 100, time.Minute))

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health())
	}

	auditService, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	friendshipService, err := services.NewFriendshipService(db, auditService)
	if err != nil {
		return nil, err
	}
	userService, err := services.NewUserService(db, friendshipService, auditService)
	if err != nil {
		return nil, err
	}
	eventService, err := services.NewEventService(db, auditService)
	if err != nil {
		return nil, err
	}
	invitationService, err := services.NewInvitationService(db, eventService, userService, auditService)
	if err != nil {
		return nil, err
	}
	commentService, err := services.NewCommentService(db, eventService)
	if err != nil {
		return nil, err
	}
	categoryService, err := services.NewCategoryService(db)
	if err != nil {
		return nil, err
	}
	geographyService, err := services.NewGeographyService(db)
	if err != nil {
		return nil, err
	}
	photoService, err := services.NewPhotoService(db, eventService)
	if err != nil {
		return nil, err
	}

	authHandler := handlers.NewAuthHandler(userService, jwt)
	profileHandler := handlers.NewProfileHandler(userService)
	friendshipHandler := handlers.NewFriendshipHandler(friendshipService)
	eventHandler := handlers.NewEventHandler(eventService)
	invitationHandler := handlers.NewInvitationHandler(invitationService)
	commentHandler := handlers.NewCommentHandler(commentService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, userService)
	geographyHandler := handlers.NewGeographyHandler(geographyService)
	photoHandler := handlers.NewPhotoHandler(photoService)
	auditHandler := handlers.NewAuditHandler(auditService, userService)

	// Public routes: auth plus read-only discovery endpoints.
	public := r.Group("/api")

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))

	registerAuthRoutes(public, api, authHandler)
	registerProfileRoutes(api, profileHandler)
	registerFriendshipRoutes(api, friendshipHandler)
	registerInvitationRoutes(api, invitationHandler)
	registerEventRoutes(public, api, eventHandler)
	registerCommentRoutes(public, api, commentHandler)
	registerCategoryRoutes(public, api, categoryHandler)
	registerGeographyRoutes(public, geographyHandler)
	registerPhotoRoutes(public, api, photoHandler)
	registerAuditRoutes(api, auditHandler)

	// Metrics endpoint
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

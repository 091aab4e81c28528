package api

import (
	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/handlers"
)

func registerAuthRoutes(public, api *gin.RouterGroup, handler *handlers.AuthHandler) {
	auth := public.Group("/auth")
	{
		auth.POST("/signup", handler.Signup)
		auth.POST("/login", handler.Login)
		auth.POST("/refresh", handler.Refresh)
	}

	api.GET("/auth/me", handler.Me)
}

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/handlers"
)

func registerAuditRoutes(api *gin.RouterGroup, handler *handlers.AuditHandler) {
	api.GET("/audit", handler.List)
}

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/handlers"
)

func registerCategoryRoutes(public, api *gin.RouterGroup, handler *handlers.CategoryHandler) {
	public.GET("/categories", handler.List)
	public.GET("/categories/:id", handler.Get)

	// Writes are reserved for staff accounts; the handler enforces it.
	api.POST("/categories", handler.Create)
	api.PATCH("/categories/:id", handler.Update)
	api.DELETE("/categories/:id", handler.Delete)
}

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/handlers"
)

func registerPhotoRoutes(public, api *gin.RouterGroup, handler *handlers.PhotoHandler) {
	public.GET("/events/:id/photos", handler.ListForEvent)

	api.POST("/events/:id/photos", handler.Add)
	api.PATCH("/photos/:id", handler.Update)
	api.POST("/photos/:id/cover", handler.SetCover)
	api.DELETE("/photos/:id", handler.Delete)
}

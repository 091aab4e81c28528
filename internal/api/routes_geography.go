package api

import (
	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/handlers"
)

func registerGeographyRoutes(public *gin.RouterGroup, handler *handlers.GeographyHandler) {
	public.GET("/countries", handler.Countries)
	public.GET("/countries/:id/cities", handler.Cities)
}

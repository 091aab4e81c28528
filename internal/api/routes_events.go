package api

import (
	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/handlers"
)

func registerEventRoutes(public, api *gin.RouterGroup, handler *handlers.EventHandler) {
	// Browsing events requires no account.
	public.GET("/events", handler.List)
	public.GET("/events/:id", handler.Get)

	events := api.Group("/events")
	{
		events.POST("", handler.Create)
		events.GET("/my/organized", handler.MyOrganized)
		events.GET("/my/registered", handler.MyRegistered)
		events.PATCH("/:id", handler.Update)
		events.DELETE("/:id", handler.Delete)
		events.POST("/:id/register", handler.Register)
		events.POST("/:id/unregister", handler.Unregister)
		events.GET("/:id/participants", handler.Participants)
		events.GET("/:id/stats", handler.Stats)
		events.POST("/:id/participants/:userID/admin", handler.MakeAdmin)
		events.DELETE("/:id/participants/:userID/admin", handler.RemoveAdmin)
	}
}

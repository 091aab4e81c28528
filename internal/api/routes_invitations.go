package api

import (
	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/handlers"
)

func registerInvitationRoutes(api *gin.RouterGroup, handler *handlers.InvitationHandler) {
	invitations := api.Group("/invitations")
	{
		invitations.POST("", handler.Create)
		invitations.GET("", handler.List)
		invitations.GET("/pending", handler.Pending)
		invitations.GET("/stats", handler.Stats)
		invitations.GET("/:id", handler.Get)
		invitations.POST("/:id/respond", handler.Respond)
		invitations.DELETE("/:id", handler.Delete)
	}
}

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/handlers"
)

func registerFriendshipRoutes(api *gin.RouterGroup, handler *handlers.FriendshipHandler) {
	friendships := api.Group("/friendships")
	{
		friendships.POST("", handler.Create)
		friendships.GET("", handler.List)
		friendships.GET("/pending", handler.Pending)
		friendships.GET("/friends", handler.Friends)
		friendships.GET("/check", handler.Check)
		friendships.GET("/stats", handler.Stats)
		friendships.GET("/:id", handler.Get)
		friendships.POST("/:id/respond", handler.Respond)
		friendships.DELETE("/:id", handler.Delete)
	}
}

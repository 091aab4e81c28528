package api

import (
	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/handlers"
)

func registerCommentRoutes(public, api *gin.RouterGroup, handler *handlers.CommentHandler) {
	public.GET("/events/:id/comments", handler.ListForEvent)
	public.GET("/comments/:id", handler.Get)
	public.GET("/comments/:id/replies", handler.Replies)

	api.POST("/events/:id/comments", handler.Create)
	api.PATCH("/comments/:id", handler.Update)
	api.DELETE("/comments/:id", handler.Delete)
}

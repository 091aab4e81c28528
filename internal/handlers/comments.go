package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/services"
	appErrors "github.com/meetgrid/meetgrid/pkg/errors"
	"github.com/meetgrid/meetgrid/pkg/response"
)

// CommentHandler exposes threaded event discussion endpoints.
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler configures a comment handler with required services.
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type createCommentRequest struct {
	Content  string  `json:"content" validate:"required,min=1,max=2000"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
}

type updateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// Create posts a comment or reply on an event.
func (h *CommentHandler) Create(c *gin.Context) {
	var body createCommentRequest
	if !bindAndValidate(c, &body) {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	comment, err := h.comments.Create(requestContext(c), c.Param("id"), userID, services.CreateCommentInput{
		Content:  body.Content,
		ParentID: body.ParentID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, comment)
}

// ListForEvent returns the top-level comments of an event.
func (h *CommentHandler) ListForEvent(c *gin.Context) {
	comments, err := h.comments.ListForEvent(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, comments)
}

// Get returns a single comment.
func (h *CommentHandler) Get(c *gin.Context) {
	comment, err := h.comments.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, comment)
}

// Update rewrites a comment. Author only.
func (h *CommentHandler) Update(c *gin.Context) {
	var body updateCommentRequest
	if !bindAndValidate(c, &body) {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	comment, err := h.comments.Update(requestContext(c), c.Param("id"), userID, body.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, comment)
}

// Delete removes a comment. Author or event organizer.
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.comments.Delete(requestContext(c), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Replies returns the reply subtree under a comment in thread order.
func (h *CommentHandler) Replies(c *gin.Context) {
	replies, err := h.comments.Replies(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, replies)
}

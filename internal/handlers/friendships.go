package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/services"
	appErrors "github.com/meetgrid/meetgrid/pkg/errors"
	"github.com/meetgrid/meetgrid/pkg/response"
)

// FriendshipHandler exposes the friend request endpoints.
type FriendshipHandler struct {
	friendships *services.FriendshipService
}

// NewFriendshipHandler configures a friendship handler with required services.
func NewFriendshipHandler(friendships *services.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendships: friendships}
}

type createFriendshipRequest struct {
	ReceiverEmail string `json:"receiver_email" validate:"required,email"`
}

type respondRequest struct {
	Action string `json:"action" validate:"required,oneof=accept reject"`
}

// Create sends a friend request to the user owning the supplied email.
func (h *FriendshipHandler) Create(c *gin.Context) {
	var body createFriendshipRequest
	if !bindAndValidate(c, &body) {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	friendship, err := h.friendships.Create(requestContext(c), userID, body.ReceiverEmail)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, friendship)
}

// List returns friendships involving the authenticated user.
// Supported query parameters: type=sent|received|all, status.
func (h *FriendshipHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	friendships, err := h.friendships.List(requestContext(c), userID, services.ListFriendshipsOptions{
		Type:   c.Query("type"),
		Status: c.Query("status"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, friendships)
}

// Get returns a single friendship the user is involved in.
func (h *FriendshipHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	friendship, err := h.friendships.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !friendship.Involves(userID) {
		response.Error(c, services.ErrNotInvolved)
		return
	}

	response.Success(c, http.StatusOK, friendship)
}

// Respond accepts or rejects a pending friend request.
func (h *FriendshipHandler) Respond(c *gin.Context) {
	var body respondRequest
	if !bindAndValidate(c, &body) {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	friendship, err := h.friendships.Respond(requestContext(c), c.Param("id"), userID, body.Action)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, friendship)
}

// Delete removes a friendship or cancels a pending request.
func (h *FriendshipHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.friendships.Delete(requestContext(c), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Pending returns requests awaiting the user's response.
func (h *FriendshipHandler) Pending(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	pending, err := h.friendships.Pending(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, pending)
}

// Friends returns the user's accepted friends.
func (h *FriendshipHandler) Friends(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	friends, err := h.friendships.Friends(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, friends)
}

// Check summarises the relation between the user and another account,
// identified by the user_email query parameter.
func (h *FriendshipHandler) Check(c *gin.Context) {
	email := strings.TrimSpace(c.Query("user_email"))
	if email == "" {
		response.Error(c, appErrors.NewFieldError("user_email", "user_email query parameter is required"))
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	check, err := h.friendships.Check(requestContext(c), userID, email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, check)
}

// Stats returns the user's friendship counters.
func (h *FriendshipHandler) Stats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, err := h.friendships.Stats(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

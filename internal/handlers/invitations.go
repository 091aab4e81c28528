package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/services"
	appErrors "github.com/meetgrid/meetgrid/pkg/errors"
	"github.com/meetgrid/meetgrid/pkg/response"
)

// InvitationHandler exposes the event invitation endpoints.
type InvitationHandler struct {
	invitations *services.InvitationService
}

// NewInvitationHandler configures an invitation handler with required services.
func NewInvitationHandler(invitations *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

type createInvitationRequest struct {
	EventID      string `json:"event" validate:"required,uuid"`
	InvitedEmail string `json:"invited_user_email" validate:"required,email"`
}

// Create invites a user to an event.
func (h *InvitationHandler) Create(c *gin.Context) {
	var body createInvitationRequest
	if !bindAndValidate(c, &body) {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	invitation, err := h.invitations.Create(requestContext(c), body.EventID, userID, body.InvitedEmail)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, invitation)
}

// List returns invitations involving the authenticated user.
// Supported query parameters: type=sent|received, status, event.
func (h *InvitationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	invitations, err := h.invitations.List(requestContext(c), userID, services.ListInvitationsOptions{
		Type:    c.Query("type"),
		Status:  c.Query("status"),
		EventID: c.Query("event"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invitations)
}

// Get returns a single invitation the user is involved in.
func (h *InvitationHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	invitation, err := h.invitations.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if invitation.InvitedUserID != userID && invitation.InvitedByID != userID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	response.Success(c, http.StatusOK, invitation)
}

// Respond accepts or rejects a pending invitation.
func (h *InvitationHandler) Respond(c *gin.Context) {
	var body respondRequest
	if !bindAndValidate(c, &body) {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	invitation, err := h.invitations.Respond(requestContext(c), c.Param("id"), userID, body.Action)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invitation)
}

// Delete cancels a pending invitation the user sent.
func (h *InvitationHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.invitations.Delete(requestContext(c), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Pending returns invitations awaiting the user's response.
func (h *InvitationHandler) Pending(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	pending, err := h.invitations.Pending(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, pending)
}

// Stats returns the user's invitation counters.
func (h *InvitationHandler) Stats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, err := h.invitations.Stats(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

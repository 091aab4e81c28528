package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/services"
	appErrors "github.com/meetgrid/meetgrid/pkg/errors"
	"github.com/meetgrid/meetgrid/pkg/response"
)

// ProfileHandler exposes current-user account management endpoints.
type ProfileHandler struct {
	users *services.UserService
}

// NewProfileHandler configures a profile handler with required services.
func NewProfileHandler(users *services.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

type updateProfileRequest struct {
	Name              *string `json:"name" validate:"omitempty,min=1,max=128"`
	InvitationPrivacy *string `json:"invitation_privacy" validate:"omitempty,oneof=everyone friends none"`
}

// Update modifies the authenticated user's profile details.
func (h *ProfileHandler) Update(c *gin.Context) {
	var body updateProfileRequest
	if !bindAndValidate(c, &body) {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user, err := h.users.UpdateProfile(requestContext(c), userID, services.UpdateProfileInput{
		Name:              body.Name,
		InvitationPrivacy: body.InvitationPrivacy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, marshalUser(user))
}

// Delete deactivates and soft-deletes the authenticated user's account.
func (h *ProfileHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.users.Delete(requestContext(c), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

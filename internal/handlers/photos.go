package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/services"
	appErrors "github.com/meetgrid/meetgrid/pkg/errors"
	"github.com/meetgrid/meetgrid/pkg/response"
)

// PhotoHandler exposes the event photo endpoints.
type PhotoHandler struct {
	photos *services.PhotoService
}

// NewPhotoHandler configures a photo handler with required services.
func NewPhotoHandler(photos *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{photos: photos}
}

type addPhotoRequest struct {
	URL     string `json:"url" validate:"required,url,max=2000"`
	Caption string `json:"caption" validate:"max=500"`
	IsCover bool   `json:"is_cover"`
}

type updatePhotoRequest struct {
	Caption string `json:"caption" validate:"max=500"`
}

// Add attaches a photo record to an event.
func (h *PhotoHandler) Add(c *gin.Context) {
	var body addPhotoRequest
	if !bindAndValidate(c, &body) {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	photo, err := h.photos.Add(requestContext(c), c.Param("id"), userID, services.AddPhotoInput{
		URL:     body.URL,
		Caption: body.Caption,
		IsCover: body.IsCover,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, photo)
}

// ListForEvent returns an event's photos, cover first.
func (h *PhotoHandler) ListForEvent(c *gin.Context) {
	photos, err := h.photos.ListForEvent(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, photos)
}

// Update rewrites a photo caption. Uploader or organizer only.
func (h *PhotoHandler) Update(c *gin.Context) {
	var body updatePhotoRequest
	if !bindAndValidate(c, &body) {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	photo, err := h.photos.UpdateCaption(requestContext(c), c.Param("id"), userID, body.Caption)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, photo)
}

// SetCover marks a photo as its event's cover.
func (h *PhotoHandler) SetCover(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	photo, err := h.photos.SetCover(requestContext(c), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, photo)
}

// Delete removes a photo record. Uploader or organizer only.
func (h *PhotoHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.photos.Delete(requestContext(c), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/models"
	"github.com/meetgrid/meetgrid/internal/services"
	appErrors "github.com/meetgrid/meetgrid/pkg/errors"
	"github.com/meetgrid/meetgrid/pkg/response"
)

// CategoryHandler exposes the category catalogue endpoints.
type CategoryHandler struct {
	categories *services.CategoryService
	users      *services.UserService
}

// NewCategoryHandler configures a category handler with required services.
func NewCategoryHandler(categories *services.CategoryService, users *services.UserService) *CategoryHandler {
	return &CategoryHandler{categories: categories, users: users}
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// List returns all categories. Public.
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, categories)
}

// Get returns a single category. Public.
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.categories.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, category)
}

// Create stores a new category. Staff only.
func (h *CategoryHandler) Create(c *gin.Context) {
	var body categoryRequest
	if !bindAndValidate(c, &body) {
		return
	}

	requester, ok := h.requester(c)
	if !ok {
		return
	}

	category, err := h.categories.Create(requestContext(c), requester, services.CategoryInput{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, category)
}

// Update renames a category. Staff only.
func (h *CategoryHandler) Update(c *gin.Context) {
	var body categoryRequest
	if !bindAndValidate(c, &body) {
		return
	}

	requester, ok := h.requester(c)
	if !ok {
		return
	}

	category, err := h.categories.Update(requestContext(c), requester, c.Param("id"), services.CategoryInput{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, category)
}

// Delete removes a category. Staff only.
func (h *CategoryHandler) Delete(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	if err := h.categories.Delete(requestContext(c), requester, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func (h *CategoryHandler) requester(c *gin.Context) (*models.User, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}

	user, err := h.users.GetByID(requestContext(c), userID)
	if err != nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return user, true
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/services"
	"github.com/meetgrid/meetgrid/pkg/response"
)

// GeographyHandler exposes the country and city reference endpoints.
type GeographyHandler struct {
	geography *services.GeographyService
}

// NewGeographyHandler configures a geography handler with required services.
func NewGeographyHandler(geography *services.GeographyService) *GeographyHandler {
	return &GeographyHandler{geography: geography}
}

// Countries returns all countries. Public.
func (h *GeographyHandler) Countries(c *gin.Context) {
	countries, err := h.geography.Countries(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, countries)
}

// Cities returns the cities of one country. Public.
func (h *GeographyHandler) Cities(c *gin.Context) {
	cities, err := h.geography.Cities(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, cities)
}

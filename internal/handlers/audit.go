package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/services"
	appErrors "github.com/meetgrid/meetgrid/pkg/errors"
	"github.com/meetgrid/meetgrid/pkg/response"
)

// AuditHandler exposes the audit trail to staff users.
type AuditHandler struct {
	audit *services.AuditService
	users *services.UserService
}

// NewAuditHandler configures an audit handler with required services.
func NewAuditHandler(audit *services.AuditService, users *services.UserService) *AuditHandler {
	return &AuditHandler{audit: audit, users: users}
}

// List returns audit entries filtered by query parameters. Staff only.
func (h *AuditHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	requester, err := h.users.GetByID(requestContext(c), userID)
	if err != nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if !requester.IsStaff {
		response.Error(c, services.ErrStaffOnly)
		return
	}

	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)

	entries, total, err := h.audit.List(requestContext(c), services.AuditListOptions{
		Page:     page,
		PageSize: pageSize,
		Filters: services.AuditFilters{
			UserID:   c.Query("user"),
			Action:   c.Query("action"),
			Result:   c.Query("result"),
			Resource: c.Query("resource"),
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}
	response.SuccessWithMeta(c, http.StatusOK, entries, &response.Meta{
		Page:       page,
		PerPage:    pageSize,
		Total:      int(total),
		TotalPages: totalPages,
	})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/services"
	appErrors "github.com/meetgrid/meetgrid/pkg/errors"
	"github.com/meetgrid/meetgrid/pkg/response"
)

// EventHandler exposes event lifecycle and membership endpoints.
type EventHandler struct {
	events *services.EventService
}

// NewEventHandler configures an event handler with required services.
func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

type createEventRequest struct {
	Title           string   `json:"title" validate:"required,min=1,max=200"`
	Description     string   `json:"description" validate:"max=5000"`
	Address         string   `json:"address" validate:"max=500"`
	Date            string   `json:"date" validate:"required"`
	Status          string   `json:"status" validate:"omitempty,oneof=draft published"`
	InvitationPerm  string   `json:"invitation_perm" validate:"omitempty,oneof=organizer admins participants"`
	MaxParticipants *int     `json:"max_participants" validate:"omitempty,min=1"`
	CountryID       *string  `json:"country_id" validate:"omitempty,uuid"`
	CityID          *string  `json:"city_id" validate:"omitempty,uuid"`
	CategoryIDs     []string `json:"category_ids" validate:"omitempty,dive,uuid"`
}

type updateEventRequest struct {
	Title           *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description     *string   `json:"description" validate:"omitempty,max=5000"`
	Address         *string   `json:"address" validate:"omitempty,max=500"`
	Date            *string   `json:"date"`
	Status          *string   `json:"status" validate:"omitempty,oneof=draft published cancelled completed"`
	InvitationPerm  *string   `json:"invitation_perm" validate:"omitempty,oneof=organizer admins participants"`
	MaxParticipants *int      `json:"max_participants" validate:"omitempty,min=1"`
	ClearLimit      bool      `json:"clear_limit"`
	CountryID       *string   `json:"country_id" validate:"omitempty,uuid"`
	CityID          *string   `json:"city_id" validate:"omitempty,uuid"`
	CategoryIDs     *[]string `json:"category_ids" validate:"omitempty,dive,uuid"`
}

// Create stores a new event with the caller as organizer.
func (h *EventHandler) Create(c *gin.Context) {
	var body createEventRequest
	if !bindAndValidate(c, &body) {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	date, err := time.Parse(time.RFC3339, body.Date)
	if err != nil {
		response.Error(c, appErrors.NewFieldError("date", "Date must be an RFC 3339 timestamp"))
		return
	}

	event, err := h.events.Create(requestContext(c), userID, services.CreateEventInput{
		Title:           body.Title,
		Description:     body.Description,
		Address:         body.Address,
		Date:            date,
		Status:          body.Status,
		InvitationPerm:  body.InvitationPerm,
		MaxParticipants: body.MaxParticipants,
		CountryID:       body.CountryID,
		CityID:          body.CityID,
		CategoryIDs:     body.CategoryIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, event)
}

// List returns live events matched by the query filters with pagination.
func (h *EventHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 20)

	events, total, err := h.events.List(requestContext(c), services.ListEventsOptions{
		Status:      c.Query("status"),
		CategoryID:  c.Query("category"),
		CountryID:   c.Query("country"),
		CityID:      c.Query("city"),
		OrganizerID: c.Query("organizer"),
		Search:      c.Query("search"),
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}
	response.SuccessWithMeta(c, http.StatusOK, events, &response.Meta{
		Page:       page,
		PerPage:    pageSize,
		Total:      int(total),
		TotalPages: totalPages,
	})
}

// Get returns a single live event.
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, event)
}

// Update modifies an event. Organizer only.
func (h *EventHandler) Update(c *gin.Context) {
	var body updateEventRequest
	if !bindAndValidate(c, &body) {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	input := services.UpdateEventInput{
		Title:          body.Title,
		Description:    body.Description,
		Address:        body.Address,
		Status:         body.Status,
		InvitationPerm: body.InvitationPerm,
		CountryID:      body.CountryID,
		CityID:         body.CityID,
		CategoryIDs:    body.CategoryIDs,
	}
	if body.Date != nil {
		date, err := time.Parse(time.RFC3339, *body.Date)
		if err != nil {
			response.Error(c, appErrors.NewFieldError("date", "Date must be an RFC 3339 timestamp"))
			return
		}
		input.Date = &date
	}
	if body.ClearLimit {
		var unlimited *int
		input.MaxParticipants = &unlimited
	} else if body.MaxParticipants != nil {
		input.MaxParticipants = &body.MaxParticipants
	}

	event, err := h.events.Update(requestContext(c), c.Param("id"), userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, event)
}

// Delete soft-deletes an event. Organizer only.
func (h *EventHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.events.Delete(requestContext(c), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Register joins the caller to the event.
func (h *EventHandler) Register(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	participant, err := h.events.Register(requestContext(c), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, participant)
}

// Unregister removes the caller from the event.
func (h *EventHandler) Unregister(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.events.Unregister(requestContext(c), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Participants lists the event's members.
func (h *EventHandler) Participants(c *gin.Context) {
	participants, err := h.events.Participants(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, participants)
}

// MakeAdmin promotes a participant to event admin. Organizer only.
func (h *EventHandler) MakeAdmin(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.events.MakeAdmin(requestContext(c), c.Param("id"), c.Param("userID"), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"is_admin": true})
}

// RemoveAdmin demotes an event admin. Organizer only.
func (h *EventHandler) RemoveAdmin(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.events.RemoveAdmin(requestContext(c), c.Param("id"), c.Param("userID"), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"is_admin": false})
}

// MyOrganized lists events the caller organizes.
func (h *EventHandler) MyOrganized(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	events, err := h.events.MyOrganized(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, events)
}

// MyRegistered lists events the caller participates in.
func (h *EventHandler) MyRegistered(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	events, err := h.events.MyRegistered(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, events)
}

// Stats returns membership counters for an event.
func (h *EventHandler) Stats(c *gin.Context) {
	stats, err := h.events.Stats(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/meetgrid/meetgrid/internal/models"
	apperrors "github.com/meetgrid/meetgrid/pkg/errors"
	"github.com/meetgrid/meetgrid/pkg/metrics"
)

var (
	// ErrEventNotFound covers missing and soft-deleted events alike.
	ErrEventNotFound = apperrors.New("EVENT_NOT_FOUND", "Event not found", http.StatusNotFound)
	// ErrNotOrganizer signals an organizer-only operation attempted by someone else.
	ErrNotOrganizer = apperrors.New("FORBIDDEN", "Only the organizer can perform this action", http.StatusForbidden)
)

// CreateEventInput carries the fields accepted on event creation.
type CreateEventInput struct {
	Title           string
	Description     string
	Address         string
	Date            time.Time
	Status          string
	InvitationPerm  string
	MaxParticipants *int
	CountryID       *string
	CityID          *string
	CategoryIDs     []string
}

// UpdateEventInput carries the mutable event fields. Nil pointers leave the
// current value untouched; MaxParticipants uses a double pointer so the limit
// can be cleared explicitly.
type UpdateEventInput struct {
	Title           *string
	Description     *string
	Address         *string
	Date            *time.Time
	Status          *string
	InvitationPerm  *string
	MaxParticipants **int
	CountryID       *string
	CityID          *string
	CategoryIDs     *[]string
}

// ListEventsOptions filters event listings.
type ListEventsOptions struct {
	Status      string
	CategoryID  string
	CountryID   string
	CityID      string
	OrganizerID string
	Search      string
	Page        int
	PageSize    int
}

// EventStats summarises an event's membership counters.
type EventStats struct {
	ParticipantCount   int64 `json:"participant_count"`
	PendingInvitations int64 `json:"pending_invitations"`
	IsFull             bool  `json:"is_full"`
}

// EventService owns event lifecycle, capacity accounting and the permission
// rules deciding who may invite. The organizer is an implicit member and never
// appears in the participants table.
type EventService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewEventService constructs an EventService instance.
func NewEventService(db *gorm.DB, auditService *AuditService) (*EventService, error) {
	if db == nil {
		return nil, errors.New("event service: db is required")
	}
	return &EventService{db: db, auditService: auditService}, nil
}

// Create stores a new event with the caller as organizer.
func (s *EventService) Create(ctx context.Context, organizerID string, input CreateEventInput) (*models.Event, error) {
	ctx = ensureContext(ctx)

	event := &models.Event{
		Title:           input.Title,
		Description:     input.Description,
		Address:         input.Address,
		Date:            input.Date,
		Status:          models.EventStatusPublished,
		InvitationPerm:  models.InvitationPermParticipants,
		MaxParticipants: input.MaxParticipants,
		OrganizerID:     organizerID,
		CountryID:       input.CountryID,
		CityID:          input.CityID,
	}
	if input.Status != "" {
		event.Status = input.Status
	}
	if input.InvitationPerm != "" {
		event.InvitationPerm = input.InvitationPerm
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		if len(input.CategoryIDs) > 0 {
			categories, err := s.loadCategories(tx, input.CategoryIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(event).Association("Categories").Replace(categories); err != nil {
				return fmt.Errorf("attach categories: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("event service: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &organizerID,
		Action:   "event.create",
		Resource: event.ID,
		Result:   "success",
	})

	return s.GetByID(ctx, event.ID)
}

// Update modifies an event. Only the organizer may update.
func (s *EventService) Update(ctx context.Context, eventID, requesterID string, input UpdateEventInput) (*models.Event, error) {
	ctx = ensureContext(ctx)

	event, err := s.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != requesterID {
		return nil, ErrNotOrganizer
	}

	updates := map[string]any{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.Date != nil {
		updates["date"] = *input.Date
	}
	if input.Status != nil {
		if !models.ValidEventStatus(*input.Status) {
			return nil, apperrors.NewFieldError("status", "Invalid event status")
		}
		updates["status"] = *input.Status
	}
	if input.InvitationPerm != nil {
		if !models.ValidInvitationPerm(*input.InvitationPerm) {
			return nil, apperrors.NewFieldError("invitation_perm", "Invalid invitation permission")
		}
		updates["invitation_perm"] = *input.InvitationPerm
	}
	if input.MaxParticipants != nil {
		updates["max_participants"] = *input.MaxParticipants
	}
	if input.CountryID != nil {
		updates["country_id"] = *input.CountryID
	}
	if input.CityID != nil {
		updates["city_id"] = *input.CityID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(event).Updates(updates).Error; err != nil {
				return fmt.Errorf("update event: %w", err)
			}
		}
		if input.CategoryIDs != nil {
			categories, err := s.loadCategories(tx, *input.CategoryIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(event).Association("Categories").Replace(categories); err != nil {
				return fmt.Errorf("replace categories: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("event service: %w", err)
	}

	return s.GetByID(ctx, eventID)
}

// Delete soft-deletes an event. Only the organizer may delete. Participant and
// invitation rows stay in place so the purge job can sweep them later.
func (s *EventService) Delete(ctx context.Context, eventID, requesterID string) error {
	ctx = ensureContext(ctx)

	event, err := s.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID != requesterID {
		return ErrNotOrganizer
	}

	event.MarkDeleted(time.Now().UTC())
	if err := s.db.WithContext(ctx).Model(event).
		Updates(map[string]any{"is_deleted": true, "deleted_at": event.DeletedAt}).Error; err != nil {
		return fmt.Errorf("event service: delete: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &requesterID,
		Action:   "event.delete",
		Resource: eventID,
		Result:   "success",
	})
	return nil
}

// GetByID loads a live event with its associations. Soft-deleted events are
// indistinguishable from missing ones.
func (s *EventService) GetByID(ctx context.Context, id string) (*models.Event, error) {
	ctx = ensureContext(ctx)

	var event models.Event
	err := s.db.WithContext(ctx).
		Scopes(models.Live).
		Preload("Organizer").
		Preload("Country").
		Preload("City").
		Preload("Categories").
		First(&event, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("event service: load: %w", err)
	}
	return &event, nil
}

// List returns live events matched by the filters, newest date first.
func (s *EventService) List(ctx context.Context, opts ListEventsOptions) ([]models.Event, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Model(&models.Event{}).
		Scopes(models.Live)

	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if opts.CountryID != "" {
		query = query.Where("country_id = ?", opts.CountryID)
	}
	if opts.CityID != "" {
		query = query.Where("city_id = ?", opts.CityID)
	}
	if opts.OrganizerID != "" {
		query = query.Where("organizer_id = ?", opts.OrganizerID)
	}
	if opts.CategoryID != "" {
		query = query.Joins("JOIN event_categories ON event_categories.event_id = events.id").
			Where("event_categories.category_id = ?", opts.CategoryID)
	}
	if opts.Search != "" {
		pattern := "%" + opts.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("event service: count: %w", err)
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var events []models.Event
	err := query.
		Preload("Organizer").
		Preload("Country").
		Preload("City").
		Preload("Categories").
		Order("date DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&events).Error
	if err != nil {
		return nil, 0, fmt.Errorf("event service: list: %w", err)
	}
	return events, total, nil
}

// MyOrganized lists the live events the user organizes.
func (s *EventService) MyOrganized(ctx context.Context, userID string) ([]models.Event, error) {
	events, _, err := s.List(ctx, ListEventsOptions{OrganizerID: userID, PageSize: 100})
	return events, err
}

// MyRegistered lists the live events the user participates in.
func (s *EventService) MyRegistered(ctx context.Context, userID string) ([]models.Event, error) {
	ctx = ensureContext(ctx)

	var events []models.Event
	err := s.db.WithContext(ctx).
		Scopes(models.Live).
		Joins("JOIN event_participants ON event_participants.event_id = events.id").
		Where("event_participants.user_id = ?", userID).
		Preload("Organizer").
		Preload("Country").
		Preload("City").
		Preload("Categories").
		Order("date DESC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("event service: registered: %w", err)
	}
	return events, nil
}

// ParticipantCount counts accepted participant rows. The organizer is not
// counted: they never hold a participant row.
func (s *EventService) ParticipantCount(ctx context.Context, eventID string) (int64, error) {
	return participantCount(s.db.WithContext(ensureContext(ctx)), eventID)
}

// IsFull reports whether the event has reached its capacity. A nil
// MaxParticipants means the event is never full.
func (s *EventService) IsFull(ctx context.Context, event *models.Event) (bool, error) {
	if event.MaxParticipants == nil {
		return false, nil
	}
	count, err := s.ParticipantCount(ctx, event.ID)
	if err != nil {
		return false, err
	}
	return count >= int64(*event.MaxParticipants), nil
}

// CanUserInvite decides whether userID may send invitations for the event.
// The organizer always may; everyone else depends on the permission level.
func (s *EventService) CanUserInvite(ctx context.Context, event *models.Event, userID string) (bool, error) {
	ctx = ensureContext(ctx)

	if event.OrganizerID == userID {
		return true, nil
	}

	switch event.InvitationPerm {
	case models.InvitationPermOrganizer:
		return false, nil
	case models.InvitationPermAdmins:
		var count int64
		err := s.db.WithContext(ctx).
			Model(&models.EventParticipant{}).
			Where("event_id = ? AND user_id = ? AND status = ? AND is_admin = ?",
				event.ID, userID, models.ParticipantStatusAccepted, true).
			Count(&count).Error
		if err != nil {
			return false, fmt.Errorf("event service: admin check: %w", err)
		}
		return count > 0, nil
	case models.InvitationPermParticipants:
		var count int64
		err := s.db.WithContext(ctx).
			Model(&models.EventParticipant{}).
			Where("event_id = ? AND user_id = ? AND status = ?",
				event.ID, userID, models.ParticipantStatusAccepted).
			Count(&count).Error
		if err != nil {
			return false, fmt.Errorf("event service: participant check: %w", err)
		}
		return count > 0, nil
	default:
		return false, fmt.Errorf("event service: unknown invitation permission %q", event.InvitationPerm)
	}
}

// Register adds the user as an accepted participant of the event.
func (s *EventService) Register(ctx context.Context, eventID, userID string) (*models.EventParticipant, error) {
	ctx = ensureContext(ctx)

	event, err := s.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID == userID {
		return nil, apperrors.NewBadRequest("You are the organizer of this event")
	}

	participant := &models.EventParticipant{
		EventID: eventID,
		UserID:  userID,
		Status:  models.ParticipantStatusAccepted,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.EventParticipant{}).
			Where("event_id = ? AND user_id = ?", eventID, userID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check registration: %w", err)
		}
		if count > 0 {
			return apperrors.NewBadRequest("You are already registered for this event")
		}

		full, err := eventFull(tx, event)
		if err != nil {
			return err
		}
		if full {
			return apperrors.NewBadRequest("This event is full")
		}

		if err := tx.Create(participant).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.NewBadRequest("You are already registered for this event")
			}
			return fmt.Errorf("create participant: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.Registrations.WithLabelValues("rejected").Inc()
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("event service: register: %w", err)
	}

	metrics.Registrations.WithLabelValues("accepted").Inc()
	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &userID,
		Action:   "event.register",
		Resource: eventID,
		Result:   "success",
	})
	return participant, nil
}

// Unregister removes the user's participant row.
func (s *EventService) Unregister(ctx context.Context, eventID, userID string) error {
	ctx = ensureContext(ctx)

	if _, err := s.GetByID(ctx, eventID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.EventParticipant{})
	if result.Error != nil {
		return fmt.Errorf("event service: unregister: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewBadRequest("You are not registered for this event")
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &userID,
		Action:   "event.unregister",
		Resource: eventID,
		Result:   "success",
	})
	return nil
}

// Participants lists the accepted members of an event with users preloaded.
func (s *EventService) Participants(ctx context.Context, eventID string) ([]models.EventParticipant, error) {
	ctx = ensureContext(ctx)

	if _, err := s.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	var participants []models.EventParticipant
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&participants).Error
	if err != nil {
		return nil, fmt.Errorf("event service: participants: %w", err)
	}
	return participants, nil
}

// MakeAdmin promotes a participant to event admin. Organizer only.
func (s *EventService) MakeAdmin(ctx context.Context, eventID, userID, requesterID string) error {
	return s.setAdmin(ctx, eventID, userID, requesterID, true)
}

// RemoveAdmin demotes an event admin back to plain participant. Organizer only.
func (s *EventService) RemoveAdmin(ctx context.Context, eventID, userID, requesterID string) error {
	return s.setAdmin(ctx, eventID, userID, requesterID, false)
}

func (s *EventService) setAdmin(ctx context.Context, eventID, userID, requesterID string, admin bool) error {
	ctx = ensureContext(ctx)

	event, err := s.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID != requesterID {
		return ErrNotOrganizer
	}

	result := s.db.WithContext(ctx).
		Model(&models.EventParticipant{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Update("is_admin", admin)
	if result.Error != nil {
		return fmt.Errorf("event service: set admin: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewFieldError("user_id", "User is not a participant of this event")
	}

	action := "event.admin.remove"
	if admin {
		action = "event.admin.grant"
	}
	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &requesterID,
		Action:   action,
		Resource: eventID,
		Result:   "success",
		Metadata: map[string]any{"target_user_id": userID},
	})
	return nil
}

// Stats returns membership counters for an event.
func (s *EventService) Stats(ctx context.Context, eventID string) (*EventStats, error) {
	ctx = ensureContext(ctx)

	event, err := s.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	count, err := s.ParticipantCount(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var pending int64
	err = s.db.WithContext(ctx).
		Model(&models.EventInvitation{}).
		Where("event_id = ? AND status = ?", eventID, models.InvitationStatusPending).
		Count(&pending).Error
	if err != nil {
		return nil, fmt.Errorf("event service: pending invitations: %w", err)
	}

	full := event.MaxParticipants != nil && count >= int64(*event.MaxParticipants)
	return &EventStats{
		ParticipantCount:   count,
		PendingInvitations: pending,
		IsFull:             full,
	}, nil
}

func (s *EventService) loadCategories(tx *gorm.DB, ids []string) ([]models.Category, error) {
	if len(ids) == 0 {
		return []models.Category{}, nil
	}
	var categories []models.Category
	if err := tx.Find(&categories, "id IN ?", ids).Error; err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	if len(categories) != len(ids) {
		return nil, apperrors.NewFieldError("category_ids", "One or more categories do not exist")
	}
	return categories, nil
}

// participantCount and eventFull run against a caller-supplied handle so the
// invitation accept path can reuse them inside its transaction.
func participantCount(tx *gorm.DB, eventID string) (int64, error) {
	var count int64
	err := tx.Model(&models.EventParticipant{}).
		Where("event_id = ? AND status = ?", eventID, models.ParticipantStatusAccepted).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return count, nil
}

func eventFull(tx *gorm.DB, event *models.Event) (bool, error) {
	if event.MaxParticipants == nil {
		return false, nil
	}
	count, err := participantCount(tx, event.ID)
	if err != nil {
		return false, err
	}
	return count >= int64(*event.MaxParticipants), nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/meetgrid/meetgrid/internal/models"
	apperrors "github.com/meetgrid/meetgrid/pkg/errors"
	"github.com/meetgrid/meetgrid/pkg/metrics"
)

var (
	// ErrInvitationNotFound indicates the requested invitation does not exist.
	ErrInvitationNotFound = apperrors.New("INVITATION_NOT_FOUND", "Invitation not found", http.StatusNotFound)
	// ErrNotInvited signals a respond attempt by someone other than the invited user.
	ErrNotInvited = apperrors.New("FORBIDDEN", "Only the invited user can respond to this invitation", http.StatusForbidden)
	// ErrCannotInvite signals an inviter lacking permission for the event.
	ErrCannotInvite = apperrors.New("FORBIDDEN", "You do not have permission to invite users to this event", http.StatusForbidden)
)

// ListInvitationsOptions filters invitation listings.
type ListInvitationsOptions struct {
	Type    string // sent | received (default received)
	Status  string
	EventID string
}

// InvitationStats aggregates a user's invitation counters.
type InvitationStats struct {
	Sent     DirectionalStats `json:"sent"`
	Received DirectionalStats `json:"received"`
}

// InvitationService drives event invitations: privacy-gated creation with a
// fixed validation order, and an accept path that admits the participant and
// flips the invitation status inside one transaction.
type InvitationService struct {
	db           *gorm.DB
	events       *EventService
	users        *UserService
	auditService *AuditService
}

// NewInvitationService constructs an InvitationService instance.
func NewInvitationService(db *gorm.DB, events *EventService, users *UserService, auditService *AuditService) (*InvitationService, error) {
	if db == nil {
		return nil, errors.New("invitation service: db is required")
	}
	if events == nil {
		return nil, errors.New("invitation service: event service is required")
	}
	if users == nil {
		return nil, errors.New("invitation service: user service is required")
	}
	return &InvitationService{db: db, events: events, users: users, auditService: auditService}, nil
}

// Create invites the user owning invitedEmail to the event. Checks run in a
// fixed order and the first failure wins: event exists, invited user exists,
// invited is not the organizer, not already a participant, no invitation row
// in any status (a rejection is terminal), inviter may invite, and the
// invited user's privacy setting admits this inviter.
func (s *InvitationService) Create(ctx context.Context, eventID, inviterID, invitedEmail string) (*models.EventInvitation, error) {
	ctx = ensureContext(ctx)

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var invited models.User
	err = s.db.WithContext(ctx).
		Scopes(models.Live).
		First(&invited, "email = ?", normaliseEmail(invitedEmail)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewFieldError("invited_user_email", "User with this email does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("invitation service: load invited user: %w", err)
	}

	if invited.ID == event.OrganizerID {
		return nil, apperrors.NewFieldError("invited_user_email", "This user is the organizer of the event")
	}

	var participantCount int64
	err = s.db.WithContext(ctx).
		Model(&models.EventParticipant{}).
		Where("event_id = ? AND user_id = ?", eventID, invited.ID).
		Count(&participantCount).Error
	if err != nil {
		return nil, fmt.Errorf("invitation service: participant check: %w", err)
	}
	if participantCount > 0 {
		return nil, apperrors.NewFieldError("invited_user_email", "This user is already a participant of this event")
	}

	var invitationCount int64
	err = s.db.WithContext(ctx).
		Model(&models.EventInvitation{}).
		Where("event_id = ? AND invited_user_id = ?", eventID, invited.ID).
		Count(&invitationCount).Error
	if err != nil {
		return nil, fmt.Errorf("invitation service: invitation check: %w", err)
	}
	if invitationCount > 0 {
		return nil, apperrors.NewFieldError("invited_user_email", "This user has already been invited to this event")
	}

	canInvite, err := s.events.CanUserInvite(ctx, event, inviterID)
	if err != nil {
		return nil, err
	}
	if !canInvite {
		return nil, ErrCannotInvite
	}

	allowed, err := s.users.CanBeInvitedBy(ctx, &invited, inviterID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.NewFieldError("invited_user_email", "This user does not accept invitations from you")
	}

	invitation := &models.EventInvitation{
		EventID:       eventID,
		InvitedUserID: invited.ID,
		InvitedByID:   inviterID,
		Status:        models.InvitationStatusPending,
	}

	if err := s.db.WithContext(ctx).Create(invitation).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewFieldError("invited_user_email", "This user has already been invited to this event")
		}
		return nil, fmt.Errorf("invitation service: create: %w", err)
	}

	metrics.Invitations.WithLabelValues("create").Inc()
	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &inviterID,
		Action:   "invitation.create",
		Resource: invitation.ID,
		Result:   "success",
		Metadata: map[string]any{"event_id": eventID, "invited_user_id": invited.ID},
	})

	return s.GetByID(ctx, invitation.ID)
}

// Respond accepts or rejects a pending invitation. Only the invited user may
// respond. Accepting admits the participant and marks the invitation accepted
// inside a single transaction: the pending check, the capacity check and the
// participant insert all see the same snapshot, and the unique (event, user)
// index settles races with a concurrent register.
func (s *InvitationService) Respond(ctx context.Context, id, responderID, action string) (*models.EventInvitation, error) {
	ctx = ensureContext(ctx)

	invitation, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if invitation.InvitedUserID != responderID {
		return nil, ErrNotInvited
	}

	if !invitation.IsPending() {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("Cannot respond to an invitation with status: %s", invitation.Status))
	}

	switch action {
	case ActionAccept:
		err = s.accept(ctx, invitation)
	case ActionReject:
		err = s.db.WithContext(ctx).Model(invitation).
			Update("status", models.InvitationStatusRejected).Error
		if err != nil {
			err = fmt.Errorf("invitation service: reject: %w", err)
		}
	default:
		return nil, apperrors.NewFieldError("action", "Action must be one of: accept, reject")
	}
	if err != nil {
		return nil, err
	}

	metrics.Invitations.WithLabelValues(action).Inc()
	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &responderID,
		Action:   "invitation." + action,
		Resource: invitation.ID,
		Result:   "success",
		Metadata: map[string]any{"event_id": invitation.EventID},
	})

	return s.GetByID(ctx, id)
}

func (s *InvitationService) accept(ctx context.Context, invitation *models.EventInvitation) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.EventInvitation
		if err := tx.First(&current, "id = ?", invitation.ID).Error; err != nil {
			return fmt.Errorf("reload invitation: %w", err)
		}
		if !current.IsPending() {
			return apperrors.NewBadRequest(fmt.Sprintf("Cannot respond to an invitation with status: %s", current.Status))
		}

		var event models.Event
		err := tx.Scopes(models.Live).First(&event, "id = ?", current.EventID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		if err != nil {
			return fmt.Errorf("load event: %w", err)
		}

		var existing models.EventParticipant
		err = tx.Where("event_id = ? AND user_id = ?", current.EventID, current.InvitedUserID).
			First(&existing).Error
		switch {
		case err == nil:
			// Already admitted through another path; just settle the status.
			if existing.Status != models.ParticipantStatusAccepted {
				if err := tx.Model(&existing).Update("status", models.ParticipantStatusAccepted).Error; err != nil {
					return fmt.Errorf("settle participant status: %w", err)
				}
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			full, err := eventFull(tx, &event)
			if err != nil {
				return err
			}
			if full {
				return apperrors.NewBadRequest("This event is full")
			}
			participant := &models.EventParticipant{
				EventID: current.EventID,
				UserID:  current.InvitedUserID,
				Status:  models.ParticipantStatusAccepted,
			}
			if err := tx.Create(participant).Error; err != nil {
				if isUniqueConstraintError(err) {
					return apperrors.NewBadRequest("You are already registered for this event")
				}
				return fmt.Errorf("create participant: %w", err)
			}
		default:
			return fmt.Errorf("load participant: %w", err)
		}

		if err := tx.Model(&models.EventInvitation{}).
			Where("id = ?", current.ID).
			Update("status", models.InvitationStatusAccepted).Error; err != nil {
			return fmt.Errorf("update invitation: %w", err)
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return fmt.Errorf("invitation service: accept: %w", err)
	}
	return nil
}

// Delete cancels a pending invitation. Only the inviter may cancel.
func (s *InvitationService) Delete(ctx context.Context, id, requesterID string) error {
	ctx = ensureContext(ctx)

	invitation, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if invitation.InvitedByID != requesterID {
		return apperrors.New("FORBIDDEN", "Only the inviter can cancel this invitation", http.StatusForbidden)
	}
	if !invitation.IsPending() {
		return apperrors.NewBadRequest(fmt.Sprintf("Cannot cancel an invitation with status: %s", invitation.Status))
	}

	if err := s.db.WithContext(ctx).Delete(&models.EventInvitation{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("invitation service: delete: %w", err)
	}

	metrics.Invitations.WithLabelValues("delete").Inc()
	return nil
}

// GetByID loads an invitation with its event and both users preloaded.
func (s *InvitationService) GetByID(ctx context.Context, id string) (*models.EventInvitation, error) {
	ctx = ensureContext(ctx)

	var invitation models.EventInvitation
	err := s.db.WithContext(ctx).
		Preload("Event").
		Preload("InvitedUser").
		Preload("InvitedBy").
		First(&invitation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invitation service: load: %w", err)
	}
	return &invitation, nil
}

// List returns invitations involving the user, filtered by direction, status
// and event.
func (s *InvitationService) List(ctx context.Context, userID string, opts ListInvitationsOptions) ([]models.EventInvitation, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Preload("Event").
		Preload("InvitedUser").
		Preload("InvitedBy")

	switch opts.Type {
	case "sent":
		query = query.Where("invited_by_id = ?", userID)
	default: // received
		query = query.Where("invited_user_id = ?", userID)
	}

	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if opts.EventID != "" {
		query = query.Where("event_id = ?", opts.EventID)
	}

	var invitations []models.EventInvitation
	if err := query.Order("created_at DESC").Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("invitation service: list: %w", err)
	}
	return invitations, nil
}

// Pending returns invitations awaiting the user's response.
func (s *InvitationService) Pending(ctx context.Context, userID string) ([]models.EventInvitation, error) {
	return s.List(ctx, userID, ListInvitationsOptions{Status: models.InvitationStatusPending})
}

// Stats aggregates the user's invitation counters in both directions.
func (s *InvitationService) Stats(ctx context.Context, userID string) (*InvitationStats, error) {
	ctx = ensureContext(ctx)

	stats := &InvitationStats{}

	sent, err := s.directionalStats(ctx, "invited_by_id", userID)
	if err != nil {
		return nil, err
	}
	stats.Sent = *sent

	received, err := s.directionalStats(ctx, "invited_user_id", userID)
	if err != nil {
		return nil, err
	}
	stats.Received = *received

	return stats, nil
}

func (s *InvitationService) directionalStats(ctx context.Context, column, userID string) (*DirectionalStats, error) {
	stats := &DirectionalStats{}

	type statusCount struct {
		Status string
		Count  int64
	}

	var rows []statusCount
	err := s.db.WithContext(ctx).
		Model(&models.EventInvitation{}).
		Select("status, COUNT(*) AS count").
		Where(column+" = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("invitation service: stats: %w", err)
	}

	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case models.InvitationStatusPending:
			stats.Pending = row.Count
		case models.InvitationStatusAccepted:
			stats.Accepted = row.Count
		case models.InvitationStatusRejected:
			stats.Rejected = row.Count
		}
	}

	return stats, nil
}

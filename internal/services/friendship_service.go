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

// Response actions shared by friendships and invitations.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

var (
	// ErrFriendshipNotFound indicates the requested friendship does not exist.
	ErrFriendshipNotFound = apperrors.New("FRIENDSHIP_NOT_FOUND", "Friendship not found", http.StatusNotFound)
	// ErrNotReceiver signals a respond attempt by someone other than the receiver.
	ErrNotReceiver = apperrors.New("FORBIDDEN", "Only the receiver can respond to this friend request", http.StatusForbidden)
	// ErrNotInvolved signals an access attempt by a user outside the friendship.
	ErrNotInvolved = apperrors.New("FORBIDDEN", "You are not involved in this friendship", http.StatusForbidden)
)

// ListFriendshipsOptions filters friendship listings.
type ListFriendshipsOptions struct {
	Type   string // sent | received | all (default received)
	Status string
}

// FriendshipCheck summarises the relation between two users.
type FriendshipCheck struct {
	FriendshipID string `json:"friendship_id,omitempty"`
	Status       string `json:"status"` // none | pending | accepted | rejected
	Direction    string `json:"direction,omitempty"`
}

// DirectionalStats counts friendships by status for one direction.
type DirectionalStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Accepted int64 `json:"accepted"`
	Rejected int64 `json:"rejected"`
}

// FriendshipStats aggregates a user's friendship counters.
type FriendshipStats struct {
	FriendsCount int64            `json:"friends_count"`
	Sent         DirectionalStats `json:"sent"`
	Received     DirectionalStats `json:"received"`
}

// FriendshipService drives the directed request/accept/reject state machine
// between two users. At most one live (pending or accepted) row may exist per
// unordered pair; rejected rows are recycled on re-request.
type FriendshipService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewFriendshipService constructs a FriendshipService instance.
func NewFriendshipService(db *gorm.DB, auditService *AuditService) (*FriendshipService, error) {
	if db == nil {
		return nil, errors.New("friendship service: db is required")
	}
	return &FriendshipService{db: db, auditService: auditService}, nil
}

// Create sends a friend request from sender to the user owning receiverEmail.
// A rejected row in either direction is reset to pending with the new parties
// instead of inserting a duplicate.
func (s *FriendshipService) Create(ctx context.Context, senderID, receiverEmail string) (*models.Friendship, error) {
	ctx = ensureContext(ctx)

	var receiver models.User
	err := s.db.WithContext(ctx).
		Scopes(models.Live).
		First(&receiver, "email = ?", normaliseEmail(receiverEmail)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewFieldError("receiver_email", "User with this email does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("friendship service: load receiver: %w", err)
	}

	if receiver.ID == senderID {
		return nil, apperrors.NewFieldError("receiver_email", "You cannot send a friend request to yourself")
	}

	var existing models.Friendship
	err = s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			senderID, receiver.ID, receiver.ID, senderID).
		First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("friendship service: check existing: %w", err)
	}

	if err == nil {
		switch existing.Status {
		case models.FriendshipStatusPending:
			if existing.SenderID == senderID {
				return nil, apperrors.NewFieldError("receiver_email", "Friend request already sent to this user")
			}
			return nil, apperrors.NewFieldError("receiver_email", "This user has already sent you a friend request. Check your pending requests.")
		case models.FriendshipStatusAccepted:
			return nil, apperrors.NewFieldError("receiver_email", "You are already friends with this user")
		case models.FriendshipStatusRejected:
			// Recycle the rejected row for the new request direction.
			updates := map[string]any{
				"sender_id":   senderID,
				"receiver_id": receiver.ID,
				"status":      models.FriendshipStatusPending,
			}
			if err := s.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
				return nil, fmt.Errorf("friendship service: recycle rejected row: %w", err)
			}
			metrics.FriendRequests.WithLabelValues("create").Inc()
			return s.GetByID(ctx, existing.ID)
		}
	}

	friendship := &models.Friendship{
		SenderID:   senderID,
		ReceiverID: receiver.ID,
		Status:     models.FriendshipStatusPending,
	}

	if err := s.db.WithContext(ctx).Create(friendship).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewFieldError("receiver_email", "Friend request already sent to this user")
		}
		return nil, fmt.Errorf("friendship service: create: %w", err)
	}

	metrics.FriendRequests.WithLabelValues("create").Inc()
	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &friendship.SenderID,
		Action:   "friendship.create",
		Resource: friendship.ID,
		Result:   "success",
		Metadata: map[string]any{"receiver_id": friendship.ReceiverID},
	})

	return s.GetByID(ctx, friendship.ID)
}

// Respond accepts or rejects a pending friend request. Only the receiver may
// respond; any other status fails without mutating the row.
func (s *FriendshipService) Respond(ctx context.Context, id, responderID, action string) (*models.Friendship, error) {
	ctx = ensureContext(ctx)

	friendship, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if friendship.ReceiverID != responderID {
		return nil, ErrNotReceiver
	}

	if !friendship.IsPending() {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("Cannot respond to a friend request with status: %s", friendship.Status))
	}

	var status string
	switch action {
	case ActionAccept:
		status = models.FriendshipStatusAccepted
	case ActionReject:
		status = models.FriendshipStatusRejected
	default:
		return nil, apperrors.NewFieldError("action", "Action must be one of: accept, reject")
	}

	if err := s.db.WithContext(ctx).Model(friendship).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("friendship service: update status: %w", err)
	}

	metrics.FriendRequests.WithLabelValues(action).Inc()
	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &responderID,
		Action:   "friendship." + action,
		Resource: friendship.ID,
		Result:   "success",
	})

	return s.GetByID(ctx, id)
}

// Delete removes a friendship row. The sender may cancel a pending request;
// either party may remove an accepted friendship.
func (s *FriendshipService) Delete(ctx context.Context, id, requesterID string) error {
	ctx = ensureContext(ctx)

	friendship, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !friendship.Involves(requesterID) {
		return ErrNotInvolved
	}

	if err := s.db.WithContext(ctx).Delete(&models.Friendship{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("friendship service: delete: %w", err)
	}

	metrics.FriendRequests.WithLabelValues("delete").Inc()
	return nil
}

// GetByID loads a friendship with both parties preloaded.
func (s *FriendshipService) GetByID(ctx context.Context, id string) (*models.Friendship, error) {
	ctx = ensureContext(ctx)

	var friendship models.Friendship
	err := s.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		First(&friendship, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFriendshipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("friendship service: load: %w", err)
	}
	return &friendship, nil
}

// AreFriends reports whether an accepted row exists in either direction.
func (s *FriendshipService) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	ctx = ensureContext(ctx)

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("status = ?", models.FriendshipStatusAccepted).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("friendship service: are friends: %w", err)
	}
	return count > 0, nil
}

// List returns friendships involving the user, filtered by direction and status.
func (s *FriendshipService) List(ctx context.Context, userID string, opts ListFriendshipsOptions) ([]models.Friendship, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver")

	switch opts.Type {
	case "sent":
		query = query.Where("sender_id = ?", userID)
	case "all":
		query = query.Where("sender_id = ? OR receiver_id = ?", userID, userID)
	default: // received
		query = query.Where("receiver_id = ?", userID)
	}

	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}

	var friendships []models.Friendship
	if err := query.Order("created_at DESC").Find(&friendships).Error; err != nil {
		return nil, fmt.Errorf("friendship service: list: %w", err)
	}
	return friendships, nil
}

// Pending returns requests awaiting the user's response.
func (s *FriendshipService) Pending(ctx context.Context, userID string) ([]models.Friendship, error) {
	return s.List(ctx, userID, ListFriendshipsOptions{Status: models.FriendshipStatusPending})
}

// Friends returns the users on the other end of accepted friendships.
func (s *FriendshipService) Friends(ctx context.Context, userID string) ([]models.User, error) {
	ctx = ensureContext(ctx)

	var friendships []models.Friendship
	err := s.db.WithContext(ctx).
		Where("status = ?", models.FriendshipStatusAccepted).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Find(&friendships).Error
	if err != nil {
		return nil, fmt.Errorf("friendship service: load accepted: %w", err)
	}

	friendIDs := make([]string, 0, len(friendships))
	for _, friendship := range friendships {
		friendIDs = append(friendIDs, friendship.OtherParty(userID))
	}

	if len(friendIDs) == 0 {
		return []models.User{}, nil
	}

	var friends []models.User
	if err := s.db.WithContext(ctx).Scopes(models.Live).Find(&friends, "id IN ?", friendIDs).Error; err != nil {
		return nil, fmt.Errorf("friendship service: load friends: %w", err)
	}
	return friends, nil
}

// Check summarises the relationship between the user and the owner of otherEmail.
func (s *FriendshipService) Check(ctx context.Context, userID, otherEmail string) (*FriendshipCheck, error) {
	ctx = ensureContext(ctx)

	var other models.User
	err := s.db.WithContext(ctx).
		Scopes(models.Live).
		First(&other, "email = ?", normaliseEmail(otherEmail)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewFieldError("user_email", "User with this email does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("friendship service: load user: %w", err)
	}

	var friendship models.Friendship
	err = s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, other.ID, other.ID, userID).
		First(&friendship).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &FriendshipCheck{Status: "none"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("friendship service: check: %w", err)
	}

	direction := "sent"
	if friendship.ReceiverID == userID {
		direction = "received"
	}

	return &FriendshipCheck{
		FriendshipID: friendship.ID,
		Status:       friendship.Status,
		Direction:    direction,
	}, nil
}

// Stats aggregates the user's friendship counters in both directions.
func (s *FriendshipService) Stats(ctx context.Context, userID string) (*FriendshipStats, error) {
	ctx = ensureContext(ctx)

	stats := &FriendshipStats{}

	sent, err := s.directionalStats(ctx, "sender_id", userID)
	if err != nil {
		return nil, err
	}
	stats.Sent = *sent

	received, err := s.directionalStats(ctx, "receiver_id", userID)
	if err != nil {
		return nil, err
	}
	stats.Received = *received

	stats.FriendsCount = sent.Accepted + received.Accepted
	return stats, nil
}

func (s *FriendshipService) directionalStats(ctx context.Context, column, userID string) (*DirectionalStats, error) {
	stats := &DirectionalStats{}

	type statusCount struct {
		Status string
		Count  int64
	}

	var rows []statusCount
	err := s.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Select("status, COUNT(*) AS count").
		Where(column+" = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("friendship service: stats: %w", err)
	}

	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case models.FriendshipStatusPending:
			stats.Pending = row.Count
		case models.FriendshipStatusAccepted:
			stats.Accepted = row.Count
		case models.FriendshipStatusRejected:
			stats.Rejected = row.Count
		}
	}

	return stats, nil
}

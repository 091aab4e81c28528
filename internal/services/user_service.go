package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/meetgrid/meetgrid/internal/models"
	"github.com/meetgrid/meetgrid/pkg/crypto"
	apperrors "github.com/meetgrid/meetgrid/pkg/errors"
)

var (
	// ErrUserNotFound indicates no live user matches the identifier.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrEmailTaken signals signup with an email that is already registered.
	ErrEmailTaken = apperrors.NewFieldError("email", "A user with this email already exists")
	// ErrAccountDisabled indicates login with a deactivated account.
	ErrAccountDisabled = apperrors.New("ACCOUNT_DISABLED", "Account is disabled", http.StatusForbidden)
)

// SignupInput captures new account details.
type SignupInput struct {
	Email    string
	Name     string
	Password string
}

// UpdateProfileInput describes the mutable profile fields.
type UpdateProfileInput struct {
	Name              *string
	InvitationPrivacy *string
}

// UserService manages accounts and the invitation privacy gate.
type UserService struct {
	db           *gorm.DB
	friendships  *FriendshipService
	auditService *AuditService
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB, friendships *FriendshipService, auditService *AuditService) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	if friendships == nil {
		return nil, errors.New("user service: friendship service is required")
	}
	return &UserService{db: db, friendships: friendships, auditService: auditService}, nil
}

// Signup registers a new account with a hashed password.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	email := normaliseEmail(input.Email)
	name := strings.TrimSpace(input.Name)

	if email == "" {
		return nil, apperrors.NewFieldError("email", "Email is required")
	}
	if name == "" {
		return nil, apperrors.NewFieldError("name", "Name is required")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Email:             email,
		Name:              name,
		Password:          hashed,
		IsActive:          true,
		InvitationPrivacy: models.InvitationPrivacyEveryone,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &user.ID,
		Action:   "user.signup",
		Resource: user.ID,
		Result:   "success",
		Metadata: map[string]any{"email": user.Email},
	})

	return user, nil
}

// Authenticate verifies credentials and stamps the last login time.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.FindActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.VerifyPassword(user.Password, password) {
		recordAudit(s.auditService, ctx, AuditEntry{
			UserID: &user.ID,
			Action: "user.login",
			Result: "failure",
		})
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("user service: stamp login: %w", err)
	}
	user.LastLoginAt = &now

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID: &user.ID,
		Action: "user.login",
		Result: "success",
	})

	return user, nil
}

// GetByID loads a live user by id.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Scopes(models.Live).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// FindActiveByEmail loads a live user by email.
func (s *UserService) FindActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).
		Scopes(models.Live).
		First(&user, "email = ?", normaliseEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// UpdateProfile mutates name and invitation privacy.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewFieldError("name", "Name must not be empty")
		}
		updates["name"] = name
	}
	if input.InvitationPrivacy != nil {
		privacy := strings.TrimSpace(*input.InvitationPrivacy)
		if !models.ValidInvitationPrivacy(privacy) {
			return nil, apperrors.NewFieldError("invitation_privacy", "Invitation privacy must be one of: everyone, friends, none")
		}
		updates["invitation_privacy"] = privacy
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("user service: update profile: %w", err)
	}

	return s.GetByID(ctx, userID)
}

// Delete soft-deletes the account.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	return s.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"is_deleted": true,
		"deleted_at": now,
		"is_active":  false,
	}).Error
}

// CanBeInvitedBy is the privacy gate: it decides whether inviter may send an
// event invitation to target. It is evaluated on every invitation create
// attempt and never cached.
func (s *UserService) CanBeInvitedBy(ctx context.Context, target *models.User, inviterID string) (bool, error) {
	ctx = ensureContext(ctx)

	switch target.InvitationPrivacy {
	case models.InvitationPrivacyEveryone, "":
		return true, nil
	case models.InvitationPrivacyNone:
		return false, nil
	case models.InvitationPrivacyFriends:
		return s.friendships.AreFriends(ctx, target.ID, inviterID)
	default:
		return false, fmt.Errorf("user service: unknown invitation privacy %q", target.InvitationPrivacy)
	}
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/internal/auth"
	"github.com/meetgrid/meetgrid/internal/models"
	"github.com/meetgrid/meetgrid/internal/services"
	appErrors "github.com/meetgrid/meetgrid/pkg/errors"
	"github.com/meetgrid/meetgrid/pkg/metrics"
	"github.com/meetgrid/meetgrid/pkg/response"
)

// AuthHandler exposes signup, login and token refresh endpoints.
type AuthHandler struct {
	users *services.UserService
	jwt   *auth.JWTService
}

// NewAuthHandler configures an auth handler with required services.
func NewAuthHandler(users *services.UserService, jwt *auth.JWTService) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt}
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1,max=128"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Signup registers a new account and returns the user with a token pair.
func (h *AuthHandler) Signup(c *gin.Context) {
	var body signupRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.users.Signup(requestContext(c), services.SignupInput{
		Email:    body.Email,
		Name:     body.Name,
		Password: body.Password,
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("signup", "failure").Inc()
		response.Error(c, err)
		return
	}

	tokens, err := h.jwt.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, "failed to issue tokens"))
		return
	}

	metrics.AuthAttempts.WithLabelValues("signup", "success").Inc()
	response.Success(c, http.StatusCreated, gin.H{
		"user":   marshalUser(user),
		"tokens": tokens,
	})
}

// Login verifies credentials and returns a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.users.Authenticate(requestContext(c), body.Email, body.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		response.Error(c, err)
		return
	}

	tokens, err := h.jwt.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, "failed to issue tokens"))
		return
	}

	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	response.Success(c, http.StatusOK, gin.H{
		"user":   marshalUser(user),
		"tokens": tokens,
	})
}

// Refresh exchanges a valid refresh token for a new token pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var body refreshRequest
	if !bindAndValidate(c, &body) {
		return
	}

	claims, err := h.jwt.ValidateRefreshToken(body.RefreshToken)
	if err != nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	// The account must still exist and be active.
	user, err := h.users.GetByID(requestContext(c), claims.UserID)
	if err != nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if !user.IsActive {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	tokens, err := h.jwt.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, "failed to issue tokens"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tokens": tokens})
}

// Me returns the authenticated user's account.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user, err := h.users.GetByID(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, marshalUser(user))
}

func marshalUser(user *models.User) gin.H {
	if user == nil {
		return gin.H{}
	}

	return gin.H{
		"id":                 user.ID,
		"email":              user.Email,
		"name":               user.Name,
		"is_active":          user.IsActive,
		"is_staff":           user.IsStaff,
		"invitation_privacy": user.InvitationPrivacy,
		"last_login_at":      user.LastLoginAt,
		"created_at":         user.CreatedAt,
	}
}

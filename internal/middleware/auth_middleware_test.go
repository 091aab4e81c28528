package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetgrid/meetgrid/internal/auditctx"
	"github.com/meetgrid/meetgrid/internal/auth"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: "middleware-test-secret"})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/protected", Auth(jwtService), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(CtxUserIDKey)})
	})
	return router, jwtService
}

func TestAuthMissingHeader(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMalformedHeader(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abcdef")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthInvalidToken(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

func TestAuthRefreshTokenRejected(t *testing.T) {
	router, jwtService := newAuthTestRouter(t)

	pair, err := jwtService.GenerateTokenPair("user-1", "user@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthInjectsActorIntoRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: "middleware-test-secret"})
	require.NoError(t, err)

	var actor auditctx.Actor
	var found bool

	router := gin.New()
	router.GET("/protected", Auth(jwtService), func(c *gin.Context) {
		actor, found = auditctx.FromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	pair, err := jwtService.GenerateTokenPair("actor-7", "actor@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	req.Header.Set("User-Agent", "meetgrid-tests/1.0")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, found)
	assert.Equal(t, "actor-7", actor.UserID)
	assert.Equal(t, "actor@example.com", actor.Email)
	assert.Equal(t, "meetgrid-tests/1.0", actor.UserAgent)
	assert.NotEmpty(t, actor.IPAddress)
}

func TestAuthValidToken(t *testing.T) {
	router, jwtService := newAuthTestRouter(t)

	pair, err := jwtService.GenerateTokenPair("user-1", "user@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

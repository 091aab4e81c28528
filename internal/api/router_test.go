package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/meetgrid/meetgrid/internal/app"
	iauth "github.com/meetgrid/meetgrid/internal/auth"
	"github.com/meetgrid/meetgrid/internal/database/testutil"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "router-test-secret", Issuer: "meetgrid-test"})
	require.NoError(t, err)

	cfg := &app.Config{}
	cfg.Monitoring.Prometheus.Enabled = true
	cfg.Monitoring.Prometheus.Endpoint = "/metrics"
	cfg.Monitoring.Health.Enabled = true

	router, err := NewRouter(db, jwtSvc, cfg)
	require.NoError(t, err)
	return router
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field,omitempty"`
	} `json:"error"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	}
	return rec, env
}

func signupAccount(t *testing.T, router *gin.Engine, email string) (userID, accessToken string) {
	t.Helper()

	rec, env := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":    email,
		"name":     "User " + email,
		"password": "correct horse battery staple",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var payload struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.NotEmpty(t, payload.User.ID)
	require.NotEmpty(t, payload.Tokens.AccessToken)
	return payload.User.ID, payload.Tokens.AccessToken
}

func TestRouterPublicAndProtectedRoutes(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Browsing events needs no token.
	rec, env := doJSON(t, router, http.MethodGet, "/api/events", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	rec, env = doJSON(t, router, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	rec, env = doJSON(t, router, http.MethodGet, "/api/countries", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	// Everything under /api that mutates state requires a token.
	rec, env = doJSON(t, router, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "UNAUTHORIZED", env.Error.Code)

	rec, _ = doJSON(t, router, http.MethodPost, "/api/events", "", gin.H{"title": "nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/friendships", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Unknown routes get the JSON not-found envelope.
	rec, env = doJSON(t, router, http.MethodGet, "/api/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestRouterSignupLoginFlow(t *testing.T) {
	router := newTestRouter(t)

	_, token := signupAccount(t, router, "router-flow-alice@example.com")

	rec, env := doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, string(env.Data), "router-flow-alice@example.com")

	rec, env = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "router-flow-alice@example.com",
		"password": "correct horse battery staple",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, env.Success)

	rec, env = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "router-flow-alice@example.com",
		"password": "wrong password entirely",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid email or password", env.Error.Message)
}

func TestRouterEventLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	_, organizerToken := signupAccount(t, router, "router-ev-organizer@example.com")
	_, guestToken := signupAccount(t, router, "router-ev-guest@example.com")

	rec, env := doJSON(t, router, http.MethodPost, "/api/events", organizerToken, gin.H{
		"title":            "HTTP surface meetup",
		"description":      "end to end",
		"date":             time.Now().Add(72 * time.Hour).Format(time.RFC3339),
		"max_participants": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var event struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &event))
	require.NotEmpty(t, event.ID)

	// Guest registers through the API.
	rec, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/events/%s/register", event.ID), guestToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// A second guest hits the capacity wall with a 400.
	_, lateToken := signupAccount(t, router, "router-ev-late@example.com")
	rec, env = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/events/%s/register", event.ID), lateToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "This event is full", env.Error.Message)

	// Only the organizer may edit: a guest gets 403, not 404.
	rec, _ = doJSON(t, router, http.MethodPatch, "/api/events/"+event.ID, guestToken, gin.H{"title": "hijacked"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = doJSON(t, router, http.MethodPatch, "/api/events/"+event.ID, organizerToken, gin.H{"title": "HTTP surface meetup v2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, string(env.Data), "HTTP surface meetup v2")

	// The event shows up publicly.
	rec, env = doJSON(t, router, http.MethodGet, "/api/events/"+event.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, string(env.Data), "HTTP surface meetup v2")
}

func TestRouterFriendshipAndInvitationFlow(t *testing.T) {
	router := newTestRouter(t)

	_, aliceToken := signupAccount(t, router, "router-fr-alice@example.com")
	_, bobToken := signupAccount(t, router, "router-fr-bob@example.com")

	rec, env := doJSON(t, router, http.MethodPost, "/api/friendships", aliceToken, gin.H{
		"receiver_email": "router-fr-bob@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var friendship struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &friendship))

	// Alice cannot answer her own request.
	rec, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/friendships/%s/respond", friendship.ID), aliceToken, gin.H{"action": "accept"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/friendships/%s/respond", friendship.ID), bobToken, gin.H{"action": "accept"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Bob only takes invitations from friends; Alice now qualifies.
	rec, _ = doJSON(t, router, http.MethodPatch, "/api/profile", bobToken, gin.H{"invitation_privacy": "friends"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = doJSON(t, router, http.MethodPost, "/api/events", aliceToken, gin.H{
		"title":       "Friends only warmup",
		"description": "invite flow",
		"date":        time.Now().Add(96 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var event struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &event))

	rec, env = doJSON(t, router, http.MethodPost, "/api/invitations", aliceToken, gin.H{
		"event":              event.ID,
		"invited_user_email": "router-fr-bob@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var invitation struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &invitation))

	rec, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/invitations/%s/respond", invitation.ID), bobToken, gin.H{"action": "accept"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Accepting put Bob on the participant list.
	rec, env = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/events/%s/participants", event.ID), aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, string(env.Data), "router-fr-bob@example.com")
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	metricsRec := httptest.NewRecorder()
	metricsReq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(metricsRec, metricsReq)
	require.Equal(t, http.StatusOK, metricsRec.Code)

	require.True(t, strings.Contains(metricsRec.Body.String(), "meetgrid_api_latency_seconds"))
}

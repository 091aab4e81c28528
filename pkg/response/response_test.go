package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/meetgrid/meetgrid/pkg/errors"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, recorder
}

func TestSuccessEnvelope(t *testing.T) {
	c, recorder := newTestContext(t)

	Success(c, http.StatusCreated, gin.H{"id": "abc"})

	require.Equal(t, http.StatusCreated, recorder.Code)

	var body Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Nil(t, body.Error)
}

func TestErrorEnvelopeCarriesField(t *testing.T) {
	c, recorder := newTestContext(t)

	Error(c, appErrors.NewFieldError("invited_user_email", "Invitation already exists for this user"))

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var body Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.NotNil(t, body.Error)
	require.Equal(t, "invited_user_email", body.Error.Field)
	require.Equal(t, "VALIDATION_ERROR", body.Error.Code)
}

func TestErrorDefaultsToInternalServer(t *testing.T) {
	c, recorder := newTestContext(t)

	Error(c, nil)

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
}

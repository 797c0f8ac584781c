package util

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRespondError_StatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"missing field", Required("test_id"), http.StatusBadRequest, `"field":"test_id"`},
		{"plain validation", fmt.Errorf("%w: bad role", ErrValidation), http.StatusBadRequest, "bad role"},
		{"not found", ErrTestNotFound, http.StatusNotFound, "test not found"},
		{"wrapped not found", pkgerrors.Wrap(ErrAttemptNotFound, "load"), http.StatusNotFound, "attempt not found"},
		{"already graded", ErrAlreadyGraded, http.StatusConflict, "already graded"},
		{"permission", ErrPermissionDenied, http.StatusForbidden, "permission denied"},
		{"closed test", ErrTestNotAvailable, http.StatusForbidden, "test not available"},
		{"bad login", ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password"},
		{"upstream busy", fmt.Errorf("gemini: %w", ErrUpstreamUnavailable), http.StatusServiceUnavailable, MsgServiceBusy},
		{"malformed", ErrMalformedResponse, http.StatusBadGateway, MsgGenericError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RespondError(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("course")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "course not found", err.Error())
}

package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/apperror"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/logger"
)

func TestError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   map[string]interface{}
	}{
		{
			name:       "conflict",
			err:        apperror.New(apperror.KindConflict, "User already exists"),
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]interface{}{"message": "User already exists"},
		},
		{
			name:       "unauthorized wrapped",
			err:        fmt.Errorf("guard: %w", apperror.New(apperror.KindUnauthorized, "Token is not valid")),
			wantStatus: http.StatusUnauthorized,
			wantBody:   map[string]interface{}{"message": "Token is not valid"},
		},
		{
			name:       "upstream",
			err:        apperror.Wrap(apperror.KindUpstream, "failed to send otp email", errors.New("smtp down")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]interface{}{"message": "Server error", "error": "failed to send otp email: smtp down"},
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]interface{}{"message": "Server error", "error": "unexpected error: boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, logger.NewNop(), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestError_ValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, logger.NewNop(), apperror.Validation(apperror.FieldError{Field: "email", Message: "Please include a valid email"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":[{"field":"email","message":"Please include a valid email"}]}`, rec.Body.String())
}

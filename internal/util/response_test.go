package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", Validationf("bad %s", "input"), http.StatusBadRequest},
		{"foreign version", ErrForeignVersion, http.StatusBadRequest},
		{"unauthorized", ErrInvalidCredentials, http.StatusUnauthorized},
		{"permission", ErrNotOwner, http.StatusForbidden},
		{"not found", ErrPromptNotFound, http.StatusNotFound},
		{"conflict", ErrAlreadyApproved, http.StatusConflict},
		{"wrapped conflict", fmt.Errorf("approve: %w", ErrAlreadyApproved), http.StatusConflict},
		{"unavailable", ErrRevocationDisabled, http.StatusServiceUnavailable},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var resp Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Code)
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, resp.Message, "disk on fire")
			}
		})
	}
}

func TestBindJSONReportsFieldErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	type request struct {
		TaskType *string `json:"task_type" binding:"omitempty,tasktype"`
		Name     string  `json:"name" binding:"required"`
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"task_type":"juggle"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req request
	assert.False(t, BindJSON(c, &req))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "task_type")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"task_type":"summarize","name":"x"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	assert.True(t, BindJSON(c, &req))
	assert.Equal(t, "summarize", *req.TaskType)
}

func TestParseBoolFlag(t *testing.T) {
	assert.True(t, ParseBoolFlag("1"))
	assert.True(t, ParseBoolFlag("true"))
	assert.False(t, ParseBoolFlag(""))
	assert.False(t, ParseBoolFlag("yes"))
	assert.Equal(t, uint(42), MustParseUint("42"))
	assert.Zero(t, MustParseUint("abc"))
}

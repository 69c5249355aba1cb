package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"prompt_library_backend/internal/model"
	"prompt_library_backend/internal/util"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubAuthenticator struct {
	users map[string]*model.User
	err   error
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*util.Claims, *model.User, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	user, ok := s.users[token]
	if !ok {
		return nil, nil, util.ErrInvalidToken
	}
	return &util.Claims{UserID: user.ID, Username: user.Username, Role: user.Role}, user, nil
}

func newTestRouter(auth Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(), AuthMiddleware(auth))
	router.GET("/me", func(c *gin.Context) {
		util.Success(c, gin.H{"username": util.GetCurrentUser(c).Username})
	})
	router.GET("/admin", RoleMiddleware(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	auth := &stubAuthenticator{users: map[string]*model.User{
		"user-token":  {BaseModel: model.BaseModel{ID: 1}, Username: "alice", Role: model.RoleUser},
		"admin-token": {BaseModel: model.BaseModel{ID: 2}, Username: "mod", Role: model.RoleAdmin},
	}}
	router := newTestRouter(auth)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing token", "/me", "", http.StatusUnauthorized},
		{"unknown token", "/me", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "/me", "Bearer user-token", http.StatusOK},
		{"user on admin route", "/admin", "Bearer user-token", http.StatusForbidden},
		{"admin on admin route", "/admin", "Bearer admin-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get(util.RequestIDHeader))
		})
	}
}

func TestAuthMiddlewareBackendFailure(t *testing.T) {
	router := newTestRouter(&stubAuthenticator{err: errors.New("redis down")})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer anything")
	req.Header.Set(util.RequestIDHeader, "fixed-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "fixed-id", w.Header().Get(util.RequestIDHeader))
}

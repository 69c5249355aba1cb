package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"prompt_library_backend/internal/config"
	"prompt_library_backend/internal/model"
	"prompt_library_backend/pkg/database"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t   *testing.T
	app *App
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		JWT: config.JWTConfig{
			Secret:        "router-test-secret-router-test-secret",
			AccessExpire:  time.Hour,
			RefreshExpire: 24 * time.Hour,
		},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		RateLimit: config.RateLimitConfig{MaxRequests: 10000, WindowMinutes: 1},
	}

	a := New(cfg, db, rdb)
	t.Cleanup(func() { a.Close(t.Context()) })
	return &testServer{t: t, app: a, db: db}
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

// login 注册（或直接建管理员）并返回访问令牌
func (s *testServer) login(username string, admin bool) string {
	s.t.Helper()
	if admin {
		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
		require.NoError(s.t, err)
		require.NoError(s.t, s.db.Create(&model.User{Username: username, Password: string(hash), Role: model.RoleAdmin}).Error)
	} else {
		w, _ := s.do(http.MethodPost, "/api/register", "", map[string]string{"username": username, "password": "password123"})
		require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	}

	w, env := s.do(http.MethodPost, "/api/token", "", map[string]string{"username": username, "password": "password123"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &tokens))
	return tokens.Access
}

type promptBody struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	Vote         int    `json:"vote"`
	LikeCount    int    `json:"like_count"`
	DislikeCount int    `json:"dislike_count"`
	UserVote     int    `json:"user_vote"`
	IsBookmarked bool   `json:"is_bookmarked"`
	UserUsername string `json:"user_username"`
}

func decodePrompt(t *testing.T, env envelope) promptBody {
	t.Helper()
	var p promptBody
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p
}

func newPromptPayload(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":              title,
		"prompt_description": "desc",
		"prompt_text":        "Write a haiku about Go.",
		"guidance":           "",
		"task_type":          "create_content",
		"output_format":      "text",
		"category":           "learning",
	}
}

func TestPromptLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	alice := s.login("alice", false)
	bob := s.login("bob", false)
	mod := s.login("mod", true)

	w, env := s.do(http.MethodPost, "/api/prompts", alice, newPromptPayload("Haiku"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodePrompt(t, env)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "alice", created.UserUsername)
	path := fmt.Sprintf("/api/prompts/%d", created.ID)

	w, _ = s.do(http.MethodGet, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodGet, path+"?mine=1", alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPost, path+"/approve", bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, env = s.do(http.MethodPost, path+"/approve", mod, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "approved", decodePrompt(t, env).Status)
	w, _ = s.do(http.MethodPost, path+"/approve", mod, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = s.do(http.MethodPost, path+"/upvote", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	voted := decodePrompt(t, env)
	assert.Equal(t, 1, voted.Vote)
	assert.Equal(t, 1, voted.UserVote)

	w, env = s.do(http.MethodPost, path+"/downvote", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	voted = decodePrompt(t, env)
	assert.Equal(t, -1, voted.Vote)
	assert.Equal(t, 0, voted.LikeCount)
	assert.Equal(t, 1, voted.DislikeCount)

	w, env = s.do(http.MethodPost, path+"/bookmark", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodePrompt(t, env).IsBookmarked)

	w, env = s.do(http.MethodGet, "/api/bookmarks", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		List  []promptBody `json:"list"`
		Total int64        `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.EqualValues(t, 1, page.Total)

	w, env = s.do(http.MethodPatch, path, alice, map[string]string{"title": "Haiku v2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "pending", decodePrompt(t, env).Status)

	// 待审核的提示词只在 mine=1 时对作者可见
	w, _ = s.do(http.MethodGet, path+"/history", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(http.MethodGet, path+"/history?mine=1", alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var history []struct {
		ID    uint   `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, "Haiku", history[0].Title)

	w, _ = s.do(http.MethodGet, path+"/history", bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(http.MethodPost, fmt.Sprintf("%s/revert/%d?mine=1", path, history[0].ID), alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Haiku", decodePrompt(t, env).Title)
}

func TestWriteBodyRejectsReadOnlyFields(t *testing.T) {
	s := newTestServer(t)
	alice := s.login("alice", false)

	payload := newPromptPayload("Sneaky")
	payload["status"] = "approved"
	w, _ := s.do(http.MethodPost, "/api/prompts", alice, payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	payload = newPromptPayload("Bad enum")
	payload["task_type"] = "juggle"
	w, _ = s.do(http.MethodPost, "/api/prompts", alice, payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeletionReviewOverHTTP(t *testing.T) {
	s := newTestServer(t)
	alice := s.login("alice", false)
	mod := s.login("mod", true)

	w, env := s.do(http.MethodPost, "/api/prompts", alice, newPromptPayload("Temporary"))
	require.Equal(t, http.StatusCreated, w.Code)
	path := fmt.Sprintf("/api/prompts/%d", decodePrompt(t, env).ID)
	w, _ = s.do(http.MethodPost, path+"/approve", mod, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodPost, path+"/request_delete", alice, nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "pending_deletion", decodePrompt(t, env).Status)

	w, _ = s.do(http.MethodPost, path+"/review-delete", mod, map[string]string{"action": "later"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, path+"/review-delete", mod, map[string]string{"action": "approve"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = s.do(http.MethodGet, path, mod, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(http.MethodGet, "/api/prompts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodPost, "/api/register", "", map[string]string{"password": "password123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	alice := s.login("alice", false)
	w, _ = s.do(http.MethodPost, "/api/register", "", map[string]string{"username": "alice", "password": "password123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env := s.do(http.MethodGet, "/api/auth/user", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		Username string `json:"username"`
		IsStaff  bool   `json:"is_staff"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "alice", profile.Username)
	assert.False(t, profile.IsStaff)

	w, _ = s.do(http.MethodPost, "/api/auth/promote-admin", alice, map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	mod := s.login("mod", true)
	w, _ = s.do(http.MethodPost, "/api/auth/promote-admin", mod, map[string]string{"username": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodPost, "/api/auth/promote-admin", mod, map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodPost, "/api/auth/promote-admin", mod, map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = s.do(http.MethodGet, "/api/auth/company-sso", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sso_authorization_url":""}`, string(env.Data))

	w, env = s.do(http.MethodGet, "/api/categories", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var categories []string
	require.NoError(t, json.Unmarshal(env.Data, &categories))
	assert.Len(t, categories, len(model.CategoryChoices))

	w, _ = s.do(http.MethodPost, "/api/token/revoke", alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = s.do(http.MethodGet, "/api/auth/user", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"redis":"up"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, _ = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestListEchoesAppliedPaging(t *testing.T) {
	s := newTestServer(t)
	alice := s.login("alice", false)

	type pageInfo struct {
		Total int64 `json:"total"`
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
	}
	cases := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"?limit=500", 1, 100},
		{"?limit=-3&page=-2", 1, 20},
		{"?page=abc&limit=5", 1, 5},
		{"?page=2&limit=10", 2, 10},
	}
	for _, path := range []string{"/api/prompts", "/api/bookmarks"} {
		for _, tc := range cases {
			w, env := s.do(http.MethodGet, path+tc.query, alice, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var page pageInfo
			require.NoError(t, json.Unmarshal(env.Data, &page))
			assert.Equal(t, tc.wantPage, page.Page, path+tc.query)
			assert.Equal(t, tc.wantLimit, page.Limit, path+tc.query)
		}
	}
}

package service

import (
	"context"
	"fmt"
	"prompt_library_backend/internal/config"
	"prompt_library_backend/internal/model"
	"prompt_library_backend/internal/repository"
	"prompt_library_backend/pkg/database"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	db         *gorm.DB
	repos      *testRepos
	prompts    *PromptService
	versions   *VersionService
	votes      *VoteService
	bookmarks  *BookmarkService
	moderation *ModerationService
	users      *UserService
	auth       *AuthService
}

type testRepos struct {
	user     *repository.UserRepository
	prompt   *repository.PromptRepository
	version  *repository.VersionRepository
	vote     *repository.VoteRepository
	bookmark *repository.BookmarkRepository
}

// setupTestDB 每个测试使用独立的内存数据库
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:        "test-secret-test-secret-test-secret",
			AccessExpire:  time.Hour,
			RefreshExpire: 24 * time.Hour,
		},
	}
}

func newTestEnv(t *testing.T, denylist *TokenDenylist) *testEnv {
	db := setupTestDB(t)
	repos := &testRepos{
		user:     repository.NewUserRepository(db),
		prompt:   repository.NewPromptRepository(db),
		version:  repository.NewVersionRepository(db),
		vote:     repository.NewVoteRepository(db),
		bookmark: repository.NewBookmarkRepository(db),
	}

	env := &testEnv{db: db, repos: repos}
	env.prompts = NewPromptService(db, repos.prompt, repos.version, repos.vote, repos.bookmark)
	env.versions = NewVersionService(db, repos.prompt, repos.version, env.prompts)
	env.votes = NewVoteService(db, repos.prompt, repos.vote, env.prompts)
	env.bookmarks = NewBookmarkService(db, repos.prompt, repos.bookmark, env.prompts)
	env.moderation = NewModerationService(db, repos.prompt, env.prompts)
	env.users = NewUserService(repos.user, repos.prompt)
	env.auth = NewAuthService(repos.user, newTestConfig(), denylist)
	return env
}

func (e *testEnv) createUser(t *testing.T, username string, role model.UserRole) Actor {
	t.Helper()
	user := &model.User{Username: username, Password: "x", Role: role}
	require.NoError(t, e.repos.user.Create(context.Background(), user))
	return ActorFromUser(user)
}

func strPtr(s string) *string { return &s }

func optStr(s string) OptionalString {
	return OptionalString{Set: true, Value: s}
}

func validInput(title string) PromptInput {
	return PromptInput{
		Title:        strPtr(title),
		Description:  optStr("描述"),
		Text:         strPtr("You are a helpful assistant."),
		Guidance:     optStr(""),
		TaskType:     strPtr("create_content"),
		OutputFormat: strPtr("text"),
		Category:     strPtr("marketing"),
	}
}

// createApproved 以 owner 身份创建并由 moderator 审核通过
func (e *testEnv) createApproved(t *testing.T, owner, moderator Actor, title string) *PromptResponse {
	t.Helper()
	ctx := context.Background()
	created, err := e.prompts.Create(ctx, owner, validInput(title))
	require.NoError(t, err)
	approved, err := e.moderation.Approve(ctx, Scope{Actor: moderator}, created.ID)
	require.NoError(t, err)
	return approved
}

func (e *testEnv) loadPrompt(t *testing.T, id uint) model.Prompt {
	t.Helper()
	var p model.Prompt
	require.NoError(t, e.db.First(&p, id).Error)
	return p
}

func (e *testEnv) countRows(t *testing.T, m interface{}, promptID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Where("prompt_id = ?", promptID).Count(&n).Error)
	return n
}

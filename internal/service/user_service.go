package service

import (
	"context"
	"prompt_library_backend/internal/model"
	"prompt_library_backend/internal/repository"
	"prompt_library_backend/internal/util"
	"prompt_library_backend/pkg/logger"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// UserService 处理用户相关的业务逻辑
type UserService struct {
	UserRepo   *repository.UserRepository
	PromptRepo *repository.PromptRepository
}

// NewUserService 创建一个新的用户服务实例
func NewUserService(userRepo *repository.UserRepository, promptRepo *repository.PromptRepository) *UserService {
	return &UserService{
		UserRepo:   userRepo,
		PromptRepo: promptRepo,
	}
}

// UserProfile 当前用户信息
// swagger:model UserProfile
type UserProfile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}

func NewUserProfile(u *model.User) UserProfile {
	return UserProfile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsStaff:  u.IsStaff(),
	}
}

// Categories 预置分类与当前用户用过的分类合并去重后排序
func (s *UserService) Categories(ctx context.Context, actor Actor) ([]string, error) {
	seen := make(map[string]struct{}, len(model.CategoryChoices))
	for _, c := range model.CategoryChoices {
		seen[c.Value] = struct{}{}
	}

	if actor.Authenticated() {
		own, err := s.PromptRepo.DistinctCategoriesByUser(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		for _, c := range own {
			if c = strings.TrimSpace(c); c != "" {
				seen[c] = struct{}{}
			}
		}
	}

	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}

// PromoteAdmin 将指定用户提升为管理员（审核员）
func (s *UserService) PromoteAdmin(ctx context.Context, actor Actor, username string) (*model.User, error) {
	if !actor.IsStaff {
		return nil, util.ErrModeratorOnly
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, util.ErrUsernameRequired
	}

	user, err := s.UserRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, translateNotFound(err, util.ErrUserNotFound)
	}
	if user.Role == model.RoleAdmin {
		return nil, util.ErrAlreadyAdmin
	}

	if err := s.UserRepo.UpdateRole(ctx, user.ID, model.RoleAdmin); err != nil {
		return nil, err
	}
	user.Role = model.RoleAdmin

	logger.Log.Info("user promoted to admin",
		zap.Uint("user_id", user.ID),
		zap.Uint("actor_id", actor.UserID),
	)
	return user, nil
}

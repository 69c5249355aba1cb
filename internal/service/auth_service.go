package service

import (
	"context"
	"errors"
	"prompt_library_backend/internal/config"
	"prompt_library_backend/internal/model"
	"prompt_library_backend/internal/repository"
	"prompt_library_backend/internal/util"
	"prompt_library_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
	Denylist *TokenDenylist
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config, denylist *TokenDenylist) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
		Denylist: denylist,
	}
}

// RegisterRequest 注册请求
// swagger:model RegisterRequest
type RegisterRequest struct {
	Username string `json:"username" binding:"max=150"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// TokenPair 登录返回的访问令牌与刷新令牌
// swagger:model TokenPair
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, util.ErrUsernameRequired
	}

	exists, err := s.UserRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Email:    strings.TrimSpace(req.Email),
		Password: string(hashedPassword),
		Role:     model.RoleUser,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		// 并发注册时唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrUsernameTaken
		}
		return nil, err
	}

	logger.Log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.UserRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	access, _, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, util.TokenTypeAccess, s.Cfg.JWT.AccessExpire)
	if err != nil {
		return nil, err
	}
	refresh, _, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, util.TokenTypeRefresh, s.Cfg.JWT.RefreshExpire)
	if err != nil {
		return nil, err
	}

	if err := s.UserRepo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		logger.Log.Warn("failed to update last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// parse 校验签名、类型与吊销状态
func (s *AuthService) parse(ctx context.Context, tokenString, tokenType string) (*util.Claims, error) {
	claims, err := util.ParseJWT(tokenString, s.Cfg.JWT.Secret)
	if err != nil {
		return nil, util.ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		return nil, util.ErrInvalidToken
	}

	denied, err := s.Denylist.IsDenylisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if denied {
		return nil, util.ErrInvalidToken
	}
	return claims, nil
}

// Authenticate 解析访问令牌并从数据库加载用户，角色以数据库为准
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*util.Claims, *model.User, error) {
	claims, err := s.parse(ctx, tokenString, util.TokenTypeAccess)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.UserRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrInvalidToken
		}
		return nil, nil, err
	}
	return claims, user, nil
}

// Refresh 用刷新令牌换新的访问令牌
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.parse(ctx, refreshToken, util.TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	user, err := s.UserRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrInvalidToken
		}
		return "", err
	}

	access, _, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, util.TokenTypeAccess, s.Cfg.JWT.AccessExpire)
	return access, err
}

// Revoke 吊销当前访问令牌，可同时吊销同一用户的刷新令牌
func (s *AuthService) Revoke(ctx context.Context, access *util.Claims, refreshToken string) error {
	if !s.Denylist.Enabled() {
		return util.ErrRevocationDisabled
	}

	if err := s.Denylist.Add(ctx, access.ID, access.RemainingTTL()); err != nil {
		return err
	}

	if refreshToken != "" {
		refresh, err := s.parse(ctx, refreshToken, util.TokenTypeRefresh)
		if err != nil {
			return err
		}
		if refresh.UserID != access.UserID {
			return util.ErrInvalidToken
		}
		if err := s.Denylist.Add(ctx, refresh.ID, refresh.RemainingTTL()); err != nil {
			return err
		}
	}

	logger.Log.Info("tokens revoked", zap.Uint("user_id", access.UserID), zap.Bool("refresh", refreshToken != ""))
	return nil
}

// EnsureAdmin 启动时创建或提升管理员账号
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, util.ErrUsernameRequired
	}

	user, err := s.UserRepo.FindByUsername(ctx, username)
	if err == nil {
		if user.Role != model.RoleAdmin {
			if err := s.UserRepo.UpdateRole(ctx, user.ID, model.RoleAdmin); err != nil {
				return nil, err
			}
			user.Role = model.RoleAdmin
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if len(password) < 8 {
		return nil, util.Validationf("admin password must be at least 8 characters")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user = &model.User{
		Username: username,
		Password: string(hashedPassword),
		Role:     model.RoleAdmin,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

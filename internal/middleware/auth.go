package middleware

import (
	"context"
	"net/http"
	"prompt_library_backend/internal/model"
	"prompt_library_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

// Authenticator 由 AuthService 实现
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*util.Claims, *model.User, error)
}

func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}

		if tokenString == "" {
			util.Error(c, http.StatusUnauthorized, "Authentication credentials were not provided")
			c.Abort()
			return
		}

		claims, user, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			util.HandleError(c, err)
			c.Abort()
			return
		}

		c.Set(util.UserContextKey, claims)
		c.Set(util.CurrentUserKey, user)
		c.Set(util.TokenContextKey, tokenString)
		c.Next()
	}
}

// RoleMiddleware 角色以数据库中的当前用户为准；管理员直接放行
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetCurrentUser(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := user.Role == model.RoleAdmin
		for _, role := range roles {
			if user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Error(c, http.StatusForbidden, util.ErrModeratorOnly.Error())
			c.Abort()
			return
		}
		c.Next()
	}
}

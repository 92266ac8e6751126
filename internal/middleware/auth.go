package middleware

import (
	"aware_backend/internal/config"
	"aware_backend/internal/model"
	"aware_backend/internal/util"
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// TokenChecker 校验 jti 是否仍在 Redis 活跃表里，登出后立即失效
type TokenChecker interface {
	IsActive(ctx context.Context, jti string) (bool, error)
}

func AuthMiddleware(cfg *config.Config, tokens TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		// 单点登录：登出或被顶号后 jti 会从活跃表移除
		if tokens != nil && claims.JTI != "" {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			active, err := tokens.IsActive(ctx, claims.JTI)
			cancel()
			if err == nil && !active {
				util.Unauthorized(c)
				c.Abort()
				return
			}
		}

		c.Set("user", claims)
		c.Next()
	}
}

func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := false
		for _, role := range roles {
			if string(user.Role) == string(role) {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

type UserActivityRepo interface {
	UpdateLastSeen(userID uint) error
}

func ActivityMiddleware(repo UserActivityRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims != nil {
			// 异步更新，不阻塞主流程
			go repo.UpdateLastSeen(claims.UserID)
		}
		c.Next()
	}
}

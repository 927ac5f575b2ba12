package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"jios-backend/pkg/config"
	"jios-backend/pkg/models"
	"jios-backend/pkg/utils"

	"github.com/sirupsen/logrus"
)

// ContextKey 用于在context中存储用户信息的键
type ContextKey string

const (
	UserContextKey ContextKey = "user"
)

// AuthMiddleware JWT认证中间件
func AuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	jwtService := utils.NewJWTService(cfg.JWTSecret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				logrus.WithField("path", r.URL.Path).Debug("Auth: missing or malformed authorization header")
				utils.WriteUnauthorizedResponse(w, "Missing authorization header")
				return
			}

			user, err := jwtService.ExtractUserFromToken(tokenString)
			if err != nil {
				logrus.WithError(err).WithField("path", r.URL.Path).Info("Auth: token rejected")
				utils.WriteUnauthorizedResponse(w, unauthorizedMessage(err))
				return
			}

			// 将用户信息添加到请求context中
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuthMiddleware 可选的认证中间件（不强制要求认证）
func OptionalAuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	jwtService := utils.NewJWTService(cfg.JWTSecret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			// token无效时按匿名处理
			if user, err := jwtService.ExtractUserFromToken(tokenString); err == nil {
				r = r.WithContext(WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader || strings.TrimSpace(tokenString) == "" {
		return "", false
	}
	return strings.TrimSpace(tokenString), true
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, utils.ErrTokenExpired):
		return "Token expired"
	case errors.Is(err, utils.ErrTokenType):
		return "Invalid token type"
	}
	return "Invalid token"
}

// userSlot lets outer middleware (request logger) see the user resolved further in.
type userSlot struct{ id string }

const userSlotKey ContextKey = "user_slot"

func withUserSlot(ctx context.Context, slot *userSlot) context.Context {
	return context.WithValue(ctx, userSlotKey, slot)
}

// WithUser 将用户写入context
func WithUser(ctx context.Context, user *models.User) context.Context {
	if slot, ok := ctx.Value(userSlotKey).(*userSlot); ok && user != nil {
		slot.id = user.ID
	}
	return context.WithValue(ctx, UserContextKey, user)
}

// GetUserFromContext 从context中获取用户信息
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}

// RequireUser 要求用户必须已认证的辅助函数
func RequireUser(ctx context.Context) (*models.User, error) {
	user, ok := GetUserFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("user not authenticated")
	}
	return user, nil
}

package middleware

import (
	"net/http"

	"jios-backend/pkg/config"

	"github.com/go-chi/cors"
)

// CORS 创建CORS中间件
func CORS(cfg *config.Config) func(http.Handler) http.Handler {
	corsOptions := cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Requested-With",
		},
		MaxAge: 300, // 5分钟
	}

	// 配置了具体来源时才允许携带凭据（AllowedOrigins为*时不能设置AllowCredentials）
	if origins := cfg.AllowedOrigins; len(origins) > 0 && !containsWildcard(origins) {
		corsOptions.AllowedOrigins = origins
		corsOptions.AllowCredentials = true
	}

	return cors.Handler(corsOptions)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

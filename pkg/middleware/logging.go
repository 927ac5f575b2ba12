package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"jios-backend/pkg/config"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// RequestLogger 请求日志中间件
func RequestLogger(cfg *config.Config) func(http.Handler) http.Handler {
	colored := !cfg.IsProduction()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// 捕获状态码
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			// auth在子路由里运行，用户通过这个槽位带回来
			slot := &userSlot{}
			next.ServeHTTP(ww, r.WithContext(withUserSlot(r.Context(), slot)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			userInfo := "anonymous"
			if slot.id != "" {
				userInfo = slot.id
			}

			method := r.Method
			statusText := http.StatusText(status)
			if colored {
				method = methodColor(method).Sprint(method)
				statusText = statusColor(status).Sprint(statusText)
			}

			entry := logrus.WithFields(logrus.Fields{
				"method":     method,
				"path":       r.URL.Path,
				"status":     status,
				"duration":   time.Since(start).String(),
				"user":       userInfo,
				"ip":         getClientIP(r),
				"request_id": middleware.GetReqID(r.Context()),
			})

			switch {
			case status >= 500:
				entry.Error(statusText)
			case status >= 400:
				entry.Warn(statusText)
			default:
				entry.Info(statusText)
			}
		})
	}
}

// getClientIP 获取客户端IP地址
func getClientIP(r *http.Request) string {
	// 代理/负载均衡器
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func statusColor(status int) *color.Color {
	switch {
	case status >= 500:
		return color.New(color.FgMagenta)
	case status >= 400:
		return color.New(color.FgRed)
	case status >= 300:
		return color.New(color.FgYellow)
	}
	return color.New(color.FgGreen)
}

func methodColor(method string) *color.Color {
	switch method {
	case http.MethodGet:
		return color.New(color.FgBlue)
	case http.MethodPost:
		return color.New(color.FgGreen)
	case http.MethodPatch:
		return color.New(color.FgCyan)
	case http.MethodDelete:
		return color.New(color.FgRed)
	}
	return color.New(color.FgWhite)
}

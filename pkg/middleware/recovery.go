package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"jios-backend/pkg/config"
	"jios-backend/pkg/utils"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Recovery 恢复中间件，处理panic并返回友好的错误信息
func Recovery(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// 连接被客户端中断，交回给net/http处理
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				stack := debug.Stack()
				logrus.WithFields(logrus.Fields{
					"panic":      rec,
					"method":     r.Method,
					"path":       r.URL.Path,
					"request_id": middleware.GetReqID(r.Context()),
				}).Error("PANIC recovered")

				if cfg.IsDevelopment() {
					// 开发环境：显示详细错误信息
					logrus.Debugf("Stack trace:\n%s", stack)
					utils.WriteErrorResponseWithCode(w, http.StatusInternalServerError,
						"INTERNAL_SERVER_ERROR",
						fmt.Sprintf("Internal server error: %v", rec),
						string(stack))
					return
				}

				// 生产环境：隐藏详细错误信息
				logrus.Errorf("Stack trace:\n%s", stack)
				utils.WriteInternalServerErrorResponse(w, "Internal server error occurred")
			}()

			next.ServeHTTP(w, r)
		})
	}
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"jios-backend/pkg/config"
	"jios-backend/pkg/database"
	"jios-backend/pkg/utils"
)

// Version 由构建参数覆盖
var Version = "1.0.0"

// HealthHandler 健康检查
type HealthHandler struct {
	config *config.Config
	db     database.DatabaseInterface
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(cfg *config.Config, db database.DatabaseInterface) *HealthHandler {
	return &HealthHandler{config: cfg, db: db}
}

// HealthCheck GET /
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 测试数据库连接
	status := "healthy"
	dbStatus := "healthy"
	if err := h.db.HealthCheck(ctx); err != nil {
		status = "degraded"
		dbStatus = "unhealthy: " + err.Error()
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"service":     "jios-backend",
		"version":     Version,
		"environment": h.config.Environment,
		"database":    h.db.Driver(),
		"db_status":   dbStatus,
		"timestamp":   time.Now().Unix(),
		"status":      status,
	})
}

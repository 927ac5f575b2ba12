// Package router wires config, storage and handlers into the chi routing table
// shared by the long-running server and the serverless entrypoint.
package router

import (
	"fmt"
	"net/http"
	"time"

	"jios-backend/pkg/config"
	"jios-backend/pkg/database"
	"jios-backend/pkg/handlers"
	customMiddleware "jios-backend/pkg/middleware"
	"jios-backend/pkg/services"
	"jios-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes 请求体上限
const maxBodyBytes = 1 << 20

// NewRouter 创建Chi路由器
func NewRouter(cfg *config.Config, db database.DatabaseInterface, opts ...services.Option) (*chi.Mux, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	svcOpts := append([]services.Option{services.WithLocation(loc)}, opts...)
	service := services.NewJioService(db, db, svcOpts...)
	profiles := services.NewProfileService(db)

	router := chi.NewRouter()
	setupMiddleware(router, cfg)
	setupRoutes(router, cfg, db, service, profiles)
	return router, nil
}

// DatabaseConfig 从应用配置生成数据库配置
func DatabaseConfig(cfg *config.Config) database.DatabaseConfig {
	return database.DatabaseConfig{
		UseLocalDB:  cfg.UseLocalDB,
		PostgresDSN: cfg.PostgresDSN,
		SQLitePath:  cfg.SQLitePath,
		AutoMigrate: cfg.AutoMigrate,
		Debug:       cfg.Debug,
	}
}

// setupMiddleware 设置全局中间件
func setupMiddleware(router *chi.Mux, cfg *config.Config) {
	// 基础中间件
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	// 先规范化路径再记录日志和路由
	router.Use(customMiddleware.Normalize())
	router.Use(customMiddleware.RequestLogger(cfg))
	router.Use(customMiddleware.Recovery(cfg))

	// CORS中间件
	router.Use(customMiddleware.CORS(cfg))

	// 超时中间件（Vercel函数有时间限制）
	router.Use(middleware.Timeout(25 * time.Second))

	// 压缩中间件
	router.Use(middleware.Compress(5))

	// 开发环境额外中间件
	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// setupRoutes 设置所有API路由
func setupRoutes(router *chi.Mux, cfg *config.Config, db database.DatabaseInterface, service *services.JioService, profiles *services.ProfileService) {
	healthHandler := handlers.NewHealthHandler(cfg, db)
	jiosHandler := handlers.NewJiosHandler(service)
	gymsHandler := handlers.NewGymsHandler(service)
	profileHandler := handlers.NewProfileHandler(profiles, utils.NewValidator(service.Now, service.Location()))

	if cfg.MetricsEnabled {
		metrics := customMiddleware.NewMetrics()
		router.Use(metrics.Instrument)
		router.Handle("/metrics", metrics.Handler())
	}

	// 健康检查端点
	router.Get("/", healthHandler.HealthCheck)

	// 数据库连接池状态端点（调试用）
	if cfg.IsDevelopment() {
		router.Get("/debug/db-pool", func(w http.ResponseWriter, r *http.Request) {
			utils.WriteSuccessResponse(w, database.GetConnectionStats())
		})
	}

	router.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.RateLimitByIP(cfg.RateLimitRPS, cfg.RateLimitBurst))
		r.Use(customMiddleware.MaxBodySize(maxBodyBytes))

		// 公开路由（不需要认证）
		r.Get("/gyms", gymsHandler.List)

		// 发帖人自己的联系资料
		r.Route("/profile", func(r chi.Router) {
			r.Use(customMiddleware.AuthMiddleware(cfg))
			r.Use(customMiddleware.ContentTypeJSON)

			r.Get("/", profileHandler.Get)
			r.Put("/", profileHandler.Put)
		})

		r.Route("/posts", func(r chi.Router) {
			// 公开详情；带令牌时记录查看者
			r.With(customMiddleware.OptionalAuthMiddleware(cfg)).Get("/{postId}", jiosHandler.Get)

			// 需要认证的路由
			r.Group(func(r chi.Router) {
				r.Use(customMiddleware.AuthMiddleware(cfg))
				r.Use(customMiddleware.ContentTypeJSON)

				r.Get("/", jiosHandler.ListOwn)
				r.Post("/", jiosHandler.Create)
				r.Get("/search", jiosHandler.Search)
				r.Patch("/{postId}", jiosHandler.Patch)
			})
		})
	})

	// 404处理
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})

	// 405处理
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponseWithCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path), "")
	})
}

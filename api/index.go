package handler

import (
	"net/http"
	"sync"

	"jios-backend/pkg/config"
	"jios-backend/pkg/database"
	"jios-backend/pkg/logging"
	"jios-backend/pkg/router"
	"jios-backend/pkg/utils"

	"github.com/sirupsen/logrus"
)

var (
	bootOnce sync.Once
	bootErr  error

	routerMu  sync.Mutex
	routerDB  database.DatabaseInterface
	cachedMux http.Handler
)

// Handler 是Vercel函数的入口点
// 所有API端点集中在一个Chi路由器中，热启动时复用路由器和数据库连接
func Handler(w http.ResponseWriter, r *http.Request) {
	cfg := config.GetCached()

	bootOnce.Do(func() {
		logging.Setup(logging.Options{
			Production: cfg.IsProduction(),
			Level:      cfg.LogLevel,
			Debug:      cfg.Debug,
		})
		if bootErr = cfg.Validate(); bootErr != nil {
			return
		}
		bootErr = cfg.ApplyTimezone()
	})
	if bootErr != nil {
		utils.WriteInternalServerErrorResponse(w, "Configuration error: "+bootErr.Error())
		return
	}

	// 获取缓存的数据库连接（失效时自动重建）
	db, err := database.GetDatabase(router.DatabaseConfig(cfg))
	if err != nil {
		logrus.WithError(err).Error("❌ Database unavailable")
		utils.WriteInternalServerErrorResponse(w, "Database unavailable")
		return
	}

	mux, err := routerFor(cfg, db)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Configuration error: "+err.Error())
		return
	}
	mux.ServeHTTP(w, r)
}

// routerFor rebuilds the router only when the pooled connection was replaced.
func routerFor(cfg *config.Config, db database.DatabaseInterface) (http.Handler, error) {
	routerMu.Lock()
	defer routerMu.Unlock()

	if cachedMux != nil && routerDB == db {
		return cachedMux, nil
	}
	mux, err := router.NewRouter(cfg, db)
	if err != nil {
		return nil, err
	}
	cachedMux, routerDB = mux, db
	return mux, nil
}

package database

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// PoolLimits 连接池参数
type PoolLimits struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

var (
	// 无服务器函数实例多、生命周期短，每个实例只保留少量连接
	serverlessPoolLimits = PoolLimits{MaxOpenConns: 5, MaxIdleConns: 2, ConnMaxLifetime: 5 * time.Minute}
	serverPoolLimits     = PoolLimits{MaxOpenConns: 25, MaxIdleConns: 10, ConnMaxLifetime: 30 * time.Minute}
)

// CurrentPoolLimits picks the pool sizing for the running environment.
func CurrentPoolLimits() PoolLimits {
	if IsVercelEnvironment() {
		return serverlessPoolLimits
	}
	return serverPoolLimits
}

func applyPoolLimits(db *sqlx.DB, limits PoolLimits) {
	db.SetMaxOpenConns(limits.MaxOpenConns)
	db.SetMaxIdleConns(limits.MaxIdleConns)
	db.SetConnMaxLifetime(limits.ConnMaxLifetime)
}

// DatabasePool 进程级缓存的数据库连接（Vercel 热启动复用）
type DatabasePool struct {
	instance DatabaseInterface
	config   DatabaseConfig
	mu       sync.RWMutex
	lastUsed time.Time
}

var (
	globalPool *DatabasePool
	poolMutex  sync.Mutex
)

// GetDatabase 获取数据库连接（单例模式 + 连接池）
func GetDatabase(config DatabaseConfig) (DatabaseInterface, error) {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if globalPool != nil && !shouldRecreateConnection(globalPool, config) {
		globalPool.mu.Lock()
		globalPool.lastUsed = time.Now()
		globalPool.mu.Unlock()

		logrus.Debug("♻️  Reusing existing database connection")
		return globalPool.instance, nil
	}

	logrus.Info("🔄 Creating new database connection pool")

	// 关闭旧连接（如果存在）
	if globalPool != nil && globalPool.instance != nil {
		globalPool.instance.Close()
		globalPool = nil
	}

	instance, err := NewDatabase(config)
	if err != nil {
		return nil, err
	}
	globalPool = &DatabasePool{
		instance: instance,
		config:   config,
		lastUsed: time.Now(),
	}
	return instance, nil
}

// shouldRecreateConnection 判断是否需要重新创建连接
func shouldRecreateConnection(pool *DatabasePool, newConfig DatabaseConfig) bool {
	if pool == nil || pool.instance == nil {
		return true
	}

	if pool.config != newConfig {
		logrus.Info("🔄 Database configuration changed, recreating connection")
		return true
	}

	// 检查连接是否过期（30分钟）
	pool.mu.RLock()
	expired := time.Since(pool.lastUsed) > 30*time.Minute
	pool.mu.RUnlock()

	if expired {
		logrus.Info("⏰ Database connection expired, recreating")
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.instance.HealthCheck(ctx); err != nil {
		logrus.WithError(err).Warn("❌ Database health check failed, recreating")
		return true
	}

	return false
}

// CloseDatabase closes the cached connection, if any.
func CloseDatabase() error {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if globalPool == nil || globalPool.instance == nil {
		return nil
	}
	err := globalPool.instance.Close()
	globalPool = nil
	return err
}

// GetConnectionStats 获取连接池统计信息
func GetConnectionStats() map[string]interface{} {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if globalPool == nil {
		return map[string]interface{}{
			"status":    "no_connection",
			"last_used": nil,
		}
	}

	globalPool.mu.RLock()
	lastUsed := globalPool.lastUsed
	globalPool.mu.RUnlock()

	return map[string]interface{}{
		"status":    "connected",
		"driver":    globalPool.instance.Driver(),
		"last_used": lastUsed.Format(time.RFC3339),
		"age":       time.Since(lastUsed).String(),
		"config": map[string]interface{}{
			"use_local_db": globalPool.config.UseLocalDB,
			"has_postgres": globalPool.config.PostgresDSN != "",
			"serverless":   IsVercelEnvironment(),
		},
	}
}

package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// NewPostgresDatabase 创建PostgreSQL数据库实例
func NewPostgresDatabase(dsn string) (*SQLDatabase, error) {
	// 尝试多种连接策略来解决Vercel Lambda的IPv6问题
	// Sanitize DSN to avoid stray CR/LF from env values
	dsn = strings.TrimSpace(dsn)
	strategies := []string{
		addConnectionParams(dsn, "connect_timeout=10"),
		addConnectionParams(dsn, "sslmode=require&connect_timeout=10"),
		dsn, // 最后尝试原始DSN
	}

	var err error
	for i, strategy := range strategies {
		log := logrus.WithField("strategy", i+1)
		log.Debug("🔄 Trying connection strategy")

		var db *sqlx.DB
		db, err = sqlx.Open(DriverPostgres, strategy)
		if err != nil {
			log.WithError(err).Warn("❌ Strategy failed to open")
			continue
		}

		// 连接池参数随运行环境（Vercel/Lambda 或常驻进程）调整
		applyPoolLimits(db, CurrentPoolLimits())

		// 测试连接
		if err = db.Ping(); err != nil {
			log.WithError(err).Warn("❌ Strategy failed to ping")
			db.Close()
			continue
		}

		log.Info("✅ PostgreSQL connection established")
		return NewSQLDatabase(db), nil
	}

	// 所有策略都失败了
	return nil, fmt.Errorf("failed to connect to PostgreSQL with all strategies: %w", err)
}

// addConnectionParams 添加连接参数到DSN
func addConnectionParams(dsn, params string) string {
	if params == "" {
		return dsn
	}

	// key=value 形式的DSN用空格分隔
	if !strings.Contains(dsn, "://") {
		return dsn + " " + strings.ReplaceAll(params, "&", " ")
	}

	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}

	return dsn + separator + params
}

package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

const defaultSQLitePath = "./data/jios.db"

// NewLocalDatabase 创建本地 SQLite 数据库实例（开发/测试用）
func NewLocalDatabase(path string) (*SQLDatabase, error) {
	if path == "" {
		path = defaultSQLitePath
	}

	if path != ":memory:" {
		dir := filepath.Dir(path)
		// 在Vercel等只读文件系统中，回退到临时目录
		if err := os.MkdirAll(dir, 0755); err != nil {
			logrus.WithError(err).WithField("dir", dir).Warn("Failed to create data directory, falling back to temp dir")
			dir = filepath.Join(os.TempDir(), "jios-data")
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create sqlite data dir: %w", err)
			}
			path = filepath.Join(dir, filepath.Base(path))
		}
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sqlx.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite 只允许单写连接
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return NewSQLDatabase(db), nil
}

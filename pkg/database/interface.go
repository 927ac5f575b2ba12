package database

import (
	"context"
	"errors"
	"fmt"
	"os"

	"jios-backend/pkg/models"

	"github.com/sirupsen/logrus"
)

// ErrRecordNotFound 查询不到记录
var ErrRecordNotFound = errors.New("record not found")

// JioRepository Jio 持久化边界
type JioRepository interface {
	CreateJio(ctx context.Context, jio *models.Jio) error
	GetJioByID(ctx context.Context, id string) (*models.Jio, error)
	ListJiosByUser(ctx context.Context, userID string) ([]models.Jio, error)
	// PatchJio performs a partial update using the provided patch map.
	// Allowed keys are the ones produced by models.PatchJioRequest.ToPatchMap.
	PatchJio(ctx context.Context, id string, patch map[string]interface{}) (*models.Jio, error)
	SearchJios(ctx context.Context, filter models.JioFilter) ([]models.Jio, error)
}

// GymDirectory 只读的健身房查询
type GymDirectory interface {
	GetGymByID(ctx context.Context, id int64) (*models.Gym, error)
	ListGyms(ctx context.Context) ([]models.Gym, error)
}

// ProfileStore 发帖人资料
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpsertProfile(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error)
}

// DatabaseInterface 定义数据库访问接口
type DatabaseInterface interface {
	JioRepository
	GymDirectory
	ProfileStore

	// 健康检查
	HealthCheck(ctx context.Context) error

	// Driver returns "postgres" or "sqlite3"
	Driver() string

	// 关闭连接
	Close() error
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	UseLocalDB  bool
	PostgresDSN string
	SQLitePath  string
	AutoMigrate bool
	Debug       bool
}

// NewDatabase 根据配置选择数据库实现：PostgreSQL > SQLite
func NewDatabase(config DatabaseConfig) (DatabaseInterface, error) {
	db, err := Open(config)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Open is NewDatabase returning the concrete store (CLI seed/migrate need it).
func Open(config DatabaseConfig) (*SQLDatabase, error) {
	var (
		db  *SQLDatabase
		err error
	)

	switch {
	case config.PostgresDSN != "":
		logrus.Info("🗄️  Using PostgreSQL database")
		db, err = NewPostgresDatabase(config.PostgresDSN)
	case config.UseLocalDB:
		logrus.WithField("path", config.SQLitePath).Info("🧰  Using local SQLite database")
		db, err = NewLocalDatabase(config.SQLitePath)
	default:
		return nil, fmt.Errorf("no valid database configuration found: set POSTGRES_DSN or USE_LOCAL_DB=true")
	}
	if err != nil {
		return nil, err
	}

	if config.AutoMigrate {
		if err := Migrate(db.DB(), db.Driver()); err != nil {
			db.Close()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	return db, nil
}

// IsVercelEnvironment 检查是否在Vercel/Lambda环境中
func IsVercelEnvironment() bool {
	vercelEnv := os.Getenv("VERCEL_ENV")
	vercelURL := os.Getenv("VERCEL_URL")
	awsLambda := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
	return vercelEnv != "" || vercelURL != "" || awsLambda != ""
}

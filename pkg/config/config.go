package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // IANA zones inside slim/serverless images

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config 应用配置结构
type Config struct {
	// 环境配置
	Environment string
	Port        string

	// 数据库配置
	UseLocalDB  bool
	PostgresDSN string
	SQLitePath  string
	AutoMigrate bool

	// JWT配置
	JWTSecret string

	// CORS配置
	AllowedOrigins []string

	// 业务时区：同一天的判断按该时区的日历日
	Timezone string

	// 限流（每个IP）
	RateLimitRPS   float64
	RateLimitBurst int

	MetricsEnabled bool

	// 日志/调试配置
	LogLevel string
	Debug    bool
}

// LoadConfig 加载配置（支持本地和Vercel环境）
func LoadConfig() *Config {
	// 根据环境加载对应的 .env 文件
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development" // 默认开发环境
	}

	switch env {
	case "production":
		loadEnvFile(".env.production")
	default:
		loadEnvFile(".env.local")
	}

	config := &Config{
		Environment:    getEnvWithDefault("ENVIRONMENT", "development"),
		Port:           getEnvWithDefault("PORT", "3000"),
		UseLocalDB:     getEnvBool("USE_LOCAL_DB", true),
		SQLitePath:     getEnvWithDefault("SQLITE_PATH", "./data/jios.db"),
		AutoMigrate:    getEnvBool("AUTO_MIGRATE", true),
		JWTSecret:      getEnvWithDefault("JWT_SECRET", defaultJWTSecret),
		Timezone:       strings.TrimSpace(os.Getenv("TIMEZONE")),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		LogLevel:       getEnvWithDefault("LOG_LEVEL", "info"),
		Debug:          getEnvBool("DEBUG", false),
	}

	// Trim whitespace to avoid trailing spaces/newlines from env sources
	config.PostgresDSN = strings.TrimSpace(os.Getenv("POSTGRES_DSN"))

	// CORS配置
	allowedOrigins := getEnvWithDefault("ALLOWED_ORIGINS", "*")
	if allowedOrigins == "*" {
		config.AllowedOrigins = []string{"*"}
	} else {
		for _, origin := range strings.Split(allowedOrigins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				config.AllowedOrigins = append(config.AllowedOrigins, origin)
			}
		}
	}

	// 配置了PostgreSQL时不再使用本地库
	if config.PostgresDSN != "" {
		config.UseLocalDB = false
	}

	if config.Environment == "production" {
		if config.PostgresDSN == "" {
			logrus.Warn("⚠️  Production environment without POSTGRES_DSN, falling back to local SQLite")
		}
		// 生产环境关闭调试
		config.Debug = false
	}

	return config
}

// Cached config (initialized once per cold start)
var (
	cachedConfig *Config
	configOnce   sync.Once
)

// GetCached returns the process-wide cached Config.
// On serverless (Vercel), it initializes once per cold start and
// reuses it across warm invocations, avoiding per-request parsing.
func GetCached() *Config {
	configOnce.Do(func() {
		cachedConfig = LoadConfig()
	})
	return cachedConfig
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		logrus.Warn("⚠️  Using default JWT secret (not recommended for production)")
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}

	if !c.UseLocalDB && c.PostgresDSN == "" {
		return fmt.Errorf("数据库配置不完整：请配置 POSTGRES_DSN 或 USE_LOCAL_DB=true")
	}

	return nil
}

// Location resolves Timezone; empty means the process local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ApplyTimezone makes the configured zone the process local zone, so that
// offset-less datetimes and calendar-day checks agree with it.
func (c *Config) ApplyTimezone() error {
	loc, err := c.Location()
	if err != nil {
		return err
	}
	time.Local = loc
	return nil
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// 辅助函数

// getEnvWithDefault 获取环境变量，如果不存在则使用默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool 获取布尔类型的环境变量
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// loadEnvFile 加载 .env 文件到环境变量（已存在的变量不会被覆盖）
func loadEnvFile(filename string) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return // 文件不存在，静默返回
	}
	if err := godotenv.Load(filename); err != nil {
		logrus.WithError(err).WithField("file", filename).Warn("Failed to load env file")
	}
}

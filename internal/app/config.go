package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/practice-backend/internal/data/db"
	"github.com/yungbote/practice-backend/internal/platform/envutil"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

const (
	TrackerMemory = "memory"
	TrackerRedis  = "redis"
)

type Config struct {
	Port    string
	LogMode string
	Env     string
	Version string

	DB db.Config

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	RedisAddr    string
	RedisChannel string

	TrackerBackend      string
	TrackerTTL          time.Duration
	LeaderboardCacheTTL time.Duration

	CatalogPath   string
	Timezone      string
	GoalResetCron string
	JobTimeout    time.Duration

	MetricsEnabled bool

	RateLimitRPS   float64
	RateLimitBurst int

	CORSOrigins []string

	// AppCheckSiteKey is passed through to clients and never verified here.
	AppCheckSiteKey string

	ShutdownTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),
		Env:     envutil.String("APP_ENV", "development"),
		Version: envutil.String("APP_VERSION", "dev"),

		DB: db.Config{
			Driver:           strings.ToLower(envutil.String("DB_DRIVER", db.DriverPostgres)),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "practice"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", "practice.db"),
			SlowThreshold:    envutil.Duration("DB_SLOW_THRESHOLD", 200*time.Millisecond),
		},

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL: envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),

		RedisAddr:    envutil.String("REDIS_ADDR", ""),
		RedisChannel: envutil.String("REDIS_CHANNEL", "practice-sse"),

		TrackerBackend:      strings.ToLower(envutil.String("TRACKER_BACKEND", TrackerMemory)),
		TrackerTTL:          envutil.Duration("TRACKER_TTL", 12*time.Hour),
		LeaderboardCacheTTL: envutil.Duration("LEADERBOARD_CACHE_TTL", 60*time.Second),

		CatalogPath:   envutil.String("CATALOG_PATH", ""),
		Timezone:      envutil.String("APP_TIMEZONE", "UTC"),
		GoalResetCron: envutil.String("GOAL_RESET_CRON", "5 0 * * *"),
		JobTimeout:    envutil.Duration("JOB_TIMEOUT", 5*time.Minute),

		MetricsEnabled: envutil.Bool("METRICS_ENABLED", false),

		RateLimitRPS:   envutil.Float("RATE_LIMIT_RPS", 5),
		RateLimitBurst: envutil.Int("RATE_LIMIT_BURST", 20),

		CORSOrigins: splitList(envutil.String("CORS_ORIGINS", "")),

		AppCheckSiteKey: envutil.String("APP_CHECK_SITE_KEY", ""),

		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
	if log != nil && cfg.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set, using insecure default")
	}
	return cfg
}

func (c Config) Validate() error {
	switch c.DB.Driver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DB.Driver)
	}
	switch c.TrackerBackend {
	case TrackerMemory:
	case TrackerRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("config: TRACKER_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("config: unsupported TRACKER_BACKEND %q", c.TrackerBackend)
	}
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return fmt.Errorf("config: JWT_SECRET_KEY is empty")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("config: ACCESS_TOKEN_TTL must be positive")
	}
	if c.RateLimitBurst < 0 {
		return fmt.Errorf("config: RATE_LIMIT_BURST must not be negative")
	}
	return nil
}

func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

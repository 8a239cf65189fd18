package app

import (
	"testing"
	"time"

	"github.com/yungbote/practice-backend/internal/data/db"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "ACCESS_TOKEN_TTL", "TRACKER_BACKEND", "CORS_ORIGINS", "GOAL_RESET_CRON"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig(nil)
	if cfg.Addr() != ":8080" {
		t.Fatalf("addr = %q", cfg.Addr())
	}
	if cfg.DB.Driver != db.DriverPostgres {
		t.Fatalf("driver = %q", cfg.DB.Driver)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Fatalf("ttl = %v", cfg.AccessTokenTTL)
	}
	if cfg.TrackerBackend != TrackerMemory {
		t.Fatalf("tracker = %q", cfg.TrackerBackend)
	}
	if cfg.CORSOrigins != nil {
		t.Fatalf("origins = %v", cfg.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("ACCESS_TOKEN_TTL", "900")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("RATE_LIMIT_RPS", "0")
	t.Setenv("APP_CHECK_SITE_KEY", "site-key")

	cfg := LoadConfig(nil)
	if cfg.Addr() != ":9000" {
		t.Fatalf("addr = %q", cfg.Addr())
	}
	if cfg.DB.Driver != db.DriverSQLite {
		t.Fatalf("driver = %q", cfg.DB.Driver)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("ttl = %v", cfg.AccessTokenTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %v", cfg.CORSOrigins)
	}
	if cfg.RateLimitRPS != 0 {
		t.Fatalf("rps = %v", cfg.RateLimitRPS)
	}
	if cfg.AppCheckSiteKey != "site-key" {
		t.Fatalf("site key = %q", cfg.AppCheckSiteKey)
	}
}

func TestConfigValidate(t *testing.T) {
	base := func() Config {
		return Config{
			DB:             db.Config{Driver: db.DriverSQLite},
			JWTSecretKey:   "secret",
			AccessTokenTTL: time.Hour,
			TrackerBackend: TrackerMemory,
		}
	}
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"bad driver", func(c *Config) { c.DB.Driver = "mysql" }, false},
		{"redis tracker without redis", func(c *Config) { c.TrackerBackend = TrackerRedis }, false},
		{"redis tracker with redis", func(c *Config) { c.TrackerBackend = TrackerRedis; c.RedisAddr = "localhost:6379" }, true},
		{"unknown tracker", func(c *Config) { c.TrackerBackend = "disk" }, false},
		{"empty secret", func(c *Config) { c.JWTSecretKey = " " }, false},
		{"zero ttl", func(c *Config) { c.AccessTokenTTL = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

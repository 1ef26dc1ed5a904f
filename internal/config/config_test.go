package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "4000" || cfg.Server.ReadTimeout != 15*time.Second || cfg.Server.RequestTimeout != 10*time.Second {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Store.Driver != DriverMemory || cfg.Store.SnapshotPath != "data/savegame.json" {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
	if cfg.Auth.Enabled || cfg.Auth.TokenExpiration != 24*time.Hour {
		t.Fatalf("unexpected auth config %+v", cfg.Auth)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.BurstSize != 20 {
		t.Fatalf("unexpected rate limit config %+v", cfg.RateLimit)
	}
	if cfg.Game.AirlineCode != "SK" || cfg.Events.SubjectPrefix != "skytycoon" || cfg.Logging.JSONFormat {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("STORE_DSN", "file:game.db")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("JWT_SECRET", strings.Repeat("k", 32))
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("AIRLINE_CODE", "zz")
	t.Setenv("RATE_LIMIT_BURST_SIZE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || !cfg.IsProduction() || !cfg.Logging.JSONFormat {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.DSN != "file:game.db" {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
	if !cfg.Auth.Enabled || cfg.Auth.TokenExpiration != 2*time.Hour {
		t.Fatalf("unexpected auth config %+v", cfg.Auth)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %q", cfg.CORS.AllowedOrigins)
	}
	if cfg.Game.AirlineCode != "ZZ" || cfg.RateLimit.BurstSize != 20 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"short secret":   {"AUTH_ENABLED": "true", "JWT_SECRET": "short"},
		"unknown driver": {"STORE_DRIVER": "mongo"},
		"missing dsn":    {"STORE_DRIVER": "postgres"},
		"zero burst":     {"RATE_LIMIT_BURST_SIZE": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

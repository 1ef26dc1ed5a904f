package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Data      DataConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Events    EventsConfig
	Game      GameConfig
}

type ServerConfig struct {
	Port           string
	Environment    string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

type StoreConfig struct {
	// Driver is one of memory, sqlite or postgres.
	Driver string
	DSN    string
	// SnapshotPath is where the memory store saves and reloads its state.
	SnapshotPath string
}

type DataConfig struct {
	AirportsCSV     string
	AircraftCatalog string
}

type AuthConfig struct {
	Enabled         bool
	JWTSecret       string
	TokenExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	Debug          bool
}

type LoggingConfig struct {
	Level      string
	JSONFormat bool
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

type EventsConfig struct {
	NATSURL       string
	SubjectPrefix string
}

type GameConfig struct {
	AirlineCode string
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Load reads .env when present, then the environment, and validates the
// result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to read .env file", "error", err)
	}

	config := &Config{
		Server:    loadServerConfig(),
		Store:     loadStoreConfig(),
		Data:      loadDataConfig(),
		Auth:      loadAuthConfig(),
		CORS:      loadCORSConfig(),
		Logging:   loadLoggingConfig(),
		RateLimit: loadRateLimitConfig(),
		Events:    loadEventsConfig(),
		Game:      loadGameConfig(),
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func getSeconds(key string, fallback int) time.Duration {
	return time.Duration(getInt(key, fallback)) * time.Second
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:           getEnv("PORT", "4000"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		ReadTimeout:    getSeconds("SERVER_READ_TIMEOUT_SECONDS", 15),
		WriteTimeout:   getSeconds("SERVER_WRITE_TIMEOUT_SECONDS", 15),
		IdleTimeout:    getSeconds("SERVER_IDLE_TIMEOUT_SECONDS", 60),
		RequestTimeout: getSeconds("SERVER_REQUEST_TIMEOUT_SECONDS", 10),
	}
}

func loadStoreConfig() StoreConfig {
	return StoreConfig{
		Driver:       strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
		DSN:          getEnv("STORE_DSN", ""),
		SnapshotPath: getEnv("SNAPSHOT_PATH", "data/savegame.json"),
	}
}

func loadDataConfig() DataConfig {
	return DataConfig{
		AirportsCSV:     getEnv("AIRPORTS_CSV", ""),
		AircraftCatalog: getEnv("AIRCRAFT_CATALOG", ""),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		Enabled:         getBool("AUTH_ENABLED", false),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		TokenExpiration: time.Duration(getInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
	}
}

func loadCORSConfig() CORSConfig {
	var origins []string
	for _, o := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return CORSConfig{
		AllowedOrigins: origins,
		Debug:          getBool("CORS_DEBUG", false),
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		JSONFormat: getEnv("ENVIRONMENT", "development") == "production",
	}
}

func loadRateLimitConfig() RateLimitConfig {
	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_REQUESTS_PER_SECOND", "10"), 64)
	if err != nil {
		rps = 10
	}
	return RateLimitConfig{
		Enabled:           getBool("RATE_LIMIT_ENABLED", true),
		RequestsPerSecond: rps,
		BurstSize:         getInt("RATE_LIMIT_BURST_SIZE", 20),
	}
}

func loadEventsConfig() EventsConfig {
	return EventsConfig{
		NATSURL:       getEnv("NATS_URL", ""),
		SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "skytycoon"),
	}
}

func loadGameConfig() GameConfig {
	return GameConfig{
		AirlineCode: strings.ToUpper(getEnv("AIRLINE_CODE", "SK")),
	}
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("STORE_DSN is required for the %s driver", c.Store.Driver)
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of memory, sqlite, postgres, got %q", c.Store.Driver)
	}
	if c.Auth.Enabled {
		if len(c.Auth.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters long when AUTH_ENABLED is set")
		}
		if c.Auth.TokenExpiration <= 0 {
			return fmt.Errorf("JWT_EXPIRATION_HOURS must be positive")
		}
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstSize <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS_PER_SECOND and RATE_LIMIT_BURST_SIZE must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

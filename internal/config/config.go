package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const devJWTSecret = "dev-secret-change-me"

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Remote    RemoteConfig
	DB        DBConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Login     LoginLimitConfig
	Sync      SyncConfig
	AI        AIConfig
	WebDir    string
	SeedUsers bool
}

type ServerConfig struct {
	Port        string
	BaseURL     string
	Environment string
}

// RemoteConfig points at the sales-tracking service.
type RemoteConfig struct {
	APIURL  string
	Timeout time.Duration
}

type DBConfig struct {
	Driver string
	DSN    string
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LoginLimitConfig struct {
	Requests int
	Window   time.Duration
}

// SyncConfig - Interval 0 disables the background replay of pending writes.
type SyncConfig struct {
	Interval time.Duration
}

type AIConfig struct {
	APIKey string
	Model  string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Remote: RemoteConfig{
			APIURL:  strings.TrimRight(getEnv("API_URL", "http://localhost:5000"), "/"),
			Timeout: parseDuration(getEnv("HTTP_TIMEOUT", "15s"), 15*time.Second),
		},
		DB: DBConfig{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			DSN:    getEnv("DB_DSN", "salestracker.db"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", devJWTSecret),
			Expiration: parseDuration(getEnv("JWT_EXPIRATION", "24h"), 24*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseStringSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		Login: LoginLimitConfig{
			Requests: getEnvInt("LOGIN_RATE_LIMIT", 10),
			Window:   parseDuration(getEnv("LOGIN_RATE_WINDOW", "60s"), time.Minute),
		},
		Sync: SyncConfig{
			Interval: parseDuration(getEnv("SYNC_INTERVAL", "0"), 0),
		},
		AI: AIConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash-001"),
		},
		WebDir:    getEnv("WEB_DIR", "./web"),
		SeedUsers: getEnvBool("SEED_DEFAULT_USERS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if i, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return i
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

// parseDuration accepts Go durations ("30s", "24h") or a bare number of seconds.
func parseDuration(s string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if i, err := strconv.Atoi(s); err == nil {
		return time.Duration(i) * time.Second
	}
	return defaultValue
}

func parseStringSlice(s string) []string {
	result := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) AIEnabled() bool {
	return c.AI.APIKey != ""
}

// Validate reports every setting the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Remote.APIURL == "" {
		errs = append(errs, errors.New("API_URL must be set"))
	}
	if c.DB.Driver != "sqlite" && c.DB.Driver != "mysql" {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite or mysql, got %q", c.DB.Driver))
	}
	if c.JWT.Secret == devJWTSecret && c.IsProduction() {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.Login.Requests <= 0 || c.Login.Window <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT and LOGIN_RATE_WINDOW must be positive"))
	}
	return errors.Join(errs...)
}

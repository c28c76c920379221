// Package config reads process settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	EnvDevelopment = "development"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required outside development")

// devJWTSecret signs tokens when APP_ENV=development and no secret is set.
const devJWTSecret = "kanso-goals-dev-secret"

type Config struct {
	// Application
	AppEnv   string
	Port     string
	LogLevel string
	Timezone *time.Location

	// Storage
	Storage    string
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis, disabled when RedisHost is empty
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Security
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration
}

// Load reads .env files (missing ones are ignored) and then the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded, using process environment")
	}

	tzName := envString("APP_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE %q: %w", tzName, err)
	}

	redisDB, err := envInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	jwtTTL, err := envDuration("JWT_TTL", 72*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:   strings.ToLower(envString("APP_ENV", "production")),
		Port:     envString("PORT", "8080"),
		LogLevel: envString("LOG_LEVEL", "info"),
		Timezone: loc,

		Storage:    strings.ToLower(envString("STORAGE", StoragePostgres)),
		DBDriver:   envString("DB_DRIVER", "pgx"),
		DBHost:     envString("DB_HOST", "localhost"),
		DBPort:     envString("DB_PORT", "5432"),
		DBUser:     envString("DB_USER", ""),
		DBPassword: envString("DB_PASSWORD", ""),
		DBName:     envString("DB_NAME", ""),
		DBSSLMode:  envString("DB_SSLMODE", "disable"),

		RedisHost:     envString("REDIS_HOST", ""),
		RedisPort:     envString("REDIS_PORT", "6379"),
		RedisPassword: envString("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		JWTSecret: envString("JWT_SECRET", ""),
		JWTIssuer: envString("JWT_ISSUER", "kanso-goals"),
		JWTTTL:    jwtTTL,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StorageMemory, StoragePostgres, c.Storage)
	}

	switch c.DBDriver {
	case "pgx", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be \"pgx\" or \"postgres\", got %q", c.DBDriver)
	}

	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}

	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return ErrMissingJWTSecret
		}
		log.Warn().Msg("JWT_SECRET not set, using the development secret")
		c.JWTSecret = devJWTSecret
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// DSN is the postgres connection URL understood by both pgx and lib/pq.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

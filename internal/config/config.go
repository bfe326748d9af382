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
)

// NotFoundMode controls how a missing book is reported to clients.
type NotFoundMode string

const (
	// NotFoundLegacy answers 200 {success:true, message} for a missing book
	// and reports success for updates and deletes that matched no row.
	NotFoundLegacy NotFoundMode = "legacy"
	// NotFoundStandard answers 404 {success:false, message}.
	NotFoundStandard NotFoundMode = "standard"
)

// ErrMissingJWTSecret is returned by Load when JWT_SECRET_KEY is unset.
var ErrMissingJWTSecret = errors.New("JWT_SECRET_KEY: must be set")

// DefaultMaxBodyBytes is the request body ceiling (25 MiB).
const DefaultMaxBodyBytes = 25 << 20

// Config holds every setting of the service.
type Config struct {
	AppHost   string
	AppPort   string
	LogLevel  string
	LogFormat string

	DBHost         string
	DBPort         int
	DBUser         string
	DBPass         string
	DBName         string
	DBMaxOpenConns int
	DBMaxIdleConns int

	// JWTSecretKey signs new tokens. JWTPreviousSecretKeys are still accepted
	// when verifying, so secrets can be rotated without logging everyone out.
	JWTSecretKey          string
	JWTPreviousSecretKeys []string
	JWTExp                time.Duration

	NotFoundMode NotFoundMode

	// CORSAllowedOrigins holds allowed origins; "*" allows any origin.
	CORSAllowedOrigins []string
	MaxBodyBytes       int64
	// AuthProtectWrites guards POST/PUT/DELETE book routes with a bearer token.
	AuthProtectWrites bool

	// RedisAddr empty disables the book cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisCacheTTL time.Duration

	// KafkaBrokers empty disables book event publishing.
	KafkaBrokers   []string
	KafkaBookTopic string
}

// DSN returns the PostgreSQL connection URL with user and password escaped.
func (c Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPass),
		Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Load reads environment variables from the file at path (if it exists)
// and builds a Config, applying defaults for unset keys.
func Load(path string) (Config, error) {
	_ = godotenv.Load(path)

	var (
		cfg Config
		err error
	)

	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "4000")
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("APP_LOG_FORMAT", "json")

	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBUser = getEnv("DB_USER", "user")
	cfg.DBPass = getEnv("DB_PASS", "password")
	cfg.DBName = getEnv("DB_DATABASE", "library")
	if cfg.DBPort, err = getEnvInt("DB_PORT", 5432); err != nil {
		return Config{}, err
	}
	if cfg.DBMaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", 16); err != nil {
		return Config{}, err
	}
	if cfg.DBMaxIdleConns, err = getEnvInt("DB_MAX_IDLE_CONNS", 8); err != nil {
		return Config{}, err
	}

	cfg.JWTSecretKey = getEnv("JWT_SECRET_KEY", "")
	if cfg.JWTSecretKey == "" {
		return Config{}, ErrMissingJWTSecret
	}
	cfg.JWTPreviousSecretKeys = splitList(getEnv("JWT_PREVIOUS_SECRET_KEYS", ""))
	expSeconds, err := getEnvInt("JWT_EXP_SECOND", int((12 * time.Hour).Seconds()))
	if err != nil {
		return Config{}, err
	}
	cfg.JWTExp = time.Duration(expSeconds) * time.Second

	switch mode := NotFoundMode(getEnv("NOT_FOUND_MODE", string(NotFoundLegacy))); mode {
	case NotFoundLegacy, NotFoundStandard:
		cfg.NotFoundMode = mode
	default:
		return Config{}, fmt.Errorf("NOT_FOUND_MODE: unknown mode %q", mode)
	}

	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))
	maxBody, err := getEnvInt("MAX_BODY_BYTES", DefaultMaxBodyBytes)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxBodyBytes = int64(maxBody)
	if cfg.AuthProtectWrites, err = getEnvBool("AUTH_PROTECT_WRITES", false); err != nil {
		return Config{}, err
	}

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	ttlSeconds, err := getEnvInt("REDIS_CACHE_TTL_SECOND", 300)
	if err != nil {
		return Config{}, err
	}
	cfg.RedisCacheTTL = time.Duration(ttlSeconds) * time.Second

	cfg.KafkaBrokers = splitList(getEnv("KAFKA_BROKERS", ""))
	cfg.KafkaBookTopic = getEnv("KAFKA_BOOK_TOPIC", "library.books")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	val := getEnv(key, "")
	if val == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	val := getEnv(key, "")
	if val == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// splitList splits a comma-separated list and trims spaces. Empty items are dropped.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if item := strings.TrimSpace(p); item != "" {
			out = append(out, item)
		}
	}
	return out
}

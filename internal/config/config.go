package config

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/hkdf"
)

// Session backends accepted by MEETUP_SESSION_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// EnvProduction is the MEETUP_ENV value that enables production checks.
const EnvProduction = "production"

// csrfKeyInfo is the HKDF info label for the CSRF key.
const csrfKeyInfo = "meetup csrf v1"

var (
	ErrMissingSecret  = errors.New("MEETUP_SECRET is required in production")
	ErrInvalidBackend = errors.New("MEETUP_SESSION_BACKEND must be sqlite, redis or memory")
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Env            string
	Addr           string
	APIBaseURL     string
	APITimeout     time.Duration
	CSRFKey        []byte
	SessionBackend string
	SessionDB      string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	SessionTTL     time.Duration
	Location       *time.Location
	Notice         string
	ResendKey      string
	EmailFrom      string
	ReplyTo        string
	PublicURL      string
	SlowRequestMs  int
	SlowUpstreamMs int
	RateLimit      int
	LogLevel       slog.Level
}

// IsProduction reports whether MEETUP_ENV is production.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads an optional .env file and then the process environment.
// PRE: none
// POST: Returns a validated Config or the first invalid setting
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromLookup(os.Getenv)
}

// FromLookup builds a Config from getenv, which returns "" for unset keys.
func FromLookup(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Env:            env("MEETUP_ENV", "development"),
		Addr:           env("MEETUP_ADDR", ":8080"),
		APIBaseURL:     env("MEETUP_API_BASE_URL", "http://localhost:8000"),
		SessionBackend: env("MEETUP_SESSION_BACKEND", BackendSQLite),
		SessionDB:      env("MEETUP_SESSION_DB", "meetup_sessions.db"),
		RedisAddr:      env("MEETUP_REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getenv("MEETUP_REDIS_PASSWORD"),
		Notice:         getenv("MEETUP_NOTICE"),
		ResendKey:      getenv("MEETUP_RESEND_KEY"),
		EmailFrom:      env("MEETUP_RESEND_FROM", "Meetup <noreply@example.com>"),
		ReplyTo:        getenv("MEETUP_REPLY_TO"),
		PublicURL:      strings.TrimRight(env("MEETUP_PUBLIC_URL", "http://localhost:8080"), "/"),
	}

	var err error
	if cfg.APITimeout, err = durationEnv(getenv, "MEETUP_API_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = durationEnv(getenv, "MEETUP_SESSION_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = intEnv(getenv, "MEETUP_REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.SlowRequestMs, err = intEnv(getenv, "MEETUP_SLOW_REQUEST_MS", 200); err != nil {
		return Config{}, err
	}
	if cfg.SlowUpstreamMs, err = intEnv(getenv, "MEETUP_SLOW_UPSTREAM_MS", 500); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit, err = intEnv(getenv, "MEETUP_RATE_LIMIT", 10); err != nil {
		return Config{}, err
	}
	offset, err := intEnv(getenv, "MEETUP_TIMEZONE_OFFSET_HOURS", 9)
	if err != nil {
		return Config{}, err
	}
	if offset < -12 || offset > 14 {
		return Config{}, fmt.Errorf("MEETUP_TIMEZONE_OFFSET_HOURS out of range: %d", offset)
	}
	cfg.Location = FixedZone(offset)

	switch cfg.SessionBackend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidBackend, cfg.SessionBackend)
	}

	if cfg.LogLevel, err = parseLevel(env("MEETUP_LOG_LEVEL", "info")); err != nil {
		return Config{}, err
	}

	secret := getenv("MEETUP_SECRET")
	if secret == "" && cfg.IsProduction() {
		return Config{}, ErrMissingSecret
	}
	if cfg.CSRFKey, err = csrfKey(secret); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FixedZone returns a UTC offset zone named like "UTC+9".
func FixedZone(offsetHours int) *time.Location {
	name := fmt.Sprintf("UTC%+d", offsetHours)
	if offsetHours == 0 {
		name = "UTC"
	}
	return time.FixedZone(name, offsetHours*3600)
}

// csrfKey derives a 32-byte key from secret, or returns a random key when
// secret is empty. A random key does not survive a restart.
func csrfKey(secret string) ([]byte, error) {
	key := make([]byte, 32)
	if secret == "" {
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate csrf key: %w", err)
		}
		slog.Warn("csrf_key_random", "hint", "set MEETUP_SECRET so form tokens survive restarts")
		return key, nil
	}
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(csrfKeyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive csrf key: %w", err)
	}
	return key, nil
}

func durationEnv(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}

func intEnv(getenv func(string) string, key string, fallback int) (int, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("MEETUP_LOG_LEVEL: %w", err)
	}
	return l, nil
}

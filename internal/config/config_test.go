package config

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func lookup(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookup(nil))
	if err != nil {
		t.Fatalf("FromLookup: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 10*time.Second {
		t.Errorf("APITimeout = %v", cfg.APITimeout)
	}
	if cfg.SessionBackend != BackendSQLite {
		t.Errorf("SessionBackend = %q", cfg.SessionBackend)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if _, off := time.Date(2025, 1, 1, 0, 0, 0, 0, cfg.Location).Zone(); off != 9*3600 {
		t.Errorf("zone offset = %d, want UTC+9", off)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if len(cfg.CSRFKey) != 32 {
		t.Errorf("CSRFKey length = %d", len(cfg.CSRFKey))
	}
	if cfg.IsProduction() {
		t.Error("default env should not be production")
	}
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookup(map[string]string{
		"MEETUP_ADDR":                  ":9090",
		"MEETUP_API_BASE_URL":          "https://api.example.com",
		"MEETUP_API_TIMEOUT":           "3s",
		"MEETUP_SESSION_BACKEND":       "redis",
		"MEETUP_REDIS_DB":              "2",
		"MEETUP_TIMEZONE_OFFSET_HOURS": "0",
		"MEETUP_LOG_LEVEL":             "debug",
		"MEETUP_PUBLIC_URL":            "https://meetup.example.com/",
	}))
	if err != nil {
		t.Fatalf("FromLookup: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.APIBaseURL != "https://api.example.com" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.APITimeout != 3*time.Second {
		t.Errorf("APITimeout = %v", cfg.APITimeout)
	}
	if cfg.SessionBackend != BackendRedis || cfg.RedisDB != 2 {
		t.Errorf("redis settings = %q %d", cfg.SessionBackend, cfg.RedisDB)
	}
	if cfg.Location.String() != "UTC" {
		t.Errorf("Location = %s", cfg.Location)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.PublicURL != "https://meetup.example.com" {
		t.Errorf("PublicURL = %q", cfg.PublicURL)
	}
}

func TestFromLookup_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad timeout", map[string]string{"MEETUP_API_TIMEOUT": "soon"}},
		{"negative timeout", map[string]string{"MEETUP_API_TIMEOUT": "-1s"}},
		{"bad backend", map[string]string{"MEETUP_SESSION_BACKEND": "postgres"}},
		{"bad offset", map[string]string{"MEETUP_TIMEZONE_OFFSET_HOURS": "nine"}},
		{"offset out of range", map[string]string{"MEETUP_TIMEZONE_OFFSET_HOURS": "20"}},
		{"bad level", map[string]string{"MEETUP_LOG_LEVEL": "loud"}},
		{"bad rate limit", map[string]string{"MEETUP_RATE_LIMIT": "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromLookup(lookup(tt.env)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFromLookup_ProductionRequiresSecret(t *testing.T) {
	_, err := FromLookup(lookup(map[string]string{"MEETUP_ENV": "production"}))
	if !errors.Is(err, ErrMissingSecret) {
		t.Errorf("err = %v, want ErrMissingSecret", err)
	}

	cfg, err := FromLookup(lookup(map[string]string{"MEETUP_ENV": "production", "MEETUP_SECRET": "s3cret"}))
	if err != nil {
		t.Fatalf("FromLookup: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction = false")
	}
}

func TestCSRFKey_DerivedDeterministically(t *testing.T) {
	a, err := csrfKey("same")
	if err != nil {
		t.Fatal(err)
	}
	b, err := csrfKey("same")
	if err != nil {
		t.Fatal(err)
	}
	c, err := csrfKey("other")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("same secret produced different keys")
	}
	if bytes.Equal(a, c) {
		t.Error("different secrets produced the same key")
	}
}

func TestFixedZone_Name(t *testing.T) {
	if got := FixedZone(9).String(); got != "UTC+9" {
		t.Errorf("FixedZone(9) = %q", got)
	}
	if got := FixedZone(-5).String(); got != "UTC-5" {
		t.Errorf("FixedZone(-5) = %q", got)
	}
}

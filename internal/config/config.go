package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr         string
	Env              string
	UpstreamURL      string
	JWTSecret        string
	RedisAddr        string
	RedisPassword    string
	IdentityCacheTTL time.Duration
	AccessCookieTTL  time.Duration
	RefreshCookieTTL time.Duration
	UpstreamTimeout  time.Duration
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RequireMarks     bool
}

func Load() Config {
	return Config{
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		Env:              getenv("APP_ENV", "development"),
		UpstreamURL:      getenv("UPSTREAM_API_URL", "http://localhost:3001"),
		JWTSecret:        getenv("JWT_SECRET", ""),
		RedisAddr:        getenv("REDIS_ADDR", ""),
		RedisPassword:    getenv("REDIS_PASSWORD", ""),
		IdentityCacheTTL: getenvDuration("IDENTITY_CACHE_TTL", 5*time.Minute),
		AccessCookieTTL:  getenvDuration("ACCESS_COOKIE_TTL", 7*24*time.Hour),
		RefreshCookieTTL: getenvDuration("REFRESH_COOKIE_TTL", 30*24*time.Hour),
		UpstreamTimeout:  getenvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		RetryMaxAttempts: getenvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryBaseDelay:   getenvDuration("RETRY_BASE_DELAY", 200*time.Millisecond),
		RequireMarks:     getenvBool("GRADING_REQUIRE_MARKS", false),
	}
}

func (c Config) Production() bool {
	return c.Env == "production"
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

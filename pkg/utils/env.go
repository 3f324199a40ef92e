package utils

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// LoadEnv loads environment variables from a .env file. A mode-specific file
// (.env.production, .env.development, ...) takes precedence over plain .env.
func LoadEnv(mode string) error {
	if mode != "" {
		name := ".env." + mode
		if _, err := os.Stat(name); err == nil {
			return godotenv.Load(name)
		}
	}
	return godotenv.Load()
}

// GetEnv returns the raw value of an environment variable.
func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetStringOrDefault returns the value of key, or def when unset or empty.
func GetStringOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetIntOrDefault returns the integer value of key, or def when unset.
func GetIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		return cast.ToInt(v)
	}
	return def
}

// GetBoolOrDefault returns the boolean value of key, or def when unset.
func GetBoolOrDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return cast.ToBool(v)
	}
	return def
}

// GetDurationOrDefault returns the duration value of key, or def when unset.
// Plain integers are interpreted as seconds.
func GetDurationOrDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n := cast.ToInt(v); n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

// Package config validates process environment variables once at
// startup, collecting every validation error and returning them joined
// rather than failing on the first one.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config holds the validated environment for one server process.
type Config struct {
	Port       string
	BindAddr   string
	LogLevel   string
	LogFormat  string

	AllowedOrigins []string

	BroadcastBuffer int

	RateLimitWSIP        string
	RateLimitRoomCreate  string
}

// ValidateEnv reads and validates every environment variable the server
// needs, returning every problem found at once rather than failing on
// the first.
func ValidateEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	var errs []string

	cfg.Port = getEnvOrDefault(getenv, "PORT", "8080")
	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT must be a valid port number between 1 and 65535 (got %q)", cfg.Port))
	}

	cfg.BindAddr = getEnvOrDefault(getenv, "BIND_ADDR", "0.0.0.0")

	cfg.LogLevel = getEnvOrDefault(getenv, "LOG_LEVEL", "info")
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be one of debug|info|warn|error (got %q)", cfg.LogLevel))
	}

	cfg.LogFormat = getEnvOrDefault(getenv, "LOG_FORMAT", "json")
	switch cfg.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be one of json|console (got %q)", cfg.LogFormat))
	}

	origins := getEnvOrDefault(getenv, "ALLOWED_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	bufStr := getEnvOrDefault(getenv, "BROADCAST_BUFFER", "16")
	buf, err := strconv.Atoi(bufStr)
	if err != nil || buf < 1 {
		errs = append(errs, fmt.Sprintf("BROADCAST_BUFFER must be a positive integer (got %q)", bufStr))
	}
	cfg.BroadcastBuffer = buf

	cfg.RateLimitWSIP = getEnvOrDefault(getenv, "RATE_LIMIT_WS_IP", "100-M")
	cfg.RateLimitRoomCreate = getEnvOrDefault(getenv, "RATE_LIMIT_ROOM_CREATE", "20-M")

	if len(errs) > 0 {
		return nil, fmt.Errorf("environment validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return cfg, nil
}

func getEnvOrDefault(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

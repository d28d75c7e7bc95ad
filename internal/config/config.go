// Package config loads sift's two configuration layers: service settings
// from environment variables, and the extraction config from a YAML file
// merged over defaults with environment overrides.
package config

import (
	"os"
	"strconv"
)

// Service holds the infrastructure settings for serve mode.
type Service struct {
	Port        int
	NatsURL     string
	NatsToken   string
	DatabaseURL string
	LogLevel    string
	ConfigPath  string
}

// LoadService reads service settings from the environment.
func LoadService() Service {
	return Service{
		Port:        envInt("SIFT_PORT", 8760),
		NatsURL:     envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:   envStr("NATS_TOKEN", ""),
		DatabaseURL: envStr("DATABASE_URL", ""),
		LogLevel:    envStr("LOG_LEVEL", "info"),
		ConfigPath:  envStr("SIFT_CONFIG", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

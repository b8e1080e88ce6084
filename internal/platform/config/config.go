// Package config centralizes environment-driven configuration so main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures the full runtime configuration of the dossier service.
type Server struct {
	Addr string

	// Admission governor settings shared by every outbound source call.
	RateLimitPerMinute int
	MaxConcurrent      int

	// SearchTimeout bounds one search end to end; zero disables the deadline.
	SearchTimeout time.Duration

	// RedisURL, when set, moves the rate window to Redis so replicas share
	// one budget. Empty keeps the in-process window.
	RedisURL string

	// PostgresURL, when set, persists audit events. Empty keeps them in memory.
	PostgresURL string

	// KafkaBrokers, when non-empty, additionally ships audit events to Kafka.
	KafkaBrokers []string
	KafkaTopic   string

	// APISigningKey enables bearer-token auth on the search endpoint when set.
	APISigningKey string

	// Feeds lists RSS/Atom feed URLs monitored for query mentions.
	Feeds []string
}

// FromEnv builds a Server config from DOSSIER_* environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:               envOr("DOSSIER_ADDR", ":8080"),
		RateLimitPerMinute: envInt("DOSSIER_RATE_LIMIT", 30),
		MaxConcurrent:      envInt("DOSSIER_MAX_CONCURRENT", 2),
		SearchTimeout:      envDuration("DOSSIER_SEARCH_TIMEOUT", 0),
		RedisURL:           os.Getenv("DOSSIER_REDIS_URL"),
		PostgresURL:        os.Getenv("DOSSIER_POSTGRES_URL"),
		KafkaTopic:         envOr("DOSSIER_KAFKA_TOPIC", "dossier.audit"),
		APISigningKey:      os.Getenv("DOSSIER_API_SIGNING_KEY"),
	}
	cfg.KafkaBrokers = envList("DOSSIER_KAFKA_BROKERS")
	cfg.Feeds = envList("DOSSIER_FEEDS")
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// envList splits a comma-separated variable, dropping empty entries.
func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Package config assembles the binary's configuration from the
// environment. Library components are configured explicitly at
// construction; only the CLI reads the environment.
package config

import (
	"os"

	"github.com/toqm-go/toqm-router/internal/metrics"
	"github.com/toqm-go/toqm-router/internal/util"
)

type Config struct {
	Logging LoggingConfig
	Metrics metrics.Config
	Routing RoutingConfig
}

type LoggingConfig struct {
	Format string
	Level  string
}

type RoutingConfig struct {
	Strategy     string
	Threshold    int
	SearchCycles int
	Scale        int
}

// FromEnv reads the environment, falling back to defaults suitable for
// local use. Malformed numeric values keep their defaults.
func FromEnv() Config {
	return Config{
		Logging: LoggingConfig{
			Format: getenvDefault("LOG_FORMAT", "text"),
			Level:  getenvDefault("LOG_LEVEL", "info"),
		},
		Metrics: metrics.Config{
			Enabled: os.Getenv("METRICS_ENABLED") == "true",
			Address: getenvDefault("METRICS_ADDR", ":9090"),
		},
		Routing: RoutingConfig{
			Strategy:     getenvDefault("TOQM_STRATEGY", "balanced"),
			Threshold:    intFromEnv("TOQM_THRESHOLD", 0),
			SearchCycles: intFromEnv("TOQM_SEARCH_CYCLES", -1),
			Scale:        intFromEnv("TOQM_SCALE", 0),
		},
	}
}

func getenvDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func intFromEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := util.Atoi(v)
	if err != nil {
		return def
	}
	return int(parsed)
}

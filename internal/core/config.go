package core

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/patchkit/patchboard/internal/storage"
)

// Config holds tool-level settings read from .patchboard/config.yaml.
// Workflow rules live in the board configuration, not here.
type Config struct {
	Actor             string
	LeaseSeconds      int
	SearchLimit       int
	AllowStealExpired bool
}

func defaultConfig() *Config {
	actor := os.Getenv("PATCHBOARD_ACTOR")
	if actor == "" {
		actor = os.Getenv("USER")
	}
	return &Config{
		Actor:             actor,
		LeaseSeconds:      3600,
		SearchLimit:       20,
		AllowStealExpired: true,
	}
}

// LoadConfig reads .patchboard/config.yaml via Viper. A missing file yields
// the defaults.
func LoadConfig(basePath string) (*Config, error) {
	cfg := defaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(storage.PatchboardDir(basePath))

	v.SetDefault("defaults.actor", cfg.Actor)
	v.SetDefault("defaults.lease_seconds", cfg.LeaseSeconds)
	v.SetDefault("defaults.search_limit", cfg.SearchLimit)
	v.SetDefault("locks.allow_steal_expired", cfg.AllowStealExpired)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.Actor = v.GetString("defaults.actor")
	cfg.LeaseSeconds = v.GetInt("defaults.lease_seconds")
	cfg.SearchLimit = v.GetInt("defaults.search_limit")
	cfg.AllowStealExpired = v.GetBool("locks.allow_steal_expired")
	return cfg, nil
}

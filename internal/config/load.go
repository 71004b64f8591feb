package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. POS_REMOTE_POSTGREST_API_KEY.
const EnvPrefix = "POS"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("local.type", "sqlite")
	v.SetDefault("local.file_path", "data/pos.db")

	v.SetDefault("remote.type", "postgrest")
	v.SetDefault("remote.postgrest.url", "")
	v.SetDefault("remote.postgrest.api_key", "")
	v.SetDefault("remote.postgrest.timeout", "10s")
	v.SetDefault("remote.mysql.host", "127.0.0.1")
	v.SetDefault("remote.mysql.port", 3306)
	v.SetDefault("remote.mysql.user", "")
	v.SetDefault("remote.mysql.password", "")
	v.SetDefault("remote.mysql.database", "pos")
	v.SetDefault("remote.mysql.replication_user", "")
	v.SetDefault("remote.mysql.replication_password", "")
	v.SetDefault("remote.mysql.server_id", 1001)
	v.SetDefault("remote.mysql.change_feed", false)

	v.SetDefault("connectivity.probe_enabled", true)
	v.SetDefault("connectivity.probe_interval", "15s")
	v.SetDefault("connectivity.probe_timeout", "5s")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval", "@every 30s")

	v.SetDefault("sync.drain_rate", 0)
	v.SetDefault("sync.seed_on_empty", true)
}

// LoadConfig reads path (if it exists) over the defaults and applies
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown store and gateway types.
func (c *Config) Validate() error {
	switch c.Local.Type {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unknown local.type %q", c.Local.Type)
	}
	switch c.Remote.Type {
	case "postgrest", "mysql":
	default:
		return fmt.Errorf("unknown remote.type %q", c.Remote.Type)
	}
	if c.Sync.DrainRate < 0 {
		return fmt.Errorf("sync.drain_rate must not be negative")
	}
	return nil
}

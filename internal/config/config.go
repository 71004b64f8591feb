package config

import (
	"time"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Local        LocalConfig        `mapstructure:"local"`
	Remote       RemoteConfig       `mapstructure:"remote"`
	Connectivity ConnectivityConfig `mapstructure:"connectivity"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Sync         SyncConfig         `mapstructure:"sync"`
}

// LocalConfig selects the Local Durable Store.
type LocalConfig struct {
	Type     string `mapstructure:"type"` // sqlite or memory
	FilePath string `mapstructure:"file_path"`
}

// RemoteConfig selects the authoritative backend.
type RemoteConfig struct {
	Type      string          `mapstructure:"type"` // postgrest or mysql
	PostgREST PostgRESTConfig `mapstructure:"postgrest"`
	MySQL     MySQLConfig     `mapstructure:"mysql"`
}

type PostgRESTConfig struct {
	URL     string `mapstructure:"url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout string `mapstructure:"timeout"`
}

func (p PostgRESTConfig) GetTimeout() time.Duration {
	return parseDuration(p.Timeout, 10*time.Second)
}

type MySQLConfig struct {
	Host                string `mapstructure:"host"`
	Port                int    `mapstructure:"port"`
	User                string `mapstructure:"user"`
	Password            string `mapstructure:"password"`
	Database            string `mapstructure:"database"`
	ReplicationUser     string `mapstructure:"replication_user"`
	ReplicationPassword string `mapstructure:"replication_password"`
	ServerID            uint32 `mapstructure:"server_id"`
	ChangeFeed          bool   `mapstructure:"change_feed"`
}

type ConnectivityConfig struct {
	ProbeEnabled  bool   `mapstructure:"probe_enabled"`
	ProbeInterval string `mapstructure:"probe_interval"`
	ProbeTimeout  string `mapstructure:"probe_timeout"`
}

func (c ConnectivityConfig) GetProbeInterval() time.Duration {
	return parseDuration(c.ProbeInterval, 15*time.Second)
}

func (c ConnectivityConfig) GetProbeTimeout() time.Duration {
	return parseDuration(c.ProbeTimeout, 5*time.Second)
}

// SchedulerConfig drives the periodic reconciler.
type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Interval string `mapstructure:"interval"`
}

type SyncConfig struct {
	// DrainRate caps commits per second during a drain. Zero means unlimited.
	DrainRate float64 `mapstructure:"drain_rate"`
	// SeedOnEmpty substitutes the built-in dataset for empty users, menu and inventory.
	SeedOnEmpty bool `mapstructure:"seed_on_empty"`
}

type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	Host         string   `mapstructure:"host"`
	AuthToken    string   `mapstructure:"auth_token"`
	ReadTimeout  string   `mapstructure:"read_timeout"`
	WriteTimeout string   `mapstructure:"write_timeout"`
	CorsOrigins  []string `mapstructure:"cors_origins"`
}

func (s ServerConfig) GetReadTimeout() time.Duration {
	return parseDuration(s.ReadTimeout, 15*time.Second)
}

func (s ServerConfig) GetWriteTimeout() time.Duration {
	return parseDuration(s.WriteTimeout, 15*time.Second)
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

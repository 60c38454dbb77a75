package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/samirrijal/zonemap/internal/core/domain"
)

// Persistence modes.
const (
	PersistDirect   = "direct"
	PersistWorkflow = "workflow"
	PersistNone     = "none"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	NATS        NATSConfig        `mapstructure:"nats"`
	Valkey      ValkeyConfig      `mapstructure:"valkey"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
	Temporal    TemporalConfig    `mapstructure:"temporal"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Map         MapConfig         `mapstructure:"map"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr      string `mapstructure:"addr"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Enabled      bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// PersistenceConfig selects how committed zone mutations reach Postgres:
// "direct" writes from the API process, "workflow" hands them to Temporal,
// "none" keeps zones in memory only.
type PersistenceConfig struct {
	Mode      string `mapstructure:"mode"`
	QueueSize int    `mapstructure:"queue_size"`
}

// MapConfig carries the toolbar defaults of the drawing UI.
type MapConfig struct {
	DefaultColor string  `mapstructure:"default_color"`
	CheckLat     float64 `mapstructure:"check_lat"`
	CheckLng     float64 `mapstructure:"check_lng"`
}

// CheckPoint is the coordinate tested by the "check coordinate" button.
func (m MapConfig) CheckPoint() domain.Coordinate {
	return domain.Coordinate{Lat: m.CheckLat, Lng: m.CheckLng}
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: ZONEMAP_DATABASE_HOST → database.host
	v.SetEnvPrefix("ZONEMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "zonemap")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "zonemap")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.key_prefix", "zonemap:")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "zone-sync")
	v.SetDefault("persistence.mode", PersistDirect)
	v.SetDefault("persistence.queue_size", 256)
	v.SetDefault("map.default_color", domain.DefaultColor.Hex())
	v.SetDefault("map.check_lat", 47.4979)
	v.SetDefault("map.check_lng", 19.0402)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	switch c.Persistence.Mode {
	case PersistDirect, PersistWorkflow:
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	case PersistNone:
	default:
		errs = append(errs, fmt.Sprintf("persistence.mode must be direct, workflow or none, got %q", c.Persistence.Mode))
	}
	if c.Persistence.Mode == PersistWorkflow {
		if c.Temporal.HostPort == "" {
			errs = append(errs, "temporal.host_port is required in workflow mode")
		}
		if c.Temporal.TaskQueue == "" {
			errs = append(errs, "temporal.task_queue is required in workflow mode")
		}
	}
	if c.Persistence.QueueSize <= 0 {
		errs = append(errs, "persistence.queue_size must be positive")
	}

	if _, err := domain.ParseColor(c.Map.DefaultColor); err != nil {
		errs = append(errs, fmt.Sprintf("map.default_color: %v", err))
	}
	if !c.Map.CheckPoint().Valid() {
		errs = append(errs, fmt.Sprintf("map check point (%v, %v) is not a valid coordinate", c.Map.CheckLat, c.Map.CheckLng))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

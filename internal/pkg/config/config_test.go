package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Server:      ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
		Database:    DatabaseConfig{Host: "localhost", Port: 5432, User: "zonemap", DBName: "zonemap"},
		Temporal:    TemporalConfig{HostPort: "localhost:7233", TaskQueue: "zone-sync"},
		Persistence: PersistenceConfig{Mode: PersistDirect, QueueSize: 256},
		Map:         MapConfig{DefaultColor: "#2196F3", CheckLat: 47.4979, CheckLng: 19.0402},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("zonemap-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Persistence.Mode != PersistDirect {
		t.Errorf("expected direct mode, got %q", cfg.Persistence.Mode)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("expected 10 max conns, got %d", cfg.Database.MaxConns)
	}
	if cfg.Map.DefaultColor != "#2196F3" {
		t.Errorf("expected #2196F3, got %q", cfg.Map.DefaultColor)
	}
	if p := cfg.Map.CheckPoint(); p.Lat != 47.4979 || p.Lng != 19.0402 {
		t.Errorf("unexpected check point %+v", p)
	}
	if cfg.Telemetry.ServiceName != "zonemap-test" {
		t.Errorf("expected service name from argument, got %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ZONEMAP_SERVER_PORT", "9090")
	t.Setenv("ZONEMAP_PERSISTENCE_MODE", "none")
	t.Setenv("ZONEMAP_MAP_DEFAULT_COLOR", "#ff0000")

	cfg, err := Load("zonemap-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Persistence.Mode != PersistNone {
		t.Errorf("expected none, got %q", cfg.Persistence.Mode)
	}
	if cfg.Map.DefaultColor != "#ff0000" {
		t.Errorf("expected #ff0000, got %q", cfg.Map.DefaultColor)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad mode", func(c *Config) { c.Persistence.Mode = "s3" }, "persistence.mode"},
		{"no db host in direct mode", func(c *Config) { c.Database.Host = "" }, "database.host"},
		{"no db needed in memory mode", func(c *Config) { c.Persistence.Mode = PersistNone; c.Database = DatabaseConfig{} }, ""},
		{"workflow needs task queue", func(c *Config) { c.Persistence.Mode = PersistWorkflow; c.Temporal.TaskQueue = "" }, "temporal.task_queue"},
		{"bad color", func(c *Config) { c.Map.DefaultColor = "blue" }, "map.default_color"},
		{"bad check point", func(c *Config) { c.Map.CheckLat = 120 }, "check point"},
		{"zero queue", func(c *Config) { c.Persistence.QueueSize = 0 }, "queue_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = -1
	cfg.Database.User = ""
	cfg.Map.DefaultColor = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"server.port", "database.user", "map.default_color"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

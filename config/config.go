package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Export   ExportConfig   `yaml:"export"`
	Workflow WorkflowConfig `yaml:"workflow"`
	Push     PushConfig     `yaml:"push"`
}

// ServerConfig holds the local HTTP API configuration.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateBurst       int           `yaml:"rate_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the pallet record store configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // sqlite or postgres
	DSN                    string `yaml:"dsn"`
	LogLevel               string `yaml:"log_level"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// SessionConfig selects where the operator session is persisted.
type SessionConfig struct {
	Backend string `yaml:"backend"` // sql, badger or memory
	Path    string `yaml:"path"`    // badger directory
}

// ExportConfig holds the CSV export configuration.
type ExportConfig struct {
	Dir            string        `yaml:"dir"`
	WorkerPoolSize int           `yaml:"worker_pool_size"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"`
}

// WorkflowConfig tunes the cubing workflow.
type WorkflowConfig struct {
	SaveGuardTTLSeconds int           `yaml:"save_guard_ttl_seconds"`
	SaveGuardTTL        time.Duration `yaml:"-"`
	SummaryVisiblePros  int           `yaml:"summary_visible_pros"`
}

// PushConfig holds the VAPID keys for "export ready" web push notifications.
// Leaving the keys empty disables push.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are set.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateBurst <= 0 {
		cfg.Server.RateBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "cubing.db"
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Session.Backend == "" {
		cfg.Session.Backend = "sql"
	}
	if cfg.Session.Backend == "badger" && cfg.Session.Path == "" {
		cfg.Session.Path = "session"
	}

	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "CubingReports"
	}
	if cfg.Export.WorkerPoolSize <= 0 {
		log.Printf("export.worker_pool_size is not set or invalid; defaulting to 1")
		cfg.Export.WorkerPoolSize = 1
	}
	if cfg.Export.TimeoutSeconds <= 0 {
		cfg.Export.TimeoutSeconds = 60
	}
	cfg.Export.Timeout = time.Duration(cfg.Export.TimeoutSeconds) * time.Second

	if cfg.Workflow.SaveGuardTTLSeconds <= 0 {
		cfg.Workflow.SaveGuardTTLSeconds = 30
	}
	cfg.Workflow.SaveGuardTTL = time.Duration(cfg.Workflow.SaveGuardTTLSeconds) * time.Second
	if cfg.Workflow.SummaryVisiblePros <= 0 {
		cfg.Workflow.SummaryVisiblePros = 4
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}
}

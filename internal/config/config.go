package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Engine    EngineConfig    `yaml:"engine"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	MCP       MCPConfig       `yaml:"mcp"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig selects the store. Postgres uses the connection fields;
// SQLite only needs Path.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey     string `yaml:"api_key"`
	BcryptCost int    `yaml:"bcrypt_cost"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type EngineConfig struct {
	PicksPerGroup   int `yaml:"picks_per_group"`
	HistoryLimit    int `yaml:"history_limit"`
	MaxHistoryLimit int `yaml:"max_history_limit"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MCPConfig configures the stdio MCP binary, which acts for a single user.
type MCPConfig struct {
	UserID int `yaml:"user_id"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix GYMSPLIT_ and underscore-separated paths:
//
//	GYMSPLIT_SERVER_HOST, GYMSPLIT_SERVER_PORT,
//	GYMSPLIT_DB_DRIVER, GYMSPLIT_DB_PATH,
//	GYMSPLIT_DB_HOST, GYMSPLIT_DB_PORT, GYMSPLIT_DB_NAME,
//	GYMSPLIT_DB_USER, GYMSPLIT_DB_PASSWORD, GYMSPLIT_DB_SSLMODE,
//	GYMSPLIT_AUTH_API_KEY, GYMSPLIT_TAILSCALE_ENABLED,
//	GYMSPLIT_ENGINE_PICKS_PER_GROUP, GYMSPLIT_MCP_USER_ID
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func applyEnvOverrides(cfg *Config) {
	envString("GYMSPLIT_SERVER_HOST", &cfg.Server.Host)
	envInt("GYMSPLIT_SERVER_PORT", &cfg.Server.Port)
	envString("GYMSPLIT_DB_DRIVER", &cfg.Database.Driver)
	envString("GYMSPLIT_DB_PATH", &cfg.Database.Path)
	envString("GYMSPLIT_DB_HOST", &cfg.Database.Host)
	envInt("GYMSPLIT_DB_PORT", &cfg.Database.Port)
	envString("GYMSPLIT_DB_NAME", &cfg.Database.Name)
	envString("GYMSPLIT_DB_USER", &cfg.Database.User)
	envString("GYMSPLIT_DB_PASSWORD", &cfg.Database.Password)
	envString("GYMSPLIT_DB_SSLMODE", &cfg.Database.SSLMode)
	envString("GYMSPLIT_AUTH_API_KEY", &cfg.Auth.APIKey)
	if v := os.Getenv("GYMSPLIT_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	envString("GYMSPLIT_TAILSCALE_HOSTNAME", &cfg.Tailscale.Hostname)
	envInt("GYMSPLIT_ENGINE_PICKS_PER_GROUP", &cfg.Engine.PicksPerGroup)
	envInt("GYMSPLIT_MCP_USER_ID", &cfg.MCP.UserID)
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Engine.PicksPerGroup == 0 {
		cfg.Engine.PicksPerGroup = 4
	}
	if cfg.Engine.HistoryLimit == 0 {
		cfg.Engine.HistoryLimit = 10
	}
	if cfg.Engine.MaxHistoryLimit == 0 {
		cfg.Engine.MaxHistoryLimit = 100
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "gymsplit"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	default:
		return fmt.Errorf("database.driver %q is not one of %s, %s", c.Database.Driver, DriverPostgres, DriverSQLite)
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("auth.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Engine.PicksPerGroup < 0 {
		return fmt.Errorf("engine.picks_per_group must be positive")
	}
	if c.Engine.HistoryLimit < 0 || c.Engine.MaxHistoryLimit < 0 {
		return fmt.Errorf("engine history limits must be positive")
	}
	if c.Tailscale.Enabled && c.Tailscale.StateDir == "" {
		return fmt.Errorf("tailscale.state_dir is required when tailscale is enabled")
	}
	return nil
}

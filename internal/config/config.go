// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/pelletier/go-toml/v2"

	"balance-ledger/internal/store/surreal"
	"balance-ledger/pkg/db"
)

// Supported store backends.
const (
	BackendPostgres = "postgres"
	BackendSurreal  = "surreal"
	BackendMemory   = "memory"
)

// ConfigFileEnv names the environment variable holding an optional TOML config file path.
const ConfigFileEnv = "LEDGER_CONFIG"

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort   string         `env:"SERVER_PORT" toml:"server_port"`
	AdminKey     string         `env:"ADMIN_KEY" toml:"admin_key"`
	StoreBackend string         `env:"STORE_BACKEND" toml:"store_backend"`
	DB           db.Config      `toml:"db"`
	Surreal      surreal.Config `toml:"surreal"`

	LogLevel  string `env:"LOG_LEVEL" toml:"log_level"`
	LogPretty bool   `env:"LOG_PRETTY" toml:"log_pretty"`

	// Requests per second and burst allowed per client IP on signup and login.
	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT" toml:"auth_rate_limit"`
	AuthRateBurst int     `env:"AUTH_RATE_BURST" toml:"auth_rate_burst"`
	// Only set behind a reverse proxy that overwrites X-Forwarded-For.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" toml:"trust_proxy_headers"`

	SerializeMutations  bool `env:"SERIALIZE_MUTATIONS" toml:"serialize_mutations"`
	BcryptCost          int  `env:"BCRYPT_COST" toml:"bcrypt_cost"`
	DepositHistoryLimit int  `env:"DEPOSIT_HISTORY_LIMIT" toml:"deposit_history_limit"`
}

// NewDefaultConfig returns the configuration used for local development.
func NewDefaultConfig() *AppConfig {
	return &AppConfig{
		ServerPort:   "8080",
		StoreBackend: BackendPostgres,
		DB: db.Config{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "password",
			DBName:   "ledgerdb",
			SSLMode:  "disable",
		},
		Surreal: surreal.Config{
			Address:   "ws://localhost:8000/rpc",
			Username:  "root",
			Password:  "root",
			Namespace: "ledger",
			Database:  "ledger",
		},
		LogLevel:            "info",
		AuthRateLimit:       5,
		AuthRateBurst:       10,
		SerializeMutations:  true,
		BcryptCost:          10,
		DepositHistoryLimit: 20,
	}
}

// LoadConfig builds the configuration from defaults, then the TOML file named
// by LEDGER_CONFIG if set, then environment variables.
func LoadConfig() (*AppConfig, error) {
	cfg := NewDefaultConfig()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable default.
func (c *AppConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.AdminKey) == "" {
		errs = append(errs, errors.New("ADMIN_KEY must be set"))
	}
	switch c.StoreBackend {
	case BackendPostgres, BackendSurreal, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	if c.ServerPort == "" {
		errs = append(errs, errors.New("SERVER_PORT must not be empty"))
	}
	if c.AuthRateLimit <= 0 || c.AuthRateBurst <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT and AUTH_RATE_BURST must be positive"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST %d out of range 4..31", c.BcryptCost))
	}
	if c.DepositHistoryLimit <= 0 {
		errs = append(errs, errors.New("DEPOSIT_HISTORY_LIMIT must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

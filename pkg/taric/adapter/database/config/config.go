// Package config decodes per-connection database settings.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// PoolConfig holds connection pool limits.
type PoolConfig struct {
	MaxOpenConns           int `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns           int `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes" mapstructure:"conn_max_lifetime_minutes"`
}

// DatabaseConfig is one named connection.
type DatabaseConfig struct {
	Type     string     `yaml:"type" mapstructure:"type"` // sqlite, postgres or mysql
	Host     string     `yaml:"host" mapstructure:"host"`
	Port     int        `yaml:"port" mapstructure:"port"`
	Database string     `yaml:"database" mapstructure:"database"` // file path for sqlite
	User     string     `yaml:"user" mapstructure:"user"`
	Password string     `yaml:"password" mapstructure:"password"`
	Sslmode  string     `yaml:"sslmode" mapstructure:"sslmode"`
	Pool     PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// Decode converts a raw map from the configuration tree into a DatabaseConfig.
// Numeric strings coming from environment overrides are accepted.
func Decode(raw interface{}) (DatabaseConfig, error) {
	var cfg DatabaseConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return cfg, err
	}
	if err := dec.Decode(raw); err != nil {
		return cfg, fmt.Errorf("decode database config: %w", err)
	}
	if cfg.Type == "" {
		return cfg, fmt.Errorf("database config has no type")
	}
	return cfg, nil
}

// Lookup decodes the named entry of a raw database map.
func Lookup(databases map[string]interface{}, name string) (DatabaseConfig, error) {
	raw, ok := databases[name]
	if !ok {
		return DatabaseConfig{}, fmt.Errorf("database %q is not configured", name)
	}
	return Decode(raw)
}

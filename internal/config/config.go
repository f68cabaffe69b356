// Package config loads ferrodb.yaml via viper.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config is the full process configuration.
type Config struct {
	Storage struct {
		PageSize     int    `mapstructure:"page_size"`
		PoolCapacity int    `mapstructure:"pool_capacity"`
		PoolKind     string `mapstructure:"pool_kind"`    // "buffered" | "unlimited"
		Replacement  string `mapstructure:"replacement"`  // "fifo" | "lru" | "random" | "clock" | "noop"
		Workdir      string `mapstructure:"workdir"`
	} `mapstructure:"storage"`

	Server struct {
		Port      int `mapstructure:"port"`
		StatsPort int `mapstructure:"stats_port"`
	} `mapstructure:"server"`
}

// Defaults returns the configuration a fresh install starts from.
func Defaults() *Config {
	var cfg Config
	cfg.Storage.PageSize = 8192
	cfg.Storage.PoolCapacity = 128
	cfg.Storage.PoolKind = "buffered"
	cfg.Storage.Replacement = "lru"
	cfg.Storage.Workdir = "./data"
	cfg.Server.Port = 1337
	cfg.Server.StatsPort = 8766
	return &cfg
}

// Load reads path (a YAML file) over the defaults; a missing file yields the
// defaults unchanged. The FERRODB_ADDR environment override is applied by
// Addr, not here.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}

	return cfg, nil
}

// Addr returns the server's listen address, honoring FERRODB_ADDR if set.
func (c *Config) Addr() string {
	if addr := os.Getenv("FERRODB_ADDR"); addr != "" {
		return addr
	}
	return fmt.Sprintf("127.0.0.1:%d", c.Server.Port)
}

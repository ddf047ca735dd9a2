package config

import (
	"errors"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"leviathan-server/internal/util"
)

// store backends
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config provides configuration for the Leviathan game server
type Config struct {
	loaded         bool
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	JWT            struct {
		PublicKey  string `yaml:"publicKey" envconfig:"public_key"`
		PrivateKey string `yaml:"privateKey" envconfig:"private_key"`
	}
	Log struct {
		Level             string `yaml:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	}
	Sync struct {
		// Store is one of memory, redis or postgres
		Store        string        `yaml:"store"`
		PollInterval time.Duration `yaml:"pollInterval" envconfig:"poll_interval"`
		Redis        struct {
			Addr string `yaml:"addr"`
			DB   int    `yaml:"db"`
		}
	}
	Fees struct {
		Platform float64 `yaml:"platform"`
		Creator  float64 `yaml:"creator"`
	}
	BlackjackTarget int `yaml:"blackjackTarget" envconfig:"blackjack_target"`
}

var config Config

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	var c Config
	c.PGDSN = ""
	c.MigrationsPath = "./sql"
	c.JWT.PublicKey = "public.pem"
	c.JWT.PrivateKey = "private.key"
	c.Log.Level = "info"
	c.Sync.Store = StoreMemory
	c.Sync.PollInterval = time.Second
	c.Sync.Redis.Addr = "localhost:6379"
	c.Fees.Platform = 0.05
	c.Fees.Creator = 0.02
	c.BlackjackTarget = 21

	return c
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// A missing config file is not an error, the defaults and environment are used instead
func Load() error {
	cfg := DefaultConfig()

	configFile := util.Getenv("LEVIATHAN_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err == nil {
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := envconfig.Process("leviathan", &cfg); err != nil {
		return err
	}

	cfg.loaded = true
	config = cfg
	return nil
}

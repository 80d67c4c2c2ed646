package config

import (
	"path/filepath"
	"time"

	"stagekeeper/internal/env"

	"github.com/spf13/viper"
)

/**
 * Server configuration parameters
 * @property {string} address - Daemon API listening address (e.g. "127.0.0.1:8999")
 * @property {string} socket - Unix socket file name served alongside TCP
 * @property {string} mode - Gin mode (debug/release/test)
 */
type ServerConfig struct {
	Address string `mapstructure:"address"`
	Socket  string `mapstructure:"socket"`
	Mode    string `mapstructure:"mode"`
}

/**
 * Logging configuration
 * @property {string} level - Log level (debug/info/warn/error)
 * @property {string} path - Log file path, "console" for stdout
 */
type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

/**
 * Supervision configuration
 * @property {string} grace_period - Per-child wait before force kill on shutdown
 */
type SuperviseConfig struct {
	GracePeriod time.Duration `mapstructure:"grace_period"`
}

type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Supervise SuperviseConfig `mapstructure:"supervise"`
}

/**
 * Load application configuration from YAML file
 * @description
 * - Searches the working directory and the stagekeeper home dir
 * - Missing file is not an error, defaults apply
 */
func LoadConfig() (*AppConfig, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(env.StagekeeperDir)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg AppConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var Config AppConfig

func collectConfig(cfg *AppConfig) *AppConfig {
	if cfg.Server.Address == "" {
		cfg.Server.Address = "127.0.0.1:8999"
	}
	if cfg.Server.Socket == "" {
		cfg.Server.Socket = "stagekeeper.sock"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = filepath.Join(env.StagekeeperDir, "logs", "stagekeeper.log")
	}
	if cfg.Supervise.GracePeriod <= 0 {
		cfg.Supervise.GracePeriod = 10 * time.Second
	}
	return cfg
}

func init() {
	cfg, err := LoadConfig()
	if err == nil {
		Config = *cfg
	}
	collectConfig(&Config)
}

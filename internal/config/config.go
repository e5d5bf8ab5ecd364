// Package config loads lighthouse configuration from file and environment.
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Docker     DockerConfig     `mapstructure:"docker"`
	Registry   RegistryConfig   `mapstructure:"registry"`
	Pub        PubConfig        `mapstructure:"pub"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Plugins    PluginsConfig    `mapstructure:"plugins"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// DockerConfig holds Docker client configuration.
type DockerConfig struct {
	Host    string `mapstructure:"host"`
	Network string `mapstructure:"network"`
}

// RegistryConfig locates job images.
type RegistryConfig struct {
	Host      string `mapstructure:"host"`
	Namespace string `mapstructure:"namespace"`
}

// PubConfig holds the internal address of the platform gateway.
type PubConfig struct {
	InternalURL string `mapstructure:"internal_url"`
}

type TracingConfig struct {
	HeaderName string `mapstructure:"header_name"`
}

type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// DeploymentConfig holds deployment mode settings.
type DeploymentConfig struct {
	// Local reaches jobs through their published localhost ports, for
	// running the platform outside Docker during development.
	Local bool `mapstructure:"local"`
}

// AuthConfig holds preset job family tokens.
type AuthConfig struct {
	JobTokens map[string]string `mapstructure:"job_tokens"`
}

// PluginsConfig holds variables injected into every job.
type PluginsConfig struct {
	RuntimeEnv map[string]string `mapstructure:"runtime_env"`
}

// Load loads configuration from file and environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("docker.host", "")
	v.SetDefault("docker.network", "lighthouse_default")
	v.SetDefault("registry.host", "localhost:5000")
	v.SetDefault("registry.namespace", "lighthouse")
	v.SetDefault("pub.internal_url", "http://lighthouse-pub:7005/pub")
	v.SetDefault("tracing.header_name", "X-Request-Tracing-Id")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("deployment.local", false)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("LIGHTHOUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// NewLogger creates a logger with the configured level and format.
func NewLogger(cfg LogConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.ToLower(cfg.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// Package config loads process configuration from the environment, with an
// optional config file for local development.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full process configuration.
type Config struct {
	ServiceName string `mapstructure:"service_name"`
	Environment string `mapstructure:"environment"`
	ListenAddr  string `mapstructure:"listen_addr"`
	LogLevel    string `mapstructure:"log_level"`

	Hydro   HydroConfig   `mapstructure:"hydro"`
	Refresh RefreshConfig `mapstructure:"refresh"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// HydroConfig carries the upstream portal settings. Username and Password
// are opaque to every layer except the session client.
type HydroConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// RefreshConfig controls the background refresh loop.
type RefreshConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	StaleMultiplier float64       `mapstructure:"stale_multiplier"`
}

// TracingConfig controls OTLP trace export. Disabled by default.
type TracingConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	ExporterEndpoint string  `mapstructure:"exporter_endpoint"`
	ExporterProtocol string  `mapstructure:"exporter_protocol"`
	SamplingRatio    float64 `mapstructure:"sampling_ratio"`
}

// Configured reports whether upstream credentials were supplied. The service
// still starts without them; the health endpoint surfaces the gap and every
// refresh tick records an auth failure until they appear.
func (c Config) Configured() bool {
	return c.Hydro.Username != "" && c.Hydro.Password != ""
}

// Load reads configuration from HYDROLINK_* environment variables, falling
// back to an optional config.yaml and then the defaults below.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/hydrolink/")

	v.SetEnvPrefix("HYDROLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("service_name", "hydrolink")
	v.SetDefault("environment", "development")
	v.SetDefault("listen_addr", ":8000")
	v.SetDefault("log_level", "info")
	v.SetDefault("hydro.base_url", "https://session.hydroquebec.com")
	// Credentials have no default value, but viper only binds environment
	// variables for keys it knows about.
	v.SetDefault("hydro.username", "")
	v.SetDefault("hydro.password", "")
	v.SetDefault("refresh.interval", "15m")
	v.SetDefault("refresh.fetch_timeout", "60s")
	v.SetDefault("refresh.stale_multiplier", 3.0)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter_protocol", "grpc")
	v.SetDefault("tracing.sampling_ratio", 0.1)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Refresh.Interval <= 0 {
		return Config{}, fmt.Errorf("refresh.interval must be positive, got %s", cfg.Refresh.Interval)
	}
	if cfg.Refresh.FetchTimeout <= 0 {
		return Config{}, fmt.Errorf("refresh.fetch_timeout must be positive, got %s", cfg.Refresh.FetchTimeout)
	}
	return cfg, nil
}

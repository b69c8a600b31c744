package refresh

import (
	"time"

	appconfig "github.com/smallbiznis/hydrolink/internal/config"
)

const (
	defaultInterval        = 15 * time.Minute
	defaultFetchTimeout    = 60 * time.Second
	defaultStaleMultiplier = 3.0
)

// Config controls the refresh cadence and per-fetch deadline.
type Config struct {
	Interval        time.Duration
	FetchTimeout    time.Duration
	StaleMultiplier float64
}

// NewConfig derives the worker configuration from the process config.
func NewConfig(cfg appconfig.Config) Config {
	return Config{
		Interval:        cfg.Refresh.Interval,
		FetchTimeout:    cfg.Refresh.FetchTimeout,
		StaleMultiplier: cfg.Refresh.StaleMultiplier,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = defaultFetchTimeout
	}
	if c.StaleMultiplier <= 0 {
		c.StaleMultiplier = defaultStaleMultiplier
	}
	return c
}

package metrics

import appconfig "github.com/smallbiznis/hydrolink/internal/config"

// Config carries the labels every instrument is tagged with.
type Config struct {
	ServiceName string
	Environment string
}

func NewConfig(cfg appconfig.Config) Config {
	return Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	}
}

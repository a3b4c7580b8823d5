package poller

import (
	"time"

	appconfig "github.com/arklabs/arkloyalty/internal/config"
)

// Config controls the balance poller loop.
type Config struct {
	Enabled      bool
	BatchSize    int
	PollInterval time.Duration
	RunTimeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		BatchSize:    200,
		PollInterval: 6 * time.Hour,
		RunTimeout:   10 * time.Minute,
	}
}

// NewConfig maps the environment-driven settings onto the worker config.
func NewConfig(cfg appconfig.Config) Config {
	return Config{
		Enabled:      cfg.Poller.Enabled,
		BatchSize:    cfg.Poller.BatchSize,
		PollInterval: cfg.Poller.Interval,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = defaults.RunTimeout
	}
	return c
}

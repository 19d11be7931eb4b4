package recordstatus

import (
	"fmt"
	"time"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	Timeout       time.Duration `mapstructure:"timeout"`
	NotifyTimeout time.Duration `mapstructure:"notify_timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		Timeout:       30 * time.Second,
		NotifyTimeout: 10 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("notify_timeout must be positive")
	}
	return nil
}

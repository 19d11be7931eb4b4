package submitinquiry

import (
	"fmt"
	"net/url"
	"time"
)

type Config struct {
	Enabled    bool          `mapstructure:"enabled"`
	BackendURL string        `mapstructure:"backend_url"`
	Timeout    time.Duration `mapstructure:"timeout"` // 0 disables the client-side timeout
	GuardTTL   time.Duration `mapstructure:"guard_ttl"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:    true,
		BackendURL: "http://localhost:8000",
		Timeout:    30 * time.Second,
		GuardTTL:   time.Minute,
	}
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("backend_url must be an absolute http(s) URL")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.GuardTTL <= 0 {
		return fmt.Errorf("guard_ttl must be positive")
	}
	return nil
}

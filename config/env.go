package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// ApplyEnv overrides settings from DOCINDEX_* variables. The variable for
// each field is named in its env tag. A nil environ reads the process
// environment. List values are comma separated; blank entries are dropped.
func (c *Config) ApplyEnv(environ map[string]string) error {
	err := env.ParseWithOptions(c, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	})
	if err != nil {
		return fmt.Errorf("%w: environment: %w", ErrInvalidConfig, err)
	}
	c.Brokers = compactList(c.Brokers)
	c.AllowedOrigins = compactList(c.AllowedOrigins)
	return nil
}

func compactList(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

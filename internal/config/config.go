// Package config reads storefront CLI defaults from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/roach88/storefront/internal/storefront"
)

// Config holds environment-provided defaults. Command-line flags override
// every field.
type Config struct {
	Format   string `env:"STOREFRONT_FORMAT"    envDefault:"text"`
	DB       string `env:"STOREFRONT_DB"`
	PageSize int    `env:"STOREFRONT_PAGE_SIZE" envDefault:"12"`
	Currency string `env:"STOREFRONT_CURRENCY"  envDefault:"$"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RegistryOptions converts the engine defaults into registry options.
func (c Config) RegistryOptions() []storefront.Option {
	return []storefront.Option{
		storefront.WithDefaultPageSize(c.PageSize),
		storefront.WithDefaultCurrency(c.Currency),
	}
}

// Package config loads CLI configuration from AUTHFLOW_* environment
// variables and resolves the provider endpoints to use.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/authflow/authflow/internal/oauth2c"
	"github.com/authflow/authflow/internal/providers"
)

// Config holds the raw environment configuration.
type Config struct {
	Provider     string        `env:"AUTHFLOW_PROVIDER"`
	ClientID     string        `env:"AUTHFLOW_CLIENT_ID"`
	ClientSecret string        `env:"AUTHFLOW_CLIENT_SECRET"`
	RedirectURI  string        `env:"AUTHFLOW_REDIRECT_URI"`
	Scope        string        `env:"AUTHFLOW_SCOPE"`
	Issuer       string        `env:"AUTHFLOW_ISSUER"`
	AuthURL      string        `env:"AUTHFLOW_AUTH_URL"`
	TokenURL     string        `env:"AUTHFLOW_TOKEN_URL"`
	UserInfoURL  string        `env:"AUTHFLOW_USERINFO_URL"`
	RefreshToken string        `env:"AUTHFLOW_REFRESH_TOKEN"`
	HTTPTimeout  time.Duration `env:"AUTHFLOW_HTTP_TIMEOUT" envDefault:"30s"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.ClientID == "" {
		return Config{}, fmt.Errorf("AUTHFLOW_CLIENT_ID is required")
	}
	return cfg, nil
}

// ClientConfig converts the environment values into the client credentials.
// The scope falls back to the provider preset's default when a preset is in
// use and no explicit scope is set.
func (c Config) ClientConfig() oauth2c.ClientConfig {
	scope := c.Scope
	if scope == "" {
		if preset, ok := providers.Lookup(c.Provider); ok {
			scope = preset.DefaultScope
		}
	}
	return oauth2c.ClientConfig{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURI:  c.RedirectURI,
		Scope:        scope,
	}
}

// ResolveEndpoints determines the provider endpoints, in priority order:
// explicit AUTHFLOW_*_URL values, a named provider preset, then RFC 8414
// discovery against AUTHFLOW_ISSUER.
func (c Config) ResolveEndpoints(ctx context.Context, transport oauth2c.Transport) (oauth2c.Endpoints, oauth2c.Hooks, error) {
	if c.AuthURL != "" && c.TokenURL != "" {
		return oauth2c.Endpoints{
			Authorization: oauth2c.Endpoint{Base: c.AuthURL},
			Token:         oauth2c.Endpoint{Base: c.TokenURL},
			UserInfo:      oauth2c.Endpoint{Base: c.UserInfoURL},
		}, oauth2c.Hooks{}, nil
	}

	if c.Provider != "" {
		preset, ok := providers.Lookup(c.Provider)
		if !ok {
			return oauth2c.Endpoints{}, oauth2c.Hooks{}, fmt.Errorf("unknown provider %q (known: %v)", c.Provider, providers.Names())
		}
		return preset.Endpoints, preset.Hooks, nil
	}

	if c.Issuer != "" {
		endpoints, err := oauth2c.Discover(ctx, transport, c.Issuer)
		if err != nil {
			return oauth2c.Endpoints{}, oauth2c.Hooks{}, fmt.Errorf("discover %s: %w", c.Issuer, err)
		}
		return endpoints, oauth2c.Hooks{}, nil
	}

	return oauth2c.Endpoints{}, oauth2c.Hooks{}, fmt.Errorf("no endpoints configured: set AUTHFLOW_PROVIDER, AUTHFLOW_ISSUER, or AUTHFLOW_AUTH_URL and AUTHFLOW_TOKEN_URL")
}

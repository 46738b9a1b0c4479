package cmd

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/authflow/authflow/internal/config"
	"github.com/authflow/authflow/internal/oauth2c"
)

// buildClient wires the environment configuration into a token client.
// redirectURI, when non-empty, overrides the configured redirect (the login
// command substitutes its local callback server).
func buildClient(ctx context.Context, logger *zap.Logger, redirectURI string, seed oauth2c.Token) (*oauth2c.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	transport := oauth2c.NewHTTPTransport(&http.Client{Timeout: cfg.HTTPTimeout})
	endpoints, hooks, err := cfg.ResolveEndpoints(ctx, transport)
	if err != nil {
		return nil, err
	}

	clientConfig := cfg.ClientConfig()
	if redirectURI != "" {
		clientConfig.RedirectURI = redirectURI
	}
	if seed.RefreshToken == "" {
		seed.RefreshToken = cfg.RefreshToken
	}

	return oauth2c.New(clientConfig, endpoints,
		oauth2c.WithTransport(transport),
		oauth2c.WithHooks(hooks),
		oauth2c.WithLogger(logger),
		oauth2c.WithToken(seed),
	), nil
}

package oauth2c

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// serverMetadata is the subset of RFC 8414 authorization server metadata
// the client needs.
type serverMetadata struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserInfoEndpoint      string `json:"userinfo_endpoint"`
}

// Discover fetches RFC 8414 authorization server metadata for issuer and
// returns the endpoints the client needs. Per RFC 8414 Section 3 the
// well-known segment is inserted before the issuer path; since some servers
// append it instead, the path-appended variant is tried first with a
// path-less fallback.
func Discover(ctx context.Context, transport Transport, issuer string) (Endpoints, error) {
	urls, err := wellKnownURLs(issuer)
	if err != nil {
		return Endpoints{}, fmt.Errorf("build discovery URL: %w", err)
	}

	var lastErr error
	for _, wellKnown := range urls {
		meta, err := fetchMetadata(ctx, transport, wellKnown)
		if err != nil {
			lastErr = err
			continue
		}
		return Endpoints{
			Authorization: Endpoint{Base: meta.AuthorizationEndpoint},
			Token:         Endpoint{Base: meta.TokenEndpoint},
			UserInfo:      Endpoint{Base: meta.UserInfoEndpoint},
		}, nil
	}

	return Endpoints{}, lastErr
}

func fetchMetadata(ctx context.Context, transport Transport, wellKnown string) (*serverMetadata, error) {
	header := http.Header{}
	header.Set("Accept", "application/json")

	body, err := transport.Get(ctx, Endpoint{Base: wellKnown}, header)
	if err != nil {
		return nil, fmt.Errorf("fetch server metadata: %w", err)
	}

	var meta serverMetadata
	if err := json.Unmarshal([]byte(body), &meta); err != nil {
		return nil, fmt.Errorf("parse server metadata: %w", err)
	}

	if meta.AuthorizationEndpoint == "" {
		return nil, fmt.Errorf("missing authorization_endpoint in server metadata")
	}
	if meta.TokenEndpoint == "" {
		return nil, fmt.Errorf("missing token_endpoint in server metadata")
	}

	return &meta, nil
}

func wellKnownURLs(issuer string) ([]string, error) {
	u, err := url.Parse(issuer)
	if err != nil {
		return nil, err
	}
	path := strings.TrimRight(u.Path, "/")
	base := fmt.Sprintf("%s://%s/.well-known/oauth-authorization-server", u.Scheme, u.Host)
	if path == "" {
		return []string{base}, nil
	}
	return []string{base + path, base}, nil
}

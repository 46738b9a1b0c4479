// Package providers ships endpoint presets and hooks for well-known OAuth
// providers. A preset is plain data plus an oauth2c.Hooks value; anything
// not listed here can be configured by explicit endpoint URLs or RFC 8414
// discovery instead.
package providers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/authflow/authflow/internal/oauth2c"
)

// Preset bundles everything provider-specific the client needs.
type Preset struct {
	Name         string
	Endpoints    oauth2c.Endpoints
	DefaultScope string
	Hooks        oauth2c.Hooks
}

// Lookup returns the preset for a provider name (case-insensitive), or
// false when the provider is unknown.
func Lookup(name string) (Preset, bool) {
	switch strings.ToLower(name) {
	case "github":
		return github(), true
	case "google":
		return google(), true
	}
	return Preset{}, false
}

// Names lists the known preset names.
func Names() []string {
	return []string{"github", "google"}
}

func github() Preset {
	return Preset{
		Name: "GitHub",
		Endpoints: oauth2c.Endpoints{
			Authorization: oauth2c.Endpoint{Base: "https://github.com", Path: "/login/oauth/authorize"},
			Token:         oauth2c.Endpoint{Base: "https://github.com", Path: "/login/oauth/access_token"},
			UserInfo:      oauth2c.Endpoint{Base: "https://api.github.com", Path: "/user"},
		},
		DefaultScope: "read:user user:email",
		Hooks: oauth2c.Hooks{
			// GitHub answers the token request form-encoded unless asked
			// for JSON. The parser accepts both, but JSON keeps error
			// bodies readable in logs.
			BeforeTokenRequest: func(_ oauth2c.GrantType, _ url.Values, header http.Header) {
				header.Set("Accept", "application/json")
			},
		},
	}
}

func google() Preset {
	return Preset{
		Name: "Google",
		Endpoints: oauth2c.Endpoints{
			Authorization: oauth2c.Endpoint{Base: "https://accounts.google.com", Path: "/o/oauth2/v2/auth"},
			Token:         oauth2c.Endpoint{Base: "https://oauth2.googleapis.com", Path: "/token"},
			UserInfo:      oauth2c.Endpoint{Base: "https://openidconnect.googleapis.com", Path: "/v1/userinfo"},
		},
		DefaultScope: "openid email profile",
	}
}

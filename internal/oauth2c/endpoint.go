package oauth2c

import "strings"

// Endpoint identifies one provider URL as a base plus a path, so a provider
// definition can share one base across its endpoints.
type Endpoint struct {
	Base string
	Path string
}

// URL joins the base and path into the full endpoint URL.
func (e Endpoint) URL() string {
	if e.Path == "" {
		return e.Base
	}
	return strings.TrimRight(e.Base, "/") + "/" + strings.TrimLeft(e.Path, "/")
}

// Endpoints holds the three provider URLs the client talks to.
type Endpoints struct {
	Authorization Endpoint
	Token         Endpoint
	UserInfo      Endpoint
}

package oauth2c

import "net/url"

// GrantType selects which token-endpoint grant a request performs. It is
// threaded through each call explicitly rather than stored on the client,
// so two calls can never observe each other's grant.
type GrantType string

const (
	GrantAuthorizationCode GrantType = "authorization_code"
	GrantRefreshToken      GrantType = "refresh_token"
)

// buildGrant produces the form parameters for one token-endpoint request.
// The incoming params are the callback (or caller-supplied) parameters; the
// grant's required parameter must be present there.
func buildGrant(grantType GrantType, cfg ClientConfig, params url.Values) (url.Values, error) {
	form := url.Values{
		"grant_type":    {string(grantType)},
		"client_id":     {cfg.ClientID},
		"client_secret": {cfg.ClientSecret},
	}

	switch grantType {
	case GrantRefreshToken:
		refreshToken := params.Get("refresh_token")
		if refreshToken == "" {
			return nil, &UnexpectedResponseError{Field: "refresh_token"}
		}
		form.Set("refresh_token", refreshToken)
	default:
		code := params.Get("code")
		if code == "" {
			return nil, &UnexpectedResponseError{Field: "code"}
		}
		form.Set("code", code)
		form.Set("redirect_uri", cfg.RedirectURI)
	}

	return form, nil
}

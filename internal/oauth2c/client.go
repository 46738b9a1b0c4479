package oauth2c

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// expiryMargin shrinks a server-reported lifetime so a token is never
// presented at the very instant it expires.
const expiryMargin = 5 * time.Second

// Token is the client's mutable token state.
type Token struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	// ExpiresAt is the absolute deadline after which the access token is
	// treated as stale. Zero means no expiry is known and the token is
	// reused until forced out.
	ExpiresAt time.Time
	// State is the state parameter echoed by the provider on the last
	// callback, kept so the caller can correlate it with the login link.
	State string
}

// Hooks are the provider-customization points. All fields are optional;
// multiple providers are supported by injecting different hook sets rather
// than by subclassing the client.
type Hooks struct {
	// BuildGrant replaces the default grant-parameter construction. A
	// provider variant may add or rename fields but must keep the base
	// shape of the two grants.
	BuildGrant func(grantType GrantType, cfg ClientConfig, params url.Values) (url.Values, error)
	// BeforeTokenRequest may mutate the outgoing form and headers just
	// before the token request is sent.
	BeforeTokenRequest func(grantType GrantType, form url.Values, header http.Header)
	// AfterTokensChanged is called after a successful token update.
	AfterTokensChanged func(tok Token)
	// ExtractField replaces the default response-body field extraction.
	ExtractField func(content, key string) string
}

// Client runs the authorization-code grant against one provider.
type Client struct {
	cfg       ClientConfig
	endpoints Endpoints
	transport Transport
	hooks     Hooks
	logger    *zap.Logger
	now       func() time.Time

	tok Token
}

// Option configures a Client.
type Option func(*Client)

// WithTransport substitutes the HTTP transport.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithHTTPClient uses client for the default transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.transport = NewHTTPTransport(client) }
}

// WithHooks installs provider-customization hooks.
func WithHooks(h Hooks) Option {
	return func(c *Client) { c.hooks = h }
}

// WithLogger attaches a logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithToken pre-seeds the token state, e.g. with a previously obtained
// access and refresh token.
func WithToken(tok Token) Option {
	return func(c *Client) { c.tok = tok }
}

func withNow(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New builds a Client for one provider. The token state starts empty unless
// seeded with WithToken.
func New(cfg ClientConfig, endpoints Endpoints, opts ...Option) *Client {
	c := &Client{
		cfg:       cfg,
		endpoints: endpoints,
		transport: NewHTTPTransport(nil),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns a copy of the current token state.
func (c *Client) Token() Token {
	return c.tok
}

// BuildLoginLink returns the authorization-endpoint URL to redirect the end
// user to. state, when non-empty, is echoed back by the provider on the
// callback for CSRF correlation. No request is sent.
func (c *Client) BuildLoginLink(state string) (string, error) {
	u, err := url.Parse(c.endpoints.Authorization.URL())
	if err != nil {
		return "", fmt.Errorf("parse authorization endpoint: %w", err)
	}

	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", c.cfg.RedirectURI)
	if state != "" {
		q.Set("state", state)
	}
	if c.cfg.Scope != "" {
		q.Set("scope", c.cfg.Scope)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// GetToken exchanges the callback parameters for an access token. A
// non-blank error parameter in the callback fails the call with
// *ProviderError before anything else happens; otherwise the state
// parameter is captured and the code is exchanged at the token endpoint.
func (c *Client) GetToken(ctx context.Context, params url.Values) (string, error) {
	if code := params.Get("error"); code != "" {
		return "", &ProviderError{Code: code, Description: params.Get("error_description")}
	}
	c.tok.State = params.Get("state")

	return c.queryAccessToken(ctx, GrantAuthorizationCode, params)
}

// GetCurrentToken returns an access token for API calls. A stored token
// that has not reached its expiry deadline is returned without a network
// call unless forceUpdate is set. Otherwise the token is refreshed;
// refreshToken, when non-empty, takes precedence over the stored one. With
// no refresh token available at all the call fails with ErrNoRefreshToken.
func (c *Client) GetCurrentToken(ctx context.Context, refreshToken string, forceUpdate bool) (string, error) {
	if !forceUpdate && c.tok.AccessToken != "" {
		if c.tok.ExpiresAt.IsZero() || c.now().Before(c.tok.ExpiresAt) {
			return c.tok.AccessToken, nil
		}
	}

	if refreshToken == "" {
		refreshToken = c.tok.RefreshToken
	}
	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	return c.queryAccessToken(ctx, GrantRefreshToken, url.Values{"refresh_token": {refreshToken}})
}

// queryAccessToken performs one token-endpoint request and applies the
// response to the token state.
func (c *Client) queryAccessToken(ctx context.Context, grantType GrantType, params url.Values) (string, error) {
	build := c.hooks.BuildGrant
	if build == nil {
		build = buildGrant
	}
	form, err := build(grantType, c.cfg, params)
	if err != nil {
		return "", err
	}

	header := http.Header{}
	if c.hooks.BeforeTokenRequest != nil {
		c.hooks.BeforeTokenRequest(grantType, form, header)
	}

	c.logger.Debug("requesting token",
		zap.String("grant_type", string(grantType)),
		zap.String("endpoint", c.endpoints.Token.URL()))

	body, err := c.transport.PostForm(ctx, c.endpoints.Token, form, header)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}

	extract := c.hooks.ExtractField
	if extract == nil {
		extract = ExtractField
	}

	accessToken := extract(body, "access_token")
	if accessToken == "" {
		return "", &UnexpectedResponseError{Field: "access_token"}
	}
	c.tok.AccessToken = accessToken

	// Providers are not required to rotate refresh tokens; keep the
	// previous one unless the response carries a replacement.
	if refreshToken := extract(body, "refresh_token"); refreshToken != "" {
		c.tok.RefreshToken = refreshToken
	}
	c.tok.TokenType = extract(body, "token_type")

	// A malformed expires_in leaves the previous deadline untouched. On a
	// first-ever fetch that means no deadline at all and the token never
	// goes stale on its own; callers can still force a refresh.
	if seconds, err := strconv.Atoi(extract(body, "expires_in")); err == nil {
		c.tok.ExpiresAt = c.now().Add(time.Duration(seconds)*time.Second - expiryMargin)
	}

	if c.hooks.AfterTokensChanged != nil {
		c.hooks.AfterTokensChanged(c.tok)
	}

	c.logger.Debug("token updated",
		zap.String("token_type", c.tok.TokenType),
		zap.Time("expires_at", c.tok.ExpiresAt))

	return accessToken, nil
}

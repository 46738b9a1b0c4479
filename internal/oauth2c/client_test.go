package oauth2c

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

var clientTestConfig = ClientConfig{
	ClientID:     "cid",
	ClientSecret: "secret",
	RedirectURI:  "https://app.example/callback",
	Scope:        "read write",
}

// fakeTransport records token requests and replays a canned body.
type fakeTransport struct {
	calls      int
	body       string
	err        error
	lastForm   url.Values
	lastHeader http.Header
}

func (f *fakeTransport) PostForm(_ context.Context, _ Endpoint, form url.Values, header http.Header) (string, error) {
	f.calls++
	f.lastForm = form
	f.lastHeader = header
	if f.err != nil {
		return "", f.err
	}
	return f.body, nil
}

func (f *fakeTransport) Get(_ context.Context, _ Endpoint, _ http.Header) (string, error) {
	return "", errors.New("not implemented")
}

func newTestClient(transport Transport, opts ...Option) *Client {
	endpoints := Endpoints{
		Authorization: Endpoint{Base: "https://idp.example", Path: "/authorize"},
		Token:         Endpoint{Base: "https://idp.example", Path: "/token"},
		UserInfo:      Endpoint{Base: "https://idp.example", Path: "/userinfo"},
	}
	opts = append([]Option{WithTransport(transport)}, opts...)
	return New(clientTestConfig, endpoints, opts...)
}

func TestBuildLoginLink(t *testing.T) {
	c := newTestClient(&fakeTransport{})

	link, err := c.BuildLoginLink("xyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	q := u.Query()

	want := map[string]string{
		"response_type": "code",
		"client_id":     "cid",
		"redirect_uri":  "https://app.example/callback",
		"state":         "xyz",
		"scope":         "read write",
	}
	for key, value := range want {
		if got := q.Get(key); got != value {
			t.Errorf("query[%q] = %q, want %q", key, got, value)
		}
	}
	if u.Path != "/authorize" {
		t.Errorf("path = %q, want %q", u.Path, "/authorize")
	}
}

func TestBuildLoginLink_OmitsEmptyScopeAndState(t *testing.T) {
	cfg := clientTestConfig
	cfg.Scope = ""
	c := New(cfg, Endpoints{Authorization: Endpoint{Base: "https://idp.example/authorize"}})

	link, err := c.BuildLoginLink("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, _ := url.Parse(link)
	if u.Query().Has("scope") {
		t.Error("scope must be omitted when configuration scope is empty")
	}
	if u.Query().Has("state") {
		t.Error("state must be omitted when not supplied")
	}
}

func TestGetToken_Success(t *testing.T) {
	transport := &fakeTransport{
		body: `{"access_token":"at-1","refresh_token":"rt-1","token_type":"Bearer","expires_in":3600}`,
	}
	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	c := newTestClient(transport, withNow(func() time.Time { return base }))

	accessToken, err := c.GetToken(context.Background(), url.Values{
		"code":  {"c-1"},
		"state": {"s-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accessToken != "at-1" {
		t.Errorf("access token = %q, want %q", accessToken, "at-1")
	}

	tok := c.Token()
	if tok.RefreshToken != "rt-1" {
		t.Errorf("refresh token = %q, want %q", tok.RefreshToken, "rt-1")
	}
	if tok.TokenType != "Bearer" {
		t.Errorf("token type = %q, want %q", tok.TokenType, "Bearer")
	}
	if tok.State != "s-1" {
		t.Errorf("state = %q, want %q", tok.State, "s-1")
	}
	wantExpiry := base.Add(3600*time.Second - 5*time.Second)
	if !tok.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("expiry = %v, want %v", tok.ExpiresAt, wantExpiry)
	}

	if got := transport.lastForm.Get("grant_type"); got != "authorization_code" {
		t.Errorf("grant_type = %q, want %q", got, "authorization_code")
	}
}

func TestGetToken_ProviderError(t *testing.T) {
	transport := &fakeTransport{body: `{"access_token":"never"}`}
	c := newTestClient(transport, WithToken(Token{AccessToken: "kept"}))

	_, err := c.GetToken(context.Background(), url.Values{
		"error":             {"access_denied"},
		"error_description": {"user denied"},
	})
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.Code != "access_denied" {
		t.Errorf("code = %q, want %q", provErr.Code, "access_denied")
	}
	if transport.calls != 0 {
		t.Errorf("expected no network call, got %d", transport.calls)
	}
	if c.Token().AccessToken != "kept" {
		t.Errorf("access token changed to %q", c.Token().AccessToken)
	}
}

func TestGetToken_MissingAccessToken(t *testing.T) {
	transport := &fakeTransport{body: `{"token_type":"Bearer","expires_in":60}`}
	c := newTestClient(transport)

	_, err := c.GetToken(context.Background(), url.Values{"code": {"c-1"}})
	var respErr *UnexpectedResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("expected UnexpectedResponseError, got %v", err)
	}
	if respErr.Field != "access_token" {
		t.Errorf("field = %q, want %q", respErr.Field, "access_token")
	}
	if c.Token().AccessToken != "" {
		t.Errorf("access token set to %q on failed exchange", c.Token().AccessToken)
	}
}

func TestGetToken_QueryStringResponse(t *testing.T) {
	transport := &fakeTransport{body: "access_token=at-q&token_type=bearer&expires_in=120"}
	c := newTestClient(transport)

	accessToken, err := c.GetToken(context.Background(), url.Values{"code": {"c-1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accessToken != "at-q" {
		t.Errorf("access token = %q, want %q", accessToken, "at-q")
	}
	if c.Token().TokenType != "bearer" {
		t.Errorf("token type = %q, want %q", c.Token().TokenType, "bearer")
	}
}

func TestGetCurrentToken_CacheHit(t *testing.T) {
	transport := &fakeTransport{
		body: `{"access_token":"at-1","refresh_token":"rt-1","expires_in":3600}`,
	}
	c := newTestClient(transport)

	if _, err := c.GetToken(context.Background(), url.Values{"code": {"c-1"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		accessToken, err := c.GetCurrentToken(context.Background(), "", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if accessToken != "at-1" {
			t.Errorf("access token = %q, want %q", accessToken, "at-1")
		}
	}
	if transport.calls != 1 {
		t.Errorf("expected 1 network call, got %d", transport.calls)
	}
}

func TestGetCurrentToken_ForceUpdate(t *testing.T) {
	transport := &fakeTransport{
		body: `{"access_token":"at-2","expires_in":3600}`,
	}
	c := newTestClient(transport, WithToken(Token{
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		ExpiresAt:    time.Now().Add(time.Hour),
	}))

	accessToken, err := c.GetCurrentToken(context.Background(), "", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accessToken != "at-2" {
		t.Errorf("access token = %q, want %q", accessToken, "at-2")
	}
	if transport.calls != 1 {
		t.Errorf("expected 1 network call, got %d", transport.calls)
	}
	if got := transport.lastForm.Get("grant_type"); got != "refresh_token" {
		t.Errorf("grant_type = %q, want %q", got, "refresh_token")
	}
}

func TestGetCurrentToken_ExpiredTriggersRefresh(t *testing.T) {
	transport := &fakeTransport{body: `{"access_token":"at-new"}`}
	c := newTestClient(transport, WithToken(Token{
		AccessToken:  "at-old",
		RefreshToken: "rt-stored",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}))

	accessToken, err := c.GetCurrentToken(context.Background(), "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accessToken != "at-new" {
		t.Errorf("access token = %q, want %q", accessToken, "at-new")
	}
	if got := transport.lastForm.Get("refresh_token"); got != "rt-stored" {
		t.Errorf("refresh_token = %q, want %q", got, "rt-stored")
	}
}

func TestGetCurrentToken_ExplicitRefreshTokenWins(t *testing.T) {
	transport := &fakeTransport{body: `{"access_token":"at-new"}`}
	c := newTestClient(transport, WithToken(Token{RefreshToken: "rt-stored"}))

	if _, err := c.GetCurrentToken(context.Background(), "rt-explicit", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := transport.lastForm.Get("refresh_token"); got != "rt-explicit" {
		t.Errorf("refresh_token = %q, want %q", got, "rt-explicit")
	}
}

func TestGetCurrentToken_NoRefreshAvailable(t *testing.T) {
	transport := &fakeTransport{body: `{"access_token":"never"}`}
	c := newTestClient(transport)

	_, err := c.GetCurrentToken(context.Background(), "", false)
	if !errors.Is(err, ErrNoRefreshToken) {
		t.Fatalf("expected ErrNoRefreshToken, got %v", err)
	}
	if transport.calls != 0 {
		t.Errorf("expected no network call, got %d", transport.calls)
	}
}

func TestRefreshTokenRetainedWhenResponseOmitsIt(t *testing.T) {
	transport := &fakeTransport{body: `{"access_token":"at-new","token_type":"Bearer"}`}
	c := newTestClient(transport, WithToken(Token{RefreshToken: "rt-keep"}))

	if _, err := c.GetCurrentToken(context.Background(), "", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Token().RefreshToken; got != "rt-keep" {
		t.Errorf("refresh token = %q, want %q", got, "rt-keep")
	}
}

func TestMalformedExpiresInLeavesExpiryUntouched(t *testing.T) {
	expiry := time.Date(2026, 8, 23, 13, 0, 0, 0, time.UTC)
	transport := &fakeTransport{body: `{"access_token":"at-new","expires_in":"soon"}`}
	c := newTestClient(transport, WithToken(Token{RefreshToken: "rt-1", ExpiresAt: expiry}))

	if _, err := c.GetCurrentToken(context.Background(), "", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Token().ExpiresAt; !got.Equal(expiry) {
		t.Errorf("expiry = %v, want %v", got, expiry)
	}
}

func TestHooks(t *testing.T) {
	transport := &fakeTransport{body: `{"access_token":"at-1","expires_in":60}`}
	var afterCalled bool
	hooks := Hooks{
		BeforeTokenRequest: func(grantType GrantType, form url.Values, header http.Header) {
			form.Set("audience", "api.example")
			header.Set("X-Provider", "custom")
		},
		AfterTokensChanged: func(tok Token) {
			afterCalled = true
			if tok.AccessToken != "at-1" {
				t.Errorf("hook saw access token %q", tok.AccessToken)
			}
		},
	}
	c := newTestClient(transport, WithHooks(hooks))

	if _, err := c.GetToken(context.Background(), url.Values{"code": {"c-1"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := transport.lastForm.Get("audience"); got != "api.example" {
		t.Errorf("form audience = %q, want %q", got, "api.example")
	}
	if got := transport.lastHeader.Get("X-Provider"); got != "custom" {
		t.Errorf("header = %q, want %q", got, "custom")
	}
	if !afterCalled {
		t.Error("AfterTokensChanged was not called")
	}
}

func TestHooks_BuildGrantOverride(t *testing.T) {
	transport := &fakeTransport{body: `{"access_token":"at-1"}`}
	hooks := Hooks{
		BuildGrant: func(grantType GrantType, cfg ClientConfig, params url.Values) (url.Values, error) {
			form, err := buildGrant(grantType, cfg, params)
			if err != nil {
				return nil, err
			}
			form.Set("resource", "urn:example")
			return form, nil
		},
	}
	c := newTestClient(transport, WithHooks(hooks))

	if _, err := c.GetToken(context.Background(), url.Values{"code": {"c-1"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := transport.lastForm.Get("resource"); got != "urn:example" {
		t.Errorf("form resource = %q, want %q", got, "urn:example")
	}
	if got := transport.lastForm.Get("code"); got != "c-1" {
		t.Errorf("form code = %q, want %q", got, "c-1")
	}
}

func TestTransportErrorSurfaces(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer ts.Close()

	c := New(clientTestConfig,
		Endpoints{Token: Endpoint{Base: ts.URL}},
		WithHTTPClient(ts.Client()))

	_, err := c.GetToken(context.Background(), url.Values{"code": {"c-1"}})
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transportErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", transportErr.StatusCode, http.StatusUnauthorized)
	}
	if c.Token().AccessToken != "" {
		t.Errorf("access token set to %q on transport failure", c.Token().AccessToken)
	}
}

func TestCancelledContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	c := New(clientTestConfig,
		Endpoints{Token: Endpoint{Base: ts.URL}},
		WithHTTPClient(ts.Client()))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := c.GetToken(ctx, url.Values{"code": {"c-1"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if c.Token().AccessToken != "" {
		t.Errorf("access token set to %q after cancellation", c.Token().AccessToken)
	}
}

func TestEndToEndWithHTTPTransport(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if got := r.Form.Get("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %q, want %q", got, "authorization_code")
		}
		if got := r.Form.Get("client_secret"); got != "secret" {
			t.Errorf("client_secret = %q, want %q", got, "secret")
		}
		if got := r.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
			t.Errorf("content type = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-e2e","token_type":"Bearer","expires_in":3600}`))
	}))
	defer ts.Close()

	c := New(clientTestConfig,
		Endpoints{Token: Endpoint{Base: ts.URL, Path: "/token"}},
		WithHTTPClient(ts.Client()))

	accessToken, err := c.GetToken(context.Background(), url.Values{"code": {"c-1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accessToken != "at-e2e" {
		t.Errorf("access token = %q, want %q", accessToken, "at-e2e")
	}
}

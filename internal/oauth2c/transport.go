package oauth2c

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxBodySize caps how much of a provider response is read.
const maxBodySize = 1 << 20

// Transport executes the HTTP calls the client needs. The default
// implementation wraps *http.Client; tests and provider-specific wiring can
// substitute their own. Implementations must return *TransportError for
// non-2xx statuses so the caller never parses an error body as a token.
type Transport interface {
	// PostForm sends a form-encoded POST to the endpoint and returns the
	// raw response body.
	PostForm(ctx context.Context, endpoint Endpoint, form url.Values, header http.Header) (string, error)
	// Get sends a GET to the endpoint and returns the raw response body.
	Get(ctx context.Context, endpoint Endpoint, header http.Header) (string, error)
}

// HTTPTransport is the default Transport backed by net/http.
type HTTPTransport struct {
	Client *http.Client
}

// NewHTTPTransport wraps client, defaulting to a 30-second timeout when
// client is nil.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPTransport{Client: client}
}

func (t *HTTPTransport) PostForm(ctx context.Context, endpoint Endpoint, form url.Values, header http.Header) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	copyHeader(req, header)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return t.do(req)
}

func (t *HTTPTransport) Get(ctx context.Context, endpoint Endpoint, header http.Header) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.URL(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	copyHeader(req, header)

	return t.do(req)
}

func (t *HTTPTransport) do(req *http.Request) (string, error) {
	resp, err := t.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &TransportError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return string(body), nil
}

func copyHeader(req *http.Request, header http.Header) {
	for name, values := range header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
}

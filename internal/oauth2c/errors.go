package oauth2c

import (
	"errors"
	"fmt"
)

// ErrNoRefreshToken is returned by GetCurrentToken when a refresh is needed
// but no refresh token exists, neither as an argument nor in the stored
// state. It signals misuse (no token was ever fetched), not a transient
// condition.
var ErrNoRefreshToken = errors.New("no refresh token available")

// ProviderError is the error the provider reported on the redirect callback
// via the error parameter (RFC 6749 Section 4.1.2.1).
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("provider error: %s — %s", e.Code, e.Description)
	}
	return fmt.Sprintf("provider error: %s", e.Code)
}

// UnexpectedResponseError indicates that a required field was absent: either
// from the token response (access_token) or from the callback parameters
// feeding the grant request (code, refresh_token).
type UnexpectedResponseError struct {
	Field string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected response: missing %s", e.Field)
}

// TransportError is a non-2xx response from an OAuth endpoint.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("endpoint returned %d", e.StatusCode)
}

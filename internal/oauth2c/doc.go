// Package oauth2c implements the client side of the OAuth2
// authorization-code grant (RFC 6749 Section 4.1) with refresh-token
// renewal.
//
// A Client builds the authorization redirect URL, exchanges the callback
// code for tokens at the token endpoint, and keeps the access token fresh
// on subsequent calls. Token responses are accepted in either JSON or
// URL-encoded form, since providers differ on which they return.
//
// A Client is not safe for concurrent use: overlapping calls to
// GetCurrentToken may each observe a stale token and each trigger a
// refresh. Callers that need single-flight refresh semantics must
// serialize access themselves.
package oauth2c

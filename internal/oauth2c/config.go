package oauth2c

// ClientConfig holds the registered client credentials. It is read-only for
// the lifetime of a Client.
type ClientConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// Scope is the space-delimited scope string for the login link. When
	// empty, the scope parameter is omitted entirely; some providers treat
	// an empty scope differently from an absent one.
	Scope string
}

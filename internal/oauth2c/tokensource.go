package oauth2c

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSource adapts the client to the standard oauth2.TokenSource
// interface so it can feed oauth2.NewClient and other x/oauth2 consumers.
// The context is captured for the interface's context-less Token calls.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, client: c}
}

type tokenSource struct {
	ctx    context.Context
	client *Client
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	accessToken, err := s.client.GetCurrentToken(s.ctx, "", false)
	if err != nil {
		return nil, err
	}

	tok := s.client.Token()
	return &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.ExpiresAt,
	}, nil
}

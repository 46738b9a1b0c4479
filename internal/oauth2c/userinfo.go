package oauth2c

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// UserInfo is a profile loaded from the user-info endpoint. Raw carries the
// full decoded document for provider-specific fields.
type UserInfo struct {
	Subject string
	Email   string
	Name    string
	Picture string
	Raw     map[string]any
}

// UserInfo fetches the user profile with the current access token,
// refreshing it first if needed. Field names vary between providers, so
// common aliases are accepted.
func (c *Client) UserInfo(ctx context.Context) (*UserInfo, error) {
	accessToken, err := c.GetCurrentToken(ctx, "", false)
	if err != nil {
		return nil, err
	}

	tokenType := c.tok.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	header := http.Header{}
	header.Set("Authorization", tokenType+" "+accessToken)
	header.Set("Accept", "application/json")

	body, err := c.transport.Get(ctx, c.endpoints.UserInfo, header)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	return &UserInfo{
		Subject: firstString(raw, "sub", "id"),
		Email:   firstString(raw, "email", "mail"),
		Name:    firstString(raw, "name", "displayName", "login"),
		Picture: firstString(raw, "picture", "avatar_url"),
		Raw:     raw,
	}, nil
}

func firstString(doc map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := doc[key].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

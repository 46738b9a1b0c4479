package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/authflow/authflow/internal/browser"
	"github.com/authflow/authflow/internal/callback"
	"github.com/authflow/authflow/internal/oauth2c"
)

var (
	flagLoginTimeout time.Duration
	flagLoginPort    int
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in interactively and print the obtained tokens",
	Long: `Log in against the configured OAuth2 provider.

login builds the authorization link, opens it in the browser, waits for the
provider redirect on a local callback server, and exchanges the returned
code for tokens.

Configuration comes from AUTHFLOW_* environment variables; see
AUTHFLOW_PROVIDER (github, google), AUTHFLOW_ISSUER for RFC 8414 discovery,
or AUTHFLOW_AUTH_URL/AUTHFLOW_TOKEN_URL for explicit endpoints.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runLogin,
}

func init() {
	f := loginCmd.Flags()
	f.DurationVar(&flagLoginTimeout, "timeout", 5*time.Minute, "how long to wait for the browser authorization")
	f.IntVar(&flagLoginPort, "port", 0, "fixed callback port (0 picks a free one; must match the registered redirect URI)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	srv := &callback.Server{}
	if err := srv.Start(flagLoginPort); err != nil {
		return err
	}
	defer srv.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), flagLoginTimeout)
	defer cancel()

	client, err := buildClient(ctx, logger, srv.RedirectURI(), oauth2c.Token{})
	if err != nil {
		return err
	}

	state, err := oauth2c.GenerateState()
	if err != nil {
		return fmt.Errorf("generate state: %w", err)
	}

	link, err := client.BuildLoginLink(state)
	if err != nil {
		return err
	}

	if err := browser.Open(link); err != nil {
		logger.Debug("could not open browser automatically")
	}
	fmt.Printf("If the browser doesn't open, visit:\n%s\n\n", link)
	fmt.Println("Waiting for authorization...")

	params, err := srv.Wait(ctx)
	if err != nil {
		return err
	}
	if params.Get("state") != state {
		return fmt.Errorf("state mismatch on callback (possible CSRF)")
	}

	accessToken, err := client.GetToken(ctx, params)
	if err != nil {
		return err
	}

	tok := client.Token()
	fmt.Printf("access_token: %s\n", accessToken)
	if tok.RefreshToken != "" {
		fmt.Printf("refresh_token: %s\n", tok.RefreshToken)
	}
	if tok.TokenType != "" {
		fmt.Printf("token_type: %s\n", tok.TokenType)
	}
	if !tok.ExpiresAt.IsZero() {
		fmt.Printf("expires_at: %s\n", tok.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

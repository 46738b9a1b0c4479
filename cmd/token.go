package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/authflow/authflow/internal/oauth2c"
)

var (
	flagRefreshToken string
	flagForce        bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Obtain a fresh access token from a refresh token",
	Long: `Obtain an access token using the refresh_token grant.

The refresh token comes from --refresh-token or AUTHFLOW_REFRESH_TOKEN.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runToken,
}

func init() {
	f := tokenCmd.Flags()
	f.StringVar(&flagRefreshToken, "refresh-token", "", "refresh token (overrides AUTHFLOW_REFRESH_TOKEN)")
	f.BoolVar(&flagForce, "force", false, "refresh even if a cached token is still valid")
}

func runToken(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	client, err := buildClient(cmd.Context(), logger, "", oauth2c.Token{})
	if err != nil {
		return err
	}

	accessToken, err := client.GetCurrentToken(cmd.Context(), flagRefreshToken, flagForce)
	if err != nil {
		return err
	}

	tok := client.Token()
	fmt.Printf("access_token: %s\n", accessToken)
	if !tok.ExpiresAt.IsZero() {
		fmt.Printf("expires_at: %s\n", tok.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

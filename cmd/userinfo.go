package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/authflow/authflow/internal/oauth2c"
)

var flagUserinfoAccessToken string

var userinfoCmd = &cobra.Command{
	Use:   "userinfo",
	Short: "Fetch the user profile from the user-info endpoint",
	Long: `Fetch the user profile with the current access token.

An access token is taken from --access-token, or obtained via the
refresh_token grant from AUTHFLOW_REFRESH_TOKEN.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runUserinfo,
}

func init() {
	userinfoCmd.Flags().StringVar(&flagUserinfoAccessToken, "access-token", "", "use this access token instead of refreshing")
}

func runUserinfo(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	client, err := buildClient(cmd.Context(), logger, "", oauth2c.Token{AccessToken: flagUserinfoAccessToken})
	if err != nil {
		return err
	}

	info, err := client.UserInfo(cmd.Context())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(info.Raw); err != nil {
		return fmt.Errorf("encode userinfo: %w", err)
	}
	return nil
}

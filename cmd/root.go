package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var appVersion = "dev"

func SetVersion(v string) {
	appVersion = v
}

var flagVerbose bool

var rootCmd = &cobra.Command{
	Use:   "authflow",
	Short: "OAuth2 authorization-code client",
	Long:  "authflow logs in against an OAuth2 provider with the authorization-code grant and keeps the access token fresh.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "show debug logging")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(userinfoCmd)
	rootCmd.SetVersionTemplate(fmt.Sprintf("authflow v%s\n", appVersion))
}

func Execute() error {
	rootCmd.Version = appVersion
	return rootCmd.Execute()
}

// newLogger builds the CLI logger: development output under --verbose,
// silent otherwise.
func newLogger() *zap.Logger {
	if !flagVerbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

package cmd

import (
	"fmt"

	"yt-mp3-service/infrastructure/drive"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize Google Drive access with OAuth",
	Long: `Run the browser OAuth flow for the drive storage backend and save the token.

Requires google.credentials_file (OAuth client credentials) and
google.token_file in the configuration.

Example:
  yt-mp3-service auth`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	if cfg.Google.CredentialsFile == "" || cfg.Google.TokenFile == "" {
		return fmt.Errorf("google.credentials_file and google.token_file must be set for OAuth")
	}

	return drive.Authorize(cmd.Context(), drive.OAuthConfig{
		CredentialsFile: cfg.Google.CredentialsFile,
		TokenFile:       cfg.Google.TokenFile,
	}, DefaultOutput)
}

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the IGDB access token",
	Long: `IGDB requests are authorised with an access token obtained from Twitch
using the client id and secret of your Twitch application.

Tokens are fetched automatically whenever IGDB rejects the current one; these
commands let you fetch one up front and inspect the stored token.

Examples:
  gamefeed config set-credentials   # store client id and secret
  gamefeed auth login               # fetch and store a new token
  gamefeed auth status`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Fetch and store a new access token",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored access token state",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if err := requireService("auth", authService != nil); err != nil {
		return err
	}

	creds, err := authService.Login(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cmd.Println("Access token stored.")
	cmd.Printf("  Expires: %s\n", creds.ExpiresAtTime().Local().Format(time.RFC1123))
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if err := requireService("auth", authService != nil); err != nil {
		return err
	}

	creds, expired, err := authService.Status(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("reading credentials: %w", err)
	}
	if creds == nil {
		cmd.Println("Not logged in. A token is fetched on the first games request, or run 'gamefeed auth login'.")
		return nil
	}

	state := "valid"
	if expired {
		state = "expired"
	}
	cmd.Printf("Token:   %s (%s)\n", maskSecret(creds.AccessToken), state)
	cmd.Printf("Type:    %s\n", creds.TokenType)
	cmd.Printf("Expires: %s\n", creds.ExpiresAtTime().Local().Format(time.RFC1123))
	return nil
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

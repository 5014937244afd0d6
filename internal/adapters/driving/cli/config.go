package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/gamefeed-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or edit configuration",
	Long: `Configuration is read from ~/.gamefeed/config.toml (or --config) and can be
overridden with environment variables such as IGDB_CLIENT_ID, IGDB_CLIENT_SECRET
and GAMESPOT_API_KEY.`,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Print the effective configuration",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationBootstrap: bootstrapConfig},
	RunE:        runConfigShow,
}

var configSetCredentialsCmd = &cobra.Command{
	Use:   "set-credentials",
	Short: "Store IGDB and GameSpot credentials",
	Long: `Stores the Twitch application client id and secret used for IGDB, and
optionally the GameSpot API key, in the config file.

Missing values are prompted for; secrets are read without echo.

Examples:
  gamefeed config set-credentials
  gamefeed config set-credentials --client-id abc --client-secret xyz`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationBootstrap: bootstrapNone},
	RunE:        runConfigSetCredentials,
}

// Flags for set-credentials.
var (
	setClientID     string
	setClientSecret string
	setGameSpotKey  string
)

// stdin is swapped in tests.
var stdin io.Reader = os.Stdin

func init() {
	configSetCredentialsCmd.Flags().StringVar(&setClientID, "client-id", "", "Twitch application client id")
	configSetCredentialsCmd.Flags().StringVar(&setClientSecret, "client-secret", "", "Twitch application client secret")
	configSetCredentialsCmd.Flags().StringVar(&setGameSpotKey, "gamespot-key", "", "GameSpot API key")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCredentialsCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if cfg == nil {
		return errors.New("configuration not loaded")
	}

	masked := *cfg
	masked.IGDB.ClientSecret = maskIfSet(masked.IGDB.ClientSecret)
	masked.GameSpot.APIKey = maskIfSet(masked.GameSpot.APIKey)

	data, err := toml.Marshal(&masked)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	path := cfgPath
	if path == "" {
		path, _ = config.DefaultPath()
	}
	cmd.Printf("# %s\n", path)
	cmd.Print(string(data))
	return nil
}

func runConfigSetCredentials(cmd *cobra.Command, _ []string) error {
	path := flagConfig
	current, err := config.LoadFile(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	reader := bufio.NewReader(stdin)

	clientID := setClientID
	if clientID == "" {
		cmd.Print("IGDB client id: ")
		clientID = readLine(reader)
	}
	clientSecret := setClientSecret
	if clientSecret == "" {
		cmd.Print("IGDB client secret: ")
		clientSecret = readSecret(reader)
		cmd.Println()
	}
	if clientID == "" || clientSecret == "" {
		return errors.New("client id and client secret are both required")
	}

	current.IGDB.ClientID = clientID
	current.IGDB.ClientSecret = clientSecret
	if setGameSpotKey != "" {
		current.GameSpot.APIKey = setGameSpotKey
	}

	if err := config.Save(path, current); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	cmd.Println("Credentials saved.")
	return nil
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// readSecret reads without echo on a terminal and falls back to a plain line.
func readSecret(reader *bufio.Reader) string {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(reader)
}

func maskIfSet(s string) string {
	if s == "" {
		return ""
	}
	return maskSecret(s)
}

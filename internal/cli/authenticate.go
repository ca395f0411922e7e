package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ideamans/go-sheetview/adapters/googlesheets"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// redirectURL is where Google sends the browser after consent. Nothing
// listens there; the user copies the code parameter from the address bar.
const redirectURL = "http://localhost"

var authenticateCmd = &cobra.Command{
	Use:   "authenticate",
	Short: "Grant access to Google Sheets and save the credentials",
	Long: `Run the OAuth2 installed-application flow and store a refreshable
authorized_user credential file readable only by the current user.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		oauthConfig, err := newOAuthConfig(cmd)
		if err != nil {
			return err
		}

		out, err := cmd.Flags().GetString("out")
		if err != nil {
			return fmt.Errorf("failed to get out flag: %w", err)
		}
		if out == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out = cfg.CredentialsFile
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Open this URL in a browser and grant access:\n\n  %s\n\n", googlesheets.AuthCodeURL(oauthConfig, "sheetview"))
		fmt.Fprint(w, "Enter the authorization code: ")

		code, err := readCode(cmd)
		if err != nil {
			return err
		}

		data, err := googlesheets.ExchangeCode(cmd.Context(), oauthConfig, code)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o600); err != nil {
			return fmt.Errorf("failed to write credentials: %w", err)
		}

		fmt.Fprintf(w, "Credentials saved to %s\n", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authenticateCmd)
	authenticateCmd.Flags().String("client-id", "", "OAuth2 client id")
	authenticateCmd.Flags().String("client-secret", "", "OAuth2 client secret")
	authenticateCmd.Flags().String("client-secrets", "", "Client secrets JSON downloaded from the Google Cloud console")
	authenticateCmd.Flags().String("out", "", "Where to write the credentials (default: the --credentials path)")
}

// newOAuthConfig builds the client configuration from either a client
// secrets file or an explicit id and secret.
func newOAuthConfig(cmd *cobra.Command) (*oauth2.Config, error) {
	secretsPath, _ := cmd.Flags().GetString("client-secrets")
	if secretsPath != "" {
		data, err := os.ReadFile(secretsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read client secrets: %w", err)
		}
		return googlesheets.UserOAuthConfig(data)
	}

	clientID, _ := cmd.Flags().GetString("client-id")
	clientSecret, _ := cmd.Flags().GetString("client-secret")
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("either --client-secrets or both --client-id and --client-secret are required")
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       googlesheets.Scopes,
	}, nil
}

func readCode(cmd *cobra.Command) (string, error) {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read authorization code: %w", err)
		}
		return "", fmt.Errorf("no authorization code entered")
	}
	code := strings.TrimSpace(scanner.Text())
	if code == "" {
		return "", fmt.Errorf("no authorization code entered")
	}
	return code, nil
}

package googlesheets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ideamans/go-sheetview"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Scopes are the OAuth2 scopes requested for every credential
var Scopes = []string{sheets.SpreadsheetsScope, drive.DriveScope}

// ServiceAccountKey represents the structure of a service account JSON key file
type ServiceAccountKey struct {
	Type                    string `json:"type"`
	ProjectID               string `json:"project_id"`
	PrivateKeyID            string `json:"private_key_id"`
	PrivateKey              string `json:"private_key"`
	ClientEmail             string `json:"client_email"`
	ClientID                string `json:"client_id"`
	AuthURI                 string `json:"auth_uri"`
	TokenURI                string `json:"token_uri"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url"`
	ClientX509CertURL       string `json:"client_x509_cert_url"`
}

// UserCredentials is a stored end-user grant. Files written by ExchangeCode
// carry type "authorized_user"; older files written by oauth2client carry no
// type at all but the same fields.
type UserCredentials struct {
	Type         string `json:"type,omitempty"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
	TokenURI     string `json:"token_uri,omitempty"`
}

// ParseServiceAccountJSON parses a service account JSON file or data
func ParseServiceAccountJSON(jsonData []byte) (*ServiceAccountKey, error) {
	var key ServiceAccountKey
	if err := json.Unmarshal(jsonData, &key); err != nil {
		return nil, fmt.Errorf("failed to parse service account JSON: %w", err)
	}

	if key.Type != "service_account" {
		return nil, fmt.Errorf("invalid key type: %s (expected: service_account)", key.Type)
	}

	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, fmt.Errorf("missing required fields in service account key")
	}

	return &key, nil
}

// ParseCredentials builds a token source from credential JSON. Service
// account keys, authorized-user grants and legacy oauth2client grants are
// recognized; anything else fails with ErrUnrecognizedCredentialFormat.
func ParseCredentials(ctx context.Context, jsonData []byte) (oauth2.TokenSource, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("%w: %w", sheetview.ErrUnrecognizedCredentialFormat, err)
	}

	switch probe.Type {
	case "service_account":
		key, err := ParseServiceAccountJSON(jsonData)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", sheetview.ErrUnrecognizedCredentialFormat, err)
		}
		return createTokenSourceFromKey(ctx, key), nil
	case "authorized_user", "":
		var user UserCredentials
		if err := json.Unmarshal(jsonData, &user); err != nil {
			return nil, fmt.Errorf("%w: %w", sheetview.ErrUnrecognizedCredentialFormat, err)
		}
		if user.ClientID == "" || user.ClientSecret == "" || user.RefreshToken == "" {
			return nil, fmt.Errorf("%w: missing client_id, client_secret or refresh_token", sheetview.ErrUnrecognizedCredentialFormat)
		}
		return createTokenSourceFromUser(ctx, &user), nil
	default:
		return nil, fmt.Errorf("%w: unsupported credential type %q", sheetview.ErrUnrecognizedCredentialFormat, probe.Type)
	}
}

// Login creates a Collection over Google Sheets authenticated with the given
// credential JSON.
func Login(ctx context.Context, jsonData []byte, config *Config, viewConfig *sheetview.Config, opts ...option.ClientOption) (*sheetview.Collection, error) {
	ts, err := ParseCredentials(ctx, jsonData)
	if err != nil {
		return nil, err
	}
	adapter, err := New(ctx, config, append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return sheetview.New(adapter, viewConfig), nil
}

// LoginWithFile is Login reading the credentials from a file. An empty path
// falls back to GOOGLE_APPLICATION_CREDENTIALS.
func LoginWithFile(ctx context.Context, jsonPath string, config *Config, viewConfig *sheetview.Config, opts ...option.ClientOption) (*sheetview.Collection, error) {
	if jsonPath == "" {
		jsonPath = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
		if jsonPath == "" {
			return nil, fmt.Errorf("no credentials file path provided and GOOGLE_APPLICATION_CREDENTIALS not set")
		}
	}

	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return Login(ctx, jsonData, config, viewConfig, opts...)
}

// UserOAuthConfig builds the OAuth2 configuration for the interactive grant
// from an installed-application client secrets file.
func UserOAuthConfig(clientSecretsJSON []byte) (*oauth2.Config, error) {
	cfg, err := google.ConfigFromJSON(clientSecretsJSON, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secrets: %w", err)
	}
	return cfg, nil
}

// AuthCodeURL returns the page the user must visit to grant access. Offline
// access with forced consent guarantees a refresh token in the response.
func AuthCodeURL(cfg *oauth2.Config, state string) string {
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode trades an authorization code for a token and returns the
// authorized_user credential JSON that ParseCredentials accepts.
func ExchangeCode(ctx context.Context, cfg *oauth2.Config, code string) ([]byte, error) {
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("token response has no refresh token")
	}
	data, err := json.MarshalIndent(UserCredentials{
		Type:         "authorized_user",
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RefreshToken: tok.RefreshToken,
		TokenURI:     cfg.Endpoint.TokenURL,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}
	return data, nil
}

func createTokenSourceFromKey(ctx context.Context, key *ServiceAccountKey) oauth2.TokenSource {
	tokenURL := key.TokenURI
	if tokenURL == "" {
		tokenURL = google.JWTTokenURL
	}
	jwtConfig := &jwt.Config{
		Email:        key.ClientEmail,
		PrivateKey:   []byte(key.PrivateKey),
		PrivateKeyID: key.PrivateKeyID,
		Scopes:       Scopes,
		TokenURL:     tokenURL,
	}
	return jwtConfig.TokenSource(ctx)
}

func createTokenSourceFromUser(ctx context.Context, user *UserCredentials) oauth2.TokenSource {
	endpoint := google.Endpoint
	if user.TokenURI != "" {
		endpoint.TokenURL = user.TokenURI
	}
	cfg := &oauth2.Config{
		ClientID:     user.ClientID,
		ClientSecret: user.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       Scopes,
	}
	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: user.RefreshToken})
}

package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ideamans/go-sheetview"
	"github.com/ideamans/go-sheetview/adapters/excel"
	"github.com/ideamans/go-sheetview/adapters/googlesheets"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// StoreGoogle selects the Google Sheets backend
	StoreGoogle = "google"
	// StoreXLSXPrefix selects a directory of .xlsx workbooks, as "xlsx:<dir>"
	StoreXLSXPrefix = "xlsx:"

	defaultCredentialsName = ".sheetview.credential.json"
)

// ErrUnknownStore is returned for store values that are neither "google" nor "xlsx:<dir>"
var ErrUnknownStore = errors.New("unknown store")

// Config holds command line configuration
type Config struct {
	CredentialsFile string
	Store           string
}

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	err := godotenv.Load()

	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	switch levelStr {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "":
		if os.Getenv("ENV") == "production" {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// logging is ready now, so the .env outcome can be reported
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found; proceeding with existing environment variables.")
	}
}

// LoadConfig reads SHEETVIEW_CREDENTIALS and SHEETVIEW_STORE, falling back
// to ~/.sheetview.credential.json and the Google store.
func LoadConfig() (*Config, error) {
	credentials := os.Getenv("SHEETVIEW_CREDENTIALS")
	if credentials == "" {
		path, err := DefaultCredentialsFile()
		if err != nil {
			return nil, err
		}
		credentials = path
	}

	store := os.Getenv("SHEETVIEW_STORE")
	if store == "" {
		store = StoreGoogle
	}

	return &Config{
		CredentialsFile: credentials,
		Store:           store,
	}, nil
}

// DefaultCredentialsFile returns the credential path in the home directory
func DefaultCredentialsFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, defaultCredentialsName), nil
}

// OpenCollection connects to the configured store. Remote calls are logged
// at debug level through the global logger.
func OpenCollection(ctx context.Context, cfg *Config) (*sheetview.Collection, error) {
	viewConfig := &sheetview.Config{
		Logger: log.Logger.With().Str("store", cfg.Store).Logger(),
	}

	switch {
	case cfg.Store == StoreGoogle:
		log.Debug().Str("credentials", cfg.CredentialsFile).Msg("Connecting to Google Sheets")
		c, err := googlesheets.LoginWithFile(ctx, cfg.CredentialsFile, googlesheets.DefaultConfig(), viewConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to log in: %w", err)
		}
		return c, nil

	case strings.HasPrefix(cfg.Store, StoreXLSXPrefix):
		dir := strings.TrimPrefix(cfg.Store, StoreXLSXPrefix)
		log.Debug().Str("dir", dir).Msg("Opening workbook directory")
		adapter, err := excel.New(&excel.Config{Dir: dir})
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook directory: %w", err)
		}
		return sheetview.New(adapter, viewConfig), nil

	default:
		return nil, fmt.Errorf("%w: %q (want %q or %q<dir>)", ErrUnknownStore, cfg.Store, StoreGoogle, StoreXLSXPrefix)
	}
}

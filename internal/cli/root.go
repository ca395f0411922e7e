package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/fang"
	"github.com/ideamans/go-sheetview"
	"github.com/ideamans/go-sheetview/internal/app"
	"github.com/spf13/cobra"
)

var (
	credentialsFlag string
	storeFlag       string

	versionStr = "dev"
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "sheetview",
	Short: "sheetview - lazy, batched access to spreadsheets",
	Long: `sheetview reads and writes Google Sheets, or a directory of xlsx workbooks,
through lazily fetched cell views whose writes are committed in one batch.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute(ctx context.Context, version, commit, date string) error {
	app.SetupEnvironment()

	if version != "" {
		versionStr = version
	}
	if commit != "" {
		versionStr += fmt.Sprintf(" (commit: %s)", commit)
	}
	if date != "" {
		versionStr += fmt.Sprintf(" built: %s", date)
	}

	return fang.Execute(ctx, rootCmd,
		fang.WithVersion(versionStr),
	)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&credentialsFlag, "credentials", "",
		"Credential JSON file (default: $SHEETVIEW_CREDENTIALS or ~/.sheetview.credential.json)")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "",
		`Document store: "google" or "xlsx:<dir>" (default: $SHEETVIEW_STORE or google)`)
}

// loadConfig merges the environment with the global flags, flags winning
func loadConfig() (*app.Config, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	if credentialsFlag != "" {
		cfg.CredentialsFile = credentialsFlag
	}
	if storeFlag != "" {
		cfg.Store = storeFlag
	}
	return cfg, nil
}

func openCollection(cmd *cobra.Command) (*sheetview.Collection, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.OpenCollection(cmd.Context(), cfg)
}

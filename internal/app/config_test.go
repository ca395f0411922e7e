package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name            string
		credentials     string
		store           string
		wantCredentials string
		wantStore       string
	}{
		{
			name:            "explicit values",
			credentials:     "/tmp/creds.json",
			store:           "xlsx:/tmp/books",
			wantCredentials: "/tmp/creds.json",
			wantStore:       "xlsx:/tmp/books",
		},
		{
			name:            "defaults",
			wantCredentials: filepath.Join("/home/tester", ".sheetview.credential.json"),
			wantStore:       StoreGoogle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", "/home/tester")
			t.Setenv("SHEETVIEW_CREDENTIALS", tt.credentials)
			t.Setenv("SHEETVIEW_STORE", tt.store)

			cfg, err := LoadConfig()
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.CredentialsFile != tt.wantCredentials {
				t.Errorf("CredentialsFile = %q, want %q", cfg.CredentialsFile, tt.wantCredentials)
			}
			if cfg.Store != tt.wantStore {
				t.Errorf("Store = %q, want %q", cfg.Store, tt.wantStore)
			}
		})
	}
}

func TestOpenCollection_Workbooks(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c, err := OpenCollection(ctx, &Config{Store: StoreXLSXPrefix + dir})
	if err != nil {
		t.Fatalf("OpenCollection() error = %v", err)
	}
	ss, err := c.CreateSpreadsheet(ctx, "Inventory", 3, 2)
	if err != nil {
		t.Fatalf("CreateSpreadsheet() error = %v", err)
	}

	ids, err := c.IDs(ctx)
	if err != nil {
		t.Fatalf("IDs() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != ss.ID() {
		t.Errorf("IDs() = %v, want [%s]", ids, ss.ID())
	}
}

func TestOpenCollection_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown store", func(t *testing.T) {
		_, err := OpenCollection(ctx, &Config{Store: "s3://bucket"})
		if !errors.Is(err, ErrUnknownStore) {
			t.Errorf("OpenCollection() error = %v, want ErrUnknownStore", err)
		}
	})

	t.Run("empty workbook dir", func(t *testing.T) {
		if _, err := OpenCollection(ctx, &Config{Store: StoreXLSXPrefix}); err == nil {
			t.Error("OpenCollection() expected error for empty dir")
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "absent.json")
		_, err := OpenCollection(ctx, &Config{Store: StoreGoogle, CredentialsFile: path})
		if err == nil || !strings.Contains(err.Error(), "failed to read credentials file") {
			t.Errorf("OpenCollection() error = %v, want read failure", err)
		}
	})
}

package googlesheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type discoveryDocument struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	RootURL     string `json:"rootUrl"`
	ServicePath string `json:"servicePath"`
}

// discoverRootURL loads the Sheets discovery document and returns the base
// URL it advertises for the v4 API.
func discoverRootURL(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create discovery request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch discovery document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch discovery document: status %d", resp.StatusCode)
	}

	var doc discoveryDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("failed to decode discovery document: %w", err)
	}
	if doc.Version != "v4" {
		return "", fmt.Errorf("unexpected discovery document version: %q", doc.Version)
	}
	if doc.RootURL == "" {
		return "", fmt.Errorf("discovery document has no rootUrl")
	}

	root := doc.RootURL
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return root + strings.TrimPrefix(doc.ServicePath, "/"), nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Config holds the Notion credentials and workspace settings resolved from
// the project .env file and the environment.
type Config struct {
	APIKey     string
	PageURL    string
	PageID     string
	DatabaseID string
	BaseURL    string
	APIVersion string
}

// DataDir returns the directory holding commit snapshots and the last
// commit pointer. Can be overridden for testing.
var DataDir = func() string {
	return filepath.Join(xdg.DataHome, "notionsync")
}

// StateDir returns the directory holding runtime state such as the watch
// PID file. Can be overridden for testing.
var StateDir = func() string {
	return filepath.Join(xdg.StateHome, "notionsync")
}

// Load resolves configuration for the workspace rooted at dir. A .env file
// in the workspace is read when present; environment variables take
// precedence over it.
func Load(dir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("notion_base_url", "https://api.notion.com/v1")
	v.SetDefault("notion_version", "2022-06-28")

	envFile := filepath.Join(dir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	v.AutomaticEnv()
	for _, key := range []string{"notion_api_key", "notion_page_url", "notion_database_id", "notion_base_url", "notion_version"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		APIKey:     v.GetString("notion_api_key"),
		PageURL:    v.GetString("notion_page_url"),
		DatabaseID: strings.ReplaceAll(v.GetString("notion_database_id"), "-", ""),
		BaseURL:    v.GetString("notion_base_url"),
		APIVersion: v.GetString("notion_version"),
	}

	if cfg.PageURL != "" {
		pageID, err := ExtractPageID(cfg.PageURL)
		if err != nil {
			return nil, fmt.Errorf("invalid NOTION_PAGE_URL: %w", err)
		}
		cfg.PageID = pageID
	}

	return cfg, nil
}

// Validate checks that the credentials needed for remote operations are
// present.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("NOTION_API_KEY is not set")
	}
	if c.PageID == "" && c.DatabaseID == "" {
		return fmt.Errorf("neither NOTION_PAGE_URL nor NOTION_DATABASE_ID is set")
	}
	return nil
}

// DatabaseMode reports whether pushes and pulls target a database instead
// of a page tree.
func (c *Config) DatabaseMode() bool {
	return c.DatabaseID != ""
}

// ExtractPageID pulls the page ID out of a Notion page URL. Both the
// ?p=<id> query form and the trailing path segment form are accepted;
// dashes are stripped and the result must be a valid UUID.
func ExtractPageID(pageURL string) (string, error) {
	var raw string

	if idx := strings.Index(pageURL, "?p="); idx != -1 {
		raw = pageURL[idx+3:]
		if amp := strings.Index(raw, "&"); amp != -1 {
			raw = raw[:amp]
		}
	} else {
		trimmed := strings.TrimRight(pageURL, "/")
		parts := strings.Split(trimmed, "/")
		last := parts[len(parts)-1]
		// Page URLs often embed the title: Some-Title-<32 hex chars>.
		if idx := strings.LastIndex(last, "-"); idx != -1 && len(last)-idx-1 == 32 {
			raw = last[idx+1:]
		} else {
			raw = last
		}
	}

	id := strings.ReplaceAll(raw, "-", "")
	if _, err := uuid.Parse(id); err != nil {
		// Titles may themselves contain dashes; fall back to the trailing
		// 32 characters.
		if len(id) > 32 {
			tail := id[len(id)-32:]
			if _, err := uuid.Parse(tail); err == nil {
				return tail, nil
			}
		}
		return "", fmt.Errorf("%q does not contain a page ID: %w", pageURL, err)
	}
	return id, nil
}

// WriteTemplate writes a starter .env to the workspace when none exists.
func WriteTemplate(dir string) (string, error) {
	envFile := filepath.Join(dir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		return envFile, os.ErrExist
	}

	template := `NOTION_API_KEY=your_notion_api_key
NOTION_PAGE_URL=https://www.notion.so/your-page-url
# NOTION_DATABASE_ID=your_database_id
`
	if err := os.WriteFile(envFile, []byte(template), 0600); err != nil {
		return "", fmt.Errorf("failed to write .env template: %w", err)
	}
	return envFile, nil
}

// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr       string
	DBPath           string
	ZohoAPIBaseURL   string
	ZohoAccountsURL  string
	SalesdockBaseURL string
}

// Load reads configuration from environment variables and returns a
// validated Config. A local .env file is merged in first when present
// (existing environment variables win). LEADSYNC_SALESDOCK_URL is required;
// optional variables with defaults: LEADSYNC_LISTEN_ADDR (127.0.0.1:8080),
// LEADSYNC_DB_PATH (leadsync.db), LEADSYNC_ZOHO_API_URL
// (https://www.zohoapis.com/crm/v2), LEADSYNC_ZOHO_ACCOUNTS_URL
// (https://accounts.zoho.com).
func Load() (*Config, error) {
	// Best-effort for local development; production sets real env vars.
	_ = godotenv.Load()

	salesdockURL := os.Getenv("LEADSYNC_SALESDOCK_URL")
	if salesdockURL == "" {
		return nil, fmt.Errorf("LEADSYNC_SALESDOCK_URL is required")
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("LEADSYNC_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "leadsync.db"
	if v, ok := os.LookupEnv("LEADSYNC_DB_PATH"); ok {
		dbPath = v
	}

	zohoAPIURL := "https://www.zohoapis.com/crm/v2"
	if v, ok := os.LookupEnv("LEADSYNC_ZOHO_API_URL"); ok {
		zohoAPIURL = v
	}

	zohoAccountsURL := "https://accounts.zoho.com"
	if v, ok := os.LookupEnv("LEADSYNC_ZOHO_ACCOUNTS_URL"); ok {
		zohoAccountsURL = v
	}

	return &Config{
		ListenAddr:       listenAddr,
		DBPath:           dbPath,
		ZohoAPIBaseURL:   zohoAPIURL,
		ZohoAccountsURL:  zohoAccountsURL,
		SalesdockBaseURL: salesdockURL,
	}, nil
}

package model

import "time"

// Credential holds the per-tenant secrets needed to reach both vendors:
// the short-lived CRM access token, the long-lived refresh token and OAuth
// client pair used to renew it, and the static destination API key.
// Exactly one live Credential exists per tenant; renewal mutates the stored
// row in place.
type Credential struct {
	Tenant       string
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string
	APIKey       string
	UpdatedAt    time.Time
}

// Package zoho implements the CRMClient and TokenRefresher ports against the
// Zoho CRM REST API and the Zoho accounts token endpoint.
package zoho

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/jdewinter/leadsync/internal/domain/model"
	"github.com/jdewinter/leadsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.CRMClient      = (*Client)(nil)
	_ driven.TokenRefresher = (*Client)(nil)
)

// Client implements the driven.CRMClient and driven.TokenRefresher ports.
// Read calls go through an httpcache memory transport so unchanged leads are
// revalidated with conditional requests instead of re-downloaded.
type Client struct {
	http        *http.Client
	baseURL     string // Zoho CRM API base, ".../crm/v2" in production.
	accountsURL string // Zoho accounts host serving the OAuth token endpoint.
}

// NewClient creates a Zoho client for the given CRM API base and accounts
// host, with a caching transport on the read path.
func NewClient(baseURL, accountsURL string) (*Client, error) {
	return NewClientWithHTTPClient(&http.Client{
		Transport: httpcache.NewMemoryCacheTransport(),
		Timeout:   30 * time.Second,
	}, baseURL, accountsURL)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and
// base URLs. This constructor is intended for testing, allowing injection of
// an httptest server, and for self-hosted Zoho data centers.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, accountsURL string) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if _, err := url.Parse(accountsURL); err != nil {
		return nil, fmt.Errorf("parsing accounts URL: %w", err)
	}

	return &Client{
		http:        httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		accountsURL: strings.TrimRight(accountsURL, "/"),
	}, nil
}

// leadJSON mirrors the Zoho lead attribute names on the wire.
type leadJSON struct {
	ID        string `json:"id"`
	FirstName string `json:"First_Name"`
	LastName  string `json:"Last_Name"`
	Company   string `json:"Company"`
	Email     string `json:"Email"`
	Phone     string `json:"Phone"`
	Mobile    string `json:"Mobile"`
	Street    string `json:"Street"`
	City      string `json:"City"`
	ZipCode   string `json:"Zip_Code"`
}

// FetchLeadByID fetches a lead by id with a Zoho-oauthtoken bearer header.
// Returns (nil, nil) when the CRM has no such lead (404 or an empty data
// array), model.ErrUnauthorized on 401, and *model.TransportError on network
// failures and 5xx responses.
func (c *Client) FetchLeadByID(ctx context.Context, accessToken, leadID string) (*model.Lead, error) {
	reqURL := fmt.Sprintf("%s/Leads/%s", c.baseURL, url.PathEscape(leadID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build lead request: %w", err)
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &model.TransportError{Op: "zoho fetch lead", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read lead response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("fetch lead %s: %w", leadID, model.ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode >= 500:
		return nil, &model.TransportError{Op: "zoho fetch lead", StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch lead %s: unexpected status %d", leadID, resp.StatusCode)
	}

	var payload struct {
		Data []leadJSON `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode lead response: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, nil
	}

	lead := mapLead(payload.Data[0])
	if lead.ID == "" {
		lead.ID = leadID
	}
	return &lead, nil
}

// RefreshAccessToken exchanges the credential's refresh token for a new
// access token at {accountsURL}/oauth/v2/token. A provider rejection or a
// response without an access token fails with model.ErrRenewalFailed.
func (c *Client) RefreshAccessToken(ctx context.Context, cred model.Credential) (string, error) {
	data := url.Values{}
	data.Set("client_id", cred.ClientID)
	data.Set("client_secret", cred.ClientSecret)
	data.Set("refresh_token", cred.RefreshToken)
	data.Set("grant_type", "refresh_token")

	reqURL := c.accountsURL + "/oauth/v2/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &model.TransportError{Op: "zoho token refresh", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Warn("token refresh rejected", "tenant", cred.Tenant, "status", resp.StatusCode)
		return "", fmt.Errorf("%w: token endpoint returned status %d", model.ErrRenewalFailed, resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	// Zoho reports refresh-token errors with a 200 and an "error" field.
	if token.Error != "" {
		return "", fmt.Errorf("%w: %s", model.ErrRenewalFailed, token.Error)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: token endpoint returned no access token", model.ErrRenewalFailed)
	}

	return token.AccessToken, nil
}

// mapLead converts a wire-format lead to the domain model.
func mapLead(l leadJSON) model.Lead {
	return model.Lead{
		ID:        l.ID,
		FirstName: l.FirstName,
		LastName:  l.LastName,
		Company:   l.Company,
		Email:     l.Email,
		Phone:     l.Phone,
		Mobile:    l.Mobile,
		Street:    l.Street,
		City:      l.City,
		ZipCode:   l.ZipCode,
	}
}

// Package salesdock implements the DestinationClient port against the
// Salesdock leads API.
package salesdock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jdewinter/leadsync/internal/domain/model"
	"github.com/jdewinter/leadsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.DestinationClient = (*Client)(nil)

// Client implements the driven.DestinationClient port. All calls carry a
// static Bearer API key; there is no token renewal on this side.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a Salesdock client for the given API base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client. This
// constructor is intended for testing, allowing injection of an httptest
// server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// CreateLead creates a new lead from the cleaned payload.
func (c *Client) CreateLead(ctx context.Context, payload map[string]string, apiKey string) (*model.DestinationResponse, error) {
	return c.do(ctx, "salesdock create lead", http.MethodPost, c.baseURL+"/leads", payload, apiKey)
}

// UpdateLead updates the lead identified by destinationID.
func (c *Client) UpdateLead(ctx context.Context, payload map[string]string, apiKey, destinationID string) (*model.DestinationResponse, error) {
	reqURL := fmt.Sprintf("%s/leads/%s", c.baseURL, url.PathEscape(destinationID))
	return c.do(ctx, "salesdock update lead", http.MethodPut, reqURL, payload, apiKey)
}

// ConvertLead converts the lead identified by destinationID to a customer.
func (c *Client) ConvertLead(ctx context.Context, apiKey, destinationID string) (*model.DestinationResponse, error) {
	reqURL := fmt.Sprintf("%s/leads/%s/convert", c.baseURL, url.PathEscape(destinationID))
	return c.do(ctx, "salesdock convert lead", http.MethodPost, reqURL, nil, apiKey)
}

// leadResponseJSON is the vendor response body shape. Status is a pointer so
// a 2xx body without an explicit flag still reads as logical success.
type leadResponseJSON struct {
	Status  *int   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		LeadID string `json:"lead_id"`
	} `json:"data"`
}

// do issues one request and normalizes the three vendor outcomes:
// network failure or 5xx → *model.TransportError; 4xx with a structured
// error body → DestinationResponse with Status 0; 2xx → DestinationResponse
// with the body's status flag (defaulting to 1 when absent).
func (c *Client) do(ctx context.Context, op, method, reqURL string, payload map[string]string, apiKey string) (*model.DestinationResponse, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal payload: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &model.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode >= 500 {
		return nil, &model.TransportError{Op: op, StatusCode: resp.StatusCode}
	}

	var parsed leadResponseJSON
	if err := json.Unmarshal(body, &parsed); err != nil && len(body) > 0 {
		if resp.StatusCode >= 400 {
			// Unstructured 4xx body; keep the HTTP status text as the message.
			return &model.DestinationResponse{
				Status:  0,
				Message: http.StatusText(resp.StatusCode),
				Body:    string(body),
			}, nil
		}
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}

	out := &model.DestinationResponse{
		LeadID:  parsed.Data.LeadID,
		Message: parsed.Message,
		Body:    string(body),
	}

	switch {
	case resp.StatusCode >= 400:
		out.Status = 0
	case parsed.Status != nil:
		out.Status = *parsed.Status
	default:
		out.Status = 1
	}

	return out, nil
}

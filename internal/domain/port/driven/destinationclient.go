package driven

import (
	"context"

	"github.com/jdewinter/leadsync/internal/domain/model"
)

// DestinationClient defines the driven port for the downstream
// scheduling/sales system, authenticated with a static API key.
//
// All three calls normalize vendor responses the same way: 2xx with a
// logical failure flag in the body or a structured 4xx error body yield a
// DestinationResponse (Status 0 or 1, never an error); network failures and
// 5xx yield a *model.TransportError.
type DestinationClient interface {
	// CreateLead creates a new lead from the cleaned payload.
	CreateLead(ctx context.Context, payload map[string]string, apiKey string) (*model.DestinationResponse, error)

	// UpdateLead updates the lead identified by destinationID.
	UpdateLead(ctx context.Context, payload map[string]string, apiKey, destinationID string) (*model.DestinationResponse, error)

	// ConvertLead converts the lead identified by destinationID to a customer.
	ConvertLead(ctx context.Context, apiKey, destinationID string) (*model.DestinationResponse, error)
}

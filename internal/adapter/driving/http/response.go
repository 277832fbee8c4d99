package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jdewinter/leadsync/internal/application"
	"github.com/jdewinter/leadsync/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// EventRequest is the inbound event envelope delivered once per invocation.
type EventRequest struct {
	EventType string `json:"event_type"`
	Tenant    string `json:"tenant"`
	RecordID  string `json:"record_id"`
}

// OutcomeResponse is the JSON representation of a handled event's outcome.
type OutcomeResponse struct {
	SyncID         string `json:"sync_id"`
	Operation      string `json:"operation"`
	ResponseStatus int    `json:"response_status"`
	DestinationID  string `json:"destination_id,omitempty"`
	Message        string `json:"message,omitempty"`
}

// CredentialRequest is the JSON body for provisioning a tenant credential.
type CredentialRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	APIKey       string `json:"api_key"`
}

// CorrelationResponse is the JSON representation of a correlation record.
type CorrelationResponse struct {
	Source        string `json:"source"`
	SourceID      string `json:"source_id"`
	Destination   string `json:"destination"`
	DestinationID string `json:"destination_id,omitempty"`
	Request       string `json:"request"`
	Response      string `json:"response"`
	Message       string `json:"message"`
	UpdatedAt     string `json:"updated_at"`
}

// AuditEntryResponse is the JSON representation of an audit entry.
type AuditEntryResponse struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Message   string `json:"message"`
	Level     string `json:"level"`
	Context   string `json:"context"`
	CreatedAt string `json:"created_at"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toOutcomeResponse converts a routine outcome to its JSON representation.
func toOutcomeResponse(o *application.Outcome) OutcomeResponse {
	return OutcomeResponse{
		SyncID:         o.SyncID,
		Operation:      o.Operation.String(),
		ResponseStatus: o.ResponseStatus,
		DestinationID:  o.DestinationID,
		Message:        o.Message,
	}
}

// toCorrelationResponse converts a correlation record to its JSON representation.
func toCorrelationResponse(rec model.CorrelationRecord) CorrelationResponse {
	return CorrelationResponse{
		Source:        rec.Source,
		SourceID:      rec.SourceID,
		Destination:   rec.Destination,
		DestinationID: rec.DestinationID,
		Request:       rec.Request,
		Response:      rec.Response,
		Message:       rec.Message,
		UpdatedAt:     rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// toAuditEntryResponse converts an audit entry to its JSON representation.
func toAuditEntryResponse(entry model.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:        entry.ID,
		Action:    entry.Action,
		Message:   entry.Message,
		Level:     string(entry.Level),
		Context:   entry.Context,
		CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339),
	}
}

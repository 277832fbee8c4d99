// Package httphandler is the HTTP driving adapter: it receives event
// envelopes from the event-delivery runtime and exposes the admin and
// observability surface.
package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jdewinter/leadsync/internal/application"
	"github.com/jdewinter/leadsync/internal/domain/model"
	"github.com/jdewinter/leadsync/internal/domain/port/driven"
)

// EventHandler is the slice of the sync service the HTTP adapter needs;
// it is stub-implementable in tests.
type EventHandler interface {
	HandleEvent(ctx context.Context, evt model.Event) (*application.Outcome, error)
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	sync   EventHandler
	creds  driven.CredentialStore
	ledger driven.LedgerStore
	audit  driven.AuditSink
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	sync EventHandler,
	creds driven.CredentialStore,
	ledger driven.LedgerStore,
	audit driven.AuditSink,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		sync:   sync,
		creds:  creds,
		ledger: ledger,
		audit:  audit,
		logger: logger,
	}
}

// RegisterAPIRoutes registers all API routes on the given mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("POST /api/v1/events", h.HandleEvent)
	mux.HandleFunc("PUT /api/v1/tenants/{tenant}/credentials", h.PutCredentials)
	mux.HandleFunc("GET /api/v1/tenants/{tenant}/correlations", h.ListCorrelations)
	mux.HandleFunc("GET /api/v1/tenants/{tenant}/audit", h.ListAudit)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// HandleEvent processes one inbound event envelope and signals completion
// exactly once via the HTTP response: 200 with the routine outcome (logical
// rejections included, carrying response_status 0), a 4xx for fatal
// failures, or 502 when a transport fault makes the event retryable.
func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid event envelope")
		return
	}
	if req.EventType == "" || req.Tenant == "" || req.RecordID == "" {
		writeError(w, http.StatusBadRequest, "event_type, tenant, and record_id are required")
		return
	}

	evt := model.Event{
		SyncID:   uuid.NewString(),
		Type:     req.EventType,
		Tenant:   req.Tenant,
		RecordID: req.RecordID,
	}

	outcome, err := h.sync.HandleEvent(r.Context(), evt)
	if err != nil {
		h.logger.Error("event handling failed",
			"sync_id", evt.SyncID,
			"tenant", evt.Tenant,
			"event_type", evt.Type,
			"error", err,
		)
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toOutcomeResponse(outcome))
}

// statusForError maps the core's error taxonomy onto completion statuses for
// the event-delivery runtime. Only transport errors are retryable (502);
// everything else is fatal for this event.
func statusForError(err error) int {
	var transportErr *model.TransportError
	switch {
	case errors.Is(err, model.ErrUnhandledEventType):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrCredentialNotFound),
		errors.Is(err, model.ErrIntegrationNotFound),
		errors.Is(err, model.ErrLeadNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrAuthentication),
		errors.Is(err, model.ErrRenewalFailed):
		return http.StatusUnauthorized
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PutCredentials provisions or replaces a tenant's credential.
func (h *Handler) PutCredentials(w http.ResponseWriter, r *http.Request) {
	tenant := r.PathValue("tenant")

	var req CredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid credential body")
		return
	}
	if req.RefreshToken == "" || req.ClientID == "" || req.ClientSecret == "" || req.APIKey == "" {
		writeError(w, http.StatusBadRequest, "refresh_token, client_id, client_secret, and api_key are required")
		return
	}

	cred := model.Credential{
		Tenant:       tenant,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
		APIKey:       req.APIKey,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := h.creds.Save(r.Context(), cred); err != nil {
		h.logger.Error("failed to save credential", "tenant", tenant, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCorrelations returns the tenant's correlation ledger, newest first.
func (h *Handler) ListCorrelations(w http.ResponseWriter, r *http.Request) {
	tenant := r.PathValue("tenant")

	recs, err := h.ledger.ListByTenant(r.Context(), tenant)
	if err != nil {
		h.logger.Error("failed to list correlations", "tenant", tenant, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]CorrelationResponse, 0, len(recs))
	for _, rec := range recs {
		resp = append(resp, toCorrelationResponse(rec))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListAudit returns the tenant's audit trail, newest first.
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	tenant := r.PathValue("tenant")

	entries, err := h.audit.ListByTenant(r.Context(), tenant)
	if err != nil {
		h.logger.Error("failed to list audit entries", "tenant", tenant, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, toAuditEntryResponse(entry))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

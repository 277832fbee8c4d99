package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jdewinter/leadsync/internal/domain/model"
	"github.com/jdewinter/leadsync/internal/domain/port/driven"
)

// Outcome is the result of one handled event, returned to the
// event-delivery runtime. ResponseStatus mirrors the destination's logical
// flag: 1 accepted, 0 rejected by business rules. A logical rejection is a
// normal (non-error) outcome; the caller decides whether to surface it.
type Outcome struct {
	SyncID         string
	Operation      model.Operation
	ResponseStatus int
	DestinationID  string
	Message        string
}

// SyncService classifies inbound CRM events and routes them to the
// create/update/convert synchronization routines. Each HandleEvent call
// processes exactly one event end-to-end; token state is loaded fresh from
// storage per invocation.
type SyncService struct {
	creds     driven.CredentialStore
	refresher driven.TokenRefresher
	crm       driven.CRMClient
	dest      driven.DestinationClient
	ledger    driven.LedgerStore
	audit     driven.AuditSink
	logger    *slog.Logger
}

// NewSyncService creates a SyncService with all required dependencies.
func NewSyncService(
	creds driven.CredentialStore,
	refresher driven.TokenRefresher,
	crm driven.CRMClient,
	dest driven.DestinationClient,
	ledger driven.LedgerStore,
	audit driven.AuditSink,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		creds:     creds,
		refresher: refresher,
		crm:       crm,
		dest:      dest,
		ledger:    ledger,
		audit:     audit,
		logger:    logger,
	}
}

// HandleEvent runs the full pipeline for one event: classify, load the
// tenant credential, fetch the source record (renewing the access token once
// on an auth failure), and run the matching routine. Every fatal path writes
// an audit ERROR entry before the error propagates, so no failure is silent.
func (s *SyncService) HandleEvent(ctx context.Context, evt model.Event) (*Outcome, error) {
	op, err := model.OperationForEvent(evt.Type)
	if err != nil {
		s.auditError(ctx, evt, "handleCrmEvent", err.Error(), map[string]string{"event_type": evt.Type})
		return nil, err
	}

	logger := s.logger.With("sync_id", evt.SyncID, "tenant", evt.Tenant, "operation", op.String())

	tm := NewTokenManager(s.creds, s.refresher, s.audit, logger, evt.Tenant)
	if err := tm.Initialize(ctx); err != nil {
		return nil, err
	}

	lead, err := s.fetchLead(ctx, tm, evt)
	if err != nil {
		return nil, err
	}
	logger.Info("lead fetched from crm", "record_id", lead.ID)

	switch op {
	case model.OpCreateLead:
		return s.createLead(ctx, tm, evt, *lead)
	case model.OpUpdateLead:
		return s.updateLead(ctx, tm, evt, *lead)
	default:
		return s.convertLead(ctx, tm, evt, *lead)
	}
}

// fetchLead reads the source record with the current access token. On an
// auth failure it renews once and retries the read once; a second auth
// failure surfaces as model.ErrAuthentication with no further renewal.
func (s *SyncService) fetchLead(ctx context.Context, tm *TokenManager, evt model.Event) (*model.Lead, error) {
	lead, err := s.crm.FetchLeadByID(ctx, tm.AccessToken(), evt.RecordID)
	if errors.Is(err, model.ErrUnauthorized) {
		if _, rerr := tm.Renew(ctx); rerr != nil {
			return nil, rerr
		}
		lead, err = s.crm.FetchLeadByID(ctx, tm.AccessToken(), evt.RecordID)
		if errors.Is(err, model.ErrUnauthorized) {
			err = fmt.Errorf("record %s: %w", evt.RecordID, model.ErrAuthentication)
			s.auditError(ctx, evt, "getLead", err.Error(), map[string]string{"record_id": evt.RecordID})
			return nil, err
		}
	}
	if err != nil {
		s.auditError(ctx, evt, "getLead", fmt.Sprintf("error retrieving lead %s: %v", evt.RecordID, err), err)
		return nil, err
	}
	if lead == nil {
		err := fmt.Errorf("record %s: %w", evt.RecordID, model.ErrLeadNotFound)
		s.auditError(ctx, evt, "getLead", err.Error(), map[string]string{"record_id": evt.RecordID})
		return nil, err
	}

	s.auditSuccess(ctx, evt, "getLead", "retrieved lead from crm", map[string]string{"record_id": lead.ID, "sync_id": evt.SyncID})
	return lead, nil
}

// createLead builds the cleaned payload and creates the lead downstream.
// The correlation record is written only on logical success, carrying the
// new destination id; a logical rejection is audited and returned without
// an error.
func (s *SyncService) createLead(ctx context.Context, tm *TokenManager, evt model.Event, lead model.Lead) (*Outcome, error) {
	payload := buildLeadPayload(lead)

	resp, err := s.dest.CreateLead(ctx, payload, tm.APIKey())
	if err != nil {
		s.auditError(ctx, evt, "createLead", fmt.Sprintf("error creating lead %s: %v", lead.ID, err), err)
		return nil, err
	}

	return s.recordLeadOutcome(ctx, model.OpCreateLead, evt, lead, payload, resp)
}

// updateLead resolves the destination id through the correlation ledger and
// updates the lead downstream. A missing correlation is a hard failure:
// updates never implicitly create.
func (s *SyncService) updateLead(ctx context.Context, tm *TokenManager, evt model.Event, lead model.Lead) (*Outcome, error) {
	destinationID, err := s.resolveDestination(ctx, evt, lead.ID, "updateLead")
	if err != nil {
		return nil, err
	}

	payload := buildLeadPayload(lead)

	resp, err := s.dest.UpdateLead(ctx, payload, tm.APIKey(), destinationID)
	if err != nil {
		s.auditError(ctx, evt, "updateLead", fmt.Sprintf("error updating lead %s: %v", lead.ID, err), err)
		return nil, err
	}

	if resp.LeadID == "" {
		resp.LeadID = destinationID
	}
	return s.recordLeadOutcome(ctx, model.OpUpdateLead, evt, lead, payload, resp)
}

// convertLead resolves the destination id through the correlation ledger and
// converts the lead to a customer downstream. Convert writes audit entries
// only; the ledger row from the original create stays authoritative.
func (s *SyncService) convertLead(ctx context.Context, tm *TokenManager, evt model.Event, lead model.Lead) (*Outcome, error) {
	destinationID, err := s.resolveDestination(ctx, evt, lead.ID, "convertLead")
	if err != nil {
		return nil, err
	}

	resp, err := s.dest.ConvertLead(ctx, tm.APIKey(), destinationID)
	if err != nil {
		s.auditError(ctx, evt, "convertLead", fmt.Sprintf("error converting lead %s: %v", lead.ID, err), err)
		return nil, err
	}

	outcome := &Outcome{
		SyncID:         evt.SyncID,
		Operation:      model.OpConvertLead,
		ResponseStatus: resp.Status,
		DestinationID:  destinationID,
		Message:        resp.Message,
	}

	if resp.Status == 0 {
		s.auditError(ctx, evt, "convertLead",
			fmt.Sprintf("destination rejected convert for lead %s: %s", lead.ID, resp.Message),
			map[string]string{"destination_id": destinationID, "response": resp.Body})
		return outcome, nil
	}

	s.auditSuccess(ctx, evt, "convertLead", fmt.Sprintf("converted lead %s", lead.ID),
		map[string]string{"destination_id": destinationID, "sync_id": evt.SyncID})
	return outcome, nil
}

// resolveDestination looks up the correlated destination id for a source
// record. Absence (or a row without a destination id) fails with
// model.ErrIntegrationNotFound after an audit ERROR describing the gap.
func (s *SyncService) resolveDestination(ctx context.Context, evt model.Event, sourceID, action string) (string, error) {
	rec, err := s.ledger.FindBySource(ctx, evt.Tenant, model.SourceZoho, sourceID)
	if err != nil {
		s.auditError(ctx, evt, action, fmt.Sprintf("error resolving correlation for lead %s: %v", sourceID, err), err)
		return "", err
	}
	if rec == nil || rec.DestinationID == "" {
		err := fmt.Errorf("%s record %s: %w", model.SourceZoho, sourceID, model.ErrIntegrationNotFound)
		s.auditError(ctx, evt, action, err.Error(), map[string]string{"source_id": sourceID})
		return "", err
	}
	return rec.DestinationID, nil
}

// recordLeadOutcome persists the result of a create or update call: one
// audit entry always, and a correlation ledger replacement only when the
// destination reported logical success.
func (s *SyncService) recordLeadOutcome(
	ctx context.Context,
	op model.Operation,
	evt model.Event,
	lead model.Lead,
	payload map[string]string,
	resp *model.DestinationResponse,
) (*Outcome, error) {
	outcome := &Outcome{
		SyncID:         evt.SyncID,
		Operation:      op,
		ResponseStatus: resp.Status,
		DestinationID:  resp.LeadID,
		Message:        resp.Message,
	}

	if resp.Status == 0 {
		s.auditError(ctx, evt, op.String(),
			fmt.Sprintf("destination rejected lead %s: %s", lead.ID, resp.Message),
			map[string]any{"request": payload, "response": resp.Body})
		outcome.DestinationID = ""
		return outcome, nil
	}

	// A success body without a lead id cannot be correlated. Keep any prior
	// row rather than replacing it with a null destination id.
	if resp.LeadID == "" {
		s.auditError(ctx, evt, op.String(),
			fmt.Sprintf("destination reported success without a lead id for lead %s", lead.ID),
			map[string]any{"request": payload, "response": resp.Body})
		return outcome, nil
	}

	rec := model.CorrelationRecord{
		Tenant:        evt.Tenant,
		Source:        model.SourceZoho,
		SourceID:      lead.ID,
		Destination:   model.DestinationSalesdock,
		DestinationID: resp.LeadID,
		Request:       model.SerializeContext(payload),
		Response:      resp.Body,
		Message:       resp.Message,
	}
	if err := s.ledger.Upsert(ctx, rec); err != nil {
		s.auditError(ctx, evt, op.String(), fmt.Sprintf("error recording correlation for lead %s: %v", lead.ID, err), err)
		return nil, fmt.Errorf("record correlation for lead %s: %w", lead.ID, err)
	}

	s.auditSuccess(ctx, evt, op.String(),
		fmt.Sprintf("synchronized lead %s to destination %s", lead.ID, resp.LeadID),
		map[string]string{"destination_id": resp.LeadID, "sync_id": evt.SyncID})
	return outcome, nil
}

func (s *SyncService) auditSuccess(ctx context.Context, evt model.Event, action, message string, params any) {
	s.appendAudit(ctx, model.NewAuditEntry(evt.Tenant, action, message, model.AuditSuccess, params))
}

func (s *SyncService) auditError(ctx context.Context, evt model.Event, action, message string, params any) {
	s.appendAudit(ctx, model.NewAuditEntry(evt.Tenant, action, message, model.AuditError, params))
}

// appendAudit writes the entry, logging rather than failing the invocation
// when the sink itself errors: losing an audit row must not mask the
// underlying outcome.
func (s *SyncService) appendAudit(ctx context.Context, entry model.AuditEntry) {
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Error("audit append failed", "tenant", entry.Tenant, "action", entry.Action, "error", err)
	}
}

package application

import (
	"context"
	"strings"

	"github.com/jdewinter/leadsync/internal/domain/model"
)

// Hand-written port stubs used by the service tests. Each stub records the
// calls it receives and serves canned results.

type stubCredentialStore struct {
	cred        *model.Credential
	getErr      error
	updateErr   error
	updateCalls int
	updatedTok  string
}

func (s *stubCredentialStore) Get(_ context.Context, tenant string) (*model.Credential, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.cred == nil || s.cred.Tenant != tenant {
		return nil, nil
	}
	c := *s.cred
	return &c, nil
}

func (s *stubCredentialStore) Save(_ context.Context, cred model.Credential) error {
	s.cred = &cred
	return nil
}

func (s *stubCredentialStore) UpdateAccessToken(_ context.Context, _, accessToken string) error {
	s.updateCalls++
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updatedTok = accessToken
	if s.cred != nil {
		s.cred.AccessToken = accessToken
	}
	return nil
}

type stubRefresher struct {
	token string
	err   error
	calls int
}

func (s *stubRefresher) RefreshAccessToken(_ context.Context, _ model.Credential) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

type fetchResult struct {
	lead *model.Lead
	err  error
}

type stubCRM struct {
	results []fetchResult
	tokens  []string
}

func (s *stubCRM) FetchLeadByID(_ context.Context, accessToken, _ string) (*model.Lead, error) {
	s.tokens = append(s.tokens, accessToken)
	i := len(s.tokens) - 1
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	r := s.results[i]
	return r.lead, r.err
}

type stubDestination struct {
	createResp *model.DestinationResponse
	createErr  error
	updateResp *model.DestinationResponse
	updateErr  error
	convResp   *model.DestinationResponse
	convErr    error

	createCalls  int
	updateCalls  int
	convertCalls int
	lastPayload  map[string]string
	lastAPIKey   string
	lastDestID   string
}

func (s *stubDestination) CreateLead(_ context.Context, payload map[string]string, apiKey string) (*model.DestinationResponse, error) {
	s.createCalls++
	s.lastPayload = payload
	s.lastAPIKey = apiKey
	return s.createResp, s.createErr
}

func (s *stubDestination) UpdateLead(_ context.Context, payload map[string]string, apiKey, destinationID string) (*model.DestinationResponse, error) {
	s.updateCalls++
	s.lastPayload = payload
	s.lastAPIKey = apiKey
	s.lastDestID = destinationID
	return s.updateResp, s.updateErr
}

func (s *stubDestination) ConvertLead(_ context.Context, apiKey, destinationID string) (*model.DestinationResponse, error) {
	s.convertCalls++
	s.lastAPIKey = apiKey
	s.lastDestID = destinationID
	return s.convResp, s.convErr
}

type stubLedger struct {
	records   map[string]model.CorrelationRecord
	upserts   []model.CorrelationRecord
	findErr   error
	upsertErr error
}

func ledgerKey(tenant, source, sourceID string) string {
	return tenant + "|" + source + "|" + sourceID
}

func (s *stubLedger) Upsert(_ context.Context, rec model.CorrelationRecord) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	if s.records == nil {
		s.records = map[string]model.CorrelationRecord{}
	}
	s.records[ledgerKey(rec.Tenant, rec.Source, rec.SourceID)] = rec
	s.upserts = append(s.upserts, rec)
	return nil
}

func (s *stubLedger) FindBySource(_ context.Context, tenant, source, sourceID string) (*model.CorrelationRecord, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	rec, ok := s.records[ledgerKey(tenant, source, sourceID)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *stubLedger) ListByTenant(_ context.Context, tenant string) ([]model.CorrelationRecord, error) {
	var out []model.CorrelationRecord
	for _, rec := range s.records {
		if rec.Tenant == tenant {
			out = append(out, rec)
		}
	}
	return out, nil
}

type stubAudit struct {
	entries []model.AuditEntry
	err     error
}

func (s *stubAudit) Append(_ context.Context, entry model.AuditEntry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubAudit) ListByTenant(_ context.Context, tenant string) ([]model.AuditEntry, error) {
	var out []model.AuditEntry
	for _, e := range s.entries {
		if e.Tenant == tenant {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubAudit) byAction(action string) []model.AuditEntry {
	var out []model.AuditEntry
	for _, e := range s.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

func (s *stubAudit) hasError(action, messagePart string) bool {
	for _, e := range s.byAction(action) {
		if e.Level == model.AuditError && strings.Contains(e.Message, messagePart) {
			return true
		}
	}
	return false
}

// Package application contains the use-case services of the synchronization
// core: the token lifecycle manager and the event dispatcher with its
// create/update/convert routines.
package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jdewinter/leadsync/internal/domain/model"
	"github.com/jdewinter/leadsync/internal/domain/port/driven"
)

// TokenManager owns one tenant's credential for the duration of a single
// invocation. It is created fresh per event and always reloads the
// credential from storage, since a concurrent invocation may have renewed
// it; nothing in-memory survives across invocations.
//
// The manager is passive about expiry: it never renews on a timer. A caller
// that receives an authentication failure from a vendor call invokes Renew
// and retries the original call exactly once.
type TokenManager struct {
	store     driven.CredentialStore
	refresher driven.TokenRefresher
	audit     driven.AuditSink
	logger    *slog.Logger
	tenant    string
	cred      *model.Credential
}

// NewTokenManager creates a TokenManager for one tenant. Call Initialize
// before using the token accessors.
func NewTokenManager(
	store driven.CredentialStore,
	refresher driven.TokenRefresher,
	audit driven.AuditSink,
	logger *slog.Logger,
	tenant string,
) *TokenManager {
	return &TokenManager{
		store:     store,
		refresher: refresher,
		audit:     audit,
		logger:    logger,
		tenant:    tenant,
	}
}

// Initialize loads the tenant's credential from storage. Fails with
// model.ErrCredentialNotFound if none exists; the failure is audited before
// it propagates.
func (m *TokenManager) Initialize(ctx context.Context) error {
	cred, err := m.store.Get(ctx, m.tenant)
	if err != nil {
		m.auditError(ctx, "initializeTokens", fmt.Sprintf("error loading credential: %v", err), err)
		return fmt.Errorf("initialize tokens for tenant %q: %w", m.tenant, err)
	}
	if cred == nil {
		err := fmt.Errorf("tenant %q: %w", m.tenant, model.ErrCredentialNotFound)
		m.auditError(ctx, "initializeTokens", err.Error(), map[string]string{"tenant": m.tenant})
		return err
	}

	m.cred = cred
	m.appendAudit(ctx, model.NewAuditEntry(m.tenant, "initializeTokens",
		"loaded credential from store", model.AuditSuccess,
		map[string]string{"tenant": m.tenant, "updated_at": cred.UpdatedAt.String()}))
	return nil
}

// AccessToken returns the in-memory access token without a network call.
func (m *TokenManager) AccessToken() string {
	if m.cred == nil {
		return ""
	}
	return m.cred.AccessToken
}

// APIKey returns the tenant's destination API key.
func (m *TokenManager) APIKey() string {
	if m.cred == nil {
		return ""
	}
	return m.cred.APIKey
}

// Renew exchanges the refresh token for a new access token, persists it with
// a refreshed timestamp, and returns it. Fails with model.ErrRenewalFailed
// (wrapped) when the provider rejects the refresh token or returns no token.
func (m *TokenManager) Renew(ctx context.Context) (string, error) {
	if m.cred == nil {
		return "", fmt.Errorf("renew for tenant %q: %w", m.tenant, model.ErrCredentialNotFound)
	}

	token, err := m.refresher.RefreshAccessToken(ctx, *m.cred)
	if err != nil {
		m.auditError(ctx, "renewAccessToken", fmt.Sprintf("error renewing access token: %v", err), err)
		return "", fmt.Errorf("renew access token for tenant %q: %w", m.tenant, err)
	}

	m.cred.AccessToken = token
	if err := m.store.UpdateAccessToken(ctx, m.tenant, token); err != nil {
		m.auditError(ctx, "renewAccessToken", fmt.Sprintf("error persisting renewed token: %v", err), err)
		return "", fmt.Errorf("persist renewed token for tenant %q: %w", m.tenant, err)
	}

	m.logger.Info("access token renewed", "tenant", m.tenant)
	m.appendAudit(ctx, model.NewAuditEntry(m.tenant, "renewAccessToken",
		"access token renewed", model.AuditSuccess, map[string]string{"tenant": m.tenant}))
	return token, nil
}

func (m *TokenManager) auditError(ctx context.Context, action, message string, params any) {
	m.appendAudit(ctx, model.NewAuditEntry(m.tenant, action, message, model.AuditError, params))
}

// appendAudit writes the entry, logging rather than failing the invocation
// when the sink itself errors: losing an audit row must not mask the
// underlying outcome.
func (m *TokenManager) appendAudit(ctx context.Context, entry model.AuditEntry) {
	if err := m.audit.Append(ctx, entry); err != nil {
		m.logger.Error("audit append failed", "tenant", m.tenant, "action", entry.Action, "error", err)
	}
}

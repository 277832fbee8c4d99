package model

import (
	"errors"
	"fmt"
)

// Error taxonomy for the synchronization core. All of these are fatal for
// the current invocation; only TransportError is retryable by the
// event-delivery runtime.
var (
	// ErrCredentialNotFound signals a tenant with no stored credential.
	ErrCredentialNotFound = errors.New("leadsync: credential not found for tenant")
	// ErrRenewalFailed signals the identity provider rejected the refresh
	// token or returned no new access token.
	ErrRenewalFailed = errors.New("leadsync: access token renewal failed")
	// ErrUnauthorized is returned by the CRM client when the vendor rejects
	// the current access token. Callers renew once and retry.
	ErrUnauthorized = errors.New("leadsync: crm rejected access token")
	// ErrAuthentication signals a second consecutive auth failure after a
	// renewal; no further renew attempts are made.
	ErrAuthentication = errors.New("leadsync: authentication failed after token renewal")
	// ErrUnhandledEventType signals an event type outside the known set.
	ErrUnhandledEventType = errors.New("leadsync: unhandled event type")
	// ErrIntegrationNotFound signals an update or convert for a source
	// record with no correlated destination record. A later create can
	// repair it; updates never implicitly create.
	ErrIntegrationNotFound = errors.New("leadsync: no correlation for source record")
	// ErrLeadNotFound signals the CRM has no record for the event's id.
	ErrLeadNotFound = errors.New("leadsync: lead not found in crm")
)

// TransportError wraps an HTTP-level failure (network error or 5xx) from a
// vendor call. It propagates to the event-delivery runtime as retryable.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: transport error: status %d", e.Op, e.StatusCode)
}

// Unwrap returns the underlying error, if any.
func (e *TransportError) Unwrap() error { return e.Err }

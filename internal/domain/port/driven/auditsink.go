package driven

import (
	"context"

	"github.com/jdewinter/leadsync/internal/domain/model"
)

// AuditSink defines the driven port for the append-only audit trail.
type AuditSink interface {
	// Append durably records one attempt outcome.
	Append(ctx context.Context, entry model.AuditEntry) error

	// ListByTenant returns the tenant's audit entries, newest first.
	ListByTenant(ctx context.Context, tenant string) ([]model.AuditEntry, error)
}

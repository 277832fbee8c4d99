package driven

import (
	"context"

	"github.com/jdewinter/leadsync/internal/domain/model"
)

// LedgerStore defines the driven port for the correlation ledger.
//
// The ledger provides no optimistic-concurrency protection; a race between
// a concurrent create and update for the same source id can lose an update.
// The event-delivery runtime is responsible for serializing invocations per
// tenant.
type LedgerStore interface {
	// Upsert replaces any existing record for (tenant, source, source id)
	// with rec. Replace semantics, not merge: the prior row is deleted.
	Upsert(ctx context.Context, rec model.CorrelationRecord) error

	// FindBySource looks up the record for (tenant, source, source id).
	// Returns (nil, nil) if no record exists.
	FindBySource(ctx context.Context, tenant, source, sourceID string) (*model.CorrelationRecord, error)

	// ListByTenant returns all correlation records for the tenant, most
	// recently updated first.
	ListByTenant(ctx context.Context, tenant string) ([]model.CorrelationRecord, error)
}

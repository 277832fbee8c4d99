package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jdewinter/leadsync/internal/domain/model"
	"github.com/jdewinter/leadsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AuditSink = (*AuditRepo)(nil)

// AuditRepo is the SQLite implementation of the AuditSink port. The table is
// append-only; nothing here updates or deletes rows.
type AuditRepo struct {
	db *DB
}

// NewAuditRepo creates a new AuditRepo backed by the given DB.
func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Append durably records one attempt outcome.
func (r *AuditRepo) Append(ctx context.Context, entry model.AuditEntry) error {
	const query = `
		INSERT INTO audit_log (id, tenant, action, message, level, context, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		entry.ID, entry.Tenant, entry.Action, entry.Message,
		string(entry.Level), entry.Context, createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("append audit entry %q for tenant %q: %w", entry.Action, entry.Tenant, err)
	}
	return nil
}

// ListByTenant returns the tenant's audit entries, newest first.
func (r *AuditRepo) ListByTenant(ctx context.Context, tenant string) ([]model.AuditEntry, error) {
	const query = `
		SELECT id, tenant, action, message, level, context, created_at
		FROM audit_log
		WHERE tenant = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, tenant)
	if err != nil {
		return nil, fmt.Errorf("list audit entries for tenant %q: %w", tenant, err)
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var entry model.AuditEntry
		var level string
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.Tenant, &entry.Action, &entry.Message, &level, &entry.Context, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		entry.Level = model.AuditLevel(level)
		entry.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for audit entry %q: %w", entry.ID, err)
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}

	return entries, nil
}

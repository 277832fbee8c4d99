package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jdewinter/leadsync/internal/domain/model"
	"github.com/jdewinter/leadsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.LedgerStore = (*LedgerRepo)(nil)

// LedgerRepo is the SQLite implementation of the LedgerStore port.
type LedgerRepo struct {
	db *DB
}

// NewLedgerRepo creates a new LedgerRepo backed by the given DB.
func NewLedgerRepo(db *DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// Upsert replaces any existing record for (tenant, source, source id) with
// rec. The prior row is deleted rather than merged, so stale payload columns
// never survive a replacement.
func (r *LedgerRepo) Upsert(ctx context.Context, rec model.CorrelationRecord) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert for %s/%s: %w", rec.Source, rec.SourceID, err)
	}
	defer tx.Rollback()

	const del = `DELETE FROM correlations WHERE tenant = ? AND source = ? AND source_id = ?`
	if _, err := tx.ExecContext(ctx, del, rec.Tenant, rec.Source, rec.SourceID); err != nil {
		return fmt.Errorf("delete prior correlation %s/%s: %w", rec.Source, rec.SourceID, err)
	}

	var destinationID sql.NullString
	if rec.DestinationID != "" {
		destinationID = sql.NullString{String: rec.DestinationID, Valid: true}
	}

	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	const ins = `
		INSERT INTO correlations (tenant, source, source_id, destination, destination_id, request, response, message, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, ins,
		rec.Tenant, rec.Source, rec.SourceID, rec.Destination, destinationID,
		rec.Request, rec.Response, rec.Message, updatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("insert correlation %s/%s: %w", rec.Source, rec.SourceID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert for %s/%s: %w", rec.Source, rec.SourceID, err)
	}
	return nil
}

// FindBySource looks up the record for (tenant, source, source id).
// Returns (nil, nil) if no record exists.
func (r *LedgerRepo) FindBySource(ctx context.Context, tenant, source, sourceID string) (*model.CorrelationRecord, error) {
	const query = `
		SELECT id, tenant, source, source_id, destination, destination_id, request, response, message, updated_at
		FROM correlations
		WHERE tenant = ? AND source = ? AND source_id = ?
	`

	rec, err := scanCorrelation(r.db.Reader.QueryRowContext(ctx, query, tenant, source, sourceID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find correlation %s/%s: %w", source, sourceID, err)
	}

	return rec, nil
}

// ListByTenant returns all correlation records for the tenant, most recently
// updated first.
func (r *LedgerRepo) ListByTenant(ctx context.Context, tenant string) ([]model.CorrelationRecord, error) {
	const query = `
		SELECT id, tenant, source, source_id, destination, destination_id, request, response, message, updated_at
		FROM correlations
		WHERE tenant = ?
		ORDER BY updated_at DESC, id DESC
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, tenant)
	if err != nil {
		return nil, fmt.Errorf("list correlations for tenant %q: %w", tenant, err)
	}
	defer rows.Close()

	var recs []model.CorrelationRecord
	for rows.Next() {
		rec, err := scanCorrelation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan correlation: %w", err)
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate correlations: %w", err)
	}

	return recs, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanCorrelation.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCorrelation(row rowScanner) (*model.CorrelationRecord, error) {
	var rec model.CorrelationRecord
	var destinationID sql.NullString
	var updatedAt string

	if err := row.Scan(
		&rec.ID, &rec.Tenant, &rec.Source, &rec.SourceID, &rec.Destination,
		&destinationID, &rec.Request, &rec.Response, &rec.Message, &updatedAt,
	); err != nil {
		return nil, err
	}

	if destinationID.Valid {
		rec.DestinationID = destinationID.String
	}

	var err error
	rec.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &rec, nil
}

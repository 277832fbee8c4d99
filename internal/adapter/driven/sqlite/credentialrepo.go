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
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port.
type CredentialRepo struct {
	db *DB
}

// NewCredentialRepo creates a new CredentialRepo backed by the given DB.
func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

// Get retrieves the credential for the given tenant.
// Returns (nil, nil) if no credential exists for that tenant.
func (r *CredentialRepo) Get(ctx context.Context, tenant string) (*model.Credential, error) {
	const query = `
		SELECT tenant, access_token, refresh_token, client_id, client_secret, api_key, updated_at
		FROM credentials
		WHERE tenant = ?
	`

	var cred model.Credential
	var updatedAt string
	err := r.db.Reader.QueryRowContext(ctx, query, tenant).Scan(
		&cred.Tenant, &cred.AccessToken, &cred.RefreshToken,
		&cred.ClientID, &cred.ClientSecret, &cred.APIKey, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential for tenant %q: %w", tenant, err)
	}

	cred.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at for tenant %q: %w", tenant, err)
	}

	return &cred, nil
}

// Save stores or replaces the tenant's credential.
func (r *CredentialRepo) Save(ctx context.Context, cred model.Credential) error {
	const query = `
		INSERT INTO credentials (tenant, access_token, refresh_token, client_id, client_secret, api_key, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			client_id = excluded.client_id,
			client_secret = excluded.client_secret,
			api_key = excluded.api_key,
			updated_at = excluded.updated_at
	`

	updatedAt := cred.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		cred.Tenant, cred.AccessToken, cred.RefreshToken,
		cred.ClientID, cred.ClientSecret, cred.APIKey, updatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save credential for tenant %q: %w", cred.Tenant, err)
	}
	return nil
}

// UpdateAccessToken persists a renewed access token for the tenant.
// Returns model.ErrCredentialNotFound if the tenant has no stored credential.
func (r *CredentialRepo) UpdateAccessToken(ctx context.Context, tenant, accessToken string) error {
	const query = `UPDATE credentials SET access_token = ?, updated_at = ? WHERE tenant = ?`

	res, err := r.db.Writer.ExecContext(ctx, query, accessToken, time.Now().UTC(), tenant)
	if err != nil {
		return fmt.Errorf("update access token for tenant %q: %w", tenant, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update access token for tenant %q: %w", tenant, err)
	}
	if affected == 0 {
		return fmt.Errorf("update access token for tenant %q: %w", tenant, model.ErrCredentialNotFound)
	}

	return nil
}

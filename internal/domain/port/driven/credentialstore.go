package driven

import (
	"context"

	"github.com/jdewinter/leadsync/internal/domain/model"
)

// CredentialStore defines the driven port for durable tenant credentials.
// The store holds exactly one live credential per tenant.
type CredentialStore interface {
	// Get retrieves the credential for the given tenant.
	// Returns (nil, nil) if no credential exists for that tenant.
	Get(ctx context.Context, tenant string) (*model.Credential, error)

	// Save stores or replaces the tenant's credential.
	Save(ctx context.Context, cred model.Credential) error

	// UpdateAccessToken persists a renewed access token for the tenant,
	// refreshing the updated_at timestamp. Returns
	// model.ErrCredentialNotFound if the tenant has no stored credential.
	UpdateAccessToken(ctx context.Context, tenant, accessToken string) error
}

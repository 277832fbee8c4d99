package driven

import (
	"context"

	"github.com/jdewinter/leadsync/internal/domain/model"
)

// CRMClient defines the driven port for reading records from the source CRM.
type CRMClient interface {
	// FetchLeadByID fetches a lead by id, authenticated with the given
	// access token. Returns (nil, nil) if the CRM has no such lead.
	// Returns model.ErrUnauthorized when the CRM rejects the token; the
	// caller renews once and retries.
	FetchLeadByID(ctx context.Context, accessToken, leadID string) (*model.Lead, error)
}

// TokenRefresher defines the driven port for exchanging a refresh token for
// a new access token at the identity provider's token endpoint.
type TokenRefresher interface {
	// RefreshAccessToken returns a new access token for the credential.
	// Returns model.ErrRenewalFailed (wrapped) when the provider rejects
	// the refresh token or returns no new token.
	RefreshAccessToken(ctx context.Context, cred model.Credential) (string, error)
}

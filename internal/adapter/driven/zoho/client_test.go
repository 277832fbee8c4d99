package zoho_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zohoadapter "github.com/jdewinter/leadsync/internal/adapter/driven/zoho"
	"github.com/jdewinter/leadsync/internal/domain/model"
)

// newTestClient creates a Client backed by the given httptest handler for
// both the CRM API and the accounts token endpoint.
func newTestClient(t *testing.T, handler http.Handler) *zohoadapter.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := zohoadapter.NewClientWithHTTPClient(server.Client(), server.URL, server.URL)
	require.NoError(t, err)

	return client
}

func testCredential() model.Credential {
	return model.Credential{
		Tenant:       "T1",
		AccessToken:  "stale-token",
		RefreshToken: "refresh-1",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}
}

func TestFetchLeadByID_Success(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Leads/42", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{
			"id": "42",
			"First_Name": "Jane",
			"Last_Name": "Doe",
			"Company": "Acme",
			"Email": "j@x.com",
			"Phone": "0611111111",
			"Mobile": "0622222222",
			"Street": "Main St 1",
			"City": "Enschede",
			"Zip_Code": "7511AA"
		}]}`))
	}))

	lead, err := client.FetchLeadByID(context.Background(), "tok-123", "42")
	require.NoError(t, err)
	require.NotNil(t, lead)

	assert.Equal(t, "Zoho-oauthtoken tok-123", gotAuth)
	assert.Equal(t, "42", lead.ID)
	assert.Equal(t, "Jane", lead.FirstName)
	assert.Equal(t, "Doe", lead.LastName)
	assert.Equal(t, "Acme", lead.Company)
	assert.Equal(t, "j@x.com", lead.Email)
	assert.Equal(t, "0611111111", lead.Phone)
	assert.Equal(t, "0622222222", lead.Mobile)
	assert.Equal(t, "7511AA", lead.ZipCode)
}

func TestFetchLeadByID_CachesRepeatReads(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "max-age=60")
		_, _ = w.Write([]byte(`{"data":[{"id":"42","First_Name":"Jane"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := zohoadapter.NewClient(server.URL, server.URL)
	require.NoError(t, err)

	first, err := client.FetchLeadByID(context.Background(), "tok", "42")
	require.NoError(t, err)
	second, err := client.FetchLeadByID(context.Background(), "tok", "42")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, hits, "second read should be served from cache")
}

func TestFetchLeadByID_Unauthorized(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"INVALID_TOKEN"}`))
	}))

	lead, err := client.FetchLeadByID(context.Background(), "expired", "42")
	assert.Nil(t, lead)
	assert.True(t, errors.Is(err, model.ErrUnauthorized))
}

func TestFetchLeadByID_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	lead, err := client.FetchLeadByID(context.Background(), "tok", "404")
	require.NoError(t, err)
	assert.Nil(t, lead)
}

func TestFetchLeadByID_EmptyData(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))

	lead, err := client.FetchLeadByID(context.Background(), "tok", "42")
	require.NoError(t, err)
	assert.Nil(t, lead)
}

func TestFetchLeadByID_ServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.FetchLeadByID(context.Background(), "tok", "42")

	var transportErr *model.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusBadGateway, transportErr.StatusCode)
}

func TestRefreshAccessToken_Success(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth/v2/token", r.URL.Path)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "refresh-1", r.PostForm.Get("refresh_token"))
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))

		_, _ = w.Write([]byte(`{"access_token":"fresh-token","expires_in":3600}`))
	}))

	token, err := client.RefreshAccessToken(context.Background(), testCredential())
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
}

func TestRefreshAccessToken_Rejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_code"}`))
	}))

	_, err := client.RefreshAccessToken(context.Background(), testCredential())
	assert.True(t, errors.Is(err, model.ErrRenewalFailed))
}

func TestRefreshAccessToken_ErrorBodyOn200(t *testing.T) {
	// Zoho reports refresh-token errors with a 200 and an "error" field.
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	}))

	_, err := client.RefreshAccessToken(context.Background(), testCredential())
	assert.True(t, errors.Is(err, model.ErrRenewalFailed))
}

func TestRefreshAccessToken_NoTokenInResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"expires_in":3600}`))
	}))

	_, err := client.RefreshAccessToken(context.Background(), testCredential())
	assert.True(t, errors.Is(err, model.ErrRenewalFailed))
}

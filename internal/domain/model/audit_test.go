package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuditEntry(t *testing.T) {
	entry := NewAuditEntry("acme", "createLead", "synchronized lead 42", AuditSuccess,
		map[string]string{"destination_id": "D9"})

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "acme", entry.Tenant)
	assert.Equal(t, "createLead", entry.Action)
	assert.Equal(t, AuditSuccess, entry.Level)
	assert.JSONEq(t, `{"destination_id":"D9"}`, entry.Context)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestNewAuditEntry_UniqueIDs(t *testing.T) {
	a := NewAuditEntry("acme", "getLead", "m", AuditSuccess, nil)
	b := NewAuditEntry("acme", "getLead", "m", AuditSuccess, nil)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestSerializeContext(t *testing.T) {
	assert.Empty(t, SerializeContext(nil))
	assert.JSONEq(t, `{"tenant":"acme"}`, SerializeContext(map[string]string{"tenant": "acme"}))
}

func TestSerializeContext_Error(t *testing.T) {
	// Errors carry their message; marshaling the error value itself would
	// usually produce "{}".
	got := SerializeContext(errors.New("token rejected"))

	require.JSONEq(t, `{"error":"token rejected"}`, got)
}

func TestSerializeContext_Unmarshalable(t *testing.T) {
	got := SerializeContext(map[string]any{"fn": func() {}})

	assert.Contains(t, got, "serialization error")
}

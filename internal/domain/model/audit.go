package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLevel is the severity of an audit entry.
type AuditLevel string

// Audit entry severities.
const (
	AuditSuccess AuditLevel = "SUCCESS"
	AuditError   AuditLevel = "ERROR"
)

// AuditEntry is one immutable fact about a synchronization attempt.
// Entries are append-only; the core never updates or deletes them.
type AuditEntry struct {
	ID        string
	Tenant    string
	Action    string
	Message   string
	Level     AuditLevel
	Context   string
	CreatedAt time.Time
}

// NewAuditEntry builds an audit entry for the given attempt, assigning a
// fresh ID and timestamp and serializing params into the context field.
func NewAuditEntry(tenant, action, message string, level AuditLevel, params any) AuditEntry {
	return AuditEntry{
		ID:        uuid.NewString(),
		Tenant:    tenant,
		Action:    action,
		Message:   message,
		Level:     level,
		Context:   SerializeContext(params),
		CreatedAt: time.Now().UTC(),
	}
}

// SerializeContext renders params as JSON for the audit context column.
// Errors are reduced to their message rather than marshaled (most error
// types produce "{}"), and a marshaling failure falls back to a plain string
// so an audit write never fails on bad context.
func SerializeContext(params any) string {
	if params == nil {
		return ""
	}
	if err, ok := params.(error); ok {
		params = map[string]string{"error": err.Error()}
	}
	b, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("serialization error: %v", err)
	}
	return string(b)
}

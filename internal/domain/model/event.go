package model

import "fmt"

// Event type discriminators emitted by the CRM signal bus.
const (
	EventLeadCreated = "Crm_New_Leads__s"
	EventLeadUpdated = "Crm_Update_Leads__s"
	EventDealWon     = "Crm_Won_Deal__s"
)

// Operation is the closed set of synchronization routines an event can map
// to. Adding an event type means adding a constant here and handling it in
// every switch over Operation.
type Operation int

// Synchronization operations.
const (
	OpCreateLead Operation = iota
	OpUpdateLead
	OpConvertLead
)

// String returns the audit action name for the operation.
func (op Operation) String() string {
	switch op {
	case OpCreateLead:
		return "createLead"
	case OpUpdateLead:
		return "updateLead"
	case OpConvertLead:
		return "convertLead"
	default:
		return fmt.Sprintf("Operation(%d)", int(op))
	}
}

// OperationForEvent maps an event type discriminator to its operation by
// exact string match. Unknown event types fail with ErrUnhandledEventType;
// they are never silently accepted.
func OperationForEvent(eventType string) (Operation, error) {
	switch eventType {
	case EventLeadCreated:
		return OpCreateLead, nil
	case EventLeadUpdated:
		return OpUpdateLead, nil
	case EventDealWon:
		return OpConvertLead, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnhandledEventType, eventType)
	}
}

// Event is the inbound envelope delivered once per invocation by the
// event-delivery runtime.
type Event struct {
	// SyncID identifies this invocation in logs and audit context.
	SyncID string
	// Type is the event type discriminator (one of the Event* constants).
	Type string
	// Tenant is the isolated organization the event belongs to.
	Tenant string
	// RecordID is the id of the changed CRM record.
	RecordID string
}

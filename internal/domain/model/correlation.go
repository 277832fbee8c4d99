package model

import "time"

// System names used in correlation records.
const (
	SourceZoho           = "zoho"
	DestinationSalesdock = "salesdock"
)

// CorrelationRecord remembers which destination record corresponds to a
// source record, so later update and convert events can locate the right
// downstream entity. At most one record exists per (tenant, source,
// source id); a later successful create replaces any prior record.
//
// DestinationID is empty until a destination create reports logical success.
// Request and Response carry the last serialized payloads exchanged with the
// destination, for observability and manual retry.
type CorrelationRecord struct {
	ID            int64
	Tenant        string
	Source        string
	SourceID      string
	Destination   string
	DestinationID string
	Request       string
	Response      string
	Message       string
	UpdatedAt     time.Time
}

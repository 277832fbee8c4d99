package model

// Lead is a CRM lead record as read from the source system. Absent CRM
// fields are empty strings; payload building drops them before sending.
type Lead struct {
	ID        string
	FirstName string
	LastName  string
	Company   string
	Email     string
	Phone     string
	Mobile    string
	Street    string
	City      string
	ZipCode   string
}

// DestinationResponse is the normalized outcome of a destination API call.
//
// Status carries the vendor's logical response flag: 1 means the operation
// was accepted, 0 means it was rejected by business rules (a well-formed
// response, not a transport fault). Transport faults never produce a
// DestinationResponse; they surface as a *TransportError instead.
type DestinationResponse struct {
	Status  int
	LeadID  string
	Message string
	Body    string
}

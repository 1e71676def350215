package entity

// ListFilter narrows an audit listing query.
type ListFilter struct {
	// PhoneNumber restricts results to one phone number when non-empty.
	PhoneNumber string
	// Limit caps the number of rows returned, newest first.
	Limit int32
}

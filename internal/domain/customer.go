package domain

import "time"

// Customer is a tenant-scoped customer record. Customers are matched by email
// or phone within a tenant so that repeat bookings do not create duplicates.
type Customer struct {
	ID        int64
	TenantID  int64
	Name      string
	Email     *string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CustomerRef is the customer identity supplied with a booking or waitlist
// request. At least one of Email or Phone must be present.
type CustomerRef struct {
	Name  string
	Email *string
	Phone *string
}

// HasContact returns true if at least one contact channel is present
func (r CustomerRef) HasContact() bool {
	return (r.Email != nil && *r.Email != "") || (r.Phone != nil && *r.Phone != "")
}

package domain

import "time"

// ServiceDefinition is a bookable service of a tenant: a fixed duration and a
// price. Immutable during a booking computation; owned by tenant configuration.
type ServiceDefinition struct {
	ID              int64
	TenantID        int64
	Name            string
	DurationMinutes int
	Price           float64
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Employee is a bookable staff member of a tenant
type Employee struct {
	ID        int64
	TenantID  int64
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

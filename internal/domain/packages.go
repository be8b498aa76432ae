package domain

import "time"

// PackageDefinition is a sellable bundle of prepaid service credits,
// owned by tenant configuration.
type PackageDefinition struct {
	ID           int64
	TenantID     int64
	Name         string
	ServiceID    int64
	TotalUses    int
	Price        float64
	ValidityDays int // 0 = never expires
	// MaxPerCustomer caps how many packages of this definition one customer
	// may hold (active or fully used); 0 = unlimited.
	MaxPerCustomer int
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasValidity returns true if packages of this definition expire
func (d *PackageDefinition) HasValidity() bool {
	return d.ValidityDays > 0
}

// HasCustomerLimit returns true if the per-customer cap is enforced
func (d *PackageDefinition) HasCustomerLimit() bool {
	return d.MaxPerCustomer > 0
}

// PackageStatus represents the status of a purchased customer package
type PackageStatus string

const (
	PackageActive    PackageStatus = "active"
	PackageFullyUsed PackageStatus = "fully_used"
	PackageExpired   PackageStatus = "expired"
	PackageCancelled PackageStatus = "cancelled"
	PackageRefunded  PackageStatus = "refunded"
)

// CustomerPackage is the ledger entry of one purchased bundle.
// Invariant: 0 <= UsesRemaining <= TotalUses, and once redemption drives
// UsesRemaining to 0 the status is fully_used.
type CustomerPackage struct {
	ID            int64
	TenantID      int64
	CustomerID    int64
	DefinitionID  int64
	TotalUses     int
	UsesRemaining int
	ExpiresAt     *time.Time // nil = never expires
	Status        PackageStatus
	PurchasedAt   time.Time
	UpdatedAt     time.Time
}

// IsRedeemable returns true if a credit can currently be redeemed
func (p *CustomerPackage) IsRedeemable(now time.Time) bool {
	if p.Status != PackageActive {
		return false
	}
	if p.ExpiresAt != nil && now.After(*p.ExpiresAt) {
		return false
	}
	return p.UsesRemaining > 0
}

// UsesConsumed returns how many credits have been redeemed so far
func (p *CustomerPackage) UsesConsumed() int {
	return p.TotalUses - p.UsesRemaining
}

// CountsTowardsLimit returns true if the package counts against the
// per-customer purchase cap of its definition
func (p *CustomerPackage) CountsTowardsLimit() bool {
	return p.Status == PackageActive || p.Status == PackageFullyUsed
}

// PackageRedemption is the append-only audit record of one credit consumption.
// One redemption corresponds to exactly one decrement of UsesRemaining;
// rows are never mutated.
type PackageRedemption struct {
	ID                string // opaque unique identifier
	TenantID          int64
	CustomerPackageID int64
	AppointmentID     *int64 // nil when the credit was redeemed outside a booking
	RedeemedAt        time.Time
}

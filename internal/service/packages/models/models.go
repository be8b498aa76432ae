package models

import (
	"time"

	"github.com/bookline/booking-service/internal/domain"
)

// Request модели

// SellPackageRequest запрос на продажу пакета клиенту
type SellPackageRequest struct {
	TenantID     int64
	CustomerID   int64 `json:"customerId"`
	DefinitionID int64 `json:"definitionId"`
}

// RedeemRequest запрос на списание кредита пакета
type RedeemRequest struct {
	AppointmentID *int64 `json:"appointmentId,omitempty"`
}

// Response модели

// PackageResponse ответ с данными пакета клиента
type PackageResponse struct {
	ID            int64   `json:"id"`
	TenantID      int64   `json:"tenantId"`
	CustomerID    int64   `json:"customerId"`
	DefinitionID  int64   `json:"definitionId"`
	TotalUses     int     `json:"totalUses"`
	UsesRemaining int     `json:"usesRemaining"`
	UsesConsumed  int     `json:"usesConsumed"`
	ExpiresAt     *string `json:"expiresAt,omitempty"` // ISO 8601
	Status        string  `json:"status"`

	PurchasedAt time.Time `json:"purchasedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PackageListResponse ответ со списком пакетов клиента
type PackageListResponse struct {
	Packages []PackageResponse `json:"packages"`
}

// RedemptionResponse ответ с данными списания
type RedemptionResponse struct {
	ID                string    `json:"id"`
	CustomerPackageID int64     `json:"customerPackageId"`
	AppointmentID     *int64    `json:"appointmentId,omitempty"`
	RedeemedAt        time.Time `json:"redeemedAt"`
}

// RedeemResponse ответ на списание: запись аудита и пакет после списания
type RedeemResponse struct {
	Redemption RedemptionResponse `json:"redemption"`
	Package    PackageResponse    `json:"package"`
}

// RedemptionListResponse ответ с историей списаний пакета
type RedemptionListResponse struct {
	Redemptions []RedemptionResponse `json:"redemptions"`
}

// Методы конвертации

// FromDomainPackage конвертирует domain модель в DTO
func FromDomainPackage(p *domain.CustomerPackage) *PackageResponse {
	if p == nil {
		return nil
	}

	resp := &PackageResponse{
		ID:            p.ID,
		TenantID:      p.TenantID,
		CustomerID:    p.CustomerID,
		DefinitionID:  p.DefinitionID,
		TotalUses:     p.TotalUses,
		UsesRemaining: p.UsesRemaining,
		UsesConsumed:  p.UsesConsumed(),
		Status:        string(p.Status),
		PurchasedAt:   p.PurchasedAt,
		UpdatedAt:     p.UpdatedAt,
	}

	if p.ExpiresAt != nil {
		expires := p.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &expires
	}

	return resp
}

// FromDomainPackageList конвертирует список domain моделей в DTO
func FromDomainPackageList(pkgs []*domain.CustomerPackage) *PackageListResponse {
	resp := &PackageListResponse{
		Packages: make([]PackageResponse, 0, len(pkgs)),
	}

	for _, pkg := range pkgs {
		if pkgResp := FromDomainPackage(pkg); pkgResp != nil {
			resp.Packages = append(resp.Packages, *pkgResp)
		}
	}

	return resp
}

// FromDomainRedemption конвертирует domain модель списания в DTO
func FromDomainRedemption(r *domain.PackageRedemption) *RedemptionResponse {
	if r == nil {
		return nil
	}

	return &RedemptionResponse{
		ID:                r.ID,
		CustomerPackageID: r.CustomerPackageID,
		AppointmentID:     r.AppointmentID,
		RedeemedAt:        r.RedeemedAt,
	}
}

// FromDomainRedemptionList конвертирует список списаний в DTO
func FromDomainRedemptionList(redemptions []*domain.PackageRedemption) *RedemptionListResponse {
	resp := &RedemptionListResponse{
		Redemptions: make([]RedemptionResponse, 0, len(redemptions)),
	}

	for _, redemption := range redemptions {
		if redemptionResp := FromDomainRedemption(redemption); redemptionResp != nil {
			resp.Redemptions = append(resp.Redemptions, *redemptionResp)
		}
	}

	return resp
}

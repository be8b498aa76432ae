package models

import (
	"time"

	"github.com/bookline/booking-service/internal/domain"
	"github.com/bookline/booking-service/pkg/types"
)

// Request модели

// CreateEntryRequest запрос на постановку в лист ожидания
type CreateEntryRequest struct {
	TenantID int64

	CustomerName  string  `json:"customerName"`
	CustomerEmail *string `json:"customerEmail,omitempty"`
	CustomerPhone *string `json:"customerPhone,omitempty"`

	ServiceID           int64  `json:"serviceId"`
	PreferredEmployeeID *int64 `json:"preferredEmployeeId,omitempty"`

	PreferredDateFrom string  `json:"preferredDateFrom"` // "2025-10-15"
	PreferredDateTo   string  `json:"preferredDateTo"`
	PreferredTimeFrom *string `json:"preferredTimeFrom,omitempty"` // "10:00"
	PreferredTimeTo   *string `json:"preferredTimeTo,omitempty"`

	Priority int `json:"priority"`
}

// NotifyRequest запрос на уведомление записи о появившемся слоте
type NotifyRequest struct {
	ProposedDate string `json:"proposedDate"` // "2025-10-15"
	ProposedTime string `json:"proposedTime"` // "10:00"
}

// ListEntriesRequest запрос на получение записей листа ожидания
type ListEntriesRequest struct {
	TenantID  int64
	Status    *string
	ServiceID *int64
}

// SlotRef освободившийся или появившийся слот, для которого ищутся кандидаты
type SlotRef struct {
	ServiceID  int64
	EmployeeID int64
	Date       time.Time
	StartTime  types.TimeString
}

// Response модели

// EntryResponse ответ с данными записи листа ожидания
type EntryResponse struct {
	ID       int64 `json:"id"`
	TenantID int64 `json:"tenantId"`

	CustomerName  string  `json:"customerName"`
	CustomerEmail *string `json:"customerEmail,omitempty"`
	CustomerPhone *string `json:"customerPhone,omitempty"`

	ServiceID           int64  `json:"serviceId"`
	PreferredEmployeeID *int64 `json:"preferredEmployeeId,omitempty"`

	PreferredDateFrom string  `json:"preferredDateFrom"`
	PreferredDateTo   string  `json:"preferredDateTo"`
	PreferredTimeFrom *string `json:"preferredTimeFrom,omitempty"`
	PreferredTimeTo   *string `json:"preferredTimeTo,omitempty"`

	Status   string `json:"status"`
	Priority int    `json:"priority"`

	NotifiedAt        *string `json:"notifiedAt,omitempty"` // ISO 8601
	NotificationCount int     `json:"notificationCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EntryListResponse ответ со списком записей листа ожидания
type EntryListResponse struct {
	Entries []EntryResponse `json:"entries"`
}

// Методы конвертации

// FromDomainEntry конвертирует domain модель в DTO
func FromDomainEntry(e *domain.WaitlistEntry) *EntryResponse {
	if e == nil {
		return nil
	}

	resp := &EntryResponse{
		ID:                  e.ID,
		TenantID:            e.TenantID,
		CustomerName:        e.CustomerName,
		CustomerEmail:       e.CustomerEmail,
		CustomerPhone:       e.CustomerPhone,
		ServiceID:           e.ServiceID,
		PreferredEmployeeID: e.PreferredEmployeeID,
		PreferredDateFrom:   e.PreferredDateFrom.Format(domain.DateFormat),
		PreferredDateTo:     e.PreferredDateTo.Format(domain.DateFormat),
		Status:              string(e.Status),
		Priority:            e.Priority,
		NotificationCount:   e.NotificationCount,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}

	if e.PreferredTimeFrom != nil {
		from := e.PreferredTimeFrom.String()
		resp.PreferredTimeFrom = &from
	}
	if e.PreferredTimeTo != nil {
		to := e.PreferredTimeTo.String()
		resp.PreferredTimeTo = &to
	}
	if e.NotifiedAt != nil {
		notified := e.NotifiedAt.Format(time.RFC3339)
		resp.NotifiedAt = &notified
	}

	return resp
}

// FromDomainEntryList конвертирует список domain моделей в DTO
func FromDomainEntryList(entries []*domain.WaitlistEntry) *EntryListResponse {
	resp := &EntryListResponse{
		Entries: make([]EntryResponse, 0, len(entries)),
	}

	for _, entry := range entries {
		if entryResp := FromDomainEntry(entry); entryResp != nil {
			resp.Entries = append(resp.Entries, *entryResp)
		}
	}

	return resp
}

// ToDomainWaitlistStatus конвертирует строку в domain.WaitlistStatus с валидацией
func ToDomainWaitlistStatus(status string) (domain.WaitlistStatus, bool) {
	s := domain.WaitlistStatus(status)

	switch s {
	case domain.WaitlistWaiting,
		domain.WaitlistNotified,
		domain.WaitlistBooked,
		domain.WaitlistExpired,
		domain.WaitlistCancelled:
		return s, true
	}

	return "", false
}

package notifier

// Channel канал доставки уведомления
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

// BookingConfirmation payload уведомления о созданной записи
type BookingConfirmation struct {
	TenantID          int64   `json:"tenantId"`
	Channel           Channel `json:"channel"`
	Recipient         string  `json:"recipient"`
	CustomerName      string  `json:"customerName"`
	ServiceName       string  `json:"serviceName"`
	Date              string  `json:"date"`      // YYYY-MM-DD
	StartTime         string  `json:"startTime"` // HH:MM
	ConfirmationToken string  `json:"confirmationToken"`
}

// WaitlistNotice payload уведомления клиенту из листа ожидания
type WaitlistNotice struct {
	TenantID     int64   `json:"tenantId"`
	Channel      Channel `json:"channel"`
	Recipient    string  `json:"recipient"`
	CustomerName string  `json:"customerName"`
	ServiceName  string  `json:"serviceName"`
	ProposedDate string  `json:"proposedDate"` // YYYY-MM-DD
	ProposedTime string  `json:"proposedTime"` // HH:MM
}

package domain

import "time"

const (
	PaymentProviderPoint = "point"
	PaymentProviderPix   = "pix"
)

// PaymentAttempt is one provider-side attempt to collect payment for an
// order. Attempt status mirrors the provider's own vocabulary and is stored
// as-is; the raw provider body is retained for audit and replay.
type PaymentAttempt struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	OrderID           uint      `gorm:"not null;index" json:"order_id"`
	Provider          string    `gorm:"size:16;not null" json:"provider"`
	ProviderOrderID   string    `gorm:"size:128;index" json:"provider_order_id"`
	ProviderPaymentID string    `gorm:"size:128;index" json:"provider_payment_id"`
	Status            string    `gorm:"size:64;not null;default:created" json:"status"`
	TerminalID        string    `gorm:"size:128" json:"terminal_id,omitempty"`
	RawPayload        []byte    `gorm:"type:bytes" json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

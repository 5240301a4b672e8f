package models

import "time"

const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
	StatusFailed  = "FAILED"
)

// Terminal reports whether a status accepts no further transitions.
func Terminal(status string) bool {
	return status == StatusPaid || status == StatusFailed
}

// PaymentAttempt is one payment intent created against the external
// processor, keyed by the processor-issued reference. Status moves only
// PENDING -> PAID or PENDING -> FAILED; amount is fixed at creation.
type PaymentAttempt struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Reference   string     `gorm:"size:255;not null;uniqueIndex" json:"reference"`
	PayerID     string     `gorm:"size:255;not null;index" json:"payer_id"`
	AmountCents int64      `gorm:"not null" json:"amount_cents"`
	Currency    string     `gorm:"size:3;default:'COP'" json:"currency"`
	Description string     `gorm:"size:500" json:"description"`
	Status      string     `gorm:"size:20;not null;index" json:"status"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (PaymentAttempt) TableName() string {
	return "payment_attempts"
}

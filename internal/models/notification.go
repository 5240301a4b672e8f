package models

import "time"

// Notification is the durable record of a status message pushed to a payer.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PayerID   string    `gorm:"size:255;not null;index" json:"payer_id"`
	Type      string    `gorm:"size:50;not null" json:"type"`
	Title     string    `gorm:"size:255" json:"title"`
	Body      string    `gorm:"size:500" json:"body"`
	Data      string    `gorm:"type:text" json:"data"` // JSON
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookLog is an append-only audit entry for one provider notification.
// Written before processing, flipped to processed after a DONE payment is
// handled. Never consulted to drive state.
type WebhookLog struct {
	ID          string         `gorm:"column:id;type:uuid;primary_key" json:"id"`
	EventType   string         `gorm:"column:event_type;type:varchar(64);not null;index" json:"event_type"`
	PaymentKey  string         `gorm:"column:payment_key;type:varchar(200);index" json:"payment_key"`
	CustomerKey string         `gorm:"column:customer_key;type:varchar(200)" json:"customer_key"`
	Data        datatypes.JSON `gorm:"column:data;type:jsonb" json:"data"`
	ReceivedAt  time.Time      `gorm:"column:received_at;not null" json:"received_at"`
	Processed   bool           `gorm:"column:processed;not null;default:false" json:"processed"`
	ProcessedAt *time.Time     `gorm:"column:processed_at;default:null" json:"processed_at"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (WebhookLog) TableName() string { return "webhook_logs" }

package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/novaai/backend/pkg/types"
)

// Payment is one completed or attempted charge, owned by its user.
// Created on the first DONE notification for a paymentKey; later events
// referencing the same key mutate it. Only an explicit admin action
// deletes one.
type Payment struct {
	ID         string              `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID     string              `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	PaymentKey string              `gorm:"column:payment_key;type:varchar(200);not null;uniqueIndex" json:"payment_key"`
	OrderID    string              `gorm:"column:order_id;type:varchar(128);index" json:"order_id"`
	OrderName  string              `gorm:"column:order_name;type:varchar(256)" json:"order_name"`
	Amount     int64               `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Method     string              `gorm:"column:method;type:varchar(64)" json:"method"`
	Status     types.PaymentStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	ApprovedAt *time.Time          `gorm:"column:approved_at;default:null" json:"approved_at"`
	// Card holds the masked card info as delivered by the gateway.
	Card datatypes.JSON `gorm:"column:card;type:jsonb;default:'null'" json:"card"`
	// Cancels is the gateway's cancellation list for CANCELED payments.
	Cancels    datatypes.JSON `gorm:"column:cancels;type:jsonb;default:'null'" json:"cancels"`
	CanceledAt *time.Time     `gorm:"column:canceled_at;default:null" json:"canceled_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }

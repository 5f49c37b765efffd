package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/novaai/backend/pkg/types"
)

// Subscription is the per-user subscription sub-object, stored as a JSONB
// document on the user row. Field names match the documents the web app
// writes, so both sides read the same shape.
type Subscription struct {
	Plan         string                   `json:"plan,omitempty"`
	Status       types.SubscriptionStatus `json:"status,omitempty"`
	Amount       int64                    `json:"amount,omitempty"`
	BillingCycle types.BillingCycle       `json:"billingCycle,omitempty"`
	// BillingKey/CustomerKey are the gateway handles for the saved payment
	// instrument. Present together whenever IsRecurring is true and the
	// subscription is active.
	BillingKey        string     `json:"billingKey,omitempty"`
	CustomerKey       string     `json:"customerKey,omitempty"`
	IsRecurring       bool       `json:"isRecurring,omitempty"`
	NextBillingDate   *time.Time `json:"nextBillingDate,omitempty"`
	LastPaymentDate   *time.Time `json:"lastPaymentDate,omitempty"`
	LastOrderID       string     `json:"lastOrderId,omitempty"`
	OrderName         string     `json:"orderName,omitempty"`
	RegisteredAt      *time.Time `json:"registeredAt,omitempty"`
	StartDate         *time.Time `json:"startDate,omitempty"`
	FailureCount      int        `json:"failureCount,omitempty"`
	LastFailureReason string     `json:"lastFailureReason,omitempty"`
	CancelledAt       *time.Time `json:"cancelledAt,omitempty"`
}

// User is one account. The subscription sub-object and the usage counter
// live on the same row so a billing-period reset patches a single record.
type User struct {
	ID          string `gorm:"column:id;type:varchar(64);primary_key" json:"id"`
	Email       string `gorm:"column:email;type:varchar(256)" json:"email"`
	DisplayName string `gorm:"column:display_name;type:varchar(256)" json:"display_name"`
	PhotoURL    string `gorm:"column:photo_url;type:text" json:"photo_url"`
	// Plan is the root plan field; Tier is the legacy desktop field. The
	// plan resolver consults both plus subscription.plan.
	Plan         string                              `gorm:"column:plan;type:varchar(64)" json:"plan"`
	Tier         string                              `gorm:"column:tier;type:varchar(64)" json:"tier"`
	Subscription datatypes.JSONType[*Subscription]   `gorm:"column:subscription;type:jsonb;default:'{}'" json:"subscription"`
	AICallUsage  int64                               `gorm:"column:ai_call_usage;type:bigint;not null;default:0" json:"ai_call_usage"`
	UsageResetAt *time.Time                          `gorm:"column:usage_reset_at;default:null" json:"usage_reset_at"`
	CreatedAt    time.Time                           `json:"created_at"`
	UpdatedAt    time.Time                           `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// GetSubscription returns the subscription sub-object, never nil.
func (u *User) GetSubscription() *Subscription {
	if u == nil {
		return &Subscription{}
	}
	if sub := u.Subscription.Data(); sub != nil {
		return sub
	}
	return &Subscription{}
}

// SetSubscription replaces the subscription sub-object.
func (u *User) SetSubscription(sub *Subscription) {
	u.Subscription = datatypes.NewJSONType(sub)
}

package webhook

import (
	"encoding/json"

	"github.com/novaai/backend/pkg/types"
)

// Event is the provider's notification envelope.
type Event struct {
	EventType types.WebhookEventType `json:"eventType"`
	Data      EventData              `json:"data"`
}

// EventData is the subset of the provider payload this service consumes.
// Card and Cancels stay raw; they are persisted verbatim.
type EventData struct {
	PaymentKey  string              `json:"paymentKey"`
	OrderID     string              `json:"orderId"`
	OrderName   string              `json:"orderName"`
	Status      types.PaymentStatus `json:"status"`
	CustomerKey string              `json:"customerKey"`
	BillingKey  string              `json:"billingKey"`
	TotalAmount int64               `json:"totalAmount"`
	Method      string              `json:"method"`
	ApprovedAt  string              `json:"approvedAt"`
	Card        json.RawMessage     `json:"card"`
	Cancels     json.RawMessage     `json:"cancels"`
}

// ParseEvent decodes a raw webhook body.
func ParseEvent(raw []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

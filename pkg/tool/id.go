package tool

import "github.com/google/uuid"

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateOrderID produces an order id for gateway charges. Order ids are
// time-sortable so the provider dashboard lists them chronologically.
func GenerateOrderID() string {
	return "order_" + GenerateUUIDV7()
}

// GenerateSessionID produces an OAuth bridge session id.
func GenerateSessionID() string {
	return "sess_" + GenerateUUIDV7()
}

package types

type PaymentStatus string

const (
	PaymentStatusDone            PaymentStatus = "DONE"
	PaymentStatusCanceled        PaymentStatus = "CANCELED"
	PaymentStatusPartialCanceled PaymentStatus = "PARTIAL_CANCELED"
	PaymentStatusAborted         PaymentStatus = "ABORTED"
	PaymentStatusExpired         PaymentStatus = "EXPIRED"
)

type WebhookEventType string

const (
	WebhookEventPaymentStatusChanged WebhookEventType = "PAYMENT_STATUS_CHANGED"
	WebhookEventCancelStatusChanged  WebhookEventType = "CANCEL_STATUS_CHANGED"
	WebhookEventBillingDeleted       WebhookEventType = "BILLING_DELETED"
	WebhookEventDepositCallback      WebhookEventType = "DEPOSIT_CALLBACK"
)

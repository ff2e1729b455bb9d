package paygate

import "time"

// PaymentEventType identifies the lifecycle stage of a payment attempt.
type PaymentEventType string

const (
	// PaymentEventStarted fires when a payment sub-flow begins.
	PaymentEventStarted PaymentEventType = "payment_started"

	// PaymentEventSuccess fires after a receipt has been obtained and recorded.
	PaymentEventSuccess PaymentEventType = "payment_success"

	// PaymentEventFailed fires when the payment sub-flow surfaces an error.
	PaymentEventFailed PaymentEventType = "payment_failed"
)

// PaymentEvent carries the data delivered to payment listeners.
type PaymentEvent struct {
	// Type is the lifecycle stage.
	Type PaymentEventType

	// Timestamp is when the event was emitted.
	Timestamp time.Time

	// ContentID identifies the resource being paid for.
	ContentID string

	// Amount is the payment amount in smallest units.
	Amount string

	// Domain is the host of the protected resource.
	Domain string

	// TxHash is the settlement transaction hash (success only).
	TxHash string

	// BudgetRemaining is the remaining lifetime budget in smallest units,
	// or "" when no cap is configured (success only).
	BudgetRemaining string

	// Err is the failure cause (failure only).
	Err error
}

// PaymentCallback receives payment lifecycle events. Callbacks run
// synchronously on the emitting flow; a panicking callback must not break
// the payment, so emitters swallow panics.
type PaymentCallback func(PaymentEvent)

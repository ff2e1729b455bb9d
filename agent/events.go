package agent

import (
	"sync"

	paygate "github.com/paygate-labs/paygate-go"
)

// emitter fans payment lifecycle events out to registered callbacks.
// Callbacks run synchronously in registration order; a panicking callback
// never breaks the payment flow.
type emitter struct {
	mu        sync.Mutex
	callbacks []paygate.PaymentCallback
}

func (e *emitter) subscribe(cb paygate.PaymentCallback) {
	if cb == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callbacks = append(e.callbacks, cb)
}

func (e *emitter) emit(event paygate.PaymentEvent) {
	e.mu.Lock()
	callbacks := make([]paygate.PaymentCallback, len(e.callbacks))
	copy(callbacks, e.callbacks)
	e.mu.Unlock()

	for _, cb := range callbacks {
		func() {
			defer func() { _ = recover() }()
			cb(event)
		}()
	}
}

// internal/payment/hub.go
package payment

import (
	"context"
	"errors"
	"sync"
)

var ErrNoPendingPayment = errors.New("no payment is waiting for this callback")

// Callback is a redirect back from the hosted checkout page.
type Callback struct {
	PaymentID string
	TxID      string
	Success   bool
	Code      string
	Message   string
}

// Hub hands checkout callbacks to the payment waiting for them.
type Hub struct {
	mu      sync.Mutex
	pending map[string]chan Callback
}

func NewHub() *Hub {
	return &Hub{pending: make(map[string]chan Callback)}
}

// Expect registers paymentID. Wait must follow.
func (h *Hub) Expect(paymentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.pending[paymentID]; !ok {
		h.pending[paymentID] = make(chan Callback, 1)
	}
}

// Wait blocks until the callback for paymentID arrives or ctx ends.
func (h *Hub) Wait(ctx context.Context, paymentID string) (Callback, error) {
	h.mu.Lock()
	ch, ok := h.pending[paymentID]
	h.mu.Unlock()
	if !ok {
		return Callback{}, ErrNoPendingPayment
	}
	defer h.forget(paymentID)

	select {
	case cb := <-ch:
		return cb, nil
	case <-ctx.Done():
		return Callback{}, ctx.Err()
	}
}

func (h *Hub) forget(paymentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.pending, paymentID)
}

// Deliver passes cb to its waiting payment. A callback without a payment ID
// goes to the only pending payment, if there is exactly one. Each payment
// receives at most one callback.
func (h *Hub) Deliver(cb Callback) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := cb.PaymentID
	if id == "" && len(h.pending) == 1 {
		for pending := range h.pending {
			id = pending
		}
	}
	ch, ok := h.pending[id]
	if !ok {
		return ErrNoPendingPayment
	}
	cb.PaymentID = id
	select {
	case ch <- cb:
		return nil
	default:
		return ErrNoPendingPayment
	}
}

// Pending reports how many payments are waiting.
func (h *Hub) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}

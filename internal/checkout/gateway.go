package checkout

import (
	"context"
	"fmt"
	"sync"

	"revcart-storefront/internal/domain"
)

// PaymentResult is what the gateway reports back on a successful payment.
type PaymentResult struct {
	PaymentID string `json:"razorpay_payment_id"`
}

type Prefill struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// Options describes a payment the gateway should collect. Amount is in
// minor currency units. Handler is the sole success callback, OnDismiss the
// sole cancellation callback.
type Options struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Prefill     Prefill `json:"prefill"`
	Theme       string  `json:"theme"`

	Handler   func(PaymentResult) `json:"-"`
	OnDismiss func()              `json:"-"`
}

// Gateway hands a payment off for collection.
type Gateway interface {
	Open(ctx context.Context, opts Options) error
}

// PendingGateway parks the handoff until the browser finishes the hosted
// payment flow and reports back over HTTP. Only one payment can be pending
// at a time; opening a new one while another is pending is an error.
type PendingGateway struct {
	mu      sync.Mutex
	pending *Options
}

func NewPendingGateway() *PendingGateway { return &PendingGateway{} }

func (g *PendingGateway) Open(_ context.Context, opts Options) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending != nil {
		return fmt.Errorf("payment already pending")
	}
	g.pending = &opts
	return nil
}

// Pending returns the options of the payment awaiting completion, if any.
func (g *PendingGateway) Pending() (Options, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return Options{}, false
	}
	return *g.pending, true
}

// Confirm resolves the pending payment with the gateway's payment id.
func (g *PendingGateway) Confirm(result PaymentResult) error {
	opts, err := g.take()
	if err != nil {
		return err
	}
	if opts.Handler != nil {
		opts.Handler(result)
	}
	return nil
}

// Dismiss cancels the pending payment.
func (g *PendingGateway) Dismiss() error {
	opts, err := g.take()
	if err != nil {
		return err
	}
	if opts.OnDismiss != nil {
		opts.OnDismiss()
	}
	return nil
}

func (g *PendingGateway) take() (Options, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return Options{}, fmt.Errorf("%w: no payment pending", domain.ErrNotFound)
	}
	opts := *g.pending
	g.pending = nil
	return opts, nil
}

// Package checkout drives a single checkout session: address selection,
// coupon application, totals, order creation and the payment handoff.
package checkout

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"revcart-storefront/internal/api"
	"revcart-storefront/internal/domain"
	"revcart-storefront/internal/mirror"
)

// State of the checkout session. Placing and AwaitingPayment fall back to
// ReviewingOrder on order-creation failure or payment dismissal.
type State string

const (
	StateEditingAddress  State = "EDITING_ADDRESS"
	StateReviewingOrder  State = "REVIEWING_ORDER"
	StatePlacing         State = "PLACING"
	StateAwaitingPayment State = "AWAITING_PAYMENT"
	StateCompleted       State = "COMPLETED"
)

const deliveryFee = 30

type cartService interface {
	Mirror() *mirror.Store[domain.CartLine]
	Clear(ctx context.Context) error
}

type couponValidator interface {
	Validate(ctx context.Context, code string, orderAmount float64) (domain.CouponResult, error)
}

type addressBook interface {
	Save(ctx context.Context, addr domain.Address) (domain.Address, error)
}

type backend interface {
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) (domain.Order, error)
}

type Notifier interface {
	Show(message string)
}

// Totals is the cost breakdown shown during review. Tax is 5% of the
// subtotal, rounded to whole currency units.
type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"deliveryFee"`
	Tax         float64 `json:"tax"`
	Discount    float64 `json:"discount"`
	Total       float64 `json:"total"`
}

// Config carries the gateway branding passed on the payment handoff.
type Config struct {
	PaymentKey string
	Currency   string
	StoreName  string
	Theme      string
}

// PlaceOrderInput is everything placeOrder needs beyond session state.
type PlaceOrderInput struct {
	PaymentMethod string `json:"paymentMethod"`
	UPIID         string `json:"upiId"`
	SaveAddress   bool   `json:"saveAddress"`
}

type Orchestrator struct {
	cart      cartService
	coupons   couponValidator
	addresses addressBook
	backend   backend
	gateway   Gateway
	notifier  Notifier
	logger    *zap.Logger
	cfg       Config

	mu            sync.Mutex
	state         State
	items         []domain.CartLine
	address       domain.Address
	discount      float64
	couponCode    string
	couponMessage string
	order         *domain.Order
	processing    bool
}

// New builds an orchestrator subscribed to the cart mirror, so totals track
// every cart change.
func New(cart cartService, coupons couponValidator, addresses addressBook, b backend, g Gateway, n Notifier, logger *zap.Logger, cfg Config) *Orchestrator {
	o := &Orchestrator{
		cart:      cart,
		coupons:   coupons,
		addresses: addresses,
		backend:   b,
		gateway:   g,
		notifier:  n,
		logger:    logger,
		cfg:       cfg,
		state:     StateEditingAddress,
	}
	cart.Mirror().Subscribe(func(items []domain.CartLine) {
		o.mu.Lock()
		o.items = items
		o.mu.Unlock()
	})
	return o
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// ConfirmAddress fixes the delivery address for this session and moves to
// review.
func (o *Orchestrator) ConfirmAddress(addr domain.Address) error {
	if addr.FullName == "" || addr.Phone == "" || addr.Line1 == "" {
		return validationErr("Please fill in all required address fields")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.address = addr
	if o.state == StateEditingAddress {
		o.state = StateReviewingOrder
	}
	return nil
}

// EditAddress returns the session to address editing.
func (o *Orchestrator) EditAddress() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateEditingAddress
}

// Totals recomputes the breakdown from the current cart and coupon.
func (o *Orchestrator) Totals() Totals {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.totalsLocked()
}

func (o *Orchestrator) totalsLocked() Totals {
	var subtotal float64
	for _, line := range o.items {
		subtotal += line.Price * float64(line.Quantity)
	}
	tax := math.Round(subtotal * 0.05)
	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		Tax:         tax,
		Discount:    o.discount,
		Total:       subtotal + deliveryFee + tax - o.discount,
	}
}

// ApplyCoupon validates the code against the current subtotal. A negative
// validation clears any previously applied discount.
func (o *Orchestrator) ApplyCoupon(ctx context.Context, code string) (domain.CouponResult, error) {
	if strings.TrimSpace(code) == "" {
		return domain.CouponResult{}, validationErr("Please enter a coupon code")
	}

	o.mu.Lock()
	subtotal := o.totalsLocked().Subtotal
	o.mu.Unlock()

	res, err := o.coupons.Validate(ctx, code, subtotal)
	if err != nil {
		return domain.CouponResult{}, fmt.Errorf("validate coupon: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if res.Valid {
		o.couponCode = code
		o.discount = float64(res.Discount)
		o.couponMessage = fmt.Sprintf("Coupon applied! Discount: ₹%d", res.Discount)
	} else {
		o.couponCode = ""
		o.discount = 0
		o.couponMessage = res.Message
	}
	return res, nil
}

// RemoveCoupon drops the applied coupon and its discount.
func (o *Orchestrator) RemoveCoupon() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.couponCode = ""
	o.discount = 0
	o.couponMessage = ""
}

func (o *Orchestrator) CouponMessage() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.couponMessage
}

// AppliedCoupon returns the code currently counted against the total, or
// empty when none is applied.
func (o *Orchestrator) AppliedCoupon() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.couponCode
}

// PlaceOrder validates the session, creates the order and hands off to
// payment. Cash on delivery completes immediately with a zero payment
// reference; every other method parks in AwaitingPayment until the gateway
// reports success or dismissal.
func (o *Orchestrator) PlaceOrder(ctx context.Context, in PlaceOrderInput) (domain.Order, error) {
	o.mu.Lock()
	if o.processing {
		o.mu.Unlock()
		return domain.Order{}, validationErr("An order is already being placed")
	}

	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		o.mu.Unlock()
		return domain.Order{}, validationErr("Please select a payment method")
	}
	addr := o.address
	if addr.FullName == "" || addr.Phone == "" || addr.Line1 == "" {
		o.mu.Unlock()
		return domain.Order{}, validationErr("Please fill in all required address fields")
	}
	if strings.EqualFold(method, "upi") && in.UPIID == "" {
		o.mu.Unlock()
		return domain.Order{}, validationErr("Please enter your UPI ID")
	}
	if len(o.items) == 0 {
		o.mu.Unlock()
		return domain.Order{}, validationErr("Your cart is empty")
	}

	o.processing = true
	o.state = StatePlacing
	items := make([]domain.CartLine, len(o.items))
	copy(items, o.items)
	total := o.totalsLocked().Total
	o.mu.Unlock()

	if in.SaveAddress {
		if _, err := o.addresses.Save(ctx, addr); err != nil {
			o.logger.Warn("save checkout address", zap.Error(err))
		}
	}

	order, err := o.backend.CreateOrder(ctx, api.CreateOrderRequest{
		Address:       addr.Concatenated(),
		Phone:         addr.Phone,
		Items:         items,
		Total:         total,
		PaymentMethod: strings.ToUpper(method),
	})
	if err != nil {
		o.mu.Lock()
		o.processing = false
		o.state = StateReviewingOrder
		o.mu.Unlock()
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	o.mu.Lock()
	o.order = &order
	o.mu.Unlock()

	if strings.EqualFold(method, "cod") {
		o.completeOrder(ctx, "0")
		return order, nil
	}

	o.mu.Lock()
	o.state = StateAwaitingPayment
	o.mu.Unlock()

	opts := Options{
		Key:         o.cfg.PaymentKey,
		Amount:      int64(math.Round(total * 100)),
		Currency:    o.cfg.Currency,
		Name:        o.cfg.StoreName,
		Description: fmt.Sprintf("Order #%s", order.OrderNumber),
		Prefill:     Prefill{Name: addr.FullName, Contact: addr.Phone},
		Theme:       o.cfg.Theme,
		Handler: func(res PaymentResult) {
			payCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			o.completeOrder(payCtx, res.PaymentID)
		},
		OnDismiss: o.abortPayment,
	}
	if err := o.gateway.Open(ctx, opts); err != nil {
		o.mu.Lock()
		o.processing = false
		o.state = StateReviewingOrder
		o.mu.Unlock()
		return domain.Order{}, fmt.Errorf("open payment gateway: %w", err)
	}
	return order, nil
}

// Order returns the order created in this session, if any.
func (o *Orchestrator) Order() (domain.Order, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.order == nil {
		return domain.Order{}, false
	}
	return *o.order, true
}

func (o *Orchestrator) completeOrder(ctx context.Context, paymentRef string) {
	o.mu.Lock()
	order := o.order
	o.mu.Unlock()
	if order == nil {
		return
	}

	if err := o.cart.Clear(ctx); err != nil {
		o.logger.Warn("clear cart after order", zap.Error(err))
	}
	o.notifier.Show(fmt.Sprintf("Order placed successfully! Order ID: %d", order.ID))
	o.logger.Info("order completed",
		zap.Int64("order_id", order.ID),
		zap.String("payment_ref", paymentRef))

	o.mu.Lock()
	o.state = StateCompleted
	o.processing = false
	o.discount = 0
	o.couponCode = ""
	o.couponMessage = ""
	o.mu.Unlock()
}

func (o *Orchestrator) abortPayment() {
	o.mu.Lock()
	o.state = StateReviewingOrder
	o.processing = false
	o.mu.Unlock()
	o.notifier.Show("Payment cancelled")
}

func validationErr(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}

package api

import (
	"context"
	"net/http"

	"revcart-storefront/internal/domain"
)

// CreateOrderRequest is the full order-creation payload: concatenated
// address, contact phone, the mirrored lines, the computed total and the
// uppercased payment method.
type CreateOrderRequest struct {
	Address       string            `json:"address"`
	Phone         string            `json:"phone"`
	Items         []domain.CartLine `json:"items"`
	Total         float64           `json:"total"`
	PaymentMethod string            `json:"paymentMethod"`
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, http.MethodPost, "orders", req, &order)
	return order, err
}

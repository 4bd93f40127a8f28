package api

import (
	"context"
	"net/http"

	"revcart-storefront/internal/domain"
)

type ValidateCouponRequest struct {
	Code        string  `json:"code"`
	OrderAmount float64 `json:"orderAmount"`
}

func (c *Client) ValidateCoupon(ctx context.Context, code string, orderAmount float64) (domain.CouponResult, error) {
	var result domain.CouponResult
	err := c.do(ctx, http.MethodPost, "coupons/validate",
		ValidateCouponRequest{Code: code, OrderAmount: orderAmount}, &result)
	return result, err
}

func (c *Client) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	var coupons []domain.Coupon
	err := c.do(ctx, http.MethodGet, "coupons", nil, &coupons)
	return coupons, err
}

package domain

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

// Coupon is a discount rule. Percentage discounts are capped at
// MaxDiscountAmount; fixed discounts apply their value as-is.
type Coupon struct {
	ID                int          `json:"id"`
	Code              string       `json:"code"`
	Description       string       `json:"description,omitempty"`
	DiscountType      DiscountType `json:"discountType"`
	DiscountValue     float64      `json:"discountValue"`
	MinOrderAmount    float64      `json:"minOrderAmount"`
	MaxDiscountAmount float64      `json:"maxDiscountAmount"`
	Active            bool         `json:"active"`
}

// CouponResult is the outcome of validating a code against an order amount.
// An unknown code or an amount below the minimum is a negative result, not
// an error. Discount is in whole currency units.
type CouponResult struct {
	Valid    bool   `json:"valid"`
	Discount int    `json:"discount,omitempty"`
	Message  string `json:"message"`
}

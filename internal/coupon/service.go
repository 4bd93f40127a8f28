package coupon

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"revcart-storefront/internal/domain"
)

type backend interface {
	ValidateCoupon(ctx context.Context, code string, orderAmount float64) (domain.CouponResult, error)
	ListCoupons(ctx context.Context) ([]domain.Coupon, error)
}

// Service validates coupon codes against the backend and falls back to a
// built-in table when the backend is unreachable, so checkout keeps working
// offline.
type Service struct {
	backend backend
	logger  *zap.Logger
}

func New(b backend, logger *zap.Logger) *Service {
	return &Service{backend: b, logger: logger}
}

// fallbackCoupons mirrors the promotional codes the backend seeds.
var fallbackCoupons = []domain.Coupon{
	{ID: 1, Code: "WELCOME10", Description: "Welcome discount for new users", DiscountType: domain.DiscountPercentage, DiscountValue: 10, MinOrderAmount: 500, MaxDiscountAmount: 100, Active: true},
	{ID: 2, Code: "SAVE20", Description: "Save 20% on your order", DiscountType: domain.DiscountPercentage, DiscountValue: 20, MinOrderAmount: 1000, MaxDiscountAmount: 200, Active: true},
	{ID: 3, Code: "FLAT100", Description: "Flat ₹100 off on orders above ₹800", DiscountType: domain.DiscountFixed, DiscountValue: 100, MinOrderAmount: 800, MaxDiscountAmount: 100, Active: true},
	{ID: 4, Code: "MEGA50", Description: "Mega sale - 50% off", DiscountType: domain.DiscountPercentage, DiscountValue: 50, MinOrderAmount: 2000, MaxDiscountAmount: 500, Active: true},
	{ID: 5, Code: "NEWUSER", Description: "New user special discount", DiscountType: domain.DiscountFixed, DiscountValue: 200, MinOrderAmount: 1500, MaxDiscountAmount: 200, Active: true},
	{ID: 6, Code: "FESTIVAL25", Description: "Festival special - 25% off", DiscountType: domain.DiscountPercentage, DiscountValue: 25, MinOrderAmount: 1200, MaxDiscountAmount: 300, Active: true},
}

// Validate asks the backend first and answers from the fallback table when
// the call fails. The result is always usable; the error return is reserved
// for context cancellation.
func (s *Service) Validate(ctx context.Context, code string, orderAmount float64) (domain.CouponResult, error) {
	res, err := s.backend.ValidateCoupon(ctx, code, orderAmount)
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return domain.CouponResult{}, ctx.Err()
	}
	s.logger.Warn("coupon validation via backend, using fallback table",
		zap.String("code", code), zap.Error(err))
	return validateFallback(code, orderAmount), nil
}

func validateFallback(code string, orderAmount float64) domain.CouponResult {
	coupon, ok := lookup(code)
	if !ok {
		return domain.CouponResult{Valid: false, Message: "Invalid coupon code"}
	}
	if orderAmount < coupon.MinOrderAmount {
		return domain.CouponResult{
			Valid:   false,
			Message: fmt.Sprintf("Minimum order amount is ₹%d", int(coupon.MinOrderAmount)),
		}
	}

	var discount float64
	if coupon.DiscountType == domain.DiscountPercentage {
		discount = math.Min(orderAmount*coupon.DiscountValue/100, coupon.MaxDiscountAmount)
	} else {
		discount = coupon.DiscountValue
	}
	return domain.CouponResult{
		Valid:    true,
		Discount: int(math.Round(discount)),
		Message:  "Coupon applied successfully",
	}
}

func lookup(code string) (domain.Coupon, bool) {
	upper := strings.ToUpper(code)
	for _, c := range fallbackCoupons {
		if c.Code == upper {
			return c, true
		}
	}
	return domain.Coupon{}, false
}

// ListAll returns the backend's coupons when reachable and the fallback
// table otherwise.
func (s *Service) ListAll(ctx context.Context) ([]domain.Coupon, error) {
	coupons, err := s.backend.ListCoupons(ctx)
	if err == nil {
		return coupons, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	s.logger.Warn("list coupons via backend, using fallback table", zap.Error(err))
	out := make([]domain.Coupon, len(fallbackCoupons))
	copy(out, fallbackCoupons)
	return out, nil
}

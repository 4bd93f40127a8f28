package httpserver

import (
	"revcart-storefront/internal/address"
	"revcart-storefront/internal/api"
	"revcart-storefront/internal/auth"
	"revcart-storefront/internal/cart"
	"revcart-storefront/internal/checkout"
	"revcart-storefront/internal/coupon"
	"revcart-storefront/internal/wishlist"
)

// The concrete types wired in cmd/storefront must keep satisfying the
// handler interfaces.
var (
	_ CartService     = (*cart.Service)(nil)
	_ WishlistService = (*wishlist.Service)(nil)
	_ CouponService   = (*coupon.Service)(nil)
	_ CheckoutService = (*checkout.Orchestrator)(nil)
	_ PaymentGateway  = (*checkout.PendingGateway)(nil)
	_ AddressService  = (*address.Service)(nil)
	_ AuthBackend     = (*api.Client)(nil)
	_ SessionStore    = (*auth.Session)(nil)
)

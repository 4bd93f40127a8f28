package httpserver

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"revcart-storefront/internal/api"
	"revcart-storefront/internal/checkout"
	"revcart-storefront/internal/domain"
	"revcart-storefront/internal/mirror"
	"revcart-storefront/internal/notify"
)

// CartService is the cart surface the handlers consume.
type CartService interface {
	Mirror() *mirror.Store[domain.CartLine]
	Load(ctx context.Context) error
	Add(ctx context.Context, product domain.Product, quantity int) error
	UpdateQuantity(ctx context.Context, productID, quantity int) error
	Remove(ctx context.Context, productID int) error
	Clear(ctx context.Context) error
	SyncWithServer(ctx context.Context) error
	Total() float64
	Count() int
}

type WishlistService interface {
	Mirror() *mirror.Store[int]
	Load(ctx context.Context) error
	Add(ctx context.Context, productID int) error
	Remove(ctx context.Context, productID int) error
	IsMember(productID int) bool
	Count() int
}

type CouponService interface {
	Validate(ctx context.Context, code string, orderAmount float64) (domain.CouponResult, error)
	ListAll(ctx context.Context) ([]domain.Coupon, error)
}

type CheckoutService interface {
	State() checkout.State
	Totals() checkout.Totals
	ConfirmAddress(addr domain.Address) error
	EditAddress()
	ApplyCoupon(ctx context.Context, code string) (domain.CouponResult, error)
	RemoveCoupon()
	CouponMessage() string
	AppliedCoupon() string
	PlaceOrder(ctx context.Context, in checkout.PlaceOrderInput) (domain.Order, error)
	Order() (domain.Order, bool)
}

type PaymentGateway interface {
	Pending() (checkout.Options, bool)
	Confirm(result checkout.PaymentResult) error
	Dismiss() error
}

type AddressService interface {
	Mirror() *mirror.Store[domain.Address]
	Load(ctx context.Context) error
	Save(ctx context.Context, addr domain.Address) (domain.Address, error)
	Select(addr domain.Address)
	Selected() (domain.Address, bool)
}

type AuthBackend interface {
	Login(ctx context.Context, req api.LoginRequest) (api.LoginResponse, error)
}

type SessionStore interface {
	SetToken(ctx context.Context, token string) error
	SetUser(user domain.User)
	Clear(ctx context.Context) error
}

// Deps carries everything the routes need.
type Deps struct {
	Cart      CartService
	Wishlist  WishlistService
	Coupons   CouponService
	Checkout  CheckoutService
	Payments  PaymentGateway
	Addresses AddressService
	Auth      AuthBackend
	Session   SessionStore
	Toaster   *notify.Toaster

	// ReadyCheck probes the storage backend; nil means always ready.
	ReadyCheck func(ctx context.Context) error
}

// buildRouter wires routes for the storefront API.
func buildRouter(logger *zap.Logger, deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery(), cors.Default())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.ReadyCheck))

	h := &handlers{deps: deps, logger: logger}

	api := router.Group("/api")
	{
		api.GET("/cart", h.getCart)
		api.POST("/cart/items", h.addCartItem)
		api.PUT("/cart/items/:productId", h.updateCartItem)
		api.DELETE("/cart/items/:productId", h.removeCartItem)
		api.DELETE("/cart", h.clearCart)
		api.POST("/cart/sync", h.syncCart)

		api.GET("/wishlist", h.getWishlist)
		api.POST("/wishlist/:productId", h.addWishlistItem)
		api.DELETE("/wishlist/:productId", h.removeWishlistItem)

		api.POST("/coupons/validate", h.validateCoupon)
		api.GET("/coupons", h.listCoupons)

		api.GET("/checkout", h.checkoutState)
		api.POST("/checkout/address", h.confirmAddress)
		api.POST("/checkout/address/edit", h.editAddress)
		api.POST("/checkout/coupon", h.applyCoupon)
		api.DELETE("/checkout/coupon", h.removeCoupon)
		api.POST("/checkout/place", h.placeOrder)
		api.GET("/checkout/payment", h.pendingPayment)
		api.POST("/checkout/payment/confirm", h.confirmPayment)
		api.POST("/checkout/payment/dismiss", h.dismissPayment)

		api.GET("/addresses", h.listAddresses)
		api.POST("/addresses", h.saveAddress)
		api.POST("/addresses/select", h.selectAddress)

		api.POST("/auth/login", h.login)
		api.POST("/auth/logout", h.logout)

		api.GET("/notifications", h.currentToast)
	}

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}

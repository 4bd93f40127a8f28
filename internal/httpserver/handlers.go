package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"revcart-storefront/internal/api"
	"revcart-storefront/internal/checkout"
	"revcart-storefront/internal/domain"
)

type handlers struct {
	deps   Deps
	logger *zap.Logger
}

// respondError maps service errors onto HTTP statuses. Validation messages
// are user-facing; everything else degrades to a bad-gateway since the
// failure came from the backing store service.
func (h *handlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": validationMessage(err)})
	case errors.Is(err, domain.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
	case errors.Is(err, domain.ErrRestrictedRole):
		c.JSON(http.StatusForbidden, gin.H{"message": "this role may not make purchases"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	default:
		h.logger.Warn("request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"message": err.Error()})
	}
}

func validationMessage(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, domain.ErrValidation.Error()+": "); idx >= 0 {
		return msg[idx+len(domain.ErrValidation.Error())+2:]
	}
	return msg
}

func productIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("productId"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		return 0, false
	}
	return id, true
}

// --- cart ---

type cartView struct {
	Items []domain.CartLine `json:"items"`
	Total float64           `json:"total"`
	Count int               `json:"count"`
}

func (h *handlers) cartView() cartView {
	items := h.deps.Cart.Mirror().Current()
	if items == nil {
		items = []domain.CartLine{}
	}
	return cartView{Items: items, Total: h.deps.Cart.Total(), Count: h.deps.Cart.Count()}
}

func (h *handlers) getCart(c *gin.Context) {
	if c.Query("refresh") == "true" {
		if err := h.deps.Cart.Load(c.Request.Context()); err != nil {
			h.respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, h.cartView())
}

type addCartItemRequest struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if req.Product.ID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		return
	}
	if err := h.deps.Cart.Add(c.Request.Context(), req.Product, req.Quantity); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cartView())
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *handlers) updateCartItem(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if err := h.deps.Cart.UpdateQuantity(c.Request.Context(), id, req.Quantity); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cartView())
}

func (h *handlers) removeCartItem(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	if err := h.deps.Cart.Remove(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cartView())
}

func (h *handlers) clearCart(c *gin.Context) {
	if err := h.deps.Cart.Clear(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cartView())
}

func (h *handlers) syncCart(c *gin.Context) {
	if err := h.deps.Cart.SyncWithServer(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cartView())
}

// --- wishlist ---

type wishlistView struct {
	ProductIDs []int `json:"productIds"`
	Count      int   `json:"count"`
}

func (h *handlers) wishlistView() wishlistView {
	ids := h.deps.Wishlist.Mirror().Current()
	if ids == nil {
		ids = []int{}
	}
	return wishlistView{ProductIDs: ids, Count: h.deps.Wishlist.Count()}
}

func (h *handlers) getWishlist(c *gin.Context) {
	if err := h.deps.Wishlist.Load(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.wishlistView())
}

func (h *handlers) addWishlistItem(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	if err := h.deps.Wishlist.Add(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.wishlistView())
}

func (h *handlers) removeWishlistItem(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	if err := h.deps.Wishlist.Remove(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.wishlistView())
}

// --- coupons ---

type validateCouponRequest struct {
	Code        string  `json:"code"`
	OrderAmount float64 `json:"orderAmount"`
}

func (h *handlers) validateCoupon(c *gin.Context) {
	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	res, err := h.deps.Coupons.Validate(c.Request.Context(), req.Code, req.OrderAmount)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) listCoupons(c *gin.Context) {
	coupons, err := h.deps.Coupons.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupons)
}

// --- checkout ---

type checkoutStateView struct {
	State        checkout.State  `json:"state"`
	Totals       checkout.Totals `json:"totals"`
	CouponCode   string          `json:"couponCode,omitempty"`
	CouponNotice string          `json:"couponNotice,omitempty"`
}

func (h *handlers) checkoutState(c *gin.Context) {
	c.JSON(http.StatusOK, checkoutStateView{
		State:        h.deps.Checkout.State(),
		Totals:       h.deps.Checkout.Totals(),
		CouponCode:   h.deps.Checkout.AppliedCoupon(),
		CouponNotice: h.deps.Checkout.CouponMessage(),
	})
}

func (h *handlers) confirmAddress(c *gin.Context) {
	var addr domain.Address
	if err := c.ShouldBindJSON(&addr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if err := h.deps.Checkout.ConfirmAddress(addr); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": h.deps.Checkout.State()})
}

func (h *handlers) editAddress(c *gin.Context) {
	h.deps.Checkout.EditAddress()
	c.JSON(http.StatusOK, gin.H{"state": h.deps.Checkout.State()})
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

func (h *handlers) applyCoupon(c *gin.Context) {
	var req applyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	res, err := h.deps.Checkout.ApplyCoupon(c.Request.Context(), req.Code)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result": res,
		"totals": h.deps.Checkout.Totals(),
	})
}

func (h *handlers) removeCoupon(c *gin.Context) {
	h.deps.Checkout.RemoveCoupon()
	c.JSON(http.StatusOK, gin.H{"totals": h.deps.Checkout.Totals()})
}

func (h *handlers) placeOrder(c *gin.Context) {
	var in checkout.PlaceOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	order, err := h.deps.Checkout.PlaceOrder(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "state": h.deps.Checkout.State()})
}

func (h *handlers) pendingPayment(c *gin.Context) {
	opts, ok := h.deps.Payments.Pending()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "no payment pending"})
		return
	}
	c.JSON(http.StatusOK, opts)
}

func (h *handlers) confirmPayment(c *gin.Context) {
	var result checkout.PaymentResult
	if err := c.ShouldBindJSON(&result); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if err := h.deps.Payments.Confirm(result); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": h.deps.Checkout.State()})
}

func (h *handlers) dismissPayment(c *gin.Context) {
	if err := h.deps.Payments.Dismiss(); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": h.deps.Checkout.State()})
}

// --- addresses ---

func (h *handlers) listAddresses(c *gin.Context) {
	if err := h.deps.Addresses.Load(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	addrs := h.deps.Addresses.Mirror().Current()
	if addrs == nil {
		addrs = []domain.Address{}
	}
	selected, _ := h.deps.Addresses.Selected()
	c.JSON(http.StatusOK, gin.H{"addresses": addrs, "selected": selected})
}

func (h *handlers) saveAddress(c *gin.Context) {
	var addr domain.Address
	if err := c.ShouldBindJSON(&addr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	saved, err := h.deps.Addresses.Save(c.Request.Context(), addr)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *handlers) selectAddress(c *gin.Context) {
	var addr domain.Address
	if err := c.ShouldBindJSON(&addr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	h.deps.Addresses.Select(addr)
	c.JSON(http.StatusOK, gin.H{"selected": addr})
}

// --- auth ---

func (h *handlers) login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	resp, err := h.deps.Auth.Login(c.Request.Context(), req)
	if err != nil {
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
			return
		}
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.deps.Session.SetToken(ctx, resp.Token); err != nil {
		h.respondError(c, err)
		return
	}
	h.deps.Session.SetUser(resp.User)

	// Replay the anonymous cart against the server, then pull the merged
	// state down.
	if err := h.deps.Cart.SyncWithServer(ctx); err != nil {
		h.logger.Warn("sync cart after login", zap.Error(err))
	}
	if err := h.deps.Cart.Load(ctx); err != nil {
		h.logger.Warn("load cart after login", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"user": resp.User})
}

func (h *handlers) logout(c *gin.Context) {
	if err := h.deps.Session.Clear(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- notifications ---

func (h *handlers) currentToast(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Toaster.Current())
}

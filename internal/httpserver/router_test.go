package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"revcart-storefront/internal/api"
	"revcart-storefront/internal/checkout"
	"revcart-storefront/internal/domain"
	"revcart-storefront/internal/mirror"
	"revcart-storefront/internal/notify"
	"revcart-storefront/internal/storage"
)

type stubCartSvc struct {
	mirror    *mirror.Store[domain.CartLine]
	addErr    error
	added     []domain.Product
	synced    int
	loaded    int
	cleared   int
	removed   []int
	quantitys map[int]int
}

func (s *stubCartSvc) Mirror() *mirror.Store[domain.CartLine] { return s.mirror }

func (s *stubCartSvc) Load(_ context.Context) error {
	s.loaded++
	return nil
}

func (s *stubCartSvc) Add(_ context.Context, p domain.Product, _ int) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, p)
	return nil
}

func (s *stubCartSvc) UpdateQuantity(_ context.Context, productID, quantity int) error {
	if s.quantitys == nil {
		s.quantitys = map[int]int{}
	}
	s.quantitys[productID] = quantity
	return nil
}

func (s *stubCartSvc) Remove(_ context.Context, productID int) error {
	s.removed = append(s.removed, productID)
	return nil
}

func (s *stubCartSvc) Clear(_ context.Context) error {
	s.cleared++
	return nil
}

func (s *stubCartSvc) SyncWithServer(_ context.Context) error {
	s.synced++
	return nil
}

func (s *stubCartSvc) Total() float64 {
	var total float64
	for _, line := range s.mirror.Current() {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

func (s *stubCartSvc) Count() int {
	var count int
	for _, line := range s.mirror.Current() {
		count += line.Quantity
	}
	return count
}

type stubWishlistSvc struct {
	mirror *mirror.Store[int]
	addErr error
	added  []int
}

func (s *stubWishlistSvc) Mirror() *mirror.Store[int]    { return s.mirror }
func (s *stubWishlistSvc) Load(_ context.Context) error  { return nil }
func (s *stubWishlistSvc) IsMember(productID int) bool   { return false }
func (s *stubWishlistSvc) Count() int                    { return len(s.mirror.Current()) }
func (s *stubWishlistSvc) Remove(_ context.Context, _ int) error {
	return nil
}

func (s *stubWishlistSvc) Add(_ context.Context, productID int) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, productID)
	return nil
}

type stubCouponSvc struct {
	result domain.CouponResult
}

func (s *stubCouponSvc) Validate(_ context.Context, _ string, _ float64) (domain.CouponResult, error) {
	return s.result, nil
}

func (s *stubCouponSvc) ListAll(_ context.Context) ([]domain.Coupon, error) {
	return []domain.Coupon{{ID: 1, Code: "WELCOME10", Active: true}}, nil
}

type stubCheckoutSvc struct {
	placeErr error
	order    domain.Order
	coupon   string
}

func (s *stubCheckoutSvc) State() checkout.State   { return checkout.StateReviewingOrder }
func (s *stubCheckoutSvc) Totals() checkout.Totals { return checkout.Totals{Total: 293} }
func (s *stubCheckoutSvc) ConfirmAddress(_ domain.Address) error {
	return nil
}
func (s *stubCheckoutSvc) EditAddress()          {}
func (s *stubCheckoutSvc) RemoveCoupon()         {}
func (s *stubCheckoutSvc) CouponMessage() string { return "" }
func (s *stubCheckoutSvc) AppliedCoupon() string { return s.coupon }

func (s *stubCheckoutSvc) ApplyCoupon(_ context.Context, code string) (domain.CouponResult, error) {
	return domain.CouponResult{Valid: true, Discount: 50}, nil
}

func (s *stubCheckoutSvc) PlaceOrder(_ context.Context, _ checkout.PlaceOrderInput) (domain.Order, error) {
	if s.placeErr != nil {
		return domain.Order{}, s.placeErr
	}
	return s.order, nil
}

func (s *stubCheckoutSvc) Order() (domain.Order, bool) { return s.order, s.order.ID != 0 }

type stubAddressSvc struct {
	mirror *mirror.Store[domain.Address]
}

func (s *stubAddressSvc) Mirror() *mirror.Store[domain.Address] { return s.mirror }
func (s *stubAddressSvc) Load(_ context.Context) error          { return nil }
func (s *stubAddressSvc) Select(_ domain.Address)               {}
func (s *stubAddressSvc) Selected() (domain.Address, bool)      { return domain.Address{}, false }

func (s *stubAddressSvc) Save(_ context.Context, addr domain.Address) (domain.Address, error) {
	if !addr.Complete() {
		return domain.Address{}, domain.ErrValidation
	}
	addr.ID = 1
	return addr, nil
}

type stubAuthBackend struct {
	resp api.LoginResponse
	err  error
}

func (s *stubAuthBackend) Login(_ context.Context, _ api.LoginRequest) (api.LoginResponse, error) {
	return s.resp, s.err
}

type stubSessionStore struct {
	token   string
	user    *domain.User
	cleared int
}

func (s *stubSessionStore) SetToken(_ context.Context, token string) error {
	s.token = token
	return nil
}

func (s *stubSessionStore) SetUser(user domain.User) { s.user = &user }

func (s *stubSessionStore) Clear(_ context.Context) error {
	s.cleared++
	s.token = ""
	s.user = nil
	return nil
}

type routerFixture struct {
	router   *gin.Engine
	cart     *stubCartSvc
	wishlist *stubWishlistSvc
	checkout *stubCheckoutSvc
	payments *checkout.PendingGateway
	auth     *stubAuthBackend
	session  *stubSessionStore
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fs, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	f := &routerFixture{
		cart:     &stubCartSvc{mirror: mirror.New[domain.CartLine](fs, "cart", zap.NewNop())},
		wishlist: &stubWishlistSvc{mirror: mirror.New[int](fs, "wishlist", zap.NewNop())},
		checkout: &stubCheckoutSvc{order: domain.Order{ID: 7, OrderNumber: "ORD-7"}},
		payments: checkout.NewPendingGateway(),
		auth:     &stubAuthBackend{},
		session:  &stubSessionStore{},
	}
	f.router = buildRouter(zap.NewNop(), Deps{
		Cart:      f.cart,
		Wishlist:  f.wishlist,
		Coupons:   &stubCouponSvc{result: domain.CouponResult{Valid: true, Discount: 60}},
		Checkout:  f.checkout,
		Payments:  f.payments,
		Addresses: &stubAddressSvc{mirror: mirror.New[domain.Address](fs, "addresses", zap.NewNop())},
		Auth:      f.auth,
		Session:   f.session,
		Toaster:   notify.NewToaster(time.Minute),
	})
	return f
}

func doRequest(f *routerFixture, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	f := newRouterFixture(t)
	rec := doRequest(f, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestGetCartReturnsMirror(t *testing.T) {
	f := newRouterFixture(t)
	err := f.cart.mirror.Replace(context.Background(), []domain.CartLine{
		{Product: domain.Product{ID: 1, Name: "Mug", Price: 100}, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	rec := doRequest(f, http.MethodGet, "/api/cart", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"total":200`) || !strings.Contains(body, `"count":2`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestGetCartRefreshTriggersLoad(t *testing.T) {
	f := newRouterFixture(t)
	doRequest(f, http.MethodGet, "/api/cart?refresh=true", "")
	if f.cart.loaded != 1 {
		t.Fatalf("expected one load, got %d", f.cart.loaded)
	}
}

func TestAddCartItem(t *testing.T) {
	f := newRouterFixture(t)
	rec := doRequest(f, http.MethodPost, "/api/cart/items", `{"product":{"id":5,"name":"Mug","price":99.5},"quantity":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(f.cart.added) != 1 || f.cart.added[0].ID != 5 {
		t.Fatalf("unexpected adds: %+v", f.cart.added)
	}
}

func TestAddCartItemRestrictedRole(t *testing.T) {
	f := newRouterFixture(t)
	f.cart.addErr = domain.ErrRestrictedRole
	rec := doRequest(f, http.MethodPost, "/api/cart/items", `{"product":{"id":5},"quantity":1}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestAddCartItemBadBody(t *testing.T) {
	f := newRouterFixture(t)
	rec := doRequest(f, http.MethodPost, "/api/cart/items", `{{{`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestUpdateCartItemQuantity(t *testing.T) {
	f := newRouterFixture(t)
	rec := doRequest(f, http.MethodPut, "/api/cart/items/5", `{"quantity":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if f.cart.quantitys[5] != 3 {
		t.Fatalf("unexpected quantity update: %v", f.cart.quantitys)
	}
}

func TestWishlistInvalidProductID(t *testing.T) {
	f := newRouterFixture(t)
	rec := doRequest(f, http.MethodPost, "/api/wishlist/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	rec = doRequest(f, http.MethodPost, "/api/wishlist/-3", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestWishlistAdd(t *testing.T) {
	f := newRouterFixture(t)
	rec := doRequest(f, http.MethodPost, "/api/wishlist/8", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if len(f.wishlist.added) != 1 || f.wishlist.added[0] != 8 {
		t.Fatalf("unexpected adds: %v", f.wishlist.added)
	}
}

func TestValidateCoupon(t *testing.T) {
	f := newRouterFixture(t)
	rec := doRequest(f, http.MethodPost, "/api/coupons/validate", `{"code":"WELCOME10","orderAmount":600}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"discount":60`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestListCoupons(t *testing.T) {
	f := newRouterFixture(t)
	rec := doRequest(f, http.MethodGet, "/api/coupons", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "WELCOME10") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCheckoutStateShowsAppliedCoupon(t *testing.T) {
	f := newRouterFixture(t)
	f.checkout.coupon = "SAVE20"

	rec := doRequest(f, http.MethodGet, "/api/checkout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"couponCode":"SAVE20"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestPlaceOrderValidationMessage(t *testing.T) {
	f := newRouterFixture(t)
	f.checkout.placeErr = domain.ErrValidation
	rec := doRequest(f, http.MethodPost, "/api/checkout/place", `{"paymentMethod":"cod"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestPlaceOrderSuccess(t *testing.T) {
	f := newRouterFixture(t)
	rec := doRequest(f, http.MethodPost, "/api/checkout/place", `{"paymentMethod":"cod"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"orderNumber":"ORD-7"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestPaymentConfirmWithoutPending(t *testing.T) {
	f := newRouterFixture(t)
	rec := doRequest(f, http.MethodPost, "/api/checkout/payment/confirm", `{"razorpay_payment_id":"pay_1"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestPaymentRoundTrip(t *testing.T) {
	f := newRouterFixture(t)
	confirmed := ""
	err := f.payments.Open(context.Background(), checkout.Options{
		Key:    "key_test",
		Amount: 29300,
		Handler: func(res checkout.PaymentResult) {
			confirmed = res.PaymentID
		},
	})
	if err != nil {
		t.Fatalf("open payment: %v", err)
	}

	rec := doRequest(f, http.MethodGet, "/api/checkout/payment", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"amount":29300`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = doRequest(f, http.MethodPost, "/api/checkout/payment/confirm", `{"razorpay_payment_id":"pay_1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if confirmed != "pay_1" {
		t.Fatalf("expected handler invoked with pay_1, got %q", confirmed)
	}
}

func TestLoginSetsSessionAndSyncsCart(t *testing.T) {
	f := newRouterFixture(t)
	f.auth.resp = api.LoginResponse{
		Token: "tok-123",
		User:  domain.User{ID: 42, Name: "Asha", Role: "CUSTOMER"},
	}

	rec := doRequest(f, http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if f.session.token != "tok-123" {
		t.Fatalf("expected token stored, got %q", f.session.token)
	}
	if f.session.user == nil || f.session.user.ID != 42 {
		t.Fatalf("expected user stored, got %+v", f.session.user)
	}
	if f.cart.synced != 1 || f.cart.loaded != 1 {
		t.Fatalf("expected cart sync+load, got synced=%d loaded=%d", f.cart.synced, f.cart.loaded)
	}
}

func TestLoginUnauthorized(t *testing.T) {
	f := newRouterFixture(t)
	f.auth.err = &api.StatusError{Code: http.StatusUnauthorized, Body: "bad credentials"}

	rec := doRequest(f, http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	f := newRouterFixture(t)
	f.session.user = &domain.User{ID: 42}

	rec := doRequest(f, http.MethodPost, "/api/auth/logout", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if f.session.cleared != 1 || f.session.user != nil {
		t.Fatalf("session not cleared")
	}
}

// Package cart reconciles the local cart mirror with the remote cart
// resource. Reads are authoritative-server-first with enrichment; writes go
// to the server with a local fallback so the user-visible outcome is the
// same whichever path succeeded.
package cart

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"revcart-storefront/internal/api"
	"revcart-storefront/internal/domain"
	"revcart-storefront/internal/mirror"
)

// Event is the data-only notification emitted after an add; rendering is a
// subscriber's concern.
type Event struct {
	ProductName string
	Quantity    int
}

type Notifier interface {
	Notify(Event)
}

type backend interface {
	GetCart(ctx context.Context, userID int) (api.CartResponse, error)
	GetProduct(ctx context.Context, productID int) (domain.Product, error)
	AddCartItem(ctx context.Context, userID int, req api.AddCartItemRequest) error
	UpdateCartItem(ctx context.Context, req api.UpdateCartItemRequest) error
	RemoveCartItem(ctx context.Context, userID, productID int) error
	ClearCart(ctx context.Context, userID int) error
}

type session interface {
	UserID() int
	IsAuthenticated() bool
	IsAdmin() bool
}

type Service struct {
	mirror   *mirror.Store[domain.CartLine]
	backend  backend
	session  session
	notifier Notifier
	logger   *zap.Logger

	// Grace period before the post-add reload, to let the server settle.
	// The reload is not guaranteed to observe the just-written state.
	reloadGrace time.Duration
}

func New(m *mirror.Store[domain.CartLine], b backend, s session, n Notifier, logger *zap.Logger, reloadGrace time.Duration) *Service {
	return &Service{
		mirror:      m,
		backend:     b,
		session:     s,
		notifier:    n,
		logger:      logger,
		reloadGrace: reloadGrace,
	}
}

// Mirror exposes the underlying store for subscribers.
func (s *Service) Mirror() *mirror.Store[domain.CartLine] { return s.mirror }

// Load fetches the authoritative cart, enriches every line with full product
// data and publishes the result. An empty cart, a failed fetch or any failed
// product lookup publishes the empty mirror.
func (s *Service) Load(ctx context.Context) error {
	resp, err := s.backend.GetCart(ctx, s.session.UserID())
	if err != nil {
		s.logger.Warn("load cart", zap.Error(err))
		return s.mirror.Replace(ctx, nil)
	}
	if len(resp.Items) == 0 {
		return s.mirror.Replace(ctx, nil)
	}

	lines := make([]domain.CartLine, len(resp.Items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range resp.Items {
		g.Go(func() error {
			product, err := s.backend.GetProduct(gctx, item.ProductID)
			if err != nil {
				return err
			}
			lines[i] = domain.CartLine{
				Product:    product,
				Quantity:   item.Quantity,
				CartItemID: strconv.FormatInt(item.ID, 10),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("enrich cart", zap.Error(err))
		return s.mirror.Replace(ctx, nil)
	}

	return s.mirror.Replace(ctx, lines)
}

// Add posts the line to the server; on failure it mutates the local mirror
// instead. Either way the notification fires. Administrative roles may not
// purchase and get ErrRestrictedRole without any state change.
func (s *Service) Add(ctx context.Context, product domain.Product, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}
	if s.session.IsAdmin() {
		s.logger.Warn("admin users cannot add items to cart", zap.Int("productId", product.ID))
		return domain.ErrRestrictedRole
	}

	req := api.AddCartItemRequest{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		Price:       product.Price,
	}
	if err := s.backend.AddCartItem(ctx, s.session.UserID(), req); err != nil {
		s.logger.Warn("add to cart, using local fallback", zap.Error(err))
		if err := s.addLocal(ctx, product, quantity); err != nil {
			return err
		}
		s.notify(product.Name, quantity)
		return nil
	}

	s.scheduleReload()
	s.notify(product.Name, quantity)
	return nil
}

func (s *Service) addLocal(ctx context.Context, product domain.Product, quantity int) error {
	lines := s.mirror.Current()
	for i, line := range lines {
		if line.ID == product.ID && line.Size == product.Size {
			lines[i].Quantity += quantity
			return s.mirror.Replace(ctx, lines)
		}
	}
	lines = append(lines, domain.CartLine{
		Product:    product,
		Quantity:   quantity,
		CartItemID: uuid.NewString(),
	})
	return s.mirror.Replace(ctx, lines)
}

// UpdateItem issues a remote update when authenticated; the caller owns the
// outcome and no reload happens, unlike Add. Unauthenticated updates mutate
// the local mirror directly. Quantity <= 0 defers to Remove.
func (s *Service) UpdateItem(ctx context.Context, productID, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, productID)
	}
	if s.session.IsAuthenticated() {
		return s.backend.UpdateCartItem(ctx, api.UpdateCartItemRequest{
			ProductID: productID,
			Quantity:  quantity,
		})
	}

	lines := s.mirror.Current()
	for i, line := range lines {
		if line.ID == productID {
			lines[i].Quantity = quantity
			return s.mirror.Replace(ctx, lines)
		}
	}
	return nil
}

// Remove deletes the line remotely and reloads. Errors are reported, not
// retried.
func (s *Service) Remove(ctx context.Context, productID int) error {
	if err := s.backend.RemoveCartItem(ctx, s.session.UserID(), productID); err != nil {
		s.logger.Warn("remove from cart", zap.Error(err))
		return err
	}
	return s.Load(ctx)
}

// UpdateQuantity changes a line's quantity as delete+recreate against the
// server, then reloads. Quantity <= 0 defers to Remove.
func (s *Service) UpdateQuantity(ctx context.Context, productID, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, productID)
	}

	var existing *domain.CartLine
	for _, line := range s.mirror.Current() {
		if line.ID == productID {
			l := line
			existing = &l
			break
		}
	}
	if existing == nil {
		return domain.ErrNotFound
	}

	userID := s.session.UserID()
	if err := s.backend.RemoveCartItem(ctx, userID, productID); err != nil {
		s.logger.Warn("update quantity: remove", zap.Error(err))
		return err
	}
	req := api.AddCartItemRequest{
		ProductID:   existing.ID,
		ProductName: existing.Name,
		Quantity:    quantity,
		Price:       existing.Price,
	}
	if err := s.backend.AddCartItem(ctx, userID, req); err != nil {
		s.logger.Warn("update quantity: re-add", zap.Error(err))
		return err
	}
	return s.Load(ctx)
}

// Clear deletes the whole remote cart. On failure the mirror is left
// untouched, deliberately stale.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.backend.ClearCart(ctx, s.session.UserID()); err != nil {
		s.logger.Warn("clear cart", zap.Error(err))
		return err
	}
	return s.mirror.Replace(ctx, nil)
}

// SyncWithServer replays every local line through Add after login, then
// empties the local mirror. Best-effort: individual replay failures land in
// the local fallback and are not rolled back.
func (s *Service) SyncWithServer(ctx context.Context) error {
	if !s.session.IsAuthenticated() {
		return nil
	}
	lines := s.mirror.Current()
	if len(lines) == 0 {
		return nil
	}
	for _, line := range lines {
		if err := s.Add(ctx, line.Product, line.Quantity); err != nil {
			s.logger.Warn("sync line with server", zap.Int("productId", line.ID), zap.Error(err))
		}
	}
	return s.mirror.Replace(ctx, nil)
}

// Total is sum(price*quantity) over the current mirror.
func (s *Service) Total() float64 {
	var total float64
	for _, line := range s.mirror.Current() {
		total += line.Subtotal()
	}
	return total
}

// Count is sum(quantity) over the current mirror.
func (s *Service) Count() int {
	var count int
	for _, line := range s.mirror.Current() {
		count += line.Quantity
	}
	return count
}

func (s *Service) scheduleReload() {
	time.AfterFunc(s.reloadGrace, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Load(ctx); err != nil {
			s.logger.Warn("reload after add", zap.Error(err))
		}
	})
}

func (s *Service) notify(productName string, quantity int) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(Event{ProductName: productName, Quantity: quantity})
}

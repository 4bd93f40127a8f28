package address

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"revcart-storefront/internal/domain"
	"revcart-storefront/internal/mirror"
)

type backend interface {
	ListAddresses(ctx context.Context, userID int) ([]domain.Address, error)
	SaveAddress(ctx context.Context, userID int, addr domain.Address) (domain.Address, error)
}

type session interface {
	UserID() int
}

// Service keeps the user's saved addresses mirrored locally and tracks the
// address selected for checkout. The first saved address becomes the
// selection when none was picked yet.
type Service struct {
	mirror   *mirror.Store[domain.Address]
	backend  backend
	session  session
	logger   *zap.Logger

	mu       sync.Mutex
	selected *domain.Address
}

func New(m *mirror.Store[domain.Address], b backend, s session, logger *zap.Logger) *Service {
	svc := &Service{mirror: m, backend: b, session: s, logger: logger}
	m.Subscribe(func(addrs []domain.Address) {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		if svc.selected == nil && len(addrs) > 0 {
			first := addrs[0]
			svc.selected = &first
		}
	})
	return svc
}

func (s *Service) Mirror() *mirror.Store[domain.Address] { return s.mirror }

// Load refreshes the mirror from the server, keeping the local copy when
// the call fails.
func (s *Service) Load(ctx context.Context) error {
	addrs, err := s.backend.ListAddresses(ctx, s.session.UserID())
	if err != nil {
		s.logger.Warn("load addresses from server, keeping local copy", zap.Error(err))
		return s.mirror.Load(ctx)
	}
	return s.mirror.Replace(ctx, addrs)
}

// Save validates, persists remotely and reloads the saved list.
func (s *Service) Save(ctx context.Context, addr domain.Address) (domain.Address, error) {
	if !addr.Complete() {
		return domain.Address{}, fmt.Errorf("%w: incomplete address", domain.ErrValidation)
	}
	saved, err := s.backend.SaveAddress(ctx, s.session.UserID(), addr)
	if err != nil {
		return domain.Address{}, fmt.Errorf("save address: %w", err)
	}
	if err := s.Load(ctx); err != nil {
		s.logger.Warn("reload addresses after save", zap.Error(err))
	}
	return saved, nil
}

// Select marks an address as the one used for checkout.
func (s *Service) Select(addr domain.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &addr
}

// Selected returns the checkout address, if any.
func (s *Service) Selected() (domain.Address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return domain.Address{}, false
	}
	return *s.selected, true
}

// Default returns the first saved address.
func (s *Service) Default() (domain.Address, bool) {
	addrs := s.mirror.Current()
	if len(addrs) == 0 {
		return domain.Address{}, false
	}
	return addrs[0], true
}

// Package wishlist synchronizes the wishlist id-list with the remote
// resource, server-first with a local fallback. Ids are deduplicated,
// coerced to numbers and filtered to positive integers wherever they enter.
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"revcart-storefront/internal/domain"
	"revcart-storefront/internal/mirror"
	"revcart-storefront/internal/storage"
)

// inflightWindow is how long a productId stays in the de-duplication set.
// Rapid repeated adds inside the window collapse into one effective
// mutation; the redundant calls still report success.
const inflightWindow = 500 * time.Millisecond

type backend interface {
	GetWishlist(ctx context.Context, userID int) ([]int, error)
	AddWishlistItem(ctx context.Context, userID, productID int) error
	RemoveWishlistItem(ctx context.Context, userID, productID int) error
}

type session interface {
	UserID() int
}

// Notifier shows the transient "Added to wishlist!" style message.
type Notifier interface {
	Show(message string)
}

type Service struct {
	mirror   *mirror.Store[int]
	storage  storage.Store
	backend  backend
	session  session
	notifier Notifier
	logger   *zap.Logger

	mu          sync.Mutex
	initialized bool
	inflight    map[int]struct{}
	window      time.Duration
}

func New(m *mirror.Store[int], st storage.Store, b backend, s session, n Notifier, logger *zap.Logger) *Service {
	return &Service{
		mirror:   m,
		storage:  st,
		backend:  b,
		session:  s,
		notifier: n,
		logger:   logger,
		inflight: make(map[int]struct{}),
		window:   inflightWindow,
	}
}

// Mirror exposes the underlying store for subscribers.
func (s *Service) Mirror() *mirror.Store[int] { return s.mirror }

// Load is idempotent: once initialized it is a no-op. It publishes the
// durable entry first (cleaned up), then asks the server; a server failure
// keeps the local ids.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil
	}
	s.initialized = true
	s.mu.Unlock()

	if err := s.loadLocal(ctx); err != nil {
		return err
	}
	s.refreshFromServer(ctx)
	return nil
}

// loadLocal reads durable storage tolerating the legacy entry shapes:
// bare numbers, `{"id": n}` objects and numeric strings. Anything that does
// not coerce to a positive integer is dropped; a corrupt document clears
// the entry and publishes empty.
func (s *Service) loadLocal(ctx context.Context) error {
	data, err := s.storage.Get(ctx, s.mirror.Key())
	if errors.Is(err, domain.ErrNotFound) {
		return s.mirror.Replace(ctx, nil)
	}
	if err != nil {
		return err
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("clearing corrupt wishlist entry", zap.Error(err))
		if delErr := s.storage.Delete(ctx, s.mirror.Key()); delErr != nil {
			s.logger.Warn("clear wishlist entry", zap.Error(delErr))
		}
		return s.mirror.Replace(ctx, nil)
	}

	return s.mirror.Replace(ctx, cleanIDs(raw))
}

func (s *Service) refreshFromServer(ctx context.Context) {
	ids, err := s.backend.GetWishlist(ctx, s.session.UserID())
	if err != nil {
		// Keep the local wishlist if the server fails.
		s.logger.Warn("load wishlist from server", zap.Error(err))
		return
	}
	clean := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		clean = append(clean, id)
	}
	if err := s.mirror.Replace(ctx, clean); err != nil {
		s.logger.Warn("publish wishlist", zap.Error(err))
	}
}

// Add validates the id, collapses rapid repeats and writes remotely with a
// local fallback. Either path shows the notification.
func (s *Service) Add(ctx context.Context, productID int) error {
	if productID <= 0 {
		return fmt.Errorf("%w: product id %d", domain.ErrInvalidID, productID)
	}

	s.mu.Lock()
	if _, pending := s.inflight[productID]; pending {
		s.mu.Unlock()
		// Collapsed into the in-flight mutation; still a success.
		return nil
	}
	s.inflight[productID] = struct{}{}
	s.mu.Unlock()
	time.AfterFunc(s.window, func() {
		s.mu.Lock()
		delete(s.inflight, productID)
		s.mu.Unlock()
	})

	if err := s.backend.AddWishlistItem(ctx, s.session.UserID(), productID); err != nil {
		s.logger.Warn("add to wishlist, using local fallback", zap.Error(err))
		if err := s.addLocal(ctx, productID); err != nil {
			return err
		}
		s.notifyAdded()
		return nil
	}

	s.refreshFromServer(ctx)
	s.notifyAdded()
	return nil
}

func (s *Service) addLocal(ctx context.Context, productID int) error {
	ids := s.mirror.Current()
	for _, id := range ids {
		if id == productID {
			return nil
		}
	}
	return s.mirror.Replace(ctx, append(ids, productID))
}

// Remove deletes remotely when possible, filters locally otherwise; it
// always succeeds from the caller's point of view.
func (s *Service) Remove(ctx context.Context, productID int) error {
	if err := s.backend.RemoveWishlistItem(ctx, s.session.UserID(), productID); err != nil {
		s.logger.Warn("remove from wishlist, using local fallback", zap.Error(err))
		return s.removeLocal(ctx, productID)
	}
	s.refreshFromServer(ctx)
	return nil
}

func (s *Service) removeLocal(ctx context.Context, productID int) error {
	ids := s.mirror.Current()
	filtered := ids[:0]
	for _, id := range ids {
		if id != productID {
			filtered = append(filtered, id)
		}
	}
	return s.mirror.Replace(ctx, filtered)
}

// IsMember reports membership by numeric equality.
func (s *Service) IsMember(productID int) bool {
	for _, id := range s.mirror.Current() {
		if id == productID {
			return true
		}
	}
	return false
}

func (s *Service) Count() int {
	return len(s.mirror.Current())
}

func (s *Service) notifyAdded() {
	if s.notifier != nil {
		s.notifier.Show("Added to wishlist!")
	}
}

// cleanIDs coerces raw JSON values to positive integers, dropping
// duplicates and everything non-numeric.
func cleanIDs(raw []any) []int {
	ids := make([]int, 0, len(raw))
	seen := make(map[int]struct{}, len(raw))
	for _, v := range raw {
		id := coerceID(v)
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func coerceID(v any) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case string:
		id, err := strconv.Atoi(val)
		if err != nil {
			return 0
		}
		return id
	case map[string]any:
		if id, ok := val["id"]; ok {
			return coerceID(id)
		}
	}
	return 0
}

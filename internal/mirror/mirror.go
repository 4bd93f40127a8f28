// Package mirror implements the client-local, observable cache of a
// server-owned collection. Every change is broadcast to subscribers in
// mutation order and persisted to durable storage under a fixed key.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"revcart-storefront/internal/domain"
	"revcart-storefront/internal/storage"
)

// Store holds the current value of a collection of E. Construct one per
// resource at application start and pass it by injection; Reset exists so
// tests can tear state down.
type Store[E any] struct {
	mu      sync.Mutex
	key     string
	storage storage.Store
	logger  *zap.Logger
	items   []E
	subs    map[int]func([]E)
	nextSub int
}

func New[E any](st storage.Store, key string, logger *zap.Logger) *Store[E] {
	return &Store[E]{
		key:     key,
		storage: st,
		logger:  logger,
		subs:    make(map[int]func([]E)),
	}
}

// Key returns the durable storage key the store persists under.
func (s *Store[E]) Key() string { return s.key }

// Current returns the present value synchronously.
func (s *Store[E]) Current() []E {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]E(nil), s.items...)
}

// Subscribe delivers the current value immediately and every subsequent
// value on change, until the returned cancel func is called. Values arrive
// in the order mutations were applied. Observers run synchronously and must
// not call back into the store.
func (s *Store[E]) Subscribe(fn func([]E)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	fn(append([]E(nil), s.items...))
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Replace swaps the held value, notifies subscribers and persists. An empty
// collection removes the durable entry instead of writing one.
func (s *Store[E]) Replace(ctx context.Context, items []E) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(items)
	return s.persistLocked(ctx)
}

// Load reads the durable entry and publishes it. A missing entry publishes
// the empty collection; a corrupt entry is cleared and then publishes empty,
// so startup never fails on bad state.
func (s *Store[E]) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, domain.ErrNotFound) {
		s.setLocked(nil)
		return nil
	}
	if err != nil {
		return err
	}

	var items []E
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("clearing corrupt mirror entry",
			zap.String("key", s.key), zap.Error(err))
		if delErr := s.storage.Delete(ctx, s.key); delErr != nil {
			s.logger.Warn("clear corrupt entry", zap.String("key", s.key), zap.Error(delErr))
		}
		s.setLocked(nil)
		return nil
	}

	s.setLocked(items)
	return nil
}

// Reset drops the held value and the durable entry.
func (s *Store[E]) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(nil)
	return s.storage.Delete(ctx, s.key)
}

func (s *Store[E]) setLocked(items []E) {
	s.items = append([]E(nil), items...)
	for _, fn := range s.subs {
		fn(append([]E(nil), s.items...))
	}
}

func (s *Store[E]) persistLocked(ctx context.Context) error {
	if len(s.items) == 0 {
		return s.storage.Delete(ctx, s.key)
	}
	data, err := json.Marshal(s.items)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, s.key, data)
}

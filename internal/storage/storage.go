// Package storage provides the durable key-value store backing the mirror
// stores. Keys are fixed resource names (token, cart, wishlist, addresses);
// values are JSON documents. Last writer wins.
package storage

import "context"

// Store is a durable key-value store.
type Store interface {
	// Get returns the stored value, or domain.ErrNotFound when the key has
	// no entry.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the entry; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

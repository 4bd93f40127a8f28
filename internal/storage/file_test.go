package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"revcart-storefront/internal/domain"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cart", []byte(`[{"id":1}]`)))

	got, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	require.Equal(t, []byte(`[{"id":1}]`), got)

	require.NoError(t, store.Set(ctx, "cart", []byte(`[]`)))
	got, err = store.Get(ctx, "cart")
	require.NoError(t, err)
	require.Equal(t, []byte(`[]`), got)
}

func TestFileStoreMissingKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "wishlist")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFileStoreDelete(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "token", []byte("abc")))
	require.NoError(t, store.Delete(ctx, "token"))

	_, err = store.Get(ctx, "token")
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting again is not an error.
	require.NoError(t, store.Delete(ctx, "token"))
}

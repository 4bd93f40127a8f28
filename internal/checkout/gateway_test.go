package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revcart-storefront/internal/domain"
)

func TestPendingGatewayConfirm(t *testing.T) {
	g := NewPendingGateway()
	var got PaymentResult
	opts := Options{
		Key:    "key_test",
		Amount: 29300,
		Handler: func(res PaymentResult) {
			got = res
		},
	}
	require.NoError(t, g.Open(context.Background(), opts))

	pending, ok := g.Pending()
	require.True(t, ok)
	assert.Equal(t, int64(29300), pending.Amount)

	require.NoError(t, g.Confirm(PaymentResult{PaymentID: "pay_1"}))
	assert.Equal(t, "pay_1", got.PaymentID)

	// Confirm consumes the payment.
	_, ok = g.Pending()
	assert.False(t, ok)
	require.ErrorIs(t, g.Confirm(PaymentResult{}), domain.ErrNotFound)
}

func TestPendingGatewayDismiss(t *testing.T) {
	g := NewPendingGateway()
	dismissed := false
	require.NoError(t, g.Open(context.Background(), Options{OnDismiss: func() { dismissed = true }}))

	require.NoError(t, g.Dismiss())
	assert.True(t, dismissed)
	require.ErrorIs(t, g.Dismiss(), domain.ErrNotFound)
}

func TestPendingGatewayRejectsOverlap(t *testing.T) {
	g := NewPendingGateway()
	require.NoError(t, g.Open(context.Background(), Options{}))
	require.Error(t, g.Open(context.Background(), Options{}))
}

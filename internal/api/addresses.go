package api

import (
	"context"
	"fmt"
	"net/http"

	"revcart-storefront/internal/domain"
)

func (c *Client) ListAddresses(ctx context.Context, userID int) ([]domain.Address, error) {
	var addresses []domain.Address
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("addresses/%d", userID), nil, &addresses)
	return addresses, err
}

func (c *Client) SaveAddress(ctx context.Context, userID int, addr domain.Address) (domain.Address, error) {
	var saved domain.Address
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("addresses/%d", userID), addr, &saved)
	return saved, err
}

package api

import (
	"context"
	"fmt"
	"net/http"
)

type WishlistResponse struct {
	ProductIDs []int `json:"productIds"`
}

func (c *Client) GetWishlist(ctx context.Context, userID int) ([]int, error) {
	var resp WishlistResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("wishlist/%d", userID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.ProductIDs, nil
}

func (c *Client) AddWishlistItem(ctx context.Context, userID, productID int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("wishlist/%d/add/%d", userID, productID), struct{}{}, nil)
}

func (c *Client) RemoveWishlistItem(ctx context.Context, userID, productID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("wishlist/%d/remove/%d", userID, productID), nil, nil)
}

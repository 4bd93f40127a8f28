package api

import (
	"context"
	"fmt"
	"net/http"
)

// CartItem is the minimal line item held by the cart service. Full product
// attributes come from the products resource during enrichment.
type CartItem struct {
	ID          int64   `json:"id"`
	ProductID   int     `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type CartResponse struct {
	Items []CartItem `json:"items"`
}

// AddCartItemRequest is the minimal payload posted on add.
type AddCartItemRequest struct {
	ProductID   int     `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type UpdateCartItemRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

func (c *Client) GetCart(ctx context.Context, userID int) (CartResponse, error) {
	var resp CartResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("cart/%d", userID), nil, &resp)
	return resp, err
}

func (c *Client) AddCartItem(ctx context.Context, userID int, req AddCartItemRequest) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("cart/%d/add", userID), req, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, req UpdateCartItemRequest) error {
	return c.do(ctx, http.MethodPut, "cart/update", req, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, userID, productID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("cart/%d/remove/%d", userID, productID), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context, userID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("cart/%d/clear", userID), nil, nil)
}

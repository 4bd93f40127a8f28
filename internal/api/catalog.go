package api

import (
	"context"
	"fmt"
	"net/http"

	"revcart-storefront/internal/domain"
)

func (c *Client) GetProduct(ctx context.Context, productID int) (domain.Product, error) {
	var product domain.Product
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("products/%d", productID), nil, &product)
	return product, err
}

package domain

// Product is the catalog record merged into cart lines during enrichment.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Size        string  `json:"size,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Category    string  `json:"category,omitempty"`
}

// CartLine is one entry of the cart mirror. Server-confirmed lines carry the
// server's cart item id; lines written through the local fallback carry a
// locally generated one.
type CartLine struct {
	Product
	Quantity   int    `json:"quantity"`
	CartItemID string `json:"cartItemId,omitempty"`
}

// Subtotal is the line contribution to the cart total.
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

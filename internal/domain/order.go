package domain

// Order is the server echo held between creation and payment completion.
// It is not persisted client-side beyond that window.
type Order struct {
	ID          int64   `json:"id"`
	OrderNumber string  `json:"orderNumber"`
	Address     string  `json:"address,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Total       float64 `json:"total,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// User is the authenticated identity attached to the session. The zero
// value means anonymous.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

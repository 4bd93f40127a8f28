package domain

import "strings"

// Address is a delivery address. ID and Line2 are optional; everything else
// must be present before the address can be used for an order or saved.
type Address struct {
	ID       int    `json:"id,omitempty"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}

// Complete reports whether all required fields are filled in.
func (a Address) Complete() bool {
	for _, f := range []string{a.FullName, a.Phone, a.Line1, a.City, a.State, a.Pincode} {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// Concatenated renders the single-line form sent with order creation.
func (a Address) Concatenated() string {
	return a.Line1 + ", " + a.Line2 + ", " + a.City + ", " + a.State + " " + a.Pincode
}

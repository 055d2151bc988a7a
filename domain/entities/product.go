package entities

import "time"

// Product is a catalogue entry. A nil Stock means inventory is not tracked.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Stock       *int      `json:"stock,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// OwnedBy reports whether userID created the product.
func (p *Product) OwnedBy(userID string) bool {
	return p.CreatedBy == userID
}

// TracksStock reports whether orders must reserve inventory for this product.
func (p *Product) TracksStock() bool {
	return p.Stock != nil
}

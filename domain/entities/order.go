package entities

import "time"

// OrderLine freezes a product's name and price at the time the order was placed.
type OrderLine struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
}

// ShippingAddress is where an order is delivered.
type ShippingAddress struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
	Country string `json:"country" validate:"required"`
}

// Order is immutable once written.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Products        []OrderLine     `json:"products"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	TotalAmount     float64         `json:"totalAmount"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// NewOrderLine prices a line at the given unit price.
func NewOrderLine(product *Product, quantity int) OrderLine {
	return OrderLine{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.Price,
		TotalPrice:  product.Price * float64(quantity),
	}
}

// Total sums the line totals.
func Total(lines []OrderLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.TotalPrice
	}
	return total
}

// OwnedBy reports whether userID placed the order.
func (o *Order) OwnedBy(userID string) bool {
	return o.UserID == userID
}

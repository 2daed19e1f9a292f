package model

import "math"

// Booking is the reservation attached to a Reserved or Serving table.
type Booking struct {
	CustomerName    string `json:"customerName"`
	PhoneNumber     string `json:"phoneNumber"`
	ReservationTime string `json:"reservationTime"`
	NumberOfGuests  int    `json:"numberOfGuests"`
	SpecialNotes    string `json:"specialNotes,omitempty"`
}

// OrderItem is a snapshot of a menu item taken when it was added to a table.
type OrderItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Quantity int      `json:"quantity"`
	Category string   `json:"category"`
	Notes    string   `json:"notes,omitempty"`
	Images   []string `json:"images,omitempty"`
}

// LineTotal is price times quantity.
func (o OrderItem) LineTotal() float64 {
	return o.Price * float64(o.Quantity)
}

// Table is a physical table on the floor plan.
type Table struct {
	ID         string      `json:"id"`
	Code       string      `json:"code"`
	Zone       string      `json:"zone"`
	Seats      int         `json:"seats"`
	Status     Status      `json:"status"`
	Booking    *Booking    `json:"booking,omitempty"`
	OrderItems []OrderItem `json:"orderItems,omitempty"`
	FloorID    string      `json:"floorId,omitempty"`
	CategoryID string      `json:"categoryId,omitempty"`
	IsActive   *bool       `json:"isActive,omitempty"`
	Audit
}

// Active treats an absent flag as active.
func (t Table) Active() bool {
	return t.IsActive == nil || *t.IsActive
}

// OrderTotal sums the order items of the table.
func (t Table) OrderTotal() float64 {
	return Subtotal(t.OrderItems)
}

// Subtotal sums price times quantity over items.
func Subtotal(items []OrderItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.LineTotal()
	}
	return sum
}

// RoundCurrency rounds to the nearest whole currency unit.
func RoundCurrency(v float64) float64 {
	return math.Round(v)
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

package model

import "time"

// PaymentMethod is how a bill was settled.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentQR   PaymentMethod = "qr"
)

// Valid reports whether m is a supported method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentQR:
		return true
	}
	return false
}

// PaymentStatusCompleted is the only status recorded by checkout.
const PaymentStatusCompleted = "completed"

// Customer is a guest identified by phone number.
type Customer struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email,omitempty"`
	CustomerCode string    `json:"customerCode"`
	TotalSpent   float64   `json:"totalSpent"`
	VisitCount   int       `json:"visitCount"`
	FirstVisit   time.Time `json:"firstVisit"`
	LastVisit    time.Time `json:"lastVisit"`
	Audit
}

// CustomerOrderItem is an order line with its computed total.
type CustomerOrderItem struct {
	ID         string   `json:"id"`
	OrderID    string   `json:"orderId"`
	MenuItemID string   `json:"menuItemId"`
	Name       string   `json:"name"`
	Quantity   int      `json:"quantity"`
	Price      float64  `json:"price"`
	TotalPrice float64  `json:"totalPrice"`
	Category   string   `json:"category"`
	Images     []string `json:"images,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// CustomerOrder is a settled bill attributed to a customer.
type CustomerOrder struct {
	ID            string              `json:"id"`
	CustomerID    string              `json:"customerId"`
	TableID       string              `json:"tableId"`
	TableCode     string              `json:"tableCode"`
	OrderDate     time.Time           `json:"orderDate"`
	TotalAmount   float64             `json:"totalAmount"`
	PaymentMethod PaymentMethod       `json:"paymentMethod"`
	PaymentStatus string              `json:"paymentStatus"`
	OrderItems    []CustomerOrderItem `json:"orderItems"`
	Notes         string              `json:"notes,omitempty"`
	Audit
}

package model

import "time"

// PaymentRecord is an entry in the payment history that feeds reporting.
type PaymentRecord struct {
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"tax"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	PaymentStatus string        `json:"paymentStatus"`
	Timestamp     time.Time     `json:"timestamp"`
	TableCode     string        `json:"tableCode"`
	OrderItems    []OrderItem   `json:"orderItems"`
	BookingInfo   *Booking      `json:"bookingInfo,omitempty"`
	StartTime     *time.Time    `json:"startTime,omitempty"`
	EndTime       *time.Time    `json:"endTime,omitempty"`
}

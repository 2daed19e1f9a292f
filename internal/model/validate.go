package model

import (
	"regexp"
	"strings"
)

var phoneRe = regexp.MustCompile(`^[0-9]{10}$`)

// ValidateBooking checks the fields required to reserve a table.
func ValidateBooking(b *Booking) error {
	if b == nil {
		return Invalid("booking", "booking is required")
	}
	errs := &ValidationError{}
	if strings.TrimSpace(b.CustomerName) == "" {
		errs.Add("customerName", "customer name is required")
	}
	if strings.TrimSpace(b.PhoneNumber) == "" {
		errs.Add("phoneNumber", "phone number is required")
	} else if !phoneRe.MatchString(b.PhoneNumber) {
		errs.Add("phoneNumber", "phone number must be 10 digits")
	}
	if strings.TrimSpace(b.ReservationTime) == "" {
		errs.Add("reservationTime", "reservation time is required")
	}
	if b.NumberOfGuests < 1 {
		errs.Add("numberOfGuests", "number of guests must be at least 1")
	}
	return errs.OrNil()
}

// ValidateOrderItems rejects negative quantities or prices and returns the
// items with zero-quantity lines removed.
func ValidateOrderItems(items []OrderItem) ([]OrderItem, error) {
	kept := make([]OrderItem, 0, len(items))
	errs := &ValidationError{}
	for _, item := range items {
		switch {
		case item.Quantity < 0:
			errs.Add("quantity", "quantity must not be negative")
		case item.Price < 0:
			errs.Add("price", "price must not be negative")
		case strings.TrimSpace(item.Name) == "":
			errs.Add("name", "item name is required")
		case item.Quantity > 0:
			kept = append(kept, item)
		}
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	return kept, nil
}

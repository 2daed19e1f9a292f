package model

// Status is the lifecycle state of a table. Values are persisted as the
// labels used by the restaurant floor staff.
type Status string

const (
	StatusEmptyClean  Status = "Trống sạch"
	StatusReserved    Status = "Đã Đặt"
	StatusServing     Status = "Đang phục vụ"
	StatusDirty       Status = "Bàn dơ"
	StatusMaintenance Status = "Bảo trì"
	StatusSuspended   Status = "Tạm ngưng"
)

// AllStatuses lists every status in display order.
var AllStatuses = []Status{
	StatusEmptyClean,
	StatusReserved,
	StatusServing,
	StatusDirty,
	StatusMaintenance,
	StatusSuspended,
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// AllowsBooking reports whether a table in this status may carry a booking.
func (s Status) AllowsBooking() bool {
	return s == StatusReserved || s == StatusServing
}

// AllowsOrders reports whether a table in this status may carry order items.
func (s Status) AllowsOrders() bool {
	return s == StatusServing
}

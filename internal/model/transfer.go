package model

import "time"

// TableTransfer records a move of an active party from one table to another.
type TableTransfer struct {
	ID                string      `json:"id"`
	SourceTableID     string      `json:"sourceTableId"`
	SourceTableCode   string      `json:"sourceTableCode"`
	TargetTableID     string      `json:"targetTableId"`
	TargetTableCode   string      `json:"targetTableCode"`
	Reason            string      `json:"reason"`
	TransferredBy     string      `json:"transferredBy"`
	TransferredAt     time.Time   `json:"transferredAt"`
	SourceTableStatus Status      `json:"sourceTableStatus"`
	TargetTableStatus Status      `json:"targetTableStatus"`
	SourceFloorID     string      `json:"sourceFloorId,omitempty"`
	SourceFloorName   string      `json:"sourceFloorName,omitempty"`
	TargetFloorID     string      `json:"targetFloorId,omitempty"`
	TargetFloorName   string      `json:"targetFloorName,omitempty"`
	CustomerName      string      `json:"customerName,omitempty"`
	NumberOfGuests    int         `json:"numberOfGuests,omitempty"`
	Booking           *Booking    `json:"booking,omitempty"`
	OrderItems        []OrderItem `json:"orderItems,omitempty"`
}

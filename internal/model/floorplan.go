package model

import "time"

// Floor groups tables and bounds how many may be placed on it.
type Floor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MaxTables   int    `json:"maxTables"`
	IsActive    bool   `json:"isActive"`
	Audit
}

// TableCategory is a classification such as normal or VIP.
type TableCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
	IsActive    bool   `json:"isActive"`
	Audit
}

// TableConfig places a table on a floor with a category.
type TableConfig struct {
	ID         string `json:"id"`
	TableID    string `json:"tableId"`
	FloorID    string `json:"floorId"`
	CategoryID string `json:"categoryId"`
	IsActive   bool   `json:"isActive"`
	Audit
}

// HistoryAction names the kind of change recorded in the audit trail.
type HistoryAction string

const (
	ActionCreate       HistoryAction = "create"
	ActionUpdate       HistoryAction = "update"
	ActionDelete       HistoryAction = "delete"
	ActionStatusChange HistoryAction = "status_change"
	ActionBooking      HistoryAction = "booking"
	ActionPayment      HistoryAction = "payment"
)

// History subjects.
const (
	EntityTableConfig = "table-config"
	EntityFloor       = "floor"
	EntityCategory    = "category"
)

// TableHistory is an append-only audit entry. TableID holds the id of the
// subject, which is a table for table configs and the floor or category
// itself otherwise.
type TableHistory struct {
	TableID   string        `json:"tableId"`
	Entity    string        `json:"entity,omitempty"`
	Action    HistoryAction `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
	Details   string        `json:"details"`
	UpdatedBy string        `json:"updatedBy"`
}

package model

import "time"

// Audit carries the bookkeeping fields shared by configuration entities.
type Audit struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
}

// Stamp initializes both timestamps for a newly created entity.
func (a *Audit) Stamp(now time.Time, actor string) {
	a.CreatedAt = now
	a.UpdatedAt = now
	a.UpdatedBy = actor
}

// Touch records a modification.
func (a *Audit) Touch(now time.Time, actor string) {
	a.UpdatedAt = now
	a.UpdatedBy = actor
}

package tables

import (
	"restaurant-pos-backend/internal/model"
)

// Transition is a single allowed edge in the table lifecycle. Guard, when
// set, must pass for the edge to be taken.
type Transition struct {
	From  model.Status
	To    model.Status
	Guard func(t model.Table) error
}

var transitionsTable = []Transition{
	{From: model.StatusEmptyClean, To: model.StatusReserved},
	{From: model.StatusEmptyClean, To: model.StatusMaintenance},
	{From: model.StatusEmptyClean, To: model.StatusSuspended},

	{From: model.StatusReserved, To: model.StatusServing},
	{From: model.StatusReserved, To: model.StatusEmptyClean},
	{From: model.StatusReserved, To: model.StatusMaintenance},
	{From: model.StatusReserved, To: model.StatusSuspended},

	{From: model.StatusServing, To: model.StatusDirty, Guard: noUnpaidItems},
	{From: model.StatusServing, To: model.StatusMaintenance},
	{From: model.StatusServing, To: model.StatusSuspended},

	{From: model.StatusDirty, To: model.StatusEmptyClean},
	{From: model.StatusDirty, To: model.StatusMaintenance},
	{From: model.StatusDirty, To: model.StatusSuspended},

	{From: model.StatusMaintenance, To: model.StatusEmptyClean},
	{From: model.StatusMaintenance, To: model.StatusSuspended},

	{From: model.StatusSuspended, To: model.StatusEmptyClean},
	{From: model.StatusSuspended, To: model.StatusMaintenance},
}

func noUnpaidItems(t model.Table) error {
	if total := t.OrderTotal(); total > 0 {
		return model.Violation(model.CodeUnpaidItems,
			"table %s has unpaid items totalling %.0f; settle the bill first", t.Code, total)
	}
	return nil
}

// TransitionFor returns the edge from -> to, if one exists.
func TransitionFor(from, to model.Status) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.To == to {
			return tr, true
		}
	}
	return Transition{}, false
}

// CheckTransition reports why t cannot move to status to, or nil.
func CheckTransition(t model.Table, to model.Status) error {
	tr, ok := TransitionFor(t.Status, to)
	if !ok {
		return model.Violation(model.CodeInvalidTransition,
			"table %s cannot go from %s to %s", t.Code, t.Status, to)
	}
	if tr.Guard != nil {
		return tr.Guard(t)
	}
	return nil
}

// AvailableTransitions lists the statuses t may move to right now.
func AvailableTransitions(t model.Table) []model.Status {
	out := make([]model.Status, 0, 4)
	for _, tr := range transitionsTable {
		if tr.From != t.Status {
			continue
		}
		if tr.Guard != nil && tr.Guard(t) != nil {
			continue
		}
		out = append(out, tr.To)
	}
	return out
}

// applyStatus moves t to status to and drops whatever the new status may
// not carry. It does not consult the transition table.
func applyStatus(t model.Table, to model.Status, booking *model.Booking) model.Table {
	t.Status = to
	if booking != nil && to.AllowsBooking() {
		b := *booking
		t.Booking = &b
	}
	if !to.AllowsBooking() {
		t.Booking = nil
	}
	switch {
	case to == model.StatusServing && t.OrderItems == nil:
		t.OrderItems = []model.OrderItem{}
	case !to.AllowsOrders():
		t.OrderItems = nil
	}
	return t
}

package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"restaurant-pos-backend/internal/model"
)

func TestCheckTransition(t *testing.T) {
	withItems := []model.OrderItem{{ID: "1", Name: "Phở bò", Price: 50000, Quantity: 1}}

	testCases := []struct {
		name  string
		table model.Table
		to    model.Status
		code  string
	}{
		{name: "book empty table", table: model.Table{Status: model.StatusEmptyClean}, to: model.StatusReserved},
		{name: "seat reserved party", table: model.Table{Status: model.StatusReserved}, to: model.StatusServing},
		{name: "cancel reservation", table: model.Table{Status: model.StatusReserved}, to: model.StatusEmptyClean},
		{name: "clear paid table", table: model.Table{Status: model.StatusServing}, to: model.StatusDirty},
		{name: "clean dirty table", table: model.Table{Status: model.StatusDirty}, to: model.StatusEmptyClean},
		{name: "repair done", table: model.Table{Status: model.StatusMaintenance}, to: model.StatusEmptyClean},
		{name: "resume suspended", table: model.Table{Status: model.StatusSuspended}, to: model.StatusEmptyClean},
		{name: "serving table to maintenance", table: model.Table{Status: model.StatusServing, OrderItems: withItems}, to: model.StatusMaintenance},
		{name: "unpaid items block dirty", table: model.Table{Status: model.StatusServing, OrderItems: withItems}, to: model.StatusDirty, code: model.CodeUnpaidItems},
		{name: "no skipping to serving", table: model.Table{Status: model.StatusEmptyClean}, to: model.StatusServing, code: model.CodeInvalidTransition},
		{name: "dirty cannot be booked", table: model.Table{Status: model.StatusDirty}, to: model.StatusReserved, code: model.CodeInvalidTransition},
		{name: "serving cannot go back to empty", table: model.Table{Status: model.StatusServing}, to: model.StatusEmptyClean, code: model.CodeInvalidTransition},
		{name: "self transition", table: model.Table{Status: model.StatusDirty}, to: model.StatusDirty, code: model.CodeInvalidTransition},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckTransition(tc.table, tc.to)
			if tc.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, model.IsRule(err, tc.code), "got %v", err)
		})
	}
}

func TestAvailableTransitions(t *testing.T) {
	serving := model.Table{Status: model.StatusServing}
	assert.ElementsMatch(t,
		[]model.Status{model.StatusDirty, model.StatusMaintenance, model.StatusSuspended},
		AvailableTransitions(serving))

	serving.OrderItems = []model.OrderItem{{Name: "Bia", Price: 20000, Quantity: 1}}
	assert.NotContains(t, AvailableTransitions(serving), model.StatusDirty)

	for _, s := range model.AllStatuses {
		assert.NotEmpty(t, AvailableTransitions(model.Table{Status: s}), "status %s is a dead end", s)
	}
}

func TestApplyStatus(t *testing.T) {
	b := model.Booking{CustomerName: "A", PhoneNumber: "0123456789", ReservationTime: "19:00", NumberOfGuests: 2}
	reserved := applyStatus(model.Table{Status: model.StatusEmptyClean}, model.StatusReserved, &b)
	assert.Equal(t, &b, reserved.Booking)
	b.CustomerName = "changed"
	assert.Equal(t, "A", reserved.Booking.CustomerName, "booking is copied")

	serving := applyStatus(reserved, model.StatusServing, nil)
	assert.NotNil(t, serving.Booking)
	assert.NotNil(t, serving.OrderItems)

	serving.OrderItems = []model.OrderItem{{Name: "Bia", Price: 20000, Quantity: 1}}
	dirty := applyStatus(serving, model.StatusDirty, nil)
	assert.Nil(t, dirty.Booking)
	assert.Nil(t, dirty.OrderItems)
}

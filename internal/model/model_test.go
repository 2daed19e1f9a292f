package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBooking(t *testing.T) {
	valid := Booking{CustomerName: "An", PhoneNumber: "0901234567", ReservationTime: "2024-03-20T18:30", NumberOfGuests: 2}

	testCases := []struct {
		name        string
		mutate      func(b *Booking)
		expectField string
	}{
		{name: "valid booking", mutate: func(b *Booking) {}},
		{name: "missing name", mutate: func(b *Booking) { b.CustomerName = " " }, expectField: "customerName"},
		{name: "short phone", mutate: func(b *Booking) { b.PhoneNumber = "12345" }, expectField: "phoneNumber"},
		{name: "letters in phone", mutate: func(b *Booking) { b.PhoneNumber = "09012345ab" }, expectField: "phoneNumber"},
		{name: "missing time", mutate: func(b *Booking) { b.ReservationTime = "" }, expectField: "reservationTime"},
		{name: "zero guests", mutate: func(b *Booking) { b.NumberOfGuests = 0 }, expectField: "numberOfGuests"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := valid
			tc.mutate(&b)
			err := ValidateBooking(&b)
			if tc.expectField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Fields, tc.expectField)
		})
	}

	assert.ErrorIs(t, ValidateBooking(nil), ErrValidation)
}

func TestValidateOrderItems(t *testing.T) {
	items := []OrderItem{
		{ID: "mc1", Name: "Bò lúc lắc", Price: 185000, Quantity: 2},
		{ID: "du3", Name: "Trà đào", Price: 25000, Quantity: 0},
	}
	kept, err := ValidateOrderItems(items)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "mc1", kept[0].ID)

	_, err = ValidateOrderItems([]OrderItem{{ID: "x", Name: "x", Price: 1, Quantity: -1}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, StatusServing.Valid())
	assert.False(t, Status("Closed").Valid())
	assert.True(t, StatusReserved.AllowsBooking())
	assert.False(t, StatusDirty.AllowsBooking())
	assert.True(t, StatusServing.AllowsOrders())
	assert.False(t, StatusReserved.AllowsOrders())
}

func TestRuleError(t *testing.T) {
	err := Violation(CodeUnpaidItems, "table %s has unpaid items", "T1-02")
	assert.ErrorIs(t, err, ErrRuleViolation)
	assert.True(t, IsRule(err, CodeUnpaidItems))
	assert.False(t, IsRule(err, CodeFloorCapacity))
	assert.Equal(t, "table T1-02 has unpaid items", err.Error())
}

func TestTable_JSONShape(t *testing.T) {
	ts := time.Date(2024, 3, 20, 18, 30, 0, 0, time.UTC)
	table := Table{
		ID:     "102",
		Code:   "T1-02",
		Zone:   "Tầng 1",
		Seats:  6,
		Status: StatusServing,
		Booking: &Booking{
			CustomerName: "Nguyễn Văn A", PhoneNumber: "0123456789",
			ReservationTime: "2024-03-20T18:30", NumberOfGuests: 4,
		},
		OrderItems: []OrderItem{{ID: "1", Name: "Phở bò", Quantity: 2, Price: 50000, Category: "Món chính"}},
		FloorID:    "floor-1",
		IsActive:   Bool(true),
		Audit:      Audit{CreatedAt: ts, UpdatedAt: ts, UpdatedBy: "system"},
	}

	raw, err := json.Marshal(table)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "Đang phục vụ", fields["status"])
	assert.Contains(t, fields, "orderItems")
	assert.Contains(t, fields, "floorId")
	assert.Contains(t, fields, "createdAt")
	assert.NotContains(t, fields, "categoryId")

	var decoded Table
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, table, decoded)
	assert.Equal(t, float64(100000), decoded.OrderTotal())
}

func TestTable_ActiveDefaultsTrue(t *testing.T) {
	var table Table
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","code":"T1-01","status":"Trống sạch"}`), &table))
	assert.True(t, table.Active())
	table.IsActive = Bool(false)
	assert.False(t, table.Active())
}

package transfer

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos-backend/internal/events"
	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/store"
)

func TestValidate(t *testing.T) {
	serving := model.Table{ID: "102", Code: "T1-02", Seats: 6, Status: model.StatusServing}
	empty8 := model.Table{ID: "103", Code: "T1-03", Seats: 8, Status: model.StatusEmptyClean}

	testCases := []struct {
		name   string
		source model.Table
		target model.Table
		reason string
		code   string
		field  string
	}{
		{name: "valid move", source: serving, target: empty8, reason: "Khách muốn ngồi gần cửa sổ"},
		{name: "source not seated", source: model.Table{ID: "1", Code: "T1-01", Seats: 4, Status: model.StatusDirty}, target: empty8, reason: "x", code: model.CodeTransferSourceStatus},
		{name: "target occupied", source: serving, target: model.Table{ID: "2", Code: "T2-02", Seats: 8, Status: model.StatusReserved}, reason: "x", code: model.CodeTransferTargetStatus},
		{name: "target retired", source: serving, target: model.Table{ID: "4", Code: "T2-04", Seats: 8, Status: model.StatusEmptyClean, IsActive: model.Bool(false)}, reason: "x", code: model.CodeTransferInactive},
		{name: "target too small", source: serving, target: model.Table{ID: "3", Code: "T2-01", Seats: 4, Status: model.StatusEmptyClean}, reason: "x", code: model.CodeTransferSeats},
		{name: "source status checked before seats", source: model.Table{ID: "1", Seats: 10, Status: model.StatusMaintenance}, target: model.Table{ID: "2", Seats: 2, Status: model.StatusServing}, reason: "x", code: model.CodeTransferSourceStatus},
		{name: "missing reason", source: serving, target: empty8, reason: "  ", field: "reason"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.source, tc.target, tc.reason)
			switch {
			case tc.code != "":
				assert.True(t, model.IsRule(err, tc.code), "got %v", err)
			case tc.field != "":
				var ve *model.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Contains(t, ve.Fields, tc.field)
			default:
				assert.NoError(t, err)
			}
		})
	}

	// Same table: reserved source is its own non-empty target, so the target
	// check fires before the identity check.
	err := Validate(serving, serving, "x")
	assert.True(t, model.IsRule(err, model.CodeTransferTargetStatus))
}

func TestEligibleTargets(t *testing.T) {
	source := model.Table{ID: "1", Code: "T1-01", Seats: 4, Status: model.StatusServing}
	tables := []model.Table{
		source,
		{ID: "2", Code: "T1-02", Seats: 8, Status: model.StatusEmptyClean},
		{ID: "3", Code: "T1-03", Seats: 4, Status: model.StatusEmptyClean},
		{ID: "4", Code: "T1-04", Seats: 2, Status: model.StatusEmptyClean},
		{ID: "5", Code: "T1-05", Seats: 6, Status: model.StatusDirty},
		{ID: "6", Code: "T1-06", Seats: 6, Status: model.StatusEmptyClean, IsActive: model.Bool(false)},
	}

	got := EligibleTargets(source, tables)
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
}

func newTestLog(t *testing.T, now *time.Time) *Log {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewLog(store.NewMemoryStore(), events.NewBus(), log, WithClock(func() time.Time { return *now }))
}

func TestLog_RecordAndQuery(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	l := newTestLog(t, &now)

	day1 := time.Date(2024, 3, 18, 19, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 19, 19, 0, 0, 0, time.UTC)
	_, err := l.Record(ctx, model.TableTransfer{
		SourceTableID: "102", SourceTableCode: "T1-02", SourceFloorID: "floor-1",
		TargetTableID: "201", TargetTableCode: "T2-01", TargetFloorID: "floor-2",
		Reason: "Ồn ào", TransferredAt: day1,
	})
	require.NoError(t, err)
	second, err := l.Record(ctx, model.TableTransfer{
		SourceTableID: "301", SourceTableCode: "T3-01", SourceFloorID: "floor-3",
		TargetTableID: "304", TargetTableCode: "T3-04", TargetFloorID: "floor-3",
		Reason: "Máy lạnh hỏng", TransferredAt: day2,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, second.ID)

	third, err := l.Record(ctx, model.TableTransfer{SourceTableID: "101", TargetTableID: "102", Reason: "Thêm khách"})
	require.NoError(t, err)
	assert.Equal(t, now, third.TransferredAt)

	all, err := l.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID, "newest first")

	window, err := l.List(ctx, Filter{From: day1, To: day2})
	require.NoError(t, err)
	require.Len(t, window, 1, "end of window is exclusive")
	assert.Equal(t, "T1-02", window[0].SourceTableCode)

	floor3, err := l.List(ctx, Filter{FloorID: "floor-3"})
	require.NoError(t, err)
	assert.Len(t, floor3, 1)

	table102, err := l.List(ctx, Filter{TableID: "102"})
	require.NoError(t, err)
	assert.Len(t, table102, 2)

	got, err := l.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Máy lạnh hỏng", got.Reason)

	_, err = l.Record(ctx, model.TableTransfer{SourceTableID: "1", TargetTableID: "2"})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestLog_DeleteAndPrune(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 30, 12, 0, 0, 0, time.UTC)
	l := newTestLog(t, &now)

	old, err := l.Record(ctx, model.TableTransfer{SourceTableID: "1", TargetTableID: "2", Reason: "a", TransferredAt: now.AddDate(0, 0, -40)})
	require.NoError(t, err)
	_, err = l.Record(ctx, model.TableTransfer{SourceTableID: "1", TargetTableID: "3", Reason: "b", TransferredAt: now.AddDate(0, 0, -31)})
	require.NoError(t, err)
	recent, err := l.Record(ctx, model.TableTransfer{SourceTableID: "2", TargetTableID: "4", Reason: "c", TransferredAt: now.AddDate(0, 0, -2)})
	require.NoError(t, err)

	require.NoError(t, l.Delete(ctx, old.ID, "manager"))
	assert.ErrorIs(t, l.Delete(ctx, old.ID, "manager"), model.ErrNotFound)

	removed, err := l.Prune(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	remaining, err := l.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, recent.ID, remaining[0].ID)

	_, err = l.Prune(ctx, 0)
	assert.ErrorIs(t, err, model.ErrValidation)
}

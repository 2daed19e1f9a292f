package floorplan

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

func newTestRegistry(t *testing.T) (*Registry, store.Store) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	s := store.NewMemoryStore()
	tick := time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	r := NewRegistry(s, events.NewBus(), log, WithClock(clock))
	require.NoError(t, r.EnsureDefaults(context.Background(), "system"))
	return r, s
}

func TestEnsureDefaults(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	floors, err := r.ListFloors(ctx)
	require.NoError(t, err)
	require.Len(t, floors, 3)
	assert.Equal(t, "floor-3", floors[2].ID)
	assert.Equal(t, 10, floors[2].MaxTables)

	categories, err := r.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "#F59E0B", categories[1].Color)

	// A second call must not reseed.
	_, err = r.CreateFloor(ctx, FloorInput{Name: "Sân thượng", MaxTables: 4}, "manager")
	require.NoError(t, err)
	require.NoError(t, r.EnsureDefaults(ctx, "system"))
	floors, err = r.ListFloors(ctx)
	require.NoError(t, err)
	assert.Len(t, floors, 4)
}

func TestCreateTableConfig_RejectsBeyondCapacity(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	const k = 3
	var floors []model.Floor
	for i := 0; i < 2; i++ {
		f, err := r.CreateFloor(ctx, FloorInput{Name: "Floor", MaxTables: k}, "manager")
		require.NoError(t, err)
		floors = append(floors, f)
	}
	target := floors[0]

	for i := 0; i < k; i++ {
		_, err := r.CreateTableConfig(ctx, TableConfigInput{TableID: string(rune('a' + i)), FloorID: target.ID}, "manager")
		require.NoError(t, err)
	}

	_, err := r.CreateTableConfig(ctx, TableConfigInput{TableID: "overflow", FloorID: target.ID}, "manager")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrRuleViolation)
	assert.True(t, model.IsRule(err, model.CodeFloorCapacity))

	n, err := r.ActiveTableCount(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, k, n)

	// The other floor is unaffected.
	_, err = r.CreateTableConfig(ctx, TableConfigInput{TableID: "overflow", FloorID: floors[1].ID}, "manager")
	assert.NoError(t, err)
}

func TestCreateTableConfig_SingleSeatFloorScenario(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	f, err := r.CreateFloor(ctx, FloorInput{Name: "F", MaxTables: 1}, "manager")
	require.NoError(t, err)
	_, err = r.CreateTableConfig(ctx, TableConfigInput{TableID: "A", FloorID: f.ID}, "manager")
	require.NoError(t, err)

	_, err = r.CreateTableConfig(ctx, TableConfigInput{TableID: "B", FloorID: f.ID}, "manager")
	assert.True(t, model.IsRule(err, model.CodeFloorCapacity))

	configs, err := r.ListTableConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "A", configs[0].TableID)
}

func TestCreateTableConfig_Validation(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	testCases := []struct {
		name  string
		in    TableConfigInput
		field string
		code  string
	}{
		{name: "missing table", in: TableConfigInput{FloorID: "floor-1"}, field: "tableId"},
		{name: "unknown floor", in: TableConfigInput{TableID: "t1", FloorID: "floor-9"}, field: "floorId"},
		{name: "unknown category", in: TableConfigInput{TableID: "t1", FloorID: "floor-1", CategoryID: "cat-x"}, field: "categoryId"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.CreateTableConfig(ctx, tc.in, "manager")
			var ve *model.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tc.field)
		})
	}

	_, err := r.CreateTableConfig(ctx, TableConfigInput{TableID: "t1", FloorID: "floor-1"}, "manager")
	require.NoError(t, err)
	_, err = r.CreateTableConfig(ctx, TableConfigInput{TableID: "t1", FloorID: "floor-2"}, "manager")
	assert.True(t, model.IsRule(err, model.CodeTableExists))
}

func TestUpdateTableConfig_ChecksCapacityOnFloorChange(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	small, err := r.CreateFloor(ctx, FloorInput{Name: "Small", MaxTables: 1}, "manager")
	require.NoError(t, err)
	_, err = r.CreateTableConfig(ctx, TableConfigInput{TableID: "A", FloorID: small.ID}, "manager")
	require.NoError(t, err)
	cfgB, err := r.CreateTableConfig(ctx, TableConfigInput{TableID: "B", FloorID: "floor-1"}, "manager")
	require.NoError(t, err)

	_, err = r.UpdateTableConfig(ctx, cfgB.ID, TableConfigPatch{FloorID: &small.ID}, "manager")
	assert.True(t, model.IsRule(err, model.CodeFloorCapacity))

	// Staying on the same floor never trips the capacity check.
	vip := "cat-vip"
	updated, err := r.UpdateTableConfig(ctx, cfgB.ID, TableConfigPatch{CategoryID: &vip}, "manager")
	require.NoError(t, err)
	assert.Equal(t, "cat-vip", updated.CategoryID)
	assert.Equal(t, "floor-1", updated.FloorID)

	floor2 := "floor-2"
	moved, err := r.UpdateTableConfig(ctx, cfgB.ID, TableConfigPatch{FloorID: &floor2}, "manager")
	require.NoError(t, err)
	assert.Equal(t, "floor-2", moved.FloorID)

	_, err = r.UpdateTableConfig(ctx, "config-missing", TableConfigPatch{}, "manager")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteFloorAndCategory_BlockedWhileReferenced(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	cfg, err := r.CreateTableConfig(ctx, TableConfigInput{TableID: "A", FloorID: "floor-2", CategoryID: "cat-vip"}, "manager")
	require.NoError(t, err)

	err = r.DeleteFloor(ctx, "floor-2", "manager")
	assert.True(t, model.IsRule(err, model.CodeFloorInUse))
	err = r.DeleteCategory(ctx, "cat-vip", "manager")
	assert.True(t, model.IsRule(err, model.CodeCategoryInUse))

	require.NoError(t, r.DeleteTableConfig(ctx, cfg.ID, "manager"))
	require.NoError(t, r.DeleteFloor(ctx, "floor-2", "manager"))
	require.NoError(t, r.DeleteCategory(ctx, "cat-vip", "manager"))

	// Soft delete keeps the record.
	f, err := r.GetFloor(ctx, "floor-2")
	require.NoError(t, err)
	assert.False(t, f.IsActive)

	_, err = r.CreateTableConfig(ctx, TableConfigInput{TableID: "B", FloorID: "floor-2"}, "manager")
	assert.True(t, model.IsRule(err, model.CodeFloorInactive))
}

func TestDeleteTableConfig_RequiresEmptyCleanTable(t *testing.T) {
	r, s := newTestRegistry(t)
	ctx := context.Background()

	cfg, err := r.CreateTableConfig(ctx, TableConfigInput{TableID: "102", FloorID: "floor-1"}, "manager")
	require.NoError(t, err)
	require.NoError(t, store.SaveList(ctx, s, store.KeyTables, []model.Table{
		{ID: "102", Code: "T1-02", Seats: 6, Status: model.StatusServing},
	}))

	err = r.DeleteTableConfig(ctx, cfg.ID, "manager")
	assert.True(t, model.IsRule(err, model.CodeTableInUse))

	require.NoError(t, store.SaveList(ctx, s, store.KeyTables, []model.Table{
		{ID: "102", Code: "T1-02", Seats: 6, Status: model.StatusEmptyClean},
	}))
	require.NoError(t, r.DeleteTableConfig(ctx, cfg.ID, "manager"))

	_, err = r.ConfigForTable(ctx, "102")
	assert.ErrorIs(t, err, model.ErrNotFound)
	err = r.DeleteTableConfig(ctx, cfg.ID, "manager")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdateFloor(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	for _, id := range []string{"A", "B"} {
		_, err := r.CreateTableConfig(ctx, TableConfigInput{TableID: id, FloorID: "floor-1"}, "manager")
		require.NoError(t, err)
	}

	one := 1
	_, err := r.UpdateFloor(ctx, "floor-1", FloorPatch{MaxTables: &one}, "manager")
	assert.True(t, model.IsRule(err, model.CodeFloorCapacity))

	empty := ""
	_, err = r.UpdateFloor(ctx, "floor-1", FloorPatch{Name: &empty}, "manager")
	assert.ErrorIs(t, err, model.ErrValidation)

	name, two := "Tầng trệt", 2
	f, err := r.UpdateFloor(ctx, "floor-1", FloorPatch{Name: &name, MaxTables: &two}, "manager")
	require.NoError(t, err)
	assert.Equal(t, "Tầng trệt", f.Name)
	assert.Equal(t, "manager", f.UpdatedBy)
	assert.Equal(t, "Tầng trệt", r.FloorName(ctx, "floor-1"))
}

func TestCategoryValidation(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.CreateCategory(ctx, CategoryInput{Name: "Bàn đôi", Color: "blue"}, "manager")
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "color")

	c, err := r.CreateCategory(ctx, CategoryInput{Name: "Bàn đôi", Color: "#10B981"}, "manager")
	require.NoError(t, err)
	color := "#000000"
	updated, err := r.UpdateCategory(ctx, c.ID, CategoryPatch{Color: &color}, "manager")
	require.NoError(t, err)
	assert.Equal(t, "#000000", updated.Color)
}

func TestHistory_RecordsEveryMutation(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	cfg, err := r.CreateTableConfig(ctx, TableConfigInput{TableID: "A", FloorID: "floor-1"}, "anna")
	require.NoError(t, err)
	floor2 := "floor-2"
	_, err = r.UpdateTableConfig(ctx, cfg.ID, TableConfigPatch{FloorID: &floor2}, "binh")
	require.NoError(t, err)
	require.NoError(t, r.DeleteTableConfig(ctx, cfg.ID, "chi"))

	history, err := r.History(ctx, "A")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, model.ActionDelete, history[0].Action)
	assert.Equal(t, "chi", history[0].UpdatedBy)
	assert.Equal(t, model.ActionUpdate, history[1].Action)
	assert.Equal(t, model.ActionCreate, history[2].Action)
	assert.Equal(t, model.EntityTableConfig, history[2].Entity)

	all, err := r.History(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

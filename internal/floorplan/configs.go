package floorplan

import (
	"context"
	"fmt"

	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/store"
)

// TableConfigInput places a table on a floor.
type TableConfigInput struct {
	TableID    string `json:"tableId"`
	FloorID    string `json:"floorId"`
	CategoryID string `json:"categoryId"`
}

// TableConfigPatch moves a configured table or changes its category.
type TableConfigPatch struct {
	FloorID    *string `json:"floorId"`
	CategoryID *string `json:"categoryId"`
}

// ListTableConfigs returns active table configs.
func (r *Registry) ListTableConfigs(ctx context.Context) ([]model.TableConfig, error) {
	configs, err := store.LoadList[model.TableConfig](ctx, r.store, store.KeyTableConfigs)
	if err != nil {
		return nil, err
	}
	out := make([]model.TableConfig, 0, len(configs))
	for _, c := range configs {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

// ConfigForTable returns the active config of tableID.
func (r *Registry) ConfigForTable(ctx context.Context, tableID string) (model.TableConfig, error) {
	configs, err := r.ListTableConfigs(ctx)
	if err != nil {
		return model.TableConfig{}, err
	}
	for _, c := range configs {
		if c.TableID == tableID {
			return c, nil
		}
	}
	return model.TableConfig{}, notFound("table config for table", tableID)
}

// checkPlacement validates the floor and category references and the floor
// capacity. excludeID is the config being moved, if any.
func (s *snapshot) checkPlacement(floorID, categoryID, excludeID string) error {
	errs := &model.ValidationError{}
	fi, ok := s.floor(floorID)
	if !ok {
		errs.Add("floorId", "floor does not exist")
	}
	if categoryID != "" {
		if ci, ok := s.category(categoryID); !ok || !s.categories[ci].IsActive {
			errs.Add("categoryId", "category does not exist")
		}
	}
	if err := errs.OrNil(); err != nil {
		return err
	}

	floor := s.floors[fi]
	if !floor.IsActive {
		return model.Violation(model.CodeFloorInactive, "floor %s has been removed", floor.Name)
	}
	if n := s.activeOnFloor(floorID, excludeID); n >= floor.MaxTables {
		return model.Violation(model.CodeFloorCapacity,
			"floor %s is full (%d/%d tables)", floor.Name, n, floor.MaxTables)
	}
	return nil
}

// CreateTableConfig assigns a table to a floor. The floor must be active and
// hold strictly fewer active tables than its maximum.
func (r *Registry) CreateTableConfig(ctx context.Context, in TableConfigInput, actor string) (model.TableConfig, error) {
	errs := &model.ValidationError{}
	if blank(in.TableID) {
		errs.Add("tableId", "table id is required")
	}
	if blank(in.FloorID) {
		errs.Add("floorId", "floor is required")
	}
	if err := errs.OrNil(); err != nil {
		return model.TableConfig{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.load(ctx)
	if err != nil {
		return model.TableConfig{}, err
	}
	for _, c := range snap.configs {
		if c.IsActive && c.TableID == in.TableID {
			return model.TableConfig{}, model.Violation(model.CodeTableExists, "table %s is already configured", in.TableID)
		}
	}
	if err := snap.checkPlacement(in.FloorID, in.CategoryID, ""); err != nil {
		return model.TableConfig{}, err
	}

	cfg := model.TableConfig{
		ID:         model.NewID("config"),
		TableID:    in.TableID,
		FloorID:    in.FloorID,
		CategoryID: in.CategoryID,
		IsActive:   true,
	}
	cfg.Stamp(r.now(), actor)
	snap.configs = append(snap.configs, cfg)
	if err := store.SaveList(ctx, r.store, store.KeyTableConfigs, snap.configs); err != nil {
		return model.TableConfig{}, err
	}

	r.record(ctx, model.EntityTableConfig, in.TableID, model.ActionCreate,
		fmt.Sprintf("Thêm bàn vào %s", floorLabel(snap, in.FloorID)), actor)
	return cfg, nil
}

// UpdateTableConfig applies patch, re-checking capacity when the floor changes.
func (r *Registry) UpdateTableConfig(ctx context.Context, id string, patch TableConfigPatch, actor string) (model.TableConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.load(ctx)
	if err != nil {
		return model.TableConfig{}, err
	}
	i, ok := snap.config(id)
	if !ok || !snap.configs[i].IsActive {
		return model.TableConfig{}, notFound("table config", id)
	}

	cfg := snap.configs[i]
	floorID, categoryID := cfg.FloorID, cfg.CategoryID
	if patch.FloorID != nil {
		floorID = *patch.FloorID
	}
	if patch.CategoryID != nil {
		categoryID = *patch.CategoryID
	}
	if floorID != cfg.FloorID {
		if err := snap.checkPlacement(floorID, categoryID, cfg.ID); err != nil {
			return model.TableConfig{}, err
		}
	} else if categoryID != cfg.CategoryID && categoryID != "" {
		if ci, ok := snap.category(categoryID); !ok || !snap.categories[ci].IsActive {
			return model.TableConfig{}, model.Invalid("categoryId", "category does not exist")
		}
	}

	details := "Cập nhật cấu hình bàn"
	if floorID != cfg.FloorID {
		details = fmt.Sprintf("Chuyển bàn từ %s sang %s", floorLabel(snap, cfg.FloorID), floorLabel(snap, floorID))
	}
	cfg.FloorID = floorID
	cfg.CategoryID = categoryID
	cfg.Touch(r.now(), actor)
	snap.configs[i] = cfg
	if err := store.SaveList(ctx, r.store, store.KeyTableConfigs, snap.configs); err != nil {
		return model.TableConfig{}, err
	}

	r.record(ctx, model.EntityTableConfig, cfg.TableID, model.ActionUpdate, details, actor)
	return cfg, nil
}

// DeleteTableConfig soft-deletes a config. It is refused while the table is
// in any status other than Empty-Clean.
func (r *Registry) DeleteTableConfig(ctx context.Context, id, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.load(ctx)
	if err != nil {
		return err
	}
	i, ok := snap.config(id)
	if !ok || !snap.configs[i].IsActive {
		return notFound("table config", id)
	}
	return r.deactivate(ctx, snap, i, actor)
}

// DeleteConfigForTable soft-deletes the active config of tableID, if any.
func (r *Registry) DeleteConfigForTable(ctx context.Context, tableID, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i, c := range snap.configs {
		if c.IsActive && c.TableID == tableID {
			return r.deactivate(ctx, snap, i, actor)
		}
	}
	return nil
}

func (r *Registry) deactivate(ctx context.Context, snap *snapshot, i int, actor string) error {
	cfg := snap.configs[i]

	tables, err := store.LoadList[model.Table](ctx, r.store, store.KeyTables)
	if err != nil {
		return err
	}
	for _, t := range tables {
		if t.ID == cfg.TableID && t.Status != model.StatusEmptyClean {
			return model.Violation(model.CodeTableInUse,
				"table %s is %s and cannot be removed", t.Code, t.Status)
		}
	}

	snap.configs[i].IsActive = false
	snap.configs[i].Touch(r.now(), actor)
	if err := store.SaveList(ctx, r.store, store.KeyTableConfigs, snap.configs); err != nil {
		return err
	}

	r.record(ctx, model.EntityTableConfig, cfg.TableID, model.ActionDelete,
		fmt.Sprintf("Xóa bàn khỏi %s", floorLabel(snap, cfg.FloorID)), actor)
	return nil
}

func floorLabel(snap *snapshot, floorID string) string {
	if i, ok := snap.floor(floorID); ok {
		return snap.floors[i].Name
	}
	return floorID
}

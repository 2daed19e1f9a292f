package floorplan

import (
	"context"
	"fmt"

	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/store"
)

// FloorInput is the payload for creating a floor.
type FloorInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MaxTables   int    `json:"maxTables"`
}

// FloorPatch carries the fields to change on a floor.
type FloorPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	MaxTables   *int    `json:"maxTables"`
}

func validateFloor(name string, maxTables int) error {
	errs := &model.ValidationError{}
	if blank(name) {
		errs.Add("name", "floor name is required")
	}
	if maxTables < 1 {
		errs.Add("maxTables", "max tables must be at least 1")
	}
	return errs.OrNil()
}

// ListFloors returns active floors.
func (r *Registry) ListFloors(ctx context.Context) ([]model.Floor, error) {
	floors, err := store.LoadList[model.Floor](ctx, r.store, store.KeyFloors)
	if err != nil {
		return nil, err
	}
	out := make([]model.Floor, 0, len(floors))
	for _, f := range floors {
		if f.IsActive {
			out = append(out, f)
		}
	}
	return out, nil
}

// GetFloor returns a floor by id, including soft-deleted ones.
func (r *Registry) GetFloor(ctx context.Context, id string) (model.Floor, error) {
	floors, err := store.LoadList[model.Floor](ctx, r.store, store.KeyFloors)
	if err != nil {
		return model.Floor{}, err
	}
	for _, f := range floors {
		if f.ID == id {
			return f, nil
		}
	}
	return model.Floor{}, notFound("floor", id)
}

// FloorName returns the display name of a floor, or "" when it is unknown.
func (r *Registry) FloorName(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}
	f, err := r.GetFloor(ctx, id)
	if err != nil {
		return ""
	}
	return f.Name
}

// ActiveTableCount returns how many active table configs sit on floorID.
func (r *Registry) ActiveTableCount(ctx context.Context, floorID string) (int, error) {
	snap, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	return snap.activeOnFloor(floorID, ""), nil
}

// CreateFloor adds an active floor.
func (r *Registry) CreateFloor(ctx context.Context, in FloorInput, actor string) (model.Floor, error) {
	if err := validateFloor(in.Name, in.MaxTables); err != nil {
		return model.Floor{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	floors, err := store.LoadList[model.Floor](ctx, r.store, store.KeyFloors)
	if err != nil {
		return model.Floor{}, err
	}
	floor := model.Floor{
		ID:          model.NewID("floor"),
		Name:        in.Name,
		Description: in.Description,
		MaxTables:   in.MaxTables,
		IsActive:    true,
	}
	floor.Stamp(r.now(), actor)
	floors = append(floors, floor)
	if err := store.SaveList(ctx, r.store, store.KeyFloors, floors); err != nil {
		return model.Floor{}, err
	}

	r.record(ctx, model.EntityFloor, floor.ID, model.ActionCreate, fmt.Sprintf("Tạo tầng %s", floor.Name), actor)
	return floor, nil
}

// UpdateFloor applies patch. MaxTables may not drop below the number of
// tables already assigned.
func (r *Registry) UpdateFloor(ctx context.Context, id string, patch FloorPatch, actor string) (model.Floor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.load(ctx)
	if err != nil {
		return model.Floor{}, err
	}
	i, ok := snap.floor(id)
	if !ok {
		return model.Floor{}, notFound("floor", id)
	}

	floor := snap.floors[i]
	if patch.Name != nil {
		floor.Name = *patch.Name
	}
	if patch.Description != nil {
		floor.Description = *patch.Description
	}
	if patch.MaxTables != nil {
		floor.MaxTables = *patch.MaxTables
	}
	if err := validateFloor(floor.Name, floor.MaxTables); err != nil {
		return model.Floor{}, err
	}
	if assigned := snap.activeOnFloor(id, ""); floor.MaxTables < assigned {
		return model.Floor{}, model.Violation(model.CodeFloorCapacity,
			"floor %s already has %d tables, max tables cannot be %d", floor.Name, assigned, floor.MaxTables)
	}

	floor.Touch(r.now(), actor)
	snap.floors[i] = floor
	if err := store.SaveList(ctx, r.store, store.KeyFloors, snap.floors); err != nil {
		return model.Floor{}, err
	}

	r.record(ctx, model.EntityFloor, id, model.ActionUpdate, fmt.Sprintf("Cập nhật tầng %s", floor.Name), actor)
	return floor, nil
}

// DeleteFloor soft-deletes a floor that no active table config references.
func (r *Registry) DeleteFloor(ctx context.Context, id, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.load(ctx)
	if err != nil {
		return err
	}
	i, ok := snap.floor(id)
	if !ok {
		return notFound("floor", id)
	}
	if n := snap.activeOnFloor(id, ""); n > 0 {
		return model.Violation(model.CodeFloorInUse, "floor %s still has %d tables", snap.floors[i].Name, n)
	}

	snap.floors[i].IsActive = false
	snap.floors[i].Touch(r.now(), actor)
	if err := store.SaveList(ctx, r.store, store.KeyFloors, snap.floors); err != nil {
		return err
	}

	r.record(ctx, model.EntityFloor, id, model.ActionDelete, fmt.Sprintf("Xóa tầng %s", snap.floors[i].Name), actor)
	return nil
}

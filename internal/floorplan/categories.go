package floorplan

import (
	"context"
	"fmt"
	"regexp"

	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/store"
)

var colorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// CategoryInput is the payload for creating a table category.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// CategoryPatch carries the fields to change on a category.
type CategoryPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

func validateCategory(name, color string) error {
	errs := &model.ValidationError{}
	if blank(name) {
		errs.Add("name", "category name is required")
	}
	if !colorRe.MatchString(color) {
		errs.Add("color", "color must be a hex value like #3B82F6")
	}
	return errs.OrNil()
}

// ListCategories returns active table categories.
func (r *Registry) ListCategories(ctx context.Context) ([]model.TableCategory, error) {
	categories, err := store.LoadList[model.TableCategory](ctx, r.store, store.KeyTableCategories)
	if err != nil {
		return nil, err
	}
	out := make([]model.TableCategory, 0, len(categories))
	for _, c := range categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetCategory returns a category by id, including soft-deleted ones.
func (r *Registry) GetCategory(ctx context.Context, id string) (model.TableCategory, error) {
	categories, err := store.LoadList[model.TableCategory](ctx, r.store, store.KeyTableCategories)
	if err != nil {
		return model.TableCategory{}, err
	}
	for _, c := range categories {
		if c.ID == id {
			return c, nil
		}
	}
	return model.TableCategory{}, notFound("category", id)
}

// CreateCategory adds an active category.
func (r *Registry) CreateCategory(ctx context.Context, in CategoryInput, actor string) (model.TableCategory, error) {
	if err := validateCategory(in.Name, in.Color); err != nil {
		return model.TableCategory{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	categories, err := store.LoadList[model.TableCategory](ctx, r.store, store.KeyTableCategories)
	if err != nil {
		return model.TableCategory{}, err
	}
	category := model.TableCategory{
		ID:          model.NewID("cat"),
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		IsActive:    true,
	}
	category.Stamp(r.now(), actor)
	categories = append(categories, category)
	if err := store.SaveList(ctx, r.store, store.KeyTableCategories, categories); err != nil {
		return model.TableCategory{}, err
	}

	r.record(ctx, model.EntityCategory, category.ID, model.ActionCreate, fmt.Sprintf("Tạo loại bàn %s", category.Name), actor)
	return category, nil
}

// UpdateCategory applies patch.
func (r *Registry) UpdateCategory(ctx context.Context, id string, patch CategoryPatch, actor string) (model.TableCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.load(ctx)
	if err != nil {
		return model.TableCategory{}, err
	}
	i, ok := snap.category(id)
	if !ok {
		return model.TableCategory{}, notFound("category", id)
	}

	category := snap.categories[i]
	if patch.Name != nil {
		category.Name = *patch.Name
	}
	if patch.Description != nil {
		category.Description = *patch.Description
	}
	if patch.Color != nil {
		category.Color = *patch.Color
	}
	if err := validateCategory(category.Name, category.Color); err != nil {
		return model.TableCategory{}, err
	}

	category.Touch(r.now(), actor)
	snap.categories[i] = category
	if err := store.SaveList(ctx, r.store, store.KeyTableCategories, snap.categories); err != nil {
		return model.TableCategory{}, err
	}

	r.record(ctx, model.EntityCategory, id, model.ActionUpdate, fmt.Sprintf("Cập nhật loại bàn %s", category.Name), actor)
	return category, nil
}

// DeleteCategory soft-deletes a category that no active table config uses.
func (r *Registry) DeleteCategory(ctx context.Context, id, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.load(ctx)
	if err != nil {
		return err
	}
	i, ok := snap.category(id)
	if !ok {
		return notFound("category", id)
	}
	for _, c := range snap.configs {
		if c.IsActive && c.CategoryID == id {
			return model.Violation(model.CodeCategoryInUse, "category %s is still assigned to tables", snap.categories[i].Name)
		}
	}

	snap.categories[i].IsActive = false
	snap.categories[i].Touch(r.now(), actor)
	if err := store.SaveList(ctx, r.store, store.KeyTableCategories, snap.categories); err != nil {
		return err
	}

	r.record(ctx, model.EntityCategory, id, model.ActionDelete, fmt.Sprintf("Xóa loại bàn %s", snap.categories[i].Name), actor)
	return nil
}

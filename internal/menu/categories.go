package menu

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/store"
)

//go:embed seed.json
var seedJSON []byte

type seed struct {
	Categories []model.MenuCategory `json:"categories"`
	Items      []model.MenuItem     `json:"items"`
}

func loadSeed() (seed, error) {
	var sd seed
	if err := json.Unmarshal(seedJSON, &sd); err != nil {
		return seed{}, fmt.Errorf("failed to decode menu seed: %w", err)
	}
	return sd, nil
}

// CategoryInput is the payload for creating or renaming a menu category.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Categories returns every menu category.
func (s *Service) Categories(ctx context.Context) ([]model.MenuCategory, error) {
	return s.categories(ctx)
}

// CreateCategory adds a category.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput, actor string) (model.MenuCategory, error) {
	if strings.TrimSpace(in.Name) == "" {
		return model.MenuCategory{}, model.Invalid("name", "name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.categories(ctx)
	if err != nil {
		return model.MenuCategory{}, err
	}
	c := model.MenuCategory{
		ID:          model.NewID("cat"),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
	}
	if err := store.SaveList(ctx, s.store, store.KeyMenuCategories, append(categories, c)); err != nil {
		return model.MenuCategory{}, err
	}
	s.changed(ctx, c.ID, "category:create", actor)
	return c, nil
}

// UpdateCategory renames a category.
func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput, actor string) (model.MenuCategory, error) {
	if strings.TrimSpace(in.Name) == "" {
		return model.MenuCategory{}, model.Invalid("name", "name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.categories(ctx)
	if err != nil {
		return model.MenuCategory{}, err
	}
	i := categoryIndex(categories, id)
	if i < 0 {
		return model.MenuCategory{}, fmt.Errorf("menu category %q: %w", id, model.ErrNotFound)
	}
	categories[i].Name = strings.TrimSpace(in.Name)
	categories[i].Description = in.Description
	if err := store.SaveList(ctx, s.store, store.KeyMenuCategories, categories); err != nil {
		return model.MenuCategory{}, err
	}
	s.changed(ctx, id, "category:update", actor)
	return categories[i], nil
}

// DeleteCategory removes a category no item uses.
func (s *Service) DeleteCategory(ctx context.Context, id, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.items(ctx)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.CategoryID == id {
			return model.Violation(model.CodeCategoryInUse, "category is used by %s", it.Name)
		}
	}
	categories, err := s.categories(ctx)
	if err != nil {
		return err
	}
	i := categoryIndex(categories, id)
	if i < 0 {
		return fmt.Errorf("menu category %q: %w", id, model.ErrNotFound)
	}
	categories = append(categories[:i], categories[i+1:]...)
	if err := store.SaveList(ctx, s.store, store.KeyMenuCategories, categories); err != nil {
		return err
	}
	s.changed(ctx, id, "category:delete", actor)
	return nil
}

// EnsureDefaults seeds the bundled menu and categories for whichever of the
// two keys is absent.
func (s *Service) EnsureDefaults(ctx context.Context, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sd, err := loadSeed()
	if err != nil {
		return err
	}
	hasItems, err := store.Exists(ctx, s.store, store.KeyMenu)
	if err != nil {
		return err
	}
	hasCategories, err := store.Exists(ctx, s.store, store.KeyMenuCategories)
	if err != nil {
		return err
	}
	if !hasCategories {
		if err := store.SaveList(ctx, s.store, store.KeyMenuCategories, sd.Categories); err != nil {
			return err
		}
	}
	if !hasItems {
		if err := store.SaveList(ctx, s.store, store.KeyMenu, s.seedItems(sd, actor)); err != nil {
			return err
		}
		s.log.WithField("items", len(sd.Items)).Info("seeded default menu")
	}
	return nil
}

// ResetToDefault replaces the menu and categories with the bundled seed.
func (s *Service) ResetToDefault(ctx context.Context, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sd, err := loadSeed()
	if err != nil {
		return err
	}
	if err := store.SaveList(ctx, s.store, store.KeyMenuCategories, sd.Categories); err != nil {
		return err
	}
	if err := store.SaveList(ctx, s.store, store.KeyMenu, s.seedItems(sd, actor)); err != nil {
		return err
	}
	s.log.WithField("actor", actor).Warn("menu reset to defaults")
	s.changed(ctx, "", "reset", actor)
	return nil
}

func (s *Service) seedItems(sd seed, actor string) []model.MenuItem {
	now := s.now()
	items := make([]model.MenuItem, len(sd.Items))
	for i, it := range sd.Items {
		if it.Status == "" {
			it.Status = model.MenuItemAvailable
		}
		it.Stamp(now, actor)
		items[i] = it
	}
	return items
}

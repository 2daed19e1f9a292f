// Package menu manages menu items and menu categories and turns menu items
// into order lines.
package menu

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"restaurant-pos-backend/internal/events"
	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/store"
)

// Service owns the menu and menu category collections.
type Service struct {
	store store.Store
	pub   events.Publisher
	log   logrus.FieldLogger
	now   func() time.Time

	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the menu service.
func NewService(s store.Store, pub events.Publisher, log logrus.FieldLogger, opts ...Option) *Service {
	svc := &Service{
		store: s,
		pub:   pub,
		log:   log.WithField("component", "menu"),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// ItemInput is the payload for creating a menu item.
type ItemInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	CategoryID  string   `json:"categoryId"`
	Images      []string `json:"images"`
}

// ItemPatch carries the menu item fields to change.
type ItemPatch struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Price       *float64              `json:"price"`
	CategoryID  *string               `json:"categoryId"`
	Status      *model.MenuItemStatus `json:"status"`
	Images      []string              `json:"images"`
}

func (s *Service) items(ctx context.Context) ([]model.MenuItem, error) {
	return store.LoadList[model.MenuItem](ctx, s.store, store.KeyMenu)
}

func (s *Service) categories(ctx context.Context) ([]model.MenuCategory, error) {
	return store.LoadList[model.MenuCategory](ctx, s.store, store.KeyMenuCategories)
}

func itemNotFound(id string) error {
	return fmt.Errorf("menu item %q: %w", id, model.ErrNotFound)
}

func categoryIndex(categories []model.MenuCategory, id string) int {
	for i, c := range categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func itemIndex(items []model.MenuItem, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func validateItem(name string, price float64, categoryID string, categories []model.MenuCategory) error {
	errs := &model.ValidationError{}
	if strings.TrimSpace(name) == "" {
		errs.Add("name", "name is required")
	}
	if price <= 0 {
		errs.Add("price", "price must be greater than 0")
	}
	if categoryID == "" {
		errs.Add("categoryId", "category is required")
	} else if categoryIndex(categories, categoryID) < 0 {
		errs.Add("categoryId", "category does not exist")
	}
	return errs.OrNil()
}

// List returns every menu item.
func (s *Service) List(ctx context.Context) ([]model.MenuItem, error) {
	return s.items(ctx)
}

// Available returns items that can be ordered.
func (s *Service) Available(ctx context.Context) ([]model.MenuItem, error) {
	items, err := s.items(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.MenuItem, 0, len(items))
	for _, it := range items {
		if it.Status == model.MenuItemAvailable {
			out = append(out, it)
		}
	}
	return out, nil
}

// ByCategory returns the available items of one category.
func (s *Service) ByCategory(ctx context.Context, categoryID string) ([]model.MenuItem, error) {
	items, err := s.Available(ctx)
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for _, it := range items {
		if it.CategoryID == categoryID {
			out = append(out, it)
		}
	}
	return out, nil
}

// Get returns one item.
func (s *Service) Get(ctx context.Context, id string) (model.MenuItem, error) {
	items, err := s.items(ctx)
	if err != nil {
		return model.MenuItem{}, err
	}
	if i := itemIndex(items, id); i >= 0 {
		return items[i], nil
	}
	return model.MenuItem{}, itemNotFound(id)
}

// Search matches query against names and descriptions, case-insensitively.
func (s *Service) Search(ctx context.Context, query string) ([]model.MenuItem, error) {
	items, err := s.items(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.MenuItem, 0)
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), q) || strings.Contains(strings.ToLower(it.Description), q) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Create adds an available item.
func (s *Service) Create(ctx context.Context, in ItemInput, actor string) (model.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.categories(ctx)
	if err != nil {
		return model.MenuItem{}, err
	}
	if err := validateItem(in.Name, in.Price, in.CategoryID, categories); err != nil {
		return model.MenuItem{}, err
	}
	items, err := s.items(ctx)
	if err != nil {
		return model.MenuItem{}, err
	}

	item := model.MenuItem{
		ID:          model.NewID("item"),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		Status:      model.MenuItemAvailable,
		Images:      in.Images,
	}
	item.Stamp(s.now(), actor)
	if err := store.SaveList(ctx, s.store, store.KeyMenu, append(items, item)); err != nil {
		return model.MenuItem{}, err
	}

	s.changed(ctx, item.ID, "create", actor)
	return item, nil
}

// Update applies patch to an item.
func (s *Service) Update(ctx context.Context, id string, patch ItemPatch, actor string) (model.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.items(ctx)
	if err != nil {
		return model.MenuItem{}, err
	}
	i := itemIndex(items, id)
	if i < 0 {
		return model.MenuItem{}, itemNotFound(id)
	}
	categories, err := s.categories(ctx)
	if err != nil {
		return model.MenuItem{}, err
	}

	item := items[i]
	if patch.Name != nil {
		item.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}
	if patch.CategoryID != nil {
		item.CategoryID = *patch.CategoryID
	}
	if patch.Images != nil {
		item.Images = patch.Images
	}
	if patch.Status != nil {
		if *patch.Status != model.MenuItemAvailable && *patch.Status != model.MenuItemUnavailable {
			return model.MenuItem{}, model.Invalid("status", "status must be available or unavailable")
		}
		item.Status = *patch.Status
	}
	if err := validateItem(item.Name, item.Price, item.CategoryID, categories); err != nil {
		return model.MenuItem{}, err
	}

	item.Touch(s.now(), actor)
	items[i] = item
	if err := store.SaveList(ctx, s.store, store.KeyMenu, items); err != nil {
		return model.MenuItem{}, err
	}
	s.changed(ctx, id, "update", actor)
	return item, nil
}

// Delete removes an item unless a table currently has it on order.
func (s *Service) Delete(ctx context.Context, id, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.items(ctx)
	if err != nil {
		return err
	}
	i := itemIndex(items, id)
	if i < 0 {
		return itemNotFound(id)
	}

	tables, err := store.LoadList[model.Table](ctx, s.store, store.KeyTables)
	if err != nil {
		return err
	}
	for _, t := range tables {
		for _, line := range t.OrderItems {
			if line.ID == id {
				return model.Violation(model.CodeMenuItemInUse,
					"%s is on the order of table %s", items[i].Name, t.Code)
			}
		}
	}

	items = append(items[:i], items[i+1:]...)
	if err := store.SaveList(ctx, s.store, store.KeyMenu, items); err != nil {
		return err
	}
	s.changed(ctx, id, "delete", actor)
	return nil
}

// Snapshot turns a menu item into an order line. The line keeps the price
// and category label of the moment it was taken.
func (s *Service) Snapshot(ctx context.Context, menuItemID string, quantity int, notes string) (model.OrderItem, error) {
	if quantity < 1 {
		return model.OrderItem{}, model.Invalid("quantity", "quantity must be at least 1")
	}
	item, err := s.Get(ctx, menuItemID)
	if err != nil {
		return model.OrderItem{}, err
	}
	if item.Status != model.MenuItemAvailable {
		return model.OrderItem{}, model.Violation(model.CodeMenuItemUnavailable, "%s is not available", item.Name)
	}

	label := item.CategoryID
	categories, err := s.categories(ctx)
	if err != nil {
		return model.OrderItem{}, err
	}
	if i := categoryIndex(categories, item.CategoryID); i >= 0 {
		label = categories[i].Name
	}
	return model.OrderItem{
		ID:       item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: quantity,
		Category: label,
		Notes:    notes,
		Images:   item.Images,
	}, nil
}

func (s *Service) changed(ctx context.Context, id, action, actor string) {
	s.log.WithFields(logrus.Fields{"id": id, "action": action, "actor": actor}).Debug("menu changed")
	s.pub.Publish(ctx, events.Event{
		Type:     events.MenuChanged,
		Key:      store.KeyMenu,
		EntityID: id,
		Reason:   action,
		Actor:    actor,
	})
}

package floorplan

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

// Registry owns floors, table categories, table configs and their audit
// history. All mutations are serialized through one lock because capacity
// checks span configs and floors.
type Registry struct {
	store store.Store
	pub   events.Publisher
	log   logrus.FieldLogger
	now   func() time.Time

	mu sync.Mutex
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates a Registry over s.
func NewRegistry(s store.Store, pub events.Publisher, log logrus.FieldLogger, opts ...Option) *Registry {
	r := &Registry{
		store: s,
		pub:   pub,
		log:   log.WithField("component", "floorplan"),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type snapshot struct {
	floors     []model.Floor
	categories []model.TableCategory
	configs    []model.TableConfig
}

func (r *Registry) load(ctx context.Context) (*snapshot, error) {
	floors, err := store.LoadList[model.Floor](ctx, r.store, store.KeyFloors)
	if err != nil {
		return nil, err
	}
	categories, err := store.LoadList[model.TableCategory](ctx, r.store, store.KeyTableCategories)
	if err != nil {
		return nil, err
	}
	configs, err := store.LoadList[model.TableConfig](ctx, r.store, store.KeyTableConfigs)
	if err != nil {
		return nil, err
	}
	return &snapshot{floors: floors, categories: categories, configs: configs}, nil
}

func (s *snapshot) floor(id string) (int, bool) {
	for i, f := range s.floors {
		if f.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (s *snapshot) category(id string) (int, bool) {
	for i, c := range s.categories {
		if c.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (s *snapshot) config(id string) (int, bool) {
	for i, c := range s.configs {
		if c.ID == id {
			return i, true
		}
	}
	return -1, false
}

// activeOnFloor counts active configs on floorID, ignoring excludeID.
func (s *snapshot) activeOnFloor(floorID, excludeID string) int {
	n := 0
	for _, c := range s.configs {
		if c.IsActive && c.FloorID == floorID && c.ID != excludeID {
			n++
		}
	}
	return n
}

func (r *Registry) appendHistory(ctx context.Context, entity, subjectID string, action model.HistoryAction, details, actor string) error {
	history, err := store.LoadList[model.TableHistory](ctx, r.store, store.KeyTableHistory)
	if err != nil {
		return err
	}
	history = append(history, model.TableHistory{
		TableID:   subjectID,
		Entity:    entity,
		Action:    action,
		Timestamp: r.now(),
		Details:   details,
		UpdatedBy: actor,
	})
	if err := store.SaveList(ctx, r.store, store.KeyTableHistory, history); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// record writes the audit entry and publishes the change. A failed audit
// write is logged: the primary mutation is already committed.
func (r *Registry) record(ctx context.Context, entity, subjectID string, action model.HistoryAction, details, actor string) {
	if err := r.appendHistory(ctx, entity, subjectID, action, details, actor); err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{"entity": entity, "id": subjectID}).Error("audit entry lost")
	}
	r.pub.Publish(ctx, events.Event{
		Type:     events.FloorPlanChanged,
		EntityID: subjectID,
		Reason:   entity + ":" + string(action),
		Actor:    actor,
	})
}

// History returns audit entries for subjectID, or all entries when it is
// empty, newest first.
func (r *Registry) History(ctx context.Context, subjectID string) ([]model.TableHistory, error) {
	history, err := store.LoadList[model.TableHistory](ctx, r.store, store.KeyTableHistory)
	if err != nil {
		return nil, err
	}
	out := make([]model.TableHistory, 0, len(history))
	for _, h := range history {
		if subjectID == "" || h.TableID == subjectID {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// EnsureDefaults seeds the standard floors and categories when their
// collections have never been written.
func (r *Registry) EnsureDefaults(ctx context.Context, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	audit := model.Audit{CreatedAt: now, UpdatedAt: now, UpdatedBy: actor}

	ok, err := store.Exists(ctx, r.store, store.KeyFloors)
	if err != nil {
		return err
	}
	if !ok {
		floors := []model.Floor{
			{ID: "floor-1", Name: "Tầng 1", Description: "Tầng trệt", MaxTables: 10, IsActive: true, Audit: audit},
			{ID: "floor-2", Name: "Tầng 2", Description: "Tầng lầu", MaxTables: 10, IsActive: true, Audit: audit},
			{ID: "floor-3", Name: "Tầng 3 - VIP", Description: "Tầng VIP", MaxTables: 10, IsActive: true, Audit: audit},
		}
		if err := store.SaveList(ctx, r.store, store.KeyFloors, floors); err != nil {
			return fmt.Errorf("failed to seed floors: %w", err)
		}
		r.log.WithField("count", len(floors)).Info("seeded default floors")
	}

	ok, err = store.Exists(ctx, r.store, store.KeyTableCategories)
	if err != nil {
		return err
	}
	if !ok {
		categories := []model.TableCategory{
			{ID: "cat-normal", Name: "Bàn thường", Description: "Bàn phục vụ thường", Color: "#3B82F6", IsActive: true, Audit: audit},
			{ID: "cat-vip", Name: "Bàn VIP", Description: "Bàn phục vụ VIP", Color: "#F59E0B", IsActive: true, Audit: audit},
		}
		if err := store.SaveList(ctx, r.store, store.KeyTableCategories, categories); err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}
		r.log.WithField("count", len(categories)).Info("seeded default table categories")
	}
	return nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, model.ErrNotFound)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

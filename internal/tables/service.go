package tables

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"restaurant-pos-backend/internal/events"
	"restaurant-pos-backend/internal/floorplan"
	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/parse"
	"restaurant-pos-backend/internal/store"
)

// Placement is the part of the floor plan registry the table registry needs.
type Placement interface {
	CreateTableConfig(ctx context.Context, in floorplan.TableConfigInput, actor string) (model.TableConfig, error)
	UpdateTableConfig(ctx context.Context, id string, patch floorplan.TableConfigPatch, actor string) (model.TableConfig, error)
	ConfigForTable(ctx context.Context, tableID string) (model.TableConfig, error)
	DeleteConfigForTable(ctx context.Context, tableID, actor string) error
	FloorName(ctx context.Context, floorID string) string
}

// TransferRecorder appends completed transfers to the transfer log.
type TransferRecorder interface {
	Record(ctx context.Context, t model.TableTransfer) (model.TableTransfer, error)
}

// Service owns the tables collection. Every read-modify-write of the
// collection holds mu.
type Service struct {
	store     store.Store
	placement Placement
	transfers TransferRecorder
	pub       events.Publisher
	log       logrus.FieldLogger
	now       func() time.Time

	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the table registry.
func NewService(s store.Store, placement Placement, transfers TransferRecorder, pub events.Publisher, log logrus.FieldLogger, opts ...Option) *Service {
	svc := &Service{
		store:     s,
		placement: placement,
		transfers: transfers,
		pub:       pub,
		log:       log.WithField("component", "tables"),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Status     model.Status
	FloorID    string
	CategoryID string
}

func (f Filter) match(t model.Table) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.FloorID != "" && t.FloorID != f.FloorID {
		return false
	}
	if f.CategoryID != "" && t.CategoryID != f.CategoryID {
		return false
	}
	return true
}

func (s *Service) load(ctx context.Context) ([]model.Table, error) {
	return store.LoadList[model.Table](ctx, s.store, store.KeyTables)
}

func (s *Service) save(ctx context.Context, tables []model.Table) error {
	if err := store.SaveList(ctx, s.store, store.KeyTables, tables); err != nil {
		return fmt.Errorf("failed to save tables: %w", err)
	}
	return nil
}

func indexOf(tables []model.Table, id string) int {
	for i, t := range tables {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}

func notFound(id string) error {
	return fmt.Errorf("table %q: %w", id, model.ErrNotFound)
}

// List returns active tables matching f in stored order.
func (s *Service) List(ctx context.Context, f Filter) ([]model.Table, error) {
	tables, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Table, 0, len(tables))
	for _, t := range tables {
		if t.Active() && f.match(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Get returns a table by id.
func (s *Service) Get(ctx context.Context, id string) (model.Table, error) {
	tables, err := s.load(ctx)
	if err != nil {
		return model.Table{}, err
	}
	i := indexOf(tables, id)
	if i < 0 {
		return model.Table{}, notFound(id)
	}
	return tables[i], nil
}

// Transitions returns the statuses the table may move to now.
func (s *Service) Transitions(ctx context.Context, id string) ([]model.Status, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return AvailableTransitions(t), nil
}

// CreateInput is the payload for adding a table.
type CreateInput struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Zone       string `json:"zone"`
	Seats      int    `json:"seats"`
	FloorID    string `json:"floorId"`
	CategoryID string `json:"categoryId"`
}

// UpdateInput carries the table fields to change.
type UpdateInput struct {
	Code       *string `json:"code"`
	Zone       *string `json:"zone"`
	Seats      *int    `json:"seats"`
	FloorID    *string `json:"floorId"`
	CategoryID *string `json:"categoryId"`
}

func validateTable(code string, seats int) error {
	errs := &model.ValidationError{}
	if strings.TrimSpace(code) == "" {
		errs.Add("code", "table code is required")
	}
	if seats < 1 {
		errs.Add("seats", "a table needs at least 1 seat")
	}
	return errs.OrNil()
}

func codeTaken(tables []model.Table, code, exceptID string) bool {
	for _, t := range tables {
		if t.ID != exceptID && t.Active() && strings.EqualFold(t.Code, code) {
			return true
		}
	}
	return false
}

// Create adds an Empty-Clean table. The table is placed on its floor first,
// so a floor at capacity rejects the table before anything is written.
func (s *Service) Create(ctx context.Context, in CreateInput, actor string) (model.Table, error) {
	if err := validateTable(in.Code, in.Seats); err != nil {
		return model.Table{}, err
	}
	if in.FloorID == "" {
		in.FloorID = parse.DefaultFloorID(in.Zone, in.Code)
	}
	if in.CategoryID == "" {
		in.CategoryID = parse.DefaultCategoryID(in.Zone)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tables, err := s.load(ctx)
	if err != nil {
		return model.Table{}, err
	}
	if codeTaken(tables, in.Code, "") {
		return model.Table{}, model.Violation(model.CodeTableExists, "table code %s is already in use", in.Code)
	}
	id := in.ID
	if id == "" {
		id = model.NewID("table")
	} else if indexOf(tables, id) >= 0 {
		return model.Table{}, model.Violation(model.CodeTableExists, "table id %s is already in use", id)
	}

	if _, err := s.placement.CreateTableConfig(ctx, floorplan.TableConfigInput{
		TableID:    id,
		FloorID:    in.FloorID,
		CategoryID: in.CategoryID,
	}, actor); err != nil {
		return model.Table{}, err
	}

	zone := in.Zone
	if zone == "" {
		zone = s.placement.FloorName(ctx, in.FloorID)
	}
	table := model.Table{
		ID:         id,
		Code:       in.Code,
		Zone:       zone,
		Seats:      in.Seats,
		Status:     model.StatusEmptyClean,
		FloorID:    in.FloorID,
		CategoryID: in.CategoryID,
		IsActive:   model.Bool(true),
	}
	table.Stamp(s.now(), actor)

	if err := s.save(ctx, append(tables, table)); err != nil {
		if cerr := s.placement.DeleteConfigForTable(ctx, id, actor); cerr != nil {
			s.log.WithError(cerr).WithField("table_id", id).Error("failed to release table config after save error")
		}
		return model.Table{}, err
	}

	s.log.WithFields(logrus.Fields{"table_id": id, "code": table.Code, "floor_id": table.FloorID}).Info("table created")
	s.publish(ctx, events.TableCreated, table, "", actor)
	return table, nil
}

// Update changes descriptive fields and, through the floor plan registry,
// the table's floor or category.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput, actor string) (model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables, err := s.load(ctx)
	if err != nil {
		return model.Table{}, err
	}
	i := indexOf(tables, id)
	if i < 0 {
		return model.Table{}, notFound(id)
	}
	table := tables[i]

	if in.Code != nil {
		table.Code = *in.Code
	}
	if in.Zone != nil {
		table.Zone = *in.Zone
	}
	if in.Seats != nil {
		table.Seats = *in.Seats
	}
	if err := validateTable(table.Code, table.Seats); err != nil {
		return model.Table{}, err
	}
	if codeTaken(tables, table.Code, id) {
		return model.Table{}, model.Violation(model.CodeTableExists, "table code %s is already in use", table.Code)
	}

	floorChanged := in.FloorID != nil && *in.FloorID != table.FloorID
	categoryChanged := in.CategoryID != nil && *in.CategoryID != table.CategoryID
	if floorChanged || categoryChanged {
		if err := s.replace(ctx, &table, in, actor); err != nil {
			return model.Table{}, err
		}
	}

	table.Touch(s.now(), actor)
	tables[i] = table
	if err := s.save(ctx, tables); err != nil {
		return model.Table{}, err
	}

	s.publish(ctx, events.TableUpdated, table, "", actor)
	return table, nil
}

// replace moves the table's config to the requested floor/category.
func (s *Service) replace(ctx context.Context, table *model.Table, in UpdateInput, actor string) error {
	floorID, categoryID := table.FloorID, table.CategoryID
	if in.FloorID != nil {
		floorID = *in.FloorID
	}
	if in.CategoryID != nil {
		categoryID = *in.CategoryID
	}

	cfg, err := s.placement.ConfigForTable(ctx, table.ID)
	switch {
	case err == nil:
		patch := floorplan.TableConfigPatch{FloorID: &floorID, CategoryID: &categoryID}
		if _, err := s.placement.UpdateTableConfig(ctx, cfg.ID, patch, actor); err != nil {
			return err
		}
	case isNotFound(err):
		if _, err := s.placement.CreateTableConfig(ctx, floorplan.TableConfigInput{
			TableID: table.ID, FloorID: floorID, CategoryID: categoryID,
		}, actor); err != nil {
			return err
		}
	default:
		return err
	}

	if floorID != table.FloorID && in.Zone == nil {
		if name := s.placement.FloorName(ctx, floorID); name != "" {
			table.Zone = name
		}
	}
	table.FloorID = floorID
	table.CategoryID = categoryID
	return nil
}

// Delete removes an Empty-Clean table and releases its floor slot.
func (s *Service) Delete(ctx context.Context, id, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(tables, id)
	if i < 0 {
		return notFound(id)
	}
	table := tables[i]
	if table.Status != model.StatusEmptyClean {
		return model.Violation(model.CodeTableInUse, "table %s is %s and cannot be deleted", table.Code, table.Status)
	}

	if err := s.placement.DeleteConfigForTable(ctx, id, actor); err != nil {
		return err
	}
	tables = append(tables[:i], tables[i+1:]...)
	if err := s.save(ctx, tables); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"table_id": id, "code": table.Code}).Info("table deleted")
	s.publish(ctx, events.TableDeleted, table, "", actor)
	return nil
}

func (s *Service) publish(ctx context.Context, typ string, t model.Table, prev model.Status, actor string) {
	s.pub.Publish(ctx, events.Event{
		Type:           typ,
		Key:            store.KeyTables,
		EntityID:       t.ID,
		Status:         string(t.Status),
		PreviousStatus: string(prev),
		Actor:          actor,
	})
}
